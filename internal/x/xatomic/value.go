package xatomic

import "sync/atomic"

// Value is an atomically replaceable value of type T.
//
// Unlike [atomic.Value], it may hold values of any type, including nil
// functions, and its zero value is ready to use.
type Value[T any] struct {
	p atomic.Pointer[T]
}

// Load returns the most recently stored value, or the zero value of T if
// nothing has been stored.
func (x *Value[T]) Load() T {
	if p := x.p.Load(); p != nil {
		return *p
	}

	var zero T
	return zero
}

// Store replaces the value.
func (x *Value[T]) Store(v T) {
	x.p.Store(&v)
}

// Swap replaces the value and returns the previous one.
func (x *Value[T]) Swap(v T) T {
	if p := x.p.Swap(&v); p != nil {
		return *p
	}

	var zero T
	return zero
}
