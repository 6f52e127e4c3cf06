package table

import (
	"context"

	"github.com/dogmatiq/atomkit/internal/x/xatomic"
)

// Interceptor defines functions that are invoked around table operations.
//
// The reference counting primitives cannot fail, so only BeforeOpen may
// return an error. The remaining hooks observe operations without altering
// them.
type Interceptor struct {
	beforeOpen    xatomic.Value[func(string) error]
	afterIntern   xatomic.Value[func(string, Ref, []uint16)]
	afterAddRef   xatomic.Value[func(string, Ref)]
	beforeRelease xatomic.Value[func(string, Ref)]
}

// BeforeOpen sets the function that is invoked before a [Table] is opened.
func (i *Interceptor) BeforeOpen(fn func(name string) error) {
	i.beforeOpen.Store(fn)
}

// AfterIntern sets the function that is invoked after text is interned by
// [Table.Intern] or [UTF16Table.InternUTF16].
//
// units is the entry's text, as returned by [Table.UTF16]; it must not be
// modified or retained.
func (i *Interceptor) AfterIntern(fn func(table string, r Ref, units []uint16)) {
	i.afterIntern.Store(fn)
}

// AfterAddRef sets the function that is invoked after an entry's reference
// count is incremented by [Table.AddRef].
func (i *Interceptor) AfterAddRef(fn func(table string, r Ref)) {
	i.afterAddRef.Store(fn)
}

// BeforeRelease sets the function that is invoked before an entry's reference
// count is decremented by [Table.Release].
func (i *Interceptor) BeforeRelease(fn func(table string, r Ref)) {
	i.beforeRelease.Store(fn)
}

// WithInterceptor returns a [Store] that invokes the functions defined
// by the given [Interceptor] when performing operations on s.
func WithInterceptor(s Store, in *Interceptor) Store {
	if in == nil {
		return s
	}

	return &interceptedStore{
		Next:        s,
		Interceptor: in,
	}
}

type interceptedStore struct {
	Next        Store
	Interceptor *Interceptor
}

func (s *interceptedStore) Open(ctx context.Context, name string) (Table, error) {
	if fn := s.Interceptor.beforeOpenFn(); fn != nil {
		if err := fn(name); err != nil {
			return nil, err
		}
	}

	next, err := s.Next.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	t := &interceptedTable{
		Next:        next,
		table:       next.Name(),
		Interceptor: s.Interceptor,
	}

	if u, ok := next.(UTF16Table); ok {
		return &interceptedUTF16Table{t, u}, nil
	}

	return t, nil
}

type interceptedTable struct {
	Next        Table
	table       string
	Interceptor *Interceptor
}

func (t *interceptedTable) Name() string {
	return t.Next.Name()
}

func (t *interceptedTable) Space() Space {
	return t.Next.Space()
}

func (t *interceptedTable) Intern(text string) Ref {
	r := t.Next.Intern(text)
	t.afterIntern(r)
	return r
}

func (t *interceptedTable) Hash(r Ref) uint32 {
	return t.Next.Hash(r)
}

func (t *interceptedTable) AddRef(r Ref) {
	t.Next.AddRef(r)

	if fn := t.Interceptor.afterAddRefFn(); fn != nil {
		fn(t.table, r)
	}
}

func (t *interceptedTable) Release(r Ref) {
	if fn := t.Interceptor.beforeReleaseFn(); fn != nil {
		fn(t.table, r)
	}

	t.Next.Release(r)
}

func (t *interceptedTable) UTF16(r Ref) []uint16 {
	return t.Next.UTF16(r)
}

func (t *interceptedTable) Close() error {
	return t.Next.Close()
}

func (t *interceptedTable) afterIntern(r Ref) {
	if fn := t.Interceptor.afterInternFn(); fn != nil {
		fn(t.table, r, t.Next.UTF16(r))
	}
}

type interceptedUTF16Table struct {
	*interceptedTable
	next UTF16Table
}

func (t *interceptedUTF16Table) InternUTF16(units []uint16) Ref {
	r := t.next.InternUTF16(units)
	t.afterIntern(r)
	return r
}

func (i *Interceptor) beforeOpenFn() func(string) error {
	if i == nil {
		return nil
	}
	return i.beforeOpen.Load()
}

func (i *Interceptor) afterInternFn() func(string, Ref, []uint16) {
	if i == nil {
		return nil
	}
	return i.afterIntern.Load()
}

func (i *Interceptor) afterAddRefFn() func(string, Ref) {
	if i == nil {
		return nil
	}
	return i.afterAddRef.Load()
}

func (i *Interceptor) beforeReleaseFn() func(string, Ref) {
	if i == nil {
		return nil
	}
	return i.beforeRelease.Load()
}
