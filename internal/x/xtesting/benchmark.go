package xtesting

import (
	"context"
	"testing"
	"time"
)

// Steps are the functions invoked by [Benchmark] against a subject of type T.
//
// Any of the functions other than Run may be nil.
type Steps[T any] struct {
	// Setup is called once, before the first iteration.
	Setup func(context.Context, T) error

	// Before is called before each iteration.
	Before func(context.Context, T) error

	// Run is the benchmarked code.
	Run func(context.Context, T) error

	// After is called after each iteration.
	After func(context.Context, T) error
}

// stepTimeout is the maximum duration of each untimed step.
const stepTimeout = 30 * time.Second

// Benchmark benchmarks steps.Run against the subject returned by open.
//
// Only the time spent in steps.Run is measured.
func Benchmark[T any](
	b *testing.B,
	open func(context.Context) (T, error),
	steps Steps[T],
) {
	ctx := b.Context()

	subject, err := untimed(ctx, open)
	if err != nil {
		b.Fatal(err)
	}

	step := func(fn func(context.Context, T) error) {
		if fn == nil {
			return
		}

		if _, err := untimed(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, fn(ctx, subject)
		}); err != nil {
			b.Fatal(err)
		}
	}

	step(steps.Setup)

	for b.Loop() {
		b.StopTimer()
		step(steps.Before)
		b.StartTimer()

		err := steps.Run(ctx, subject)

		b.StopTimer()
		step(steps.After)

		if err != nil {
			b.Fatal(err)
		}
	}
}

func untimed[T any](
	ctx context.Context,
	fn func(context.Context) (T, error),
) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, stepTimeout)
	defer cancel()
	return fn(ctx)
}
