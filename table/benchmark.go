package table

import (
	"context"
	"testing"

	"github.com/dogmatiq/atomkit/internal/x/xtesting"
)

// RunBenchmarks runs benchmarks against a [Store] implementation.
func RunBenchmarks(
	b *testing.B,
	store Store,
) {
	b.Run("Table", func(b *testing.B) {
		b.Run("Intern", func(b *testing.B) {
			b.Run("new text", func(b *testing.B) {
				var (
					text string
					r    Ref
				)

				benchmarkTable(
					b,
					store,
					// SETUP
					nil,
					// BEFORE EACH
					func(context.Context, Table) error {
						text = xtesting.UniqueName("text")
						return nil
					},
					// BENCHMARKED CODE
					func(_ context.Context, t Table) error {
						r = t.Intern(text)
						return nil
					},
					// AFTER EACH
					func(_ context.Context, t Table) error {
						t.Release(r)
						return nil
					},
				)
			})

			b.Run("existing text", func(b *testing.B) {
				var r Ref

				benchmarkTable(
					b,
					store,
					// SETUP
					func(_ context.Context, t Table) error {
						// Hold a reference for the whole benchmark so that the
						// entry is never reclaimed.
						t.Intern("<existing>")
						return nil
					},
					// BEFORE EACH
					nil,
					// BENCHMARKED CODE
					func(_ context.Context, t Table) error {
						r = t.Intern("<existing>")
						return nil
					},
					// AFTER EACH
					func(_ context.Context, t Table) error {
						t.Release(r)
						return nil
					},
				)
			})
		})

		b.Run("AddRef and Release", func(b *testing.B) {
			var r Ref

			benchmarkTable(
				b,
				store,
				// SETUP
				func(_ context.Context, t Table) error {
					r = t.Intern("<text>")
					return nil
				},
				// BEFORE EACH
				nil,
				// BENCHMARKED CODE
				func(_ context.Context, t Table) error {
					t.AddRef(r)
					t.Release(r)
					return nil
				},
				// AFTER EACH
				nil,
			)
		})

		b.Run("Hash", func(b *testing.B) {
			var r Ref

			benchmarkTable(
				b,
				store,
				// SETUP
				func(_ context.Context, t Table) error {
					r = t.Intern("<text>")
					return nil
				},
				// BEFORE EACH
				nil,
				// BENCHMARKED CODE
				func(_ context.Context, t Table) error {
					t.Hash(r)
					return nil
				},
				// AFTER EACH
				nil,
			)
		})
	})
}

func benchmarkTable(
	b *testing.B,
	store Store,
	setup func(context.Context, Table) error,
	before func(context.Context, Table) error,
	fn func(context.Context, Table) error,
	after func(context.Context, Table) error,
) {
	xtesting.Benchmark(
		b,
		func(ctx context.Context) (Table, error) {
			t, err := store.Open(ctx, xtesting.SequentialName("table"))
			if err != nil {
				return nil, err
			}

			b.Cleanup(func() { t.Close() })

			return t, nil
		},
		xtesting.Steps[Table]{
			Setup:  setup,
			Before: before,
			Run:    fn,
			After:  after,
		},
	)
}
