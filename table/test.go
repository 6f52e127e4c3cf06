package table

import (
	"context"
	"sync"
	"testing"
	"unicode/utf16"

	"github.com/dogmatiq/atomkit/internal/x/xtesting"
	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

// RunTests runs tests that confirm a [Store] implementation behaves correctly.
func RunTests(
	t *testing.T,
	store Store,
) {
	setup := func(t *testing.T) Table {
		name := xtesting.SequentialName("table")

		tbl, err := store.Open(t.Context(), name)
		if err != nil {
			t.Fatal(err)
		}

		t.Cleanup(func() {
			if err := tbl.Close(); err != nil {
				t.Error(err)
			}
		})

		if tbl.Name() != name {
			t.Fatalf("unexpected table name: got %q, want %q", tbl.Name(), name)
		}

		return tbl
	}

	setupUTF16 := func(t *testing.T) UTF16Table {
		tbl := setup(t)

		u, ok := tbl.(UTF16Table)
		if !ok {
			t.Skip("table does not support interning raw UTF-16 code units")
		}

		return u
	}

	t.Run("Store", func(t *testing.T) {
		t.Parallel()

		t.Run("Open", func(t *testing.T) {
			t.Parallel()

			t.Run("allows tables to be opened multiple times", func(t *testing.T) {
				t.Parallel()

				name := xtesting.SequentialName("table")

				t1, err := store.Open(t.Context(), name)
				if err != nil {
					t.Fatal(err)
				}
				defer t1.Close()

				t2, err := store.Open(t.Context(), name)
				if err != nil {
					t.Fatal(err)
				}
				defer t2.Close()

				r1 := t1.Intern("<text>")
				defer t1.Release(r1)

				r2 := t2.Intern("<text>")
				defer t2.Release(r2)

				if r1 != r2 {
					t.Fatalf("expected tables with the same name to share entries: got %d and %d", r1, r2)
				}

				if t1.Space() != t2.Space() {
					t.Fatalf("expected tables with the same name to share a space: got %d and %d", t1.Space(), t2.Space())
				}

				if t1.Space() == 0 {
					t.Fatal("expected a non-zero space")
				}
			})

			t.Run("isolates tables with different names", func(t *testing.T) {
				t.Parallel()

				t1 := setup(t)
				t2 := setup(t)

				if t1.Space() == t2.Space() {
					t.Fatalf("expected tables with different names to have different spaces: got %d for both", t1.Space())
				}

				r1 := t1.Intern("<text>")
				defer t1.Release(r1)

				t2.Release(t2.Intern("<other>"))
				r2 := t2.Intern("<text>")
				defer t2.Release(r2)

				if got, want := t2.UTF16(r2), utf16.Encode([]rune("<text>")); !cmp.Equal(got, want) {
					t.Fatalf("unexpected code units: %s", cmp.Diff(want, got))
				}
			})
		})
	})

	t.Run("Table", func(t *testing.T) {
		t.Parallel()

		t.Run("Intern", func(t *testing.T) {
			t.Parallel()

			t.Run("it never returns the zero reference", func(t *testing.T) {
				t.Parallel()

				tbl := setup(t)

				r := tbl.Intern("<text>")
				defer tbl.Release(r)

				if r == 0 {
					t.Fatal("expected a non-zero reference")
				}
			})

			t.Run("it returns the same reference for equal text", func(t *testing.T) {
				t.Parallel()

				tbl := setup(t)

				r1 := tbl.Intern("<text>")
				defer tbl.Release(r1)

				r2 := tbl.Intern("<text>")
				defer tbl.Release(r2)

				if r1 != r2 {
					t.Fatalf("unexpected reference: got %d, want %d", r2, r1)
				}
			})

			t.Run("it returns different references for different text", func(t *testing.T) {
				t.Parallel()

				tbl := setup(t)

				r1 := tbl.Intern("<text-1>")
				defer tbl.Release(r1)

				r2 := tbl.Intern("<text-2>")
				defer tbl.Release(r2)

				if r1 == r2 {
					t.Fatal("expected different references")
				}
			})

			t.Run("it interns the empty string", func(t *testing.T) {
				t.Parallel()

				tbl := setup(t)

				r := tbl.Intern("")
				defer tbl.Release(r)

				if n := len(tbl.UTF16(r)); n != 0 {
					t.Fatalf("unexpected number of code units: got %d, want 0", n)
				}
			})
		})

		t.Run("UTF16", func(t *testing.T) {
			t.Parallel()

			cases := []struct {
				Desc string
				Text string
			}{
				{"ascii", "hello"},
				{"basic multilingual plane", "héllo, мир"},
				{"supplementary planes", "🌍 𝄞"},
				{"url", "http://www.w3.org/1999/xhtml"},
			}

			for _, c := range cases {
				t.Run("it returns the code units of "+c.Desc+" text", func(t *testing.T) {
					t.Parallel()

					tbl := setup(t)

					r := tbl.Intern(c.Text)
					defer tbl.Release(r)

					want := utf16.Encode([]rune(c.Text))
					if diff := cmp.Diff(want, tbl.UTF16(r)); diff != "" {
						t.Fatal(diff)
					}
				})
			}
		})

		t.Run("Hash", func(t *testing.T) {
			t.Parallel()

			t.Run("it returns the same hash for the same entry", func(t *testing.T) {
				t.Parallel()

				tbl := setup(t)

				r1 := tbl.Intern("<text>")
				defer tbl.Release(r1)

				h := tbl.Hash(r1)

				r2 := tbl.Intern("<text>")
				defer tbl.Release(r2)

				tbl.AddRef(r1)
				tbl.Release(r1)

				if got := tbl.Hash(r2); got != h {
					t.Fatalf("unexpected hash: got %d, want %d", got, h)
				}
			})
		})

		t.Run("AddRef and Release", func(t *testing.T) {
			t.Parallel()

			t.Run("the entry remains available while any reference is held", func(t *testing.T) {
				t.Parallel()

				tbl := setup(t)

				r := tbl.Intern("<text>")
				tbl.AddRef(r)
				tbl.AddRef(r)

				tbl.Release(r)
				tbl.Release(r)

				if got, want := tbl.UTF16(r), utf16.Encode([]rune("<text>")); !cmp.Equal(got, want) {
					t.Fatalf("unexpected code units: %s", cmp.Diff(want, got))
				}

				if got := tbl.Intern("<text>"); got != r {
					t.Fatalf("unexpected reference: got %d, want %d", got, r)
				}

				tbl.Release(r)
				tbl.Release(r)
			})

			t.Run("it is safe for concurrent use", func(t *testing.T) {
				t.Parallel()

				tbl := setup(t)

				anchor := tbl.Intern("<anchor>")
				defer tbl.Release(anchor)

				var g sync.WaitGroup
				for range 8 {
					g.Add(1)
					go func() {
						defer g.Done()

						for range 100 {
							r := tbl.Intern("<shared>")
							tbl.AddRef(r)
							tbl.Release(r)
							tbl.Release(r)

							tbl.AddRef(anchor)
							tbl.Release(anchor)
						}
					}()
				}
				g.Wait()

				if got, want := tbl.UTF16(anchor), utf16.Encode([]rune("<anchor>")); !cmp.Equal(got, want) {
					t.Fatalf("unexpected code units: %s", cmp.Diff(want, got))
				}
			})
		})

		t.Run("Close", func(t *testing.T) {
			t.Parallel()

			t.Run("references remain valid after the table is closed", func(t *testing.T) {
				t.Parallel()

				tbl, err := store.Open(t.Context(), xtesting.SequentialName("table"))
				if err != nil {
					t.Fatal(err)
				}

				r := tbl.Intern("<text>")

				if err := tbl.Close(); err != nil {
					t.Fatal(err)
				}

				if got, want := tbl.UTF16(r), utf16.Encode([]rune("<text>")); !cmp.Equal(got, want) {
					t.Fatalf("unexpected code units: %s", cmp.Diff(want, got))
				}

				tbl.Release(r)
			})
		})

		t.Run("InternUTF16", func(t *testing.T) {
			t.Parallel()

			t.Run("it shares entries with Intern", func(t *testing.T) {
				t.Parallel()

				tbl := setupUTF16(t)

				r1 := tbl.Intern("𝄞 clef")
				defer tbl.Release(r1)

				r2 := tbl.InternUTF16(utf16.Encode([]rune("𝄞 clef")))
				defer tbl.Release(r2)

				if r1 != r2 {
					t.Fatalf("unexpected reference: got %d, want %d", r2, r1)
				}
			})

			t.Run("it accepts lone surrogates", func(t *testing.T) {
				t.Parallel()

				tbl := setupUTF16(t)

				units := []uint16{'a', 0xD800, 'b', 0xDC00}

				r := tbl.InternUTF16(units)
				defer tbl.Release(r)

				if diff := cmp.Diff(units, tbl.UTF16(r)); diff != "" {
					t.Fatal(diff)
				}
			})

			t.Run("it does not retain the caller's slice", func(t *testing.T) {
				t.Parallel()

				tbl := setupUTF16(t)

				units := []uint16{'a', 'b', 'c'}

				r := tbl.InternUTF16(units)
				defer tbl.Release(r)

				units[0] = 'x'

				if diff := cmp.Diff([]uint16{'a', 'b', 'c'}, tbl.UTF16(r)); diff != "" {
					t.Fatal(diff)
				}
			})
		})

		t.Run("property-based", func(t *testing.T) {
			t.Parallel()

			rapid.Check(t, func(t *rapid.T) {
				tbl, err := store.Open(context.Background(), xtesting.SequentialName("table"))
				if err != nil {
					t.Fatal(err)
				}
				defer tbl.Close()

				text := rapid.StringN(0, 8, -1)

				var (
					held  []Ref
					refs  = map[string]Ref{}
					texts = map[Ref]string{}
					count = map[Ref]int{}
				)

				defer func() {
					for _, r := range held {
						tbl.Release(r)
					}
				}()

				t.Repeat(
					map[string]func(*rapid.T){
						"Intern": func(t *rapid.T) {
							s := text.Draw(t, "text")
							r := tbl.Intern(s)

							if prev, ok := refs[s]; ok && prev != r {
								t.Fatalf("unexpected reference for held text %q: got %d, want %d", s, r, prev)
							}

							if prev, ok := texts[r]; ok && prev != s {
								t.Fatalf("reference %d is shared by %q and %q", r, prev, s)
							}

							refs[s] = r
							texts[r] = s
							count[r]++
							held = append(held, r)
						},
						"AddRef": func(t *rapid.T) {
							if len(held) == 0 {
								t.Skip("skip: no references are held")
							}

							r := rapid.SampledFrom(held).Draw(t, "ref")
							tbl.AddRef(r)

							count[r]++
							held = append(held, r)
						},
						"Release": func(t *rapid.T) {
							if len(held) == 0 {
								t.Skip("skip: no references are held")
							}

							i := rapid.IntRange(0, len(held)-1).Draw(t, "index")
							r := held[i]
							tbl.Release(r)

							held = append(held[:i], held[i+1:]...)
							count[r]--

							if count[r] == 0 {
								delete(count, r)
								delete(refs, texts[r])
								delete(texts, r)
							}
						},
						"UTF16": func(t *rapid.T) {
							if len(held) == 0 {
								t.Skip("skip: no references are held")
							}

							r := rapid.SampledFrom(held).Draw(t, "ref")

							want := utf16.Encode([]rune(texts[r]))
							if diff := cmp.Diff(want, tbl.UTF16(r)); diff != "" {
								t.Fatal(diff)
							}
						},
					},
				)
			})
		})
	})
}
