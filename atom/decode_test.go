package atom_test

import (
	"errors"
	"fmt"
	"testing"
	"unicode/utf8"

	. "github.com/dogmatiq/atomkit/atom"
	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

// decoded is a single element produced by [Atom.Runes].
type decoded struct {
	Rune rune
	Err  error
}

func collect(a *Atom) []decoded {
	var result []decoded
	for r, err := range a.Runes() {
		result = append(result, decoded{r, err})
	}
	return result
}

func TestAtom_Runes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		Desc  string
		Units []uint16
		Want  []decoded
	}{
		{
			Desc:  "empty",
			Units: nil,
			Want:  nil,
		},
		{
			Desc:  "basic multilingual plane",
			Units: []uint16{'a', 0x00E9, 0x4E16},
			Want:  []decoded{{'a', nil}, {'é', nil}, {'世', nil}},
		},
		{
			Desc:  "surrogate pair",
			Units: []uint16{0xD834, 0xDD1E},
			Want:  []decoded{{'𝄞', nil}},
		},
		{
			Desc:  "lone high surrogate",
			Units: []uint16{'a', 0xD800, 'b'},
			Want: []decoded{
				{'a', nil},
				{utf8.RuneError, &LoneSurrogateError{Index: 1, Unit: 0xD800}},
				{'b', nil},
			},
		},
		{
			Desc:  "lone low surrogate",
			Units: []uint16{0xDC00, 'a'},
			Want: []decoded{
				{utf8.RuneError, &LoneSurrogateError{Index: 0, Unit: 0xDC00}},
				{'a', nil},
			},
		},
		{
			Desc:  "trailing high surrogate",
			Units: []uint16{'a', 0xDBFF},
			Want: []decoded{
				{'a', nil},
				{utf8.RuneError, &LoneSurrogateError{Index: 1, Unit: 0xDBFF}},
			},
		},
		{
			Desc:  "high surrogate followed by a valid pair",
			Units: []uint16{0xD800, 0xD834, 0xDD1E},
			Want: []decoded{
				{utf8.RuneError, &LoneSurrogateError{Index: 0, Unit: 0xD800}},
				{'𝄞', nil},
			},
		},
		{
			Desc:  "reversed surrogate pair",
			Units: []uint16{0xDD1E, 0xD834},
			Want: []decoded{
				{utf8.RuneError, &LoneSurrogateError{Index: 0, Unit: 0xDD1E}},
				{utf8.RuneError, &LoneSurrogateError{Index: 1, Unit: 0xD834}},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.Desc, func(t *testing.T) {
			t.Parallel()

			tbl, _ := setup(t)

			a := FromUTF16(tbl, c.Units)
			defer a.Release()

			if diff := cmp.Diff(c.Want, collect(a)); diff != "" {
				t.Fatal(diff)
			}
		})
	}

	t.Run("the sequence can be iterated more than once", func(t *testing.T) {
		t.Parallel()

		tbl, _ := setup(t)

		a := New(tbl, "héllo 𝄞")
		defer a.Release()

		seq := a.Runes()

		var first, second []rune
		for r := range seq {
			first = append(first, r)
		}
		for r := range seq {
			second = append(second, r)
		}

		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatal(diff)
		}

		if diff := cmp.Diff([]rune("héllo 𝄞"), first); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("iteration can be stopped early", func(t *testing.T) {
		t.Parallel()

		tbl, _ := setup(t)

		a := New(tbl, "abc")
		defer a.Release()

		var got []rune
		for r := range a.Runes() {
			got = append(got, r)
			if r == 'b' {
				break
			}
		}

		if diff := cmp.Diff([]rune("ab"), got); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("it panics if the atom has been released", func(t *testing.T) {
		t.Parallel()

		tbl, _ := setup(t)

		a := New(tbl, "abc")
		a.Release()

		expectPanic(t, "atom has been released", func() {
			a.Runes()
		})
	})
}

func TestAtom_Text(t *testing.T) {
	t.Parallel()

	t.Run("it returns the original text", func(t *testing.T) {
		t.Parallel()

		tbl, acc := setup(t)

		rapid.Check(t, func(t *rapid.T) {
			s := rapid.String().Draw(t, "text")

			a := New(tbl, s)
			defer a.Release()

			if got := a.Text(); got != s {
				t.Fatalf("unexpected text: got %q, want %q", got, s)
			}
		})

		expectBalance(t, acc, 0)
	})

	t.Run("it panics if the text contains a lone surrogate", func(t *testing.T) {
		t.Parallel()

		tbl, acc := setup(t)

		a := FromUTF16(tbl, []uint16{'a', 0xDC00})

		func() {
			defer a.Release()

			defer func() {
				r := recover()

				err, ok := r.(error)
				if !ok {
					t.Fatalf("expected panic with an error, got %v", r)
				}

				if !IsLoneSurrogate(err) {
					t.Fatalf("unexpected error: %v", err)
				}

				if got, want := err.Error(), "lone surrogate 0xDC00 at code unit 1"; got != want {
					t.Fatalf("unexpected error message: got %q, want %q", got, want)
				}
			}()

			a.Text()
		}()

		expectBalance(t, acc, 0)
	})
}

func TestAtom_String(t *testing.T) {
	t.Parallel()

	tbl, _ := setup(t)

	a := FromUTF16(tbl, []uint16{'a', 0xD800, 'b'})
	defer a.Release()

	if got, want := a.String(), "a�b"; got != want {
		t.Fatalf("unexpected string: got %q, want %q", got, want)
	}

	if got, want := fmt.Sprint(a), "a�b"; got != want {
		t.Fatalf("unexpected formatted string: got %q, want %q", got, want)
	}
}

func TestEqualString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		Desc  string
		Atom  string
		Other string
		Want  bool
	}{
		{"identical", "abc", "abc", true},
		{"different last character", "abc", "abd", false},
		{"atom is a prefix", "ab", "abc", false},
		{"string is a prefix", "abc", "ab", false},
		{"both empty", "", "", true},
		{"empty atom", "", "a", false},
		{"empty string", "a", "", false},
		{"supplementary planes", "🌍 𝄞", "🌍 𝄞", true},
		{"different supplementary character", "🌍", "🌎", false},
		{"invalid UTF-8 against the replacement character", "\uFFFD", "\xff", false},
		{"invalid UTF-8 within the string", "a\uFFFDb", "a\xffb", false},
		{"truncated UTF-8 sequence", "é", "\xc3", false},
		{"atom interned from invalid UTF-8", "\xff", "\xff", false},
		{"replacement character", "\uFFFD", "\uFFFD", true},
	}

	for _, c := range cases {
		t.Run(c.Desc, func(t *testing.T) {
			t.Parallel()

			tbl, _ := setup(t)

			a := New(tbl, c.Atom)
			defer a.Release()

			if got := a.EqualString(c.Other); got != c.Want {
				t.Fatalf("unexpected result of a.EqualString(%q): got %t, want %t", c.Other, got, c.Want)
			}

			if got := EqualString(c.Other, a); got != c.Want {
				t.Fatalf("unexpected result of EqualString(%q, a): got %t, want %t", c.Other, got, c.Want)
			}
		})
	}

	t.Run("a lone surrogate is never equal to any native string", func(t *testing.T) {
		t.Parallel()

		tbl, _ := setup(t)

		a := FromUTF16(tbl, []uint16{0xD800})
		defer a.Release()

		for _, s := range []string{"", "�", "\xed\xa0\x80"} {
			if a.EqualString(s) || EqualString(s, a) {
				t.Fatalf("did not expect lone surrogate to equal %q", s)
			}
		}
	})

	t.Run("it is consistent with native string equality, in both orders", func(t *testing.T) {
		t.Parallel()

		tbl, _ := setup(t)

		rapid.Check(t, func(t *rapid.T) {
			s1 := rapid.String().Draw(t, "s1")
			s2 := rapid.OneOf(rapid.Just(s1), rapid.String()).Draw(t, "s2")

			a := New(tbl, s1)
			defer a.Release()

			forward := a.EqualString(s2)
			reverse := EqualString(s2, a)

			if forward != reverse {
				t.Fatalf("asymmetric comparison: %t vs %t", forward, reverse)
			}

			if want := s1 == s2; forward != want {
				t.Fatalf("unexpected result comparing %q and %q: got %t, want %t", s1, s2, forward, want)
			}
		})
	})

	t.Run("atoms that compare equal to the same string are equal", func(t *testing.T) {
		t.Parallel()

		tbl, _ := setup(t)

		rapid.Check(t, func(t *rapid.T) {
			s1 := rapid.String().Draw(t, "s1")
			s2 := rapid.OneOf(rapid.Just(s1), rapid.String()).Draw(t, "s2")

			a := New(tbl, s1)
			defer a.Release()

			b := New(tbl, s2)
			defer b.Release()

			if a.Equal(b) != (s1 == s2) {
				t.Fatalf("unexpected equality of %q and %q: got %t", s1, s2, a.Equal(b))
			}
		})
	})
}

func TestIsLoneSurrogate(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("<context>: %w", &LoneSurrogateError{Index: 3, Unit: 0xD800})

	if !IsLoneSurrogate(err) {
		t.Fatal("expected wrapped error to be recognized")
	}

	if IsLoneSurrogate(errors.New("<error>")) {
		t.Fatal("did not expect unrelated error to be recognized")
	}
}
