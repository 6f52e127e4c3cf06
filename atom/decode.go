package atom

import (
	"errors"
	"fmt"
	"iter"
	"runtime"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// LoneSurrogateError indicates that an atom's text contains a UTF-16
// surrogate code unit that is not part of a valid surrogate pair.
type LoneSurrogateError struct {
	// Index is the position of the surrogate within the atom's code units.
	Index int

	// Unit is the surrogate code unit.
	Unit uint16
}

func (e *LoneSurrogateError) Error() string {
	return fmt.Sprintf("lone surrogate 0x%04X at code unit %d", e.Unit, e.Index)
}

// IsLoneSurrogate returns true if err is caused by a [LoneSurrogateError].
func IsLoneSurrogate(err error) bool {
	var target *LoneSurrogateError
	return errors.As(err, &target)
}

// Runes returns a sequence of the Unicode scalar values in the atom's text.
//
// Each lone surrogate produces [utf8.RuneError] paired with a
// [*LoneSurrogateError], after which decoding resumes with the next code unit.
//
// The text is decoded lazily, each time the sequence is iterated.
func (a *Atom) Runes() iter.Seq2[rune, error] {
	a.mustBeLive()

	return func(yield func(rune, error) bool) {
		decode(a.UTF16(), yield)
		runtime.KeepAlive(a)
	}
}

// Text returns the atom's text.
//
// It panics with a [*LoneSurrogateError] if the text is not valid UTF-16. Use
// [Atom.Runes] to inspect text that may be invalid, or [Atom.String] for a
// lossy representation.
func (a *Atom) Text() string {
	var b strings.Builder

	for r, err := range a.Runes() {
		if err != nil {
			panic(err)
		}
		b.WriteRune(r)
	}

	return b.String()
}

// EqualString returns true if the atom's text is equal to s.
//
// It is equivalent to EqualString(s, a).
func (a *Atom) EqualString(s string) bool {
	return EqualString(s, a)
}

// EqualString returns true if s is equal to the text of a.
//
// The texts are compared one Unicode scalar value at a time, stopping at the
// first difference. A lone surrogate in a is never equal to any part of s, and
// an invalid UTF-8 sequence in s is never equal to any part of a.
func EqualString(s string, a *Atom) bool {
	units := a.UTF16()

	complete := decode(
		units,
		func(r rune, err error) bool {
			if err != nil || s == "" {
				return false
			}

			want, n := utf8.DecodeRuneInString(s)
			if want == utf8.RuneError && n == 1 {
				// s is not valid UTF-8 at this point.
				return false
			}

			if r != want {
				return false
			}

			s = s[n:]
			return true
		},
	)

	runtime.KeepAlive(a)

	return complete && s == ""
}

// decode calls yield for each scalar value in units, until yield returns
// false. It returns true if all of units was decoded.
func decode(units []uint16, yield func(rune, error) bool) bool {
	for i := 0; i < len(units); i++ {
		u := units[i]

		var (
			r   rune
			err error
		)

		switch {
		case !utf16.IsSurrogate(rune(u)):
			r = rune(u)
		case isHighSurrogate(u) && i+1 < len(units) && isLowSurrogate(units[i+1]):
			r = utf16.DecodeRune(rune(u), rune(units[i+1]))
			i++
		default:
			r = utf8.RuneError
			err = &LoneSurrogateError{i, u}
		}

		if !yield(r, err) {
			return false
		}
	}

	return true
}

func isHighSurrogate(u uint16) bool {
	return u >= 0xD800 && u < 0xDC00
}

func isLowSurrogate(u uint16) bool {
	return u >= 0xDC00 && u < 0xE000
}
