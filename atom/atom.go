package atom

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"unicode/utf16"

	"github.com/dogmatiq/atomkit/table"
)

// Atom is a handle to an interned string.
//
// Each Atom owns one reference to an entry in a [table.Table]. The reference
// is returned to the table exactly once, either when [Atom.Release] is called
// or, if the Atom becomes unreachable without being released, by the garbage
// collector. Relying on the garbage collector delays reclamation of the entry
// by an unbounded amount of time, so atoms should be released explicitly, or
// used within [With].
//
// An Atom is safe for concurrent use.
type Atom struct {
	table    table.Table
	space    table.Space
	ref      table.Ref
	released atomic.Bool
	cleanup  runtime.Cleanup
}

// Key is a comparable representation of an [Atom]'s identity, suitable for use
// as a map key.
//
// Two atoms have the same key if and only if [Atom.Equal] reports true.
type Key struct {
	space table.Space
	ref   table.Ref
}

// New returns an atom for the given text, interning it in t.
//
// It panics if s is longer than [table.MaxLength] bytes.
func New[S ~string | ~[]byte](t table.Table, s S) *Atom {
	checkLength(uint64(len(s)), "bytes")
	return adopt(t, t.Intern(string(s)))
}

// FromUTF16 returns an atom for text given as UTF-16 code units, interning it
// in t.
//
// units need not be valid UTF-16. The atom's [Atom.Runes] reports each lone
// surrogate as an error.
//
// It panics if units is longer than [table.MaxLength] code units.
func FromUTF16(t table.UTF16Table, units []uint16) *Atom {
	checkLength(uint64(len(units)), "code units")
	return adopt(t, t.InternUTF16(units))
}

// With returns the result of calling fn with an atom for the given text.
//
// The atom is released when fn returns, regardless of whether it returns an
// error or panics. fn must not retain the atom; it may retain clones of it.
func With[S ~string | ~[]byte](t table.Table, s S, fn func(*Atom) error) error {
	a := New(t, s)
	defer a.Release()
	return fn(a)
}

// Clone returns a new atom that refers to the same entry as a.
//
// The clone owns its own reference and must be released independently.
func (a *Atom) Clone() *Atom {
	a.mustBeLive()
	a.table.AddRef(a.ref)
	c := adopt(a.table, a.ref)
	runtime.KeepAlive(a)
	return c
}

// Release returns a's reference to the table.
//
// Only the first call has any effect, so it is safe to defer a call to Release
// and also release the atom explicitly. It is a no-op if a is nil.
func (a *Atom) Release() {
	if a == nil || !a.released.CompareAndSwap(false, true) {
		return
	}

	a.cleanup.Stop()
	a.table.Release(a.ref)
}

// Hash returns the hash of the atom's text, as provided by the table.
func (a *Atom) Hash() uint32 {
	a.mustBeLive()
	h := a.table.Hash(a.ref)
	runtime.KeepAlive(a)
	return h
}

// Equal returns true if a and b refer to the same table entry.
//
// Atoms obtained from separate [table.Table] values that share a
// [table.Space] are equal if they refer to the same entry. Because the table
// interns text, this is equivalent to comparing the text of atoms within one
// space. Equal does not access the table, and may be called on released atoms.
func (a *Atom) Equal(b *Atom) bool {
	if a == b {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	return a.space == b.space && a.ref == b.ref
}

// Key returns a comparable representation of the atom's identity.
func (a *Atom) Key() Key {
	return Key{a.space, a.ref}
}

// UTF16 returns the atom's text as UTF-16 code units.
//
// The slice is owned by the table. It must not be modified, and must not be
// used after a is released. The caller must keep a reachable while using the
// slice, for example with [runtime.KeepAlive].
func (a *Atom) UTF16() []uint16 {
	a.mustBeLive()
	return a.table.UTF16(a.ref)
}

// Ref returns the atom's reference into its table, for use with the table's
// own API.
//
// It does not transfer ownership of the reference.
func (a *Atom) Ref() table.Ref {
	return a.ref
}

// Table returns the table that holds the atom's text.
func (a *Atom) Table() table.Table {
	return a.table
}

// HeapSize returns the number of bytes of heap memory owned by the atom, not
// including the atom itself.
//
// It is always zero, the text is owned by the table.
func (a *Atom) HeapSize() int {
	return 0
}

// String returns the atom's text for display.
//
// Unlike [Atom.Text], it does not panic if the text is not valid UTF-16.
// Instead, each lone surrogate is replaced with U+FFFD.
func (a *Atom) String() string {
	if a == nil {
		return "<nil>"
	}

	if a.released.Load() {
		return "<released>"
	}

	s := string(utf16.Decode(a.table.UTF16(a.ref)))
	runtime.KeepAlive(a)
	return s
}

// GoString returns a representation of the atom that identifies its table
// entry.
func (a *Atom) GoString() string {
	return fmt.Sprintf("atom.Atom{table: %q, ref: %#x}", a.table.Name(), uintptr(a.ref))
}

func (a *Atom) mustBeLive() {
	if a.released.Load() {
		panic("atom has been released")
	}
}

// owner is the reference owned by an [Atom]. It is separate from the atom so
// that the runtime can release it after the atom itself is unreachable.
type owner struct {
	table table.Table
	ref   table.Ref
}

func (o owner) release() {
	o.table.Release(o.ref)
}

// adopt returns a new atom that takes ownership of one reference to r.
func adopt(t table.Table, r table.Ref) *Atom {
	a := &Atom{
		table: t,
		space: t.Space(),
		ref:   r,
	}

	a.cleanup = runtime.AddCleanup(a, owner.release, owner{t, r})

	return a
}

// checkLength panics if n exceeds [table.MaxLength].
func checkLength(n uint64, unit string) {
	if n > table.MaxLength {
		panic(fmt.Sprintf(
			"cannot intern %d %s of text, the maximum is %d",
			n,
			unit,
			uint64(table.MaxLength),
		))
	}
}
