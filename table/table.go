package table

import (
	"math"
	"sync/atomic"
)

// MaxLength is the maximum length of text that may be interned, in bytes for
// [Table.Intern] and in code units for [UTF16Table.InternUTF16].
const MaxLength = math.MaxUint32

// Ref is an opaque reference to an entry in a [Table].
//
// The zero value is never returned by a table.
type Ref uintptr

// Space identifies the entries shared by all [Table] values opened with the
// same name from the same [Store]. Two references are to the same entry if and
// only if they are equal and belong to the same Space.
//
// The zero value is not a valid Space.
type Space uint64

var spaces atomic.Uint64

// NewSpace returns a Space that is distinct from every other Space returned
// within this process.
func NewSpace() Space {
	return Space(spaces.Add(1))
}

// A Table is an interning table that maps text to canonical, reference-counted
// entries.
//
// All methods are safe for concurrent use. Supplying a [Ref] that was not
// obtained from the same table, or that is not currently held by the caller,
// is a programming error and causes a panic.
//
// Each value returned by [Store.Open] is a separate handle, but handles for
// the same name share a [Space], and therefore share entries and references.
type Table interface {
	// Name returns the name of the table.
	Name() string

	// Space returns the identity of the interning space that the table
	// operates on.
	Space() Space

	// Intern returns the reference to the entry for text, creating the entry
	// if it does not exist.
	//
	// The caller owns one unit of the entry's reference count, which must
	// eventually be returned by calling Release.
	Intern(text string) Ref

	// Hash returns the hash of the entry. It is stable for the lifetime of the
	// entry.
	Hash(r Ref) uint32

	// AddRef increments the entry's reference count. Each call must be paired
	// with a later call to Release.
	AddRef(r Ref)

	// Release decrements the entry's reference count. The entry may be
	// reclaimed once the count reaches zero.
	Release(r Ref)

	// UTF16 returns the entry's text as UTF-16 code units.
	//
	// The returned slice must not be modified. It remains valid for as long as
	// the caller holds a reference to the entry.
	UTF16(r Ref) []uint16

	// Close closes the table, after which no further text may be interned.
	//
	// It does not release any references. References obtained before the
	// table was closed remain valid, and must still be released.
	Close() error
}

// A UTF16Table is a [Table] that can intern raw UTF-16 code units, including
// sequences that are not valid UTF-16.
type UTF16Table interface {
	Table

	// InternUTF16 returns the reference to the entry for the given code
	// units, creating the entry if it does not exist.
	//
	// If units is valid UTF-16, the entry is the same entry that [Table.Intern]
	// returns for the equivalent text.
	InternUTF16(units []uint16) Ref
}
