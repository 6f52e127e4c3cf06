package memorytable

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"unicode/utf16"

	"github.com/cespare/xxhash/v2"
	"github.com/dogmatiq/atomkit/table"
)

// state is the in-memory state of a table.
type state struct {
	sync.RWMutex
	space table.Space
	byKey map[string]*entry
	byRef map[table.Ref]*entry
	last  table.Ref
}

func newState() *state {
	return &state{
		space: table.NewSpace(),
		byKey: map[string]*entry{},
		byRef: map[table.Ref]*entry{},
	}
}

// entry is a single interned string.
type entry struct {
	ref   table.Ref
	key   string
	units []uint16
	hash  uint32
	refs  atomic.Int64
}

// acquire increments the entry's reference count, unless it has already
// dropped to zero.
func (e *entry) acquire() bool {
	for {
		n := e.refs.Load()
		if n <= 0 {
			return false
		}
		if e.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// tableimpl is an implementation of [table.UTF16Table] that manipulates a
// table's in-memory [state].
type tableimpl struct {
	name   string
	state  *state
	closed atomic.Bool
}

func (t *tableimpl) Name() string {
	return t.name
}

func (t *tableimpl) Space() table.Space {
	return t.state.space
}

func (t *tableimpl) Intern(text string) table.Ref {
	return t.intern(utf16.Encode([]rune(text)))
}

func (t *tableimpl) InternUTF16(units []uint16) table.Ref {
	return t.intern(units)
}

func (t *tableimpl) intern(units []uint16) table.Ref {
	if t.closed.Load() {
		panic("table is closed")
	}

	key := keyOf(units)

	t.state.RLock()
	e, ok := t.state.byKey[key]
	if ok && e.acquire() {
		t.state.RUnlock()
		return e.ref
	}
	t.state.RUnlock()

	t.state.Lock()
	defer t.state.Unlock()

	if e, ok := t.state.byKey[key]; ok {
		// The entry may have a count of zero if it is waiting to be reclaimed
		// by Release(), which re-checks the count under this same lock.
		e.refs.Add(1)
		return e.ref
	}

	t.state.last++

	e = &entry{
		ref:   t.state.last,
		key:   key,
		units: slices.Clone(units),
		hash:  hashOf(key),
	}
	e.refs.Store(1)

	t.state.byKey[key] = e
	t.state.byRef[e.ref] = e

	return e.ref
}

func (t *tableimpl) Hash(r table.Ref) uint32 {
	return t.lookup(r).hash
}

func (t *tableimpl) AddRef(r table.Ref) {
	if !t.lookup(r).acquire() {
		panic(fmt.Sprintf("cannot add a reference to entry %d, its reference count is zero", r))
	}
}

func (t *tableimpl) Release(r table.Ref) {
	e := t.lookup(r)

	n := e.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic(fmt.Sprintf("reference count underflow on entry %d", r))
	}

	t.state.Lock()
	defer t.state.Unlock()

	if e.refs.Load() == 0 && t.state.byRef[r] == e {
		delete(t.state.byRef, r)
		delete(t.state.byKey, e.key)
	}
}

func (t *tableimpl) UTF16(r table.Ref) []uint16 {
	return t.lookup(r).units
}

func (t *tableimpl) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return errors.New("table is already closed")
	}
	return nil
}

// lookup returns the entry referenced by r.
func (t *tableimpl) lookup(r table.Ref) *entry {
	t.state.RLock()
	e, ok := t.state.byRef[r]
	t.state.RUnlock()

	if !ok {
		panic(fmt.Sprintf("unknown reference %d in %q table", r, t.name))
	}

	return e
}

// keyOf returns the map key for the given code units.
func keyOf(units []uint16) string {
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}
	return string(buf)
}

// hashOf returns the 32-bit hash of an entry with the given key.
func hashOf(key string) uint32 {
	h := xxhash.Sum64String(key)
	return uint32(h) ^ uint32(h>>32)
}
