package xtesting

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// UniqueName returns a name with the given prefix that is unique across
// processes.
func UniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// sequences maps each prefix passed to [SequentialName] to its counter.
var sequences sync.Map // map[string]*atomic.Uint64

// SequentialName returns a name with the given prefix that is unique within
// this process.
//
// Names with the same prefix are numbered from 1, in the order they are
// requested.
func SequentialName(prefix string) string {
	v, _ := sequences.LoadOrStore(prefix, new(atomic.Uint64))
	n := v.(*atomic.Uint64).Add(1)
	return fmt.Sprintf("%s-%d", prefix, n)
}
