package xtelemetry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// opens maps each table name to the number of times it has been opened.
var opens sync.Map // map[string]*atomic.Uint64

// HandleID returns an identifier for a single opened handle of the named
// interning table.
//
// The identifier has the form "<name>#<n> <uuid>", where n counts the handles
// opened for that name within this process. Handles that share an interning
// space share a name, so n distinguishes them at a glance while the UUID
// remains globally unique.
func HandleID(name string) string {
	v, _ := opens.LoadOrStore(name, new(atomic.Uint64))

	return fmt.Sprintf(
		"%s#%d %s",
		name,
		v.(*atomic.Uint64).Add(1),
		uuid.NewString(),
	)
}
