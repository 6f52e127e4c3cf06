package memorytable

import (
	"context"
	"sync"

	"github.com/dogmatiq/atomkit/table"
)

// Store is an in-memory implementation of [table.Store].
//
// Its tables also implement [table.UTF16Table].
type Store struct {
	state sync.Map // map[string]*state
}

// Open returns the table with the given name.
func (s *Store) Open(ctx context.Context, name string) (table.Table, error) {
	st, ok := s.state.Load(name)

	if !ok {
		st, _ = s.state.LoadOrStore(
			name,
			newState(),
		)
	}

	return &tableimpl{
		name:  name,
		state: st.(*state),
	}, ctx.Err()
}
