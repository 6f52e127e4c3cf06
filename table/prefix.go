package table

import "context"

// WithNamePrefix returns a [Store] that adds the given prefix to all table
// names.
func WithNamePrefix(store Store, prefix string) Store {
	return prefixedStore{store, prefix}
}

// prefixedStore is a [Store] that adds a prefix to all table names.
type prefixedStore struct {
	Store
	prefix string
}

func (s prefixedStore) Open(ctx context.Context, name string) (Table, error) {
	t, err := s.Store.Open(ctx, s.prefix+name)
	if err != nil {
		return nil, err
	}

	return wrapName(t, name), nil
}
