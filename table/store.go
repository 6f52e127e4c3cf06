package table

import "context"

// Store is a collection of named interning tables.
type Store interface {
	// Open returns the table with the given name.
	//
	// Tables opened with the same name share the same entries.
	Open(ctx context.Context, name string) (Table, error)
}
