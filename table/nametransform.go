package table

import "context"

// WithNameTransform returns a [Store] that uses x to transform the name of each
// table within s.
//
// [Table.Name] returns the untransformed name.
func WithNameTransform(
	s Store,
	x func(string) string,
) Store {
	return &nameTransformStore{s, x}
}

type nameTransformStore struct {
	Store
	transform func(string) string
}

func (s *nameTransformStore) Open(ctx context.Context, name string) (Table, error) {
	t, err := s.Store.Open(ctx, s.transform(name))
	if err != nil {
		return nil, err
	}

	return wrapName(t, name), nil
}

// wrapName returns a table that reports the given name, and otherwise behaves
// exactly like t, including support for [UTF16Table].
func wrapName(t Table, name string) Table {
	if u, ok := t.(UTF16Table); ok {
		return renamedUTF16Table{u, name}
	}
	return renamedTable{t, name}
}

type renamedTable struct {
	Table
	name string
}

func (t renamedTable) Name() string {
	return t.name
}

type renamedUTF16Table struct {
	UTF16Table
	name string
}

func (t renamedUTF16Table) Name() string {
	return t.name
}
