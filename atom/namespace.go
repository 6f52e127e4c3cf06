package atom

import "github.com/dogmatiq/atomkit/table"

// Well-known namespace URIs.
const (
	NoNamespace     = ""
	HTMLNamespace   = "http://www.w3.org/1999/xhtml"
	XMLNamespace    = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace  = "http://www.w3.org/2000/xmlns/"
	XLinkNamespace  = "http://www.w3.org/1999/xlink"
	SVGNamespace    = "http://www.w3.org/2000/svg"
	MathMLNamespace = "http://www.w3.org/1998/Math/MathML"
)

// Namespace is an [Atom] that identifies a namespace, typically by URI.
//
// Its identity, hash and equality are those of the atom.
type Namespace struct {
	Atom *Atom
}

// NewNamespace returns a namespace that takes ownership of a.
func NewNamespace(a *Atom) Namespace {
	return Namespace{a}
}

// NamespaceOf returns the namespace with the given URI, interning it in t.
func NamespaceOf(t table.Table, uri string) Namespace {
	return Namespace{New(t, uri)}
}

// Equal returns true if n and x are the same namespace.
func (n Namespace) Equal(x Namespace) bool {
	return n.Atom.Equal(x.Atom)
}

// EqualString returns true if the namespace's URI is equal to s.
func (n Namespace) EqualString(s string) bool {
	return n.Atom.EqualString(s)
}

// Hash returns the hash of the namespace's URI, as provided by the table.
func (n Namespace) Hash() uint32 {
	return n.Atom.Hash()
}

// Key returns a comparable representation of the namespace's identity.
func (n Namespace) Key() Key {
	return n.Atom.Key()
}

// Clone returns a new namespace that owns its own reference to the same
// table entry.
func (n Namespace) Clone() Namespace {
	return Namespace{n.Atom.Clone()}
}

// Release releases the namespace's atom.
func (n Namespace) Release() {
	n.Atom.Release()
}

func (n Namespace) String() string {
	return n.Atom.String()
}
