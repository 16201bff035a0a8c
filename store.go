package grove

import "context"

// Ref is an opaque handle to a node of the instance tree. It is minted and
// interpreted by the TreeStore; the engine only carries it between calls.
type Ref = any

// Entry is one named child of a group.
type Entry struct {
	Name string
	Ref  Ref
}

// Attribute is one key/value pair from a node's attribute table.
type Attribute struct {
	Key   string
	Value Value
}

// DatasetInfo carries the scalar properties of a dataset.
type DatasetInfo struct {
	Shape       []int64
	Rank        int
	ElementType string
}

// PropKind addresses one DatasetInfo field from a property validator.
type PropKind string

const (
	PropShape       PropKind = "shape"
	PropRank        PropKind = "rank"
	PropElementType PropKind = "element_type"
)

// Value returns the addressed property of info.
func (p PropKind) Value(info DatasetInfo) Value {
	switch p {
	case PropShape:
		return info.Shape
	case PropRank:
		return info.Rank
	default:
		return info.ElementType
	}
}

// TreeStore is the read-only view of a concrete instance tree. The engine
// holds no tree state of its own: every traversal question goes through this
// interface, and implementations must not be mutated during a Validate call.
//
// Children and Attributes must return entries in a stable order; report
// determinism depends on it.
type TreeStore interface {
	// Children lists the named children of a group.
	Children(ctx context.Context, ref Ref) ([]Entry, error)
	// Attributes lists the attribute table of a group or dataset.
	Attributes(ctx context.Context, ref Ref) ([]Attribute, error)
	// Properties returns the scalar properties of a dataset.
	Properties(ctx context.Context, ref Ref) (DatasetInfo, error)
	// IsGroup reports whether ref names a group.
	IsGroup(ctx context.Context, ref Ref) (bool, error)
	// IsDataset reports whether ref names a dataset.
	IsDataset(ctx context.Context, ref Ref) (bool, error)
}
