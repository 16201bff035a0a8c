// Package memstore is the in-memory reference implementation of
// grove.TreeStore. It backs the test suite and the CLI; children and
// attributes keep insertion order so validation reports stay deterministic.
package memstore

import (
	"context"

	"github.com/cockroachdb/errors"

	grove "github.com/treegrove/grove"
)

// Node is one group or dataset of an in-memory tree.
type Node struct {
	name     string
	group    bool
	info     grove.DatasetInfo
	attrs    []grove.Attribute
	children []*Node
}

// NewGroup creates an empty group node.
func NewGroup(name string) *Node {
	return &Node{name: name, group: true}
}

// NewDataset creates a dataset node with the given properties. When
// info.Rank is zero it is derived from the shape.
func NewDataset(name string, info grove.DatasetInfo) *Node {
	if info.Rank == 0 && len(info.Shape) > 0 {
		info.Rank = len(info.Shape)
	}
	return &Node{name: name, info: info}
}

// SetAttr sets an attribute, replacing an existing key in place so the
// original ordering survives. Returns the node for chaining.
func (n *Node) SetAttr(key string, value grove.Value) *Node {
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs[i].Value = value
			return n
		}
	}
	n.attrs = append(n.attrs, grove.Attribute{Key: key, Value: value})
	return n
}

// Add appends children to a group and returns the node for chaining.
func (n *Node) Add(children ...*Node) *Node {
	n.children = append(n.children, children...)
	return n
}

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Store adapts a Node tree to grove.TreeStore.
type Store struct {
	root *Node
}

// New wraps root into a read-only store.
func New(root *Node) *Store { return &Store{root: root} }

// Root returns the ref to hand to Schema.Validate.
func (s *Store) Root() grove.Ref { return s.root }

func deref(ref grove.Ref) (*Node, error) {
	n, ok := ref.(*Node)
	if !ok || n == nil {
		return nil, errors.Newf("memstore: foreign ref %T", ref)
	}
	return n, nil
}

// Children lists the named children of a group, in insertion order.
func (s *Store) Children(ctx context.Context, ref grove.Ref) ([]grove.Entry, error) {
	n, err := deref(ref)
	if err != nil {
		return nil, err
	}
	entries := make([]grove.Entry, 0, len(n.children))
	for _, c := range n.children {
		entries = append(entries, grove.Entry{Name: c.name, Ref: c})
	}
	return entries, nil
}

// Attributes lists the attribute table, in insertion order.
func (s *Store) Attributes(ctx context.Context, ref grove.Ref) ([]grove.Attribute, error) {
	n, err := deref(ref)
	if err != nil {
		return nil, err
	}
	attrs := make([]grove.Attribute, len(n.attrs))
	copy(attrs, n.attrs)
	return attrs, nil
}

// Properties returns the dataset properties.
func (s *Store) Properties(ctx context.Context, ref grove.Ref) (grove.DatasetInfo, error) {
	n, err := deref(ref)
	if err != nil {
		return grove.DatasetInfo{}, err
	}
	if n.group {
		return grove.DatasetInfo{}, errors.Newf("memstore: %q is a group, not a dataset", n.name)
	}
	return n.info, nil
}

// IsGroup reports whether ref is a group.
func (s *Store) IsGroup(ctx context.Context, ref grove.Ref) (bool, error) {
	n, err := deref(ref)
	if err != nil {
		return false, err
	}
	return n.group, nil
}

// IsDataset reports whether ref is a dataset.
func (s *Store) IsDataset(ctx context.Context, ref grove.Ref) (bool, error) {
	n, err := deref(ref)
	if err != nil {
		return false, err
	}
	return !n.group, nil
}
