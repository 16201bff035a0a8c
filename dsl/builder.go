// Package dsl is the fluent builder for grove schemas. It is pure
// convenience over the grove.NodeSpec model and carries no semantics of its
// own: Build hands the declared tree to grove.Compile.
package dsl

import (
	"github.com/cockroachdb/errors"

	grove "github.com/treegrove/grove"
)

// Builder accumulates a validation node tree. The zero value is not usable;
// start with Layout().
type Builder struct {
	entries []*entry
	sealed  bool
	err     error
}

// entry is the mutable pre-seal form of a node.
type entry struct {
	kind     grove.NodeKind
	prop     grove.PropKind
	match    grove.MatchSpec
	optional bool
	minOcc   *int
	maxOcc   *int
	children []*entry
}

// Node is a handle onto one declared node. Declaration methods add children
// and return the child's handle for chaining; cardinality methods mutate the
// node itself and return the same handle.
type Node struct {
	b *Builder
	e *entry
}

// Layout creates a new empty schema builder.
func Layout() *Builder {
	return &Builder{}
}

// Group declares a top-level group. name is a string (the literal "*"
// declares a wildcard matching every descendant group) or a grove.Predicate.
func (b *Builder) Group(name any) *Node { return b.add(nil, groupEntry(b, name)) }

// Dataset declares a top-level dataset with optional property validators.
func (b *Builder) Dataset(name any, props ...DatasetProp) *Node {
	return b.add(nil, datasetEntry(b, name, props))
}

// Attr declares an attribute validator on the tree root. value validates the
// stored value of every key the key-predicate matches; pass nil to only
// require the key.
func (b *Builder) Attr(key any, value grove.Predicate) *Node {
	return b.add(nil, attrEntry(b, key, value))
}

// Group declares a child group under this node.
func (n *Node) Group(name any) *Node { return n.b.add(n.e, groupEntry(n.b, name)) }

// Dataset declares a child dataset under this node.
func (n *Node) Dataset(name any, props ...DatasetProp) *Node {
	return n.b.add(n.e, datasetEntry(n.b, name, props))
}

// Attr declares an attribute validator on this node.
func (n *Node) Attr(key any, value grove.Predicate) *Node {
	return n.b.add(n.e, attrEntry(n.b, key, value))
}

// Optional marks the node optional: a raw failure is demoted to a pass in
// the final report while staying inspectable in the raw outcomes.
func (n *Node) Optional() *Node {
	n.b.checkSealed()
	n.e.optional = true
	return n
}

// Count requires exactly c candidates to pass the node and its subtree.
func (n *Node) Count(c int) *Node {
	n.b.checkSealed()
	n.e.minOcc = &c
	n.e.maxOcc = &c
	return n
}

// Min requires at least c passing candidates.
func (n *Node) Min(c int) *Node {
	n.b.checkSealed()
	n.e.minOcc = &c
	return n
}

// Max allows at most c passing candidates.
func (n *Node) Max(c int) *Node {
	n.b.checkSealed()
	n.e.maxOcc = &c
	return n
}

// DatasetProp attaches a property validator to a dataset declaration.
type DatasetProp func(b *Builder, parent *entry)

// Shape validates the dataset's shape (an []int64).
func Shape(p grove.Predicate) DatasetProp { return propOpt(grove.PropShape, p) }

// Rank validates the dataset's rank.
func Rank(p grove.Predicate) DatasetProp { return propOpt(grove.PropRank, p) }

// ElementType validates the dataset's element type name.
func ElementType(p grove.Predicate) DatasetProp { return propOpt(grove.PropElementType, p) }

func propOpt(prop grove.PropKind, p grove.Predicate) DatasetProp {
	return func(b *Builder, parent *entry) {
		b.attach(parent, &entry{
			kind:     grove.KindProperty,
			prop:     prop,
			match:    p.Spec(),
			optional: p.Optional(),
		})
	}
}

// Build seals the builder and compiles the schema. Construction mistakes
// (bad predicate arguments, misplaced node kinds, constrained always-true
// predicates) surface here.
func (b *Builder) Build() (*grove.Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.sealed = true
	spec := grove.SchemaSpec{Nodes: make([]grove.NodeSpec, 0, len(b.entries))}
	for _, e := range b.entries {
		spec.Nodes = append(spec.Nodes, e.toSpec())
	}
	return grove.Compile(spec)
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *grove.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func (e *entry) toSpec() grove.NodeSpec {
	ns := grove.NodeSpec{
		Kind:      e.kind,
		Prop:      e.prop,
		Match:     e.match,
		Optional:  e.optional,
		MinOccurs: e.minOcc,
		MaxOccurs: e.maxOcc,
	}
	for _, c := range e.children {
		ns.Children = append(ns.Children, c.toSpec())
	}
	return ns
}

func groupEntry(b *Builder, name any) *entry {
	m, opt := b.matchOf(name)
	return &entry{kind: grove.KindGroup, match: m, optional: opt}
}

func datasetEntry(b *Builder, name any, props []DatasetProp) *entry {
	m, opt := b.matchOf(name)
	e := &entry{kind: grove.KindDataset, match: m, optional: opt}
	for _, p := range props {
		p(b, e)
	}
	return e
}

func attrEntry(b *Builder, key any, value grove.Predicate) *entry {
	m, opt := b.matchOf(key)
	e := &entry{kind: grove.KindAttribute, match: m, optional: opt}
	if value != nil {
		e.children = append(e.children, &entry{
			kind:     grove.KindAttrValue,
			match:    value.Spec(),
			optional: value.Optional(),
		})
	}
	return e
}

// matchOf resolves a name-or-predicate argument. Unsupported types are
// recorded as a construction error and reported by Build.
func (b *Builder) matchOf(name any) (grove.MatchSpec, bool) {
	switch t := name.(type) {
	case string:
		return grove.MatchSpec{Kind: grove.MatchEqual, Value: t}, false
	case grove.Predicate:
		return t.Spec(), t.Optional()
	default:
		b.fail(errors.Newf("dsl: name must be a string or grove.Predicate, got %T", name))
		return grove.MatchSpec{Kind: grove.MatchEqual, Value: ""}, false
	}
}

// add attaches a child under parent (nil for top level), deduplicating on
// (parent, kind, predicate): redeclaring an identical child returns the
// existing node instead of creating a double-counted duplicate.
func (b *Builder) add(parent *entry, e *entry) *Node {
	b.checkSealed()
	return &Node{b: b, e: b.attach(parent, e)}
}

func (b *Builder) attach(parent *entry, e *entry) *entry {
	siblings := &b.entries
	if parent != nil {
		siblings = &parent.children
	}
	key := dedupKey(e)
	for _, s := range *siblings {
		if dedupKey(s) == key {
			// Only the node itself is a duplicate. Validators declared on the
			// redeclaration fold into the surviving node; a genuine conflict
			// (two value validators on one attribute) surfaces in Compile.
			for _, c := range e.children {
				b.attach(s, c)
			}
			return s
		}
	}
	*siblings = append(*siblings, e)
	return e
}

func dedupKey(e *entry) string {
	return string(e.kind) + "/" + string(e.prop) + "/" + e.match.Key()
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// checkSealed panics on post-Build mutation: the schema contract is
// immutability after sealing, so this is a programmer error, not a
// recoverable condition.
func (b *Builder) checkSealed() {
	if b.sealed {
		panic(errors.WithStack(grove.ErrSealed))
	}
}
