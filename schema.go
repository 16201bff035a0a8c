package grove

import (
	"github.com/cockroachdb/errors"
)

// NodeKind tags the closed set of validation node kinds.
type NodeKind string

const (
	KindGroup     NodeKind = "group"
	KindDataset   NodeKind = "dataset"
	KindAttribute NodeKind = "attribute"
	KindAttrValue NodeKind = "attr_value"
	KindProperty  NodeKind = "property"
)

// NodeSpec is the declarative form of one validation node. It is what the
// dsl builder produces and what descriptor files persist; Compile turns a
// tree of specs into a sealed Schema.
type NodeSpec struct {
	Kind     NodeKind
	Prop     PropKind // KindProperty only
	Match    MatchSpec
	Optional bool
	// MinOccurs/MaxOccurs bound the number of candidates that pass the node
	// and its whole subtree. nil means unconstrained.
	MinOccurs *int
	MaxOccurs *int
	Children  []NodeSpec
}

// SchemaSpec is the declarative form of a whole schema.
type SchemaSpec struct {
	Nodes []NodeSpec
}

// node is the compiled, immutable form of a NodeSpec. Owned exclusively by
// its parent; the tree is never a graph.
type node struct {
	id       int
	kind     NodeKind
	prop     PropKind
	pred     Predicate
	optional bool
	minOcc   int // -1 unconstrained
	maxOcc   int
	children []*node
}

func (n *node) constrained() bool { return n.minOcc >= 0 || n.maxOcc >= 0 }

// Schema is an immutable validation node tree. It is built once, by Compile
// (usually through the dsl builder), and may then be used concurrently from
// any number of goroutines: each Validate call produces a fresh Report and
// stores nothing on the schema or its predicates.
type Schema struct {
	root  *node // synthetic container for the top-level nodes
	nodes []*node
	spec  SchemaSpec
}

// Compile seals a declarative schema into an immutable Schema. Node IDs are
// assigned in declaration order (depth-first), which fixes the order of
// Report rendering.
func Compile(spec SchemaSpec) (*Schema, error) {
	s := &Schema{root: &node{id: -1, kind: KindGroup}}
	for i := range spec.Nodes {
		child, err := s.compileNode(&spec.Nodes[i], s.root)
		if err != nil {
			return nil, err
		}
		s.root.children = append(s.root.children, child)
	}
	s.spec = cloneSchemaSpec(spec)
	return s, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(spec SchemaSpec) *Schema {
	s, err := Compile(spec)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) compileNode(ns *NodeSpec, parent *node) (*node, error) {
	if err := allowedUnder(parent.kind, ns.Kind); err != nil {
		return nil, err
	}
	pred, err := predicateFrom(ns.Match)
	if err != nil {
		return nil, err
	}
	// -1 internally means "no bound"; an explicit negative bound is always a
	// declaration mistake, never shorthand for unconstrained.
	minOcc, maxOcc := -1, -1
	if ns.MinOccurs != nil {
		if *ns.MinOccurs < 0 {
			return nil, errors.Wrapf(ErrBadOccurrence, "min=%d", *ns.MinOccurs)
		}
		minOcc = *ns.MinOccurs
	}
	if ns.MaxOccurs != nil {
		if *ns.MaxOccurs < 0 {
			return nil, errors.Wrapf(ErrBadOccurrence, "max=%d", *ns.MaxOccurs)
		}
		maxOcc = *ns.MaxOccurs
	}
	if minOcc >= 0 && maxOcc >= 0 && minOcc > maxOcc {
		return nil, errors.Wrapf(ErrBadOccurrence, "min=%d max=%d", minOcc, maxOcc)
	}
	optional := ns.Optional
	if parent.optional && (ns.Kind == KindAttrValue || ns.Kind == KindProperty) {
		// Leaf checks inherit optionality from their owner: reporting a hard
		// value or property failure under a node the caller declared optional
		// would be contradictory.
		optional = true
	}
	if pred.Optional() {
		// An always-true predicate is optional by construction and cannot
		// carry occurrence constraints.
		if minOcc >= 0 || maxOcc >= 0 {
			return nil, errors.WithStack(ErrConstrainedAny)
		}
		optional = true
	}
	n := &node{
		id:       len(s.nodes),
		kind:     ns.Kind,
		prop:     ns.Prop,
		pred:     pred,
		optional: optional,
		minOcc:   minOcc,
		maxOcc:   maxOcc,
	}
	s.nodes = append(s.nodes, n)
	if ns.Kind == KindAttribute && len(ns.Children) > 1 {
		return nil, errors.Newf("grove: attribute node takes at most one value validator, got %d", len(ns.Children))
	}
	for i := range ns.Children {
		child, err := s.compileNode(&ns.Children[i], n)
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, child)
	}
	return n, nil
}

func allowedUnder(parent, child NodeKind) error {
	ok := false
	switch parent {
	case KindGroup:
		ok = child == KindGroup || child == KindDataset || child == KindAttribute
	case KindDataset:
		ok = child == KindAttribute || child == KindProperty
	case KindAttribute:
		ok = child == KindAttrValue
	}
	if !ok {
		return errors.Newf("grove: %s node cannot own a %s child", parent, child)
	}
	return nil
}

// Len reports the number of validation nodes in the schema.
func (s *Schema) Len() int { return len(s.nodes) }

// Spec returns a deep copy of the declarative form the schema was compiled
// from. Rebuilding via Compile yields a schema that validates identically.
func (s *Schema) Spec() SchemaSpec { return cloneSchemaSpec(s.spec) }

func cloneSchemaSpec(spec SchemaSpec) SchemaSpec {
	out := SchemaSpec{Nodes: make([]NodeSpec, len(spec.Nodes))}
	for i := range spec.Nodes {
		out.Nodes[i] = cloneNodeSpec(spec.Nodes[i])
	}
	return out
}

func cloneNodeSpec(ns NodeSpec) NodeSpec {
	out := ns
	if ns.MinOccurs != nil {
		v := *ns.MinOccurs
		out.MinOccurs = &v
	}
	if ns.MaxOccurs != nil {
		v := *ns.MaxOccurs
		out.MaxOccurs = &v
	}
	if ns.Match.Values != nil {
		out.Match.Values = make([]Value, len(ns.Match.Values))
		copy(out.Match.Values, ns.Match.Values)
	}
	out.Children = make([]NodeSpec, len(ns.Children))
	for i := range ns.Children {
		out.Children[i] = cloneNodeSpec(ns.Children[i])
	}
	return out
}
