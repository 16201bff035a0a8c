// Package descriptor persists grove schemas as declarative YAML or JSON
// documents. Snapshotting a schema and rebuilding it yields a schema that
// validates identically on any tree; only the declarative form round-trips,
// never live objects.
package descriptor

import (
	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	grove "github.com/treegrove/grove"
)

// Layout is the document root.
type Layout struct {
	Nodes []Node `yaml:"nodes" json:"nodes"`
}

// Node is the wire form of one validation node.
type Node struct {
	Kind     string `yaml:"kind" json:"kind"`
	Prop     string `yaml:"prop,omitempty" json:"prop,omitempty"`
	Match    Match  `yaml:"match" json:"match"`
	Optional bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
	Count    *int   `yaml:"count,omitempty" json:"count,omitempty"`
	Min      *int   `yaml:"min,omitempty" json:"min,omitempty"`
	Max      *int   `yaml:"max,omitempty" json:"max,omitempty"`
	Children []Node `yaml:"children,omitempty" json:"children,omitempty"`
}

// Match is the wire form of a predicate. Value is a pointer so that falsy
// reference literals (0, false, "") survive the round trip.
type Match struct {
	Kind    string `yaml:"kind" json:"kind"`
	Value   *any   `yaml:"value,omitempty" json:"value,omitempty"`
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Values  []any  `yaml:"values,omitempty" json:"values,omitempty"`
}

// FromSchema snapshots a built schema into its declarative form.
func FromSchema(s *grove.Schema) *Layout {
	spec := s.Spec()
	l := &Layout{Nodes: make([]Node, 0, len(spec.Nodes))}
	for i := range spec.Nodes {
		l.Nodes = append(l.Nodes, fromNodeSpec(spec.Nodes[i]))
	}
	return l
}

func fromNodeSpec(ns grove.NodeSpec) Node {
	n := Node{
		Kind:     string(ns.Kind),
		Prop:     string(ns.Prop),
		Optional: ns.Optional,
		Match:    fromMatchSpec(ns.Match),
	}
	switch {
	case ns.MinOccurs != nil && ns.MaxOccurs != nil && *ns.MinOccurs == *ns.MaxOccurs:
		n.Count = ns.MinOccurs
	default:
		n.Min = ns.MinOccurs
		n.Max = ns.MaxOccurs
	}
	for i := range ns.Children {
		n.Children = append(n.Children, fromNodeSpec(ns.Children[i]))
	}
	return n
}

func fromMatchSpec(m grove.MatchSpec) Match {
	out := Match{Kind: string(m.Kind)}
	switch m.Kind {
	case grove.MatchEqual:
		v := m.Value
		out.Value = &v
	case grove.MatchRegex:
		out.Pattern = m.Pattern
	case grove.MatchOneOf:
		out.Values = append(out.Values, m.Values...)
	}
	return out
}

// Schema compiles the declarative form back into a sealed schema.
func (l *Layout) Schema() (*grove.Schema, error) {
	spec := grove.SchemaSpec{Nodes: make([]grove.NodeSpec, 0, len(l.Nodes))}
	for i := range l.Nodes {
		ns, err := l.Nodes[i].toNodeSpec()
		if err != nil {
			return nil, err
		}
		spec.Nodes = append(spec.Nodes, ns)
	}
	return grove.Compile(spec)
}

func (n *Node) toNodeSpec() (grove.NodeSpec, error) {
	ns := grove.NodeSpec{
		Kind:     grove.NodeKind(n.Kind),
		Prop:     grove.PropKind(n.Prop),
		Optional: n.Optional,
	}
	switch grove.MatchKind(n.Match.Kind) {
	case grove.MatchEqual:
		if n.Match.Value == nil {
			return ns, errors.Newf("descriptor: equal match requires a value")
		}
		ns.Match = grove.MatchSpec{Kind: grove.MatchEqual, Value: *n.Match.Value}
	case grove.MatchRegex:
		ns.Match = grove.MatchSpec{Kind: grove.MatchRegex, Pattern: n.Match.Pattern}
	case grove.MatchOneOf:
		vals := make([]grove.Value, len(n.Match.Values))
		copy(vals, n.Match.Values)
		ns.Match = grove.MatchSpec{Kind: grove.MatchOneOf, Values: vals}
	case grove.MatchAny:
		ns.Match = grove.MatchSpec{Kind: grove.MatchAny}
	default:
		return ns, errors.Newf("descriptor: unknown match kind %q", n.Match.Kind)
	}
	if n.Count != nil {
		ns.MinOccurs = n.Count
		ns.MaxOccurs = n.Count
	} else {
		ns.MinOccurs = n.Min
		ns.MaxOccurs = n.Max
	}
	for i := range n.Children {
		child, err := n.Children[i].toNodeSpec()
		if err != nil {
			return ns, err
		}
		ns.Children = append(ns.Children, child)
	}
	return ns, nil
}

// ParseYAML decodes a YAML layout document.
func ParseYAML(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(err, "descriptor: parse yaml")
	}
	return &l, nil
}

// YAML encodes the layout as a YAML document.
func (l *Layout) YAML() ([]byte, error) {
	return yaml.Marshal(l)
}

// ParseJSON decodes a JSON layout document.
func ParseJSON(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(err, "descriptor: parse json")
	}
	return &l, nil
}

// JSON encodes the layout as JSON.
func (l *Layout) JSON() ([]byte, error) {
	return json.Marshal(l)
}
