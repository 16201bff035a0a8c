package memstore

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	grove "github.com/treegrove/grove"
)

// yamlNode is the file form of one tree node. Attributes are decoded through
// yaml.Node so their declared order is preserved.
type yamlNode struct {
	Name     string     `yaml:"name"`
	Dataset  bool       `yaml:"dataset"`
	Dtype    string     `yaml:"dtype"`
	Rank     *int       `yaml:"rank"`
	Shape    []int64    `yaml:"shape"`
	Attrs    yaml.Node  `yaml:"attrs"`
	Children []yamlNode `yaml:"children"`
}

// FromYAML builds a store from a YAML tree description:
//
//	name: /
//	attrs:
//	  title: my measurement
//	children:
//	  - name: data
//	    dataset: true
//	    dtype: float64
//	    shape: [128, 128]
//	    attrs:
//	      standard_name: detector_counts
func FromYAML(data []byte) (*Store, error) {
	var root yamlNode
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "memstore: parse tree yaml")
	}
	if root.Name == "" {
		root.Name = "/"
	}
	node, err := root.build()
	if err != nil {
		return nil, err
	}
	return New(node), nil
}

func (y *yamlNode) build() (*Node, error) {
	var n *Node
	if y.Dataset {
		if len(y.Children) > 0 {
			return nil, errors.Newf("memstore: dataset %q cannot have children", y.Name)
		}
		info := grove.DatasetInfo{Shape: y.Shape, ElementType: y.Dtype}
		if y.Rank != nil {
			info.Rank = *y.Rank
		}
		n = NewDataset(y.Name, info)
	} else {
		n = NewGroup(y.Name)
	}
	attrs, err := decodeAttrs(&y.Attrs)
	if err != nil {
		return nil, errors.Wrapf(err, "memstore: attrs of %q", y.Name)
	}
	for _, a := range attrs {
		n.SetAttr(a.Key, a.Value)
	}
	for i := range y.Children {
		child, err := y.Children[i].build()
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

// decodeAttrs walks the mapping node pairwise, keeping document order. A
// plain map decode would randomize it and break report determinism.
func decodeAttrs(node *yaml.Node) ([]grove.Attribute, error) {
	if node.Kind == 0 || node.IsZero() {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.New("attrs must be a mapping")
	}
	attrs := make([]grove.Attribute, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var val any
		if err := node.Content[i+1].Decode(&val); err != nil {
			return nil, errors.Wrapf(err, "attr %q", key)
		}
		attrs = append(attrs, grove.Attribute{Key: key, Value: val})
	}
	return attrs, nil
}
