package descriptor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grove "github.com/treegrove/grove"
	"github.com/treegrove/grove/descriptor"
	"github.com/treegrove/grove/dsl"
	"github.com/treegrove/grove/memstore"
)

func buildSchema(t *testing.T) *grove.Schema {
	t.Helper()
	layout := dsl.Layout()
	devices := layout.Group("devices")
	devices.Dataset(grove.MustRegex("^sensor"),
		dsl.Rank(grove.Equal(2)),
		dsl.ElementType(grove.OneOf("float32", "float64")),
	).Min(1).Max(4)
	layout.Attr("title", grove.Anything()).Optional()
	return layout.MustBuild()
}

func sampleTree(t *testing.T) *memstore.Store {
	t.Helper()
	store, err := memstore.FromYAML([]byte(`
name: /
children:
  - name: devices
    children:
      - name: sensor_a
        dataset: true
        dtype: float64
        shape: [16, 16]
      - name: sensor_b
        dataset: true
        dtype: int8
        shape: [16, 16]
`))
	require.NoError(t, err)
	return store
}

func TestLayout_YAMLRoundTrip(t *testing.T) {
	original := buildSchema(t)
	doc, err := descriptor.FromSchema(original).YAML()
	require.NoError(t, err)

	parsed, err := descriptor.ParseYAML(doc)
	require.NoError(t, err)
	rebuilt, err := parsed.Schema()
	require.NoError(t, err)

	assertSameVerdicts(t, original, rebuilt)
}

func TestLayout_JSONRoundTrip(t *testing.T) {
	original := buildSchema(t)
	doc, err := descriptor.FromSchema(original).JSON()
	require.NoError(t, err)

	parsed, err := descriptor.ParseJSON(doc)
	require.NoError(t, err)
	rebuilt, err := parsed.Schema()
	require.NoError(t, err)

	assertSameVerdicts(t, original, rebuilt)
}

// assertSameVerdicts validates the same tree with both schemas and compares
// everything except the run IDs.
func assertSameVerdicts(t *testing.T, a, b *grove.Schema) {
	t.Helper()
	store := sampleTree(t)
	ra, err := a.Validate(context.Background(), store, store.Root())
	require.NoError(t, err)
	rb, err := b.Validate(context.Background(), store, store.Root())
	require.NoError(t, err)

	assert.Equal(t, ra.Outcomes(), rb.Outcomes())
	assert.Equal(t, ra.Failures(), rb.Failures())
	assert.NotEqual(t, ra.RunID(), rb.RunID())
}

func TestLayout_FalsyEqualValuesSurvive(t *testing.T) {
	spec := grove.SchemaSpec{Nodes: []grove.NodeSpec{{
		Kind: grove.KindAttribute,
		Match: grove.MatchSpec{Kind: grove.MatchEqual, Value: "count"},
		Children: []grove.NodeSpec{{
			Kind:  grove.KindAttrValue,
			Match: grove.MatchSpec{Kind: grove.MatchEqual, Value: int64(0)},
		}},
	}}}
	schema := grove.MustCompile(spec)

	doc, err := descriptor.FromSchema(schema).YAML()
	require.NoError(t, err)
	parsed, err := descriptor.ParseYAML(doc)
	require.NoError(t, err)
	rebuilt, err := parsed.Schema()
	require.NoError(t, err)

	pass := memstore.New(memstore.NewGroup("/").SetAttr("count", 0))
	report, err := rebuilt.Validate(context.Background(), pass, pass.Root())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Fails())

	fail := memstore.New(memstore.NewGroup("/").SetAttr("count", 7))
	report, err = rebuilt.Validate(context.Background(), fail, fail.Root())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Fails())
}

func TestLayout_CountCollapsesMinMax(t *testing.T) {
	layout := dsl.Layout()
	layout.Dataset(grove.MustRegex("^ch")).Count(2)
	schema := layout.MustBuild()

	l := descriptor.FromSchema(schema)
	require.Len(t, l.Nodes, 1)
	require.NotNil(t, l.Nodes[0].Count)
	assert.Equal(t, 2, *l.Nodes[0].Count)
	assert.Nil(t, l.Nodes[0].Min)
	assert.Nil(t, l.Nodes[0].Max)
}

func TestLayout_UnknownMatchKind(t *testing.T) {
	parsed, err := descriptor.ParseYAML([]byte(`
nodes:
  - kind: group
    match:
      kind: glob
      pattern: "dev*"
`))
	require.NoError(t, err)
	_, err = parsed.Schema()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown match kind")
}
