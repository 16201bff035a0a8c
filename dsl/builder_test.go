package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grove "github.com/treegrove/grove"
	"github.com/treegrove/grove/dsl"
	"github.com/treegrove/grove/memstore"
)

func TestBuilder_Chaining(t *testing.T) {
	layout := dsl.Layout()
	devices := layout.Group("devices")
	devices.Dataset("sensor", dsl.Rank(grove.Equal(1)), dsl.ElementType(grove.Equal("float64"))).
		Attr("units", grove.OneOf("m", "mm"))
	layout.Attr("title", grove.Anything())

	schema, err := layout.Build()
	require.NoError(t, err)
	// devices, sensor, rank, element_type, units, units-value, title, title-value
	assert.Equal(t, 8, schema.Len())
}

func TestBuilder_DeduplicatesIdenticalChildren(t *testing.T) {
	layout := dsl.Layout()
	a := layout.Group("devices")
	b := layout.Group("devices")
	a.Dataset("x")
	b.Dataset("x")

	schema := layout.MustBuild()
	// one group node + one dataset node, no double counting
	assert.Equal(t, 2, schema.Len())
}

// Redeclaring a dataset must keep the validators from both declarations;
// dropping either would let a nonconforming tree pass silently.
func TestBuilder_RedeclarationMergesValidators(t *testing.T) {
	layout := dsl.Layout()
	layout.Dataset("d", dsl.Rank(grove.Equal(1)))
	layout.Dataset("d", dsl.ElementType(grove.Equal("float64")))
	schema := layout.MustBuild()
	// one dataset node carrying both property validators
	assert.Equal(t, 3, schema.Len())

	tree := memstore.New(memstore.NewGroup("/").Add(
		memstore.NewDataset("d", grove.DatasetInfo{Rank: 1, ElementType: "int8"}),
	))
	report, err := schema.Validate(context.Background(), tree, tree.Root())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Fails(), "element type check from the second declaration must apply")

	ok := memstore.New(memstore.NewGroup("/").Add(
		memstore.NewDataset("d", grove.DatasetInfo{Rank: 1, ElementType: "float64"}),
	))
	report, err = schema.Validate(context.Background(), ok, ok.Root())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Fails())
}

// Two different value validators on the same attribute key is a conflict,
// not a dedup: it must fail at build time rather than drop one validator.
func TestBuilder_ConflictingAttrValuesFailAtBuild(t *testing.T) {
	layout := dsl.Layout()
	layout.Attr("units", grove.Equal("m"))
	layout.Attr("units", grove.Equal("mm"))
	_, err := layout.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most one value validator")
}

// An identical redeclaration, children included, stays a pure dedup.
func TestBuilder_IdenticalRedeclarationIsIdempotent(t *testing.T) {
	layout := dsl.Layout()
	layout.Attr("units", grove.Equal("m"))
	layout.Attr("units", grove.Equal("m"))
	layout.Dataset("d", dsl.Rank(grove.Equal(1)))
	layout.Dataset("d", dsl.Rank(grove.Equal(1)))
	schema := layout.MustBuild()
	// units + value, d + rank
	assert.Equal(t, 4, schema.Len())
}

func TestBuilder_DifferentPredicatesAreDistinctNodes(t *testing.T) {
	layout := dsl.Layout()
	layout.Group("devices")
	layout.Group(grove.MustRegex("^devices$"))
	schema := layout.MustBuild()
	assert.Equal(t, 2, schema.Len())
}

func TestBuilder_SealedMutationPanics(t *testing.T) {
	layout := dsl.Layout()
	handle := layout.Group("devices")
	_ = layout.MustBuild()

	assert.Panics(t, func() { handle.Optional() })
	assert.Panics(t, func() { handle.Count(1) })
	assert.Panics(t, func() { layout.Group("more") })
	assert.Panics(t, func() { handle.Dataset("d") })
}

func TestBuilder_ConstrainedAnythingIsRejected(t *testing.T) {
	layout := dsl.Layout()
	layout.Group(grove.Anything()).Count(2)
	_, err := layout.Build()
	require.ErrorIs(t, err, grove.ErrConstrainedAny)
}

func TestBuilder_InvalidOccurrenceBounds(t *testing.T) {
	layout := dsl.Layout()
	layout.Group("g").Min(3).Max(1)
	_, err := layout.Build()
	require.ErrorIs(t, err, grove.ErrBadOccurrence)
}

func TestBuilder_BadNameType(t *testing.T) {
	layout := dsl.Layout()
	layout.Group(42)
	_, err := layout.Build()
	require.Error(t, err)
}

func TestBuilder_NilValuePredicateOnlyRequiresKey(t *testing.T) {
	layout := dsl.Layout()
	layout.Attr("title", nil)
	schema := layout.MustBuild()

	root := memstore.NewGroup("/").SetAttr("title", 123)
	store := memstore.New(root)
	report, err := schema.Validate(context.Background(), store, store.Root())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Fails())

	empty := memstore.New(memstore.NewGroup("/"))
	report, err = schema.Validate(context.Background(), empty, empty.Root())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Fails())
}

func TestBuilder_MinMaxWindow(t *testing.T) {
	layout := dsl.Layout()
	layout.Dataset(grove.MustRegex("^ch")).Min(1).Max(2)
	schema := layout.MustBuild()

	tree := memstore.NewGroup("/").Add(
		memstore.NewDataset("ch0", grove.DatasetInfo{Rank: 1}),
		memstore.NewDataset("ch1", grove.DatasetInfo{Rank: 1}),
		memstore.NewDataset("ch2", grove.DatasetInfo{Rank: 1}),
	)
	store := memstore.New(tree)
	report, err := schema.Validate(context.Background(), store, store.Root())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Fails(), "three matches exceed max=2")
}
