package analyze

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wireschema/pins"
)

func TestHierarchy_Shapes(t *testing.T) {
	graph, err := NewAnalyzer().LoadPackages(shapesPkg)
	require.NoError(t, err)

	pairs, diags := graph.Hierarchy()
	require.False(t, diags.HasErrors(), spew.Sdump(diags))

	q := func(name string) string { return shapesPkg + "." + name }

	assert.Equal(t, []pins.Pair{
		{Base: q("Polygon"), Derived: q("Triangle")},
		{Base: q("Shape"), Derived: q("Circle")},
		{Base: q("Shape"), Derived: q("Polygon")},
		{Base: q("Shape"), Derived: q("Square")},
	}, pairs)

	require.Len(t, diags.Warnings, 1, spew.Sdump(diags))
	assert.Equal(t, "generic_subtype", diags.Warnings[0].Code)
	assert.Equal(t, q("Tagged"), diags.Warnings[0].Subject)
}

func TestHierarchy_BrokenDeclarations(t *testing.T) {
	graph, err := NewAnalyzer().LoadPackages("./testdata/badbase")
	require.NoError(t, err)

	pairs, diags := graph.Hierarchy()

	require.Len(t, pairs, 1)
	assert.Contains(t, pairs[0].Derived, ".Fine")
	assert.Contains(t, pairs[0].Base, ".Root")

	codes := make(map[string]string)
	for _, d := range diags.All() {
		codes[lastName(d.Subject)] = d.Code
	}

	assert.Equal(t, map[string]string{
		"TwoBases":    "multiple_bases",
		"PointerBase": "base_not_struct",
		"NamedBase":   "base_not_struct",
		"HiddenBase":  "base_unexported",
		"GenericBase": "generic_base",
	}, codes, spew.Sdump(diags))

	assert.True(t, diags.HasErrors())
}

func lastName(qualified string) string {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			return qualified[i+1:]
		}
	}

	return qualified
}
