package pins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFile() *File {
	return &File{
		Version: CurrentVersion,
		Subtypes: []BaseEntry{
			{
				Base: "shapes.Shape",
				Derived: []DerivedEntry{
					{Type: "shapes.Circle", Tag: 500},
					{Type: "shapes.Square", Tag: 503},
				},
			},
		},
	}
}

func TestLookup(t *testing.T) {
	f := sampleFile()

	tag, ok := f.Lookup("shapes.Shape", "shapes.Square")
	require.True(t, ok)
	assert.Equal(t, 503, tag)

	_, ok = f.Lookup("shapes.Shape", "shapes.Triangle")
	assert.False(t, ok)

	_, ok = f.Lookup("shapes.Polygon", "shapes.Circle")
	assert.False(t, ok)
}

func TestReserved(t *testing.T) {
	f := sampleFile()
	f.Subtypes[0].Derived = append(f.Subtypes[0].Derived, DerivedEntry{Type: "shapes.Oval", Tag: 501})

	assert.Equal(t, []int{500, 501, 503}, f.Reserved("shapes.Shape"))
	assert.Nil(t, f.Reserved("shapes.Polygon"))
}

func TestPairs(t *testing.T) {
	assert.Equal(t, []Pair{
		{Base: "shapes.Shape", Derived: "shapes.Circle"},
		{Base: "shapes.Shape", Derived: "shapes.Square"},
	}, sampleFile().Pairs())
}

func TestMerge(t *testing.T) {
	f := sampleFile()

	added := f.Merge([]Pair{
		{Base: "shapes.Shape", Derived: "shapes.Triangle"},
		{Base: "shapes.Shape", Derived: "shapes.Circle"},
		{Base: "shapes.Shape", Derived: "shapes.Hexagon"},
		{Base: "shapes.Polygon", Derived: "shapes.Triangle"},
		{Base: "shapes.Shape", Derived: "shapes.Hexagon"},
	})
	assert.Equal(t, 3, added)

	// existing pins keep their tags
	tag, _ := f.Lookup("shapes.Shape", "shapes.Circle")
	assert.Equal(t, 500, tag)

	// new derived types follow the highest tag, in lexical order
	tag, _ = f.Lookup("shapes.Shape", "shapes.Hexagon")
	assert.Equal(t, 504, tag)
	tag, _ = f.Lookup("shapes.Shape", "shapes.Triangle")
	assert.Equal(t, 505, tag)

	// new bases start at the first subtype tag
	require.Len(t, f.Subtypes, 2)
	assert.Equal(t, "shapes.Polygon", f.Subtypes[1].Base)
	tag, _ = f.Lookup("shapes.Polygon", "shapes.Triangle")
	assert.Equal(t, FirstTag, tag)

	assert.Zero(t, f.Merge(f.Pairs()), "merging is idempotent")
	assert.False(t, Validate(f).HasErrors())
}

func TestMerge_NewBasesInLexicalOrder(t *testing.T) {
	f := &File{Version: CurrentVersion}

	f.Merge([]Pair{
		{Base: "b.Base", Derived: "b.Two"},
		{Base: "a.Base", Derived: "a.One"},
		{Base: "b.Base", Derived: "b.One"},
	})

	require.Len(t, f.Subtypes, 2)
	assert.Equal(t, "a.Base", f.Subtypes[0].Base)
	assert.Equal(t, "b.Base", f.Subtypes[1].Base)
	assert.Equal(t, []DerivedEntry{
		{Type: "b.One", Tag: 500},
		{Type: "b.Two", Tag: 501},
	}, f.Subtypes[1].Derived)
}

func TestDigest(t *testing.T) {
	f := sampleFile()
	d := f.Digest()
	assert.Len(t, d, 64)
	assert.Equal(t, d, sampleFile().Digest())

	f.Subtypes[0].Derived[1].Tag = 501
	assert.NotEqual(t, d, f.Digest())

	f.Seal()
	assert.Equal(t, f.Digest(), f.Fingerprint)
}
