package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wireschema/examples/shapes"
	"wireschema/pins"
	"wireschema/wire"
)

func TestDiag(t *testing.T) {
	data, err := wire.New(wire.Config{}).Marshal(shapes.Circle{Radius: 2})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "circle.cbor")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	var out bytes.Buffer
	diagCmd.SetOut(&out)
	diagCmd.SetArgs([]string{path})

	require.NoError(t, diagCmd.Execute())
	assert.Contains(t, out.String(), "500:")
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.pins.yaml")

	file, err := loadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, pins.CurrentVersion, file.Version)
	assert.Empty(t, file.Subtypes)

	file.Merge([]pins.Pair{{Base: "a.Base", Derived: "a.Derived"}})
	require.NoError(t, pins.WriteFile(file, path))

	again, err := loadOrCreate(path)
	require.NoError(t, err)

	tag, ok := again.Lookup("a.Base", "a.Derived")
	require.True(t, ok)
	assert.Equal(t, pins.FirstTag, tag)
}
