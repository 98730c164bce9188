package model

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wireschema/introspect"
)

func populated(t *testing.T, subtypeOrder ...reflect.Type) *Registry {
	t.Helper()

	r := NewRegistry()
	animalType := reflect.TypeFor[animal]()

	base, err := r.Register(animalType, fieldsOf(t, animalType))
	require.NoError(t, err)

	for i, typ := range subtypeOrder {
		_, err := r.Register(typ, fieldsOf(t, typ))
		require.NoError(t, err)
		require.NoError(t, r.AddSubtype(base, SubtypeTagBase+i, typ))
	}

	return r
}

func TestDescribe(t *testing.T) {
	r := populated(t, reflect.TypeFor[dog](), reflect.TypeFor[cat]())

	var sb strings.Builder
	require.NoError(t, r.Describe(&sb))

	assert.Equal(t, `type wireschema/model.animal
  field 1 Name string
  subtype 500 wireschema/model.dog
  subtype 501 wireschema/model.cat
type wireschema/model.cat
  field 1 Lives int
type wireschema/model.dog
  field 1 Breed string
  field 2 Age int
`, sb.String())
}

func TestFingerprint(t *testing.T) {
	a := populated(t, reflect.TypeFor[dog](), reflect.TypeFor[cat]())
	b := populated(t, reflect.TypeFor[dog](), reflect.TypeFor[cat]())
	swapped := populated(t, reflect.TypeFor[cat](), reflect.TypeFor[dog]())

	assert.Len(t, a.Fingerprint(), 64)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), swapped.Fingerprint(), "subtype tags are part of the fingerprint")
	assert.NotEqual(t, a.Fingerprint(), NewRegistry().Fingerprint())
}

func ExampleRegistry_Describe() {
	type point struct {
		X, Y int
	}

	typ := reflect.TypeFor[point]()

	fields, err := introspect.NewReflect().Fields(typ)
	if err != nil {
		panic(err)
	}

	r := NewRegistry()

	plan, err := r.Register(typ, fields)
	if err != nil {
		panic(err)
	}

	fmt.Println(plan.Type().Name(), len(plan.Fields()))

	var sb strings.Builder
	_ = r.Describe(&sb)
	fmt.Print(sb.String())
	// Output:
	// point 2
	// type wireschema/model.point
	//   field 1 X int
	//   field 2 Y int
}
