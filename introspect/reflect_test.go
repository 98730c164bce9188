package introspect

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type base struct {
	ID int
}

type Root struct {
	ID int
}

type derived struct {
	Root    `schema:",base"`
	Name    string `schema:"4"`
	Skipped string `schema:"-"`
	hidden  int
	When    time.Time
}

type twoBases struct {
	Root  `schema:",base"`
	Other Root `schema:",base"`
}

type pointerBase struct {
	*Root `schema:",base"`
}

type unexportedBase struct {
	base `schema:",base"`
}

type badTag struct {
	A int `schema:"x"`
}

type badOption struct {
	A int `schema:"1,inline"`
}

type pair[K comparable, V any] struct {
	Key   K
	Value V
}

func (pair[K, V]) SchemaTypeArgs() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[K](), reflect.TypeFor[V]()}
}

type ptrArgs[T any] struct {
	Item T
}

func (*ptrArgs[T]) SchemaTypeArgs() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[T]()}
}

func TestFields(t *testing.T) {
	r := NewReflect()

	fields, err := r.Fields(reflect.TypeFor[derived]())
	require.NoError(t, err)

	assert.Equal(t, []Field{
		{Name: "Name", Type: reflect.TypeFor[string](), Index: 1, Tag: 4},
		{Name: "When", Type: reflect.TypeFor[time.Time](), Index: 4},
	}, fields)

	fields, err = r.Fields(reflect.TypeFor[int]())
	require.NoError(t, err)
	assert.Empty(t, fields)

	fields, err = r.Fields(reflect.TypeFor[time.Time]())
	require.NoError(t, err)
	assert.Empty(t, fields, "leaf structs are opaque")
}

func TestFields_ReturnsCopy(t *testing.T) {
	r := NewReflect()
	typ := reflect.TypeFor[derived]()

	fields, err := r.Fields(typ)
	require.NoError(t, err)
	fields[0].Name = "changed"

	again, err := r.Fields(typ)
	require.NoError(t, err)
	assert.Equal(t, "Name", again[0].Name)
}

func TestBase(t *testing.T) {
	r := NewReflect()

	b, err := r.Base(reflect.TypeFor[derived]())
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[Root](), b)

	b, err = r.Base(reflect.TypeFor[Root]())
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		err  error
	}{
		{"two bases", reflect.TypeFor[twoBases](), ErrBaseNotStruct},
		{"pointer base", reflect.TypeFor[pointerBase](), ErrBaseNotStruct},
		{"unexported base", reflect.TypeFor[unexportedBase](), ErrBaseNotStruct},
		{"bad tag", reflect.TypeFor[badTag](), ErrBadTag},
		{"bad option", reflect.TypeFor[badOption](), ErrBadTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReflect()

			_, err := r.Fields(tt.typ)
			assert.ErrorIs(t, err, tt.err)

			_, err = r.Base(tt.typ)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestMultipleBases(t *testing.T) {
	type left struct{ A int }
	type right struct{ B int }
	type both struct {
		Left  left  `schema:",base"`
		Right right `schema:",base"`
	}

	type Left struct{ A int }
	type Right struct{ B int }
	type embedded struct {
		Left  `schema:",base"`
		Right `schema:",base"`
	}

	_, err := NewReflect().Base(reflect.TypeFor[both]())
	assert.ErrorIs(t, err, ErrBaseNotStruct)

	_, err = NewReflect().Base(reflect.TypeFor[embedded]())
	assert.ErrorIs(t, err, ErrMultipleBases)
}

func TestTypeArgs(t *testing.T) {
	r := NewReflect()

	assert.Equal(t, []reflect.Type{reflect.TypeFor[int]()}, r.TypeArgs(reflect.TypeFor[*int]()))
	assert.Equal(t, []reflect.Type{reflect.TypeFor[Root]()}, r.TypeArgs(reflect.TypeFor[[]Root]()))
	assert.Equal(t, []reflect.Type{reflect.TypeFor[Root]()}, r.TypeArgs(reflect.TypeFor[[3]Root]()))
	assert.Equal(t,
		[]reflect.Type{reflect.TypeFor[string](), reflect.TypeFor[Root]()},
		r.TypeArgs(reflect.TypeFor[map[string]Root]()))

	assert.Equal(t,
		[]reflect.Type{reflect.TypeFor[string](), reflect.TypeFor[Root]()},
		r.TypeArgs(reflect.TypeFor[pair[string, Root]]()))
	assert.Equal(t,
		[]reflect.Type{reflect.TypeFor[Root]()},
		r.TypeArgs(reflect.TypeFor[ptrArgs[Root]]()))

	assert.Nil(t, r.TypeArgs(reflect.TypeFor[Root]()))
	assert.Nil(t, r.TypeArgs(reflect.TypeFor[int]()))
	assert.Nil(t, r.TypeArgs(reflect.TypeFor[any]()))
}

func TestIsLeaf(t *testing.T) {
	r := NewReflect()

	assert.True(t, r.IsLeaf(reflect.TypeFor[string]()))
	assert.True(t, r.IsLeaf(reflect.TypeFor[time.Duration]()))
	assert.True(t, r.IsLeaf(reflect.TypeFor[time.Time]()))
	assert.False(t, r.IsLeaf(reflect.TypeFor[Root]()))
	assert.False(t, r.IsLeaf(reflect.TypeFor[[]int]()))
}

func TestReflect_ImplementsIntrospector(t *testing.T) {
	var _ Introspector = NewReflect()
}
