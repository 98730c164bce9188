// Package introspect describes the shape of run-time types for the schema
// builder.
//
// The builder never reads reflect metadata directly; it asks an
// Introspector for four things:
//   - Fields: the serializable fields declared by a type, in declaration order
//   - Base: the type's declared base type, or nil at the root of a chain
//   - TypeArgs: the type arguments of a parameterized type
//   - IsLeaf: whether the type terminates recursion
//
// Reflect is the default implementation. Go has no inheritance, so a base
// type is declared by embedding it and marking the embedded field:
//
//	type Circle struct {
//		Shape  `schema:",base"`
//		Radius float64
//	}
//
// Built-in containers report their element (and key) types as type
// arguments. Generic structs report theirs through GenericType.
package introspect

import (
	"errors"
	"reflect"
)

// TagKey is the struct tag key read by Reflect.
const TagKey = "schema"

var (
	// ErrMultipleBases is returned when a struct marks more than one
	// embedded field as its base.
	ErrMultipleBases = errors.New("introspect: more than one base field")
	// ErrBaseNotStruct is returned when the base marker sits on a field
	// that is not an embedded struct value.
	ErrBaseNotStruct = errors.New("introspect: base field must be an embedded struct")
	// ErrBadTag is returned for a malformed schema struct tag.
	ErrBadTag = errors.New("introspect: malformed schema tag")
)

// Field is a serializable field of a type. It is transient: the builder
// uses it to register a plan and does not retain it.
type Field struct {
	Name  string       // Go field name
	Type  reflect.Type // declared type
	Index int          // index within the declaring struct
	Tag   int          // explicit wire tag, 0 when the registry should assign one
}

// Introspector is the introspection capability consumed by the builder.
// Implementations must be deterministic for a given type and free of side
// effects.
type Introspector interface {
	Fields(t reflect.Type) ([]Field, error)
	Base(t reflect.Type) (reflect.Type, error)
	TypeArgs(t reflect.Type) []reflect.Type
	IsLeaf(t reflect.Type) bool
}

// GenericType is implemented by instantiated generic types that want their
// type arguments registered. reflect cannot recover type arguments on its
// own, so the type lists them:
//
//	func (Box[T]) SchemaTypeArgs() []reflect.Type {
//		return []reflect.Type{reflect.TypeFor[T]()}
//	}
//
// The method is called on the zero value (or a new pointer for pointer
// receivers) and must not depend on the receiver's contents.
type GenericType interface {
	SchemaTypeArgs() []reflect.Type
}
