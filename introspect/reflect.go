package introspect

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"wireschema/primitive"
)

var genericTypeType = reflect.TypeOf((*GenericType)(nil)).Elem()

// Reflect implements Introspector on top of package reflect and the
// `schema` struct tag:
//
//	schema:"-"       field is not serialized
//	schema:"7"       field uses wire tag 7
//	schema:",base"   embedded struct is the base type
//
// Unexported fields are never serialized. Shapes are cached per type.
type Reflect struct {
	shapes sync.Map // map[reflect.Type]*shape
}

type shape struct {
	fields []Field
	base   reflect.Type
	err    error
}

// NewReflect creates a reflect-backed Introspector.
func NewReflect() *Reflect {
	return &Reflect{}
}

// Fields returns the exported, non-skipped fields of a struct type in
// declaration order. Non-struct types have no fields.
func (r *Reflect) Fields(t reflect.Type) ([]Field, error) {
	s := r.shapeOf(t)
	if s.err != nil {
		return nil, s.err
	}

	return append([]Field(nil), s.fields...), nil
}

// Base returns the embedded base struct type, or nil if t is the root of
// its chain.
func (r *Reflect) Base(t reflect.Type) (reflect.Type, error) {
	s := r.shapeOf(t)
	return s.base, s.err
}

// TypeArgs returns the element types of pointers, slices and arrays, the
// key and element types of maps, and whatever a GenericType reports.
func (r *Reflect) TypeArgs(t reflect.Type) []reflect.Type {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return []reflect.Type{t.Elem()}
	case reflect.Map:
		return []reflect.Type{t.Key(), t.Elem()}
	case reflect.Interface:
		return nil
	}

	if t.Implements(genericTypeType) {
		return reflect.Zero(t).Interface().(GenericType).SchemaTypeArgs()
	}

	if reflect.PointerTo(t).Implements(genericTypeType) {
		return reflect.New(t).Interface().(GenericType).SchemaTypeArgs()
	}

	return nil
}

// IsLeaf reports whether t is a primitive: a basic kind, a named basic
// kind, time.Time or time.Duration.
func (r *Reflect) IsLeaf(t reflect.Type) bool {
	return primitive.IsLeaf(t)
}

func (r *Reflect) shapeOf(t reflect.Type) *shape {
	if cached, ok := r.shapes.Load(t); ok {
		return cached.(*shape)
	}

	s := scan(t)
	actual, _ := r.shapes.LoadOrStore(t, s)

	return actual.(*shape)
}

func scan(t reflect.Type) *shape {
	s := &shape{}
	if t.Kind() != reflect.Struct || primitive.IsLeaf(t) {
		return s
	}

	for i := range t.NumField() {
		f := t.Field(i)

		opts, err := parseTag(f.Tag.Get(TagKey))
		if err != nil {
			return &shape{err: fmt.Errorf("%w: %s.%s: %v", ErrBadTag, t, f.Name, err)}
		}

		if opts.skip {
			continue
		}

		if opts.base {
			if !f.Anonymous || f.Type.Kind() != reflect.Struct || !f.IsExported() {
				return &shape{err: fmt.Errorf("%w: %s.%s", ErrBaseNotStruct, t, f.Name)}
			}

			if s.base != nil {
				return &shape{err: fmt.Errorf("%w: %s has %s and %s", ErrMultipleBases, t, s.base, f.Type)}
			}

			s.base = f.Type

			continue
		}

		if !f.IsExported() {
			continue
		}

		s.fields = append(s.fields, Field{
			Name:  f.Name,
			Type:  f.Type,
			Index: i,
			Tag:   opts.tag,
		})
	}

	return s
}

type tagOptions struct {
	tag  int
	skip bool
	base bool
}

func parseTag(raw string) (tagOptions, error) {
	var opts tagOptions
	if raw == "" {
		return opts, nil
	}

	if raw == "-" {
		opts.skip = true
		return opts, nil
	}

	head, rest, _ := strings.Cut(raw, ",")
	if head != "" {
		n, err := strconv.Atoi(head)
		if err != nil || n <= 0 {
			return opts, fmt.Errorf("tag %q is not a positive integer", head)
		}

		opts.tag = n
	}

	for _, opt := range strings.Split(rest, ",") {
		switch opt {
		case "":
		case "base":
			opts.base = true
		default:
			return opts, fmt.Errorf("unknown option %q", opt)
		}
	}

	return opts, nil
}
