// Package model is the schema registry: the accumulating store of
// serialization plans, keyed by reflect.Type, that the wire codec reads.
//
// Ordinary fields carry tags in [1, MaxFieldTag]. Tags from SubtypeTagBase
// upward identify derived types inside a base type's message, so they can
// never collide with a declared field.
package model

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"wireschema/internal/common"
	"wireschema/introspect"
	"wireschema/primitive"
	"wireschema/utils"
)

const (
	// SubtypeTagBase is the first tag handed to a derived type under a base.
	SubtypeTagBase = 500
	// MaxFieldTag is the largest tag an ordinary field may use.
	MaxFieldTag = SubtypeTagBase - 1
)

var (
	ErrDuplicateType    = errors.New("model: type already registered")
	ErrUnsupportedType  = errors.New("model: unsupported type")
	ErrTagCollision     = errors.New("model: field tag collision")
	ErrSubtypeTag       = errors.New("model: subtype tag outside subtype range")
	ErrDuplicateSubtype = errors.New("model: subtype already registered")
	ErrUnknownPlan      = errors.New("model: plan not registered")
)

// Registry maps types to plans. It is safe for concurrent use; plans are
// added for the lifetime of the registry and never removed.
type Registry struct {
	mu    sync.RWMutex
	plans map[reflect.Type]*Plan
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plans: make(map[reflect.Type]*Plan),
	}
}

// CanSerialize reports whether the registry can already handle t without
// building anything: leaves, built-in containers and registered types.
func (r *Registry) CanSerialize(t reflect.Type) bool {
	if primitive.IsLeaf(t) || primitive.IsContainer(t) {
		return true
	}

	_, ok := r.Plan(t)

	return ok
}

// Plan returns the plan registered for t.
func (r *Registry) Plan(t reflect.Type) (*Plan, bool) {
	r.mu.RLock()
	p, ok := r.plans[t]
	r.mu.RUnlock()

	return p, ok
}

// Len returns the number of registered plans.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.plans)
}

// Plans returns every plan ordered by qualified type name.
func (r *Registry) Plans() []*Plan {
	r.mu.RLock()
	out := make([]*Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Plan) int {
		return strings.Compare(common.QualifiedName(a.typ), common.QualifiedName(b.typ))
	})

	return out
}

// Register creates the plan for struct type t from its fields. Fields keep
// their order; explicit tags are kept and the rest get the lowest unused
// tags in declaration order. Registering a type twice is an error.
func (r *Registry) Register(t reflect.Type, fields []introspect.Field) (*Plan, error) {
	if t == nil || t.Kind() != reflect.Struct || primitive.IsLeaf(t) {
		return nil, fmt.Errorf("%w: %v is not a struct", ErrUnsupportedType, t)
	}

	for _, f := range fields {
		if !supported(f.Type, map[reflect.Type]bool{}) {
			return nil, fmt.Errorf("%w: field %s.%s has type %s", ErrUnsupportedType, t, f.Name, f.Type)
		}
	}

	planFields, err := assignTags(t, fields)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		typ:    t,
		fields: planFields,
		byTag:  make(map[int]int, len(planFields)),
	}
	for i, f := range planFields {
		p.byTag[f.Tag] = i
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[t]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateType, t)
	}

	r.plans[t] = p

	return p, nil
}

// AddSubtype records derived under tag in plan's subtype table and links
// the derived plan, when registered, back to its base.
func (r *Registry) AddSubtype(plan *Plan, tag int, derived reflect.Type) error {
	if plan == nil {
		return fmt.Errorf("%w: subtype %s has no base plan", ErrUnknownPlan, derived)
	}

	if tag < SubtypeTagBase {
		return fmt.Errorf("%w: %d for %s under %s", ErrSubtypeTag, tag, derived, plan.typ)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	plan.mu.Lock()
	if plan.hasSubtype(tag, derived) {
		plan.mu.Unlock()
		return fmt.Errorf("%w: %s (tag %d) under %s", ErrDuplicateSubtype, derived, tag, plan.typ)
	}
	plan.subtypes = append(plan.subtypes, Subtype{Tag: tag, Type: derived})
	plan.mu.Unlock()

	if dp, ok := r.plans[derived]; ok {
		dp.mu.Lock()
		dp.parent = &Parent{Type: plan.typ, Tag: tag, Index: embeddedIndex(derived, plan.typ)}
		dp.mu.Unlock()
	}

	return nil
}

func assignTags(t reflect.Type, fields []introspect.Field) ([]Field, error) {
	used := make(map[int]bool, len(fields))
	for _, f := range fields {
		if f.Tag == 0 {
			continue
		}

		if !utils.IsInRange(1, f.Tag, MaxFieldTag) {
			return nil, fmt.Errorf("%w: %s.%s tag %d outside [1, %d]", ErrTagCollision, t, f.Name, f.Tag, MaxFieldTag)
		}

		if used[f.Tag] {
			return nil, fmt.Errorf("%w: %s.%s reuses tag %d", ErrTagCollision, t, f.Name, f.Tag)
		}

		used[f.Tag] = true
	}

	out := make([]Field, 0, len(fields))
	next := 1

	for _, f := range fields {
		tag := f.Tag
		if tag == 0 {
			for used[next] {
				next++
			}

			if next > MaxFieldTag {
				return nil, fmt.Errorf("%w: %s has more than %d fields", ErrTagCollision, t, MaxFieldTag)
			}

			tag = next
			used[tag] = true
		}

		out = append(out, Field{Name: f.Name, Tag: tag, Type: f.Type, Index: f.Index})
	}

	return out, nil
}

// supported rejects kinds the codec cannot represent. Struct types are
// accepted here and checked when they are registered themselves.
func supported(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return true
	}
	seen[t] = true

	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer, reflect.Invalid:
		return false
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return supported(t.Elem(), seen)
	case reflect.Map:
		return primitive.IsLeaf(t.Key()) && supported(t.Elem(), seen)
	default:
		return true
	}
}

func embeddedIndex(derived, base reflect.Type) int {
	if derived.Kind() != reflect.Struct {
		return -1
	}

	for i := range derived.NumField() {
		f := derived.Field(i)
		if f.Anonymous && f.Type == base {
			return i
		}
	}

	return -1
}
