package model

import (
	"reflect"
	"slices"
	"sync"
)

// Field is a registered field of a plan: a Go struct field bound to a wire
// tag.
type Field struct {
	Name  string
	Tag   int
	Type  reflect.Type
	Index int // index within the declaring struct
}

// Subtype is one row of a plan's subtype table.
type Subtype struct {
	Tag  int
	Type reflect.Type
}

// Parent links a plan to the base type it was registered under.
type Parent struct {
	Type reflect.Type
	Tag  int // subtype tag of the derived type under Type
	// Index of the embedded base field inside the derived struct, -1 when
	// the base is not embedded (custom introspectors).
	Index int
}

// Plan is the serialization plan for one struct type. Type and Fields are
// fixed at registration; the subtype table and parent link grow as derived
// types are discovered and are safe for concurrent readers.
type Plan struct {
	typ    reflect.Type
	fields []Field
	byTag  map[int]int

	mu          sync.RWMutex
	fieldAssign bool
	subtypes    []Subtype
	parent      *Parent
}

// Type returns the type the plan describes.
func (p *Plan) Type() reflect.Type {
	return p.typ
}

// Fields returns the fields in declaration order. The slice must not be
// modified.
func (p *Plan) Fields() []Field {
	return p.fields
}

// FieldByTag looks a field up by its wire tag.
func (p *Plan) FieldByTag(tag int) (Field, bool) {
	i, ok := p.byTag[tag]
	if !ok {
		return Field{}, false
	}

	return p.fields[i], true
}

// FieldAssign reports whether instances are built by assigning fields one
// by one rather than through a constructor.
func (p *Plan) FieldAssign() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.fieldAssign
}

// SetFieldAssign switches the construction mode of the plan.
func (p *Plan) SetFieldAssign(on bool) {
	p.mu.Lock()
	p.fieldAssign = on
	p.mu.Unlock()
}

// Subtypes returns a snapshot of the subtype table ordered by tag.
func (p *Plan) Subtypes() []Subtype {
	p.mu.RLock()
	out := slices.Clone(p.subtypes)
	p.mu.RUnlock()

	slices.SortFunc(out, func(a, b Subtype) int { return a.Tag - b.Tag })

	return out
}

// Subtype returns the derived type registered under tag.
func (p *Plan) Subtype(tag int) (reflect.Type, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, s := range p.subtypes {
		if s.Tag == tag {
			return s.Type, true
		}
	}

	return nil, false
}

// Parent returns the base the plan's type was registered under, if any.
func (p *Plan) Parent() (Parent, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.parent == nil {
		return Parent{}, false
	}

	return *p.parent, true
}

func (p *Plan) hasSubtype(tag int, derived reflect.Type) bool {
	for _, s := range p.subtypes {
		if s.Tag == tag || s.Type == derived {
			return true
		}
	}

	return false
}
