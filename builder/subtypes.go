package builder

import (
	"reflect"
	"slices"
	"sync"

	"wireschema/internal/common"
	"wireschema/model"
	"wireschema/pins"
)

// Assignment is a derived type and the subtype tag it holds under a base.
type Assignment struct {
	Type reflect.Type
	Tag  int
}

// SubtypeIndex maps each base type to the derived types registered
// against it. Tags per base start at model.SubtypeTagBase and grow in
// first-seen order; tags pinned in a pin file are reserved up front and
// always win.
type SubtypeIndex struct {
	mu    sync.Mutex
	bases map[reflect.Type]*subtypeEntry
	pins  *pins.File
}

type subtypeEntry struct {
	derived []Assignment
	next    int
}

func newSubtypeIndex(p *pins.File) *SubtypeIndex {
	return &SubtypeIndex{
		bases: make(map[reflect.Type]*subtypeEntry),
		pins:  p,
	}
}

// Contains reports whether derived is registered under base.
func (x *SubtypeIndex) Contains(base, derived reflect.Type) bool {
	_, ok := x.Tag(base, derived)
	return ok
}

// Tag returns the tag of derived under base.
func (x *SubtypeIndex) Tag(base, derived reflect.Type) (int, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	entry, ok := x.bases[base]
	if !ok {
		return 0, false
	}

	for _, a := range entry.derived {
		if a.Type == derived {
			return a.Tag, true
		}
	}

	return 0, false
}

// Derived returns the derived types of base in registration order.
func (x *SubtypeIndex) Derived(base reflect.Type) []Assignment {
	x.mu.Lock()
	defer x.mu.Unlock()

	entry, ok := x.bases[base]
	if !ok {
		return nil
	}

	return slices.Clone(entry.derived)
}

// register assigns derived its tag under base and runs commit with it
// while holding the index lock, so the pair reaches the registry exactly
// once. added is false when the pair was already present.
func (x *SubtypeIndex) register(base, derived reflect.Type, commit func(tag int) error) (tag int, added bool, err error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	entry := x.entryLocked(base)
	for _, a := range entry.derived {
		if a.Type == derived {
			return a.Tag, false, nil
		}
	}

	pinned := false
	tag = entry.next

	if x.pins != nil {
		tag, pinned = x.pins.Lookup(common.QualifiedName(base), common.QualifiedName(derived))
		if !pinned {
			tag = entry.next
		}
	}

	if err := commit(tag); err != nil {
		return 0, false, err
	}

	entry.derived = append(entry.derived, Assignment{Type: derived, Tag: tag})
	if !pinned {
		entry.next++
	}

	return tag, true, nil
}

func (x *SubtypeIndex) entryLocked(base reflect.Type) *subtypeEntry {
	if entry, ok := x.bases[base]; ok {
		return entry
	}

	entry := &subtypeEntry{next: model.SubtypeTagBase}

	if x.pins != nil {
		if reserved := x.pins.Reserved(common.QualifiedName(base)); len(reserved) > 0 {
			entry.next = max(entry.next, reserved[len(reserved)-1]+1)
		}
	}

	x.bases[base] = entry

	return entry
}
