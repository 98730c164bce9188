package builder

import (
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"wireschema/internal/common"
)

// BuiltSet records types whose plan, and the plans of everything reachable
// from them, are complete. Entries are never removed, so Contains is safe
// without holding any section.
type BuiltSet struct {
	types sync.Map // map[reflect.Type]struct{}
	n     atomic.Int64
}

// Contains reports whether t has been committed.
func (s *BuiltSet) Contains(t reflect.Type) bool {
	_, ok := s.types.Load(t)
	return ok
}

// Len returns the number of committed types.
func (s *BuiltSet) Len() int {
	return int(s.n.Load())
}

// Types returns the committed types ordered by qualified name.
func (s *BuiltSet) Types() []reflect.Type {
	var out []reflect.Type

	s.types.Range(func(key, _ any) bool {
		out = append(out, key.(reflect.Type))
		return true
	})

	slices.SortFunc(out, func(a, b reflect.Type) int {
		return strings.Compare(common.QualifiedName(a), common.QualifiedName(b))
	})

	return out
}

func (s *BuiltSet) add(t reflect.Type) {
	if _, loaded := s.types.LoadOrStore(t, struct{}{}); !loaded {
		s.n.Add(1)
	}
}
