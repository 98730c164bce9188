package analyze

import (
	"cmp"
	"go/types"
	"slices"
	"strings"

	"wireschema/internal/common"
	"wireschema/internal/diagnostic"
	"wireschema/pins"
)

// Hierarchy lists every (base, derived) relation declared in the graph,
// ordered by base then derived name. Only direct relations are listed;
// Triangle -> Polygon -> Shape yields (Polygon, Triangle) and
// (Shape, Polygon).
//
// Generic declarations are skipped with a warning: their instantiations
// only exist at run time, so their tags cannot be pinned from source.
func (g *TypeGraph) Hierarchy() ([]pins.Pair, *diagnostic.Diagnostics) {
	diags := &diagnostic.Diagnostics{}

	ids := make([]TypeID, 0, len(g.Types))
	for id := range g.Types {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, func(a, b TypeID) int {
		return strings.Compare(a.String(), b.String())
	})

	var pairs []pins.Pair

	for _, id := range ids {
		info := g.Types[id]
		if info.Kind != TypeKindStruct {
			continue
		}

		var bases []*FieldInfo
		for i := range info.Fields {
			if info.Fields[i].IsBase() {
				bases = append(bases, &info.Fields[i])
			}
		}

		if common.IsEmpty(bases) {
			continue
		}

		subject := id.String()

		if common.IsMultiple(bases) {
			diags.AddError("multiple_bases", "more than one field is marked as base", subject,
				NewTypePath(id.Name).Field(bases[1].Name).String())
			continue
		}

		base := bases[0]
		path := NewTypePath(id.Name).Field(base.Name).String()

		if !base.Embedded || !isNamedStruct(base.Type) {
			diags.AddError("base_not_struct", "base must be an embedded struct value", subject, path)
			continue
		}

		if !base.Exported {
			diags.AddError("base_unexported", "base type must be exported", subject, path)
			continue
		}

		if info.Generic {
			diags.AddWarning("generic_subtype",
				"generic derived type is skipped; pin its instantiations by hand", subject, path)
			continue
		}

		if base.Type.TypeArgs > 0 {
			diags.AddWarning("generic_base",
				"base is a generic instantiation; pin it by hand", subject, path)
			continue
		}

		pairs = append(pairs, pins.Pair{Base: base.Type.ID.String(), Derived: subject})
	}

	slices.SortFunc(pairs, func(a, b pins.Pair) int {
		return cmp.Or(strings.Compare(a.Base, b.Base), strings.Compare(a.Derived, b.Derived))
	})

	return pairs, diags
}

func isNamedStruct(t *TypeInfo) bool {
	if t == nil || !t.IsNamed() || t.GoType == nil {
		return false
	}

	_, ok := t.GoType.Underlying().(*types.Struct)

	return ok
}
