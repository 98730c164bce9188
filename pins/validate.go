package pins

import (
	"fmt"

	"wireschema/internal/diagnostic"
)

// Validate checks the structural rules of a pin file: known version,
// non-empty names, tags in the subtype range and no base listing the same
// tag or derived type twice.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("pins_is_nil", "pin file is nil", "", "")
		return res
	}

	if f.Version != CurrentVersion {
		res.AddError("unsupported_version", fmt.Sprintf("unsupported version %q", f.Version), "", "version")
	}

	if f.Fingerprint != "" && f.Fingerprint != f.Digest() {
		res.AddWarning("fingerprint_mismatch", "pins changed since the file was sealed", "", "fingerprint")
	}

	seenBases := map[string]struct{}{}

	for i, e := range f.Subtypes {
		path := fmt.Sprintf("subtypes[%d]", i)

		if e.Base == "" {
			res.AddError("empty_base", "base type name is empty", "", path)
			continue
		}

		if _, ok := seenBases[e.Base]; ok {
			res.AddError("duplicate_base", fmt.Sprintf("base %q listed more than once", e.Base), e.Base, path)
		}

		seenBases[e.Base] = struct{}{}

		if len(e.Derived) == 0 {
			res.AddWarning("no_derived", "base has no pinned derived types", e.Base, path)
		}

		tags := map[int]string{}
		types := map[string]struct{}{}

		for j, d := range e.Derived {
			dpath := fmt.Sprintf("%s.derived[%d]", path, j)

			if d.Type == "" {
				res.AddError("empty_derived", "derived type name is empty", e.Base, dpath)
				continue
			}

			if d.Tag < FirstTag {
				res.AddError("tag_out_of_range",
					fmt.Sprintf("tag %d for %s is below %d", d.Tag, d.Type, FirstTag), e.Base, dpath)
			}

			if prev, ok := tags[d.Tag]; ok {
				res.AddError("duplicate_tag",
					fmt.Sprintf("tag %d used by both %s and %s", d.Tag, prev, d.Type), e.Base, dpath)
			}

			if _, ok := types[d.Type]; ok {
				res.AddError("duplicate_derived", fmt.Sprintf("%s pinned more than once", d.Type), e.Base, dpath)
			}

			tags[d.Tag] = d.Type
			types[d.Type] = struct{}{}
		}
	}

	return res
}

// Check compares a pin file against the relations discovered in source
// and reports every relation that is not pinned, plus pinned relations
// that no longer exist.
func Check(f *File, pairs []Pair) *diagnostic.Diagnostics {
	res := Validate(f)
	if f == nil {
		return res
	}

	live := map[Pair]struct{}{}

	for _, p := range pairs {
		live[p] = struct{}{}

		if _, ok := f.Lookup(p.Base, p.Derived); !ok {
			res.AddError("unpinned_subtype",
				fmt.Sprintf("%s derives from %s but has no pinned tag", p.Derived, p.Base), p.Derived, "")
		}
	}

	for _, p := range f.Pairs() {
		if _, ok := live[p]; !ok {
			res.AddWarning("stale_pin",
				fmt.Sprintf("%s is pinned under %s but no longer derives from it", p.Derived, p.Base), p.Derived, "")
		}
	}

	return res
}
