package pins

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/zeebo/blake3"

	"wireschema/internal/common"
	"wireschema/model"
)

// CurrentVersion is the pin file format version written by this package.
const CurrentVersion = "1"

// FirstTag is the lowest tag a pin may use.
const FirstTag = model.SubtypeTagBase

// File is a parsed pin file.
type File struct {
	Version string `yaml:"version"`
	// Fingerprint is the digest of the assignments at the time the file
	// was last written by Seal. Hand edits show up as a mismatch.
	Fingerprint string      `yaml:"fingerprint,omitempty"`
	Subtypes    []BaseEntry `yaml:"subtypes"`
}

// BaseEntry lists the pinned derived types of one base type.
type BaseEntry struct {
	Base    string         `yaml:"base"`
	Derived []DerivedEntry `yaml:"derived"`
}

// DerivedEntry pins one derived type to a tag.
type DerivedEntry struct {
	Type string `yaml:"type"`
	Tag  int    `yaml:"tag"`
}

// Pair is a (base, derived) relation by qualified type name.
type Pair struct {
	Base    string `json:"base"`
	Derived string `json:"derived"`
}

// Lookup returns the tag pinned for derived under base.
func (f *File) Lookup(base, derived string) (int, bool) {
	entry := f.entry(base)
	if entry == nil {
		return 0, false
	}

	for _, d := range entry.Derived {
		if d.Type == derived {
			return d.Tag, true
		}
	}

	return 0, false
}

// Reserved returns every tag pinned under base, ascending.
func (f *File) Reserved(base string) []int {
	entry := f.entry(base)
	if entry == nil {
		return nil
	}

	tags := make([]int, 0, len(entry.Derived))
	for _, d := range entry.Derived {
		tags = append(tags, d.Tag)
	}

	slices.Sort(tags)

	return tags
}

// Pairs returns every pinned relation, in file order.
func (f *File) Pairs() []Pair {
	var out []Pair
	for _, e := range f.Subtypes {
		for _, d := range e.Derived {
			out = append(out, Pair{Base: e.Base, Derived: d.Type})
		}
	}

	return out
}

// Merge pins every pair that is not pinned yet and returns how many were
// added. New derived types of a base are appended in lexical order after
// the highest tag already used by that base; new bases are appended in
// lexical order.
func (f *File) Merge(pairs []Pair) int {
	byBase := make(map[string][]string)
	for _, p := range pairs {
		if _, ok := f.Lookup(p.Base, p.Derived); ok {
			continue
		}

		if !slices.Contains(byBase[p.Base], p.Derived) {
			byBase[p.Base] = append(byBase[p.Base], p.Derived)
		}
	}

	bases := make([]string, 0, len(byBase))
	for base := range byBase {
		bases = append(bases, base)
	}

	slices.Sort(bases)

	added := 0

	for _, base := range bases {
		derived := byBase[base]
		slices.SortFunc(derived, strings.Compare)

		entry := f.entry(base)
		if entry == nil {
			f.Subtypes = append(f.Subtypes, BaseEntry{Base: base})
			entry = &f.Subtypes[len(f.Subtypes)-1]
		}

		next := FirstTag
		if reserved := f.Reserved(base); !common.IsEmpty(reserved) {
			next = reserved[len(reserved)-1] + 1
		}

		for _, d := range derived {
			entry.Derived = append(entry.Derived, DerivedEntry{Type: d, Tag: next})
			next++
			added++
		}
	}

	return added
}

func (f *File) entry(base string) *BaseEntry {
	for i := range f.Subtypes {
		if f.Subtypes[i].Base == base {
			return &f.Subtypes[i]
		}
	}

	return nil
}

// Digest returns the BLAKE3 digest of the assignments, hex encoded. It
// depends on file order, which is the order Merge preserves.
func (f *File) Digest() string {
	hasher := blake3.New()
	for _, e := range f.Subtypes {
		for _, d := range e.Derived {
			fmt.Fprintf(hasher, "%s %s %d\n", e.Base, d.Type, d.Tag)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil))
}

// Seal records the current digest in Fingerprint.
func (f *File) Seal() {
	f.Fingerprint = f.Digest()
}
