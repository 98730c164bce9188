package model

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"

	"wireschema/internal/common"
)

// Describe writes the canonical text form of every plan: one block per
// type in qualified-name order, fields in declaration order, subtypes in
// tag order.
func (r *Registry) Describe(w io.Writer) error {
	for _, p := range r.Plans() {
		if _, err := fmt.Fprintf(w, "type %s\n", common.QualifiedName(p.typ)); err != nil {
			return err
		}

		for _, f := range p.fields {
			if _, err := fmt.Fprintf(w, "  field %d %s %s\n", f.Tag, f.Name, f.Type); err != nil {
				return err
			}
		}

		for _, s := range p.Subtypes() {
			if _, err := fmt.Fprintf(w, "  subtype %d %s\n", s.Tag, common.QualifiedName(s.Type)); err != nil {
				return err
			}
		}
	}

	return nil
}

// Fingerprint is the BLAKE3 digest of Describe, hex encoded. Registries
// with equal fingerprints read and write identical bytes for every type
// they hold.
func (r *Registry) Fingerprint() string {
	hasher := blake3.New()
	if err := r.Describe(hasher); err != nil {
		panic("model: hashing registry description failed: " + err.Error())
	}

	return hex.EncodeToString(hasher.Sum(nil))
}
