package common

import (
	"reflect"
)

// UnknownStr is the String() fallback for out-of-range enum values.
const UnknownStr = "unknown"

// Qualify joins a package path and a type name the way pin files and
// registry fingerprints spell type identity, e.g. "example.com/shapes.Circle".
// Returns name unchanged when pkgPath is empty.
func Qualify(pkgPath, name string) string {
	if pkgPath == "" {
		return name
	}

	return pkgPath + "." + name
}

// QualifiedName returns the qualified name of a named reflect.Type and
// falls back to t.String() for unnamed types ([]int, map[string]T, ...).
func QualifiedName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	if t.Name() == "" {
		return t.String()
	}

	return Qualify(t.PkgPath(), t.Name())
}
