// Package analyze loads Go packages and finds schema hierarchies in their
// source without running any code.
//
// It uses golang.org/x/tools/go/packages with go/types to build an
// in-memory model of the named types and their fields, then reads the
// `schema:",base"` markers to list every (base, derived) relation. The
// relations feed pin files, so subtype tags can be fixed before a program
// ever serializes a value.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes kind (struct/basic/named/pointer/slice/map/...)
//   - FieldInfo: describes field name, type, tags, and embedding
package analyze
