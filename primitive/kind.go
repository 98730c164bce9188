// Package primitive classifies leaf types: values with no further
// decomposable structure, which terminate schema recursion and are
// written by the codec as single scalar items.
package primitive

import (
	"reflect"
	"time"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindComplex64
	KindComplex128
	KindBool
	KindString
	KindTime
	KindDuration
	KindPrimitiveEnum // named type over any integer number, float, boolean or string

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

func (k KindEnum) IsNumber() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64, KindComplex64, KindComplex128:
		return true
	}
}

func (k KindEnum) IsInteger() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	switch rtype {
	case timeType:
		return KindTime
	case durationType:
		return KindDuration
	}

	var kind KindEnum

	switch rtype.Kind() {
	default:
		return 0
	case reflect.Int:
		kind = KindInt
	case reflect.Int8:
		kind = KindInt8
	case reflect.Int16:
		kind = KindInt16
	case reflect.Int32:
		kind = KindInt32
	case reflect.Int64:
		kind = KindInt64
	case reflect.Uint:
		kind = KindUint
	case reflect.Uint8:
		kind = KindUint8
	case reflect.Uint16:
		kind = KindUint16
	case reflect.Uint32:
		kind = KindUint32
	case reflect.Uint64:
		kind = KindUint64
	case reflect.Float32:
		kind = KindFloat32
	case reflect.Float64:
		kind = KindFloat64
	case reflect.Complex64:
		kind = KindComplex64
	case reflect.Complex128:
		kind = KindComplex128
	case reflect.Bool:
		kind = KindBool
	case reflect.String:
		kind = KindString
	}

	// predeclared types have no package path; anything else is a named
	// type over a basic kind
	if rtype.PkgPath() != "" {
		return KindPrimitiveEnum
	}

	return kind
}

// IsLeaf reports whether rtype terminates schema recursion.
func IsLeaf(rtype reflect.Type) bool {
	return FromReflectType(rtype) != 0
}

// IsContainer reports whether rtype is a built-in parameterized type
// (pointer, slice, array or map) whose shape is known without a plan.
func IsContainer(rtype reflect.Type) bool {
	if rtype == nil {
		return false
	}

	switch rtype.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}
