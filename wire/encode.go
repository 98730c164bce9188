package wire

import (
	"errors"
	"fmt"
	"reflect"

	"wireschema/model"
	"wireschema/primitive"
)

// encode turns v into a tree of values the CBOR encoder writes directly:
// map[uint64]any for struct messages, []any for lists, map[any]any for
// maps and the value itself for leaves. nil means "omit".
func (e *Engine) encode(v reflect.Value, depth int) (any, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}

	t := v.Type()

	if plan, ok := e.registry.Plan(t); ok {
		return e.encodeMessage(v, plan, depth)
	}

	switch t.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}

		return e.encode(v.Elem(), depth+1)

	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}

		if t.Elem().Kind() == reflect.Uint8 {
			return v.Bytes(), nil
		}

		return e.encodeList(v, depth)

	case reflect.Array:
		return e.encodeList(v, depth)

	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}

		return e.encodeMap(v, depth)

	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		return []any{real(c), imag(c)}, nil
	}

	if primitive.IsLeaf(t) {
		return v.Interface(), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
}

// encodeMessage writes v's own fields, then wraps them in each base
// message up the chain under the subtype tag.
func (e *Engine) encodeMessage(v reflect.Value, plan *model.Plan, depth int) (any, error) {
	msg, err := e.encodeFields(v, plan, depth)
	if err != nil {
		return nil, err
	}

	cur, curVal := plan, v

	for {
		parent, ok := cur.Parent()
		if !ok {
			return msg, nil
		}

		if parent.Index < 0 {
			return nil, fmt.Errorf("%w: base %s is not embedded in %s", ErrUnsupported, parent.Type, cur.Type())
		}

		basePlan, ok := e.registry.Plan(parent.Type)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoPlan, parent.Type)
		}

		baseVal := curVal.Field(parent.Index)

		outer, err := e.encodeFields(baseVal, basePlan, depth)
		if err != nil {
			return nil, err
		}

		outer[uint64(parent.Tag)] = msg
		msg, cur, curVal = outer, basePlan, baseVal
	}
}

func (e *Engine) encodeFields(v reflect.Value, plan *model.Plan, depth int) (map[uint64]any, error) {
	fields := plan.Fields()
	msg := make(map[uint64]any, len(fields)+1)

	for _, f := range fields {
		item, err := e.encode(v.Field(f.Index), depth+1)
		if errors.Is(err, ErrTooDeep) {
			return nil, err
		}

		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", plan.Type(), f.Name, err)
		}

		if item != nil {
			msg[uint64(f.Tag)] = item
		}
	}

	return msg, nil
}

func (e *Engine) encodeList(v reflect.Value, depth int) (any, error) {
	items := make([]any, v.Len())

	for i := range items {
		item, err := e.encode(v.Index(i), depth+1)
		if err != nil {
			return nil, err
		}

		items[i] = item
	}

	return items, nil
}

func (e *Engine) encodeMap(v reflect.Value, depth int) (any, error) {
	out := make(map[any]any, v.Len())

	iter := v.MapRange()
	for iter.Next() {
		key, err := e.encode(iter.Key(), depth+1)
		if err != nil {
			return nil, err
		}

		if key == nil || !reflect.TypeOf(key).Comparable() {
			return nil, fmt.Errorf("%w: map key type %s", ErrUnsupported, v.Type().Key())
		}

		val, err := e.encode(iter.Value(), depth+1)
		if err != nil {
			return nil, err
		}

		out[key] = val
	}

	return out, nil
}
