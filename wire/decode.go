package wire

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"wireschema/model"
	"wireschema/primitive"
)

// decode reads raw into v. v must be addressable.
func (e *Engine) decode(raw cbor.RawMessage, v reflect.Value, depth int) error {
	if depth > maxDepth {
		return ErrTooDeep
	}

	t := v.Type()

	if isNull(raw) {
		v.Set(reflect.Zero(t))
		return nil
	}

	if plan, ok := e.registry.Plan(t); ok {
		return e.decodeStruct(raw, plan, v, depth)
	}

	switch t.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(t.Elem()))
		}

		return e.decode(raw, v.Elem(), depth+1)

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			var b []byte
			if err := decMode.Unmarshal(raw, &b); err != nil {
				return err
			}

			v.SetBytes(b)

			return nil
		}

		var items []cbor.RawMessage
		if err := decMode.Unmarshal(raw, &items); err != nil {
			return err
		}

		s := reflect.MakeSlice(t, len(items), len(items))
		for i, item := range items {
			if err := e.decode(item, s.Index(i), depth+1); err != nil {
				return err
			}
		}

		v.Set(s)

		return nil

	case reflect.Array:
		var items []cbor.RawMessage
		if err := decMode.Unmarshal(raw, &items); err != nil {
			return err
		}

		if len(items) != t.Len() {
			return fmt.Errorf("%w: %s holds %d, got %d", ErrLength, t, t.Len(), len(items))
		}

		for i, item := range items {
			if err := e.decode(item, v.Index(i), depth+1); err != nil {
				return err
			}
		}

		return nil

	case reflect.Map:
		return e.decodeMap(raw, v, depth)

	case reflect.Complex64, reflect.Complex128:
		var parts []float64
		if err := decMode.Unmarshal(raw, &parts); err != nil {
			return err
		}

		if len(parts) != 2 {
			return fmt.Errorf("%w: complex number needs 2 parts, got %d", ErrLength, len(parts))
		}

		v.SetComplex(complex(parts[0], parts[1]))

		return nil
	}

	if primitive.IsLeaf(t) {
		return decMode.Unmarshal(raw, v.Addr().Interface())
	}

	if t.Kind() == reflect.Struct {
		return fmt.Errorf("%w: %s", ErrNoPlan, t)
	}

	return fmt.Errorf("%w: %s", ErrUnsupported, t)
}

// decodeStruct reads a struct message along the base chain of plan's type
// and fills every level of v.
func (e *Engine) decodeStruct(raw cbor.RawMessage, plan *model.Plan, v reflect.Value, depth int) error {
	plans, vals, err := e.chain(plan, v)
	if err != nil {
		return err
	}

	msgs, err := e.descend(raw, plans)
	if err != nil {
		return err
	}

	for i := range plans {
		if err := e.fill(plans[i], vals[i], msgs[i], depth); err != nil {
			return err
		}
	}

	return nil
}

// fill sets the fields of v present in msg. Unknown tags, including the
// subtype tag of a deeper derived message, are ignored.
func (e *Engine) fill(plan *model.Plan, v reflect.Value, msg messageFields, depth int) error {
	for _, f := range plan.Fields() {
		raw, ok := msg[uint64(f.Tag)]
		if !ok {
			continue
		}

		err := e.decode(raw, v.Field(f.Index), depth+1)
		if errors.Is(err, ErrTooDeep) {
			return err
		}

		if err != nil {
			return fmt.Errorf("%s.%s: %w", plan.Type(), f.Name, err)
		}
	}

	return nil
}

func (e *Engine) decodeMap(raw cbor.RawMessage, v reflect.Value, depth int) error {
	var items map[any]cbor.RawMessage
	if err := decMode.Unmarshal(raw, &items); err != nil {
		return err
	}

	t := v.Type()
	m := reflect.MakeMapWithSize(t, len(items))

	for key, item := range items {
		// keys come back as generic CBOR values; a second pass through the
		// codec converts them to the declared key type
		kb, err := encMode.Marshal(key)
		if err != nil {
			return err
		}

		k := reflect.New(t.Key())
		if err := decMode.Unmarshal(kb, k.Interface()); err != nil {
			return fmt.Errorf("map key of %s: %w", t, err)
		}

		val := reflect.New(t.Elem()).Elem()
		if err := e.decode(item, val, depth+1); err != nil {
			return err
		}

		m.SetMapIndex(k.Elem(), val)
	}

	v.Set(m)

	return nil
}
