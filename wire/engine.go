// Package wire is the serialization engine: it owns a schema registry and
// the builder that fills it, and reads and writes CBOR driven by the
// registered plans.
//
// A struct is written as a CBOR map from field tag to value. A value whose
// type has a base chain is written as its root's message, with the
// derived message nested under the subtype tag at every level:
//
//	Circle{Shape{}, Radius: 2}  =>  {500: {1: 2.0}}
//
// so a reader that only knows the root can still find out, through the
// root's subtype table, which derived type was written.
package wire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"wireschema/builder"
	"wireschema/introspect"
	"wireschema/model"
	"wireschema/pins"
)

// maxDepth bounds value nesting; pointer cycles in a value end here.
const maxDepth = 512

var (
	ErrNilValue       = errors.New("wire: nil value")
	ErrNotPointer     = errors.New("wire: decode target must be a non-nil pointer")
	ErrUnsupported    = errors.New("wire: unsupported value")
	ErrTypeMismatch   = errors.New("wire: encoded type does not match target")
	ErrUnknownSubtype = errors.New("wire: unknown subtype tag")
	ErrTooDeep        = errors.New("wire: value nested too deeply")
	ErrNoPlan         = errors.New("wire: type has no plan")
	ErrLength         = errors.New("wire: array length mismatch")
)

// Config holds the optional parameters of an Engine.
type Config struct {
	// Logger is handed to the builder. If nil, a no-op logger is used.
	Logger *slog.Logger

	// Pins fixes subtype tags. May be nil.
	Pins *pins.File

	// Introspector reads type shapes. Defaults to introspect.NewReflect().
	Introspector introspect.Introspector
}

// Engine encodes and decodes values. Each Engine has its own registry,
// Built-Set and Subtype Index; engines never share schema state.
type Engine struct {
	registry *model.Registry
	builder  *builder.Builder
}

// New creates an Engine.
func New(cfg Config) *Engine {
	intro := cfg.Introspector
	if intro == nil {
		intro = introspect.NewReflect()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	registry := model.NewRegistry()

	return &Engine{
		registry: registry,
		builder: builder.New(registry, intro, builder.Config{
			Logger: logger.With("component", "schema-builder"),
			Pins:   cfg.Pins,
		}),
	}
}

// Registry returns the engine's schema registry.
func (e *Engine) Registry() *model.Registry {
	return e.registry
}

// Builder returns the engine's schema builder.
func (e *Engine) Builder() *builder.Builder {
	return e.builder
}

// Fingerprint returns the registry fingerprint; see model.Registry.
func (e *Engine) Fingerprint() string {
	return e.registry.Fingerprint()
}

// Prepare builds the schemas of types up front, in parallel. Calling it in
// a fixed order at startup is the cheap way to get stable subtype tags
// without a pin file.
func (e *Engine) Prepare(ctx context.Context, types ...reflect.Type) error {
	return e.builder.EnsureAll(ctx, types...)
}

// Marshal encodes v, building its schema on first use.
func (e *Engine) Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, ErrNilValue
	}

	if err := e.builder.Ensure(rv.Type()); err != nil {
		return nil, err
	}

	item, err := e.encode(rv, 0)
	if err != nil {
		return nil, err
	}

	return encMode.Marshal(item)
}

// Unmarshal decodes data into the value v points to. The payload must
// carry exactly v's type or a type derived from it along the same chain;
// fields of deeper derived types are ignored.
func (e *Engine) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrNotPointer
	}

	target := rv.Elem()
	if err := e.builder.Ensure(target.Type()); err != nil {
		return err
	}

	return e.decode(data, target, 0)
}

// UnmarshalAny decodes a payload written for root or any type derived
// from it and returns a pointer to a value of the most derived type the
// payload names.
func (e *Engine) UnmarshalAny(data []byte, root reflect.Type) (any, error) {
	if root == nil {
		return nil, ErrNilValue
	}

	if err := e.builder.Ensure(root); err != nil {
		return nil, err
	}

	plan, ok := e.registry.Plan(root)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPlan, root)
	}

	// root may itself be derived; the payload starts at the top of its chain
	plans, _, err := e.chain(plan, reflect.New(root).Elem())
	if err != nil {
		return nil, err
	}

	msgs, err := e.descend(data, plans)
	if err != nil {
		return nil, err
	}

	for {
		next, inner, err := e.selectSubtype(plans[len(plans)-1], msgs[len(msgs)-1])
		if err != nil {
			return nil, err
		}

		if next == nil {
			break
		}

		m, err := decodeMessage(inner)
		if err != nil {
			return nil, err
		}

		plans = append(plans, next)
		msgs = append(msgs, m)
	}

	out := reflect.New(plans[len(plans)-1].Type())

	chainPlans, vals, err := e.chain(plans[len(plans)-1], out.Elem())
	if err != nil {
		return nil, err
	}

	if len(chainPlans) != len(plans) || chainPlans[0] != plans[0] {
		return nil, fmt.Errorf("%w: %s is not derived from %s", ErrTypeMismatch, out.Elem().Type(), root)
	}

	for i := range plans {
		if err := e.fill(plans[i], vals[i], msgs[i], 0); err != nil {
			return nil, err
		}
	}

	return out.Interface(), nil
}

// descend decodes data along a known root-first chain of plans and returns
// one message per plan.
func (e *Engine) descend(data []byte, plans []*model.Plan) ([]messageFields, error) {
	msg, err := decodeMessage(data)
	if err != nil {
		return nil, err
	}

	msgs := []messageFields{msg}

	for _, p := range plans[1:] {
		parent, _ := p.Parent()

		inner, ok := msg[uint64(parent.Tag)]
		if !ok {
			return nil, fmt.Errorf("%w: %s message carries no %s", ErrTypeMismatch, parent.Type, p.Type())
		}

		if msg, err = decodeMessage(inner); err != nil {
			return nil, err
		}

		msgs = append(msgs, msg)
	}

	return msgs, nil
}

// selectSubtype finds the derived message inside msg, if any.
func (e *Engine) selectSubtype(plan *model.Plan, msg messageFields) (*model.Plan, []byte, error) {
	var tags []uint64
	for tag := range msg {
		if tag >= model.SubtypeTagBase {
			tags = append(tags, tag)
		}
	}

	switch len(tags) {
	case 0:
		return nil, nil, nil
	case 1:
	default:
		return nil, nil, fmt.Errorf("%w: %s message names %d subtypes", ErrTypeMismatch, plan.Type(), len(tags))
	}

	derived, ok := plan.Subtype(int(tags[0]))
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d under %s", ErrUnknownSubtype, tags[0], plan.Type())
	}

	next, ok := e.registry.Plan(derived)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoPlan, derived)
	}

	return next, msg[tags[0]], nil
}

// chain returns the plans and values from the root of plan's base chain
// down to plan itself; v must hold plan's type.
func (e *Engine) chain(plan *model.Plan, v reflect.Value) ([]*model.Plan, []reflect.Value, error) {
	plans := []*model.Plan{plan}
	vals := []reflect.Value{v}

	for {
		cur := plans[len(plans)-1]

		parent, ok := cur.Parent()
		if !ok {
			break
		}

		if parent.Index < 0 {
			return nil, nil, fmt.Errorf("%w: base %s is not embedded in %s", ErrUnsupported, parent.Type, cur.Type())
		}

		basePlan, ok := e.registry.Plan(parent.Type)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrNoPlan, parent.Type)
		}

		plans = append(plans, basePlan)
		vals = append(vals, vals[len(vals)-1].Field(parent.Index))
	}

	// root first
	for i, j := 0, len(plans)-1; i < j; i, j = i+1, j-1 {
		plans[i], plans[j] = plans[j], plans[i]
		vals[i], vals[j] = vals[j], vals[i]
	}

	return plans, vals, nil
}
