// Package builder constructs serialization plans for types discovered at
// run time.
//
// Ensure registers a plan for a type and for every type reachable from it
// through fields, the base-type chain and type arguments. Derived types
// are attached to each base in the chain with tags starting at
// model.SubtypeTagBase, in the order they are first seen (or as pinned).
//
// A Builder is safe for concurrent use. Each type is built by exactly one
// caller; unrelated types build in parallel; cyclic type graphs terminate,
// including cycles entered from different goroutines at once. A type is
// committed as soon as everything its build reached is built, and a
// failure is reported only to callers whose build reached the failing
// type.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"golang.org/x/sync/errgroup"

	"wireschema/internal/common"
	"wireschema/introspect"
	"wireschema/model"
	"wireschema/pins"
)

var (
	// ErrNilType is returned when Ensure is called with a nil type.
	ErrNilType = errors.New("builder: nil type")
	// ErrBasePlanMissing is returned when a base type ends up without a
	// plan, so a derived type cannot be attached to it.
	ErrBasePlanMissing = errors.New("builder: base type has no plan")
)

// Registry is the schema store the builder fills. *model.Registry
// implements it.
type Registry interface {
	CanSerialize(t reflect.Type) bool
	Register(t reflect.Type, fields []introspect.Field) (*model.Plan, error)
	AddSubtype(plan *model.Plan, tag int, derived reflect.Type) error
	Plan(t reflect.Type) (*model.Plan, bool)
}

// Config holds the optional parameters of a Builder.
type Config struct {
	// Logger receives debug records for registrations and commits. If
	// nil, a no-op logger is used.
	Logger *slog.Logger

	// Pins fixes subtype tags ahead of first-seen assignment. May be nil.
	Pins *pins.File
}

// Builder owns the Built-Set, the Subtype Index and the per-type sections
// for one registry.
type Builder struct {
	registry Registry
	intro    introspect.Introspector
	logger   *slog.Logger

	built    BuiltSet
	subtypes *SubtypeIndex

	mu      sync.Mutex // guards held, pending and every node
	held    map[reflect.Type]*node
	pending []*node
}

// New creates a Builder filling registry with shapes read through intro.
func New(registry Registry, intro introspect.Introspector, cfg Config) *Builder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Builder{
		registry: registry,
		intro:    intro,
		logger:   logger,
		subtypes: newSubtypeIndex(cfg.Pins),
		held:     make(map[reflect.Type]*node),
	}
}

// Built returns the set of committed types.
func (b *Builder) Built() *BuiltSet {
	return &b.built
}

// Subtypes returns the subtype index.
func (b *Builder) Subtypes() *SubtypeIndex {
	return b.subtypes
}

// Ensure makes sure the registry holds a complete plan for t and for every
// type reachable from it. Once t is committed, later calls only perform a
// lock-free membership check. Errors from the introspector or the registry
// are returned as is.
func (b *Builder) Ensure(t reflect.Type) error {
	if t == nil {
		return ErrNilType
	}

	if b.built.Contains(t) {
		return nil
	}

	s := &session{}

	return b.wait(s, b.ensure(s, t))
}

// EnsureAll runs Ensure for every type in parallel and returns the first
// error.
func (b *Builder) EnsureAll(ctx context.Context, types ...reflect.Type) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, t := range types {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			return b.Ensure(t)
		})
	}

	return g.Wait()
}

func (b *Builder) ensure(s *session, t reflect.Type) error {
	if b.built.Contains(t) {
		return nil
	}

	n, res := b.acquire(s, t)
	if res != acquired {
		return nil
	}

	s.stack = append(s.stack, n)
	err := b.build(s, t, n)
	s.stack = s.stack[:len(s.stack)-1]

	b.finishNode(n, err)

	return err
}

func (b *Builder) build(s *session, t reflect.Type, n *node) error {
	if b.registry.CanSerialize(t) {
		n.settle()

		plan, ok := b.registry.Plan(t)
		if !ok {
			return b.ensureAll(s, b.intro.TypeArgs(t))
		}

		// registered outside this builder, or by a build that failed
		// further down; finish its closure
		plan.SetFieldAssign(true)

		types := make([]reflect.Type, 0, len(plan.Fields()))
		for _, f := range plan.Fields() {
			types = append(types, f.Type)
		}

		return b.complete(s, t, types)
	}

	fields, err := b.intro.Fields(t)
	if err != nil {
		return err
	}

	plan, err := b.registry.Register(t, fields)
	if err != nil {
		return err
	}

	plan.SetFieldAssign(true)
	n.settle()

	b.logger.Debug("registered plan", "type", common.QualifiedName(t), "fields", len(fields))

	types := make([]reflect.Type, 0, len(fields))
	for _, f := range fields {
		types = append(types, f.Type)
	}

	return b.complete(s, t, types)
}

// complete builds everything reachable from a registered type: its base
// chain, its type arguments and its field types.
func (b *Builder) complete(s *session, t reflect.Type, fieldTypes []reflect.Type) error {
	if err := b.ensureBases(s, t); err != nil {
		return err
	}

	if err := b.ensureTypeArgs(s, t); err != nil {
		return err
	}

	return b.ensureAll(s, fieldTypes)
}

// ensureBases walks the base chain of t up to its root and attaches every
// (base, derived) pair that is not indexed yet.
func (b *Builder) ensureBases(s *session, t reflect.Type) error {
	derived := t

	base, err := b.intro.Base(t)
	if err != nil {
		return err
	}

	for base != nil {
		if !b.subtypes.Contains(base, derived) {
			if err := b.attach(s, base, derived); err != nil {
				return err
			}
		}

		derived = base

		base, err = b.intro.Base(base)
		if err != nil {
			return err
		}
	}

	return nil
}

func (b *Builder) attach(s *session, base, derived reflect.Type) error {
	if err := b.ensure(s, base); err != nil {
		return err
	}

	if err := b.awaitSettled(base); err != nil {
		return err
	}

	basePlan, ok := b.registry.Plan(base)
	if !ok {
		return fmt.Errorf("%w: %s (base of %s)", ErrBasePlanMissing, base, derived)
	}

	tag, added, err := b.subtypes.register(base, derived, func(tag int) error {
		return b.registry.AddSubtype(basePlan, tag, derived)
	})
	if err != nil {
		return err
	}

	if added {
		b.logger.Debug("registered subtype",
			"base", common.QualifiedName(base),
			"derived", common.QualifiedName(derived),
			"tag", tag)
	}

	return nil
}

// ensureTypeArgs builds the type arguments of t, or of its base when t
// has none of its own.
func (b *Builder) ensureTypeArgs(s *session, t reflect.Type) error {
	args := b.intro.TypeArgs(t)
	if len(args) == 0 {
		base, err := b.intro.Base(t)
		if err != nil {
			return err
		}

		if base != nil {
			args = b.intro.TypeArgs(base)
		}
	}

	return b.ensureAll(s, args)
}

func (b *Builder) ensureAll(s *session, types []reflect.Type) error {
	for _, t := range types {
		if t == nil || b.intro.IsLeaf(t) {
			continue
		}

		if err := b.ensure(s, t); err != nil {
			return err
		}
	}

	return nil
}
