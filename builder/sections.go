package builder

import (
	"reflect"
	"sync"
)

// A session is one top-level Ensure call. It walks the type graph on a
// single goroutine, so the node it is currently building is the top of its
// stack.
type session struct {
	stack []*node
	root  *node // node the top-level call resolves to; nil if already built
}

func (s *session) current() *node {
	if len(s.stack) == 0 {
		return nil
	}

	return s.stack[len(s.stack)-1]
}

// node is the exclusive per-type claim. A node records every in-flight
// type its build reached; it is resolved once all of them have finished
// recursing. Nodes on a cycle reach each other and resolve together.
type node struct {
	typ   reflect.Type
	owner *session
	deps  []*node

	ready chan struct{} // plan registered, known unnecessary, or failed
	once  sync.Once

	finished bool  // owner's recursion over typ returned
	resolved bool  // committed or failed for good
	err      error // local error, then the resolved one
	done     chan struct{}
}

func (n *node) settle() {
	n.once.Do(func() { close(n.ready) })
}

type outcome int

const (
	acquired     outcome = iota // caller owns the node and must build the type
	reentered                   // caller's own session already holds it
	joined                      // another session holds it
	alreadyBuilt                // committed in the meantime
)

// acquire claims t for s and links the claim to the node s is building.
func (b *Builder) acquire(s *session, t reflect.Type) (*node, outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built.Contains(t) {
		return nil, alreadyBuilt
	}

	n, ok := b.held[t]
	res := joined

	switch {
	case ok && n.owner == s:
		res = reentered
	case !ok:
		n = &node{typ: t, owner: s, ready: make(chan struct{}), done: make(chan struct{})}
		b.held[t] = n
		res = acquired
	}

	if cur := s.current(); cur != nil {
		cur.deps = append(cur.deps, n)
	} else {
		s.root = n
	}

	return n, res
}

// awaitSettled blocks until t's plan state is settled by whichever session
// holds it and returns the error its build ended with, if any. Owners
// settle before recursing anywhere, so this never waits on a session that
// is itself waiting.
func (b *Builder) awaitSettled(t reflect.Type) error {
	b.mu.Lock()
	n := b.held[t]
	b.mu.Unlock()

	if n == nil {
		return nil
	}

	<-n.ready

	b.mu.Lock()
	defer b.mu.Unlock()

	return n.err
}

// finishNode records the end of n's recursion and resolves every finished
// node whose reach is now settled.
func (b *Builder) finishNode(n *node, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n.finished = true
	n.err = err
	n.settle()

	b.pending = append(b.pending, n)

	var (
		left      []*node
		committed int
	)

	for _, p := range b.pending {
		ok, err := reach(p)
		if !ok {
			left = append(left, p)
			continue
		}

		p.resolved = true
		p.err = err

		if b.held[p.typ] == p {
			delete(b.held, p.typ)
		}

		if err == nil {
			b.built.add(p.typ)
			committed++
		} else {
			b.logger.Debug("build failed", "type", p.typ.String(), "error", err)
		}

		close(p.done)
	}

	b.pending = left

	if committed > 0 {
		b.logger.Debug("build committed", "types", committed)
	}
}

// reach walks everything n reached. ok is false while any of it is still
// being built; otherwise err is the first failure found, n's own first.
func reach(n *node) (ok bool, err error) {
	seen := map[*node]bool{n: true}
	queue := []*node{n}

	ok = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.finished && cur.err != nil {
			if err == nil {
				err = cur.err
			}

			continue
		}

		if cur.resolved {
			continue
		}

		if !cur.finished {
			ok = false
			continue
		}

		for _, d := range cur.deps {
			if !seen[d] {
				seen[d] = true
				queue = append(queue, d)
			}
		}
	}

	if err != nil {
		// a failure is final whatever else is still running
		return true, err
	}

	return ok, nil
}

// wait blocks until the node the session resolved to is committed or
// failed.
func (b *Builder) wait(s *session, err error) error {
	if s.root == nil {
		return err
	}

	<-s.root.done

	b.mu.Lock()
	defer b.mu.Unlock()

	return s.root.err
}
