// Package node implements the runtime node hierarchy (spec §4.5, C5): one
// Go type per expression shape, each satisfying the Node contract. This is
// the largest component of the engine.
//
// Grounded on the signal-on-completion discipline of
// internal/core/adt/sched.go, simplified from CUE's general constraint
// scheduler down to this spec's simpler protocol: a node recomputes
// synchronously in response to a single child or source notification, then
// fires its own snapshot of subscribers while not holding its lock (§5:
// "the engine avoids lock-while-holding-lock by snapshotting listener lists
// before firing").
package node

import (
	"context"
	"reflect"
	"sync"

	"activeexpr.dev/go/internal/canon"
)

// Node is the contract every runtime node implements (§4.5).
type Node interface {
	// Type is the node's declared static result type.
	Type() reflect.Type
	// Value returns the current cached value. Exactly one of Value/Fault
	// is authoritative at rest (invariant 1): when Fault is non-nil, Value
	// returns the zero value of Type.
	Value() any
	// Fault returns the current fault, or nil.
	Fault() error
	// Subscribe registers fn to run after every distinct value-or-fault
	// transition. The returned func removes the registration.
	Subscribe(fn func()) (unsubscribe func())
	// teardown unsubscribes from every source, releases child references,
	// and disposes the last produced value if configured (§4.4 step 4).
	// Called exactly once, by the cache, when the last strong reference is
	// dropped.
	teardown(ctx context.Context)
	// activate clears the deferred-construction flag so future state
	// changes fire subscriber notifications (§4.3 step 3). Called exactly
	// once, by the cache, right after a node finishes building.
	activate()
}

// Ref is a strong reference to a child node plus the means to release it.
// Release decrements the owning cache entry's refcount; it is supplied by
// the cache package and is safe to call at most once per Ref value (callers
// that hold a Ref for the lifetime of a parent node call Release exactly
// once, from that parent's own teardown).
type Ref struct {
	Node    Node
	Release func()
}

// Teardown is the package-external entry point the cache uses to tear down
// a node it owns; it exists only so teardown can stay unexported on the
// interface (nothing outside this package should call it directly) while
// the cache, which is a different package, still can.
func Teardown(n Node, ctx context.Context) { n.teardown(ctx) }

// Activate is the package-external entry point the cache uses to clear a
// freshly built node's deferred flag, for the same reason Teardown exists:
// activate must stay unexported on the interface while the cache, a
// different package, still needs to call it exactly once per node.
func Activate(n Node) { n.activate() }

// base implements the subscriber bookkeeping shared by every node kind:
// current value/fault, the listener set, and snapshot-before-fire
// notification (§5).
type base struct {
	mu        sync.Mutex
	typ       reflect.Type
	value     any
	fault     error
	listeners map[int]func()
	nextID    int
	deferred  bool // true while the compiler is still wiring this node (§4.3 step 1)
}

func newBase(typ reflect.Type) base {
	return base{typ: typ, deferred: true}
}

func (b *base) Type() reflect.Type { return b.typ }

func (b *base) Value() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

func (b *base) Fault() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fault
}

func (b *base) Subscribe(fn func()) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.listeners == nil {
		b.listeners = make(map[int]func())
	}
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// setState applies a new value/fault pair. While deferred (still being
// wired by the compiler) it stores the state but never fires listeners,
// matching §3's "deferred-evaluation flag ... so intermediate updates
// don't fire until the subgraph is fully wired". It reports whether the
// visible state actually changed (§5: "equal successive values do not
// trigger notifications").
func (b *base) setState(value any, fault error) (changed bool) {
	b.mu.Lock()
	same := canon.ValueEqual(b.value, value) && faultEqual(b.fault, fault)
	if same {
		b.mu.Unlock()
		return false
	}
	b.value, b.fault = value, fault
	deferred := b.deferred
	var fire []func()
	if !deferred {
		fire = make([]func(), 0, len(b.listeners))
		for _, fn := range b.listeners {
			fire = append(fire, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fire {
		fn()
	}
	return true
}

// activate clears the deferred flag, priming the node: it is called exactly
// once, after the node and all of its children have been wired, by the
// cache's Acquire through Activate (§4.3 step 3).
func (b *base) activate() {
	b.mu.Lock()
	b.deferred = false
	b.mu.Unlock()
}

func faultEqual(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Error() == b.Error()
}

// zeroOf returns the zero value of t, used whenever a node adopts a fault
// (invariant 1: "a non-absent fault means value is the type's default").
func zeroOf(t reflect.Type) any {
	if t == nil {
		return nil
	}
	return reflect.Zero(t).Interface()
}
