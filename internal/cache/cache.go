// Package cache implements the C6 instance cache (spec §4.4, §4.6):
// identical (expression, options, bound-argument) tuples share one runtime
// node, refcounted so the last Ref.Release tears it down deterministically.
//
// Grounded on internal/core/runtime.Runtime's index-by-key map, adapted
// from "keep forever" (CUE's index outlives a single evaluation) to
// "keep exactly while referenced": release is refcount-driven here rather
// than GC-driven, since disposal must run synchronously enough to be
// observable (§4.7, §8).
package cache

import (
	"context"
	"sync"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/canon"
	"activeexpr.dev/go/internal/node"
	"activeexpr.dev/go/internal/option"
)

// Resolver recursively acquires a Ref for a child expression node, under the
// same options and argument scope as the node currently being built. A
// Builder receives one of these so internal/compile never needs to import
// internal/cache directly (breaking what would otherwise be a two-way
// import cycle): cache depends on compile's Builder function value, and
// compile's Builder calls back into cache only through this narrow
// closure-shaped interface.
type Resolver func(child expr.Node) (node.Ref, error)

// Builder constructs the runtime node.Node for n, using resolve to acquire
// any children n has.
type Builder func(n expr.Node, resolve Resolver) (node.Node, error)

type cacheKey struct {
	digest  string
	options string
	args    string
}

type entry struct {
	node  node.Node
	count int
}

// Cache is the C6 instance cache. A single Cache is shared process-wide
// (see activeexpr.Create): the Builder varies per Acquire call rather than
// per Cache, because each top-level Create call binds its own arguments,
// but all calls must still land in the same keyed map to share structurally
// identical subgraphs (§8 "cache idempotence").
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]*entry
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: map[cacheKey]*entry{}}
}

// Acquire returns a strong Ref to the node for (n, opts, argsKey),
// constructing it via build on a cache miss. argsKey identifies the
// bound-argument tuple of the enclosing top-level invocation (two Create
// calls with different source objects never share a node even for
// byte-identical expressions), computed once by the caller and threaded
// unchanged through the recursive resolve calls for a single invocation.
// build is threaded through every recursive resolve call too, since it is
// the one part of construction specific to the top-level invocation's
// bound arguments.
func (c *Cache) Acquire(n expr.Node, opts *option.Options, argsKey string, build Builder) (node.Ref, error) {
	k := cacheKey{digest: canon.Digest(n).String(), options: option.Key(opts), args: argsKey}

	c.mu.Lock()
	if e, ok := c.entries[k]; ok {
		e.count++
		c.mu.Unlock()
		return c.refFor(k, e), nil
	}
	c.mu.Unlock()

	resolve := func(child expr.Node) (node.Ref, error) {
		return c.Acquire(child, opts, argsKey, build)
	}
	built, err := build(n, resolve)
	if err != nil {
		return node.Ref{}, err
	}
	node.Activate(built)

	c.mu.Lock()
	if e, ok := c.entries[k]; ok {
		// Lost a race with a concurrent Acquire of the same key: drop the
		// node we just built and adopt the winner's instead.
		e.count++
		c.mu.Unlock()
		node.Teardown(built, context.Background())
		return c.refFor(k, e), nil
	}
	e := &entry{node: built, count: 1}
	c.entries[k] = e
	c.mu.Unlock()
	return c.refFor(k, e), nil
}

func (c *Cache) refFor(k cacheKey, e *entry) node.Ref {
	var once sync.Once
	return node.Ref{
		Node: e.node,
		Release: func() {
			once.Do(func() { c.release(k, e) })
		},
	}
}

func (c *Cache) release(k cacheKey, e *entry) {
	c.mu.Lock()
	e.count--
	dead := e.count == 0
	if dead {
		delete(c.entries, k)
	}
	c.mu.Unlock()
	if dead {
		node.Teardown(e.node, context.Background())
	}
}

// Peek returns the already-built node for (n, opts, argsKey) without taking
// a new reference, for debug rendering (§6 "each subexpression appends its
// current rendered value"): a Handle's root Ref already keeps the whole
// subgraph alive for the duration of the call, so no refcount bookkeeping
// is needed here. Returns false if n has not been built under this key,
// as for a branch a short-circuit node has not selected.
func (c *Cache) Peek(n expr.Node, opts *option.Options, argsKey string) (node.Node, bool) {
	k := cacheKey{digest: canon.Digest(n).String(), options: option.Key(opts), args: argsKey}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Len reports the number of live cache entries, for tests asserting on
// cache idempotence and teardown (§8).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
