package activeexpr

import (
	"sync"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/node"
	"activeexpr.dev/go/internal/render"
)

// Handle is a live view onto a compiled expression's current value (§6).
// A Handle must be released exactly once, via Release, to let the instance
// cache tear down its subgraph.
type Handle struct {
	ref     node.Ref
	body    expr.Node
	args    []any
	opts    *Options
	argsKey string

	releaseOnce sync.Once
}

// Value returns the handle's current value, or the zero value of its
// declared type while Fault is non-nil (invariant 1).
func (h *Handle) Value() any { return h.ref.Node.Value() }

// Fault returns the handle's current fault, or nil.
func (h *Handle) Fault() error { return h.ref.Node.Fault() }

// Arguments returns the arguments this handle was created with, in
// parameter-ordinal order.
func (h *Handle) Arguments() []any { return h.args }

// Options returns the Options this handle was created with.
func (h *Handle) Options() *Options { return h.opts }

// Subscribe registers fn to run after every distinct value-or-fault
// transition. The returned func removes the registration; it is safe to
// call more than once.
func (h *Handle) Subscribe(fn func()) (unsubscribe func()) {
	return h.ref.Node.Subscribe(fn)
}

// String renders the handle's expression tree together with each
// subexpression's current value, per §6's debug-rendering contract.
func (h *Handle) String() string {
	lookup := func(n expr.Node) (node.Node, bool) {
		return sharedCache.Peek(n, h.opts.internal(), h.argsKey)
	}
	return render.Node(h.body, lookup)
}

// Release drops this handle's strong reference to its node, letting the
// instance cache tear down the subgraph once every other referent has also
// released (§4.4). Idempotent: a second Release is a no-op.
func (h *Handle) Release() {
	h.releaseOnce.Do(h.ref.Release)
}
