package node

import (
	"context"
	"reflect"
	"sync"

	"activeexpr.dev/go/internal/disposal"
	"activeexpr.dev/go/internal/errs"
	"activeexpr.dev/go/internal/notify"
)

// indexNode implements §4.5.4.
type indexNode struct {
	base

	target      Ref
	targetUnsub func()
	args        []Ref
	argUnsubs   []func()
	indexerName string
	matches     func() bool

	subMu       sync.Mutex
	targetObj   any
	unsubSource func()
	lastValue   any
	haveLast    bool
}

// NewIndex builds the Index node described by §4.5.4.
func NewIndex(typ reflect.Type, target Ref, args []Ref, indexerName string, matches func() bool) Node {
	n := &indexNode{
		base:        newBase(typ),
		target:      target,
		args:        args,
		indexerName: indexerName,
		matches:     matches,
	}
	ctx := context.Background()
	n.targetUnsub = target.Node.Subscribe(func() { n.recompute(ctx) })
	n.argUnsubs = make([]func(), len(args))
	for i, a := range args {
		i := i
		n.argUnsubs[i] = a.Node.Subscribe(func() { n.recompute(ctx) })
	}
	n.recompute(ctx)
	return n
}

func (n *indexNode) argValues() ([]any, error) {
	vals := make([]any, len(n.args))
	for i, a := range n.args {
		if fault := a.Node.Fault(); fault != nil {
			return nil, fault
		}
		vals[i] = a.Node.Value()
	}
	return vals, nil
}

func (n *indexNode) recompute(ctx context.Context) {
	if fault := n.target.Node.Fault(); fault != nil {
		n.adoptSourceSubscription(ctx, nil)
		n.adopt(ctx, zeroOf(n.typ), fault)
		return
	}
	argVals, err := n.argValues()
	if err != nil {
		n.adoptSourceSubscription(ctx, nil)
		n.adopt(ctx, zeroOf(n.typ), err)
		return
	}

	targetVal := n.target.Node.Value()
	if targetVal == nil {
		n.adoptSourceSubscription(ctx, nil)
		n.adopt(ctx, zeroOf(n.typ), errs.New(errs.NullTarget, "index read through a nil target"))
		return
	}

	var value any
	if n.indexerName != "" {
		value, err = callMethod(targetVal, n.indexerName, argVals)
	} else if len(argVals) == 1 {
		value, err = indexNative(targetVal, argVals[0])
	} else {
		err = errs.New(errs.ArgumentOutOfRange, "native indexer requires exactly one argument, got %d", len(argVals))
	}
	n.adoptSourceSubscription(ctx, targetVal)
	if err != nil {
		n.adopt(ctx, zeroOf(n.typ), errs.Wrap(errs.ReflectionError, err, "evaluating indexer"))
		return
	}
	n.adopt(ctx, value, nil)
}

// adoptSourceSubscription moves the collection-changed subscription to
// newTarget. Per §4.5.4 the node refreshes on "added/removed/replaced" for
// the requested key, on any positional change that could overlap the index,
// or on a synthetic "Item"/indexer-name property change; this implementation
// takes the conservative, always-correct interpretation and recomputes on
// every reported structural change, since recomputation is cheap and
// idempotent (invariant 3) while a narrower filter risks missing an
// overlapping shift.
func (n *indexNode) adoptSourceSubscription(ctx context.Context, newTarget any) {
	n.subMu.Lock()
	defer n.subMu.Unlock()

	if n.targetObj == newTarget && (newTarget != nil || n.unsubSource == nil) {
		return
	}
	if n.unsubSource != nil {
		n.unsubSource()
		n.unsubSource = nil
	}
	n.targetObj = newTarget

	if cn, ok := collectionNotifier(newTarget); ok {
		n.unsubSource = cn.OnCollectionChanged(func(notify.CollectionChange) { n.recompute(ctx) })
		return
	}
	if pn, ok := sourceNotifier(newTarget); ok {
		name := n.indexerName
		n.unsubSource = pn.OnPropertyChanged(func(changed string) {
			if changed == "" || changed == "Item" || changed == name {
				n.recompute(ctx)
			}
		})
	}
}

func (n *indexNode) adopt(ctx context.Context, value any, fault error) {
	if n.matches != nil && n.matches() {
		n.subMu.Lock()
		prev, had := n.lastValue, n.haveLast
		n.lastValue, n.haveLast = value, fault == nil
		n.subMu.Unlock()
		if had && (fault != nil || !canonEqual(prev, value)) {
			disposal.Dispose(ctx, prev)
		}
	}
	n.setState(value, fault)
}

func (n *indexNode) teardown(ctx context.Context) {
	n.subMu.Lock()
	if n.unsubSource != nil {
		n.unsubSource()
	}
	last, had := n.lastValue, n.haveLast
	n.subMu.Unlock()

	if n.targetUnsub != nil {
		n.targetUnsub()
	}
	for _, u := range n.argUnsubs {
		if u != nil {
			u()
		}
	}
	if n.matches != nil && n.matches() && had {
		disposal.Dispose(ctx, last)
	}
	n.target.Release()
	for _, a := range n.args {
		a.Release()
	}
}
