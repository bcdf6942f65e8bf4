package node

import (
	"context"
	"reflect"
	"sync"

	"activeexpr.dev/go/internal/disposal"
	"activeexpr.dev/go/internal/errs"
)

// memberNode implements §4.5.3.
type memberNode struct {
	base

	target      Ref
	targetUnsub func()
	field       string
	method      string
	matches     func() bool // true if this node's own expr shape is registered for value disposal

	subMu       sync.Mutex
	targetObj   any
	unsubSource func()
	lastValue   any
	haveLast    bool
}

// NewMember builds the Member node described by §4.5.3. matches reports
// whether this node's own expression shape is registered for value
// disposal (§4.7); the compiler precomputes it (it alone knows the
// originating expr.Node), keeping this package independent of expr.
func NewMember(typ reflect.Type, target Ref, field, method string, matches func() bool) Node {
	n := &memberNode{
		base:    newBase(typ),
		target:  target,
		field:   field,
		method:  method,
		matches: matches,
	}
	n.targetUnsub = target.Node.Subscribe(func() { n.recompute(context.Background()) })
	n.recompute(context.Background())
	return n
}

func (n *memberNode) recompute(ctx context.Context) {
	if fault := n.target.Node.Fault(); fault != nil {
		n.adoptSourceSubscription(ctx, nil)
		n.adopt(ctx, zeroOf(n.typ), fault)
		return
	}

	targetVal := n.target.Node.Value()
	if isNil(targetVal) {
		n.adoptSourceSubscription(ctx, nil)
		n.adopt(ctx, zeroOf(n.typ), errs.New(errs.NullTarget, "member %s read through a nil target", n.name()))
		return
	}

	value, err := readField(targetVal, n.field, n.method)
	n.adoptSourceSubscription(ctx, targetVal)
	if err != nil {
		n.adopt(ctx, zeroOf(n.typ), errs.Wrap(errs.ReflectionError, err, "reading member %s", n.name()))
		return
	}
	n.adopt(ctx, value, nil)
}

func (n *memberNode) name() string {
	if n.field != "" {
		return n.field
	}
	return n.method
}

// adoptSourceSubscription moves the property-changed subscription to
// newTarget, unsubscribing from the previous target first (§4.5.3: "On
// target change the subscription is moved to the new target").
func (n *memberNode) adoptSourceSubscription(ctx context.Context, newTarget any) {
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
	if notifier, ok := sourceNotifier(newTarget); ok {
		name := n.name()
		n.unsubSource = notifier.OnPropertyChanged(func(changed string) {
			if changed == "" || changed == name {
				n.recompute(ctx)
			}
		})
	}
}

func (n *memberNode) adopt(ctx context.Context, value any, fault error) {
	if n.matches != nil && n.matches() {
		n.subMu.Lock()
		prev, had := n.lastValue, n.haveLast
		n.lastValue, n.haveLast = value, fault == nil
		n.subMu.Unlock()
		if had && fault == nil && !canonEqual(prev, value) {
			disposal.Dispose(ctx, prev)
		} else if had && fault != nil {
			disposal.Dispose(ctx, prev)
		}
	}
	n.setState(value, fault)
}

func (n *memberNode) teardown(ctx context.Context) {
	n.subMu.Lock()
	if n.unsubSource != nil {
		n.unsubSource()
	}
	last, had := n.lastValue, n.haveLast
	n.subMu.Unlock()

	if n.targetUnsub != nil {
		n.targetUnsub()
	}
	if n.matches != nil && n.matches() && had {
		disposal.Dispose(ctx, last)
	}
	n.target.Release()
}
