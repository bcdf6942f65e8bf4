package node

import (
	"context"
	"reflect"

	"activeexpr.dev/go/internal/errs"
)

// invokeNode implements expr.Invoke: calling the delegate value produced by
// Target with evaluated Args. A quoted-lambda Target is handled entirely by
// the compiler, which compiles it into a Go func value ahead of time, so by
// the time this node runs Target's value is always a plain callable.
type invokeNode struct {
	base

	target    Ref
	targetSub func()
	args      []Ref
	argSubs   []func()
}

// NewInvoke builds the Invoke node.
func NewInvoke(typ reflect.Type, target Ref, args []Ref) Node {
	n := &invokeNode{base: newBase(typ), target: target, args: args}
	n.targetSub = target.Node.Subscribe(func() { n.recompute() })
	n.argSubs = make([]func(), len(args))
	for i, a := range args {
		n.argSubs[i] = a.Node.Subscribe(func() { n.recompute() })
	}
	n.recompute()
	return n
}

func (n *invokeNode) recompute() {
	if fault := n.target.Node.Fault(); fault != nil {
		n.setState(zeroOf(n.typ), fault)
		return
	}
	delegate := n.target.Node.Value()
	if delegate == nil {
		n.setState(zeroOf(n.typ), errs.New(errs.NullTarget, "invoke through a nil delegate"))
		return
	}
	argVals := make([]any, len(n.args))
	for i, a := range n.args {
		if fault := a.Node.Fault(); fault != nil {
			n.setState(zeroOf(n.typ), fault)
			return
		}
		argVals[i] = a.Node.Value()
	}
	fn := reflect.ValueOf(delegate)
	if fn.Kind() != reflect.Func {
		n.setState(zeroOf(n.typ), errs.New(errs.NotSupportedExpression, "invoke target of kind %s is not callable", fn.Kind()))
		return
	}
	value, err := callFunc(fn, argVals)
	if err != nil {
		n.setState(zeroOf(n.typ), errs.Wrap(errs.ReflectionError, err, "invoking delegate"))
		return
	}
	n.setState(value, nil)
}

func (n *invokeNode) teardown(_ context.Context) {
	if n.targetSub != nil {
		n.targetSub()
	}
	for _, u := range n.argSubs {
		if u != nil {
			u()
		}
	}
	n.target.Release()
	for _, a := range n.args {
		a.Release()
	}
}
