package node

import (
	"context"
	"reflect"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/errs"
)

// callNode implements expr.Call: invoking a named method on target (or a
// static function when target is nil) with evaluated args.
type callNode struct {
	base

	target     Ref // zero Ref (Node == nil) for a static call
	targetSub  func()
	descriptor expr.MethodDescriptor
	args       []Ref
	argSubs    []func()
}

// NewCall builds the Call node.
func NewCall(typ reflect.Type, target Ref, descriptor expr.MethodDescriptor, args []Ref) Node {
	n := &callNode{base: newBase(typ), target: target, descriptor: descriptor, args: args}
	if target.Node != nil {
		n.targetSub = target.Node.Subscribe(func() { n.recompute() })
	}
	n.argSubs = make([]func(), len(args))
	for i, a := range args {
		n.argSubs[i] = a.Node.Subscribe(func() { n.recompute() })
	}
	n.recompute()
	return n
}

func (n *callNode) recompute() {
	if n.target.Node != nil {
		if fault := n.target.Node.Fault(); fault != nil {
			n.setState(zeroOf(n.typ), fault)
			return
		}
	}
	argVals := make([]any, len(n.args))
	for i, a := range n.args {
		if fault := a.Node.Fault(); fault != nil {
			n.setState(zeroOf(n.typ), fault)
			return
		}
		argVals[i] = a.Node.Value()
	}

	var value any
	var err error
	switch {
	case n.descriptor.Func.IsValid():
		value, err = callFunc(n.descriptor.Func, argVals)
	case n.target.Node != nil:
		targetVal := n.target.Node.Value()
		if targetVal == nil {
			n.setState(zeroOf(n.typ), errs.New(errs.NullTarget, "call %s through a nil target", n.descriptor.Name))
			return
		}
		value, err = callMethod(targetVal, n.descriptor.Name, argVals)
	default:
		err = errs.New(errs.NotSupportedExpression, "call %s has neither a target nor a static function", n.descriptor.Name)
	}
	if err != nil {
		n.setState(zeroOf(n.typ), errs.Wrap(errs.ReflectionError, err, "calling %s", n.descriptor.Name))
		return
	}
	n.setState(value, nil)
}

func (n *callNode) teardown(_ context.Context) {
	if n.targetSub != nil {
		n.targetSub()
	}
	for _, u := range n.argSubs {
		if u != nil {
			u()
		}
	}
	if n.target.Node != nil {
		n.target.Release()
	}
	for _, a := range n.args {
		a.Release()
	}
}
