package node

import (
	"context"
	"reflect"
)

// typeIsNode implements `operand is Candidate` (§4.5).
type typeIsNode struct {
	base

	operand   Ref
	operandSub func()
	candidate reflect.Type
}

// NewTypeIs builds the TypeIs node.
func NewTypeIs(operand Ref, candidate reflect.Type) Node {
	n := &typeIsNode{base: newBase(reflect.TypeOf(false)), operand: operand, candidate: candidate}
	n.operandSub = operand.Node.Subscribe(func() { n.recompute() })
	n.recompute()
	return n
}

func (n *typeIsNode) recompute() {
	if fault := n.operand.Node.Fault(); fault != nil {
		n.setState(false, fault)
		return
	}
	value := n.operand.Node.Value()
	n.setState(matchesType(value, n.candidate), nil)
}

func matchesType(value any, candidate reflect.Type) bool {
	if value == nil {
		return false
	}
	t := reflect.TypeOf(value)
	if t == candidate {
		return true
	}
	return candidate.Kind() == reflect.Interface && t.Implements(candidate)
}

func (n *typeIsNode) teardown(_ context.Context) {
	if n.operandSub != nil {
		n.operandSub()
	}
	n.operand.Release()
}
