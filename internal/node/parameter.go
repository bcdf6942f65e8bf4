package node

import (
	"context"
	"reflect"
)

// parameterNode implements §4.5.2: value is the bound argument, immutable
// through the graph's lifetime. It does not itself subscribe to anything;
// Member/Index nodes consulting it are the ones that subscribe to the
// argument object.
type parameterNode struct {
	base
}

// NewParameter returns a Node bound to the given argument value.
func NewParameter(typ reflect.Type, argument any) Node {
	n := &parameterNode{base: newBase(typ)}
	n.value = argument
	n.deferred = false
	return n
}

func (n *parameterNode) teardown(ctx context.Context) {}
