package node

import (
	"context"
	"reflect"
)

// constantNode implements §4.5.1: immutable, never subscribes.
type constantNode struct {
	base
}

// NewConstant returns a Node whose value is fixed forever.
func NewConstant(typ reflect.Type, value any) Node {
	n := &constantNode{base: newBase(typ)}
	n.value = value
	n.deferred = false
	return n
}

func (n *constantNode) teardown(ctx context.Context) {}
