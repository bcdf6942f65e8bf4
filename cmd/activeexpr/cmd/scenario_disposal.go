package cmd

import (
	"fmt"
	"io"
	"reflect"

	activeexpr "activeexpr.dev/go"
	"activeexpr.dev/go/expr"
)

// resource is a mock disposable value: whatever a Member/Index read
// produces, when that shape is registered for expression-value disposal,
// gets Dispose called on it the moment it is replaced or the handle is
// released (§4.7).
type resource struct {
	id     int
	closed bool
}

func (r *resource) Dispose() error {
	r.closed = true
	return nil
}

type container struct {
	observable
	Resource *resource
}

func (c *container) SetResource(r *resource) {
	c.Resource = r
	c.fire("Resource")
}

var containerPtrType = reflect.TypeOf((*container)(nil))
var resourcePtrType = reflect.TypeOf((*resource)(nil))

var disposalScenario = scenario{
	name: "disposal",
	desc: "Resource member disposed every time it is replaced, and once more on release",
	run: func(out io.Writer) error {
		c := &container{Resource: &resource{id: 1}}
		first := c.Resource

		body := member(param(containerPtrType, 0), "Resource", resourcePtrType)
		lambda := &expr.Lambda{Parameters: []*expr.Parameter{param(containerPtrType, 0)}, Body: body}

		opts := activeexpr.NewOptions().WithExpressionValueDisposal(func(n expr.Node) bool {
			m, ok := n.(*expr.Member)
			return ok && m.Descriptor.FieldName == "Resource"
		})

		h, err := activeexpr.Create(lambda, []any{c}, opts)
		if err != nil {
			return err
		}

		second := &resource{id: 2}
		c.SetResource(second)
		fmt.Fprintf(out, "disposal: resource 1 closed=%v after replacement\n", first.closed)

		third := &resource{id: 3}
		c.SetResource(third)
		fmt.Fprintf(out, "disposal: resource 2 closed=%v after replacement\n", second.closed)

		h.Release()
		fmt.Fprintf(out, "disposal: resource 3 closed=%v after release\n", third.closed)
		return nil
	},
}
