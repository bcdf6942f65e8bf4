package cmd

import (
	"io"
	"reflect"

	activeexpr "activeexpr.dev/go"
	"activeexpr.dev/go/expr"
)

// holder wraps a possibly-nil *person, used to demonstrate a Conditional
// branch faulting (nil target) and then recovering once the branch is
// reassigned.
type holder struct {
	observable
	UseFirst bool
	First    *person
	Second   *person
}

func (h *holder) SetUseFirst(v bool) {
	h.UseFirst = v
	h.fire("UseFirst")
}

func (h *holder) SetFirst(p *person) {
	h.First = p
	h.fire("First")
}

var holderPtrType = reflect.TypeOf((*holder)(nil))

var conditionalFaultScenario = scenario{
	name: "conditional",
	desc: "UseFirst ? First.Name : Second.Name, faulting while First is nil and recovering once it's set",
	run: func(out io.Writer) error {
		h := &holder{UseFirst: true, First: nil, Second: &person{Name: "Backup"}}

		test := member(param(holderPtrType, 0), "UseFirst", boolType)
		ifTrue := member(member(param(holderPtrType, 0), "First", personPtrType), "Name", stringType)
		ifFalse := member(member(param(holderPtrType, 0), "Second", personPtrType), "Name", stringType)
		body := &expr.Conditional{Test: test, IfTrue: ifTrue, IfFalse: ifFalse, Typ: stringType}
		lambda := &expr.Lambda{Parameters: []*expr.Parameter{param(holderPtrType, 0)}, Body: body}

		handle, err := activeexpr.Create(lambda, []any{h}, nil)
		if err != nil {
			return err
		}
		defer handle.Release()

		unsub := trace(out, "conditional", handle)
		defer unsub()

		// Selecting First while it's nil faults the handle (NullTarget).
		h.SetFirst(&person{Name: "Alice"})
		// Now a live First.Name recovers the handle.
		h.SetUseFirst(false) // switches to Second, which was never faulted
		h.SetUseFirst(true)  // switches back to the now-live First
		return nil
	},
}
