package cmd

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	activeexpr "activeexpr.dev/go"
	"activeexpr.dev/go/expr"
)

// observable is embedded by every mock source object used in a scenario,
// implementing notify.PropertyNotifier so Member/Index nodes reading its
// fields refresh when a scenario mutates it.
type observable struct {
	mu        sync.Mutex
	listeners map[int]func(string)
	nextID    int
}

func (o *observable) OnPropertyChanged(fn func(name string)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	if o.listeners == nil {
		o.listeners = map[int]func(string){}
	}
	o.listeners[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		o.mu.Unlock()
	}
}

func (o *observable) fire(name string) {
	o.mu.Lock()
	fns := make([]func(string), 0, len(o.listeners))
	for _, fn := range o.listeners {
		fns = append(fns, fn)
	}
	o.mu.Unlock()
	for _, fn := range fns {
		fn(name)
	}
}

// scenario is one runnable, self-contained demonstration of the engine.
type scenario struct {
	name string
	desc string
	run  func(out io.Writer) error
}

var scenarios = []scenario{
	coalesceScenario,
	andAlsoScenario,
	sumScenario,
	conditionalFaultScenario,
	indexScenario,
	disposalScenario,
}

func findScenario(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.name == name {
			return s, true
		}
	}
	return scenario{}, false
}

// trace prints h's current value, then subscribes to h and prints its value
// every time it changes, until the returned unsubscribe func is called.
func trace(out io.Writer, label string, h *activeexpr.Handle) (unsubscribe func()) {
	print := func() {
		if fault := h.Fault(); fault != nil {
			fmt.Fprintf(out, "%s: fault: %v\n", label, fault)
			return
		}
		fmt.Fprintf(out, "%s: %v\n", label, h.Value())
	}
	print()
	return h.Subscribe(print)
}

var stringType = reflect.TypeOf("")
var boolType = reflect.TypeOf(false)
var intType = reflect.TypeOf(0)

func param(typ reflect.Type, ordinal int) *expr.Parameter {
	return &expr.Parameter{Typ: typ, Ordinal: ordinal}
}

func member(target expr.Node, field string, typ reflect.Type) *expr.Member {
	return &expr.Member{Target: target, Descriptor: expr.MemberDescriptor{FieldName: field}, Typ: typ}
}
