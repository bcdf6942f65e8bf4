package node

import (
	"context"
	"reflect"
	"sync"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/disposal"
	"activeexpr.dev/go/internal/errs"
)

// newNode implements expr.New: constructing a value via Descriptor.Func(Args...).
// matches reports whether the constructed type is registered for disposal
// (§4.7); a rebuilt or torn-down instance is then disposed like a replaced
// Member/Index value.
type newNode struct {
	base

	descriptor expr.ConstructorDescriptor
	args       []Ref
	argSubs    []func()
	matches    func() bool

	subMu     sync.Mutex
	lastValue any
	haveLast  bool
}

// NewNew builds the New node.
func NewNew(typ reflect.Type, descriptor expr.ConstructorDescriptor, args []Ref, matches func() bool) Node {
	n := &newNode{base: newBase(typ), descriptor: descriptor, args: args, matches: matches}
	n.argSubs = make([]func(), len(args))
	for i, a := range args {
		n.argSubs[i] = a.Node.Subscribe(func() { n.recompute(context.Background()) })
	}
	n.recompute(context.Background())
	return n
}

func (n *newNode) argValues() ([]any, error) {
	vals := make([]any, len(n.args))
	for i, a := range n.args {
		if fault := a.Node.Fault(); fault != nil {
			return nil, fault
		}
		vals[i] = a.Node.Value()
	}
	return vals, nil
}

func (n *newNode) recompute(ctx context.Context) {
	argVals, err := n.argValues()
	if err != nil {
		n.adopt(ctx, zeroOf(n.typ), err)
		return
	}
	value, err := callFunc(n.descriptor.Func, argVals)
	if err != nil {
		n.adopt(ctx, zeroOf(n.typ), errs.Wrap(errs.ReflectionError, err, "constructing %s", n.descriptor.Name))
		return
	}
	n.adopt(ctx, value, nil)
}

func (n *newNode) adopt(ctx context.Context, value any, fault error) {
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

func (n *newNode) teardown(ctx context.Context) {
	for _, u := range n.argSubs {
		if u != nil {
			u()
		}
	}
	for _, a := range n.args {
		a.Release()
	}
	if n.matches != nil && n.matches() && n.haveLast {
		disposal.Dispose(ctx, n.lastValue)
	}
}

// newArrayInitNode implements expr.NewArrayInit: building a slice of
// ElementType from evaluated Items.
type newArrayInitNode struct {
	base

	elementType reflect.Type
	items       []Ref
	itemSubs    []func()
}

// NewNewArrayInit builds the NewArrayInit node.
func NewNewArrayInit(elementType reflect.Type, items []Ref) Node {
	n := &newArrayInitNode{base: newBase(reflect.SliceOf(elementType)), elementType: elementType, items: items}
	n.itemSubs = make([]func(), len(items))
	for i, it := range items {
		n.itemSubs[i] = it.Node.Subscribe(func() { n.recompute() })
	}
	n.recompute()
	return n
}

func (n *newArrayInitNode) recompute() {
	slice := reflect.MakeSlice(n.typ, len(n.items), len(n.items))
	for i, it := range n.items {
		if fault := it.Node.Fault(); fault != nil {
			n.setState(zeroOf(n.typ), fault)
			return
		}
		v := it.Node.Value()
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(n.elementType) {
			if !rv.Type().ConvertibleTo(n.elementType) {
				n.setState(zeroOf(n.typ), errs.New(errs.ConversionError, "cannot assign %s to array element type %s", rv.Type(), n.elementType))
				return
			}
			rv = rv.Convert(n.elementType)
		}
		slice.Index(i).Set(rv)
	}
	n.setState(slice.Interface(), nil)
}

func (n *newArrayInitNode) teardown(_ context.Context) {
	for _, u := range n.itemSubs {
		if u != nil {
			u()
		}
	}
	for _, it := range n.items {
		it.Release()
	}
}

// memberInitNode implements expr.MemberInit: construct via New, then apply
// Bindings to the pointer result. §4.5/expr.MemberInit: a Typ that is a
// non-pointer struct is rejected at compile time, never reaching this node.
type memberInitNode struct {
	base

	new         Ref
	newSub      func()
	descriptors []expr.MemberDescriptor
	bindings    []Ref
	bindingSubs []func()
}

// NewMemberInit builds the MemberInit node.
func NewMemberInit(typ reflect.Type, newRef Ref, descriptors []expr.MemberDescriptor, bindings []Ref) Node {
	n := &memberInitNode{base: newBase(typ), new: newRef, descriptors: descriptors, bindings: bindings}
	n.newSub = newRef.Node.Subscribe(func() { n.recompute() })
	n.bindingSubs = make([]func(), len(bindings))
	for i, b := range bindings {
		n.bindingSubs[i] = b.Node.Subscribe(func() { n.recompute() })
	}
	n.recompute()
	return n
}

func (n *memberInitNode) recompute() {
	if fault := n.new.Node.Fault(); fault != nil {
		n.setState(zeroOf(n.typ), fault)
		return
	}
	instance := n.new.Node.Value()
	if instance == nil {
		n.setState(zeroOf(n.typ), errs.New(errs.NullTarget, "member-init constructor returned nil"))
		return
	}
	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Ptr {
		n.setState(zeroOf(n.typ), errs.New(errs.NotSupportedExpression, "member-init requires a pointer-typed constructor result, got %s", rv.Type()))
		return
	}
	elem := rv.Elem()
	for i, d := range n.descriptors {
		if fault := n.bindings[i].Node.Fault(); fault != nil {
			n.setState(zeroOf(n.typ), fault)
			return
		}
		value := n.bindings[i].Node.Value()
		if err := setMember(elem, d, value); err != nil {
			n.setState(zeroOf(n.typ), errs.Wrap(errs.ReflectionError, err, "binding %s", d))
			return
		}
	}
	n.setState(instance, nil)
}

func setMember(elem reflect.Value, d expr.MemberDescriptor, value any) (err error) {
	defer recoverReflect(&err)
	if d.MethodName != "" {
		mv := elem.Addr().MethodByName(d.MethodName)
		if !mv.IsValid() {
			return errs.New(errs.ReflectionError, "no setter method %q on %s", d.MethodName, elem.Type())
		}
		_, err := callFunc(mv, []any{value})
		return err
	}
	fv := elem.FieldByName(d.FieldName)
	if !fv.IsValid() || !fv.CanSet() {
		return errs.New(errs.ReflectionError, "no settable field %q on %s", d.FieldName, elem.Type())
	}
	if value == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(fv.Type()) {
		rv = rv.Convert(fv.Type())
	}
	fv.Set(rv)
	return nil
}

func (n *memberInitNode) teardown(_ context.Context) {
	if n.newSub != nil {
		n.newSub()
	}
	for _, u := range n.bindingSubs {
		if u != nil {
			u()
		}
	}
	n.new.Release()
	for _, b := range n.bindings {
		b.Release()
	}
}
