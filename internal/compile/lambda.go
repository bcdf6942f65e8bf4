package compile

import (
	"reflect"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/cache"
	"activeexpr.dev/go/internal/option"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// delegateType is the Go func signature a compiled Lambda presents to
// Invoke: one argument per Parameter (in ordinal order), returning
// (bodyType, error).
func delegateType(lambda *expr.Lambda) reflect.Type {
	in := make([]reflect.Type, len(lambda.Parameters))
	for i, p := range lambda.Parameters {
		in[i] = p.Typ
	}
	out := []reflect.Type{lambda.Body.Type(), errorType}
	return reflect.FuncOf(in, out, false)
}

// compileDelegate returns a Go func value that evaluates lambda.Body once
// per call, against a fresh one-shot instance cache scoped to that call's
// own bound arguments: a quoted lambda's parameters are independent of
// whatever enclosing expression reached it through a Call/Invoke, so its
// subgraph is never shared with (or kept alive alongside) the caller's.
func compileDelegate(lambda *expr.Lambda, opts *option.Options) (any, error) {
	fnType := delegateType(lambda)
	resultType := fnType.Out(0)

	impl := func(in []reflect.Value) []reflect.Value {
		args := make(Args, len(in))
		for i, v := range in {
			args[i] = v.Interface()
		}
		build := NewBuilder(args, opts)

		c := cache.New()
		ref, err := c.Acquire(lambda.Body, opts, "", build)
		if err != nil {
			return []reflect.Value{reflect.Zero(resultType), errorValue(err)}
		}
		defer ref.Release()

		if fault := ref.Node.Fault(); fault != nil {
			return []reflect.Value{reflect.Zero(resultType), errorValue(fault)}
		}
		value := ref.Node.Value()
		if value == nil {
			return []reflect.Value{reflect.Zero(resultType), errorValue(nil)}
		}
		return []reflect.Value{reflect.ValueOf(value), errorValue(nil)}
	}

	return reflect.MakeFunc(fnType, impl).Interface(), nil
}

// errorValue adapts a plain error into a reflect.Value of the `error`
// interface type, since reflect.ValueOf(err) alone carries the concrete
// wrapped type rather than the interface type a MakeFunc result slot needs.
func errorValue(err error) reflect.Value {
	rv := reflect.New(errorType).Elem()
	if err != nil {
		rv.Set(reflect.ValueOf(err))
	}
	return rv
}
