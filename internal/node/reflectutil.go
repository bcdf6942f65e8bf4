package node

import (
	"reflect"

	"activeexpr.dev/go/internal/errs"
)

// recoverReflect turns a panic raised while performing a reflective access
// into a *errs.Fault of kind ReflectionError (§4.5: "exceptions thrown by
// reflection calls during recomputation become this node's fault").
func recoverReflect(errp *error) {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			*errp = errs.Wrap(errs.ReflectionError, err, "reflective access panicked")
			return
		}
		*errp = errs.New(errs.ReflectionError, "reflective access panicked: %v", r)
	}
}

// readField reads a struct field (if field != "") or a zero-argument getter
// method (if method != "") from target.
func readField(target any, field, method string) (result any, err error) {
	defer recoverReflect(&err)

	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if field != "" {
		fv := rv.FieldByName(field)
		if !fv.IsValid() {
			return nil, errs.New(errs.ReflectionError, "no field %q on %s", field, rv.Type())
		}
		return fv.Interface(), nil
	}
	mv := reflect.ValueOf(target).MethodByName(method)
	if !mv.IsValid() {
		return nil, errs.New(errs.ReflectionError, "no method %q on %T", method, target)
	}
	out := mv.Call(nil)
	return firstResult(out)
}

// callMethod invokes a method by name with args, returning its first result
// (and an error if the method's second result is a non-nil error).
func callMethod(target any, name string, args []any) (result any, err error) {
	defer recoverReflect(&err)

	var mv reflect.Value
	if target == nil {
		return nil, errs.New(errs.NullTarget, "cannot call %q on nil target", name)
	}
	mv = reflect.ValueOf(target).MethodByName(name)
	if !mv.IsValid() {
		return nil, errs.New(errs.ReflectionError, "no method %q on %T", name, target)
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(a)
	}
	out := mv.Call(in)
	return firstResult(out)
}

// callFunc invokes an arbitrary function value (used by New and Invoke).
func callFunc(fn reflect.Value, args []any) (result any, err error) {
	defer recoverReflect(&err)

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil && fn.Type().In(i).Kind() != reflect.Interface {
			in[i] = reflect.Zero(fn.Type().In(i))
			continue
		}
		in[i] = reflect.ValueOf(a)
	}
	out := fn.Call(in)
	return firstResult(out)
}

func firstResult(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if isErrorValue(out[0]) {
			if out[0].IsNil() {
				return nil, nil
			}
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	default:
		var result any
		if out[0].IsValid() {
			result = out[0].Interface()
		}
		last := out[len(out)-1]
		if isErrorValue(last) && !last.IsNil() {
			return result, last.Interface().(error)
		}
		return result, nil
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func isErrorValue(v reflect.Value) bool {
	return v.Type().Implements(errorType)
}

// indexNative reads target[key] for a Go map, or target[i] for a slice/array,
// via reflection, used when Index has no user-defined IndexerDescriptor.Name.
func indexNative(target any, key any) (result any, err error) {
	defer recoverReflect(&err)

	rv := reflect.ValueOf(target)
	switch rv.Kind() {
	case reflect.Map:
		kv := reflect.ValueOf(key)
		v := rv.MapIndex(kv)
		if !v.IsValid() {
			return nil, nil
		}
		return v.Interface(), nil
	case reflect.Slice, reflect.Array:
		i, ok := toInt(key)
		if !ok {
			return nil, errs.New(errs.ArgumentOutOfRange, "non-integer index %v", key)
		}
		if i < 0 || i >= rv.Len() {
			return nil, errs.New(errs.ArgumentOutOfRange, "index %d out of range [0,%d)", i, rv.Len())
		}
		return rv.Index(i).Interface(), nil
	default:
		return nil, errs.New(errs.NotSupportedExpression, "cannot index a %s", rv.Type())
	}
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	}
	return 0, false
}
