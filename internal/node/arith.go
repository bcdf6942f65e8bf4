package node

import (
	"reflect"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"activeexpr.dev/go/internal/errs"
)

// numKind classifies a reflect.Kind for generic numeric dispatch, so Unary
// and Binary don't need a case per Go numeric width.
type numKind int

const (
	numInvalid numKind = iota
	numInt
	numUint
	numFloat
)

func classifyNumeric(k reflect.Kind) numKind {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return numUint
	case reflect.Float32, reflect.Float64:
		return numFloat
	default:
		return numInvalid
	}
}

// numericValue extracts v's numeric payload without losing the width needed
// to rebuild it later.
func numericValue(v any) (kind numKind, i int64, u uint64, f float64) {
	if v == nil {
		return numInvalid, 0, 0, 0
	}
	rv := reflect.ValueOf(v)
	switch classifyNumeric(rv.Kind()) {
	case numInt:
		return numInt, rv.Int(), 0, 0
	case numUint:
		return numUint, 0, rv.Uint(), 0
	case numFloat:
		return numFloat, 0, 0, rv.Float()
	default:
		return numInvalid, 0, 0, 0
	}
}

func asFloat(kind numKind, i int64, u uint64, f float64) float64 {
	switch kind {
	case numInt:
		return float64(i)
	case numUint:
		return float64(u)
	default:
		return f
	}
}

// setNumeric rebuilds a Go value of typ (whose Kind must agree with kind)
// from one of the three numeric payload fields.
func setNumeric(typ reflect.Type, kind numKind, i int64, u uint64, f float64) any {
	rv := reflect.New(typ).Elem()
	switch kind {
	case numInt:
		rv.SetInt(i)
	case numUint:
		rv.SetUint(u)
	case numFloat:
		rv.SetFloat(f)
	}
	return rv.Interface()
}

// decimalFromValue converts a numeric Go value into an apd.Decimal so
// checked arithmetic (AddChecked/SubtractChecked/MultiplyChecked/
// NegateChecked, §4.5.5) can run in arbitrary-precision decimal space
// instead of duplicating per-width Go overflow logic.
func decimalFromValue(v any) (*apd.Decimal, error) {
	rv := reflect.ValueOf(v)
	switch classifyNumeric(rv.Kind()) {
	case numInt:
		return apd.New(rv.Int(), 0), nil
	case numUint:
		d := new(apd.Decimal)
		if _, _, err := d.SetString(strconv.FormatUint(rv.Uint(), 10)); err != nil {
			return nil, errs.Wrap(errs.OperatorError, err, "converting %v to decimal", v)
		}
		return d, nil
	case numFloat:
		d := new(apd.Decimal)
		if _, _, err := d.SetString(strconv.FormatFloat(rv.Float(), 'g', -1, 64)); err != nil {
			return nil, errs.Wrap(errs.OperatorError, err, "converting %v to decimal", v)
		}
		return d, nil
	default:
		return nil, errs.New(errs.OperatorError, "%s is not a numeric type", rv.Type())
	}
}

// decimalToType narrows d back into typ, reporting an OperatorError fault
// (rather than silently wrapping) when the result doesn't fit — the
// "checked" half of the checked arithmetic variants.
func decimalToType(d *apd.Decimal, typ reflect.Type) (any, error) {
	s := d.Text('f')
	switch classifyNumeric(typ.Kind()) {
	case numInt:
		i, err := strconv.ParseInt(s, 10, typ.Bits())
		if err != nil {
			return nil, errs.Wrap(errs.OperatorError, err, "checked arithmetic overflowed %s", typ)
		}
		rv := reflect.New(typ).Elem()
		rv.SetInt(i)
		return rv.Interface(), nil
	case numUint:
		u, err := strconv.ParseUint(s, 10, typ.Bits())
		if err != nil {
			return nil, errs.Wrap(errs.OperatorError, err, "checked arithmetic overflowed %s", typ)
		}
		rv := reflect.New(typ).Elem()
		rv.SetUint(u)
		return rv.Interface(), nil
	case numFloat:
		f, err := strconv.ParseFloat(s, typ.Bits())
		if err != nil {
			return nil, errs.Wrap(errs.OperatorError, err, "checked arithmetic overflowed %s", typ)
		}
		rv := reflect.New(typ).Elem()
		rv.SetFloat(f)
		return rv.Interface(), nil
	default:
		return nil, errs.New(errs.OperatorError, "%s is not a numeric type", typ)
	}
}

var checkedArithCtx = apd.BaseContext.WithPrecision(50)

// checkedOverflowed reports whether an apd operation's condition flagged
// overflow, rounding, or inexactness — any of which means the checked
// variant must fault rather than silently narrow.
func checkedOverflowed(cond apd.Condition, err error) error {
	if err != nil {
		return errs.Wrap(errs.OperatorError, err, "checked arithmetic failed")
	}
	if cond.Overflow() || cond.Inexact() || cond.Rounded() {
		return errs.New(errs.OperatorError, "checked arithmetic overflowed")
	}
	return nil
}
