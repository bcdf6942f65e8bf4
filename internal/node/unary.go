package node

import (
	"context"
	"reflect"

	"github.com/cockroachdb/apd/v3"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/errs"
)

// unaryNode implements §4.5.5 for expr.Unary.
type unaryNode struct {
	base

	op         expr.UnaryOp
	operand    Ref
	method     *expr.MethodDescriptor
	operandSub func()
}

// NewUnary builds the Unary node described by §4.5.5.
func NewUnary(typ reflect.Type, op expr.UnaryOp, operand Ref, method *expr.MethodDescriptor) Node {
	n := &unaryNode{base: newBase(typ), op: op, operand: operand, method: method}
	n.operandSub = operand.Node.Subscribe(func() { n.recompute() })
	n.recompute()
	return n
}

func (n *unaryNode) recompute() {
	if fault := n.operand.Node.Fault(); fault != nil {
		n.setState(zeroOf(n.typ), fault)
		return
	}
	value, err := n.evaluate(n.operand.Node.Value())
	if err != nil {
		n.setState(zeroOf(n.typ), err)
		return
	}
	n.setState(value, nil)
}

func (n *unaryNode) evaluate(operand any) (any, error) {
	if n.method != nil {
		return callFunc(n.method.Func, []any{operand})
	}
	switch n.op {
	case expr.Convert, expr.ConvertChecked:
		return n.convert(operand)
	case expr.Not:
		return unaryNot(operand)
	}

	kind, i, u, f := numericValue(operand)
	if kind == numInvalid {
		return nil, errs.New(errs.OperatorError, "operator %s requires a numeric operand", n.op)
	}
	typ := reflect.TypeOf(operand)
	switch n.op {
	case expr.Plus:
		return operand, nil
	case expr.Negate:
		return unaryNegateNative(typ, kind, i, u, f)
	case expr.NegateChecked:
		return unaryNegateChecked(operand, n.typ)
	case expr.Increment:
		return unaryStepNative(typ, kind, i, u, f, 1)
	case expr.Decrement:
		return unaryStepNative(typ, kind, i, u, f, -1)
	default:
		return nil, errs.New(errs.OperatorError, "unsupported unary operator %s", n.op)
	}
}

func (n *unaryNode) convert(operand any) (any, error) {
	if operand == nil {
		return zeroOf(n.typ), nil
	}
	rv := reflect.ValueOf(operand)
	if !rv.Type().ConvertibleTo(n.typ) {
		return nil, errs.New(errs.ConversionError, "cannot convert %s to %s", rv.Type(), n.typ)
	}
	if n.op == expr.ConvertChecked {
		kind, i, u, f := numericValue(operand)
		if kind != numInvalid && classifyNumeric(n.typ.Kind()) != numInvalid {
			d, err := decimalFromValue(setNumeric(rv.Type(), kind, i, u, f))
			if err != nil {
				return nil, err
			}
			return decimalToType(d, n.typ)
		}
	}
	return rv.Convert(n.typ).Interface(), nil
}

func unaryNot(operand any) (any, error) {
	switch v := operand.(type) {
	case bool:
		return !v, nil
	default:
		kind, i, u, _ := numericValue(operand)
		switch kind {
		case numInt:
			return setNumeric(reflect.TypeOf(operand), numInt, ^i, 0, 0), nil
		case numUint:
			return setNumeric(reflect.TypeOf(operand), numUint, 0, ^u, 0), nil
		default:
			return nil, errs.New(errs.OperatorError, "operator Not requires a boolean or integer operand")
		}
	}
}

func unaryNegateNative(typ reflect.Type, kind numKind, i int64, u uint64, f float64) (any, error) {
	switch kind {
	case numInt:
		return setNumeric(typ, numInt, -i, 0, 0), nil
	case numUint:
		return nil, errs.New(errs.OperatorError, "cannot negate an unsigned operand")
	default:
		return setNumeric(typ, numFloat, 0, 0, -f), nil
	}
}

func unaryStepNative(typ reflect.Type, kind numKind, i int64, u uint64, f float64, delta int64) (any, error) {
	switch kind {
	case numInt:
		return setNumeric(typ, numInt, i+delta, 0, 0), nil
	case numUint:
		if delta < 0 && u == 0 {
			return nil, errs.New(errs.OperatorError, "decrement underflowed an unsigned operand")
		}
		return setNumeric(typ, numUint, 0, u+uint64(delta), 0), nil
	default:
		return setNumeric(typ, numFloat, 0, 0, f+float64(delta)), nil
	}
}

func unaryNegateChecked(operand any, typ reflect.Type) (any, error) {
	d, err := decimalFromValue(operand)
	if err != nil {
		return nil, err
	}
	res := new(apd.Decimal)
	cond, err := checkedArithCtx.Neg(res, d)
	if overflowErr := checkedOverflowed(cond, err); overflowErr != nil {
		return nil, overflowErr
	}
	return decimalToType(res, typ)
}

func (n *unaryNode) teardown(_ context.Context) {
	if n.operandSub != nil {
		n.operandSub()
	}
	n.operand.Release()
}
