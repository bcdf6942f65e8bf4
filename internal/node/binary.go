package node

import (
	"context"
	"math"
	"reflect"

	"github.com/cockroachdb/apd/v3"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/errs"
)

// binaryNode implements §4.5.5 for expr.Binary.
type binaryNode struct {
	base

	op          expr.BinaryOp
	left        Ref
	right       Ref
	method      *expr.MethodDescriptor
	leftUnsub   func()
	rightUnsub  func()
}

// NewBinary builds the Binary node described by §4.5.5.
func NewBinary(typ reflect.Type, op expr.BinaryOp, left, right Ref, method *expr.MethodDescriptor) Node {
	n := &binaryNode{base: newBase(typ), op: op, left: left, right: right, method: method}
	n.leftUnsub = left.Node.Subscribe(func() { n.recompute() })
	n.rightUnsub = right.Node.Subscribe(func() { n.recompute() })
	n.recompute()
	return n
}

func (n *binaryNode) recompute() {
	if fault := n.left.Node.Fault(); fault != nil {
		n.setState(zeroOf(n.typ), fault)
		return
	}
	if fault := n.right.Node.Fault(); fault != nil {
		n.setState(zeroOf(n.typ), fault)
		return
	}
	value, err := n.evaluate(n.left.Node.Value(), n.right.Node.Value())
	if err != nil {
		n.setState(zeroOf(n.typ), err)
		return
	}
	n.setState(value, nil)
}

func (n *binaryNode) evaluate(left, right any) (any, error) {
	if n.method != nil {
		return callFunc(n.method.Func, []any{left, right})
	}
	switch n.op {
	case expr.Equal:
		return canonEqual(left, right), nil
	case expr.NotEqual:
		return !canonEqual(left, right), nil
	}

	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return stringBinary(n.op, ls, rs)
		}
	}
	if lb, ok := left.(bool); ok {
		if rb, ok := right.(bool); ok {
			return boolBinary(n.op, lb, rb)
		}
	}
	if n.op.Checked() {
		return binaryChecked(n.op, left, right, n.typ)
	}
	return binaryNative(n.op, left, right, n.typ)
}

func (n *binaryNode) teardown(_ context.Context) {
	if n.leftUnsub != nil {
		n.leftUnsub()
	}
	if n.rightUnsub != nil {
		n.rightUnsub()
	}
	n.left.Release()
	n.right.Release()
}

func stringBinary(op expr.BinaryOp, left, right string) (any, error) {
	switch op {
	case expr.Add:
		return left + right, nil
	case expr.Equal:
		return left == right, nil
	case expr.NotEqual:
		return left != right, nil
	case expr.LessThan:
		return left < right, nil
	case expr.LessThanOrEqual:
		return left <= right, nil
	case expr.GreaterThan:
		return left > right, nil
	case expr.GreaterThanOrEqual:
		return left >= right, nil
	default:
		return nil, errs.New(errs.OperatorError, "operator %s is not supported for strings", op)
	}
}

func boolBinary(op expr.BinaryOp, left, right bool) (any, error) {
	switch op {
	case expr.BitwiseAnd:
		return left && right, nil
	case expr.BitwiseOr:
		return left || right, nil
	case expr.BitwiseXor:
		return left != right, nil
	case expr.Equal:
		return left == right, nil
	case expr.NotEqual:
		return left != right, nil
	default:
		return nil, errs.New(errs.OperatorError, "operator %s is not supported for booleans", op)
	}
}

// binaryNative implements the unchecked numeric operators over native Go
// widths, dispatching to the widest of the two operand kinds (mirroring Go's
// own untyped-constant widening: mixing int and float operands widens to
// float).
func binaryNative(op expr.BinaryOp, left, right any, typ reflect.Type) (any, error) {
	lk, li, lu, lf := numericValue(left)
	rk, ri, ru, rf := numericValue(right)
	if lk == numInvalid || rk == numInvalid {
		return nil, errs.New(errs.OperatorError, "operator %s requires numeric operands", op)
	}
	kind := lk
	if lk == numFloat || rk == numFloat {
		kind = numFloat
	} else if lk == numUint && rk == numUint {
		kind = numUint
	} else {
		kind = numInt
	}

	if isOrdering(op) {
		a, b := asFloat(lk, li, lu, lf), asFloat(rk, ri, ru, rf)
		return compareFloat(op, a, b)
	}

	switch kind {
	case numFloat:
		a, b := asFloat(lk, li, lu, lf), asFloat(rk, ri, ru, rf)
		r, err := floatArith(op, a, b)
		if err != nil {
			return nil, err
		}
		return setNumeric(typ, numFloat, 0, 0, r), nil
	case numUint:
		r, err := uintArith(op, lu, ru)
		if err != nil {
			return nil, err
		}
		return setNumeric(typ, numUint, 0, r, 0), nil
	default:
		a := asInt(lk, li, lu)
		b := asInt(rk, ri, ru)
		r, err := intArith(op, a, b)
		if err != nil {
			return nil, err
		}
		return setNumeric(typ, numInt, r, 0, 0), nil
	}
}

func asInt(kind numKind, i int64, u uint64) int64 {
	if kind == numUint {
		return int64(u)
	}
	return i
}

func isOrdering(op expr.BinaryOp) bool {
	switch op {
	case expr.LessThan, expr.LessThanOrEqual, expr.GreaterThan, expr.GreaterThanOrEqual:
		return true
	default:
		return false
	}
}

func compareFloat(op expr.BinaryOp, a, b float64) (any, error) {
	switch op {
	case expr.LessThan:
		return a < b, nil
	case expr.LessThanOrEqual:
		return a <= b, nil
	case expr.GreaterThan:
		return a > b, nil
	case expr.GreaterThanOrEqual:
		return a >= b, nil
	default:
		return nil, errs.New(errs.OperatorError, "unsupported ordering operator %s", op)
	}
}

func floatArith(op expr.BinaryOp, a, b float64) (float64, error) {
	switch op {
	case expr.Add, expr.AddChecked:
		return a + b, nil
	case expr.Subtract, expr.SubtractChecked:
		return a - b, nil
	case expr.Multiply, expr.MultiplyChecked:
		return a * b, nil
	case expr.Divide:
		if b == 0 {
			return 0, errs.New(errs.OperatorError, "division by zero")
		}
		return a / b, nil
	case expr.Modulo:
		if b == 0 {
			return 0, errs.New(errs.OperatorError, "modulo by zero")
		}
		return math.Mod(a, b), nil
	case expr.Power:
		return math.Pow(a, b), nil
	default:
		return 0, errs.New(errs.OperatorError, "unsupported operator %s for floating-point operands", op)
	}
}

func intArith(op expr.BinaryOp, a, b int64) (int64, error) {
	switch op {
	case expr.Add, expr.AddChecked:
		return a + b, nil
	case expr.Subtract, expr.SubtractChecked:
		return a - b, nil
	case expr.Multiply, expr.MultiplyChecked:
		return a * b, nil
	case expr.Divide:
		if b == 0 {
			return 0, errs.New(errs.OperatorError, "division by zero")
		}
		return a / b, nil
	case expr.Modulo:
		if b == 0 {
			return 0, errs.New(errs.OperatorError, "modulo by zero")
		}
		return a % b, nil
	case expr.BitwiseAnd:
		return a & b, nil
	case expr.BitwiseOr:
		return a | b, nil
	case expr.BitwiseXor:
		return a ^ b, nil
	case expr.LeftShift:
		return a << uint(b), nil
	case expr.RightShift:
		return a >> uint(b), nil
	case expr.Power:
		return int64(math.Pow(float64(a), float64(b))), nil
	default:
		return 0, errs.New(errs.OperatorError, "unsupported operator %s for integer operands", op)
	}
}

func uintArith(op expr.BinaryOp, a, b uint64) (uint64, error) {
	switch op {
	case expr.Add, expr.AddChecked:
		return a + b, nil
	case expr.Subtract, expr.SubtractChecked:
		return a - b, nil
	case expr.Multiply, expr.MultiplyChecked:
		return a * b, nil
	case expr.Divide:
		if b == 0 {
			return 0, errs.New(errs.OperatorError, "division by zero")
		}
		return a / b, nil
	case expr.Modulo:
		if b == 0 {
			return 0, errs.New(errs.OperatorError, "modulo by zero")
		}
		return a % b, nil
	case expr.BitwiseAnd:
		return a & b, nil
	case expr.BitwiseOr:
		return a | b, nil
	case expr.BitwiseXor:
		return a ^ b, nil
	case expr.LeftShift:
		return a << b, nil
	case expr.RightShift:
		return a >> b, nil
	case expr.Power:
		return uint64(math.Pow(float64(a), float64(b))), nil
	default:
		return 0, errs.New(errs.OperatorError, "unsupported operator %s for unsigned operands", op)
	}
}

// binaryChecked runs the AddChecked/SubtractChecked/MultiplyChecked variants
// through apd's arbitrary-precision decimal arithmetic, faulting with
// OperatorError when the exact result doesn't fit back into typ.
func binaryChecked(op expr.BinaryOp, left, right any, typ reflect.Type) (any, error) {
	a, err := decimalFromValue(left)
	if err != nil {
		return nil, err
	}
	b, err := decimalFromValue(right)
	if err != nil {
		return nil, err
	}
	res := new(apd.Decimal)
	var cond apd.Condition
	switch op {
	case expr.AddChecked:
		cond, err = checkedArithCtx.Add(res, a, b)
	case expr.SubtractChecked:
		cond, err = checkedArithCtx.Sub(res, a, b)
	case expr.MultiplyChecked:
		cond, err = checkedArithCtx.Mul(res, a, b)
	default:
		return nil, errs.New(errs.OperatorError, "%s is not a checked operator", op)
	}
	if overflowErr := checkedOverflowed(cond, err); overflowErr != nil {
		return nil, overflowErr
	}
	return decimalToType(res, typ)
}
