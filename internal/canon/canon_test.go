package canon

import (
	"reflect"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"

	"activeexpr.dev/go/expr"
)

var intType = reflect.TypeOf(0)
var stringType = reflect.TypeOf("")

func TestEqualAlphaInvariant(t *testing.T) {
	// (x) => x + 1, with two differently-named but ordinal-equal parameters.
	a := &expr.Binary{
		Op:    expr.Add,
		Left:  &expr.Parameter{Typ: intType, Ordinal: 0, Name: "x"},
		Right: &expr.Constant{Typ: intType, Value: 1},
		Typ:   intType,
	}
	b := &expr.Binary{
		Op:    expr.Add,
		Left:  &expr.Parameter{Typ: intType, Ordinal: 0, Name: "y"},
		Right: &expr.Constant{Typ: intType, Value: 1},
		Typ:   intType,
	}
	qt.Assert(t, qt.IsTrue(Equal(a, b)))
	qt.Assert(t, qt.Equals(Digest(a).String(), Digest(b).String()))
}

func TestEqualDistinguishesOrdinal(t *testing.T) {
	a := &expr.Parameter{Typ: intType, Ordinal: 0}
	b := &expr.Parameter{Typ: intType, Ordinal: 1}
	qt.Assert(t, qt.IsFalse(Equal(a, b)))
	qt.Assert(t, qt.Not(qt.Equals(Digest(a).String(), Digest(b).String())))
}

func TestEqualDistinguishesOperator(t *testing.T) {
	a := &expr.Binary{Op: expr.Add, Left: &expr.Constant{Typ: intType, Value: 1}, Right: &expr.Constant{Typ: intType, Value: 2}, Typ: intType}
	b := &expr.Binary{Op: expr.Subtract, Left: &expr.Constant{Typ: intType, Value: 1}, Right: &expr.Constant{Typ: intType, Value: 2}, Typ: intType}
	qt.Assert(t, qt.IsFalse(Equal(a, b)))
}

func TestMethodDescriptorEqualityByCodePointer(t *testing.T) {
	fn1 := reflect.ValueOf(func(int) int { return 0 })
	fn2 := reflect.ValueOf(func(int) int { return 1 })

	a := &expr.Unary{
		Op:      expr.Convert,
		Operand: &expr.Constant{Typ: intType, Value: 1},
		Typ:     stringType,
		Method:  &expr.MethodDescriptor{Name: "Convert", ResultType: stringType, Func: fn1},
	}
	b := &expr.Unary{
		Op:      expr.Convert,
		Operand: &expr.Constant{Typ: intType, Value: 1},
		Typ:     stringType,
		Method:  &expr.MethodDescriptor{Name: "Convert", ResultType: stringType, Func: fn1},
	}
	c := &expr.Unary{
		Op:      expr.Convert,
		Operand: &expr.Constant{Typ: intType, Value: 1},
		Typ:     stringType,
		Method:  &expr.MethodDescriptor{Name: "Convert", ResultType: stringType, Func: fn2},
	}
	qt.Assert(t, qt.IsTrue(Equal(a, b)))
	qt.Assert(t, qt.IsFalse(Equal(a, c)))
}

func TestDigestStableAcrossRepeatedCalls(t *testing.T) {
	n := &expr.Binary{
		Op:    expr.Add,
		Left:  &expr.Parameter{Typ: intType, Ordinal: 0, Name: "x"},
		Right: &expr.Constant{Typ: intType, Value: 1},
		Typ:   intType,
	}

	var digests []string
	for i := 0; i < 3; i++ {
		digests = append(digests, Digest(n).String())
	}
	want := []string{digests[0], digests[0], digests[0]}
	if diff := cmp.Diff(want, digests); diff != "" {
		t.Fatalf("Digest is not stable across repeated calls (-want +got):\n%s", diff)
	}
}

func TestValueEqual(t *testing.T) {
	qt.Assert(t, qt.IsTrue(ValueEqual(1, 1)))
	qt.Assert(t, qt.IsFalse(ValueEqual(1, 2)))
	qt.Assert(t, qt.IsTrue(ValueEqual(nil, nil)))
	qt.Assert(t, qt.IsFalse(ValueEqual(nil, 1)))
}
