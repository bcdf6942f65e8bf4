package node

import (
	"reflect"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"

	"activeexpr.dev/go/expr"
)

var intType = reflect.TypeOf(0)
var boolType = reflect.TypeOf(false)

func constRef(typ reflect.Type, value any) Ref {
	n := NewConstant(typ, value)
	Activate(n)
	return Ref{Node: n, Release: func() {}}
}

func TestBinaryAdd(t *testing.T) {
	left := constRef(intType, 3)
	right := constRef(intType, 4)
	n := NewBinary(intType, expr.Add, left, right, nil)
	qt.Assert(t, qt.Equals(n.Value().(int), 7))
	qt.Assert(t, qt.IsNil(n.Fault()))
}

func TestUnaryNegate(t *testing.T) {
	operand := constRef(intType, 5)
	n := NewUnary(intType, expr.Negate, operand, nil)
	qt.Assert(t, qt.Equals(n.Value().(int), -5))
}

func TestUnaryNot(t *testing.T) {
	operand := constRef(boolType, true)
	n := NewUnary(boolType, expr.Not, operand, nil)
	qt.Assert(t, qt.Equals(n.Value().(bool), false))
}

func TestConditionalLazyBranchConstruction(t *testing.T) {
	var trueBuilds, falseBuilds int

	test := constRef(boolType, true)
	n := NewConditional(intType, test,
		func() (Ref, error) {
			trueBuilds++
			return constRef(intType, 1), nil
		},
		func() (Ref, error) {
			falseBuilds++
			return constRef(intType, 2), nil
		},
	)

	qt.Assert(t, qt.Equals(n.Value().(int), 1))
	qt.Assert(t, qt.Equals(trueBuilds, 1))
	qt.Assert(t, qt.Equals(falseBuilds, 0), qt.Commentf("unselected branch must never be constructed"))
}

func TestCoalesce(t *testing.T) {
	left := constRef(reflect.TypeOf((*string)(nil)), (*string)(nil))
	var rightBuilds int
	n := NewCoalesce(reflect.TypeOf(""), left, func() (Ref, error) {
		rightBuilds++
		return constRef(reflect.TypeOf(""), "fallback"), nil
	}, nil)

	qt.Assert(t, qt.Equals(n.Value().(string), "fallback"))
	qt.Assert(t, qt.Equals(rightBuilds, 1))
}

func TestAndAlsoShortCircuits(t *testing.T) {
	left := constRef(boolType, false)
	var rightBuilds int
	n := NewAndAlso(left, func() (Ref, error) {
		rightBuilds++
		return constRef(boolType, true), nil
	})

	qt.Assert(t, qt.Equals(n.Value().(bool), false))
	qt.Assert(t, qt.Equals(rightBuilds, 0), qt.Commentf("right side must not be built while left is false"))
}

func TestTypeIs(t *testing.T) {
	operand := constRef(reflect.TypeOf(0), 1)
	n := NewTypeIs(operand, reflect.TypeOf(0))
	qt.Assert(t, qt.Equals(n.Value().(bool), true))
}

func TestBinarySumAcrossIndependentInputs(t *testing.T) {
	// Mirrors the "sum" demo scenario's mutation sequence: a fresh Binary
	// node per step, rather than a mutated shared one, is enough to pin
	// down the arithmetic at each step.
	steps := []struct{ score, balance int }{
		{9, 0}, {6, 0}, {2, 0}, {2, 3}, {2, 0}, {6, 0}, {2, 0},
	}
	got := make([]int, len(steps))
	for i, s := range steps {
		left := constRef(intType, s.score)
		right := constRef(intType, s.balance)
		n := NewBinary(intType, expr.Add, left, right, nil)
		got[i] = n.Value().(int)
	}

	want := []int{9, 6, 2, 5, 2, 6, 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sum sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestNotificationOnlyOnDistinctChange(t *testing.T) {
	left := constRef(intType, 1)
	right := constRef(intType, 1)
	n := NewBinary(boolType, expr.Equal, left, right, nil)
	Activate(n)

	var fired int
	n.Subscribe(func() { fired++ })

	// Recomputing with unchanged inputs yields the same value, so no
	// notification fires.
	n.(*binaryNode).recompute()

	qt.Assert(t, qt.Equals(n.Value().(bool), true))
	qt.Assert(t, qt.Equals(fired, 0))
}
