package render

import (
	"reflect"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/node"
)

var intType = reflect.TypeOf(0)
var boolType = reflect.TypeOf(false)
var stringType = reflect.TypeOf("")

func noLookup(expr.Node) (node.Node, bool) { return nil, false }

func constRef(typ reflect.Type, value any) node.Ref {
	n := node.NewConstant(typ, value)
	node.Activate(n)
	return node.Ref{Node: n, Release: func() {}}
}

func TestRenderConstant(t *testing.T) {
	c := &expr.Constant{Typ: intType, Value: 7}
	qt.Assert(t, qt.Equals(render(c, noLookup), "{7}"))
}

func TestRenderParameterFallsBackToOrdinal(t *testing.T) {
	p := &expr.Parameter{Typ: intType, Ordinal: 2}
	qt.Assert(t, qt.Equals(render(p, noLookup), "$2"))

	named := &expr.Parameter{Typ: intType, Ordinal: 0, Name: "x"}
	qt.Assert(t, qt.Equals(render(named, noLookup), "x"))
}

func TestRenderBinaryWrapsCheckedArithmetic(t *testing.T) {
	b := &expr.Binary{
		Op:    expr.AddChecked,
		Left:  &expr.Constant{Typ: intType, Value: 1},
		Right: &expr.Constant{Typ: intType, Value: 2},
		Typ:   intType,
	}
	qt.Assert(t, qt.Equals(render(b, noLookup), "checked({1} + {2})"))
}

func TestRenderPowerUsesMathPow(t *testing.T) {
	b := &expr.Binary{
		Op:    expr.Power,
		Left:  &expr.Constant{Typ: intType, Value: 2},
		Right: &expr.Constant{Typ: intType, Value: 3},
		Typ:   intType,
	}
	qt.Assert(t, qt.Equals(render(b, noLookup), "Math.Pow({2}, {3})"))
}

func TestRenderNotDiffersByOperandType(t *testing.T) {
	boolNot := &expr.Unary{Op: expr.Not, Operand: &expr.Constant{Typ: boolType, Value: true}, Typ: boolType}
	qt.Assert(t, qt.Equals(render(boolNot, noLookup), "(!{true})"))

	intNot := &expr.Unary{Op: expr.Not, Operand: &expr.Constant{Typ: intType, Value: 5}, Typ: intType}
	qt.Assert(t, qt.Equals(render(intNot, noLookup), "(~{5})"))
}

func TestRenderConditional(t *testing.T) {
	c := &expr.Conditional{
		Test:    &expr.Constant{Typ: boolType, Value: true},
		IfTrue:  &expr.Constant{Typ: intType, Value: 1},
		IfFalse: &expr.Constant{Typ: intType, Value: 2},
		Typ:     intType,
	}
	qt.Assert(t, qt.Equals(render(c, noLookup), "({true} ? {1} : {2})"))
}

func TestRenderAnnotatesCurrentValue(t *testing.T) {
	c := &expr.Constant{Typ: intType, Value: 9}
	lookup := func(n expr.Node) (node.Node, bool) {
		if n == expr.Node(c) {
			return constRef(intType, 9).Node, true
		}
		return nil, false
	}
	qt.Assert(t, qt.Equals(render(c, lookup), `{9} /* 9 */`))
}

func TestRenderAnnotatesFault(t *testing.T) {
	ptrType := reflect.TypeOf((*string)(nil))
	target := constRef(ptrType, nil)
	m := node.NewMember(stringType, target, "Name", "", nil)
	node.Activate(m)

	member := &expr.Member{
		Target:     &expr.Parameter{Typ: ptrType, Ordinal: 0},
		Descriptor: expr.MemberDescriptor{FieldName: "Name"},
		Typ:        stringType,
	}
	lookup := func(n expr.Node) (node.Node, bool) {
		if n == expr.Node(member) {
			return m, true
		}
		return nil, false
	}
	qt.Assert(t, qt.Equals(render(member, lookup), "$0.Name /* [NullTarget: member Name read through a nil target] */"))
}

type point struct{ X, Y int }

func TestFormatValueFallsBackToPrettyForStructs(t *testing.T) {
	got := formatValue(point{X: 1, Y: 2})
	qt.Assert(t, qt.IsTrue(strings.Contains(got, "X:")), qt.Commentf("pretty-formatted struct should label fields: %s", got))
	qt.Assert(t, qt.IsTrue(strings.Contains(got, "Y:")), qt.Commentf("pretty-formatted struct should label fields: %s", got))
}
