package compile

import (
	"reflect"
	"testing"

	"github.com/go-quicktest/qt"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/cache"
	"activeexpr.dev/go/internal/errs"
	"activeexpr.dev/go/internal/option"
)

var intType = reflect.TypeOf(0)

func TestBuildSimpleArithmetic(t *testing.T) {
	// (x) => x + 1
	body := &expr.Binary{
		Op:    expr.Add,
		Left:  &expr.Parameter{Typ: intType, Ordinal: 0},
		Right: &expr.Constant{Typ: intType, Value: 1},
		Typ:   intType,
	}

	c := cache.New()
	build := NewBuilder(Args{41}, option.New())
	ref, err := c.Acquire(body, option.New(), "call", build)
	qt.Assert(t, qt.IsNil(err))
	defer ref.Release()

	qt.Assert(t, qt.Equals(ref.Node.Value().(int), 42))
}

func TestBuildParameterOutOfRange(t *testing.T) {
	body := &expr.Parameter{Typ: intType, Ordinal: 3}
	c := cache.New()
	build := NewBuilder(Args{1}, option.New())
	_, err := c.Acquire(body, option.New(), "call", build)
	qt.Assert(t, qt.IsNotNil(err))
	kind, ok := errs.KindOf(err)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(kind, errs.ArgumentOutOfRange))
}

func TestInvokeQuotedLambdaDelegate(t *testing.T) {
	// (x) => x + 1, quoted and invoked with a literal argument: (41) => 42.
	innerParam := &expr.Parameter{Typ: intType, Ordinal: 0}
	lambda := &expr.Lambda{
		Parameters: []*expr.Parameter{innerParam},
		Body: &expr.Binary{
			Op:    expr.Add,
			Left:  innerParam,
			Right: &expr.Constant{Typ: intType, Value: 1},
			Typ:   intType,
		},
	}
	invoke := &expr.Invoke{
		Target: lambda,
		Args:   []expr.Node{&expr.Constant{Typ: intType, Value: 41}},
		Typ:    intType,
	}

	c := cache.New()
	build := NewBuilder(nil, option.New())
	ref, err := c.Acquire(invoke, option.New(), "call", build)
	qt.Assert(t, qt.IsNil(err))
	defer ref.Release()

	qt.Assert(t, qt.IsNil(ref.Node.Fault()))
	qt.Assert(t, qt.Equals(ref.Node.Value().(int), 42))
}

func TestMemberInitRejectsNonPointerStructType(t *testing.T) {
	type point struct{ X, Y int }
	structType := reflect.TypeOf(point{})

	newNode := &expr.New{
		Typ:        structType,
		Descriptor: expr.ConstructorDescriptor{Name: "point", Func: reflect.ValueOf(func() point { return point{} })},
	}
	body := &expr.MemberInit{
		New: newNode,
		Typ: structType,
	}

	c := cache.New()
	build := NewBuilder(nil, option.New())
	_, err := c.Acquire(body, option.New(), "call", build)
	qt.Assert(t, qt.IsNotNil(err))
	kind, ok := errs.KindOf(err)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(kind, errs.NotSupportedExpression))
}
