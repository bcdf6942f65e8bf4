package cache

import (
	"reflect"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/node"
	"activeexpr.dev/go/internal/option"
)

var intType = reflect.TypeOf(0)

// constantBuilder only ever builds Constant nodes, enough to exercise the
// cache's own keying and refcounting logic without pulling in compile.
func constantBuilder(n expr.Node, _ Resolver) (node.Node, error) {
	c := n.(*expr.Constant)
	return node.NewConstant(c.Typ, c.Value), nil
}

func TestAcquireDedupesStructurallyEqualExpressions(t *testing.T) {
	c := New()
	a := &expr.Constant{Typ: intType, Value: 42}
	b := &expr.Constant{Typ: intType, Value: 42}

	ref1, err := c.Acquire(a, option.New(), "", constantBuilder)
	qt.Assert(t, qt.IsNil(err))
	ref2, err := c.Acquire(b, option.New(), "", constantBuilder)
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.Equals(ref1.Node, ref2.Node))
	qt.Assert(t, qt.Equals(c.Len(), 1))

	ref1.Release()
	qt.Assert(t, qt.Equals(c.Len(), 1), qt.Commentf("one more live reference remains"))
	ref2.Release()
	qt.Assert(t, qt.Equals(c.Len(), 0))
}

func TestAcquireDistinguishesArgsKey(t *testing.T) {
	c := New()
	a := &expr.Constant{Typ: intType, Value: 1}

	ref1, err := c.Acquire(a, option.New(), "call-1", constantBuilder)
	qt.Assert(t, qt.IsNil(err))
	ref2, err := c.Acquire(a, option.New(), "call-2", constantBuilder)
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.Not(qt.Equals(ref1.Node, ref2.Node)))
	qt.Assert(t, qt.Equals(c.Len(), 2))

	ref1.Release()
	ref2.Release()
}

func TestCacheSizeSequenceAcrossAcquisitions(t *testing.T) {
	c := New()
	var sizes []int

	ref1, err := c.Acquire(&expr.Constant{Typ: intType, Value: 1}, option.New(), "", constantBuilder)
	qt.Assert(t, qt.IsNil(err))
	sizes = append(sizes, c.Len())

	ref2, err := c.Acquire(&expr.Constant{Typ: intType, Value: 2}, option.New(), "", constantBuilder)
	qt.Assert(t, qt.IsNil(err))
	sizes = append(sizes, c.Len())

	ref3, err := c.Acquire(&expr.Constant{Typ: intType, Value: 1}, option.New(), "", constantBuilder)
	qt.Assert(t, qt.IsNil(err))
	sizes = append(sizes, c.Len())

	want := []int{1, 2, 2}
	if diff := cmp.Diff(want, sizes); diff != "" {
		t.Fatalf("cache size sequence mismatch (-want +got):\n%s", diff)
	}

	ref1.Release()
	ref2.Release()
	ref3.Release()
}

func TestPeekFindsAnAcquiredNode(t *testing.T) {
	c := New()
	a := &expr.Constant{Typ: intType, Value: 7}
	opts := option.New()

	_, ok := c.Peek(a, opts, "")
	qt.Assert(t, qt.IsFalse(ok))

	ref, err := c.Acquire(a, opts, "", constantBuilder)
	qt.Assert(t, qt.IsNil(err))

	got, ok := c.Peek(a, opts, "")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got, ref.Node))

	ref.Release()
}
