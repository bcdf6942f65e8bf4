package activeexpr

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-quicktest/qt"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/disposal"
)

var intType = reflect.TypeOf(0)
var boolType = reflect.TypeOf(false)
var stringType = reflect.TypeOf("")

// person is a minimal observable source for exercising Member nodes end to
// end: every Set* method notifies OnPropertyChanged listeners by field
// name, the same contract the engine requires of any caller-supplied
// source object.
type person struct {
	listeners map[int]func(string)
	nextID    int

	Name  string
	Score int
}

func newPerson(name string, score int) *person {
	return &person{listeners: map[int]func(string){}, Name: name, Score: score}
}

func (p *person) OnPropertyChanged(fn func(name string)) func() {
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() { delete(p.listeners, id) }
}

func (p *person) fire(name string) {
	for _, fn := range p.listeners {
		fn(name)
	}
}

func (p *person) SetName(v string) {
	p.Name = v
	p.fire("Name")
}

func (p *person) SetScore(v int) {
	p.Score = v
	p.fire("Score")
}

func personType() reflect.Type { return reflect.TypeOf(&person{}) }

func memberLambda(field string, typ reflect.Type) *expr.Lambda {
	param := &expr.Parameter{Typ: personType(), Ordinal: 0}
	return &expr.Lambda{
		Parameters: []*expr.Parameter{param},
		Body: &expr.Member{
			Target:     param,
			Descriptor: expr.MemberDescriptor{FieldName: field},
			Typ:        typ,
		},
	}
}

func TestCreateTracksLiveMemberChanges(t *testing.T) {
	p := newPerson("Ann", 1)
	h, err := Create(memberLambda("Name", stringType), []any{p}, nil)
	qt.Assert(t, qt.IsNil(err))
	defer h.Release()

	qt.Assert(t, qt.Equals(h.Value().(string), "Ann"))

	var fired int
	unsub := h.Subscribe(func() { fired++ })
	defer unsub()

	p.SetName("Bea")
	qt.Assert(t, qt.Equals(h.Value().(string), "Bea"))
	qt.Assert(t, qt.Equals(fired, 1))
}

func TestCreateSharesStructurallyIdenticalSubgraphs(t *testing.T) {
	p := newPerson("Ann", 1)
	lambda := memberLambda("Name", stringType)

	h1, err := Create(lambda, []any{p}, nil)
	qt.Assert(t, qt.IsNil(err))
	defer h1.Release()

	h2, err := Create(lambda, []any{p}, nil)
	qt.Assert(t, qt.IsNil(err))
	defer h2.Release()

	qt.Assert(t, qt.Equals(h1.Value().(string), h2.Value().(string)))

	var fired int
	unsub := h2.Subscribe(func() { fired++ })
	defer unsub()

	p.SetName("Cid")
	qt.Assert(t, qt.Equals(h1.Value().(string), "Cid"))
	qt.Assert(t, qt.Equals(fired, 1), qt.Commentf("h2 shares the same live node as h1"))
}

func TestCreateDistinguishesArgumentIdentity(t *testing.T) {
	lambda := memberLambda("Name", stringType)
	a := newPerson("Ann", 1)
	b := newPerson("Bea", 2)

	ha, err := Create(lambda, []any{a}, nil)
	qt.Assert(t, qt.IsNil(err))
	defer ha.Release()

	hb, err := Create(lambda, []any{b}, nil)
	qt.Assert(t, qt.IsNil(err))
	defer hb.Release()

	qt.Assert(t, qt.Equals(ha.Value().(string), "Ann"))
	qt.Assert(t, qt.Equals(hb.Value().(string), "Bea"))

	a.SetName("Changed")
	qt.Assert(t, qt.Equals(ha.Value().(string), "Changed"))
	qt.Assert(t, qt.Equals(hb.Value().(string), "Bea"), qt.Commentf("distinct source objects never share a node"))
}

func TestCreateArgumentCountMismatch(t *testing.T) {
	lambda := memberLambda("Name", stringType)
	_, err := Create(lambda, nil, nil)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestHandleStringRendersCurrentValue(t *testing.T) {
	p := newPerson("Ann", 1)
	h, err := Create(memberLambda("Name", stringType), []any{p}, nil)
	qt.Assert(t, qt.IsNil(err))
	defer h.Release()

	rendered := h.String()
	qt.Assert(t, qt.IsTrue(strings.Contains(rendered, "$0")))
	qt.Assert(t, qt.IsTrue(strings.Contains(rendered, ".Name")))
	qt.Assert(t, qt.IsTrue(strings.Contains(rendered, `"Ann"`)), qt.Commentf("rendered form: %s", rendered))
}

func TestOptionsExpressionValueDisposalWiring(t *testing.T) {
	// Plain strings don't implement Disposer, so this only exercises that
	// registering a matching pattern doesn't disturb ordinary recomputation.
	pattern := func(n expr.Node) bool {
		m, ok := n.(*expr.Member)
		return ok && m.Descriptor.FieldName == "Name"
	}
	opts := NewOptions().WithExpressionValueDisposal(disposal.ExamplePattern(pattern))

	p := newPerson("Ann", 1)
	h, err := Create(memberLambda("Name", stringType), []any{p}, opts)
	qt.Assert(t, qt.IsNil(err))

	p.SetName("Bea")
	qt.Assert(t, qt.Equals(h.Value().(string), "Bea"))
	h.Release()
}

func TestConditionAsyncCompletesWhenAlreadyTrue(t *testing.T) {
	lambda := &expr.Lambda{
		Parameters: nil,
		Body:       &expr.Constant{Typ: boolType, Value: true},
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out := ConditionAsync(ctx, lambda, nil, nil)
	result := <-out
	qt.Assert(t, qt.IsTrue(result.Value))
	qt.Assert(t, qt.IsNil(result.Fault))
	qt.Assert(t, qt.IsFalse(result.Cancelled))
}

func TestConditionAsyncCompletesOnTransition(t *testing.T) {
	p := newPerson("Ann", 0)
	param := &expr.Parameter{Typ: personType(), Ordinal: 0}
	lambda := &expr.Lambda{
		Parameters: []*expr.Parameter{param},
		Body: &expr.Binary{
			Op:    expr.GreaterThan,
			Left:  &expr.Member{Target: param, Descriptor: expr.MemberDescriptor{FieldName: "Score"}, Typ: intType},
			Right: &expr.Constant{Typ: intType, Value: 5},
			Typ:   boolType,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	out := ConditionAsync(ctx, lambda, []any{p}, nil)

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.SetScore(10)
	}()

	result := <-out
	qt.Assert(t, qt.IsTrue(result.Value))
	qt.Assert(t, qt.IsNil(result.Fault))
}

func TestConditionAsyncCancellation(t *testing.T) {
	p := newPerson("Ann", 0)
	param := &expr.Parameter{Typ: personType(), Ordinal: 0}
	lambda := &expr.Lambda{
		Parameters: []*expr.Parameter{param},
		Body: &expr.Binary{
			Op:    expr.GreaterThan,
			Left:  &expr.Member{Target: param, Descriptor: expr.MemberDescriptor{FieldName: "Score"}, Typ: intType},
			Right: &expr.Constant{Typ: intType, Value: 5},
			Typ:   boolType,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	out := ConditionAsync(ctx, lambda, []any{p}, nil)

	result := <-out
	qt.Assert(t, qt.IsTrue(result.Cancelled))
}
