package cmd

import (
	"io"
	"reflect"

	activeexpr "activeexpr.dev/go"
	"activeexpr.dev/go/expr"
)

// account is a second mock source, used by the sum scenario to show a node
// with two independently-mutating sources.
type account struct {
	observable
	Balance int
}

func (a *account) SetBalance(v int) {
	a.Balance = v
	a.fire("Balance")
}

var accountPtrType = reflect.TypeOf((*account)(nil))

var sumScenario = scenario{
	name: "sum",
	desc: "Score + Balance over two independently mutating sources",
	run: func(out io.Writer) error {
		p := &person{Score: 9}
		a := &account{Balance: 0}

		left := member(param(personPtrType, 0), "Score", intType)
		right := member(param(accountPtrType, 1), "Balance", intType)
		body := &expr.Binary{Op: expr.Add, Left: left, Right: right, Typ: intType}
		lambda := &expr.Lambda{
			Parameters: []*expr.Parameter{param(personPtrType, 0), param(accountPtrType, 1)},
			Body:       body,
		}

		h, err := activeexpr.Create(lambda, []any{p, a}, nil)
		if err != nil {
			return err
		}
		defer h.Release()

		unsub := trace(out, "sum", h)
		defer unsub()

		// target sequence [9, 6, 2, 5, 2, 6, 2]
		p.SetScore(6)
		p.SetScore(2)
		a.SetBalance(3)
		a.SetBalance(0)
		p.SetScore(6)
		p.SetScore(2)
		return nil
	},
}
