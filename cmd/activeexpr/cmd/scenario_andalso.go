package cmd

import (
	"io"

	activeexpr "activeexpr.dev/go"
	"activeexpr.dev/go/expr"
)

var andAlsoScenario = scenario{
	name: "andalso",
	desc: "Active && (Score > 0), short-circuiting the right side while Active is false",
	run: func(out io.Writer) error {
		p := &person{Active: false, Score: 0}

		left := member(param(personPtrType, 0), "Active", boolType)
		scoreMember := member(param(personPtrType, 0), "Score", intType)
		right := &expr.Binary{
			Op:    expr.GreaterThan,
			Left:  scoreMember,
			Right: &expr.Constant{Typ: intType, Value: 0},
			Typ:   boolType,
		}
		body := &expr.AndAlso{Left: left, Right: right}
		lambda := &expr.Lambda{Parameters: []*expr.Parameter{param(personPtrType, 0)}, Body: body}

		h, err := activeexpr.Create(lambda, []any{p}, nil)
		if err != nil {
			return err
		}
		defer h.Release()

		unsub := trace(out, "andalso", h)
		defer unsub()

		// [false, true, false, true, false, true]
		p.SetActive(true) // Active=true, Score=0 -> false
		p.SetScore(1)     // Active=true, Score=1 -> true
		p.SetActive(false)
		p.SetActive(true)
		p.SetScore(0)
		p.SetScore(2)
		return nil
	},
}
