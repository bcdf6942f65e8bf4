package cmd

import (
	"fmt"
	"io"
	"reflect"

	activeexpr "activeexpr.dev/go"
	"activeexpr.dev/go/expr"
)

// person is the mock source object shared by several scenarios below.
type person struct {
	observable
	Name     string
	Nickname *string
	Active   bool
	Score    int
}

func (p *person) SetName(v string) {
	p.Name = v
	p.fire("Name")
}

func (p *person) SetNickname(v *string) {
	p.Nickname = v
	p.fire("Nickname")
}

func (p *person) SetActive(v bool) {
	p.Active = v
	p.fire("Active")
}

func (p *person) SetScore(v int) {
	p.Score = v
	p.fire("Score")
}

var personPtrType = reflect.TypeOf((*person)(nil))
var nicknameType = reflect.TypeOf((*string)(nil))

var coalesceScenario = scenario{
	name: "coalesce",
	desc: "Nickname ?? Name over a mutating nickname pointer",
	run: func(out io.Writer) error {
		p := &person{Name: "John"}

		left := member(param(personPtrType, 0), "Nickname", nicknameType)
		right := member(param(personPtrType, 0), "Name", stringType)
		body := &expr.Coalesce{
			Left:  left,
			Right: right,
			Typ:   stringType,
			Conversion: func(v any) (any, error) {
				s := v.(*string)
				return *s, nil
			},
		}
		lambda := &expr.Lambda{Parameters: []*expr.Parameter{param(personPtrType, 0)}, Body: body}

		h, err := activeexpr.Create(lambda, []any{p}, nil)
		if err != nil {
			return err
		}
		defer h.Release()

		unsub := trace(out, "coalesce", h)
		defer unsub()

		j := "J"
		empty := ""
		p.SetNickname(&j)
		p.SetNickname(&empty)
		p.SetNickname(nil)
		fmt.Fprintln(out, h.String())
		return nil
	},
}
