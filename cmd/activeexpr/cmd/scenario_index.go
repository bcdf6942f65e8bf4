package cmd

import (
	"io"
	"reflect"

	activeexpr "activeexpr.dev/go"
	"activeexpr.dev/go/expr"
)

// table holds a slice of ints and a separately-mutating CurrentIndex, so
// Items[CurrentIndex] demonstrates an Index node whose position is itself
// derived from another reactive member rather than a constant.
type table struct {
	observable
	Items        []int
	CurrentIndex int
}

func (t *table) SetItems(v []int) {
	t.Items = v
	t.fire("Items")
}

func (t *table) SetCurrentIndex(v int) {
	t.CurrentIndex = v
	t.fire("CurrentIndex")
}

var tablePtrType = reflect.TypeOf((*table)(nil))

var indexScenario = scenario{
	name: "index",
	desc: "Items[CurrentIndex], with CurrentIndex itself a reactive member",
	run: func(out io.Writer) error {
		t := &table{Items: []int{6, 9, 7, 10, 4, 6, 3}, CurrentIndex: 0}

		items := member(param(tablePtrType, 0), "Items", reflect.TypeOf([]int(nil)))
		idx := member(param(tablePtrType, 0), "CurrentIndex", intType)
		body := &expr.Index{Target: items, Args: []expr.Node{idx}, Typ: intType}
		lambda := &expr.Lambda{Parameters: []*expr.Parameter{param(tablePtrType, 0)}, Body: body}

		h, err := activeexpr.Create(lambda, []any{t}, nil)
		if err != nil {
			return err
		}
		defer h.Release()

		unsub := trace(out, "index", h)
		defer unsub()

		// target sequence [6, 9, 7, 10, 4, 6]
		t.SetCurrentIndex(1)
		t.SetCurrentIndex(2)
		t.SetCurrentIndex(3)
		t.SetCurrentIndex(4)
		t.SetCurrentIndex(5)
		return nil
	},
}
