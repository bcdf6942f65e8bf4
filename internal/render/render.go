// Package render implements the C9 debug-string renderer (spec §6): walking
// an expr.Node tree back into source-like text, with every subexpression
// annotated by its current runtime value or fault.
//
// Grounded on cue/internal/core/debug's recursive pretty-printer: a single
// switch over the node's shape, string-building bottom-up, with no
// intermediate AST.
package render

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kr/pretty"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/errs"
	"activeexpr.dev/go/internal/node"
)

// Lookup resolves the already-built runtime node for an expr.Node
// subexpression, so its current value can be rendered alongside the
// expression text. Renderers never construct nodes themselves.
type Lookup func(n expr.Node) (node.Node, bool)

// Node renders root and every descendant, per §6. Each subexpression that
// lookup finds a node for is annotated with its current value (or fault);
// one without a node (such as an unselected short-circuit branch) gets no
// annotation.
func Node(root expr.Node, lookup Lookup) string {
	return render(root, lookup)
}

func render(n expr.Node, lookup Lookup) string {
	text := renderShape(n, lookup)
	return text + valueSuffix(n, lookup)
}

func valueSuffix(n expr.Node, lookup Lookup) string {
	rn, ok := lookup(n)
	if !ok {
		return ""
	}
	if fault := rn.Fault(); fault != nil {
		kind, ok := errs.KindOf(fault)
		msg := fault.Error()
		if ok {
			msg = strings.TrimPrefix(msg, kind.String()+": ")
		}
		return fmt.Sprintf(" /* [%s: %s] */", kind, msg)
	}
	return fmt.Sprintf(" /* %s */", formatValue(rn.Value()))
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case time.Duration:
		return x.String()
	case uuid.UUID:
		return x.String()
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprintf("%v", x)
	default:
		// Structs, slices and maps reach here without a dedicated case
		// above; pretty.Sprint gives a readable field-by-field rendering
		// instead of %v's package-qualified, unlabeled dump.
		return strings.TrimSpace(pretty.Sprint(x))
	}
}

func renderShape(n expr.Node, lookup Lookup) string {
	switch x := n.(type) {
	case *expr.Constant:
		return fmt.Sprintf("{%s}", formatValue(x.Value))

	case *expr.Parameter:
		if x.Name != "" {
			return x.Name
		}
		return fmt.Sprintf("$%d", x.Ordinal)

	case *expr.Member:
		return fmt.Sprintf("%s.%s", render(x.Target, lookup), x.Descriptor)

	case *expr.Index:
		return fmt.Sprintf("%s[%s]", render(x.Target, lookup), renderArgs(x.Args, lookup))

	case *expr.Unary:
		return renderUnary(x, lookup)

	case *expr.Binary:
		return renderBinary(x, lookup)

	case *expr.Conditional:
		return fmt.Sprintf("(%s ? %s : %s)", render(x.Test, lookup), render(x.IfTrue, lookup), render(x.IfFalse, lookup))

	case *expr.Coalesce:
		return fmt.Sprintf("(%s ?? %s)", render(x.Left, lookup), render(x.Right, lookup))

	case *expr.AndAlso:
		return fmt.Sprintf("(%s && %s)", render(x.Left, lookup), render(x.Right, lookup))

	case *expr.OrElse:
		return fmt.Sprintf("(%s || %s)", render(x.Left, lookup), render(x.Right, lookup))

	case *expr.TypeIs:
		return fmt.Sprintf("(%s is %s)", render(x.Operand, lookup), x.Candidate)

	case *expr.Call:
		if x.Target == nil {
			return fmt.Sprintf("%s(%s)", x.Descriptor, renderArgs(x.Args, lookup))
		}
		return fmt.Sprintf("%s.%s(%s)", render(x.Target, lookup), x.Descriptor, renderArgs(x.Args, lookup))

	case *expr.Invoke:
		return fmt.Sprintf("%s(%s)", render(x.Target, lookup), renderArgs(x.Args, lookup))

	case *expr.New:
		return renderNew(x, lookup)

	case *expr.NewArrayInit:
		return fmt.Sprintf("new %s[]{%s}", x.ElementType, renderArgs(x.Items, lookup))

	case *expr.MemberInit:
		return renderMemberInit(x, lookup)

	case *expr.Lambda:
		return fmt.Sprintf("(%s) => %s", renderParams(x.Parameters), render(x.Body, lookup))

	default:
		return fmt.Sprintf("<%s>", n.Kind())
	}
}

func renderParams(params []*expr.Parameter) string {
	names := make([]string, len(params))
	for i, p := range params {
		if p.Name != "" {
			names[i] = p.Name
		} else {
			names[i] = fmt.Sprintf("$%d", p.Ordinal)
		}
	}
	return strings.Join(names, ", ")
}

func renderArgs(args []expr.Node, lookup Lookup) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = render(a, lookup)
	}
	return strings.Join(parts, ", ")
}

func renderUnary(x *expr.Unary, lookup Lookup) string {
	operand := render(x.Operand, lookup)
	switch x.Op {
	case expr.Negate:
		return fmt.Sprintf("(-%s)", operand)
	case expr.NegateChecked:
		return fmt.Sprintf("checked(-%s)", operand)
	case expr.Plus:
		return fmt.Sprintf("(+%s)", operand)
	case expr.Not:
		if x.Operand.Type().Kind() == reflect.Bool {
			return fmt.Sprintf("(!%s)", operand)
		}
		return fmt.Sprintf("(~%s)", operand)
	case expr.Convert:
		return fmt.Sprintf("((%s)%s)", x.Typ, operand)
	case expr.ConvertChecked:
		return fmt.Sprintf("checked((%s)%s)", x.Typ, operand)
	case expr.Increment:
		return fmt.Sprintf("(%s + 1)", operand)
	case expr.Decrement:
		return fmt.Sprintf("(%s - 1)", operand)
	default:
		return fmt.Sprintf("(%s %s)", x.Op, operand)
	}
}

func renderBinary(x *expr.Binary, lookup Lookup) string {
	left, right := render(x.Left, lookup), render(x.Right, lookup)
	if x.Op == expr.Power {
		if x.Op.Checked() {
			return fmt.Sprintf("checked(Math.Pow(%s, %s))", left, right)
		}
		return fmt.Sprintf("Math.Pow(%s, %s)", left, right)
	}
	text := fmt.Sprintf("(%s %s %s)", left, x.Op.Symbol(), right)
	if x.Op.Checked() {
		return "checked" + text
	}
	return text
}

// renderNew special-cases the well-known BCL-ish value constructors named in
// §6 ("canonical constructor renderings for date/time/duration/guid"),
// falling back to a generic `new Name(args)` form otherwise.
func renderNew(x *expr.New, lookup Lookup) string {
	switch x.Typ {
	case reflect.TypeOf(time.Time{}):
		return fmt.Sprintf("new DateTime(%s)", renderArgs(x.Args, lookup))
	case reflect.TypeOf(time.Duration(0)):
		return fmt.Sprintf("new TimeSpan(%s)", renderArgs(x.Args, lookup))
	case reflect.TypeOf(uuid.UUID{}):
		return fmt.Sprintf("new Guid(%s)", renderArgs(x.Args, lookup))
	default:
		return fmt.Sprintf("new %s(%s)", x.Typ, renderArgs(x.Args, lookup))
	}
}

func renderMemberInit(x *expr.MemberInit, lookup Lookup) string {
	parts := make([]string, len(x.Bindings))
	for i, b := range x.Bindings {
		parts[i] = fmt.Sprintf("%s = %s", b.Descriptor, render(b.Value, lookup))
	}
	return fmt.Sprintf("%s{%s}", renderNew(x.New, lookup), strings.Join(parts, ", "))
}
