// Package compile implements C4: walking an expr.Node into the internal/node
// runtime graph (spec §4.3). Grounded on the two-phase shell-then-wire
// discipline of cue/internal/core/compile.compile plus adt vertex
// construction (build the unevaluated shape, wire every child, only then
// evaluate) — simplified here to "build each node's children first, then
// construct the node itself", since internal/node's constructors already
// compute their own initial state the moment they're wired (there is no
// separate evaluation pass to schedule).
package compile

import (
	"reflect"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/cache"
	"activeexpr.dev/go/internal/errs"
	"activeexpr.dev/go/internal/node"
	"activeexpr.dev/go/internal/option"
)

// Optimizer is the optional C3 rewrite hook: given the root of a lambda
// body, it returns a (possibly) rewritten tree to build instead. A nil
// Optimizer compiles the tree unchanged.
type Optimizer func(root expr.Node) expr.Node

// Args binds the Ordinal-th parameter of a Lambda to a concrete runtime
// value.
type Args []any

// NewBuilder returns a cache.Builder closed over the top-level invocation's
// bound arguments and options, so that building a Parameter leaf (the one
// expr.Kind compile can't resolve recursively — it terminates the
// recursion) can look up the concrete value for its Ordinal, and so every
// node can precompute its own disposal-registry match (§4.7) once, at
// compile time, from the registry in opts.
func NewBuilder(args Args, opts *option.Options) cache.Builder {
	return func(n expr.Node, resolve cache.Resolver) (node.Node, error) {
		return build(n, args, opts, resolve)
	}
}

func matchesRegistry(opts *option.Options, n expr.Node) func() bool {
	if opts == nil || opts.Registry == nil {
		return func() bool { return false }
	}
	v := opts.Registry.ShouldDispose(n)
	return func() bool { return v }
}

func matchesConstructedType(opts *option.Options, t reflect.Type) func() bool {
	if opts == nil || opts.Registry == nil {
		return func() bool { return false }
	}
	v := opts.Registry.ShouldDisposeType(t)
	return func() bool { return v }
}

func build(n expr.Node, args Args, opts *option.Options, resolve cache.Resolver) (node.Node, error) {
	switch x := n.(type) {
	case *expr.Constant:
		return node.NewConstant(x.Typ, x.Value), nil
	case *expr.Parameter:
		if x.Ordinal < 0 || x.Ordinal >= len(args) {
			return nil, errs.New(errs.ArgumentOutOfRange, "parameter ordinal %d out of range [0,%d)", x.Ordinal, len(args))
		}
		return node.NewParameter(x.Typ, args[x.Ordinal]), nil

	case *expr.Member:
		target, err := resolve(x.Target)
		if err != nil {
			return nil, err
		}
		return node.NewMember(x.Typ, target, x.Descriptor.FieldName, x.Descriptor.MethodName, matchesRegistry(opts, x)), nil

	case *expr.Index:
		target, err := resolve(x.Target)
		if err != nil {
			return nil, err
		}
		argRefs, err := resolveAll(x.Args, resolve)
		if err != nil {
			releaseAll(argRefs)
			return nil, err
		}
		return node.NewIndex(x.Typ, target, argRefs, x.Descriptor.Name, matchesRegistry(opts, x)), nil

	case *expr.Unary:
		operand, err := resolve(x.Operand)
		if err != nil {
			return nil, err
		}
		return node.NewUnary(x.Typ, x.Op, operand, x.Method), nil

	case *expr.Binary:
		left, err := resolve(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := resolve(x.Right)
		if err != nil {
			left.Release()
			return nil, err
		}
		return node.NewBinary(x.Typ, x.Op, left, right, x.Method), nil

	case *expr.Conditional:
		test, err := resolve(x.Test)
		if err != nil {
			return nil, err
		}
		ifTrue, ifFalse := x.IfTrue, x.IfFalse
		return node.NewConditional(x.Typ, test,
			func() (node.Ref, error) { return resolve(ifTrue) },
			func() (node.Ref, error) { return resolve(ifFalse) },
		), nil

	case *expr.Coalesce:
		left, err := resolve(x.Left)
		if err != nil {
			return nil, err
		}
		right := x.Right
		return node.NewCoalesce(x.Typ, left, func() (node.Ref, error) { return resolve(right) }, x.Conversion), nil

	case *expr.AndAlso:
		left, err := resolve(x.Left)
		if err != nil {
			return nil, err
		}
		right := x.Right
		return node.NewAndAlso(left, func() (node.Ref, error) { return resolve(right) }), nil

	case *expr.OrElse:
		left, err := resolve(x.Left)
		if err != nil {
			return nil, err
		}
		right := x.Right
		return node.NewOrElse(left, func() (node.Ref, error) { return resolve(right) }), nil

	case *expr.TypeIs:
		operand, err := resolve(x.Operand)
		if err != nil {
			return nil, err
		}
		return node.NewTypeIs(operand, x.Candidate), nil

	case *expr.Call:
		var target node.Ref
		if x.Target != nil {
			var err error
			target, err = resolve(x.Target)
			if err != nil {
				return nil, err
			}
		}
		argRefs, err := resolveAll(x.Args, resolve)
		if err != nil {
			if x.Target != nil {
				target.Release()
			}
			releaseAll(argRefs)
			return nil, err
		}
		return node.NewCall(x.Typ, target, x.Descriptor, argRefs), nil

	case *expr.Invoke:
		target, err := resolve(x.Target)
		if err != nil {
			return nil, err
		}
		argRefs, err := resolveAll(x.Args, resolve)
		if err != nil {
			target.Release()
			releaseAll(argRefs)
			return nil, err
		}
		return node.NewInvoke(x.Typ, target, argRefs), nil

	case *expr.New:
		argRefs, err := resolveAll(x.Args, resolve)
		if err != nil {
			releaseAll(argRefs)
			return nil, err
		}
		return node.NewNew(x.Typ, x.Descriptor, argRefs, matchesConstructedType(opts, x.Typ)), nil

	case *expr.NewArrayInit:
		itemRefs, err := resolveAll(x.Items, resolve)
		if err != nil {
			releaseAll(itemRefs)
			return nil, err
		}
		return node.NewNewArrayInit(x.ElementType, itemRefs), nil

	case *expr.MemberInit:
		if err := checkMemberInitType(x.Typ); err != nil {
			return nil, err
		}
		newRef, err := resolve(x.New)
		if err != nil {
			return nil, err
		}
		descriptors := make([]expr.MemberDescriptor, len(x.Bindings))
		bindingExprs := make([]expr.Node, len(x.Bindings))
		for i, b := range x.Bindings {
			descriptors[i] = b.Descriptor
			bindingExprs[i] = b.Value
		}
		bindingRefs, err := resolveAll(bindingExprs, resolve)
		if err != nil {
			newRef.Release()
			releaseAll(bindingRefs)
			return nil, err
		}
		return node.NewMemberInit(x.Typ, newRef, descriptors, bindingRefs), nil

	case *expr.Lambda:
		// A quoted lambda reached as a Call/Invoke target compiles to a
		// constant holding a Go func value, rather than a node of its own:
		// Invoke's contract is "Target's value is a plain callable"
		// (internal/node/invoke.go), so the delegate-ness lives in the
		// function value produced here, not in a dedicated lambda node
		// kind. Each call re-evaluates the lambda's body once, in a fresh
		// one-shot cache scoped to that call's own argument binding — it
		// never shares instances with the enclosing invocation, since its
		// parameters are bound to whatever the caller passes at call time,
		// not to the enclosing Create's arguments.
		fn, err := compileDelegate(x, opts)
		if err != nil {
			return nil, err
		}
		return node.NewConstant(delegateType(x), fn), nil

	default:
		return nil, errs.New(errs.NotSupportedExpression, "unsupported expression shape %s", n.Kind())
	}
}

// checkMemberInitType rejects a MemberInit whose declared type is a
// non-pointer struct: the produced value can't be mutated in place through
// reflection the way a pointer receiver can, so binding assignment would
// silently operate on a throwaway copy. This rejection is preserved as a
// hard not-supported-expression rather than "fixed" by taking an address,
// because the source expression never promised an addressable result.
func checkMemberInitType(typ reflect.Type) error {
	if typ.Kind() == reflect.Struct {
		return errs.New(errs.NotSupportedExpression, "member-init over non-pointer struct type %s is not supported", typ)
	}
	return nil
}

func resolveAll(nodes []expr.Node, resolve cache.Resolver) ([]node.Ref, error) {
	refs := make([]node.Ref, 0, len(nodes))
	for _, n := range nodes {
		ref, err := resolve(n)
		if err != nil {
			return refs, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func releaseAll(refs []node.Ref) {
	for _, r := range refs {
		if r.Release != nil {
			r.Release()
		}
	}
}
