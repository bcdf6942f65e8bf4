// Package activeexpr turns a declarative expression tree over observable
// source objects into a live, subscription-based value (spec §1-§6):
// Create compiles lambda.Body into a running dataflow graph sharing
// instances with every other Create call of structurally equal shape,
// equal argument identities, and equal Options (§4.4, §8 "cache
// idempotence").
//
// Grounded on cuelang.org/go's top-level cue.Context/cue.Value split: a
// small façade over an internal compiled representation, with the
// expensive graph-construction machinery kept in internal/ packages.
package activeexpr

import (
	"fmt"
	"reflect"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/cache"
	"activeexpr.dev/go/internal/compile"
)

// sharedCache is the process-wide instance cache (§9 "model every node...
// rather than a global graph", §4.4 C6). One cache suffices for the whole
// process: entries are already partitioned by expression digest, options
// key, and argument identity, so unrelated Create calls never collide, and
// structurally identical calls share a subgraph (§8 "cache idempotence").
var sharedCache = cache.New()

// currentOptimizer backs the process-wide C3 hook described in §6 ("a
// process-wide optimizer hook slot accepts a tree-rewriter function").
var currentOptimizer compile.Optimizer

// SetOptimizer installs the process-wide C3 rewrite hook, or clears it when
// opt is nil.
func SetOptimizer(opt compile.Optimizer) { currentOptimizer = opt }

// Create compiles lambda with args bound to its parameters (by ordinal) and
// returns a live Handle. opts may be nil, equivalent to NewOptions().
func Create(lambda *expr.Lambda, args []any, opts *Options) (*Handle, error) {
	if len(args) != len(lambda.Parameters) {
		return nil, fmt.Errorf("activeexpr: lambda expects %d arguments, got %d", len(lambda.Parameters), len(args))
	}
	body := lambda.Body
	if currentOptimizer != nil {
		body = currentOptimizer(body)
	}
	return createBody(body, args, opts)
}

// CreateWithOptions is the §6 create_with_options entry point: the lambda
// tree and its options travel together (e.g. when a caller has stored a
// prebuilt options value alongside an expression template).
func CreateWithOptions(lambda *expr.Lambda, args []any, opts *Options) (*Handle, error) {
	return Create(lambda, args, opts)
}

func createBody(body expr.Node, args []any, opts *Options) (*Handle, error) {
	internalOpts := opts.internal()
	argsKey := argumentIdentityKey(args)
	build := compile.NewBuilder(compile.Args(args), internalOpts)

	ref, err := sharedCache.Acquire(body, internalOpts, argsKey, build)
	if err != nil {
		return nil, err
	}
	return &Handle{
		ref:     ref,
		body:    body,
		args:    args,
		opts:    opts,
		argsKey: argsKey,
	}, nil
}

// argumentIdentityKey builds a string distinguishing this call's bound
// arguments by identity (pointer address for reference types, value for
// everything else), so two Create calls over the same expression shape but
// different source objects never share a node (§4.4: "equal argument
// identities").
func argumentIdentityKey(args []any) string {
	s := ""
	for i, a := range args {
		s += fmt.Sprintf("%d:%s;", i, identityOf(a))
	}
	return s
}

func identityOf(v any) string {
	if v == nil {
		return "nil"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Sprintf("%s@%x", rv.Type(), rv.Pointer())
	case reflect.Slice:
		return fmt.Sprintf("%s@%x,%d", rv.Type(), rv.Pointer(), rv.Len())
	default:
		return fmt.Sprintf("%s=%v", rv.Type(), v)
	}
}
