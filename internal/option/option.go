// Package option is the shared leaf package for the C7 options object, kept
// dependency-free of the node/compile/cache packages (which all depend on
// it) to avoid import cycles, the same way cue/internal/core/adt depends
// downward on cue/token without token depending back up.
package option

import (
	"reflect"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/disposal"
)

// Options bundles the disposal predicates of §4.7. The zero value is ready
// to use (no disposal registered).
type Options struct {
	Registry *disposal.Registry
}

// New returns an empty Options.
func New() *Options {
	return &Options{Registry: disposal.NewRegistry()}
}

// AddExpressionValueDisposal registers match as described in §4.7/C7.
func (o *Options) AddExpressionValueDisposal(match disposal.ExamplePattern) *Options {
	if o.Registry == nil {
		o.Registry = disposal.NewRegistry()
	}
	o.Registry.AddExpressionValueDisposal(match)
	return o
}

// AddConstructedTypeDisposal registers t as described in §4.7/C7.
func (o *Options) AddConstructedTypeDisposal(t reflect.Type) *Options {
	if o.Registry == nil {
		o.Registry = disposal.NewRegistry()
	}
	o.Registry.AddConstructedTypeDisposal(t)
	return o
}

// Clone returns a defensive copy of o so a caller can derive a new Options
// from an existing one without the two sharing mutable predicate slices.
// The predicate functions and reflect.Types themselves are shared; only the
// registry's own slices/maps are copied (disposal.Registry.Clone).
func (o *Options) Clone() *Options {
	if o == nil {
		return New()
	}
	return &Options{Registry: o.Registry.Clone()}
}

// key returns a stable identity string for o, used as part of the instance
// cache key (§4.4: "option equality treats two options objects as equal
// when they enumerate identical disposal predicates"). Predicate functions
// are compared by code pointer, which is the only identity Go exposes for a
// func value; this is sufficient because the contract callers rely on is
// "the same Options value (or an Equal one) returns the same cache entry",
// not general function equality.
func key(o *Options) string {
	if o == nil || o.Registry == nil {
		return ""
	}
	return o.Registry.CacheKey()
}

// Equal reports whether a and b describe the same disposal behavior.
func Equal(a, b *Options) bool {
	return key(a) == key(b)
}

// Key exposes key for the cache package.
func Key(o *Options) string { return key(o) }

// MatchesExample is a convenience constructor for a disposal.ExamplePattern
// that matches any node with the same Kind and result Type as example,
// mirroring how callers of the original engine supply "an example lambda"
// whose root expression shape is the pattern. Nothing else about the
// example (its member, target or arguments) is compared.
func MatchesExample(example expr.Node) disposal.ExamplePattern {
	kind := example.Kind()
	typ := example.Type()
	return func(n expr.Node) bool {
		return n.Kind() == kind && n.Type() == typ
	}
}
