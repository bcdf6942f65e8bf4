package activeexpr

import (
	"reflect"

	"activeexpr.dev/go/internal/disposal"
	"activeexpr.dev/go/internal/option"
)

// Options is the public wrapper around a disposal Registry (§4.7) plus any
// other per-Create-call configuration. The zero value is ready to use.
//
// Grounded on cuelang.org/go's cue.Context "runtime options" pattern: a
// small, copyable value type that the internal packages treat as an opaque
// equality/key source (internal/option.Options already implements the
// comparison and cache-key logic; this type only adds the public
// constructors).
type Options struct {
	inner *option.Options
}

// NewOptions returns an empty Options value with no disposal registrations.
func NewOptions() *Options {
	return &Options{inner: option.New()}
}

// WithExpressionValueDisposal returns a copy of o that additionally disposes
// any value produced by a Member or Index access matching pattern (§4.7).
func (o *Options) WithExpressionValueDisposal(pattern disposal.ExamplePattern) *Options {
	next := o.clone()
	next.inner.AddExpressionValueDisposal(pattern)
	return next
}

// WithConstructedTypeDisposal returns a copy of o that additionally disposes
// any value of type t produced by a New expression (§4.7).
func (o *Options) WithConstructedTypeDisposal(t reflect.Type) *Options {
	next := o.clone()
	next.inner.AddConstructedTypeDisposal(t)
	return next
}

func (o *Options) clone() *Options {
	if o == nil || o.inner == nil {
		return &Options{inner: option.New()}
	}
	return &Options{inner: o.inner.Clone()}
}

// internal adapts o to the internal/option representation consumed by
// internal/compile and internal/cache. A nil *Options compiles as an empty
// registry.
func (o *Options) internal() *option.Options {
	if o == nil || o.inner == nil {
		return option.New()
	}
	return o.inner
}
