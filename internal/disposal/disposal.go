// Package disposal implements the options value-disposal registry (spec
// §4.7, C7): predicates selecting expression shapes or constructed types
// whose produced values must be disposed when replaced or on teardown.
//
// Matching is grounded on the closedness-predicate style of
// internal/core/adt/closed.go: a fixed set of registered shapes is checked
// against each candidate, and the first match wins.
package disposal

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/mpvl/unique"

	"activeexpr.dev/go/expr"
	"activeexpr.dev/go/internal/logz"
)

// Disposer is satisfied by a produced value that knows how to release
// itself synchronously. Dispose also handles AsyncDisposer and io.Closer
// values.
type Disposer interface {
	Dispose() error
}

// AsyncDisposer is satisfied by a produced value whose disposal should run
// off-thread (§4.7, §5 "model disposal as a fire-and-forget task").
type AsyncDisposer interface {
	DisposeAsync(ctx context.Context) error
}

// ExamplePattern is a predicate over an expression node's shape: it reports
// whether the value produced by n should be disposed when replaced.
type ExamplePattern func(n expr.Node) bool

// Registry holds the two kinds of disposal predicate from §4.7.
type Registry struct {
	valuePatterns   []ExamplePattern
	constructedType map[reflect.Type]struct{}
	orderedNames    []string // type names, sorted+deduped for deterministic debug listing
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructedType: map[reflect.Type]struct{}{}}
}

// Clone returns an independent copy so a derived Options value doesn't share
// mutable slices with its source.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return NewRegistry()
	}
	out := NewRegistry()
	out.valuePatterns = append(out.valuePatterns, r.valuePatterns...)
	for t := range r.constructedType {
		out.constructedType[t] = struct{}{}
	}
	out.orderedNames = append(out.orderedNames, r.orderedNames...)
	return out
}

// AddExpressionValueDisposal registers an example-expression-shaped pattern:
// any node for which match returns true has its produced value disposed on
// replacement or teardown.
func (r *Registry) AddExpressionValueDisposal(match ExamplePattern) {
	r.valuePatterns = append(r.valuePatterns, match)
}

// AddConstructedTypeDisposal registers t: any New/MemberInit whose
// constructed type is t has its product disposed on rebuild or teardown.
// Registering the same type twice collapses to one entry.
func (r *Registry) AddConstructedTypeDisposal(t reflect.Type) {
	if _, ok := r.constructedType[t]; ok {
		return
	}
	r.constructedType[t] = struct{}{}
	r.orderedNames = append(r.orderedNames, t.String())
	unique.Strings(&r.orderedNames)
}

// RegisteredTypeNames returns the sorted, de-duplicated names of every
// constructed type registered for disposal, for debug/introspection use.
func (r *Registry) RegisteredTypeNames() []string {
	if r == nil {
		return nil
	}
	return r.orderedNames
}

// ShouldDispose reports whether the value produced by n matches a
// registered expression-value pattern.
func (r *Registry) ShouldDispose(n expr.Node) bool {
	if r == nil {
		return false
	}
	for _, p := range r.valuePatterns {
		if p(n) {
			return true
		}
	}
	return false
}

// ShouldDisposeType reports whether values of constructed type t should be
// disposed (New/MemberInit, §4.5.11).
func (r *Registry) ShouldDisposeType(t reflect.Type) bool {
	if r == nil {
		return false
	}
	_, ok := r.constructedType[t]
	return ok
}

// CacheKey returns a stable identity string for r, used by option.Key to
// build instance-cache keys. Two registries with the same set of
// constructed-type names and the same value-pattern function pointers,
// in the same registration order, produce the same key.
func (r *Registry) CacheKey() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, n := range r.orderedNames {
		b.WriteString("T:")
		b.WriteString(n)
		b.WriteByte(';')
	}
	for _, p := range r.valuePatterns {
		fmt.Fprintf(&b, "P:%x;", reflect.ValueOf(p).Pointer())
	}
	return b.String()
}

// Dispose runs disposal of v if it implements Disposer or AsyncDisposer,
// preferring the async path when both are available so teardown never
// blocks the recompute path (§4.7, §5). Errors are logged, never returned:
// "disposal errors are logged... but do not re-fault the node".
func Dispose(ctx context.Context, v any) {
	if v == nil {
		return
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return
	}
	if ad, ok := v.(AsyncDisposer); ok {
		go func() {
			if err := ad.DisposeAsync(ctx); err != nil {
				logz.DisposalError(ctx, err, "async")
			}
		}()
		return
	}
	if d, ok := v.(Disposer); ok {
		if err := d.Dispose(); err != nil {
			logz.DisposalError(ctx, err, "sync")
		}
		return
	}
	if c, ok := v.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logz.DisposalError(ctx, err, "close")
		}
	}
}
