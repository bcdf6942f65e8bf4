// Package canon implements structural equality and hashing over expr.Node
// (spec §4.2, C2). Equality ignores parameter identity (two lambdas with
// alpha-equivalent parameters compare equal) and is otherwise structural:
// same variant, same types, same operator, same referenced
// member/method/constructor descriptors, and children pairwise equal.
// Hashing follows the same recursion over a canonical byte encoding
// (grounded on the feature-encoding discipline of
// internal/core/adt/feature.go, adapted from CUE's interned-label encoding
// to this engine's expression-shape encoding), so equal nodes produce equal
// digests. Equal is a separate recursion, and the encoding omits some
// fields Equal compares (user-defined method functions, for one), so
// unequal nodes can share a digest.
package canon

import (
	"encoding/binary"
	"fmt"
	"hash"
	"reflect"

	"github.com/opencontainers/go-digest"

	"activeexpr.dev/go/expr"
)

// Equal reports whether a and b are structurally equal, alpha-renaming
// insensitive.
func Equal(a, b expr.Node) bool {
	return equal(a, b)
}

// Digest returns the canonical content digest of n, used as an instance
// cache key component. Equal nodes always produce equal digests.
func Digest(n expr.Node) digest.Digest {
	d := digest.Canonical.Digester()
	w := d.Hash()
	encode(w, n)
	return d.Digest()
}

func equal(a, b expr.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if a.Type() != b.Type() {
		return false
	}
	switch x := a.(type) {
	case *expr.Constant:
		y := b.(*expr.Constant)
		return ValueEqual(x.Value, y.Value)
	case *expr.Parameter:
		y := b.(*expr.Parameter)
		return x.Ordinal == y.Ordinal
	case *expr.Member:
		y := b.(*expr.Member)
		return x.Descriptor == y.Descriptor && equal(x.Target, y.Target)
	case *expr.Index:
		y := b.(*expr.Index)
		return x.Descriptor == y.Descriptor && equal(x.Target, y.Target) && equalSlice(x.Args, y.Args)
	case *expr.Unary:
		y := b.(*expr.Unary)
		return x.Op == y.Op && methodEqual(x.Method, y.Method) && equal(x.Operand, y.Operand)
	case *expr.Binary:
		y := b.(*expr.Binary)
		return x.Op == y.Op && methodEqual(x.Method, y.Method) && equal(x.Left, y.Left) && equal(x.Right, y.Right)
	case *expr.Conditional:
		y := b.(*expr.Conditional)
		return equal(x.Test, y.Test) && equal(x.IfTrue, y.IfTrue) && equal(x.IfFalse, y.IfFalse)
	case *expr.Coalesce:
		y := b.(*expr.Coalesce)
		return equal(x.Left, y.Left) && equal(x.Right, y.Right)
	case *expr.AndAlso:
		y := b.(*expr.AndAlso)
		return equal(x.Left, y.Left) && equal(x.Right, y.Right)
	case *expr.OrElse:
		y := b.(*expr.OrElse)
		return equal(x.Left, y.Left) && equal(x.Right, y.Right)
	case *expr.TypeIs:
		y := b.(*expr.TypeIs)
		return x.Candidate == y.Candidate && equal(x.Operand, y.Operand)
	case *expr.Call:
		y := b.(*expr.Call)
		return methodDescriptorEqual(x.Descriptor, y.Descriptor) && equal(x.Target, y.Target) && equalSlice(x.Args, y.Args)
	case *expr.Invoke:
		y := b.(*expr.Invoke)
		return equal(x.Target, y.Target) && equalSlice(x.Args, y.Args)
	case *expr.New:
		y := b.(*expr.New)
		return x.Descriptor.Name == y.Descriptor.Name && equalSlice(x.Args, y.Args)
	case *expr.NewArrayInit:
		y := b.(*expr.NewArrayInit)
		return x.ElementType == y.ElementType && equalSlice(x.Items, y.Items)
	case *expr.MemberInit:
		y := b.(*expr.MemberInit)
		if !equal(x.New, y.New) || len(x.Bindings) != len(y.Bindings) {
			return false
		}
		for i := range x.Bindings {
			if x.Bindings[i].Descriptor != y.Bindings[i].Descriptor {
				return false
			}
			if !equal(x.Bindings[i].Value, y.Bindings[i].Value) {
				return false
			}
		}
		return true
	case *expr.Lambda:
		y := b.(*expr.Lambda)
		if len(x.Parameters) != len(y.Parameters) {
			return false
		}
		for i := range x.Parameters {
			if x.Parameters[i].Type() != y.Parameters[i].Type() {
				return false
			}
		}
		return equal(x.Body, y.Body)
	default:
		return false
	}
}

func equalSlice(a, b []expr.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func methodEqual(a, b *expr.MethodDescriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	return methodDescriptorEqual(*a, *b)
}

// methodDescriptorEqual compares two MethodDescriptor values field-by-field.
// MethodDescriptor.ParamTypes is a slice, so the struct itself is not
// comparable with ==; Func is compared by underlying code pointer. (A New's
// ConstructorDescriptor, by contrast, is compared by Name only.)
func methodDescriptorEqual(a, b expr.MethodDescriptor) bool {
	if a.Name != b.Name || a.ResultType != b.ResultType || len(a.ParamTypes) != len(b.ParamTypes) {
		return false
	}
	for i := range a.ParamTypes {
		if a.ParamTypes[i] != b.ParamTypes[i] {
			return false
		}
	}
	return funcPointer(a.Func) == funcPointer(b.Func)
}

func funcPointer(v reflect.Value) uintptr {
	if !v.IsValid() {
		return 0
	}
	return v.Pointer()
}

// ValueEqual implements the "value equality rule of their runtime type"
// (§4.2): comparable types compare with ==, everything else falls back to
// reflect.DeepEqual (covers slices/maps/structs holding those).
func ValueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// encode writes a canonical byte representation of n to w. The encoding is
// purely structural and alpha-invariant: Parameter writes its Ordinal, never
// its advisory Name.
func encode(w hash.Hash, n expr.Node) {
	if n == nil {
		w.Write([]byte{0xff})
		return
	}
	writeU8(w, uint8(n.Kind()))
	writeString(w, n.Type().String())

	switch x := n.(type) {
	case *expr.Constant:
		fmt.Fprintf(w, "%#v", x.Value)
	case *expr.Parameter:
		writeU64(w, uint64(x.Ordinal))
	case *expr.Member:
		writeString(w, x.Descriptor.String())
		encode(w, x.Target)
	case *expr.Index:
		writeString(w, x.Descriptor.Name)
		encode(w, x.Target)
		for _, a := range x.Args {
			encode(w, a)
		}
	case *expr.Unary:
		writeU8(w, uint8(x.Op))
		encode(w, x.Operand)
	case *expr.Binary:
		writeU8(w, uint8(x.Op))
		encode(w, x.Left)
		encode(w, x.Right)
	case *expr.Conditional:
		encode(w, x.Test)
		encode(w, x.IfTrue)
		encode(w, x.IfFalse)
	case *expr.Coalesce:
		encode(w, x.Left)
		encode(w, x.Right)
	case *expr.AndAlso:
		encode(w, x.Left)
		encode(w, x.Right)
	case *expr.OrElse:
		encode(w, x.Left)
		encode(w, x.Right)
	case *expr.TypeIs:
		writeString(w, x.Candidate.String())
		encode(w, x.Operand)
	case *expr.Call:
		writeString(w, x.Descriptor.Name)
		encode(w, x.Target)
		for _, a := range x.Args {
			encode(w, a)
		}
	case *expr.Invoke:
		encode(w, x.Target)
		for _, a := range x.Args {
			encode(w, a)
		}
	case *expr.New:
		writeString(w, x.Descriptor.Name)
		for _, a := range x.Args {
			encode(w, a)
		}
	case *expr.NewArrayInit:
		writeString(w, x.ElementType.String())
		for _, a := range x.Items {
			encode(w, a)
		}
	case *expr.MemberInit:
		encode(w, x.New)
		for _, b := range x.Bindings {
			writeString(w, b.Descriptor.String())
			encode(w, b.Value)
		}
	case *expr.Lambda:
		writeU64(w, uint64(len(x.Parameters)))
		encode(w, x.Body)
	}
}

func writeU8(w hash.Hash, v uint8) { w.Write([]byte{v}) }

func writeU64(w hash.Hash, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.Write(buf[:])
}

func writeString(w hash.Hash, s string) {
	writeU64(w, uint64(len(s)))
	w.Write([]byte(s))
}
