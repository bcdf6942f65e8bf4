// Package errs defines the fault kinds a node can adopt (spec §7). Faults
// are ordinary Go errors that additionally implement Fault so callers can
// branch on Kind via errors.As, in the shape of cue/errors.Error.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies one of the fault categories of §7.
type Kind uint8

const (
	// NullTarget: an instance member was read through a nil target.
	NullTarget Kind = iota
	// NotSupportedExpression: the input tree contains a shape outside the
	// closed set in expr.Kind, or a shape rejected by a specific rule
	// (e.g. MemberInit over a non-pointer struct type).
	NotSupportedExpression
	// ArgumentOutOfRange: an operator has no rendering mapping, or a
	// reflective call received the wrong argument count/type.
	ArgumentOutOfRange
	// ReflectionError: a wrapped panic/error from a field/method/ctor
	// access performed via reflection.
	ReflectionError
	// ConversionError: a user-supplied Coalesce conversion function
	// returned an error or panicked.
	ConversionError
	// OperatorError: overflow, divide-by-zero, or another arithmetic
	// failure from a checked or ordinary operator.
	OperatorError
)

func (k Kind) String() string {
	switch k {
	case NullTarget:
		return "NullTarget"
	case NotSupportedExpression:
		return "NotSupportedExpression"
	case ArgumentOutOfRange:
		return "ArgumentOutOfRange"
	case ReflectionError:
		return "ReflectionError"
	case ConversionError:
		return "ConversionError"
	case OperatorError:
		return "OperatorError"
	default:
		return "Unknown"
	}
}

// Fault is the error type every node fault satisfies.
type Fault struct {
	Kind    Kind
	Message string
	Cause   error
}

func New(kind Kind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, cause error, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (f *Fault) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error { return f.Cause }

// KindOf extracts the Kind of err if it is (or wraps) a *Fault, reporting
// ok=false otherwise.
func KindOf(err error) (kind Kind, ok bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return 0, false
}
