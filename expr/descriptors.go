package expr

import "reflect"

// MemberDescriptor identifies a field or zero-argument getter method read by
// a Member or written by a MemberInit Binding. Exactly one of FieldName or
// MethodName is set.
type MemberDescriptor struct {
	FieldName  string
	MethodName string
	Static     bool // true for a package-level var/func member, ignoring Target
}

func (d MemberDescriptor) String() string {
	if d.MethodName != "" {
		return d.MethodName + "()"
	}
	return d.FieldName
}

// IndexerDescriptor identifies how to read Target[args...]. Name is the
// struct method used when Target is not a native Go map/slice/array (the
// source's notion of a user-defined indexer); when Name is empty the engine
// falls back to native map/slice/array indexing via reflection.
type IndexerDescriptor struct {
	Name string
}

// MethodDescriptor identifies a method invoked by Call, or a user-defined
// operator/conversion method referenced from Unary/Binary/Coalesce. Go has
// no instance-method-by-reflection-metadata-only dispatch across arbitrary
// receiver types the way a user-defined operator overload would need, so a
// user-defined operator/conversion is modeled the same way New models a
// constructor: a plain function value.
type MethodDescriptor struct {
	Name       string
	ParamTypes []reflect.Type
	ResultType reflect.Type
	Func       reflect.Value // set only for user-defined operator/conversion methods
}

func (d MethodDescriptor) String() string { return d.Name }

// ConstructorDescriptor identifies the constructor function used by New. In
// Go there is no language-level "new T(args)" for arbitrary types, so a
// constructor is modeled as a plain function value returning Typ (or
// (Typ, error)).
type ConstructorDescriptor struct {
	Name string
	Func reflect.Value
}
