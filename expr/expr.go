// Package expr defines the closed set of expression-tree node shapes the
// engine accepts as input. Every variant is a plain data record; there is no
// virtual-method hierarchy, only a tagged union distinguished by Node.Kind.
//
// Rewriting (an Optimizer pass) produces new records rather than mutating
// existing ones: Node values are treated as immutable once built.
package expr

import "reflect"

// Kind identifies which of the closed set of node shapes a Node is.
type Kind uint8

const (
	KindConstant Kind = iota
	KindParameter
	KindMember
	KindIndex
	KindUnary
	KindBinary
	KindConditional
	KindCoalesce
	KindAndAlso
	KindOrElse
	KindTypeIs
	KindCall
	KindInvoke
	KindNew
	KindNewArrayInit
	KindMemberInit
	KindLambda
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "Constant"
	case KindParameter:
		return "Parameter"
	case KindMember:
		return "Member"
	case KindIndex:
		return "Index"
	case KindUnary:
		return "Unary"
	case KindBinary:
		return "Binary"
	case KindConditional:
		return "Conditional"
	case KindCoalesce:
		return "Coalesce"
	case KindAndAlso:
		return "AndAlso"
	case KindOrElse:
		return "OrElse"
	case KindTypeIs:
		return "TypeIs"
	case KindCall:
		return "Call"
	case KindInvoke:
		return "Invoke"
	case KindNew:
		return "New"
	case KindNewArrayInit:
		return "NewArrayInit"
	case KindMemberInit:
		return "MemberInit"
	case KindLambda:
		return "Lambda"
	default:
		return "Unknown"
	}
}

// Node is implemented by every accepted expression shape. Type reports the
// static result type of the expression, used for default-value-on-fault and
// for is-operator/conversion semantics; it is never nil.
type Node interface {
	Kind() Kind
	Type() reflect.Type
}

// Constant is a leaf carrying a literal value of a fixed type. Two constants
// are structurally equal when their types match and their values compare
// equal under the value-equality rule of that type (see internal/canon).
type Constant struct {
	Typ   reflect.Type
	Value any
}

func (c *Constant) Kind() Kind         { return KindConstant }
func (c *Constant) Type() reflect.Type { return c.Typ }

// Parameter is a leaf referring to the Ordinal-th bound argument of the
// enclosing Lambda. Equality of two Parameters ignores their source name (if
// any was attached by a builder) and compares only Ordinal and Typ, which is
// what makes alpha-renamed lambdas structurally equal.
type Parameter struct {
	Typ     reflect.Type
	Ordinal int
	Name    string // advisory only; not part of structural equality
}

func (p *Parameter) Kind() Kind         { return KindParameter }
func (p *Parameter) Type() reflect.Type { return p.Typ }

// Member reads a field or zero-argument property from Target's value.
type Member struct {
	Target     Node
	Descriptor MemberDescriptor
	Typ        reflect.Type
}

func (m *Member) Kind() Kind         { return KindMember }
func (m *Member) Type() reflect.Type { return m.Typ }

// Index reads Target[Args...] through an indexer descriptor.
type Index struct {
	Target     Node
	Descriptor IndexerDescriptor
	Args       []Node
	Typ        reflect.Type
}

func (x *Index) Kind() Kind         { return KindIndex }
func (x *Index) Type() reflect.Type { return x.Typ }

// Unary applies Op to Operand. Method, if non-nil, names a user-defined
// operator method to use instead of the built-in semantics.
type Unary struct {
	Op      UnaryOp
	Operand Node
	Typ     reflect.Type
	Method  *MethodDescriptor
}

func (u *Unary) Kind() Kind         { return KindUnary }
func (u *Unary) Type() reflect.Type { return u.Typ }

// Binary applies Op to Left and Right. Method, if non-nil, names a
// user-defined operator method.
type Binary struct {
	Op     BinaryOp
	Left   Node
	Right  Node
	Typ    reflect.Type
	Method *MethodDescriptor
}

func (b *Binary) Kind() Kind         { return KindBinary }
func (b *Binary) Type() reflect.Type { return b.Typ }

// Conditional is `Test ? IfTrue : IfFalse`.
type Conditional struct {
	Test    Node
	IfTrue  Node
	IfFalse Node
	Typ     reflect.Type
}

func (c *Conditional) Kind() Kind         { return KindConditional }
func (c *Conditional) Type() reflect.Type { return c.Typ }

// Coalesce is `Left ?? Right`, with an optional Conversion applied to a
// non-null Left before it is adopted.
type Coalesce struct {
	Left       Node
	Right      Node
	Conversion func(any) (any, error)
	Typ        reflect.Type
}

func (c *Coalesce) Kind() Kind         { return KindCoalesce }
func (c *Coalesce) Type() reflect.Type { return c.Typ }

// AndAlso is `Left && Right`.
type AndAlso struct {
	Left  Node
	Right Node
}

func (a *AndAlso) Kind() Kind         { return KindAndAlso }
func (a *AndAlso) Type() reflect.Type { return reflect.TypeOf(false) }

// OrElse is `Left || Right`.
type OrElse struct {
	Left  Node
	Right Node
}

func (o *OrElse) Kind() Kind         { return KindOrElse }
func (o *OrElse) Type() reflect.Type { return reflect.TypeOf(false) }

// TypeIs is `Operand is Candidate`.
type TypeIs struct {
	Operand   Node
	Candidate reflect.Type
}

func (t *TypeIs) Kind() Kind         { return KindTypeIs }
func (t *TypeIs) Type() reflect.Type { return reflect.TypeOf(false) }

// Call invokes a method described by Descriptor on Target (nil for a static
// method) with Args.
type Call struct {
	Target     Node // nil for a static call
	Descriptor MethodDescriptor
	Args       []Node
	Typ        reflect.Type
}

func (c *Call) Kind() Kind         { return KindCall }
func (c *Call) Type() reflect.Type { return c.Typ }

// Invoke calls the delegate/lambda produced by Target with Args.
type Invoke struct {
	Target Node
	Args   []Node
	Typ    reflect.Type
}

func (i *Invoke) Kind() Kind         { return KindInvoke }
func (i *Invoke) Type() reflect.Type { return i.Typ }

// New constructs a value via Descriptor(Args...).
type New struct {
	Descriptor ConstructorDescriptor
	Args       []Node
	Typ        reflect.Type
}

func (n *New) Kind() Kind         { return KindNew }
func (n *New) Type() reflect.Type { return n.Typ }

// NewArrayInit builds a slice of ElementType from Items.
type NewArrayInit struct {
	ElementType reflect.Type
	Items       []Node
}

func (n *NewArrayInit) Kind() Kind         { return KindNewArrayInit }
func (n *NewArrayInit) Type() reflect.Type { return reflect.SliceOf(n.ElementType) }

// Binding is one `Field: Value` assignment inside a MemberInit.
type Binding struct {
	Descriptor MemberDescriptor
	Value      Node
}

// MemberInit constructs New and then applies Bindings to the result. Per
// spec, a Typ that is a non-pointer struct is rejected at compile time
// (not-supported-expression): the source representation this is grounded on
// special-cases and rejects MemberInit over struct-like values, and that
// rejection is preserved verbatim here rather than "fixed".
type MemberInit struct {
	New      *New
	Bindings []Binding
	Typ      reflect.Type
}

func (m *MemberInit) Kind() Kind         { return KindMemberInit }
func (m *MemberInit) Type() reflect.Type { return m.Typ }

// Lambda is the root of a compiled unit: a Body expression over Parameters.
type Lambda struct {
	Parameters []*Parameter
	Body       Node
}

func (l *Lambda) Kind() Kind         { return KindLambda }
func (l *Lambda) Type() reflect.Type { return l.Body.Type() }
