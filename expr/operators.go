package expr

// UnaryOp enumerates the accepted unary operators (§4.5.5, §6 rendering
// contract).
type UnaryOp uint8

const (
	Negate UnaryOp = iota
	NegateChecked
	Plus
	Not     // logical `!` on bool, bitwise `~` on integer types
	Convert // unchecked conversion / user-defined conversion
	ConvertChecked
	Increment
	Decrement
)

func (op UnaryOp) String() string {
	switch op {
	case Negate:
		return "Negate"
	case NegateChecked:
		return "NegateChecked"
	case Plus:
		return "Plus"
	case Not:
		return "Not"
	case Convert:
		return "Convert"
	case ConvertChecked:
		return "ConvertChecked"
	case Increment:
		return "Increment"
	case Decrement:
		return "Decrement"
	default:
		return "UnknownUnaryOp"
	}
}

// BinaryOp enumerates the accepted binary operators.
type BinaryOp uint8

const (
	Add BinaryOp = iota
	AddChecked
	Subtract
	SubtractChecked
	Multiply
	MultiplyChecked
	Divide
	Modulo
	Power
	Equal
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	LeftShift
	RightShift
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "Add"
	case AddChecked:
		return "AddChecked"
	case Subtract:
		return "Subtract"
	case SubtractChecked:
		return "SubtractChecked"
	case Multiply:
		return "Multiply"
	case MultiplyChecked:
		return "MultiplyChecked"
	case Divide:
		return "Divide"
	case Modulo:
		return "Modulo"
	case Power:
		return "Power"
	case Equal:
		return "Equal"
	case NotEqual:
		return "NotEqual"
	case LessThan:
		return "LessThan"
	case LessThanOrEqual:
		return "LessThanOrEqual"
	case GreaterThan:
		return "GreaterThan"
	case GreaterThanOrEqual:
		return "GreaterThanOrEqual"
	case BitwiseAnd:
		return "BitwiseAnd"
	case BitwiseOr:
		return "BitwiseOr"
	case BitwiseXor:
		return "BitwiseXor"
	case LeftShift:
		return "LeftShift"
	case RightShift:
		return "RightShift"
	default:
		return "UnknownBinaryOp"
	}
}

// Checked reports whether op is one of the overflow-checking arithmetic
// variants (§4.5.5).
func (op BinaryOp) Checked() bool {
	switch op {
	case AddChecked, SubtractChecked, MultiplyChecked:
		return true
	default:
		return false
	}
}

// Symbol returns the infix rendering symbol used by the §6 rendering
// contract, e.g. "+" for Add and AddChecked alike (checkedness is rendered
// by wrapping, not by the symbol).
func (op BinaryOp) Symbol() string {
	switch op {
	case Add, AddChecked:
		return "+"
	case Subtract, SubtractChecked:
		return "-"
	case Multiply, MultiplyChecked:
		return "*"
	case Divide:
		return "/"
	case Modulo:
		return "%"
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	case BitwiseAnd:
		return "&"
	case BitwiseOr:
		return "|"
	case BitwiseXor:
		return "^"
	case LeftShift:
		return "<<"
	case RightShift:
		return ">>"
	default:
		return "?"
	}
}
