package value

// BinaryOp enumerates the binary operators a Type may implement.
type BinaryOp int

const (
	BinaryInvalid BinaryOp = iota
	Multiply
	Divide
	Modulo
	Add
	Subtract
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	DoubleEqual
	LogicalAnd
	LogicalOr

	numBinaryOps
)

var binaryOpText = [numBinaryOps]string{
	"???", "*", "/", "%", "+", "-", "<", "<=", ">", ">=", "==", "&&", "||",
}

func (op BinaryOp) String() string {
	if op >= 0 && op < numBinaryOps {
		return binaryOpText[op]
	}
	return "???"
}

// UnaryOp enumerates the unary operators a Type may implement.
type UnaryOp int

const (
	UnaryInvalid UnaryOp = iota
	Negate
	LogicalNot
	BitComplement
)

func (op UnaryOp) String() string {
	switch op {
	case Negate:
		return "-"
	case LogicalNot:
		return "!"
	case BitComplement:
		return "~"
	default:
		return "???"
	}
}

// Unsupported supplies the default method table entries. Embed it in a Type
// to report every operator as unsupported.
type Unsupported struct{}

func (Unsupported) UnaryOp(base *Base, op UnaryOp, obj Object) FnResult {
	return UnsupportedUnaryOp(base, op, obj)
}

func (Unsupported) BinaryOp(base *Base, op BinaryOp, left, right Object) FnResult {
	return UnsupportedBinaryOp(base, op, left, right)
}

func (Unsupported) PropertyLookup(base *Base, obj Object, name string) FnResult {
	return UnsupportedPropertyLookup(base, obj, name)
}

func UnsupportedUnaryOp(base *Base, op UnaryOp, obj Object) FnResult {
	return base.Errorf("'%s' does not support unary operator '%s'", obj.TypeName(), op)
}

func UnsupportedBinaryOp(base *Base, op BinaryOp, left, right Object) FnResult {
	return base.Errorf("'%s' does not support binary operator '%s'", left.TypeName(), op)
}

func UnsupportedPropertyLookup(base *Base, obj Object, name string) FnResult {
	return base.Errorf("'%s' does not support property lookup", obj.TypeName())
}

// MismatchedOperands reports a binary operator applied to two different types.
func MismatchedOperands(base *Base, op BinaryOp, left, right Object) FnResult {
	return base.Errorf("cannot apply binary operator '%s' to '%s' and '%s'", op, left.TypeName(), right.TypeName())
}

// UnknownProperty reports a property name the type does not define.
func UnknownProperty(base *Base, obj Object, name string) FnResult {
	return base.Errorf("'%s' has no property '%s'", obj.TypeName(), name)
}
