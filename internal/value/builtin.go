package value

import (
	"strconv"
	"strings"
)

// MaxStringLength bounds strings produced by concatenation and repetition.
const MaxStringLength = 1 << 24

// U32Type is the script's integer type. Arithmetic wraps like uint32.
type U32Type struct {
	NativeType[uint32]
}

// BoolType is the script's boolean type.
type BoolType struct {
	NativeType[bool]
}

// StringType is the script's string type.
type StringType struct {
	NativeType[string]
}

var (
	U32    = &U32Type{NativeType[uint32]{TypeName: "u32"}}
	Bool   = &BoolType{NativeType[bool]{TypeName: "bool"}}
	String = &StringType{NativeType[string]{TypeName: "String"}}
)

func (t *U32Type) BinaryOp(base *Base, op BinaryOp, left, right Object) FnResult {
	a, ok := Cast[uint32](left)
	if !ok {
		return UnsupportedBinaryOp(base, op, left, right)
	}
	if op < Multiply || op > DoubleEqual {
		return UnsupportedBinaryOp(base, op, left, right)
	}
	if !right.Is(U32) {
		return MismatchedOperands(base, op, left, right)
	}
	x, y := *a, *right.Data.(*uint32)
	switch op {
	case Multiply:
		return Produce(base, U32, x*y)
	case Divide:
		if y == 0 {
			return base.Errorf("division by zero")
		}
		return Produce(base, U32, x/y)
	case Modulo:
		if y == 0 {
			return base.Errorf("division by zero")
		}
		return Produce(base, U32, x%y)
	case Add:
		return Produce(base, U32, x+y)
	case Subtract:
		return Produce(base, U32, x-y)
	case LessThan:
		return Produce(base, Bool, x < y)
	case LessThanOrEqual:
		return Produce(base, Bool, x <= y)
	case GreaterThan:
		return Produce(base, Bool, x > y)
	case GreaterThanOrEqual:
		return Produce(base, Bool, x >= y)
	default: // DoubleEqual
		return Produce(base, Bool, x == y)
	}
}

func (t *U32Type) UnaryOp(base *Base, op UnaryOp, obj Object) FnResult {
	x := *obj.Data.(*uint32)
	switch op {
	case Negate:
		return Produce(base, U32, -x)
	case LogicalNot:
		var r uint32
		if x == 0 {
			r = 1
		}
		return Produce(base, U32, r)
	case BitComplement:
		return Produce(base, U32, ^x)
	default:
		return UnsupportedUnaryOp(base, op, obj)
	}
}

func (t *U32Type) Stringify(obj Object) string {
	return strconv.FormatUint(uint64(*obj.Data.(*uint32)), 10)
}

func (t *BoolType) BinaryOp(base *Base, op BinaryOp, left, right Object) FnResult {
	switch op {
	case DoubleEqual, LogicalAnd, LogicalOr:
	default:
		return UnsupportedBinaryOp(base, op, left, right)
	}
	if !right.Is(Bool) {
		return MismatchedOperands(base, op, left, right)
	}
	x, y := *left.Data.(*bool), *right.Data.(*bool)
	switch op {
	case DoubleEqual:
		return Produce(base, Bool, x == y)
	case LogicalAnd:
		return Produce(base, Bool, x && y)
	default:
		return Produce(base, Bool, x || y)
	}
}

func (t *BoolType) UnaryOp(base *Base, op UnaryOp, obj Object) FnResult {
	if op != LogicalNot {
		return UnsupportedUnaryOp(base, op, obj)
	}
	return Produce(base, Bool, !*obj.Data.(*bool))
}

func (t *BoolType) Stringify(obj Object) string {
	return strconv.FormatBool(*obj.Data.(*bool))
}

func (t *BoolType) ToBool(obj Object) bool {
	return *obj.Data.(*bool)
}

func (t *StringType) BinaryOp(base *Base, op BinaryOp, left, right Object) FnResult {
	x := *left.Data.(*string)
	switch op {
	case Add:
		if !right.Is(String) {
			return MismatchedOperands(base, op, left, right)
		}
		y := *right.Data.(*string)
		if len(x)+len(y) > MaxStringLength {
			return base.Errorf("string concatenation exceeds %d bytes", MaxStringLength)
		}
		return Produce(base, String, x+y)
	case Multiply:
		if !right.Is(U32) {
			return MismatchedOperands(base, op, left, right)
		}
		n := uint64(*right.Data.(*uint32))
		if n != 0 && uint64(len(x)) > MaxStringLength/n {
			return base.Errorf("string repetition exceeds %d bytes", MaxStringLength)
		}
		return Produce(base, String, strings.Repeat(x, int(n)))
	case DoubleEqual:
		if !right.Is(String) {
			return MismatchedOperands(base, op, left, right)
		}
		return Produce(base, Bool, x == *right.Data.(*string))
	default:
		return UnsupportedBinaryOp(base, op, left, right)
	}
}

func (t *StringType) PropertyLookup(base *Base, obj Object, name string) FnResult {
	if name == "length" {
		return Produce(base, U32, uint32(len(*obj.Data.(*string))))
	}
	return UnknownProperty(base, obj, name)
}

func (t *StringType) Stringify(obj Object) string {
	return *obj.Data.(*string)
}
