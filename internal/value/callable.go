package value

// FnParams is what a native callable receives. Self is empty unless the
// callee was reached through a bound method.
type FnParams struct {
	Base *Base
	Self Object
	Args []Object
}

// NativeFunction is a host function callable from script.
type NativeFunction func(params *FnParams) FnResult

// BoundMethod pairs a receiver with a callable object. Calling it passes
// Target as self.
type BoundMethod struct {
	Target Object
	Func   Object
}

// BoundNativeMethod pairs a receiver with a host method.
type BoundNativeMethod struct {
	Self Object
	Func func(self Object, params *FnParams) FnResult
}

type (
	NativeFunctionType    struct{ NativeType[NativeFunction] }
	BoundMethodType       struct{ NativeType[BoundMethod] }
	BoundNativeMethodType struct{ NativeType[BoundNativeMethod] }
)

var (
	NativeFunctionKind    = &NativeFunctionType{NativeType[NativeFunction]{TypeName: "NativeFunction"}}
	BoundMethodKind       = &BoundMethodType{NativeType[BoundMethod]{TypeName: "BoundMethod"}}
	BoundNativeMethodKind = &BoundNativeMethodType{NativeType[BoundNativeMethod]{TypeName: "BoundNativeMethod"}}
)

// NewNativeFunction wraps fn as a host-owned callable object.
func NewNativeFunction(fn NativeFunction) Object {
	return Bind(&fn, NativeFunctionKind)
}

// NewBoundNativeMethod wraps a host method bound to self.
func NewBoundNativeMethod(self Object, fn func(self Object, params *FnParams) FnResult) Object {
	return Bind(&BoundNativeMethod{Self: self, Func: fn}, BoundNativeMethodKind)
}

// NewBoundMethod binds target as the receiver of callee.
func NewBoundMethod(target, callee Object) Object {
	return Bind(&BoundMethod{Target: target, Func: callee}, BoundMethodKind)
}
