package interpreter

import (
	"strings"

	"github.com/xirelogy/go-biscuit/internal/ast"
	"github.com/xirelogy/go-biscuit/internal/value"
)

// Eval evaluates expr, leaving its value in Base.ReturnValue.
func (f *StackFrame) Eval(expr ast.Expression) value.FnResult {
	base := &f.Interp.Base
	prevIdx := f.TokenIdx
	f.TokenIdx = expr.TokenIndex()
	defer func() { f.TokenIdx = prevIdx }()

	switch e := expr.(type) {
	case *ast.NameLookup:
		base.ReturnValue = f.Interp.lookupName(f, e.Name)
		if !base.ReturnValue.IsValid() {
			return f.Interp.fail(ErrUnresolvedName, "cannot resolve identifier '%s'", f.labelText(e.Name))
		}
		return value.FnOK
	case *ast.IntegerLiteral:
		base.ReturnValue = value.BindReadOnly(&e.Value, value.U32)
		return value.FnOK
	case *ast.InterpolatedString:
		return f.evalString(e)
	case *ast.PropertyLookup:
		return f.evalPropertyLookup(e)
	case *ast.BinaryOp:
		return f.evalBinaryOp(e)
	case *ast.UnaryOp:
		return f.evalUnaryOp(e)
	case *ast.Call:
		return f.evalCall(e)
	default:
		return f.Interp.fail(ErrUnsupportedNode, "unsupported expression kind %T", expr)
	}
}

// operand evaluates expr and takes its value out of the return register.
func (f *StackFrame) operand(expr ast.Expression) (value.Object, value.FnResult) {
	base := &f.Interp.Base
	if res := f.Eval(expr); res != value.FnOK {
		return value.Object{}, res
	}
	obj := base.ReturnValue
	base.ReturnValue = value.Object{}
	if !obj.IsValid() {
		return obj, f.Interp.fail(ErrNoValue, "expression does not produce a value")
	}
	return obj, value.FnOK
}

func (f *StackFrame) evalString(s *ast.InterpolatedString) value.FnResult {
	var sb strings.Builder
	for _, piece := range s.Pieces {
		sb.WriteString(piece.Literal)
		if piece.Embed == nil {
			continue
		}
		obj, res := f.operand(piece.Embed)
		if res != value.FnOK {
			return res
		}
		text, ok := value.ToString(obj)
		if !ok {
			return f.Interp.fail(ErrNotString, "cannot convert '%s' to string", obj.TypeName())
		}
		sb.WriteString(text)
	}
	return value.Produce(&f.Interp.Base, value.String, sb.String())
}

func (f *StackFrame) evalPropertyLookup(p *ast.PropertyLookup) value.FnResult {
	obj, res := f.operand(p.Obj)
	if res != value.FnOK {
		return res
	}
	return obj.Type.PropertyLookup(&f.Interp.Base, obj, f.labelText(p.Property))
}

func (f *StackFrame) evalBinaryOp(b *ast.BinaryOp) value.FnResult {
	left, res := f.operand(b.Left)
	if res != value.FnOK {
		return res
	}
	right, res := f.operand(b.Right)
	if res != value.FnOK {
		return res
	}
	return left.Type.BinaryOp(&f.Interp.Base, b.Op, left, right)
}

func (f *StackFrame) evalUnaryOp(u *ast.UnaryOp) value.FnResult {
	obj, res := f.operand(u.Expr)
	if res != value.FnOK {
		return res
	}
	return obj.Type.UnaryOp(&f.Interp.Base, u.Op, obj)
}

func (f *StackFrame) evalCall(call *ast.Call) value.FnResult {
	base := &f.Interp.Base

	callee, res := f.operand(call.Callable)
	if res != value.FnOK {
		return res
	}

	// Arguments are passed by value. A fresh temporary on top of the stack
	// is handed over as is; anything else is copied into a new slot.
	args := make([]value.Object, 0, len(call.Args))
	for _, argExpr := range call.Args {
		mark := base.Stack.End()
		if res := f.Eval(argExpr); res != value.FnOK {
			return res
		}
		rv := base.ReturnValue
		base.ReturnValue = value.Object{}
		if !rv.IsValid() {
			return f.Interp.fail(ErrNoValue, "expression does not produce a value")
		}
		arg := rv
		if !isFreshTop(&base.Stack, rv, mark) {
			arg = base.Stack.AppendObject(rv.Type)
			rv.Type.Copy(arg.Data, rv.Data)
		}
		args = append(args, arg)
	}

	return f.Invoke(callee, args)
}

// Invoke calls callee with args, which must already be owned by the stack
// or the host. Bound methods are unwrapped into their target and function.
func (f *StackFrame) Invoke(callee value.Object, args []value.Object) value.FnResult {
	base := &f.Interp.Base
	var self value.Object
	if callee.Is(value.BoundMethodKind) {
		bm := callee.Data.(*value.BoundMethod)
		self, callee = bm.Target, bm.Func
	}

	switch {
	case callee.Is(FunctionKind):
		return f.callFunction(callee.Data.(*ast.FunctionDefinition), self, args)
	case callee.Is(value.NativeFunctionKind):
		fn := *callee.Data.(*value.NativeFunction)
		return fn(&value.FnParams{Base: base, Self: self, Args: args})
	case callee.Is(value.BoundNativeMethodKind):
		bnm := callee.Data.(*value.BoundNativeMethod)
		return bnm.Func(bnm.Self, &value.FnParams{Base: base, Self: self, Args: args})
	}
	return f.Interp.fail(ErrNotCallable, "cannot call '%s' as a function", callee.TypeName())
}
