package interpreter

import (
	"github.com/xirelogy/go-biscuit/internal/ast"
	"github.com/xirelogy/go-biscuit/internal/value"
)

// ExecBlock runs the statements of block in order. Any result other than
// FnOK stops the block and is returned unchanged.
func (f *StackFrame) ExecBlock(block *ast.StatementBlock) value.FnResult {
	if block == nil {
		return value.FnOK
	}
	for _, stmt := range block.Statements {
		if res := f.checkInterrupt(); res != value.FnOK {
			return res
		}
		f.TokenIdx = stmt.TokenIndex()
		var res value.FnResult
		switch s := stmt.(type) {
		case *ast.If:
			res = f.execIf(s)
		case *ast.While:
			res = f.execWhile(s)
		case *ast.Assignment:
			res = f.execAssign(s)
		case *ast.Evaluate:
			res = f.execEvaluate(s)
		case *ast.Return:
			res = f.execReturn(s)
		case *ast.CustomBlock:
			res = f.hooks().DoCustomBlock(f, s)
		default:
			res = f.Interp.fail(ErrUnsupportedNode, "unsupported statement kind %T", stmt)
		}
		if res != value.FnOK {
			return res
		}
	}
	return value.FnOK
}

// condition evaluates expr as a bool and discards its temporaries.
func (f *StackFrame) condition(expr ast.Expression) (bool, value.FnResult) {
	stack := &f.Interp.Base.Stack
	mark := stack.End()
	defer stack.Truncate(mark)

	obj, res := f.operand(expr)
	if res != value.FnOK {
		return false, res
	}
	truth, ok := value.ToBool(obj)
	if !ok {
		return false, f.Interp.fail(ErrNotBool, "cannot convert '%s' to bool", obj.TypeName())
	}
	return truth, value.FnOK
}

func (f *StackFrame) execIf(s *ast.If) value.FnResult {
	truth, res := f.condition(s.Condition)
	if res != value.FnOK {
		return res
	}
	if truth {
		return f.ExecBlock(s.TrueBlock)
	}
	return f.ExecBlock(s.FalseBlock)
}

func (f *StackFrame) execWhile(s *ast.While) value.FnResult {
	for {
		if res := f.checkInterrupt(); res != value.FnOK {
			return res
		}
		truth, res := f.condition(s.Condition)
		if res != value.FnOK {
			return res
		}
		if !truth {
			return value.FnOK
		}
		if res := f.ExecBlock(s.Block); res != value.FnOK {
			return res
		}
	}
}

func (f *StackFrame) execAssign(s *ast.Assignment) value.FnResult {
	stack := &f.Interp.Base.Stack
	mark := stack.End()
	res := f.assign(s, mark)
	if res == value.FnError {
		stack.Truncate(mark)
	}
	return res
}

func (f *StackFrame) assign(s *ast.Assignment, mark value.Boundary) value.FnResult {
	base := &f.Interp.Base
	stack := &base.Stack

	name, isName := s.Left.(*ast.NameLookup)
	var left value.Object
	if !isName {
		obj, res := f.operand(s.Left)
		if res != value.FnOK {
			return res
		}
		left = obj
	}
	rv, res := f.operand(s.Right)
	if res != value.FnOK {
		return res
	}

	if !isName {
		if left.ReadOnly() {
			return f.Interp.fail(ErrNotAssignable, "cannot assign to a literal")
		}
		if left.Type != rv.Type {
			return f.Interp.fail(ErrTypeMismatch, "cannot assign '%s' to '%s'", rv.TypeName(), left.TypeName())
		}
		transfer(stack, left, rv, mark)
		stack.Truncate(mark)
		return value.FnOK
	}

	base.ReturnValue = rv
	handled := f.hooks().AssignToLocal(f, s.Attributes, name.Name)
	base.ReturnValue = value.Object{}
	if handled {
		stack.Truncate(mark)
		return value.FnOK
	}

	local, exists := f.Locals[name.Name]
	if !exists {
		switch {
		case isFreshTop(stack, rv, mark):
			// adopt the temporary as the new local
			stack.DeleteRange(mark, stack.End()-1)
		case stack.Contains(rv, mark):
			dest := stack.AppendObject(rv.Type)
			rv.Type.Move(dest.Data, rv.Data)
			stack.DeleteRange(mark, stack.End()-1)
		default:
			stack.Truncate(mark)
			dest := stack.AppendObject(rv.Type)
			rv.Type.Copy(dest.Data, rv.Data)
		}
		f.Locals[name.Name] = stack.Top()
		return value.FnOK
	}

	if local.Type != rv.Type {
		retyped, ok := stack.Reconstruct(local, rv.Type)
		if !ok {
			return f.Interp.fail(ErrTypeMismatch, "cannot assign '%s' to '%s' variable '%s'",
				rv.TypeName(), local.TypeName(), f.labelText(name.Name))
		}
		local = retyped
		f.Locals[name.Name] = local
	}
	transfer(stack, local, rv, mark)
	stack.Truncate(mark)
	return value.FnOK
}

func (f *StackFrame) execEvaluate(s *ast.Evaluate) value.FnResult {
	base := &f.Interp.Base
	mark := base.Stack.End()
	defer base.Stack.Truncate(mark)

	if res := f.Eval(s.Expr); res != value.FnOK {
		return res
	}
	ok := f.hooks().OnEvaluate(f, s.Attributes)
	base.ReturnValue = value.Object{}
	if !ok {
		f.Interp.lastErr = newEvalError(ErrHookRejected, "expression statement rejected by host")
		return value.FnError
	}
	return value.FnOK
}

func (f *StackFrame) execReturn(s *ast.Return) value.FnResult {
	base := &f.Interp.Base
	if s.Expr == nil {
		base.ReturnValue = value.Object{}
		return value.FnReturn
	}
	mark := base.Stack.End()
	if res := f.Eval(s.Expr); res != value.FnOK {
		base.Stack.Truncate(mark)
		return res
	}
	return value.FnReturn
}

func (f *StackFrame) checkInterrupt() value.FnResult {
	in := f.Interp
	if in.interrupt == nil {
		return value.FnOK
	}
	if err := in.interrupt(); err != nil {
		return in.fail(ErrInterrupted, "execution interrupted: %v", err)
	}
	return value.FnOK
}

// isFreshTop reports whether obj is the top slot and was allocated at or
// above mark.
func isFreshTop(stack *value.ObjectStack, obj value.Object, mark value.Boundary) bool {
	return stack.End() > mark && stack.IsTop(obj)
}

// transfer stores rv into dst. Temporaries above mark are moved from;
// anything else is copied so the source keeps its value.
func transfer(stack *value.ObjectStack, dst, rv value.Object, mark value.Boundary) {
	if dst.Data == rv.Data {
		return
	}
	if stack.Contains(rv, mark) {
		dst.Type.Move(dst.Data, rv.Data)
		return
	}
	dst.Type.Copy(dst.Data, rv.Data)
}
