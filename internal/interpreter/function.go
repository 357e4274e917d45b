package interpreter

import (
	"fmt"
	"log/slog"

	"github.com/xirelogy/go-biscuit/internal/ast"
	"github.com/xirelogy/go-biscuit/internal/label"
	"github.com/xirelogy/go-biscuit/internal/value"
)

// FunctionType is the Type of script function objects. Their data is an
// *ast.FunctionDefinition.
type FunctionType struct {
	value.NativeType[ast.FunctionDefinition]
}

// FunctionKind is the single FunctionType instance.
var FunctionKind = &FunctionType{value.NativeType[ast.FunctionDefinition]{TypeName: "Function"}}

// NewFunction wraps fn as a callable object.
func NewFunction(fn *ast.FunctionDefinition) value.Object {
	return value.Bind(fn, FunctionKind)
}

func (f *StackFrame) callFunction(fn *ast.FunctionDefinition, self value.Object, args []value.Object) value.FnResult {
	in := f.Interp
	name := f.labelText(fn.Name)
	if self.IsValid() {
		return in.fail(ErrNotCallable, "function '%s' cannot be called as a method", name)
	}
	if len(args) != len(fn.ParameterNames) {
		return in.fail(ErrArityMismatch, "function '%s' expects %d argument(s), got %d",
			name, len(fn.ParameterNames), len(args))
	}

	frame := &StackFrame{
		Interp:    in,
		PrevFrame: f,
		Tkr:       fn.Tkr,
		TokenIdx:  fn.TokenIdx,
		Locals:    make(map[label.Label]value.Object, len(args)),
		Desc: func() string {
			return fmt.Sprintf("function '%s'", name)
		},
	}
	for i, param := range fn.ParameterNames {
		frame.Locals[param] = args[i]
	}
	return frame.ExecFunction(fn.Body)
}

// ExecFunction runs block as the body of f and reclaims every slot the body
// allocated. A return value that lives in one of those slots survives as
// the new top of the stack.
func (f *StackFrame) ExecFunction(block *ast.StatementBlock) value.FnResult {
	in := f.Interp
	base := &in.Base
	stack := &base.Stack

	if in.depth >= in.maxCallDepth {
		return in.fail(ErrCallDepth, "call stack overflow")
	}
	prev := in.CurrentFrame
	in.CurrentFrame = f
	in.depth++
	in.logger.Debug("push stack frame",
		slog.String("frame", f.Description()),
		slog.Int("depth", in.depth),
		slog.Int("stack-size", stack.Len()))
	defer func() {
		in.depth--
		in.CurrentFrame = prev
		in.logger.Debug("pop stack frame",
			slog.String("frame", f.Description()),
			slog.Int("depth", in.depth),
			slog.Int("stack-size", stack.Len()))
	}()

	entry := stack.End()
	res := f.ExecBlock(block)
	if res == value.FnReturn {
		res = value.FnOK
	}
	if res != value.FnOK {
		stack.Truncate(entry)
		base.ReturnValue = value.Object{}
		return res
	}

	rv := base.ReturnValue
	if stack.Contains(rv, entry) && !stack.IsTop(rv) {
		// the value lives in a slot that is about to go; move it to the top
		dest := stack.AppendObject(rv.Type)
		rv.Type.Move(dest.Data, rv.Data)
		rv = dest
	}
	deleteTo := stack.End()
	keep := deleteTo > entry && stack.IsTop(rv)
	if keep {
		deleteTo--
	}
	stack.DeleteRange(entry, deleteTo)
	if keep {
		base.ReturnValue = stack.Top()
	}
	return res
}
