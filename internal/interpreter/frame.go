package interpreter

import (
	"github.com/xirelogy/go-biscuit/internal/ast"
	"github.com/xirelogy/go-biscuit/internal/label"
	"github.com/xirelogy/go-biscuit/internal/tokenizer"
	"github.com/xirelogy/go-biscuit/internal/value"
)

// StackFrame is one activation of a script function. The frame owns its
// Locals table but not the stack slots the entries refer to.
type StackFrame struct {
	Interp    *Interpreter
	PrevFrame *StackFrame
	Tkr       *tokenizer.Tokenizer
	TokenIdx  uint32
	Locals    map[label.Label]value.Object
	Desc      func() string
	Hooks     Hooks

	// CustomBlock is the host block currently being executed, if any.
	CustomBlock *ast.CustomBlock
}

// Description renders the frame for stack traces.
func (f *StackFrame) Description() string {
	if f.Desc == nil {
		return "<anonymous>"
	}
	return f.Desc()
}

// ExecBlockWithHooks runs block with h installed, restoring the previous
// hooks afterwards. Custom block handlers use it to re-enter the
// interpreter with their own statement semantics.
func (f *StackFrame) ExecBlockWithHooks(block *ast.StatementBlock, h Hooks, cb *ast.CustomBlock) value.FnResult {
	prevHooks, prevBlock := f.Hooks, f.CustomBlock
	f.Hooks, f.CustomBlock = h, cb
	defer func() {
		f.Hooks, f.CustomBlock = prevHooks, prevBlock
	}()
	return f.ExecBlock(block)
}

func (f *StackFrame) hooks() Hooks {
	if f.Hooks == nil {
		return DefaultHooks{}
	}
	return f.Hooks
}

func (f *StackFrame) labelText(l label.Label) string {
	return f.Interp.Labels.View(l)
}
