package interpreter

import (
	"github.com/xirelogy/go-biscuit/internal/ast"
	"github.com/xirelogy/go-biscuit/internal/label"
	"github.com/xirelogy/go-biscuit/internal/value"
)

// Hooks lets the host extend statement semantics per frame. The evaluated
// value is available as frame.Interp.Base.ReturnValue while AssignToLocal
// and OnEvaluate run.
type Hooks interface {
	// AssignToLocal may take over a bare-name assignment. Returning true
	// skips the local table.
	AssignToLocal(frame *StackFrame, attributes any, name label.Label) bool
	// OnEvaluate observes an expression statement. Returning false fails it.
	OnEvaluate(frame *StackFrame, attributes any) bool
	// DoCustomBlock executes a host-defined block.
	DoCustomBlock(frame *StackFrame, cb *ast.CustomBlock) value.FnResult
}

// DefaultHooks keeps every assignment local, accepts every expression
// statement and rejects custom blocks.
type DefaultHooks struct{}

func (DefaultHooks) AssignToLocal(*StackFrame, any, label.Label) bool { return false }

func (DefaultHooks) OnEvaluate(*StackFrame, any) bool { return true }

func (DefaultHooks) DoCustomBlock(frame *StackFrame, cb *ast.CustomBlock) value.FnResult {
	return frame.Interp.fail(ErrUnsupportedNode, "custom block '%s' is not supported here", frame.labelText(cb.Type))
}

// HookFuncs adapts plain functions to Hooks. Nil fields fall back to
// DefaultHooks.
type HookFuncs struct {
	AssignToLocalFunc func(frame *StackFrame, attributes any, name label.Label) bool
	OnEvaluateFunc    func(frame *StackFrame, attributes any) bool
	DoCustomBlockFunc func(frame *StackFrame, cb *ast.CustomBlock) value.FnResult
}

func (h HookFuncs) AssignToLocal(frame *StackFrame, attributes any, name label.Label) bool {
	if h.AssignToLocalFunc == nil {
		return DefaultHooks{}.AssignToLocal(frame, attributes, name)
	}
	return h.AssignToLocalFunc(frame, attributes, name)
}

func (h HookFuncs) OnEvaluate(frame *StackFrame, attributes any) bool {
	if h.OnEvaluateFunc == nil {
		return DefaultHooks{}.OnEvaluate(frame, attributes)
	}
	return h.OnEvaluateFunc(frame, attributes)
}

func (h HookFuncs) DoCustomBlock(frame *StackFrame, cb *ast.CustomBlock) value.FnResult {
	if h.DoCustomBlockFunc == nil {
		return DefaultHooks{}.DoCustomBlock(frame, cb)
	}
	return h.DoCustomBlockFunc(frame, cb)
}
