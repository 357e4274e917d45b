package interpreter

import (
	"errors"
	"fmt"
)

var (
	ErrUnresolvedName  = errors.New("unresolved name")
	ErrNotCallable     = errors.New("not callable")
	ErrArityMismatch   = errors.New("arity mismatch")
	ErrUnsupportedNode = errors.New("unsupported node")
	ErrCallDepth       = errors.New("call depth exceeded")
	ErrInterrupted     = errors.New("execution interrupted")
	ErrNotBool         = errors.New("condition is not bool")
	ErrNotString       = errors.New("value is not printable")
	ErrNoValue         = errors.New("expression has no value")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrNotAssignable   = errors.New("not assignable")
	ErrHookRejected    = errors.New("hook rejected statement")
)

// EvalError is a failure raised by the evaluator itself. Kind is one of the
// Err* sentinels and is matched by errors.Is.
type EvalError struct {
	Kind    error
	Message string
}

func newEvalError(kind error, format string, args ...any) *EvalError {
	return &EvalError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *EvalError) Error() string {
	return e.Message
}

func (e *EvalError) Unwrap() error {
	return e.Kind
}
