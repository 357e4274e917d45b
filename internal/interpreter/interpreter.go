package interpreter

import (
	"log/slog"

	"github.com/xirelogy/go-biscuit/internal/label"
	"github.com/xirelogy/go-biscuit/internal/tokenizer"
	"github.com/xirelogy/go-biscuit/internal/value"
)

const defaultMaxCallDepth = 256

// Options tunes an Interpreter.
type Options struct {
	MaxCallDepth int          // 0 selects the default
	Logger       *slog.Logger // nil discards
}

// Interpreter executes statement trees against one value.Base. It is not
// safe for concurrent use; give each concurrent execution its own.
type Interpreter struct {
	Base         value.Base
	CurrentFrame *StackFrame

	// ResolveName is consulted when a name is not a local of the current
	// frame. It returns an empty Object when the name is unknown.
	ResolveName func(name label.Label) value.Object

	Labels *label.Interner

	logger       *slog.Logger
	maxCallDepth int
	depth        int
	interrupt    func() error
	lastErr      error
}

// New constructs an interpreter whose names are interned in labels.
func New(labels *label.Interner, opts Options) *Interpreter {
	if labels == nil {
		labels = label.NewInterner()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	depth := opts.MaxCallDepth
	if depth <= 0 {
		depth = defaultMaxCallDepth
	}
	return &Interpreter{
		Labels:       labels,
		logger:       logger,
		maxCallDepth: depth,
	}
}

// SetInterrupt installs a check run before every statement and loop
// iteration. A non-nil error aborts execution.
func (in *Interpreter) SetInterrupt(check func() error) {
	in.interrupt = check
}

// LastError returns the structured cause of the most recent evaluation
// error raised by the interpreter itself, if any.
func (in *Interpreter) LastError() error {
	return in.lastErr
}

// ClearError forgets the recorded error.
func (in *Interpreter) ClearError() {
	in.lastErr = nil
}

// Depth reports the number of script function frames currently executing.
func (in *Interpreter) Depth() int {
	return in.depth
}

// NewFrame creates a root frame for host-driven execution. desc may be nil.
func (in *Interpreter) NewFrame(tkr *tokenizer.Tokenizer, desc func() string) *StackFrame {
	return &StackFrame{
		Interp:    in,
		PrevFrame: in.CurrentFrame,
		Tkr:       tkr,
		Locals:    make(map[label.Label]value.Object),
		Desc:      desc,
	}
}

func (in *Interpreter) lookupName(frame *StackFrame, name label.Label) value.Object {
	if obj, ok := frame.Locals[name]; ok {
		return obj
	}
	if in.ResolveName != nil {
		return in.ResolveName(name)
	}
	return value.Object{}
}

func (in *Interpreter) fail(kind error, format string, args ...any) value.FnResult {
	err := newEvalError(kind, format, args...)
	in.lastErr = err
	return in.Base.Errorf("%s", err.Message)
}
