package biscuit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/xirelogy/go-biscuit/internal/ast"
	_ "github.com/xirelogy/go-biscuit/internal/builtins"
	"github.com/xirelogy/go-biscuit/internal/interpreter"
	"github.com/xirelogy/go-biscuit/internal/label"
	"github.com/xirelogy/go-biscuit/internal/runtime"
	"github.com/xirelogy/go-biscuit/internal/tokenizer"
	"github.com/xirelogy/go-biscuit/internal/value"
)

// ErrBusy is returned when an execution is requested while another one
// is still running on the same Runtime.
var ErrBusy = errors.New("runtime is busy; concurrent execution not allowed")

// ArgError represents a host argument that cannot be passed to a script.
type ArgError struct {
	Name string
	Want string
	Got  string
}

func (e ArgError) Error() string {
	switch {
	case e.Name != "" && e.Want != "" && e.Got != "":
		return fmt.Sprintf("argument %q: want %s, got %s", e.Name, e.Want, e.Got)
	case e.Name != "" && e.Want != "":
		return fmt.Sprintf("argument %q: want %s", e.Name, e.Want)
	default:
		return "argument error"
	}
}

// FrameTrace describes a single frame in a runtime error.
type FrameTrace struct {
	Function string
	Source   string
	Line     int
	Column   int
}

// RuntimeError is a source-aware execution error surfaced from the interpreter.
type RuntimeError struct {
	Message string
	Frame   FrameTrace
	Stack   []FrameTrace
	Cause   error
}

func (e *RuntimeError) Error() string {
	parts := []string{}
	if e.Frame.Source != "" {
		if e.Frame.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s(%d, %d)", e.Frame.Source, e.Frame.Line, e.Frame.Column))
		} else {
			parts = append(parts, e.Frame.Source)
		}
	} else if e.Frame.Line > 0 {
		parts = append(parts, fmt.Sprintf("line %d", e.Frame.Line))
	}
	if e.Frame.Function != "" {
		parts = append(parts, fmt.Sprintf("in %s", e.Frame.Function))
	}
	loc := strings.Join(parts, " ")
	if loc != "" {
		return fmt.Sprintf("%s: %s", loc, e.Message)
	}
	return e.Message
}

// Unwrap exposes the underlying cause (if any) for errors.Is/As.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

func frameTrace(info interpreter.FrameInfo) FrameTrace {
	return FrameTrace{
		Function: info.Description,
		Source:   info.Path,
		Line:     info.Line,
		Column:   info.Column,
	}
}

func newRuntimeError(in *interpreter.Interpreter, message string) *RuntimeError {
	err := &RuntimeError{Message: message}
	trace := in.StackTrace()
	if len(trace) == 0 {
		return err
	}
	err.Frame = frameTrace(trace[0])
	err.Stack = make([]FrameTrace, len(trace))
	for i, fi := range trace {
		err.Stack[i] = frameTrace(fi)
	}
	return err
}

// Value is a script result copied out of the interpreter.
type Value struct {
	TypeName string
	raw      any
	text     string
	textOK   bool
}

func exportValue(obj value.Object) Value {
	if !obj.IsValid() {
		return Value{TypeName: obj.TypeName()}
	}
	out := Value{TypeName: obj.TypeName()}
	switch {
	case obj.Is(value.U32):
		out.raw = *obj.Data.(*uint32)
	case obj.Is(value.Bool):
		out.raw = *obj.Data.(*bool)
	case obj.Is(value.String):
		out.raw = *obj.Data.(*string)
	}
	out.text, out.textOK = value.ToString(obj)
	return out
}

// IsNone reports whether the script produced no value.
func (v Value) IsNone() bool { return v.TypeName == "" || v.TypeName == "none" }

// Raw returns the Go value of a builtin type, or nil.
func (v Value) Raw() any { return v.raw }

// U32 returns the integer value when the type matches.
func (v Value) U32() (uint32, bool) {
	n, ok := v.raw.(uint32)
	return n, ok
}

// Bool returns the boolean value when the type matches.
func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// Text returns the string rendering of any value that has one.
func (v Value) Text() (string, bool) {
	return v.text, v.textOK
}

// Runtime holds globals and configuration shared by every execution. Only
// one execution may run at a time; LoadSource, HasGlobal and SetLogger may
// be called while it runs.
type Runtime struct {
	cfg      Config
	labels   *label.Interner
	logger   *slog.Logger
	globals  map[label.Label]value.Object
	builtins map[label.Label]value.Object
	mu       sync.Mutex
	busy     bool
}

// New constructs a Runtime from a validated configuration.
func New(cfg Config) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runtime{
		cfg:      cfg,
		labels:   label.NewInterner(),
		logger:   slog.New(slog.DiscardHandler),
		globals:  make(map[label.Label]value.Object),
		builtins: make(map[label.Label]value.Object),
	}
	yes, no := true, false
	r.globals[r.labels.Insert("true")] = value.Bind(&yes, value.Bool)
	r.globals[r.labels.Insert("false")] = value.Bind(&no, value.Bool)
	return r, nil
}

// SetLogger routes interpreter and runtime logs to l. Nil discards.
func (r *Runtime) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	r.mu.Lock()
	r.logger = l
	r.mu.Unlock()
}

func (r *Runtime) currentLogger() *slog.Logger {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logger
}

// Config returns the configuration the runtime was built with.
func (r *Runtime) Config() Config { return r.cfg }

// Labels returns the interner shared by every tokenizer and tree of this
// runtime.
func (r *Runtime) Labels() *label.Interner { return r.labels }

// LoadSource tokenizes src completely and returns the tokenizer rewound
// to its first token. The name is used in diagnostics.
func (r *Runtime) LoadSource(name, src string) (*tokenizer.Tokenizer, error) {
	tkr, err := tokenizer.New(r.labels, r.cfg.tokenizerOptions())
	if err != nil {
		return nil, err
	}
	tkr.SetSourceInput(name, src)
	toks, err := tokenizer.ScanAll(tkr)
	if err != nil {
		return nil, err
	}
	tkr.RewindTo(0)
	r.currentLogger().Debug("loaded source",
		slog.String("name", name),
		slog.Int("tokens", len(toks)),
		slog.Int("bytes", int(tkr.Len())))
	return tkr, nil
}

// LoadFile reads and tokenizes a script from a filesystem path.
func (r *Runtime) LoadFile(path string) (*tokenizer.Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.LoadSource(path, string(data))
}

// DefineGlobal binds obj to a global name visible to every execution.
func (r *Runtime) DefineGlobal(name string, obj value.Object) error {
	if name == "" {
		return errors.New("empty global name")
	}
	if !obj.IsValid() {
		return fmt.Errorf("global %q: invalid object", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy {
		return ErrBusy
	}
	r.globals[r.labels.Insert(name)] = obj
	return nil
}

// SetGlobalFunction binds a native function to a global name.
func (r *Runtime) SetGlobalFunction(name string, fn value.NativeFunction) error {
	if fn == nil {
		return errors.New("nil function")
	}
	return r.DefineGlobal(name, value.NewNativeFunction(fn))
}

// DefineFunction binds a script function under its own name.
func (r *Runtime) DefineFunction(fd *ast.FunctionDefinition) error {
	if fd == nil || fd.Body == nil {
		return errors.New("nil function definition")
	}
	return r.DefineGlobal(r.labels.View(fd.Name), interpreter.NewFunction(fd))
}

// HasGlobal reports whether name resolves to a global or a builtin. It is
// safe to call while an execution is running.
func (r *Runtime) HasGlobal(name string) bool {
	if id, ok := r.labels.Find(name); ok {
		r.mu.Lock()
		_, found := r.globals[id]
		r.mu.Unlock()
		if found {
			return true
		}
	}
	_, ok := runtime.LookupByName(name)
	return ok
}

func (r *Runtime) acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy {
		return ErrBusy
	}
	r.busy = true
	return nil
}

func (r *Runtime) release() {
	r.mu.Lock()
	r.busy = false
	r.mu.Unlock()
}

func (r *Runtime) resolve(name label.Label) value.Object {
	if obj, ok := r.globals[name]; ok {
		return obj
	}
	if obj, ok := r.builtins[name]; ok {
		return obj
	}
	spec, ok := runtime.LookupByName(r.labels.View(name))
	if !ok {
		return value.Object{}
	}
	obj := spec.Object()
	r.builtins[name] = obj
	return obj
}

type execution struct {
	in     *interpreter.Interpreter
	logger *slog.Logger
	err    *RuntimeError
}

func (r *Runtime) newExecution(ctx context.Context) *execution {
	logger := r.currentLogger()
	ex := &execution{
		in:     interpreter.New(r.labels, r.cfg.interpreterOptions(logger)),
		logger: logger,
	}
	ex.in.ResolveName = r.resolve
	ex.in.SetInterrupt(ctx.Err)
	ex.in.Base.ErrorFunc = func(message string) {
		if ex.err != nil {
			return
		}
		ex.err = newRuntimeError(ex.in, message)
		ex.logger.Error("script error",
			slog.String("message", message),
			slog.String("function", ex.err.Frame.Function),
			slog.Int("line", ex.err.Frame.Line))
	}
	return ex
}

func (ex *execution) finish(ctx context.Context, res value.FnResult) (Value, error) {
	defer ex.in.Base.Stack.Truncate(0)
	if res == value.FnError {
		err := ex.err
		if err == nil {
			err = &RuntimeError{Message: "execution failed"}
		}
		err.Cause = errors.Join(ex.in.LastError(), ctx.Err())
		return Value{}, err
	}
	return exportValue(ex.in.Base.ReturnValue), nil
}

// Exec runs block as the top-level code of tkr's source and returns the
// value of its return statement, if any. hooks may be nil. Cancelling ctx
// interrupts the script before its next statement.
func (r *Runtime) Exec(ctx context.Context, tkr *tokenizer.Tokenizer, block *ast.StatementBlock, hooks interpreter.Hooks) (Value, error) {
	if tkr == nil || block == nil {
		return Value{}, errors.New("nil tokenizer or block")
	}
	if err := r.acquire(); err != nil {
		return Value{}, err
	}
	defer r.release()
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}

	ex := r.newExecution(ctx)
	frame := ex.in.NewFrame(tkr, func() string { return "module" })
	frame.Hooks = hooks
	ex.logger.Debug("exec", slog.Int("statements", len(block.Statements)))
	return ex.finish(ctx, frame.ExecFunction(block))
}

// Call resolves a global or builtin by name and invokes it with args.
// Arguments may be uint32, int, bool, string or value.Object.
func (r *Runtime) Call(ctx context.Context, name string, args ...any) (Value, error) {
	if err := r.acquire(); err != nil {
		return Value{}, err
	}
	defer r.release()
	return r.call(ctx, name, args)
}

func (r *Runtime) call(ctx context.Context, name string, args []any) (Value, error) {
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}
	callee := r.resolve(r.labels.Insert(name))
	if !callee.IsValid() {
		return Value{}, fmt.Errorf("unknown function %q", name)
	}

	ex := r.newExecution(ctx)
	frame := ex.in.NewFrame(nil, func() string { return "host" })
	ex.in.CurrentFrame = frame
	objs := make([]value.Object, len(args))
	for i, a := range args {
		obj, ok := importValue(&ex.in.Base, a)
		if !ok {
			ex.in.Base.Stack.Truncate(0)
			return Value{}, ArgError{
				Name: fmt.Sprintf("#%d", i),
				Want: "uint32, int, bool, string or value.Object",
				Got:  fmt.Sprintf("%T", a),
			}
		}
		objs[i] = obj
	}
	ex.logger.Debug("call", slog.String("function", name), slog.Int("args", len(args)))
	return ex.finish(ctx, frame.Invoke(callee, objs))
}

func importValue(base *value.Base, v any) (value.Object, bool) {
	switch x := v.(type) {
	case uint32:
		return place(base, value.U32, x), true
	case int:
		if x < 0 || uint64(x) > math.MaxUint32 {
			return value.Object{}, false
		}
		return place(base, value.U32, uint32(x)), true
	case bool:
		return place(base, value.Bool, x), true
	case string:
		return place(base, value.String, x), true
	case value.Object:
		if !x.IsValid() {
			return value.Object{}, false
		}
		obj := base.Stack.AppendObject(x.Type)
		x.Type.Copy(obj.Data, x.Data)
		return obj, true
	}
	return value.Object{}, false
}

func place[T any](base *value.Base, typ value.Type, v T) value.Object {
	value.Produce(base, typ, v)
	obj := base.ReturnValue
	base.ReturnValue = value.Object{}
	return obj
}

// CallFuture represents an in-flight call.
type CallFuture struct {
	ch <-chan CallResult
}

// CallResult is the outcome of a call.
type CallResult struct {
	Value Value
	Err   error
}

// Await waits for completion or context cancellation.
func (f CallFuture) Await(ctx context.Context) (Value, error) {
	select {
	case <-ctx.Done():
		return Value{}, ctx.Err()
	case res := <-f.ch:
		return res.Value, res.Err
	}
}

// CallAsync runs Call on its own goroutine. The runtime is reserved
// before CallAsync returns, so a second call fails with ErrBusy until
// this one completes.
func (r *Runtime) CallAsync(ctx context.Context, name string, args ...any) CallFuture {
	ch := make(chan CallResult, 1)
	if err := r.acquire(); err != nil {
		ch <- CallResult{Err: err}
		close(ch)
		return CallFuture{ch: ch}
	}

	go func() {
		defer close(ch)
		defer r.release()
		v, err := r.call(ctx, name, args)
		ch <- CallResult{Value: v, Err: err}
	}()
	return CallFuture{ch: ch}
}
