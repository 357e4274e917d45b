package interpreter

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/xirelogy/go-biscuit/internal/ast"
	"github.com/xirelogy/go-biscuit/internal/label"
	"github.com/xirelogy/go-biscuit/internal/token"
	"github.com/xirelogy/go-biscuit/internal/tokenizer"
	"github.com/xirelogy/go-biscuit/internal/value"
)

type fixture struct {
	t       *testing.T
	labels  *label.Interner
	tkr     *tokenizer.Tokenizer
	toks    []token.Token
	interp  *Interpreter
	frame   *StackFrame
	errors  []string
	globals map[label.Label]value.Object
}

func newFixture(t *testing.T, src string) *fixture {
	t.Helper()
	return newFixtureWith(t, src, Options{})
}

func newFixtureWith(t *testing.T, src string, opts Options) *fixture {
	t.Helper()
	labels := label.NewInterner()
	tkr, err := tokenizer.New(labels, tokenizer.DefaultOptions())
	if err != nil {
		t.Fatalf("new tokenizer: %v", err)
	}
	tkr.SetSourceInput("main.bi", src)
	toks, err := tokenizer.ScanAll(tkr)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	fx := &fixture{
		t:       t,
		labels:  labels,
		tkr:     tkr,
		toks:    toks,
		globals: make(map[label.Label]value.Object),
	}
	fx.interp = New(labels, opts)
	fx.interp.Base.ErrorFunc = func(m string) { fx.errors = append(fx.errors, m) }
	fx.interp.ResolveName = func(name label.Label) value.Object { return fx.globals[name] }
	tr, fa := true, false
	fx.global("true", value.Bind(&tr, value.Bool))
	fx.global("false", value.Bind(&fa, value.Bool))
	fx.frame = fx.interp.NewFrame(tkr, func() string { return "module" })
	fx.interp.CurrentFrame = fx.frame
	return fx
}

func (fx *fixture) at(i int) uint32 { return fx.toks[i].Index }

func (fx *fixture) global(name string, obj value.Object) {
	fx.globals[fx.labels.Insert(name)] = obj
}

func (fx *fixture) name(s string) *ast.NameLookup {
	return &ast.NameLookup{Name: fx.labels.Insert(s)}
}

func (fx *fixture) assign(name string, rhs ast.Expression) *ast.Assignment {
	return &ast.Assignment{Left: fx.name(name), Right: rhs}
}

func (fx *fixture) prop(obj ast.Expression, name string) *ast.PropertyLookup {
	return &ast.PropertyLookup{Obj: obj, Property: fx.labels.Insert(name)}
}

func (fx *fixture) function(name string, params []string, body *ast.StatementBlock) value.Object {
	fd := &ast.FunctionDefinition{Name: fx.labels.Insert(name), Body: body, Tkr: fx.tkr}
	for _, p := range params {
		fd.ParameterNames = append(fd.ParameterNames, fx.labels.Insert(p))
	}
	return NewFunction(fd)
}

func (fx *fixture) run(stmts ...ast.Statement) value.FnResult {
	return fx.frame.ExecBlock(block(stmts...))
}

func (fx *fixture) local(name string) value.Object {
	fx.t.Helper()
	obj, ok := fx.frame.Locals[fx.labels.Insert(name)]
	if !ok {
		fx.t.Fatalf("local %s not found", name)
	}
	return obj
}

func (fx *fixture) u32(name string) uint32 {
	fx.t.Helper()
	p, ok := value.Cast[uint32](fx.local(name))
	if !ok {
		fx.t.Fatalf("local %s is %s, not u32", name, fx.local(name).TypeName())
	}
	return *p
}

func (fx *fixture) expectError(res value.FnResult, kind error, message string) {
	fx.t.Helper()
	if res != value.FnError {
		fx.t.Fatalf("expected error, got %v", res)
	}
	if !errors.Is(fx.interp.LastError(), kind) {
		fx.t.Fatalf("expected %v, got %v", kind, fx.interp.LastError())
	}
	if message == "" {
		return
	}
	if len(fx.errors) == 0 || fx.errors[len(fx.errors)-1] != message {
		fx.t.Fatalf("expected message %q, got %v", message, fx.errors)
	}
}

func lit(v uint32) *ast.IntegerLiteral { return &ast.IntegerLiteral{Value: v} }

func str(s string) *ast.InterpolatedString {
	return &ast.InterpolatedString{Pieces: []ast.Piece{{Literal: s}}}
}

func bin(op value.BinaryOp, l, r ast.Expression) *ast.BinaryOp {
	return &ast.BinaryOp{Op: op, Left: l, Right: r}
}

func call(callee ast.Expression, args ...ast.Expression) *ast.Call {
	return &ast.Call{Callable: callee, Args: args}
}

func eval(e ast.Expression) *ast.Evaluate { return &ast.Evaluate{Expr: e} }

func ret(e ast.Expression) *ast.Return { return &ast.Return{Expr: e} }

func block(stmts ...ast.Statement) *ast.StatementBlock {
	return &ast.StatementBlock{Statements: stmts}
}

func TestEvalBinaryOpOfLiterals(t *testing.T) {
	fx := newFixture(t, "1 + 2")
	stack := &fx.interp.Base.Stack

	if res := fx.frame.Eval(lit(7)); res != value.FnOK || stack.Len() != 0 {
		t.Fatalf("literal must not touch the stack: res=%v len=%d", res, stack.Len())
	}
	if fx.interp.Base.ReturnValue.StackOwned() {
		t.Fatalf("literal must bind to the tree, not a slot")
	}

	res := fx.frame.Eval(bin(value.Add, lit(1), lit(2)))
	if res != value.FnOK {
		t.Fatalf("eval: %v %v", res, fx.errors)
	}
	rv := fx.interp.Base.ReturnValue
	if got := *rv.Data.(*uint32); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if stack.Len() != 1 || !stack.IsTop(rv) {
		t.Fatalf("expected only the result on the stack, got %d slots", stack.Len())
	}
}

func TestDeclareThenRebind(t *testing.T) {
	fx := newFixture(t, "x = 5\nx = x + 1")
	five := lit(5)
	res := fx.run(
		fx.assign("x", five),
		fx.assign("x", bin(value.Add, fx.name("x"), lit(1))),
	)
	if res != value.FnOK {
		t.Fatalf("run: %v %v", res, fx.errors)
	}
	if len(fx.frame.Locals) != 1 {
		t.Fatalf("expected one local, got %d", len(fx.frame.Locals))
	}
	if fx.interp.Base.Stack.Len() != 1 {
		t.Fatalf("expected one slot, got %d", fx.interp.Base.Stack.Len())
	}
	if got := fx.u32("x"); got != 6 {
		t.Fatalf("expected x == 6, got %d", got)
	}
	if five.Value != 5 {
		t.Fatalf("literal storage was modified: %d", five.Value)
	}
}

func TestWhileLoopRestoresStack(t *testing.T) {
	fx := newFixture(t, "")
	ticks := 0
	fx.global("tick", value.NewNativeFunction(func(p *value.FnParams) value.FnResult {
		ticks++
		p.Base.ReturnValue = value.Object{}
		return value.FnOK
	}))
	if res := fx.run(fx.assign("i", lit(0))); res != value.FnOK {
		t.Fatalf("init: %v", fx.errors)
	}
	height := fx.interp.Base.Stack.Len()

	loop := &ast.While{
		Condition: bin(value.LessThan, fx.name("i"), lit(3)),
		Block: block(
			eval(call(fx.name("tick"))),
			fx.assign("i", bin(value.Add, fx.name("i"), lit(1))),
		),
	}
	if res := fx.run(loop); res != value.FnOK {
		t.Fatalf("loop: %v %v", res, fx.errors)
	}
	if ticks != 3 {
		t.Fatalf("expected 3 iterations, got %d", ticks)
	}
	if fx.interp.Base.Stack.Len() != height {
		t.Fatalf("expected stack height %d, got %d", height, fx.interp.Base.Stack.Len())
	}
	if got := fx.u32("i"); got != 3 {
		t.Fatalf("expected i == 3, got %d", got)
	}
}

func TestUnresolvedCallee(t *testing.T) {
	fx := newFixture(t, "foo()")
	res := fx.run(eval(call(fx.name("foo"))))
	fx.expectError(res, ErrUnresolvedName, "cannot resolve identifier 'foo'")
	if len(fx.errors) != 1 {
		t.Fatalf("expected a single message, got %v", fx.errors)
	}
	if fx.interp.Base.Stack.Len() != 0 {
		t.Fatalf("expected empty stack, got %d", fx.interp.Base.Stack.Len())
	}
}

func TestArgumentsPassedByValue(t *testing.T) {
	fx := newFixture(t, "")
	fx.global("f", fx.function("f", []string{"x"}, block(
		fx.assign("x", bin(value.Add, fx.name("x"), lit(1))),
		ret(fx.name("x")),
	)))
	res := fx.run(
		fx.assign("a", lit(5)),
		fx.assign("b", call(fx.name("f"), fx.name("a"))),
	)
	if res != value.FnOK {
		t.Fatalf("run: %v %v", res, fx.errors)
	}
	if got := fx.u32("a"); got != 5 {
		t.Fatalf("caller variable changed: a == %d", got)
	}
	if got := fx.u32("b"); got != 6 {
		t.Fatalf("expected b == 6, got %d", got)
	}
	if fx.interp.Base.Stack.Len() != 2 {
		t.Fatalf("expected two slots, got %d", fx.interp.Base.Stack.Len())
	}
}

func TestReturnValueSurvivesFrameExit(t *testing.T) {
	fx := newFixture(t, "")
	fx.global("g", fx.function("g", nil, block(
		fx.assign("t", lit(1)),
		fx.assign("u", lit(2)),
		ret(fx.name("t")),
	)))
	if res := fx.run(fx.assign("r", call(fx.name("g")))); res != value.FnOK {
		t.Fatalf("run: %v %v", res, fx.errors)
	}
	if got := fx.u32("r"); got != 1 {
		t.Fatalf("expected r == 1, got %d", got)
	}
	if fx.interp.Base.Stack.Len() != 1 {
		t.Fatalf("expected callee locals reclaimed, got %d slots", fx.interp.Base.Stack.Len())
	}
}

func TestExecFunctionKeepsTopReturnValue(t *testing.T) {
	fx := newFixture(t, "")
	frame := fx.interp.NewFrame(fx.tkr, nil)
	res := frame.ExecFunction(block(
		fx.assign("t", bin(value.Add, lit(1), lit(2))),
		fx.assign("u", lit(9)),
		ret(bin(value.Multiply, fx.name("t"), lit(2))),
	))
	if res != value.FnOK {
		t.Fatalf("exec: %v %v", res, fx.errors)
	}
	stack := &fx.interp.Base.Stack
	rv := fx.interp.Base.ReturnValue
	if stack.Len() != 1 || !stack.IsTop(rv) {
		t.Fatalf("expected only the return value to survive, got %d slots", stack.Len())
	}
	if got := *rv.Data.(*uint32); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
	if fx.interp.CurrentFrame != fx.frame {
		t.Fatalf("current frame not restored")
	}
}

func TestFunctionErrorTruncatesStack(t *testing.T) {
	fx := newFixture(t, "")
	fx.global("fe", fx.function("fe", nil, block(
		fx.assign("a", lit(1)),
		fx.assign("b", bin(value.Add, fx.name("a"), fx.name("missing"))),
	)))
	res := fx.run(fx.assign("r", call(fx.name("fe"))))
	fx.expectError(res, ErrUnresolvedName, "cannot resolve identifier 'missing'")
	if fx.interp.Base.Stack.Len() != 0 {
		t.Fatalf("expected empty stack after error, got %d", fx.interp.Base.Stack.Len())
	}
	if fx.interp.Base.ReturnValue.IsValid() {
		t.Fatalf("expected return value cleared")
	}
	if _, ok := fx.frame.Locals[fx.labels.Insert("r")]; ok {
		t.Fatalf("failed assignment must not declare r")
	}
}

func TestArityMismatch(t *testing.T) {
	fx := newFixture(t, "")
	fx.global("f", fx.function("f", []string{"x"}, block(ret(fx.name("x")))))
	res := fx.run(eval(call(fx.name("f"), lit(1), lit(2))))
	fx.expectError(res, ErrArityMismatch, "function 'f' expects 1 argument(s), got 2")
	if fx.interp.Base.Stack.Len() != 0 {
		t.Fatalf("expected argument copies reclaimed, got %d", fx.interp.Base.Stack.Len())
	}
}

func TestCallDepthLimit(t *testing.T) {
	fx := newFixtureWith(t, "", Options{MaxCallDepth: 8})
	fx.global("rec", fx.function("rec", nil, block(ret(call(fx.name("rec"))))))
	res := fx.run(eval(call(fx.name("rec"))))
	fx.expectError(res, ErrCallDepth, "call stack overflow")
	if len(fx.errors) != 1 {
		t.Fatalf("expected one message, got %v", fx.errors)
	}
	if fx.interp.Depth() != 0 || fx.interp.CurrentFrame != fx.frame {
		t.Fatalf("frames not unwound: depth=%d", fx.interp.Depth())
	}
	if fx.interp.Base.Stack.Len() != 0 {
		t.Fatalf("expected empty stack, got %d", fx.interp.Base.Stack.Len())
	}
}

func TestLogErrorWithStack(t *testing.T) {
	fx := newFixture(t, "r = h()\nfoo()")
	var buf bytes.Buffer
	var trace []FrameInfo
	fx.interp.Base.ErrorFunc = func(m string) {
		trace = fx.interp.StackTrace()
		if err := LogErrorWithStack(&buf, fx.interp, m); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	foo := &ast.NameLookup{TokenIdx: fx.at(6), Name: fx.labels.Insert("foo")}
	fx.global("h", fx.function("h", nil, block(
		&ast.Evaluate{TokenIdx: fx.at(6), Expr: &ast.Call{TokenIdx: fx.at(6), Callable: foo}},
	)))
	stmt := &ast.Assignment{
		TokenIdx: fx.at(0),
		Left:     &ast.NameLookup{TokenIdx: fx.at(0), Name: fx.labels.Insert("r")},
		Right: &ast.Call{
			TokenIdx: fx.at(2),
			Callable: &ast.NameLookup{TokenIdx: fx.at(2), Name: fx.labels.Insert("h")},
		},
	}
	if res := fx.run(stmt); res != value.FnError {
		t.Fatalf("expected error, got %v", res)
	}

	want := "main.bi(2, 1) error: cannot resolve identifier 'foo'\n" +
		"main.bi(1, 5): called from module\n"
	if buf.String() != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, buf.String())
	}
	if len(trace) != 2 || trace[0].Description != "function 'h'" || trace[1].Description != "module" {
		t.Fatalf("unexpected trace %+v", trace)
	}
	if trace[0].Line != 2 || trace[0].Column != 1 || trace[0].Path != "main.bi" {
		t.Fatalf("unexpected top frame %+v", trace[0])
	}
}

func TestHooksRedirectAssignment(t *testing.T) {
	fx := newFixture(t, "")
	assigned := map[string]uint32{}
	fx.frame.Hooks = HookFuncs{
		AssignToLocalFunc: func(fr *StackFrame, attrs any, name label.Label) bool {
			if attrs != "global" {
				return false
			}
			assigned[fr.Interp.Labels.View(name)] = *fr.Interp.Base.ReturnValue.Data.(*uint32)
			return true
		},
	}
	res := fx.run(
		&ast.Assignment{Attributes: "global", Left: fx.name("g"), Right: bin(value.Add, lit(2), lit(3))},
		fx.assign("l", lit(1)),
	)
	if res != value.FnOK {
		t.Fatalf("run: %v %v", res, fx.errors)
	}
	if assigned["g"] != 5 {
		t.Fatalf("expected hook to receive 5, got %v", assigned)
	}
	if _, ok := fx.frame.Locals[fx.labels.Insert("g")]; ok {
		t.Fatalf("redirected name must not become a local")
	}
	if fx.u32("l") != 1 || fx.interp.Base.Stack.Len() != 1 {
		t.Fatalf("expected only l on the stack, got %d slots", fx.interp.Base.Stack.Len())
	}
}

func TestEvaluateHookRejects(t *testing.T) {
	fx := newFixture(t, "")
	fx.frame.Hooks = HookFuncs{
		OnEvaluateFunc: func(*StackFrame, any) bool { return false },
	}
	res := fx.run(eval(bin(value.Add, lit(1), lit(1))))
	fx.expectError(res, ErrHookRejected, "")
	if fx.interp.Base.Stack.Len() != 0 {
		t.Fatalf("expected temporaries reclaimed, got %d", fx.interp.Base.Stack.Len())
	}
}

func TestCustomBlockReentersWithOwnHooks(t *testing.T) {
	fx := newFixture(t, "")
	var collected []string
	fx.frame.Hooks = HookFuncs{
		DoCustomBlockFunc: func(fr *StackFrame, cb *ast.CustomBlock) value.FnResult {
			if fr.Interp.Labels.View(cb.Type) != "deps" {
				return DefaultHooks{}.DoCustomBlock(fr, cb)
			}
			inner := HookFuncs{
				OnEvaluateFunc: func(fr *StackFrame, _ any) bool {
					if fr.CustomBlock != cb {
						t.Errorf("custom block not visible to inner hooks")
					}
					s, ok := value.ToString(fr.Interp.Base.ReturnValue)
					collected = append(collected, s)
					return ok
				},
			}
			return fr.ExecBlockWithHooks(cb.Body, inner, cb)
		},
	}

	deps := &ast.CustomBlock{Type: fx.labels.Insert("deps"), Body: block(eval(str("a")), eval(str("b")))}
	if res := fx.run(deps, eval(str("c"))); res != value.FnOK {
		t.Fatalf("run: %v %v", res, fx.errors)
	}
	if strings.Join(collected, ",") != "a,b" {
		t.Fatalf("expected a,b collected, got %v", collected)
	}
	if fx.frame.CustomBlock != nil {
		t.Fatalf("custom block not restored")
	}
	if fx.interp.Base.Stack.Len() != 0 {
		t.Fatalf("expected empty stack, got %d", fx.interp.Base.Stack.Len())
	}

	other := &ast.CustomBlock{Type: fx.labels.Insert("other")}
	fx.expectError(fx.run(other), ErrUnsupportedNode, "custom block 'other' is not supported here")
}

func TestInterpolatedString(t *testing.T) {
	fx := newFixture(t, "")
	if res := fx.run(fx.assign("x", lit(5))); res != value.FnOK {
		t.Fatalf("init: %v", fx.errors)
	}
	s := &ast.InterpolatedString{Pieces: []ast.Piece{
		{Literal: "n=", Embed: fx.name("x")},
		{Literal: " ok=", Embed: fx.name("true")},
		{Literal: " s=", Embed: str("in")},
		{Literal: "!"},
	}}
	if res := fx.frame.Eval(s); res != value.FnOK {
		t.Fatalf("eval: %v", fx.errors)
	}
	if got := *fx.interp.Base.ReturnValue.Data.(*string); got != "n=5 ok=true s=in!" {
		t.Fatalf("unexpected string %q", got)
	}

	fx.global("f", fx.function("f", nil, block()))
	bad := &ast.InterpolatedString{Pieces: []ast.Piece{{Literal: "x", Embed: fx.name("f")}}}
	fx.expectError(fx.frame.Eval(bad), ErrNotString, "cannot convert 'Function' to string")
}

func TestIfBranches(t *testing.T) {
	fx := newFixture(t, "")
	res := fx.run(&ast.If{
		Condition:  fx.name("false"),
		TrueBlock:  block(fx.assign("a", lit(1))),
		FalseBlock: block(fx.assign("b", lit(2))),
	})
	if res != value.FnOK {
		t.Fatalf("run: %v", fx.errors)
	}
	if _, ok := fx.frame.Locals[fx.labels.Insert("a")]; ok {
		t.Fatalf("true branch must not run")
	}
	if fx.u32("b") != 2 {
		t.Fatalf("expected b == 2")
	}

	height := fx.interp.Base.Stack.Len()
	res = fx.run(&ast.If{Condition: bin(value.LessThan, lit(1), lit(2)), TrueBlock: block()})
	if res != value.FnOK || fx.interp.Base.Stack.Len() != height {
		t.Fatalf("condition temporaries leaked: %d slots", fx.interp.Base.Stack.Len())
	}

	fx.expectError(fx.run(&ast.If{Condition: lit(1), TrueBlock: block()}), ErrNotBool, "cannot convert 'u32' to bool")
}

func TestNativeCallables(t *testing.T) {
	fx := newFixture(t, "")
	fx.global("add1", value.NewNativeFunction(func(p *value.FnParams) value.FnResult {
		if len(p.Args) != 1 {
			return p.Base.Errorf("add1 expects 1 argument")
		}
		return value.Produce(p.Base, value.U32, *p.Args[0].Data.(*uint32)+1)
	}))
	counter := uint32(10)
	self := value.Bind(&counter, value.U32)
	fx.global("bump", value.NewBoundNativeMethod(self, func(self value.Object, p *value.FnParams) value.FnResult {
		*self.Data.(*uint32) += *p.Args[0].Data.(*uint32)
		p.Base.ReturnValue = value.Object{}
		return value.FnOK
	}))
	var seenSelf value.Object
	method := value.NewNativeFunction(func(p *value.FnParams) value.FnResult {
		seenSelf = p.Self
		return value.Produce(p.Base, value.U32, uint32(len(p.Args)))
	})
	fx.global("bound", value.NewBoundMethod(self, method))

	res := fx.run(
		fx.assign("r", call(fx.name("add1"), lit(4))),
		eval(call(fx.name("bump"), lit(5))),
		fx.assign("n", call(fx.name("bound"), lit(1), lit(2))),
	)
	if res != value.FnOK {
		t.Fatalf("run: %v %v", res, fx.errors)
	}
	if fx.u32("r") != 5 || counter != 15 || fx.u32("n") != 2 {
		t.Fatalf("unexpected results r=%d counter=%d n=%d", fx.u32("r"), counter, fx.u32("n"))
	}
	if seenSelf.Data != self.Data {
		t.Fatalf("bound method did not receive its target")
	}
	if fx.interp.Base.Stack.Len() != 2 {
		t.Fatalf("expected two slots, got %d", fx.interp.Base.Stack.Len())
	}

	fx.expectError(fx.run(eval(call(lit(3)))), ErrNotCallable, "cannot call 'u32' as a function")

	script := fx.function("f", nil, block())
	fx.global("m", value.NewBoundMethod(self, script))
	fx.expectError(fx.run(eval(call(fx.name("m")))), ErrNotCallable, "function 'f' cannot be called as a method")
}

type countingType struct {
	value.NativeType[uint32]
	copies int
}

func (c *countingType) Copy(dst, src any) {
	c.copies++
	c.NativeType.Copy(dst, src)
}

func TestFreshTemporaryArgumentIsNotCopied(t *testing.T) {
	fx := newFixture(t, "")
	ct := &countingType{NativeType: value.NativeType[uint32]{TypeName: "counted"}}
	fx.global("make", value.NewNativeFunction(func(p *value.FnParams) value.FnResult {
		return value.Produce(p.Base, ct, uint32(7))
	}))
	var got []uint32
	fx.global("sink", value.NewNativeFunction(func(p *value.FnParams) value.FnResult {
		got = append(got, *p.Args[0].Data.(*uint32))
		p.Base.ReturnValue = value.Object{}
		return value.FnOK
	}))
	host := uint32(3)
	fx.global("h", value.Bind(&host, ct))

	if res := fx.run(eval(call(fx.name("sink"), call(fx.name("make"))))); res != value.FnOK {
		t.Fatalf("run: %v", fx.errors)
	}
	if ct.copies != 0 {
		t.Fatalf("expected temporary to be handed over, got %d copies", ct.copies)
	}
	if res := fx.run(eval(call(fx.name("sink"), fx.name("h")))); res != value.FnOK {
		t.Fatalf("run: %v", fx.errors)
	}
	if ct.copies != 1 {
		t.Fatalf("expected one copy of a named value, got %d", ct.copies)
	}
	if len(got) != 2 || got[0] != 7 || got[1] != 3 {
		t.Fatalf("unexpected arguments %v", got)
	}
}

func TestInterruptStopsLoop(t *testing.T) {
	fx := newFixture(t, "")
	n := 0
	fx.interp.SetInterrupt(func() error {
		n++
		if n > 20 {
			return errors.New("stop")
		}
		return nil
	})
	res := fx.run(
		fx.assign("i", lit(0)),
		&ast.While{Condition: fx.name("true"), Block: block(fx.assign("i", bin(value.Add, fx.name("i"), lit(1))))},
	)
	fx.expectError(res, ErrInterrupted, "execution interrupted: stop")
	if fx.interp.Base.Stack.Len() != 1 {
		t.Fatalf("expected only i on the stack, got %d", fx.interp.Base.Stack.Len())
	}
}

type point struct{ X uint32 }

type pointType struct {
	value.NativeType[point]
}

func (pt *pointType) PropertyLookup(base *value.Base, obj value.Object, name string) value.FnResult {
	p := obj.Data.(*point)
	if name == "x" {
		base.ReturnValue = value.Bind(&p.X, value.U32)
		return value.FnOK
	}
	return value.UnknownProperty(base, obj, name)
}

func TestPropertyAssignmentAndLookup(t *testing.T) {
	fx := newFixture(t, "")
	pt := &point{X: 1}
	fx.global("p", value.Bind(pt, &pointType{value.NativeType[point]{TypeName: "Point"}}))

	res := fx.run(
		&ast.Assignment{Left: fx.prop(fx.name("p"), "x"), Right: bin(value.Add, lit(6), lit(1))},
		fx.assign("s", str("ab")),
		fx.assign("n", fx.prop(fx.name("s"), "length")),
	)
	if res != value.FnOK {
		t.Fatalf("run: %v %v", res, fx.errors)
	}
	if pt.X != 7 {
		t.Fatalf("expected p.x == 7, got %d", pt.X)
	}
	if fx.u32("n") != 2 {
		t.Fatalf("expected n == 2")
	}

	res = fx.run(&ast.Assignment{Left: fx.prop(fx.name("p"), "x"), Right: str("no")})
	fx.expectError(res, ErrTypeMismatch, "cannot assign 'String' to 'u32'")

	res = fx.run(eval(fx.prop(fx.name("p"), "y")))
	if res != value.FnError || fx.errors[len(fx.errors)-1] != "'Point' has no property 'y'" {
		t.Fatalf("unexpected lookup failure %v", fx.errors)
	}
}

func TestAssignToLiteralRejected(t *testing.T) {
	fx := newFixture(t, "5 = 3")
	five := lit(5)
	res := fx.run(&ast.Assignment{Left: five, Right: lit(3)})
	fx.expectError(res, ErrNotAssignable, "cannot assign to a literal")
	if five.Value != 5 {
		t.Fatalf("literal storage was modified: %d", five.Value)
	}
	if fx.interp.Base.Stack.Len() != 0 {
		t.Fatalf("expected empty stack, got %d", fx.interp.Base.Stack.Len())
	}

	// a literal copied into a local is writable storage of its own
	res = fx.run(fx.assign("x", five), fx.assign("x", lit(9)))
	if res != value.FnOK || fx.u32("x") != 9 || five.Value != 5 {
		t.Fatalf("unexpected rebind result %v x=%d literal=%d", res, fx.u32("x"), five.Value)
	}
}

func TestRebindChangesType(t *testing.T) {
	fx := newFixture(t, "")
	res := fx.run(
		fx.assign("x", lit(1)),
		fx.assign("x", str("now a string")),
		fx.assign("y", fx.name("x")),
	)
	if res != value.FnOK {
		t.Fatalf("run: %v", fx.errors)
	}
	x, ok := value.Cast[string](fx.local("x"))
	if !ok || *x != "now a string" {
		t.Fatalf("expected x rebound to a string")
	}
	y, _ := value.Cast[string](fx.local("y"))
	if fx.local("x").SameSlot(fx.local("y")) || *y != *x {
		t.Fatalf("expected y to be an independent copy")
	}
	if fx.interp.Base.Stack.Len() != 2 {
		t.Fatalf("expected two slots, got %d", fx.interp.Base.Stack.Len())
	}
}

func TestFrameLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	fx := newFixtureWith(t, "", Options{Logger: logger})
	fx.global("f", fx.function("f", nil, block(ret(lit(1)))))
	if res := fx.run(eval(call(fx.name("f")))); res != value.FnOK {
		t.Fatalf("run: %v", fx.errors)
	}
	out := buf.String()
	if !strings.Contains(out, "push stack frame") || !strings.Contains(out, "pop stack frame") {
		t.Fatalf("expected frame logging, got:\n%s", out)
	}
	if !strings.Contains(out, "depth=1") {
		t.Fatalf("expected depth attribute, got:\n%s", out)
	}
}
