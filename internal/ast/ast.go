package ast

import (
	"github.com/xirelogy/go-biscuit/internal/label"
	"github.com/xirelogy/go-biscuit/internal/tokenizer"
	"github.com/xirelogy/go-biscuit/internal/value"
)

// Node represents any tree node. TokenIdx is the index of the node's first
// token in the tokenizer that produced it.
type Node interface {
	TokenIndex() uint32
}

// Statement is an executable node.
type Statement interface {
	Node
	stmtNode()
}

// Expression produces a value.
type Expression interface {
	Node
	exprNode()
}

// StatementBlock is an ordered list of statements.
type StatementBlock struct {
	Statements []Statement
}

// FunctionDefinition is a script function. It is also the data of a
// callable object, so it can be stored in variables and passed around.
type FunctionDefinition struct {
	TokenIdx       uint32
	Name           label.Label
	ParameterNames []label.Label
	Body           *StatementBlock
	Tkr            *tokenizer.Tokenizer
}

func (f *FunctionDefinition) TokenIndex() uint32 { return f.TokenIdx }

// Expressions

type NameLookup struct {
	TokenIdx uint32
	Name     label.Label
}

func (n *NameLookup) TokenIndex() uint32 { return n.TokenIdx }
func (n *NameLookup) exprNode()          {}

type IntegerLiteral struct {
	TokenIdx uint32
	Value    uint32
}

func (i *IntegerLiteral) TokenIndex() uint32 { return i.TokenIdx }
func (i *IntegerLiteral) exprNode()          {}

// Piece is one segment of an interpolated string: literal text followed by
// an optional embedded expression.
type Piece struct {
	Literal string
	Embed   Expression
}

type InterpolatedString struct {
	TokenIdx uint32
	Pieces   []Piece
}

func (s *InterpolatedString) TokenIndex() uint32 { return s.TokenIdx }
func (s *InterpolatedString) exprNode()          {}

type PropertyLookup struct {
	TokenIdx uint32
	Obj      Expression
	Property label.Label
}

func (p *PropertyLookup) TokenIndex() uint32 { return p.TokenIdx }
func (p *PropertyLookup) exprNode()          {}

type BinaryOp struct {
	TokenIdx uint32
	Op       value.BinaryOp
	Left     Expression
	Right    Expression
}

func (b *BinaryOp) TokenIndex() uint32 { return b.TokenIdx }
func (b *BinaryOp) exprNode()          {}

type UnaryOp struct {
	TokenIdx uint32
	Op       value.UnaryOp
	Expr     Expression
}

func (u *UnaryOp) TokenIndex() uint32 { return u.TokenIdx }
func (u *UnaryOp) exprNode()          {}

type Call struct {
	TokenIdx uint32
	Callable Expression
	Args     []Expression
}

func (c *Call) TokenIndex() uint32 { return c.TokenIdx }
func (c *Call) exprNode()          {}

// Statements

type If struct {
	TokenIdx   uint32
	Condition  Expression
	TrueBlock  *StatementBlock
	FalseBlock *StatementBlock // nil when there is no else branch
}

func (i *If) TokenIndex() uint32 { return i.TokenIdx }
func (i *If) stmtNode()          {}

type While struct {
	TokenIdx  uint32
	Condition Expression
	Block     *StatementBlock
}

func (w *While) TokenIndex() uint32 { return w.TokenIdx }
func (w *While) stmtNode()          {}

// Assignment declares a local on first assignment and rebinds it afterwards.
// Attributes is opaque host data handed to the AssignToLocal hook.
type Assignment struct {
	TokenIdx   uint32
	Attributes any
	Left       Expression
	Right      Expression
}

func (a *Assignment) TokenIndex() uint32 { return a.TokenIdx }
func (a *Assignment) stmtNode()          {}

// Evaluate runs an expression for its value. Attributes is opaque host data
// handed to the OnEvaluate hook.
type Evaluate struct {
	TokenIdx   uint32
	Attributes any
	Expr       Expression
}

func (e *Evaluate) TokenIndex() uint32 { return e.TokenIdx }
func (e *Evaluate) stmtNode()          {}

type Return struct {
	TokenIdx uint32
	Expr     Expression
}

func (r *Return) TokenIndex() uint32 { return r.TokenIdx }
func (r *Return) stmtNode()          {}

// CustomBlock is a host-defined block keyword such as "dependencies { ... }".
type CustomBlock struct {
	TokenIdx uint32
	Type     label.Label
	Name     label.Label
	Body     *StatementBlock
}

func (c *CustomBlock) TokenIndex() uint32 { return c.TokenIdx }
func (c *CustomBlock) stmtNode()          {}
