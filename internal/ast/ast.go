// Package ast defines the general AST: the language-agnostic tree of actors,
// event listeners, statements and expressions that source converters target.
//
// Nodes are built bottom-up and never mutated afterwards. They carry no
// source positions, so structurally identical programs produce identical
// trees regardless of formatting.
package ast

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all general AST nodes.
type Node interface {
	astNode()
}

// Expression is the interface for expression nodes.
type Expression interface {
	Node
	exprNode()
}

// Statement is the interface for statement nodes.
type Statement interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to seal the interfaces)
// ============================================================

// ExprBase is embedded by all expression nodes.
type ExprBase struct{}

func (ExprBase) astNode()  {}
func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{}

func (StmtBase) astNode()  {}
func (StmtBase) stmtNode() {}

// ============================================================
// Expressions
// ============================================================

// Literal types. Declarations without a value use the annotation text as
// the literal type instead.
const (
	LiteralNumber   = "number"
	LiteralString   = "string"
	LiteralBytes    = "bytes"
	LiteralBoolean  = "boolean"
	LiteralNone     = "none"
	LiteralEllipsis = "ellipsis"
	LiteralWildcard = "wildcard"
	LiteralMarker   = "marker"
)

// LiteralExpression is a typed scalar. Value keeps the source text.
type LiteralExpression struct {
	ExprBase
	Type  string
	Value string
}

// VariableExpression is a bare identifier reference.
type VariableExpression struct {
	ExprBase
	Name string
}

// OperatorExpression combines operands under a named operation. Operand
// order mirrors source order unless the operator documents otherwise.
type OperatorExpression struct {
	ExprBase
	Operator Operator
	Operands []Expression
}

// FunctionCallExpression is a direct call by name.
type FunctionCallExpression struct {
	ExprBase
	Name      string
	Arguments []Expression
}

// LambdaExpression is an anonymous callable whose body is a sequence
// holding a single return statement.
type LambdaExpression struct {
	ExprBase
	ParameterNames []string
	Body           *SequenceStatement
}

// SequenceExpression is an ordered group of expressions without operator
// semantics, such as tuple elements.
type SequenceExpression struct {
	ExprBase
	Expressions []Expression
}

// AssignmentExpression is an assignment in expression position.
type AssignmentExpression struct {
	ExprBase
	Variable Expression
	Value    Expression
}

// ============================================================
// Statements
// ============================================================

// SequenceStatement is an ordered list of statements.
type SequenceStatement struct {
	StmtBase
	Statements []Statement
}

// ConditionStatement branches on Condition. WhenFalse is an empty sequence
// when the source has no else branch.
type ConditionStatement struct {
	StmtBase
	Condition Expression
	WhenTrue  Statement
	WhenFalse Statement
}

// LoopStatement repeats Body while Condition holds. For-each loops encode
// their target and iterable in a for-each operator condition.
type LoopStatement struct {
	StmtBase
	Condition Expression
	Body      Statement
}

// BreakStatement exits the innermost loop.
type BreakStatement struct {
	StmtBase
}

// ContinueStatement skips to the next iteration of the innermost loop.
type ContinueStatement struct {
	StmtBase
}

// ReturnStatement returns Value, or nothing when Value is nil.
type ReturnStatement struct {
	StmtBase
	Value Expression
}

// AssignmentStatement assigns Value to a single target.
type AssignmentStatement struct {
	StmtBase
	Variable Expression
	Value    Expression
}

// MultiAssignmentStatement assigns Values to one or more targets. Each
// target that destructures is a SequenceExpression.
type MultiAssignmentStatement struct {
	StmtBase
	AssignmentExpressions []Expression
	Values                []Expression
}

// VariableDeclarationStatement declares Name. A declaration without an
// initializer holds a literal whose type is the annotation text and whose
// value is "null".
type VariableDeclarationStatement struct {
	StmtBase
	Name  string
	Value Expression
}

// FunctionDeclarationStatement declares a named function. Decorators also
// carries declaration modifiers such as type parameters and async.
type FunctionDeclarationStatement struct {
	StmtBase
	Name           string
	ParameterNames []string
	Body           Statement
	Decorators     []Expression
}

// ClassDeclarationStatement declares a class. Decorators also carries
// class keywords and type parameters.
type ClassDeclarationStatement struct {
	StmtBase
	Name        string
	BaseClasses []Expression
	Body        Statement
	Decorators  []Expression
}

// FunctionCallStatement is a call by name in statement position. Marker
// statements use a reserved Name.
type FunctionCallStatement struct {
	StmtBase
	Name      string
	Arguments []Expression
}

// ExpressionAsStatement evaluates an expression for its effects.
type ExpressionAsStatement struct {
	StmtBase
	Expression Expression
}

// ============================================================
// Top level
// ============================================================

// Actor is a runnable program unit with its entry points and hoisted
// function declarations.
type Actor struct {
	ComponentID          string
	EventListeners       []*EventListener
	FunctionDeclarations []*FunctionDeclarationStatement
}

func (*Actor) astNode() {}

// EventListener runs Action when Condition's event fires.
type EventListener struct {
	Condition EventCondition
	Action    *SequenceStatement
}

func (*EventListener) astNode() {}

// EventCondition names the event an EventListener is bound to.
type EventCondition struct {
	Event      string
	Parameters []Expression
}

// GeneralAst is the converter output: a list of actors.
type GeneralAst []*Actor
