// Package cst defines the concrete syntax tree produced by the Python parser.
//
// Every grammar production is a Kind; a Node keeps all of its children,
// including terminal tokens, in source order. Converters inspect children by
// kind and token rather than through production-specific structs, so the set
// of productions is a closed enum that a dispatcher can switch over.
package cst

import (
	"fmt"
	"strings"

	"pyast/internal/span"
	"pyast/internal/token"
)

// Kind identifies a grammar production.
type Kind int

const (
	Terminal Kind = iota // leaf wrapping a single token

	// Module structure
	FileInput
	SimpleStatements
	Block

	// Simple statements
	ExpressionStatement
	Assignment
	ReturnStatement
	PassStatement
	BreakStatement
	ContinueStatement
	RaiseStatement
	GlobalStatement
	NonlocalStatement
	DelStatement
	AssertStatement
	ImportName
	ImportFrom
	DottedAsNames
	DottedAsName
	DottedName
	ImportFromTargets
	ImportFromAsName
	TypeAlias

	// Compound statements
	IfStatement
	ElifStatement
	ElseBlock
	WhileStatement
	ForStatement
	WithStatement
	WithItem
	TryStatement
	ExceptBlock
	ExceptStarBlock
	FinallyBlock
	FunctionDef
	FunctionDefRaw
	ClassDef
	ClassDefRaw
	Decorators
	Parameters
	Param
	Annotation
	Default
	TypeParams
	TypeParam
	TypeParamBound
	TypeParamDefault

	// Pattern matching
	MatchStatement
	SubjectExpr
	CaseBlock
	Guard
	Patterns
	AsPattern
	OrPattern
	LiteralPattern
	CapturePattern
	WildcardPattern
	ValuePattern
	GroupPattern
	SequencePattern
	StarPattern
	MappingPattern
	KeyValuePattern
	DoubleStarPattern
	ClassPattern
	KeywordPattern

	// Expressions, loosest to tightest
	StarExpressions
	StarExpression
	StarNamedExpressions
	StarNamedExpression
	StarTargets
	NamedExpression
	AssignmentExpression
	Expression
	Lambdef
	YieldExpression
	Disjunction
	Conjunction
	Inversion
	Comparison
	CompareOpBitwiseOrPair
	BitwiseOr
	BitwiseXor
	BitwiseAnd
	ShiftExpr
	Sum
	Term
	Factor
	Power
	AwaitPrimary
	Primary
	Slices
	Slice
	Atom

	// Atoms
	Strings
	String
	FString
	FStringReplacementField
	FStringConversion
	FStringFormatSpec
	Tuple
	Group
	List
	Set
	Dict
	Kvpair
	DoubleStarredKvpair
	Listcomp
	Setcomp
	Dictcomp
	Genexp
	ForIfClauses
	ForIfClause

	// Call arguments
	Arguments
	StarredExpression
	KeywordArgument
	DoubleStarredExpression

	numKinds
)

var kindNames = [...]string{
	Terminal:                "Terminal",
	FileInput:               "FileInput",
	SimpleStatements:        "SimpleStatements",
	Block:                   "Block",
	ExpressionStatement:     "ExpressionStatement",
	Assignment:              "Assignment",
	ReturnStatement:         "ReturnStatement",
	PassStatement:           "PassStatement",
	BreakStatement:          "BreakStatement",
	ContinueStatement:       "ContinueStatement",
	RaiseStatement:          "RaiseStatement",
	GlobalStatement:         "GlobalStatement",
	NonlocalStatement:       "NonlocalStatement",
	DelStatement:            "DelStatement",
	AssertStatement:         "AssertStatement",
	ImportName:              "ImportName",
	ImportFrom:              "ImportFrom",
	DottedAsNames:           "DottedAsNames",
	DottedAsName:            "DottedAsName",
	DottedName:              "DottedName",
	ImportFromTargets:       "ImportFromTargets",
	ImportFromAsName:        "ImportFromAsName",
	TypeAlias:               "TypeAlias",
	IfStatement:             "IfStatement",
	ElifStatement:           "ElifStatement",
	ElseBlock:               "ElseBlock",
	WhileStatement:          "WhileStatement",
	ForStatement:            "ForStatement",
	WithStatement:           "WithStatement",
	WithItem:                "WithItem",
	TryStatement:            "TryStatement",
	ExceptBlock:             "ExceptBlock",
	ExceptStarBlock:         "ExceptStarBlock",
	FinallyBlock:            "FinallyBlock",
	FunctionDef:             "FunctionDef",
	FunctionDefRaw:          "FunctionDefRaw",
	ClassDef:                "ClassDef",
	ClassDefRaw:             "ClassDefRaw",
	Decorators:              "Decorators",
	Parameters:              "Parameters",
	Param:                   "Param",
	Annotation:              "Annotation",
	Default:                 "Default",
	TypeParams:              "TypeParams",
	TypeParam:               "TypeParam",
	TypeParamBound:          "TypeParamBound",
	TypeParamDefault:        "TypeParamDefault",
	MatchStatement:          "MatchStatement",
	SubjectExpr:             "SubjectExpr",
	CaseBlock:               "CaseBlock",
	Guard:                   "Guard",
	Patterns:                "Patterns",
	AsPattern:               "AsPattern",
	OrPattern:               "OrPattern",
	LiteralPattern:          "LiteralPattern",
	CapturePattern:          "CapturePattern",
	WildcardPattern:         "WildcardPattern",
	ValuePattern:            "ValuePattern",
	GroupPattern:            "GroupPattern",
	SequencePattern:         "SequencePattern",
	StarPattern:             "StarPattern",
	MappingPattern:          "MappingPattern",
	KeyValuePattern:         "KeyValuePattern",
	DoubleStarPattern:       "DoubleStarPattern",
	ClassPattern:            "ClassPattern",
	KeywordPattern:          "KeywordPattern",
	StarExpressions:         "StarExpressions",
	StarExpression:          "StarExpression",
	StarNamedExpressions:    "StarNamedExpressions",
	StarNamedExpression:     "StarNamedExpression",
	StarTargets:             "StarTargets",
	NamedExpression:         "NamedExpression",
	AssignmentExpression:    "AssignmentExpression",
	Expression:              "Expression",
	Lambdef:                 "Lambdef",
	YieldExpression:         "YieldExpression",
	Disjunction:             "Disjunction",
	Conjunction:             "Conjunction",
	Inversion:               "Inversion",
	Comparison:              "Comparison",
	CompareOpBitwiseOrPair:  "CompareOpBitwiseOrPair",
	BitwiseOr:               "BitwiseOr",
	BitwiseXor:              "BitwiseXor",
	BitwiseAnd:              "BitwiseAnd",
	ShiftExpr:               "ShiftExpr",
	Sum:                     "Sum",
	Term:                    "Term",
	Factor:                  "Factor",
	Power:                   "Power",
	AwaitPrimary:            "AwaitPrimary",
	Primary:                 "Primary",
	Slices:                  "Slices",
	Slice:                   "Slice",
	Atom:                    "Atom",
	Strings:                 "Strings",
	String:                  "String",
	FString:                 "FString",
	FStringReplacementField: "FStringReplacementField",
	FStringConversion:       "FStringConversion",
	FStringFormatSpec:       "FStringFormatSpec",
	Tuple:                   "Tuple",
	Group:                   "Group",
	List:                    "List",
	Set:                     "Set",
	Dict:                    "Dict",
	Kvpair:                  "Kvpair",
	DoubleStarredKvpair:     "DoubleStarredKvpair",
	Listcomp:                "Listcomp",
	Setcomp:                 "Setcomp",
	Dictcomp:                "Dictcomp",
	Genexp:                  "Genexp",
	ForIfClauses:            "ForIfClauses",
	ForIfClause:             "ForIfClause",
	Arguments:               "Arguments",
	StarredExpression:       "StarredExpression",
	KeywordArgument:         "KeywordArgument",
	DoubleStarredExpression: "DoubleStarredExpression",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds returns every production kind, Terminal excluded, in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds-1)
	for k := Terminal + 1; k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Node is a concrete syntax tree node. Terminal nodes carry Token and have no
// children; every other node has at least one child.
type Node struct {
	Kind     Kind
	Token    token.Token
	Children []*Node
	Span     span.Span
}

// Leaf wraps a token in a Terminal node.
func Leaf(tok token.Token) *Node {
	return &Node{Kind: Terminal, Token: tok, Span: tok.Span}
}

// New creates a production node and computes its span from its children.
func New(kind Kind, children ...*Node) *Node {
	n := &Node{Kind: kind}
	for _, c := range children {
		if c == nil {
			continue
		}
		n.Children = append(n.Children, c)
		n.Span = span.Join(n.Span, c.Span)
	}
	return n
}

// Add appends non-nil children and widens the span.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		n.Children = append(n.Children, c)
		n.Span = span.Join(n.Span, c.Span)
	}
	return n
}

// IsTerminal reports whether n wraps a token.
func (n *Node) IsTerminal() bool { return n.Kind == Terminal }

// Is reports whether n is a terminal of the given token kind.
func (n *Node) Is(kind token.Kind) bool {
	return n != nil && n.Kind == Terminal && n.Token.Kind == kind
}

// Child returns the first child of the given kind, or nil.
func (n *Node) Child(kind Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// ChildrenOf returns all children of the given kind.
func (n *Node) ChildrenOf(kind Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// NonTerminals returns the production children of n, skipping tokens.
func (n *Node) NonTerminals() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind != Terminal {
			out = append(out, c)
		}
	}
	return out
}

// Tok returns the first terminal child of the given token kind, or nil.
func (n *Node) Tok(kind token.Kind) *Node {
	for _, c := range n.Children {
		if c.Is(kind) {
			return c
		}
	}
	return nil
}

// Has reports whether n has a terminal child of the given token kind.
func (n *Node) Has(kind token.Kind) bool {
	return n.Tok(kind) != nil
}

// Count returns how many terminal children of the given token kind n has.
func (n *Node) Count(kind token.Kind) int {
	count := 0
	for _, c := range n.Children {
		if c.Is(kind) {
			count++
		}
	}
	return count
}

// Text reconstructs the source text covered by n from its tokens, separated
// by single spaces where the original had whitespace between them.
func (n *Node) Text() string {
	var b strings.Builder
	prevEnd := -1
	n.walkTokens(func(tok token.Token) {
		if tok.Lexeme == "" {
			return
		}
		if prevEnd >= 0 && tok.Span.Start.Offset > prevEnd {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Lexeme)
		prevEnd = tok.Span.End.Offset
	})
	return b.String()
}

func (n *Node) walkTokens(fn func(token.Token)) {
	if n.Kind == Terminal {
		fn(n.Token)
		return
	}
	for _, c := range n.Children {
		c.walkTokens(fn)
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n *Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += Count(c)
	}
	return total
}
