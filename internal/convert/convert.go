// Package convert translates a Python concrete syntax tree into the general
// AST.
//
// Every production kind has one converter registered in a dispatch table.
// Converters receive the Converter and a node, dispatch recursively on the
// node's children and return a Result. Nothing is accumulated outside return
// values, so a Converter can be shared by concurrent conversions and every
// converter can be exercised on a hand-built sub-tree.
package convert

import (
	"pyast/internal/ast"
	"pyast/internal/cst"
)

// Result is the envelope every converter returns: the converted node, if
// any, and the function declarations hoisted out of the subtree.
type Result struct {
	Node                 ast.Node
	FunctionDeclarations []*ast.FunctionDeclarationStatement
}

// Converter converts syntax trees for one Python version.
type Converter struct {
	version Version
}

// New returns a converter for the given language version string.
func New(version string) (*Converter, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return nil, err
	}
	return &Converter{version: v}, nil
}

// Version returns the language version the converter targets.
func (c *Converter) Version() Version {
	return c.version
}

// Dispatch routes n to the converter registered for its kind.
func (c *Converter) Dispatch(n *cst.Node) (Result, error) {
	if n == nil {
		return Result{}, unexpectedNode(nil)
	}
	fn, ok := converters[n.Kind]
	if !ok {
		return Result{}, unexpectedNode(n)
	}
	if err := c.checkAvailable(n); err != nil {
		return Result{}, err
	}
	return fn(c, n)
}

// ============================================================
// Child conversion
// ============================================================

// collector converts the children of one node and gathers their hoisted
// declarations in source order. It lives for a single converter call.
type collector struct {
	c     *Converter
	decls []*ast.FunctionDeclarationStatement
}

func (c *Converter) collect() *collector {
	return &collector{c: c}
}

// node converts n and keeps its hoisted declarations.
func (k *collector) node(n *cst.Node) (ast.Node, error) {
	res, err := k.c.Dispatch(n)
	if err != nil {
		return nil, err
	}
	k.decls = append(k.decls, res.FunctionDeclarations...)
	return res.Node, nil
}

// expr converts n, which must produce an expression.
func (k *collector) expr(n *cst.Node) (ast.Expression, error) {
	return convertAs[ast.Expression](k, n, "expression")
}

// stmt converts n, which must produce a statement or nothing.
func (k *collector) stmt(n *cst.Node) (ast.Statement, error) {
	node, err := k.node(n)
	if err != nil || node == nil {
		return nil, err
	}
	s, ok := node.(ast.Statement)
	if !ok {
		return nil, unexpectedResult(n, "statement", node)
	}
	return s, nil
}

// seq converts n and returns its result as a statement sequence.
func (k *collector) seq(n *cst.Node) (*ast.SequenceStatement, error) {
	s, err := k.stmt(n)
	if err != nil {
		return nil, err
	}
	return ast.Seq(s), nil
}

// exprs converts every node of nodes to an expression.
func (k *collector) exprs(nodes []*cst.Node) ([]ast.Expression, error) {
	out := make([]ast.Expression, 0, len(nodes))
	for _, n := range nodes {
		e, err := k.expr(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// stmts converts every node of nodes, dropping those that produce nothing.
func (k *collector) stmts(nodes []*cst.Node) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(nodes))
	for _, n := range nodes {
		s, err := k.stmt(n)
		if err != nil {
			return nil, err
		}
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

// result wraps node with the gathered declarations.
func (k *collector) result(node ast.Node) (Result, error) {
	return Result{Node: node, FunctionDeclarations: k.decls}, nil
}

// convertAs converts n and requires the result to be a T.
func convertAs[T ast.Node](k *collector, n *cst.Node, want string) (T, error) {
	var zero T
	node, err := k.node(n)
	if err != nil {
		return zero, err
	}
	t, ok := node.(T)
	if !ok {
		return zero, unexpectedResult(n, want, node)
	}
	return t, nil
}

// passThrough converts the only production child of n unchanged.
func passThrough(c *Converter, n *cst.Node) (Result, error) {
	children := n.NonTerminals()
	if len(children) != 1 {
		return Result{}, malformed(n, "expected one child production, got %d", len(children))
	}
	return c.Dispatch(children[0])
}
