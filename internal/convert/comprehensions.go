package convert

import (
	"pyast/internal/ast"
	"pyast/internal/cst"
	"pyast/internal/token"
)

// ============================================================
// Displays
// ============================================================

// convertTuple converts a parenthesized tuple to a sequence.
func convertTuple(c *Converter, n *cst.Node) (Result, error) {
	return convertSequenceOf(c, n)
}

// displayOf returns a converter for list, set and dict displays. Elements
// are the production children, or the items of a StarNamedExpressions
// child.
func displayOf(op ast.Operator) convertFunc {
	return func(c *Converter, n *cst.Node) (Result, error) {
		items := n.NonTerminals()
		if len(items) == 1 && items[0].Kind == cst.StarNamedExpressions {
			items = items[0].NonTerminals()
		}
		k := c.collect()
		elements, err := k.exprs(items)
		if err != nil {
			return Result{}, err
		}
		return k.result(ast.Op(op, elements...))
	}
}

func convertKvpair(c *Converter, n *cst.Node) (Result, error) {
	parts := n.NonTerminals()
	if len(parts) != 2 {
		return Result{}, malformed(n, "expected key and value, got %d parts", len(parts))
	}
	k := c.collect()
	pair, err := k.exprs(parts)
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(ast.OpKeyValuePair, pair...))
}

// ============================================================
// Comprehensions
// ============================================================

// comprehensionOf returns a converter building op[element, sequence[clause...]].
// Dict comprehensions get their key-value-pair element from the Kvpair
// child.
func comprehensionOf(op ast.Operator) convertFunc {
	return func(c *Converter, n *cst.Node) (Result, error) {
		parts := n.NonTerminals()
		if len(parts) != 2 || parts[1].Kind != cst.ForIfClauses {
			return Result{}, malformed(n, "expected element and for clauses")
		}
		k := c.collect()
		element, err := k.expr(parts[0])
		if err != nil {
			return Result{}, err
		}
		clauses, err := k.expr(parts[1])
		if err != nil {
			return Result{}, err
		}
		return k.result(ast.Op(op, element, clauses))
	}
}

// convertForIfClause converts [async] for targets in iterable (if cond)* to
// for-if-clause[target, iterable, cond...].
func convertForIfClause(c *Converter, n *cst.Node) (Result, error) {
	op := ast.OpForIfClause
	if n.Has(token.KW_ASYNC) {
		op = ast.OpAsyncForIfClause
	}
	parts := n.NonTerminals()
	if len(parts) < 2 || parts[0].Kind != cst.StarTargets {
		return Result{}, malformed(n, "expected target and iterable")
	}
	k := c.collect()
	operands, err := k.exprs(parts)
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(op, operands...))
}
