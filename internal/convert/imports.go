package convert

import (
	"strings"

	"pyast/internal/ast"
	"pyast/internal/cst"
	"pyast/internal/token"
)

// convertImportName converts import a.b as c, d to one @import call per
// imported module.
func convertImportName(c *Converter, n *cst.Node) (Result, error) {
	names := n.Child(cst.DottedAsNames)
	if names == nil {
		return Result{}, malformed(n, "import without names")
	}
	return c.Dispatch(names)
}

func convertDottedAsNames(c *Converter, n *cst.Node) (Result, error) {
	return convertStatements(c, n)
}

// convertDottedAsName builds @import[module, alias?].
func convertDottedAsName(c *Converter, n *cst.Node) (Result, error) {
	module := n.Child(cst.DottedName)
	if module == nil {
		return Result{}, malformed(n, "import without a module name")
	}
	args := []ast.Expression{ast.Str(dottedName(module))}
	if alias := n.Tok(token.NAME); alias != nil {
		args = append(args, ast.Str(alias.Token.Lexeme))
	}
	return Result{Node: ast.MarkerCallStatement(ast.MarkerImport, args...)}, nil
}

func convertDottedName(c *Converter, n *cst.Node) (Result, error) {
	return Result{Node: ast.Str(dottedName(n))}, nil
}

// convertImportFrom builds @import-from[module, item...]. The module keeps
// its leading dots, so from . import x names module ".".
func convertImportFrom(c *Converter, n *cst.Node) (Result, error) {
	var module strings.Builder
	for _, child := range n.Children {
		switch {
		case child.Is(token.DOT), child.Is(token.ELLIPSIS):
			module.WriteString(child.Token.Lexeme)
		case child.Kind == cst.DottedName:
			module.WriteString(dottedName(child))
		}
	}
	targets := n.Child(cst.ImportFromTargets)
	if targets == nil {
		return Result{}, malformed(n, "from import without targets")
	}
	k := c.collect()
	items, err := convertAs[*ast.SequenceExpression](k, targets, "import targets")
	if err != nil {
		return Result{}, err
	}
	args := append([]ast.Expression{ast.Str(module.String())}, items.Expressions...)
	return k.result(ast.MarkerCallStatement(ast.MarkerImportFrom, args...))
}

// convertImportFromTargets converts the imported names to a sequence; a
// star import is a single wildcard literal.
func convertImportFromTargets(c *Converter, n *cst.Node) (Result, error) {
	if n.Has(token.STAR) {
		return Result{Node: &ast.SequenceExpression{
			Expressions: []ast.Expression{ast.Lit(ast.LiteralWildcard, "*")},
		}}, nil
	}
	return convertSequenceOf(c, n)
}

// convertImportFromAsName converts x to a literal and x as y to as[x, y].
func convertImportFromAsName(c *Converter, n *cst.Node) (Result, error) {
	var names []ast.Expression
	for _, child := range n.Children {
		if child.Is(token.NAME) {
			names = append(names, ast.Str(child.Token.Lexeme))
		}
	}
	switch len(names) {
	case 1:
		return Result{Node: names[0]}, nil
	case 2:
		return Result{Node: ast.Op(ast.OpAs, names...)}, nil
	}
	return Result{}, malformed(n, "expected name [as alias]")
}
