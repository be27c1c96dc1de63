package convert

import (
	"fmt"

	"pyast/internal/ast"
	"pyast/internal/cst"
	"pyast/internal/diag"
	"pyast/internal/parser"
)

// Convert converts a whole program. The top-level statements become the
// action of the main event listener of a single executable actor. Python
// declarations are never hoisted, so a non-empty hoisted list at this point
// is ErrHoistingInvariant.
func (c *Converter) Convert(root *cst.Node) (ast.GeneralAst, error) {
	k := c.collect()
	stmt, err := k.stmt(root)
	if err != nil {
		return nil, err
	}
	if len(k.decls) > 0 {
		return nil, fmt.Errorf("%w: %d declaration(s), first %q", ErrHoistingInvariant, len(k.decls), k.decls[0].Name)
	}
	return ast.NewProgram(ast.Seq(stmt), nil), nil
}

// Source lexes, parses and converts source. Syntax errors are returned as
// a *diag.ListError and nothing is converted.
func (c *Converter) Source(source, filename string) (ast.GeneralAst, error) {
	root, diags := parser.ParseSource(source, filename)
	if diag.HasErrors(diags) {
		return nil, &diag.ListError{Filename: filename, Diagnostics: diags}
	}
	return c.Convert(root)
}

// Source converts source for the given language version.
func Source(source, filename, version string) (ast.GeneralAst, error) {
	c, err := New(version)
	if err != nil {
		return nil, err
	}
	return c.Source(source, filename)
}
