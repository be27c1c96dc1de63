package convert

import (
	"pyast/internal/ast"
	"pyast/internal/cst"
	"pyast/internal/token"
)

// ============================================================
// Functions
// ============================================================

// convertFunctionDef attaches source decorators in front of the modifiers
// the raw declaration already carries.
func convertFunctionDef(c *Converter, n *cst.Node) (Result, error) {
	raw := n.Child(cst.FunctionDefRaw)
	if raw == nil {
		return Result{}, malformed(n, "decorated definition without a function")
	}
	k := c.collect()
	decorators, err := decoratorsOf(k, n)
	if err != nil {
		return Result{}, err
	}
	fn, err := convertAs[*ast.FunctionDeclarationStatement](k, raw, "function declaration")
	if err != nil {
		return Result{}, err
	}
	return k.result(&ast.FunctionDeclarationStatement{
		Name:           fn.Name,
		ParameterNames: fn.ParameterNames,
		Body:           fn.Body,
		Decorators:     append(decorators, fn.Decorators...),
	})
}

// convertFunctionDefRaw builds a function declaration whose decorator list
// holds its type parameters and, for async def, an async modifier. The
// return annotation is discarded.
func convertFunctionDefRaw(c *Converter, n *cst.Node) (Result, error) {
	name := n.Tok(token.NAME)
	block := n.Child(cst.Block)
	if name == nil || block == nil {
		return Result{}, malformed(n, "function without a name or body")
	}
	k := c.collect()
	modifiers, err := typeParametersOf(k, n)
	if err != nil {
		return Result{}, err
	}
	if n.Has(token.KW_ASYNC) {
		modifiers = append(modifiers, ast.Op(ast.OpAsync))
	}
	body, err := k.seq(block)
	if err != nil {
		return Result{}, err
	}
	return k.result(&ast.FunctionDeclarationStatement{
		Name:           name.Token.Lexeme,
		ParameterNames: parameterNames(n.Child(cst.Parameters)),
		Body:           body,
		Decorators:     modifiers,
	})
}

// parameterNames lists parameter names with their star prefixes and keeps
// bare '*' and '/' separators.
func parameterNames(params *cst.Node) []string {
	names := []string{}
	if params == nil {
		return names
	}
	for _, child := range params.Children {
		switch {
		case child.Kind == cst.Param:
			names = append(names, paramName(child))
		case child.Is(token.STAR), child.Is(token.SLASH):
			names = append(names, child.Token.Lexeme)
		}
	}
	return names
}

func paramName(param *cst.Node) string {
	var prefix string
	if star := param.Children[0]; star.Is(token.STAR) || star.Is(token.DOUBLESTAR) {
		prefix = star.Token.Lexeme
	}
	if name := param.Tok(token.NAME); name != nil {
		return prefix + name.Token.Lexeme
	}
	return prefix
}

// convertParameters converts a parameter list to a sequence of name
// literals.
func convertParameters(c *Converter, n *cst.Node) (Result, error) {
	names := parameterNames(n)
	exprs := make([]ast.Expression, len(names))
	for i, name := range names {
		exprs[i] = ast.Str(name)
	}
	return Result{Node: &ast.SequenceExpression{Expressions: exprs}}, nil
}

func convertParam(c *Converter, n *cst.Node) (Result, error) {
	return Result{Node: ast.Str(paramName(n))}, nil
}

// convertLambdef builds lambda{parameterNames, sequence[return body]}.
func convertLambdef(c *Converter, n *cst.Node) (Result, error) {
	parts := n.NonTerminals()
	if len(parts) == 0 {
		return Result{}, malformed(n, "lambda without a body")
	}
	k := c.collect()
	body, err := k.expr(parts[len(parts)-1])
	if err != nil {
		return Result{}, err
	}
	return k.result(&ast.LambdaExpression{
		ParameterNames: parameterNames(n.Child(cst.Parameters)),
		Body:           ast.Seq(&ast.ReturnStatement{Value: body}),
	})
}

// ============================================================
// Classes
// ============================================================

func convertClassDef(c *Converter, n *cst.Node) (Result, error) {
	raw := n.Child(cst.ClassDefRaw)
	if raw == nil {
		return Result{}, malformed(n, "decorated definition without a class")
	}
	k := c.collect()
	decorators, err := decoratorsOf(k, n)
	if err != nil {
		return Result{}, err
	}
	class, err := convertAs[*ast.ClassDeclarationStatement](k, raw, "class declaration")
	if err != nil {
		return Result{}, err
	}
	return k.result(&ast.ClassDeclarationStatement{
		Name:        class.Name,
		BaseClasses: class.BaseClasses,
		Body:        class.Body,
		Decorators:  append(decorators, class.Decorators...),
	})
}

// convertClassDefRaw builds a class declaration. Positional arguments
// become base classes; keyword arguments become decorator-like modifiers
// ahead of the type parameters: metaclass=M as metaclass[M], any other
// keyword as class-keyword[keyword-argument[k, v]] and **kw as
// class-keyword[unpack-mapping[kw]].
func convertClassDefRaw(c *Converter, n *cst.Node) (Result, error) {
	name := n.Tok(token.NAME)
	block := n.Child(cst.Block)
	if name == nil || block == nil {
		return Result{}, malformed(n, "class without a name or body")
	}
	k := c.collect()
	bases := []ast.Expression{}
	var modifiers []ast.Expression
	if args := n.Child(cst.Arguments); args != nil {
		for _, arg := range args.NonTerminals() {
			if isMetaclassArgument(arg) {
				meta, err := k.expr(arg.NonTerminals()[0])
				if err != nil {
					return Result{}, err
				}
				modifiers = append(modifiers, ast.Op(ast.OpMetaclass, meta))
				continue
			}
			e, err := k.expr(arg)
			if err != nil {
				return Result{}, err
			}
			switch arg.Kind {
			case cst.KeywordArgument, cst.DoubleStarredExpression:
				modifiers = append(modifiers, ast.Op(ast.OpClassKeyword, e))
			default:
				bases = append(bases, e)
			}
		}
	}
	typeParams, err := typeParametersOf(k, n)
	if err != nil {
		return Result{}, err
	}
	body, err := k.seq(block)
	if err != nil {
		return Result{}, err
	}
	return k.result(&ast.ClassDeclarationStatement{
		Name:        name.Token.Lexeme,
		BaseClasses: bases,
		Body:        body,
		Decorators:  append(modifiers, typeParams...),
	})
}

func isMetaclassArgument(arg *cst.Node) bool {
	if arg.Kind != cst.KeywordArgument || len(arg.NonTerminals()) != 1 {
		return false
	}
	kw := arg.Tok(token.NAME)
	return kw != nil && kw.Token.Lexeme == "metaclass"
}

// ============================================================
// Decorators and type parameters
// ============================================================

// decoratorsOf converts the Decorators child of n, if any.
func decoratorsOf(k *collector, n *cst.Node) ([]ast.Expression, error) {
	decorators := n.Child(cst.Decorators)
	if decorators == nil {
		return nil, nil
	}
	seq, err := convertAs[*ast.SequenceExpression](k, decorators, "decorator list")
	if err != nil {
		return nil, err
	}
	return seq.Expressions, nil
}

// typeParametersOf converts the TypeParams child of n, if any.
func typeParametersOf(k *collector, n *cst.Node) ([]ast.Expression, error) {
	params := n.Child(cst.TypeParams)
	if params == nil {
		return nil, nil
	}
	seq, err := convertAs[*ast.SequenceExpression](k, params, "type parameter list")
	if err != nil {
		return nil, err
	}
	return seq.Expressions, nil
}

// convertTypeParam builds type-parameter[name, type-bound?, type-default?].
// The name keeps a * or ** prefix.
func convertTypeParam(c *Converter, n *cst.Node) (Result, error) {
	k := c.collect()
	operands := []ast.Expression{ast.Str(paramName(n))}
	more, err := k.exprs(n.NonTerminals())
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(ast.OpTypeParameter, append(operands, more...)...))
}

func convertTypeParamBound(c *Converter, n *cst.Node) (Result, error) {
	return unaryOp(c, n, ast.OpTypeBound)
}

// convertTypeParamDefault wraps the default; a starred default arrives as
// unpack-iterable and collapses into the same field.
func convertTypeParamDefault(c *Converter, n *cst.Node) (Result, error) {
	return unaryOp(c, n, ast.OpTypeDefault)
}

// convertTypeAlias converts type X[T] = e to @type-alias[X, type-parameter..., e].
func convertTypeAlias(c *Converter, n *cst.Node) (Result, error) {
	// the first NAME is the soft keyword 'type'
	names := n.ChildrenOf(cst.Terminal)
	parts := n.NonTerminals()
	if len(names) < 2 || !names[1].Is(token.NAME) || len(parts) == 0 {
		return Result{}, malformed(n, "type alias without a name or value")
	}
	name := names[1]
	k := c.collect()
	params, err := typeParametersOf(k, n)
	if err != nil {
		return Result{}, err
	}
	value, err := k.expr(parts[len(parts)-1])
	if err != nil {
		return Result{}, err
	}
	args := append([]ast.Expression{ast.Str(name.Token.Lexeme)}, params...)
	return k.result(ast.MarkerCallStatement(ast.MarkerTypeAlias, append(args, value)...))
}
