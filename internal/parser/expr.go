package parser

import (
	"pyast/internal/cst"
	"pyast/internal/diag"
	"pyast/internal/token"
)

// ============================================================
// Expression lists and targets
// ============================================================

// startsExpression reports whether the current token can begin an expression.
func (p *Parser) startsExpression() bool {
	switch p.peekKind() {
	case token.NAME, token.NUMBER, token.STRING, token.FSTRING_START,
		token.LPAR, token.LSQB, token.LBRACE,
		token.MINUS, token.PLUS, token.TILDE,
		token.KW_NOT, token.KW_LAMBDA, token.KW_AWAIT,
		token.KW_NONE, token.KW_TRUE, token.KW_FALSE, token.ELLIPSIS:
		return true
	}
	return false
}

func (p *Parser) startsStarExpression() bool {
	return p.check(token.STAR) || p.startsExpression()
}

// isCompFor reports whether a comprehension clause starts here.
func (p *Parser) isCompFor() bool {
	return p.check(token.KW_FOR) || p.check(token.KW_ASYNC) && p.peekAt(1).Kind == token.KW_FOR
}

// parseStarExpressions parses: star_expression { ',' star_expression } [',']
func (p *Parser) parseStarExpressions() *cst.Node {
	n := cst.New(cst.StarExpressions, p.parseStarExpression())
	for p.check(token.COMMA) {
		n.Add(p.leaf())
		if !p.startsStarExpression() {
			break
		}
		n.Add(p.parseStarExpression())
	}
	return n
}

// parseStarExpression parses: '*' bitwise_or | expression
func (p *Parser) parseStarExpression() *cst.Node {
	if p.check(token.STAR) {
		return cst.New(cst.StarExpression, p.leaf(), p.parseBitwiseOr())
	}
	return cst.New(cst.StarExpression, p.parseExpression())
}

// parseStarNamedExpression parses: '*' bitwise_or | named_expression
func (p *Parser) parseStarNamedExpression() *cst.Node {
	if p.check(token.STAR) {
		return cst.New(cst.StarNamedExpression, p.leaf(), p.parseBitwiseOr())
	}
	return cst.New(cst.StarNamedExpression, p.parseNamedExpression())
}

// parseStarNamedExpressions continues a display after its first element.
func (p *Parser) parseStarNamedExpressions(first *cst.Node, end token.Kind) *cst.Node {
	n := cst.New(cst.StarNamedExpressions, first)
	for p.check(token.COMMA) {
		n.Add(p.leaf())
		if p.check(end) {
			break
		}
		n.Add(p.parseStarNamedExpression())
	}
	return n
}

// parseStarTargets parses assignment targets of for loops, comprehensions
// and del. Elements stop at bitwise_or so that 'in' is left for the caller.
func (p *Parser) parseStarTargets() *cst.Node {
	n := cst.New(cst.StarTargets, p.parseStarTarget())
	for p.check(token.COMMA) {
		n.Add(p.leaf())
		if !p.startsStarExpression() {
			break
		}
		n.Add(p.parseStarTarget())
	}
	return n
}

func (p *Parser) parseStarTarget() *cst.Node {
	if p.check(token.STAR) {
		return cst.New(cst.StarExpression, p.leaf(), p.parseBitwiseOr())
	}
	return p.parseBitwiseOr()
}

// ============================================================
// Expressions, loosest to tightest
// ============================================================

// parseNamedExpression parses: NAME ':=' expression | expression
func (p *Parser) parseNamedExpression() *cst.Node {
	if p.check(token.NAME) && p.peekAt(1).Kind == token.COLONEQUAL {
		assign := cst.New(cst.AssignmentExpression, p.leaf(), p.leaf(), p.parseExpression())
		return cst.New(cst.NamedExpression, assign)
	}
	return cst.New(cst.NamedExpression, p.parseExpression())
}

// parseExpression parses: disjunction ['if' disjunction 'else' expression] | lambdef
func (p *Parser) parseExpression() *cst.Node {
	if p.check(token.KW_LAMBDA) {
		return cst.New(cst.Expression, p.parseLambdef())
	}
	n := cst.New(cst.Expression, p.parseDisjunction())
	if p.check(token.KW_IF) {
		n.Add(p.leaf(), p.parseDisjunction(), p.expect(token.KW_ELSE), p.parseExpression())
	}
	return n
}

// parseLambdef parses: lambda [parameters] ':' expression
func (p *Parser) parseLambdef() *cst.Node {
	n := cst.New(cst.Lambdef, p.leaf())
	if !p.check(token.COLON) {
		n.Add(p.parseParameters(token.COLON, false))
	}
	return n.Add(p.expect(token.COLON), p.parseExpression())
}

// parseYieldExpression parses: yield from expression | yield [star_expressions]
func (p *Parser) parseYieldExpression() *cst.Node {
	n := cst.New(cst.YieldExpression, p.leaf())
	if p.check(token.KW_FROM) {
		return n.Add(p.leaf(), p.parseExpression())
	}
	if p.startsStarExpression() {
		n.Add(p.parseStarExpressions())
	}
	return n
}

// parseBinary parses one left-associative level: next { op next }.
func (p *Parser) parseBinary(kind cst.Kind, next func() *cst.Node, ops ...token.Kind) *cst.Node {
	n := cst.New(kind, next())
	for p.match(ops...) {
		n.Add(p.leaf(), next())
	}
	return n
}

func (p *Parser) parseDisjunction() *cst.Node {
	return p.parseBinary(cst.Disjunction, p.parseConjunction, token.KW_OR)
}

func (p *Parser) parseConjunction() *cst.Node {
	return p.parseBinary(cst.Conjunction, p.parseInversion, token.KW_AND)
}

// parseInversion parses: 'not' inversion | comparison
func (p *Parser) parseInversion() *cst.Node {
	if p.check(token.KW_NOT) {
		return cst.New(cst.Inversion, p.leaf(), p.parseInversion())
	}
	return cst.New(cst.Inversion, p.parseComparison())
}

// parseComparison parses: bitwise_or { compare_op bitwise_or }
func (p *Parser) parseComparison() *cst.Node {
	n := cst.New(cst.Comparison, p.parseBitwiseOr())
	for {
		pair := cst.New(cst.CompareOpBitwiseOrPair)
		switch {
		case p.match(token.EQEQUAL, token.NOTEQUAL, token.LESS, token.LESSEQUAL,
			token.GREATER, token.GREATEREQ, token.KW_IN):
			pair.Add(p.leaf())
		case p.check(token.KW_NOT) && p.peekAt(1).Kind == token.KW_IN:
			pair.Add(p.leaf(), p.leaf())
		case p.check(token.KW_IS):
			pair.Add(p.leaf())
			if p.check(token.KW_NOT) {
				pair.Add(p.leaf())
			}
		default:
			return n
		}
		n.Add(pair.Add(p.parseBitwiseOr()))
	}
}

func (p *Parser) parseBitwiseOr() *cst.Node {
	return p.parseBinary(cst.BitwiseOr, p.parseBitwiseXor, token.VBAR)
}

func (p *Parser) parseBitwiseXor() *cst.Node {
	return p.parseBinary(cst.BitwiseXor, p.parseBitwiseAnd, token.CIRCUMFLEX)
}

func (p *Parser) parseBitwiseAnd() *cst.Node {
	return p.parseBinary(cst.BitwiseAnd, p.parseShiftExpr, token.AMPER)
}

func (p *Parser) parseShiftExpr() *cst.Node {
	return p.parseBinary(cst.ShiftExpr, p.parseSum, token.LEFTSHIFT, token.RIGHTSHIFT)
}

func (p *Parser) parseSum() *cst.Node {
	return p.parseBinary(cst.Sum, p.parseTerm, token.PLUS, token.MINUS)
}

func (p *Parser) parseTerm() *cst.Node {
	return p.parseBinary(cst.Term, p.parseFactor,
		token.STAR, token.SLASH, token.DOUBLESLASH, token.PERCENT, token.AT)
}

// parseFactor parses: ('+' | '-' | '~') factor | power
func (p *Parser) parseFactor() *cst.Node {
	if p.match(token.PLUS, token.MINUS, token.TILDE) {
		return cst.New(cst.Factor, p.leaf(), p.parseFactor())
	}
	return cst.New(cst.Factor, p.parsePower())
}

// parsePower parses: await_primary ['**' factor]
func (p *Parser) parsePower() *cst.Node {
	n := cst.New(cst.Power, p.parseAwaitPrimary())
	if p.check(token.DOUBLESTAR) {
		n.Add(p.leaf(), p.parseFactor())
	}
	return n
}

// parseAwaitPrimary parses: ['await'] primary
func (p *Parser) parseAwaitPrimary() *cst.Node {
	if p.check(token.KW_AWAIT) {
		return cst.New(cst.AwaitPrimary, p.leaf(), p.parsePrimary())
	}
	return cst.New(cst.AwaitPrimary, p.parsePrimary())
}

// parsePrimary parses an atom followed by any number of attribute accesses,
// calls and subscripts. Each postfix wraps the previous Primary.
func (p *Parser) parsePrimary() *cst.Node {
	n := cst.New(cst.Primary, p.parseAtom())
	for {
		switch p.peekKind() {
		case token.DOT:
			n = cst.New(cst.Primary, n, p.leaf(), p.expect(token.NAME))
		case token.LPAR:
			n = p.parseCall(n)
		case token.LSQB:
			n = cst.New(cst.Primary, n, p.leaf(), p.parseSlices(), p.expect(token.RSQB))
		default:
			return n
		}
	}
}

// parseCall parses the parenthesized part of a call. A single generator
// argument without its own parentheses becomes a Genexp child.
func (p *Parser) parseCall(callee *cst.Node) *cst.Node {
	lpar := p.leaf()
	if p.check(token.RPAR) {
		return cst.New(cst.Primary, callee, lpar, p.leaf())
	}
	first := p.parseArgument()
	if first.Kind == cst.NamedExpression && p.isCompFor() {
		genexp := cst.New(cst.Genexp, lpar, first, p.parseForIfClauses(), p.expect(token.RPAR))
		return cst.New(cst.Primary, callee, genexp)
	}
	return cst.New(cst.Primary, callee, lpar, p.parseArguments(first), p.expect(token.RPAR))
}

// parseArguments continues an argument list after its first argument.
func (p *Parser) parseArguments(first *cst.Node) *cst.Node {
	n := cst.New(cst.Arguments, first)
	for p.check(token.COMMA) {
		n.Add(p.leaf())
		if p.check(token.RPAR) {
			break
		}
		n.Add(p.parseArgument())
	}
	return n
}

// parseArgument parses: '*' expression | '**' expression | NAME '=' expression | named_expression
func (p *Parser) parseArgument() *cst.Node {
	switch {
	case p.check(token.STAR):
		return cst.New(cst.StarredExpression, p.leaf(), p.parseExpression())
	case p.check(token.DOUBLESTAR):
		return cst.New(cst.DoubleStarredExpression, p.leaf(), p.parseExpression())
	case p.check(token.NAME) && p.peekAt(1).Kind == token.EQUAL:
		return cst.New(cst.KeywordArgument, p.leaf(), p.leaf(), p.parseExpression())
	}
	return p.parseNamedExpression()
}

// parseSlices parses: slice { ',' slice } [',']
func (p *Parser) parseSlices() *cst.Node {
	n := cst.New(cst.Slices, p.parseSlice())
	for p.check(token.COMMA) {
		n.Add(p.leaf())
		if p.check(token.RSQB) {
			break
		}
		n.Add(p.parseSlice())
	}
	return n
}

// parseSlice parses: [expression] ':' [expression] [':' [expression]] | named_expression | starred
func (p *Parser) parseSlice() *cst.Node {
	if p.check(token.STAR) {
		return cst.New(cst.StarredExpression, p.leaf(), p.parseExpression())
	}
	n := cst.New(cst.Slice)
	if !p.check(token.COLON) {
		index := p.parseNamedExpression()
		if !p.check(token.COLON) {
			return n.Add(index)
		}
		n.Add(p.unwrapNamed(index))
	}
	n.Add(p.leaf())
	if p.startsExpression() {
		n.Add(p.parseExpression())
	}
	if p.check(token.COLON) {
		n.Add(p.leaf())
		if p.startsExpression() {
			n.Add(p.parseExpression())
		}
	}
	return n
}

// unwrapNamed returns the Expression inside a NamedExpression, reporting
// walrus targets where only a plain expression is allowed.
func (p *Parser) unwrapNamed(n *cst.Node) *cst.Node {
	if n.Kind != cst.NamedExpression || len(n.Children) != 1 {
		return n
	}
	inner := n.Children[0]
	if inner.Kind == cst.AssignmentExpression {
		p.error(diag.CodeUnexpectedToken, inner.Span, "assignment expression is not allowed here")
	}
	return inner
}

// ============================================================
// Atoms
// ============================================================

func (p *Parser) parseAtom() *cst.Node {
	tok := p.peek()
	switch tok.Kind {
	case token.NAME, token.NUMBER, token.KW_NONE, token.KW_TRUE, token.KW_FALSE, token.ELLIPSIS:
		return cst.New(cst.Atom, p.leaf())
	case token.STRING, token.FSTRING_START:
		return cst.New(cst.Atom, p.parseStrings())
	case token.LPAR:
		return cst.New(cst.Atom, p.parseParenAtom())
	case token.LSQB:
		return cst.New(cst.Atom, p.parseListAtom())
	case token.LBRACE:
		return cst.New(cst.Atom, p.parseBraceAtom())
	}
	p.error(diag.CodeUnexpectedToken, tok.Span, "unexpected "+describe(tok)+" in expression")
	return nil
}

// parseStrings parses one or more adjacent string and f-string literals.
func (p *Parser) parseStrings() *cst.Node {
	n := cst.New(cst.Strings)
	for {
		switch p.peekKind() {
		case token.STRING:
			n.Add(cst.New(cst.String, p.leaf()))
		case token.FSTRING_START:
			n.Add(p.parseFString())
		default:
			return n
		}
	}
}

// parseFString parses: FSTRING_START { FSTRING_MIDDLE | replacement_field } FSTRING_END
func (p *Parser) parseFString() *cst.Node {
	n := cst.New(cst.FString, p.leaf())
	for {
		switch p.peekKind() {
		case token.FSTRING_MIDDLE:
			n.Add(p.leaf())
		case token.LBRACE:
			n.Add(p.parseReplacementField())
		default:
			return n.Add(p.expect(token.FSTRING_END))
		}
	}
}

// parseReplacementField parses:
//
//	'{' (yield_expr | star_expressions) ['='] ['!' NAME] [':' format_spec] '}'
func (p *Parser) parseReplacementField() *cst.Node {
	n := cst.New(cst.FStringReplacementField, p.leaf())
	if p.check(token.KW_YIELD) {
		n.Add(p.parseYieldExpression())
	} else {
		n.Add(p.parseStarExpressions())
	}
	if p.check(token.EQUAL) {
		n.Add(p.leaf())
	}
	if p.check(token.EXCLAMATION) {
		conv := cst.New(cst.FStringConversion, p.leaf())
		name := p.expect(token.NAME)
		if name != nil {
			switch name.Token.Lexeme {
			case "r", "s", "a":
			default:
				p.error(diag.CodeUnexpectedToken, name.Span, "f-string conversion must be one of 'r', 's' or 'a'")
			}
		}
		n.Add(conv.Add(name))
	}
	if p.check(token.COLON) {
		spec := cst.New(cst.FStringFormatSpec, p.leaf())
		for p.match(token.FSTRING_MIDDLE, token.LBRACE) {
			if p.check(token.LBRACE) {
				spec.Add(p.parseReplacementField())
			} else {
				spec.Add(p.leaf())
			}
		}
		n.Add(spec)
	}
	return n.Add(p.expect(token.RBRACE))
}

// parseParenAtom parses a tuple, a parenthesized group or a generator expression.
func (p *Parser) parseParenAtom() *cst.Node {
	lpar := p.leaf()
	switch {
	case p.check(token.RPAR):
		return cst.New(cst.Tuple, lpar, p.leaf())
	case p.check(token.KW_YIELD):
		return cst.New(cst.Group, lpar, p.parseYieldExpression(), p.expect(token.RPAR))
	}

	var first *cst.Node
	if p.check(token.STAR) {
		first = p.parseStarNamedExpression()
	} else {
		named := p.parseNamedExpression()
		if p.isCompFor() {
			return cst.New(cst.Genexp, lpar, named, p.parseForIfClauses(), p.expect(token.RPAR))
		}
		if p.check(token.RPAR) {
			return cst.New(cst.Group, lpar, named, p.leaf())
		}
		first = cst.New(cst.StarNamedExpression, named)
	}

	n := cst.New(cst.Tuple, lpar, first)
	if !p.check(token.COMMA) {
		p.error(diag.CodeExpectedToken, p.peek().Span, "expected \",\" or \")\", got "+describe(p.peek()))
		return n
	}
	for p.check(token.COMMA) {
		n.Add(p.leaf())
		if p.check(token.RPAR) {
			break
		}
		n.Add(p.parseStarNamedExpression())
	}
	return n.Add(p.expect(token.RPAR))
}

// parseListAtom parses a list display or a list comprehension.
func (p *Parser) parseListAtom() *cst.Node {
	lsqb := p.leaf()
	if p.check(token.RSQB) {
		return cst.New(cst.List, lsqb, p.leaf())
	}
	var first *cst.Node
	if p.check(token.STAR) {
		first = p.parseStarNamedExpression()
	} else {
		named := p.parseNamedExpression()
		if p.isCompFor() {
			return cst.New(cst.Listcomp, lsqb, named, p.parseForIfClauses(), p.expect(token.RSQB))
		}
		first = cst.New(cst.StarNamedExpression, named)
	}
	return cst.New(cst.List, lsqb, p.parseStarNamedExpressions(first, token.RSQB), p.expect(token.RSQB))
}

// parseBraceAtom parses a dict, set, dict comprehension or set comprehension.
func (p *Parser) parseBraceAtom() *cst.Node {
	lbrace := p.leaf()
	switch {
	case p.check(token.RBRACE):
		return cst.New(cst.Dict, lbrace, p.leaf())
	case p.check(token.DOUBLESTAR):
		return p.parseDictItems(lbrace, cst.New(cst.DoubleStarredKvpair, p.leaf(), p.parseBitwiseOr()))
	case p.check(token.STAR):
		first := p.parseStarNamedExpression()
		return cst.New(cst.Set, lbrace, p.parseStarNamedExpressions(first, token.RBRACE), p.expect(token.RBRACE))
	}

	named := p.parseNamedExpression()
	if p.check(token.COLON) {
		pair := cst.New(cst.Kvpair, p.unwrapNamed(named), p.leaf(), p.parseExpression())
		if p.isCompFor() {
			return cst.New(cst.Dictcomp, lbrace, pair, p.parseForIfClauses(), p.expect(token.RBRACE))
		}
		return p.parseDictItems(lbrace, pair)
	}
	if p.isCompFor() {
		return cst.New(cst.Setcomp, lbrace, named, p.parseForIfClauses(), p.expect(token.RBRACE))
	}
	first := cst.New(cst.StarNamedExpression, named)
	return cst.New(cst.Set, lbrace, p.parseStarNamedExpressions(first, token.RBRACE), p.expect(token.RBRACE))
}

// parseDictItems continues a dict display after its first item.
func (p *Parser) parseDictItems(lbrace, first *cst.Node) *cst.Node {
	n := cst.New(cst.Dict, lbrace, first)
	for p.check(token.COMMA) {
		n.Add(p.leaf())
		if p.check(token.RBRACE) {
			break
		}
		if p.check(token.DOUBLESTAR) {
			n.Add(cst.New(cst.DoubleStarredKvpair, p.leaf(), p.parseBitwiseOr()))
			continue
		}
		n.Add(cst.New(cst.Kvpair, p.parseExpression(), p.expect(token.COLON), p.parseExpression()))
	}
	return n.Add(p.expect(token.RBRACE))
}

// parseForIfClauses parses: for_if_clause+
func (p *Parser) parseForIfClauses() *cst.Node {
	n := cst.New(cst.ForIfClauses)
	for p.isCompFor() {
		n.Add(p.parseForIfClause())
	}
	return n
}

// parseForIfClause parses: [async] for star_targets in disjunction { if disjunction }
func (p *Parser) parseForIfClause() *cst.Node {
	n := cst.New(cst.ForIfClause)
	if p.check(token.KW_ASYNC) {
		n.Add(p.leaf())
	}
	n.Add(p.leaf())
	targets := p.parseStarTargets()
	for _, t := range targets.NonTerminals() {
		if !isTarget(t, false) {
			p.error(diag.CodeInvalidTarget, t.Span, "cannot assign to expression in comprehension")
		}
	}
	n.Add(targets, p.expect(token.KW_IN), p.parseDisjunction())
	for p.check(token.KW_IF) {
		n.Add(p.leaf(), p.parseDisjunction())
	}
	return n
}
