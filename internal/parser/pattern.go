package parser

import (
	"pyast/internal/cst"
	"pyast/internal/diag"
	"pyast/internal/token"
)

// ============================================================
// Match statements
// ============================================================

// tryParseMatch speculatively parses a match statement. 'match' is a soft
// keyword, so when the header does not parse the parser rewinds and the
// caller treats the line as an ordinary statement.
func (p *Parser) tryParseMatch() *cst.Node {
	start := p.mark()
	kw := p.leaf()
	if !p.startsStarExpression() {
		p.reset(start)
		return nil
	}
	subject := p.parseSubject()
	if p.failedSince(start) || !p.check(token.COLON) {
		p.reset(start)
		return nil
	}

	n := cst.New(cst.MatchStatement, kw, subject, p.leaf(), p.expect(token.NEWLINE))
	if !p.check(token.INDENT) {
		d := diag.Errorf(diag.CodeExpectedToken, p.peek().Span, "expected an indented block of case clauses")
		d.Hint = "each case clause goes on its own indented line"
		p.diags = append(p.diags, d)
		return n
	}
	n.Add(p.leaf())
	for p.checkSoft("case") {
		n.Add(p.parseCaseBlock())
	}
	if len(n.ChildrenOf(cst.CaseBlock)) == 0 {
		p.errorHere(diag.CodeExpectedToken, "expected 'case' clause, got "+describe(p.peek()))
		return n
	}
	return n.Add(p.expect(token.DEDENT))
}

// parseSubject parses: star_named_expression ',' [star_named_expressions] | named_expression
func (p *Parser) parseSubject() *cst.Node {
	n := cst.New(cst.SubjectExpr, p.parseStarNamedExpression())
	for p.check(token.COMMA) {
		n.Add(p.leaf())
		if p.check(token.COLON) {
			break
		}
		n.Add(p.parseStarNamedExpression())
	}
	return n
}

// parseCaseBlock parses: 'case' patterns [guard] ':' block
func (p *Parser) parseCaseBlock() *cst.Node {
	n := cst.New(cst.CaseBlock, p.leaf(), p.parsePatterns())
	if p.check(token.KW_IF) {
		n.Add(cst.New(cst.Guard, p.leaf(), p.parseNamedExpression()))
	}
	return n.Add(p.expectColon(), p.parseBlock())
}

// parsePatterns parses: open_sequence_pattern | pattern
func (p *Parser) parsePatterns() *cst.Node {
	n := cst.New(cst.Patterns, p.parseMaybeStarPattern())
	for p.check(token.COMMA) {
		n.Add(p.leaf())
		if p.check(token.COLON) || p.check(token.KW_IF) {
			break
		}
		n.Add(p.parseMaybeStarPattern())
	}
	return n
}

func (p *Parser) parseMaybeStarPattern() *cst.Node {
	if p.check(token.STAR) {
		return cst.New(cst.StarPattern, p.leaf(), p.expect(token.NAME))
	}
	return p.parsePattern()
}

// parsePattern parses: or_pattern ['as' NAME]
func (p *Parser) parsePattern() *cst.Node {
	or := cst.New(cst.OrPattern, p.parseClosedPattern())
	for p.check(token.VBAR) {
		or.Add(p.leaf(), p.parseClosedPattern())
	}
	if !p.check(token.KW_AS) {
		return or
	}
	n := cst.New(cst.AsPattern, or, p.leaf())
	name := p.expect(token.NAME)
	if name != nil && name.Token.Lexeme == "_" {
		p.error(diag.CodeInvalidPattern, name.Span, "cannot use '_' as a target")
	}
	return n.Add(name)
}

func (p *Parser) parseClosedPattern() *cst.Node {
	switch p.peekKind() {
	case token.MINUS, token.NUMBER:
		return p.parseNumberPattern()
	case token.STRING:
		return cst.New(cst.LiteralPattern, p.parseStrings())
	case token.FSTRING_START:
		p.errorHere(diag.CodeInvalidPattern, "patterns may only match literals and attribute lookups")
		return cst.New(cst.LiteralPattern, p.parseStrings())
	case token.KW_NONE, token.KW_TRUE, token.KW_FALSE:
		return cst.New(cst.LiteralPattern, p.leaf())
	case token.LPAR:
		return p.parseParenPattern()
	case token.LSQB:
		return p.parseBracketPattern()
	case token.LBRACE:
		return p.parseMappingPattern()
	case token.NAME:
		return p.parseNamePattern()
	}
	tok := p.peek()
	p.error(diag.CodeInvalidPattern, tok.Span, "unexpected "+describe(tok)+" in pattern")
	return nil
}

// parseNumberPattern parses: ['-'] NUMBER [('+' | '-') NUMBER]
func (p *Parser) parseNumberPattern() *cst.Node {
	n := cst.New(cst.LiteralPattern)
	if p.check(token.MINUS) {
		n.Add(p.leaf())
	}
	n.Add(p.expect(token.NUMBER))
	if p.match(token.PLUS, token.MINUS) {
		n.Add(p.leaf())
		imag := p.expect(token.NUMBER)
		if imag != nil && !isImaginary(imag.Token.Lexeme) {
			p.error(diag.CodeInvalidPattern, imag.Span, "imaginary number required in complex literal")
		}
		n.Add(imag)
	}
	return n
}

func isImaginary(lexeme string) bool {
	last := lexeme[len(lexeme)-1]
	return last == 'j' || last == 'J'
}

// parseNamePattern parses capture, wildcard, value and class patterns.
func (p *Parser) parseNamePattern() *cst.Node {
	if p.peekAt(1).Kind != token.DOT && p.peekAt(1).Kind != token.LPAR {
		if p.checkSoft("_") {
			return cst.New(cst.WildcardPattern, p.leaf())
		}
		return cst.New(cst.CapturePattern, p.leaf())
	}
	name := p.parseDottedName()
	if p.check(token.LPAR) {
		return p.parseClassPattern(name)
	}
	return cst.New(cst.ValuePattern, name)
}

// parseClassPattern parses: name_or_attr '(' [pattern_arguments] ')'
func (p *Parser) parseClassPattern(name *cst.Node) *cst.Node {
	n := cst.New(cst.ClassPattern, name, p.leaf())
	seenKeyword := false
	for !p.check(token.RPAR) && !p.isAtEnd() {
		if p.check(token.NAME) && p.peekAt(1).Kind == token.EQUAL {
			seenKeyword = true
			n.Add(cst.New(cst.KeywordPattern, p.leaf(), p.leaf(), p.parsePattern()))
		} else {
			pat := p.parsePattern()
			if seenKeyword && pat != nil {
				p.error(diag.CodeInvalidPattern, pat.Span, "positional patterns follow keyword patterns")
			}
			n.Add(pat)
		}
		if !p.check(token.COMMA) {
			break
		}
		n.Add(p.leaf())
	}
	return n.Add(p.expect(token.RPAR))
}

// parseParenPattern parses a group pattern or a parenthesized sequence pattern.
func (p *Parser) parseParenPattern() *cst.Node {
	lpar := p.leaf()
	if p.check(token.RPAR) {
		return cst.New(cst.SequencePattern, lpar, p.leaf())
	}
	first := p.parseMaybeStarPattern()
	if p.check(token.RPAR) && first != nil && first.Kind != cst.StarPattern {
		return cst.New(cst.GroupPattern, lpar, first, p.leaf())
	}
	return p.parseSequenceItems(cst.New(cst.SequencePattern, lpar, first), token.RPAR)
}

// parseBracketPattern parses: '[' [maybe_sequence_pattern] ']'
func (p *Parser) parseBracketPattern() *cst.Node {
	n := cst.New(cst.SequencePattern, p.leaf())
	if p.check(token.RSQB) {
		return n.Add(p.leaf())
	}
	return p.parseSequenceItems(n.Add(p.parseMaybeStarPattern()), token.RSQB)
}

func (p *Parser) parseSequenceItems(n *cst.Node, end token.Kind) *cst.Node {
	for p.check(token.COMMA) {
		n.Add(p.leaf())
		if p.check(end) {
			break
		}
		n.Add(p.parseMaybeStarPattern())
	}
	if len(n.ChildrenOf(cst.StarPattern)) > 1 {
		p.error(diag.CodeInvalidPattern, n.Span, "multiple starred names in sequence pattern")
	}
	return n.Add(p.expect(end))
}

// parseMappingPattern parses: '{' [items] ['**' NAME] [','] '}'
func (p *Parser) parseMappingPattern() *cst.Node {
	n := cst.New(cst.MappingPattern, p.leaf())
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if p.check(token.DOUBLESTAR) {
			n.Add(cst.New(cst.DoubleStarPattern, p.leaf(), p.expect(token.NAME)))
		} else {
			n.Add(cst.New(cst.KeyValuePattern, p.parseMappingKey(), p.expect(token.COLON), p.parsePattern()))
		}
		if !p.check(token.COMMA) {
			break
		}
		n.Add(p.leaf())
	}
	return n.Add(p.expect(token.RBRACE))
}

// parseMappingKey parses a literal pattern or a dotted value pattern.
func (p *Parser) parseMappingKey() *cst.Node {
	if !p.check(token.NAME) {
		return p.parseClosedPattern()
	}
	name := p.parseDottedName()
	if len(name.ChildrenOf(cst.Terminal)) == 1 {
		p.error(diag.CodeInvalidPattern, name.Span, "mapping pattern keys may only match literals and attribute lookups")
	}
	return cst.New(cst.ValuePattern, name)
}
