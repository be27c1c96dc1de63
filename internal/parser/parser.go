// Package parser implements the syntax analysis for Python 3 source.
// It is a recursive-descent parser over the lexer's token slice that builds a
// concrete syntax tree (package cst). Productions follow the Python 3.12 PEG
// grammar; every precedence level is materialized as its own node, even when
// no operator is present, so converters can pass through uniformly.
package parser

import (
	"fmt"

	"pyast/internal/cst"
	"pyast/internal/diag"
	"pyast/internal/lexer"
	"pyast/internal/span"
	"pyast/internal/token"
)

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// ParseSource tokenizes and parses source, returning the FileInput root and
// the lexer and parser diagnostics in that order.
func ParseSource(source, filename string) (*cst.Node, []diag.Diagnostic) {
	tokens, lexDiags := lexer.New(source, filename).Tokenize()
	root, parseDiags := New(tokens).ParseFile()
	return root, append(lexDiags, parseDiags...)
}

// ParseFile parses the entire token stream and returns the FileInput root and
// diagnostics.
func (p *Parser) ParseFile() (*cst.Node, []diag.Diagnostic) {
	file := cst.New(cst.FileInput)
	for !p.isAtEnd() {
		switch p.peekKind() {
		case token.NEWLINE, token.DEDENT:
			p.advance()
			continue
		case token.INDENT:
			p.errorHere(diag.CodeUnexpectedToken, "unexpected indent")
			p.advance()
			continue
		}
		file.Add(p.parseStatement())
	}
	return file, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// leaf consumes the current token and wraps it in a terminal node.
func (p *Parser) leaf() *cst.Node {
	return cst.Leaf(p.advance())
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

// checkSoft reports whether the current token is the soft keyword name.
func (p *Parser) checkSoft(name string) bool {
	return p.peek().Is(name)
}

func (p *Parser) expect(kind token.Kind) *cst.Node {
	if p.check(kind) {
		return p.leaf()
	}
	tok := p.peek()
	p.error(diag.CodeExpectedToken, tok.Span, fmt.Sprintf("expected %s, got %s", kindName(kind), describe(tok)))
	return nil
}

func (p *Parser) expectColon() *cst.Node {
	if p.check(token.COLON) {
		return p.leaf()
	}
	tok := p.peek()
	d := diag.Errorf(diag.CodeExpectedToken, tok.Span, "expected \":\", got %s", describe(tok))
	d.Hint = "compound statement headers end with a colon"
	p.diags = append(p.diags, d)
	return nil
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) error(code string, s span.Span, msg string) {
	p.diags = append(p.diags, diag.Errorf(code, s, "%s", msg))
}

func (p *Parser) errorHere(code, msg string) {
	p.error(code, p.peek().Span, msg)
}

// state is a parser position used for speculative parsing of soft keywords.
type state struct {
	pos   int
	diags int
}

func (p *Parser) mark() state {
	return state{pos: p.pos, diags: len(p.diags)}
}

func (p *Parser) reset(s state) {
	p.pos = s.pos
	p.diags = p.diags[:s.diags]
}

func (p *Parser) failedSince(s state) bool {
	return len(p.diags) > s.diags
}

func kindName(kind token.Kind) string {
	switch kind {
	case token.NEWLINE:
		return "newline"
	case token.INDENT:
		return "indented block"
	case token.DEDENT:
		return "dedent"
	case token.NAME:
		return "name"
	case token.EOF:
		return "end of file"
	}
	return fmt.Sprintf("%q", kind.String())
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.NEWLINE, token.INDENT, token.DEDENT, token.EOF:
		return kindName(tok.Kind)
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

// ============================================================
// Error recovery
// ============================================================

// synchronize skips to the end of the current logical line. An indented
// block that follows a broken header is skipped as a whole.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.check(token.DEDENT) {
			return
		}
		if p.check(token.NEWLINE) {
			p.advance()
			if p.check(token.INDENT) {
				p.skipIndentedBlock()
			}
			return
		}
		p.advance()
	}
}

// atLineStart reports whether the previous token ended a logical line.
func (p *Parser) atLineStart() bool {
	if p.pos == 0 {
		return true
	}
	switch p.tokens[p.pos-1].Kind {
	case token.NEWLINE, token.INDENT, token.DEDENT:
		return true
	}
	return false
}

func (p *Parser) skipIndentedBlock() {
	depth := 0
	for !p.isAtEnd() {
		switch p.advance().Kind {
		case token.INDENT:
			depth++
		case token.DEDENT:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// ============================================================
// Statements
// ============================================================

// parseStatement parses one statement and recovers to the next line on error.
// A statement with errors is dropped from the tree.
func (p *Parser) parseStatement() *cst.Node {
	start := p.mark()
	stmt := p.parseStatementInner()
	if p.failedSince(start) {
		if !p.atLineStart() {
			p.synchronize()
		}
		if p.pos == start.pos {
			p.advance()
		}
		return nil
	}
	return stmt
}

func (p *Parser) parseStatementInner() *cst.Node {
	switch p.peekKind() {
	case token.KW_IF:
		return p.parseIf()
	case token.KW_WHILE:
		return p.parseWhile()
	case token.KW_FOR:
		return p.parseFor()
	case token.KW_TRY:
		return p.parseTry()
	case token.KW_WITH:
		return p.parseWith()
	case token.KW_DEF:
		return cst.New(cst.FunctionDef, p.parseFunctionDefRaw())
	case token.KW_CLASS:
		return cst.New(cst.ClassDef, p.parseClassDefRaw())
	case token.AT:
		return p.parseDecorated()
	case token.KW_ASYNC:
		switch p.peekAt(1).Kind {
		case token.KW_DEF:
			return cst.New(cst.FunctionDef, p.parseFunctionDefRaw())
		case token.KW_FOR:
			return p.parseFor()
		case token.KW_WITH:
			return p.parseWith()
		}
	case token.NAME:
		if p.checkSoft("match") {
			if stmt := p.tryParseMatch(); stmt != nil {
				return stmt
			}
		}
	}
	return p.parseSimpleStatements()
}

// parseSimpleStatements parses: small_stmt { ';' small_stmt } [';'] NEWLINE
func (p *Parser) parseSimpleStatements() *cst.Node {
	n := cst.New(cst.SimpleStatements, p.parseSmallStatement())
	for p.check(token.SEMI) {
		n.Add(p.leaf())
		if p.check(token.NEWLINE) {
			break
		}
		n.Add(p.parseSmallStatement())
	}
	return n.Add(p.expect(token.NEWLINE))
}

func (p *Parser) parseSmallStatement() *cst.Node {
	switch p.peekKind() {
	case token.KW_PASS:
		return cst.New(cst.PassStatement, p.leaf())
	case token.KW_BREAK:
		return cst.New(cst.BreakStatement, p.leaf())
	case token.KW_CONTINUE:
		return cst.New(cst.ContinueStatement, p.leaf())
	case token.KW_RETURN:
		n := cst.New(cst.ReturnStatement, p.leaf())
		if p.startsStarExpression() {
			n.Add(p.parseStarExpressions())
		}
		return n
	case token.KW_RAISE:
		return p.parseRaise()
	case token.KW_GLOBAL:
		return p.parseNameList(cst.GlobalStatement)
	case token.KW_NONLOCAL:
		return p.parseNameList(cst.NonlocalStatement)
	case token.KW_DEL:
		return p.parseDel()
	case token.KW_ASSERT:
		n := cst.New(cst.AssertStatement, p.leaf(), p.parseExpression())
		if p.check(token.COMMA) {
			n.Add(p.leaf(), p.parseExpression())
		}
		return n
	case token.KW_IMPORT:
		return cst.New(cst.ImportName, p.leaf(), p.parseDottedAsNames())
	case token.KW_FROM:
		return p.parseImportFrom()
	case token.NAME:
		if p.isTypeAlias() {
			return p.parseTypeAlias()
		}
	}
	return p.parseExpressionOrAssignment()
}

// parseExpressionOrAssignment parses expression statements and the three
// assignment shapes:
//
//	target ':' annotation ['=' value]
//	target '=' { target '=' } value
//	target augassign value
func (p *Parser) parseExpressionOrAssignment() *cst.Node {
	var first *cst.Node
	if p.check(token.KW_YIELD) {
		first = p.parseYieldExpression()
	} else {
		first = p.parseStarExpressions()
	}

	switch {
	case p.check(token.COLON):
		if !isTarget(first, true) {
			p.error(diag.CodeInvalidTarget, first.Span, "only a single name, attribute or subscript can be annotated")
		}
		n := cst.New(cst.Assignment, first, cst.New(cst.Annotation, p.leaf(), p.parseExpression()))
		if p.check(token.EQUAL) {
			n.Add(p.leaf(), p.parseAssignmentValue())
		}
		return n

	case p.check(token.EQUAL):
		n := cst.New(cst.Assignment, first)
		target := first
		for p.check(token.EQUAL) {
			if !isTarget(target, false) {
				p.error(diag.CodeInvalidTarget, target.Span, "cannot assign to expression")
			}
			n.Add(p.leaf())
			target = p.parseAssignmentValue()
			n.Add(target)
		}
		return n

	case p.peekKind().IsAugAssign():
		if !isTarget(first, true) {
			p.error(diag.CodeInvalidTarget, first.Span, "illegal expression for augmented assignment")
		}
		return cst.New(cst.Assignment, first, p.leaf(), p.parseAssignmentValue())
	}

	return cst.New(cst.ExpressionStatement, first)
}

func (p *Parser) parseAssignmentValue() *cst.Node {
	if p.check(token.KW_YIELD) {
		return p.parseYieldExpression()
	}
	return p.parseStarExpressions()
}

// parseRaise parses: raise [expression [from expression]]
func (p *Parser) parseRaise() *cst.Node {
	n := cst.New(cst.RaiseStatement, p.leaf())
	if !p.startsExpression() {
		return n
	}
	n.Add(p.parseExpression())
	if p.check(token.KW_FROM) {
		n.Add(p.leaf(), p.parseExpression())
	}
	return n
}

// parseNameList parses: (global | nonlocal) NAME { ',' NAME }
func (p *Parser) parseNameList(kind cst.Kind) *cst.Node {
	n := cst.New(kind, p.leaf(), p.expect(token.NAME))
	for p.check(token.COMMA) {
		n.Add(p.leaf(), p.expect(token.NAME))
	}
	return n
}

func (p *Parser) parseDel() *cst.Node {
	n := cst.New(cst.DelStatement, p.leaf())
	targets := p.parseStarTargets()
	for _, t := range targets.NonTerminals() {
		if !isTarget(t, false) {
			p.error(diag.CodeInvalidTarget, t.Span, "cannot delete expression")
		}
	}
	return n.Add(targets)
}

// ---- imports ----

func (p *Parser) parseDottedName() *cst.Node {
	n := cst.New(cst.DottedName, p.expect(token.NAME))
	for p.check(token.DOT) {
		n.Add(p.leaf(), p.expect(token.NAME))
	}
	return n
}

// parseDottedAsNames parses: dotted_name [as NAME] { ',' dotted_name [as NAME] }
func (p *Parser) parseDottedAsNames() *cst.Node {
	n := cst.New(cst.DottedAsNames)
	for {
		item := cst.New(cst.DottedAsName, p.parseDottedName())
		if p.check(token.KW_AS) {
			item.Add(p.leaf(), p.expect(token.NAME))
		}
		n.Add(item)
		if !p.check(token.COMMA) {
			return n
		}
		n.Add(p.leaf())
	}
}

// parseImportFrom parses: from ('.' | '...')* [dotted_name] import targets
func (p *Parser) parseImportFrom() *cst.Node {
	n := cst.New(cst.ImportFrom, p.leaf())
	dots := 0
	for p.match(token.DOT, token.ELLIPSIS) {
		dots++
		n.Add(p.leaf())
	}
	if !p.check(token.KW_IMPORT) || dots == 0 {
		n.Add(p.parseDottedName())
	}
	n.Add(p.expect(token.KW_IMPORT))

	targets := cst.New(cst.ImportFromTargets)
	switch {
	case p.check(token.STAR):
		targets.Add(p.leaf())
	case p.check(token.LPAR):
		targets.Add(p.leaf())
		for !p.check(token.RPAR) && !p.isAtEnd() {
			targets.Add(p.parseImportFromAsName())
			if !p.check(token.COMMA) {
				break
			}
			targets.Add(p.leaf())
		}
		targets.Add(p.expect(token.RPAR))
	default:
		targets.Add(p.parseImportFromAsName())
		for p.check(token.COMMA) {
			targets.Add(p.leaf(), p.parseImportFromAsName())
		}
	}
	return n.Add(targets)
}

func (p *Parser) parseImportFromAsName() *cst.Node {
	n := cst.New(cst.ImportFromAsName, p.expect(token.NAME))
	if p.check(token.KW_AS) {
		n.Add(p.leaf(), p.expect(token.NAME))
	}
	return n
}

// ---- type aliases ----

func (p *Parser) isTypeAlias() bool {
	if !p.checkSoft("type") || p.peekAt(1).Kind != token.NAME {
		return false
	}
	next := p.peekAt(2).Kind
	return next == token.EQUAL || next == token.LSQB
}

// parseTypeAlias parses: 'type' NAME [type_params] '=' expression
func (p *Parser) parseTypeAlias() *cst.Node {
	n := cst.New(cst.TypeAlias, p.leaf(), p.expect(token.NAME))
	if p.check(token.LSQB) {
		n.Add(p.parseTypeParams())
	}
	return n.Add(p.expect(token.EQUAL), p.parseExpression())
}

// ============================================================
// Compound statements
// ============================================================

// parseBlock parses either an indented suite or a simple statement line
// following a header colon.
func (p *Parser) parseBlock() *cst.Node {
	if !p.check(token.NEWLINE) {
		return cst.New(cst.Block, p.parseSimpleStatements())
	}
	b := cst.New(cst.Block, p.leaf())
	if !p.check(token.INDENT) {
		d := diag.Errorf(diag.CodeExpectedToken, p.peek().Span, "expected an indented block")
		d.Hint = "indent the statements that follow the colon"
		p.diags = append(p.diags, d)
		return b
	}
	b.Add(p.leaf())
	for !p.check(token.DEDENT) && !p.isAtEnd() {
		switch p.peekKind() {
		case token.NEWLINE:
			p.advance()
			continue
		case token.INDENT:
			p.errorHere(diag.CodeUnexpectedToken, "unexpected indent")
			p.advance()
			continue
		}
		b.Add(p.parseStatement())
	}
	return b.Add(p.expect(token.DEDENT))
}

// parseIf parses: (if | elif) named_expression ':' block [elif_stmt | else_block]
func (p *Parser) parseIf() *cst.Node {
	kind := cst.IfStatement
	if p.check(token.KW_ELIF) {
		kind = cst.ElifStatement
	}
	n := cst.New(kind, p.leaf(), p.parseNamedExpression(), p.expectColon(), p.parseBlock())
	switch {
	case p.check(token.KW_ELIF):
		n.Add(p.parseIf())
	case p.check(token.KW_ELSE):
		n.Add(p.parseElse())
	}
	return n
}

func (p *Parser) parseElse() *cst.Node {
	return cst.New(cst.ElseBlock, p.leaf(), p.expectColon(), p.parseBlock())
}

// parseWhile parses: while named_expression ':' block [else_block]
func (p *Parser) parseWhile() *cst.Node {
	n := cst.New(cst.WhileStatement, p.leaf(), p.parseNamedExpression(), p.expectColon(), p.parseBlock())
	if p.check(token.KW_ELSE) {
		n.Add(p.parseElse())
	}
	return n
}

// parseFor parses: [async] for star_targets in star_expressions ':' block [else_block]
func (p *Parser) parseFor() *cst.Node {
	n := cst.New(cst.ForStatement)
	if p.check(token.KW_ASYNC) {
		n.Add(p.leaf())
	}
	n.Add(p.expect(token.KW_FOR))
	targets := p.parseStarTargets()
	for _, t := range targets.NonTerminals() {
		if !isTarget(t, false) {
			p.error(diag.CodeInvalidTarget, t.Span, "cannot assign to expression in for loop")
		}
	}
	n.Add(targets, p.expect(token.KW_IN), p.parseStarExpressions(), p.expectColon(), p.parseBlock())
	if p.check(token.KW_ELSE) {
		n.Add(p.parseElse())
	}
	return n
}

// parseTry parses:
//
//	try ':' block (except_block+ | except_star_block+) [else_block] [finally_block]
//	try ':' block finally_block
func (p *Parser) parseTry() *cst.Node {
	kw := p.leaf()
	n := cst.New(cst.TryStatement, kw, p.expectColon(), p.parseBlock())
	handlers := 0
	for p.check(token.KW_EXCEPT) {
		n.Add(p.parseExcept())
		handlers++
	}
	if len(n.ChildrenOf(cst.ExceptBlock)) > 0 && len(n.ChildrenOf(cst.ExceptStarBlock)) > 0 {
		p.error(diag.CodeUnexpectedToken, n.Span, "cannot have both 'except' and 'except*' on the same 'try'")
	}
	if handlers > 0 && p.check(token.KW_ELSE) {
		n.Add(p.parseElse())
	}
	if p.check(token.KW_FINALLY) {
		n.Add(cst.New(cst.FinallyBlock, p.leaf(), p.expectColon(), p.parseBlock()))
	} else if handlers == 0 {
		d := diag.Errorf(diag.CodeExpectedToken, p.peek().Span, "expected 'except' or 'finally' block")
		d.Hint = "a try statement needs at least one handler"
		p.diags = append(p.diags, d)
	}
	return n
}

// parseExcept parses: except ['*'] [expression [as NAME]] ':' block
func (p *Parser) parseExcept() *cst.Node {
	kw := p.leaf()
	var n *cst.Node
	if p.check(token.STAR) {
		n = cst.New(cst.ExceptStarBlock, kw, p.leaf(), p.parseExpression())
	} else {
		n = cst.New(cst.ExceptBlock, kw)
		if p.check(token.COLON) {
			return n.Add(p.leaf(), p.parseBlock())
		}
		n.Add(p.parseExpression())
	}
	if p.check(token.KW_AS) {
		n.Add(p.leaf(), p.expect(token.NAME))
	}
	return n.Add(p.expectColon(), p.parseBlock())
}

// parseWith parses:
//
//	[async] with '(' with_item { ',' with_item } [','] ')' ':' block
//	[async] with with_item { ',' with_item } ':' block
func (p *Parser) parseWith() *cst.Node {
	n := cst.New(cst.WithStatement)
	if p.check(token.KW_ASYNC) {
		n.Add(p.leaf())
	}
	n.Add(p.expect(token.KW_WITH))

	if !p.check(token.LPAR) || !p.tryParenthesizedWithItems(n) {
		n.Add(p.parseWithItem())
		for p.check(token.COMMA) {
			n.Add(p.leaf(), p.parseWithItem())
		}
	}
	return n.Add(p.expectColon(), p.parseBlock())
}

// tryParenthesizedWithItems speculatively parses a parenthesized item list.
// It commits only when the closing parenthesis is directly followed by ':'.
func (p *Parser) tryParenthesizedWithItems(n *cst.Node) bool {
	start := p.mark()
	items := []*cst.Node{p.leaf()}
	for !p.check(token.RPAR) && !p.isAtEnd() {
		items = append(items, p.parseWithItem())
		if !p.check(token.COMMA) {
			break
		}
		items = append(items, p.leaf())
	}
	items = append(items, p.expect(token.RPAR))
	if p.failedSince(start) || !p.check(token.COLON) || len(items) == 2 {
		p.reset(start)
		return false
	}
	n.Add(items...)
	return true
}

// parseWithItem parses: expression [as star_target]
func (p *Parser) parseWithItem() *cst.Node {
	n := cst.New(cst.WithItem, p.parseExpression())
	if p.check(token.KW_AS) {
		kw := p.leaf()
		target := p.parseStarTarget()
		if !isTarget(target, false) {
			p.error(diag.CodeInvalidTarget, target.Span, "cannot assign to expression in with item")
		}
		n.Add(kw, cst.New(cst.StarTargets, target))
	}
	return n
}

// ---- functions and classes ----

// parseDecorated parses: ('@' named_expression NEWLINE)+ (function_def_raw | class_def_raw)
func (p *Parser) parseDecorated() *cst.Node {
	decorators := cst.New(cst.Decorators)
	for p.check(token.AT) {
		decorators.Add(p.leaf(), p.parseNamedExpression(), p.expect(token.NEWLINE))
	}
	switch {
	case p.check(token.KW_DEF), p.check(token.KW_ASYNC) && p.peekAt(1).Kind == token.KW_DEF:
		return cst.New(cst.FunctionDef, decorators, p.parseFunctionDefRaw())
	case p.check(token.KW_CLASS):
		return cst.New(cst.ClassDef, decorators, p.parseClassDefRaw())
	}
	p.errorHere(diag.CodeUnexpectedToken, "expected a function or class definition after decorators")
	return nil
}

// parseFunctionDefRaw parses:
//
//	[async] def NAME [type_params] '(' [parameters] ')' ['->' expression] ':' block
func (p *Parser) parseFunctionDefRaw() *cst.Node {
	n := cst.New(cst.FunctionDefRaw)
	if p.check(token.KW_ASYNC) {
		n.Add(p.leaf())
	}
	n.Add(p.expect(token.KW_DEF), p.expect(token.NAME))
	if p.check(token.LSQB) {
		n.Add(p.parseTypeParams())
	}
	n.Add(p.expect(token.LPAR))
	if !p.check(token.RPAR) {
		n.Add(p.parseParameters(token.RPAR, true))
	}
	n.Add(p.expect(token.RPAR))
	if p.check(token.RARROW) {
		n.Add(p.leaf(), p.parseExpression())
	}
	return n.Add(p.expectColon(), p.parseBlock())
}

// parseClassDefRaw parses: class NAME [type_params] ['(' [arguments] ')'] ':' block
func (p *Parser) parseClassDefRaw() *cst.Node {
	n := cst.New(cst.ClassDefRaw, p.leaf(), p.expect(token.NAME))
	if p.check(token.LSQB) {
		n.Add(p.parseTypeParams())
	}
	if p.check(token.LPAR) {
		n.Add(p.leaf())
		if !p.check(token.RPAR) {
			n.Add(p.parseArguments(p.parseArgument()))
		}
		n.Add(p.expect(token.RPAR))
	}
	return n.Add(p.expectColon(), p.parseBlock())
}

// parseParameters parses a def or lambda parameter list up to end. Bare '*'
// and '/' separators are kept as terminal children.
func (p *Parser) parseParameters(end token.Kind, annotated bool) *cst.Node {
	params := cst.New(cst.Parameters)
	seenStar := false
	for !p.check(end) && !p.isAtEnd() {
		switch {
		case p.check(token.SLASH):
			if seenStar {
				p.errorHere(diag.CodeInvalidParameter, "'/' must come before '*'")
			}
			params.Add(p.leaf())
		case p.check(token.STAR) && (p.peekAt(1).Kind == token.COMMA || p.peekAt(1).Kind == end):
			seenStar = true
			params.Add(p.leaf())
		default:
			if p.check(token.STAR) {
				seenStar = true
			}
			params.Add(p.parseParam(annotated))
		}
		if !p.check(token.COMMA) {
			break
		}
		params.Add(p.leaf())
	}
	return params
}

// parseParam parses: ['*' | '**'] NAME [':' annotation] ['=' default]
func (p *Parser) parseParam(annotated bool) *cst.Node {
	n := cst.New(cst.Param)
	if p.match(token.STAR, token.DOUBLESTAR) {
		n.Add(p.leaf())
	}
	n.Add(p.expect(token.NAME))
	if annotated && p.check(token.COLON) {
		ann := cst.New(cst.Annotation, p.leaf())
		if p.check(token.STAR) {
			ann.Add(p.parseStarExpression())
		} else {
			ann.Add(p.parseExpression())
		}
		n.Add(ann)
	}
	if p.check(token.EQUAL) {
		n.Add(cst.New(cst.Default, p.leaf(), p.parseExpression()))
	}
	return n
}

// parseTypeParams parses: '[' type_param { ',' type_param } [','] ']'
func (p *Parser) parseTypeParams() *cst.Node {
	n := cst.New(cst.TypeParams, p.leaf())
	for !p.check(token.RSQB) && !p.isAtEnd() {
		n.Add(p.parseTypeParam())
		if !p.check(token.COMMA) {
			break
		}
		n.Add(p.leaf())
	}
	return n.Add(p.expect(token.RSQB))
}

// parseTypeParam parses: ['*' | '**'] NAME [':' bound] ['=' default]
func (p *Parser) parseTypeParam() *cst.Node {
	n := cst.New(cst.TypeParam)
	if p.match(token.STAR, token.DOUBLESTAR) {
		n.Add(p.leaf())
	}
	n.Add(p.expect(token.NAME))
	if p.check(token.COLON) {
		n.Add(cst.New(cst.TypeParamBound, p.leaf(), p.parseExpression()))
	}
	if p.check(token.EQUAL) {
		def := cst.New(cst.TypeParamDefault, p.leaf())
		if p.check(token.STAR) {
			def.Add(p.parseStarExpression())
		} else {
			def.Add(p.parseExpression())
		}
		n.Add(def)
	}
	return n
}

// ============================================================
// Target validation
// ============================================================

// core descends through single-child productions to the node that decides
// what an expression is.
func core(n *cst.Node) *cst.Node {
	for n != nil && len(n.Children) == 1 && !n.Children[0].IsTerminal() {
		n = n.Children[0]
	}
	return n
}

// isTarget reports whether n can appear on the left of an assignment. Single
// targets (annotations, augmented assignment) exclude tuples and starring.
func isTarget(n *cst.Node, single bool) bool {
	c := core(n)
	if c == nil {
		return false
	}
	switch c.Kind {
	case cst.Atom:
		return len(c.Children) == 1 && c.Children[0].Is(token.NAME)
	case cst.Primary:
		return c.Has(token.DOT) || c.Has(token.LSQB)
	case cst.Group:
		inner := c.NonTerminals()
		return len(inner) == 1 && isTarget(inner[0], single)
	case cst.StarExpression, cst.StarNamedExpression:
		if single || !c.Has(token.STAR) {
			return false
		}
		inner := c.NonTerminals()
		return len(inner) == 1 && isTarget(inner[0], false)
	case cst.Tuple, cst.List, cst.StarExpressions, cst.StarNamedExpressions, cst.StarTargets:
		if single {
			return false
		}
		for _, el := range c.NonTerminals() {
			if el.Kind == cst.StarNamedExpressions {
				return isTarget(el, false)
			}
			if !isTarget(el, false) {
				return false
			}
		}
		return true
	}
	return false
}
