package parser

var (
	statementTerminators = NewTokenSet(TokenEOF, TokenNewline, TokenSemicolon)
	newlineSet           = NewTokenSet(TokenNewline)

	augmentedAssignOperators = NewTokenSet(
		TokenPlusAssign, TokenMinusAssign, TokenStarAssign,
		TokenSlashAssign, TokenSlashSlashAssign, TokenPercentAssign,
	)
)

// parseFileInput parses statements until the end of input. Dedents left
// over from malformed indentation are skipped.
func (p *Parser) parseFileInput() {
	for !p.atToken(TokenEOF) {
		p.parseStatementBlock(p.parseTopLevelStatement)
		p.matches(TokenDedent)
	}
}

// parseStatementBlock parses statements until a dedent or the end of input.
func (p *Parser) parseStatementBlock(statement func()) {
	for !p.atAnyOf(TokenDedent, TokenEOF) {
		progress := p.mustProgress()
		p.skipComments()
		switch p.currentToken() {
		case TokenNewline:
			p.advance()
		case TokenIndent:
			p.parseUnexpectedIndent(statement)
		case TokenDedent, TokenEOF:
		default:
			statement()
		}
		progress()
	}
}

// parseUnexpectedIndent keeps the statements of an indented block that no
// header introduced, wrapped in an error node.
func (p *Parser) parseUnexpectedIndent(statement func()) {
	m := p.mark()
	p.advance()
	p.parseStatementBlock(statement)
	p.matches(TokenDedent)
	m.Error("unexpected indentation")
}

func (p *Parser) parseTopLevelStatement() {
	switch {
	case p.atToken(TokenIdent) && p.cursor.Text() == "load":
		p.parseLoadStatement()
	case p.atToken(TokenDef):
		p.parseFunctionStatement()
	default:
		p.parseStatement()
	}
}

func (p *Parser) parseStatement() {
	switch kind := p.currentToken(); {
	case kind == TokenIf:
		p.parseIfStatement()
	case kind == TokenFor:
		p.parseForStatement()
	case ForbiddenKeywords.Contains(kind):
		p.parseForbiddenStatement()
	default:
		p.parseSimpleStatement()
	}
}

// parseForbiddenStatement skips a statement introduced by a reserved
// keyword. The keyword itself is reported when it is consumed. A block
// opened by the skipped header is still parsed.
func (p *Parser) parseForbiddenStatement() {
	var last TokenKind
	for !p.atSet(lineBoundaries) {
		last = p.currentToken()
		p.advance()
	}
	if last == TokenColon && p.atTokenSequence(TokenNewline, TokenIndent) {
		p.parseSuite()
		return
	}
	p.matches(TokenNewline)
}

func (p *Parser) parseIfStatement() {
	m := p.mark()
	p.parseIfStatementPart(TokenIf, KindIfPart, true)
	for p.atToken(TokenElif) {
		p.parseIfStatementPart(TokenElif, KindElseIfPart, true)
	}
	if p.atToken(TokenElse) {
		p.parseIfStatementPart(TokenElse, KindElsePart, false)
	}
	m.Complete(KindIfStatement)
}

func (p *Parser) parseIfStatementPart(keyword TokenKind, kind NodeKind, hasCondition bool) {
	m := p.mark()
	p.expect(keyword, true)
	if hasCondition {
		p.parseNonTupleExpression()
	}
	p.expect(TokenColon, false)
	p.parseSuite()
	m.Complete(kind)
}

func (p *Parser) parseForStatement() {
	m := p.mark()
	p.expect(TokenFor, true)
	p.parseForLoopVariables()
	p.expect(TokenIn, false)
	p.parseExpression(false)
	p.expect(TokenColon, false)
	p.parseSuite()
	m.Complete(KindForStatement)
}

func (p *Parser) parseFunctionStatement() {
	m := p.mark()
	p.expect(TokenDef, true)
	p.expect(TokenIdent, false)
	p.expect(TokenLParen, false)
	params := p.mark()
	p.parseFunctionParameters()
	params.Complete(KindParameterList)
	p.expect(TokenRParen, false)
	p.expect(TokenColon, false)
	p.parseSuite()
	m.Complete(KindFunctionStatement)
}

// parseLoadStatement parses load("//pkg:file.bzl", "sym", alias = "sym").
func (p *Parser) parseLoadStatement() {
	m := p.mark()
	p.advance()
	p.expect(TokenLParen, false)
	p.parseStringLiteral(true)
	hasSymbols := false
	for !p.matches(TokenRParen) && !p.atSet(statementTerminators) {
		progress := p.mustProgress()
		p.skipComments()
		p.expect(TokenComma, false)
		p.skipComments()
		if p.matches(TokenRParen) || p.atSet(statementTerminators) {
			break
		}
		if p.parseLoadedSymbol() {
			hasSymbols = true
		}
		p.skipComments()
		if !progress() {
			break
		}
	}
	if !hasSymbols {
		p.error("'load' statement requires at least one symbol to load")
	}
	m.Complete(KindLoadStatement)
	p.parseStatementTerminator()
}

// parseLoadedSymbol parses "sym" or alias = "sym".
func (p *Parser) parseLoadedSymbol() bool {
	m := p.mark()
	if p.atTokenSequence(TokenIdent, TokenAssign) {
		alias := p.mark()
		p.buildTokenElement(KindTargetExpression)
		p.advance()
		p.parseStringLiteral(true)
		alias.Complete(KindAssignmentStatement)
		m.Complete(KindLoadedSymbol)
		return true
	}
	if !p.parseStringLiteral(true) {
		m.Discard()
		return false
	}
	m.Complete(KindLoadedSymbol)
	return true
}

func (p *Parser) parseSimpleStatement() {
	p.parseSmallStatement()
	for p.matches(TokenSemicolon) {
		if p.atAnyOf(TokenNewline, TokenEOF) {
			break
		}
		p.parseSmallStatement()
	}
	p.parseStatementTerminator()
}

func (p *Parser) parseStatementTerminator() {
	if p.atToken(TokenEOF) || p.matches(TokenNewline) {
		return
	}
	p.expect(TokenNewline, false)
	p.syncPast(newlineSet)
}

func (p *Parser) parseSmallStatement() {
	switch p.currentToken() {
	case TokenReturn:
		m := p.mark()
		p.advance()
		if !p.atSet(statementTerminators) && !p.atSet(lineBoundaries) {
			p.parseExpression(false)
		}
		m.Complete(KindReturnStatement)
	case TokenBreak, TokenContinue:
		p.buildTokenElement(KindFlowStatement)
	case TokenPass:
		p.buildTokenElement(KindPassStatement)
	default:
		p.parseExpressionStatement()
	}
}

// parseExpressionStatement parses an expression with an optional plain or
// augmented assignment. A bare expression gets no wrapping node.
func (p *Parser) parseExpressionStatement() {
	m := p.mark()
	p.parseExpression(false)
	switch {
	case p.matches(TokenAssign):
		p.parseExpression(false)
		m.Complete(KindAssignmentStatement)
	case p.matchesSet(augmentedAssignOperators):
		p.parseExpression(false)
		m.Complete(KindAugmentedAssignmentStatement)
	default:
		m.Discard()
	}
}

// parseSuite parses the body after a colon: either a simple statement on
// the same line or an indented block.
func (p *Parser) parseSuite() {
	if !p.atToken(TokenNewline) {
		p.parseSimpleStatement()
		return
	}
	p.advance()
	m := p.mark()
	if p.expect(TokenIndent, false) {
		p.parseStatementBlock(p.parseStatement)
		p.matches(TokenDedent)
	}
	m.Complete(KindStatementList)
}
