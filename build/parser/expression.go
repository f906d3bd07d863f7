package parser

var (
	// exprTerminators end recovery inside an expression.
	exprTerminators = NewTokenSet(
		TokenEOF, TokenComma, TokenColon, TokenFor, TokenMinus, TokenPercent,
		TokenPlus, TokenRBracket, TokenRParen, TokenRBrace, TokenSlash, TokenSemicolon,
	)
	exprListTerminators = NewTokenSet(
		TokenEOF, TokenNewline, TokenAssign, TokenColon, TokenRBrace, TokenRBracket,
		TokenRParen, TokenSemicolon, TokenPlusAssign, TokenMinusAssign, TokenStarAssign,
		TokenSlashAssign, TokenSlashSlashAssign, TokenPercentAssign,
	)
	funcallTerminators = NewTokenSet(TokenEOF, TokenRParen, TokenSemicolon, TokenNewline)
	listTerminators    = NewTokenSet(TokenEOF, TokenRBracket, TokenSemicolon)
	dictTerminators    = NewTokenSet(TokenEOF, TokenRBrace, TokenSemicolon)
	paramSeparators    = NewTokenSet(TokenComma, TokenRParen)
)

// operatorPrecedence lists binary operator groups, lowest precedence first.
var operatorPrecedence = []TokenSet{
	NewTokenSet(TokenOr),
	NewTokenSet(TokenAnd),
	NewTokenSet(TokenNot),
	NewTokenSet(TokenEQ, TokenNE, TokenLT, TokenLE, TokenGT, TokenGE, TokenIn),
	NewTokenSet(TokenPipe),
	NewTokenSet(TokenPlus, TokenMinus),
	NewTokenSet(TokenSlash, TokenSlashSlash, TokenStar, TokenPercent),
}

const (
	notPrecedence        = 2
	comparisonPrecedence = 3
)

// parseExpression parses a non-tuple expression, or a tuple if a comma
// follows. A trailing comma is only accepted inside parentheses.
func (p *Parser) parseExpression(insideParens bool) {
	tuple := p.mark()
	p.parseNonTupleExpression()
	if p.atToken(TokenComma) {
		p.parseExpressionList(insideParens)
		tuple.Complete(KindTupleExpression)
		return
	}
	tuple.Discard()
}

func (p *Parser) parseExpressionList(insideParens bool) {
	for p.matches(TokenComma) {
		if p.atSet(exprListTerminators) {
			if !insideParens {
				p.error("trailing commas are allowed only in parenthesized tuples")
			}
			return
		}
		p.parseNonTupleExpression()
	}
}

// parseNonTupleExpression parses a binary expression with an optional
// conditional suffix. The parts of "a if b else c" share the enclosing span.
func (p *Parser) parseNonTupleExpression() {
	p.parseBinaryExpression(0)
	if p.matches(TokenIf) {
		p.parseBinaryExpression(0)
		if p.matches(TokenElse) {
			p.parseNonTupleExpression()
		}
	}
}

func (p *Parser) parseBinaryExpression(prec int) {
	if prec >= len(operatorPrecedence) {
		p.parsePrimaryWithSuffix()
		return
	}
	if prec == notPrecedence {
		p.parseNotExpression(prec)
		return
	}
	m := p.mark()
	p.parseBinaryExpression(prec + 1)
	for p.matchesOperator(prec) {
		p.parseBinaryExpression(prec + 1)
		m = m.Complete(KindBinaryOpExpression).Precede()
	}
	m.Discard()
}

// matchesOperator consumes a binary operator of the given group. "not in"
// is two tokens and must be tried before anything treats "not" as unary.
func (p *Parser) matchesOperator(prec int) bool {
	if prec == comparisonPrecedence && p.matchesSequence(TokenNot, TokenIn) {
		return true
	}
	return p.matchesSet(operatorPrecedence[prec])
}

func (p *Parser) parseNotExpression(prec int) {
	if !p.atToken(TokenNot) || p.atTokenSequence(TokenNot, TokenIn) {
		p.parseBinaryExpression(prec + 1)
		return
	}
	m := p.mark()
	p.advance()
	p.parseNotExpression(prec)
	m.Complete(KindNotExpression)
}

func (p *Parser) parsePrimaryWithSuffix() {
	m := p.mark()
	p.parsePrimary()
	for {
		switch {
		case p.matches(TokenDot):
			m = p.parseSelectorSuffix(m)
		case p.matches(TokenLBracket):
			m = p.parseSubstringSuffix(m)
		default:
			m.Discard()
			return
		}
	}
}

// parseSelectorSuffix parses the part of "a.b" or "a.b(c)" after the dot.
func (p *Parser) parseSelectorSuffix(m Marker) Marker {
	if !p.atToken(TokenIdent) {
		p.error("expected identifier after dot")
		p.syncPast(exprTerminators)
		return m
	}
	p.parseTargetOrReferenceIdentifier()
	if p.atToken(TokenLParen) {
		p.parseFuncallSuffix()
		return m.Complete(KindFuncallExpression).Precede()
	}
	return m.Complete(KindDotExpression).Precede()
}

// parseSubstringSuffix parses "[start:stop:step]" after the opening
// bracket. Subscripts and slices share one node kind.
func (p *Parser) parseSubstringSuffix(m Marker) Marker {
	if !p.atToken(TokenColon) {
		p.parseExpression(false)
	}
	for !p.matches(TokenRBracket) {
		if !p.expect(TokenColon, false) {
			p.syncPast(exprTerminators)
			break
		}
		if !p.atAnyOf(TokenColon, TokenRBracket) {
			p.parseNonTupleExpression()
		}
	}
	return m.Complete(KindFuncallExpression).Precede()
}

func (p *Parser) parsePrimary() {
	switch p.currentToken() {
	case TokenInt:
		p.buildTokenElement(KindIntegerLiteral)
	case TokenString:
		p.parseStringLiteral(true)
	case TokenIdent:
		if p.atTokenSequence(TokenIdent, TokenLParen) {
			p.parseFunctionCall()
			return
		}
		p.parseTargetOrReferenceIdentifier()
	case TokenLBracket:
		p.parseListMaker()
	case TokenLBrace:
		p.parseDictMaker()
	case TokenLParen:
		m := p.mark()
		p.advance()
		if p.matches(TokenRParen) {
			m.Complete(KindTupleExpression)
			return
		}
		p.parseExpression(true)
		p.expect(TokenRParen, true)
		m.Complete(KindParenthesizedExpression)
	case TokenMinus:
		m := p.mark()
		p.advance()
		p.parsePrimaryWithSuffix()
		m.Complete(KindPositionalArgument)
	default:
		p.error("expected an expression")
		p.syncPast(exprTerminators)
	}
}

// parseTargetOrReferenceIdentifier classifies a bare name: it is a target
// when it is assigned or iterated into, a reference otherwise.
func (p *Parser) parseTargetOrReferenceIdentifier() {
	if p.atTokenSequence(TokenIdent, TokenAssign) || p.atTokenSequence(TokenIdent, TokenIn) {
		p.buildTokenElement(KindTargetExpression)
		return
	}
	p.buildTokenElement(KindReferenceExpression)
}

func (p *Parser) parseFunctionCall() {
	m := p.mark()
	name := p.cursor.Text()
	p.buildTokenElement(KindReferenceExpression)
	p.parseFuncallSuffix()
	if name == "glob" {
		m.Complete(KindGlobExpression)
		return
	}
	m.Complete(KindFuncallExpression)
}

func (p *Parser) parseFuncallSuffix() {
	p.expect(TokenLParen, false)
	args := p.mark()
	p.parseFuncallArguments()
	args.Complete(KindArgumentList)
	p.expect(TokenRParen, true)
}

func (p *Parser) parseFuncallArguments() {
	if p.atSet(funcallTerminators) {
		return
	}
	p.parseFuncallArgument()
	for !p.atSet(funcallTerminators) {
		progress := p.mustProgress()
		p.expect(TokenComma, false)
		if p.atSet(funcallTerminators) {
			break
		}
		p.parseFuncallArgument()
		if !progress() {
			break
		}
	}
}

func (p *Parser) parseFuncallArgument() {
	m := p.mark()
	switch {
	case p.matches(TokenStarStar):
		p.parseNonTupleExpression()
		m.Complete(KindStarStarArgument)
	case p.matches(TokenStar):
		p.parseNonTupleExpression()
		m.Complete(KindStarArgument)
	case p.matchesSequence(TokenIdent, TokenAssign):
		p.parseNonTupleExpression()
		m.Complete(KindKeywordArgument)
	default:
		p.parseNonTupleExpression()
		m.Complete(KindPositionalArgument)
	}
}

// parseListMaker parses a list literal or a list comprehension.
func (p *Parser) parseListMaker() {
	m := p.mark()
	p.expect(TokenLBracket, false)
	if p.matches(TokenRBracket) {
		m.Complete(KindListLiteral)
		return
	}
	p.parseNonTupleExpression()
	switch p.currentToken() {
	case TokenRBracket:
		p.advance()
		m.Complete(KindListLiteral)
	case TokenFor:
		if p.parseComprehensionSuffix(TokenRBracket, listTerminators) {
			m.Complete(KindListComprehension)
			return
		}
		m.Complete(KindListLiteral)
	case TokenComma:
		p.parseExpressionList(true)
		if !p.matches(TokenRBracket) {
			p.error("expected ',' or ']'")
			p.syncPast(listTerminators)
		}
		m.Complete(KindListLiteral)
	default:
		p.error("expected ',', 'for' or ']'")
		p.syncPast(listTerminators)
		m.Complete(KindListLiteral)
	}
}

// parseDictMaker parses a dict literal or a dict comprehension.
func (p *Parser) parseDictMaker() {
	m := p.mark()
	p.expect(TokenLBrace, false)
	if p.matches(TokenRBrace) {
		m.Complete(KindDictLiteral)
		return
	}
	p.parseDictEntry()
	switch p.currentToken() {
	case TokenRBrace:
		p.advance()
		m.Complete(KindDictLiteral)
	case TokenFor:
		if p.parseComprehensionSuffix(TokenRBrace, dictTerminators) {
			m.Complete(KindDictComprehension)
			return
		}
		m.Complete(KindDictLiteral)
	case TokenComma:
		p.parseDictEntryList()
		if !p.matches(TokenRBrace) {
			p.error("expected ',' or '}'")
			p.syncPast(dictTerminators)
		}
		m.Complete(KindDictLiteral)
	default:
		p.error("expected ',', 'for' or '}'")
		p.syncPast(dictTerminators)
		m.Complete(KindDictLiteral)
	}
}

func (p *Parser) parseDictEntryList() {
	for p.matches(TokenComma) {
		if p.atSet(dictTerminators) {
			return
		}
		p.parseDictEntry()
	}
}

func (p *Parser) parseDictEntry() {
	m := p.mark()
	p.parseNonTupleExpression()
	p.expect(TokenColon, false)
	p.parseNonTupleExpression()
	m.Complete(KindDictEntry)
}

// parseComprehensionSuffix parses "for" and "if" clauses up to closer. It
// reports whether the closer was reached.
func (p *Parser) parseComprehensionSuffix(closer TokenKind, terminators TokenSet) bool {
	for {
		switch p.currentToken() {
		case TokenFor:
			p.advance()
			p.parseForLoopVariables()
			p.expect(TokenIn, false)
			p.parseBinaryExpression(0)
		case TokenIf:
			p.advance()
			p.parseBinaryExpression(0)
		case closer:
			p.advance()
			return true
		default:
			p.error("expected 'for', 'if' or '" + closer.String() + "'")
			p.syncPast(terminators)
			return false
		}
	}
}

// parseForLoopVariables parses "x" or "x, y". Only the second form gets a
// wrapping node.
func (p *Parser) parseForLoopVariables() {
	m := p.mark()
	p.parsePrimaryWithSuffix()
	if !p.atToken(TokenComma) {
		m.Discard()
		return
	}
	for p.matches(TokenComma) {
		if p.atAnyOf(TokenIn, TokenEOF) {
			break
		}
		p.parsePrimaryWithSuffix()
	}
	m.Complete(KindListLiteral)
}

func (p *Parser) parseFunctionParameters() {
	if p.atSet(funcallTerminators) {
		return
	}
	p.parseFunctionParameter()
	for !p.atSet(funcallTerminators) {
		progress := p.mustProgress()
		p.expect(TokenComma, false)
		if p.atSet(funcallTerminators) {
			break
		}
		p.parseFunctionParameter()
		if !progress() {
			break
		}
	}
}

func (p *Parser) parseFunctionParameter() {
	m := p.mark()
	switch {
	case p.matches(TokenStarStar):
		p.expect(TokenIdent, false)
		m.Complete(KindStarStarParameter)
	case p.matches(TokenStar):
		p.matches(TokenIdent)
		m.Complete(KindStarParameter)
	case p.matches(TokenIdent):
		if p.matches(TokenAssign) {
			p.parseNonTupleExpression()
			m.Complete(KindOptionalParameter)
			return
		}
		m.Complete(KindMandatoryParameter)
	default:
		m.Discard()
		p.error("expected a parameter")
		p.syncTo(paramSeparators)
	}
}
