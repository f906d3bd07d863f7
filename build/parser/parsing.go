package parser

// lineBoundaries are never skipped by recovery. They are where statements
// and suites resynchronize.
var lineBoundaries = NewTokenSet(TokenNewline, TokenIndent, TokenDedent, TokenEOF)

type Parser struct {
	file            string
	includeComments bool
	cursor          TokenCursor
	builder         *Builder
	comments        []Token
}

func newParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) currentToken() TokenKind {
	if p.cursor.AtEnd() {
		return TokenEOF
	}
	return p.cursor.Kind()
}

// advance consumes the current token. It is the only place tokens are
// consumed, so every reserved keyword is reported exactly once.
func (p *Parser) advance() {
	if p.cursor.AtEnd() {
		return
	}
	kind := p.cursor.Kind()
	if msg, ok := ForbiddenKeywordMessage(kind); ok {
		p.builder.Error(msg, p.cursor.Span())
	}
	tok := Token{Kind: kind, Span: p.cursor.Span(), Literal: p.cursor.Text()}
	if kind == TokenComment && p.includeComments {
		p.comments = append(p.comments, tok)
	}
	p.builder.Advance(tok)
	p.cursor.Advance()
}

// mustProgress returns a function that checks if the parser has advanced.
// Call it at the start of a loop iteration, then call the returned function
// at the end. If nothing was consumed it skips one token and returns false.
func (p *Parser) mustProgress() func() bool {
	saved := p.builder.consumed()
	return func() bool {
		if p.builder.consumed() == saved {
			p.advance()
			return false
		}
		return true
	}
}

func (p *Parser) mark() Marker {
	return p.builder.Mark()
}

func (p *Parser) error(message string) {
	p.builder.Error(message, p.cursor.Span())
}

func (p *Parser) atToken(kind TokenKind) bool {
	return p.currentToken() == kind
}

func (p *Parser) atAnyOf(kinds ...TokenKind) bool {
	current := p.currentToken()
	for _, kind := range kinds {
		if current == kind {
			return true
		}
	}
	return false
}

func (p *Parser) atSet(set TokenSet) bool {
	return set.Contains(p.currentToken())
}

// atTokenSequence checks the next len(kinds) tokens without consuming them.
func (p *Parser) atTokenSequence(kinds ...TokenKind) bool {
	for i, kind := range kinds {
		if p.cursor.Lookahead(i) != kind {
			return false
		}
	}
	return true
}

func (p *Parser) matches(kind TokenKind) bool {
	if p.atToken(kind) && kind != TokenEOF {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchesAnyOf(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.matches(kind) {
			return true
		}
	}
	return false
}

func (p *Parser) matchesSet(set TokenSet) bool {
	if p.atSet(set) && !p.atToken(TokenEOF) {
		p.advance()
		return true
	}
	return false
}

// matchesSequence consumes kinds only if all of them are next in the
// stream. Nothing is consumed otherwise.
func (p *Parser) matchesSequence(kinds ...TokenKind) bool {
	if !p.atTokenSequence(kinds...) {
		return false
	}
	for range kinds {
		p.advance()
	}
	return true
}

func (p *Parser) expect(kind TokenKind, alwaysConsume bool) bool {
	return p.expectMessage(kind, "'"+kind.String()+"' expected", alwaysConsume)
}

// expectMessage consumes kind or reports message. With alwaysConsume the
// offending token is skipped unless it ends a line.
func (p *Parser) expectMessage(kind TokenKind, message string, alwaysConsume bool) bool {
	if p.matches(kind) {
		return true
	}
	p.error(message)
	if alwaysConsume && !p.atSet(lineBoundaries) {
		p.advance()
	}
	return false
}

// syncTo skips tokens until one in terminators or a line boundary.
func (p *Parser) syncTo(terminators TokenSet) {
	for !p.atSet(terminators) && !p.atSet(lineBoundaries) {
		p.advance()
	}
}

// syncPast is syncTo followed by consuming the terminator, if it is one of
// terminators.
func (p *Parser) syncPast(terminators TokenSet) {
	p.syncTo(terminators)
	p.matchesSet(terminators)
}

func (p *Parser) buildTokenElement(kind NodeKind) CompletedMarker {
	m := p.mark()
	p.advance()
	return m.Complete(kind)
}

// parseStringLiteral wraps the current string token. Adjacent strings are
// an error and each gets its own literal node.
func (p *Parser) parseStringLiteral(alwaysConsume bool) bool {
	if !p.atToken(TokenString) {
		if alwaysConsume {
			p.expect(TokenString, true)
		}
		return false
	}
	p.buildTokenElement(KindStringLiteral)
	for p.atToken(TokenString) {
		p.error("implicit string concatenation is forbidden; use the '+' operator")
		p.buildTokenElement(KindStringLiteral)
	}
	return true
}

func (p *Parser) skipComments() {
	for p.matches(TokenComment) {
	}
}
