package parser

// TokenCursor is a forward-only view of a token stream.
type TokenCursor interface {
	Kind() TokenKind
	Text() string
	Span() Span
	Advance()
	// Lookahead returns the kind of the token n positions past the current
	// one. Lookahead(0) is Kind().
	Lookahead(n int) TokenKind
	AtEnd() bool
}

type sliceCursor struct {
	tokens []Token
	pos    int
}

// NewTokenCursor returns a cursor over tokens that hides whitespace,
// comment and illegal tokens.
func NewTokenCursor(tokens []Token) TokenCursor {
	filtered := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenWhitespace, TokenComment, TokenIllegal:
			continue
		}
		filtered = append(filtered, tok)
	}
	return &sliceCursor{tokens: filtered}
}

func (c *sliceCursor) at(i int) Token {
	if i < len(c.tokens) {
		return c.tokens[i]
	}
	if len(c.tokens) > 0 {
		end := c.tokens[len(c.tokens)-1].Span.End
		return Token{Kind: TokenEOF, Span: Span{Start: end, End: end}}
	}
	return Token{Kind: TokenEOF}
}

func (c *sliceCursor) Kind() TokenKind {
	return c.at(c.pos).Kind
}

func (c *sliceCursor) Text() string {
	return c.at(c.pos).Literal
}

func (c *sliceCursor) Span() Span {
	return c.at(c.pos).Span
}

func (c *sliceCursor) Advance() {
	if c.pos < len(c.tokens) {
		c.pos++
	}
}

func (c *sliceCursor) Lookahead(n int) TokenKind {
	return c.at(c.pos + n).Kind
}

func (c *sliceCursor) AtEnd() bool {
	return c.pos >= len(c.tokens) || c.tokens[c.pos].Kind == TokenEOF
}
