package parser

import (
	"fmt"
	"unicode/utf8"
)

// Lexer turns BUILD source into tokens. Whitespace and comments are returned
// as tokens; indentation is reported with synthesized Indent and Dedent tokens.
type Lexer struct {
	input   []byte
	file    string
	pos     int
	line    int
	column  int
	depth   int
	indents []int
	pending []Token
	errors  []*Error

	atLineStart    bool
	lineHasContent bool
	done           bool
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input:       input,
		file:        file,
		line:        1,
		column:      1,
		indents:     []int{0},
		atLineStart: true,
	}
}

// Tokenize returns every remaining token up to and including EOF.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

// Errors returns the lexical errors found so far.
func (l *Lexer) Errors() []*Error {
	return l.errors
}

func (l *Lexer) Position() Position {
	return Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) errorf(span Span, format string, args ...any) {
	l.errors = append(l.errors, &Error{Message: fmt.Sprintf(format, args...), Span: span})
}

func (l *Lexer) NextToken() Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}
	if l.done {
		pos := l.Position()
		return Token{Kind: TokenEOF, Span: Span{Start: pos, End: pos}}
	}

	if l.atLineStart && l.depth == 0 {
		l.atLineStart = false
		if tok, ok := l.scanIndentation(); ok {
			return tok
		}
	}

	start := l.Position()
	if l.atEnd() {
		return l.scanEOF(start)
	}

	ch := l.peek()
	switch {
	case ch == '\n':
		return l.scanNewline(start)
	case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f':
		return l.scanWhitespace(start)
	case ch == '\\' && (l.peekN(1) == '\n' || (l.peekN(1) == '\r' && l.peekN(2) == '\n')):
		return l.scanContinuation(start)
	case ch == '#':
		return l.scanComment(start)
	case isStringPrefix(ch) && (l.peekN(1) == '\'' || l.peekN(1) == '"'):
		return l.content(l.scanString(start, 1))
	case isLetter(ch):
		return l.content(l.scanIdentOrKeyword(start))
	case isDigit(ch):
		return l.content(l.scanNumber(start))
	case ch == '\'' || ch == '"':
		return l.content(l.scanString(start, 0))
	}
	return l.content(l.scanOperator(start))
}

func (l *Lexer) content(tok Token) Token {
	l.lineHasContent = true
	return tok
}

// scanIndentation measures the leading whitespace of a logical line and
// queues the layout tokens it implies. Blank and comment-only lines never
// change the indentation level.
func (l *Lexer) scanIndentation() (Token, bool) {
	width := 0
	end := l.pos
	for end < len(l.input) {
		ch := l.input[end]
		if ch == ' ' {
			width++
		} else if ch == '\t' {
			width = (width/8 + 1) * 8
		} else if ch == '\f' {
			width = 0
		} else {
			break
		}
		end++
	}
	if end >= len(l.input) {
		return Token{}, false
	}
	switch l.input[end] {
	case '\n', '\r', '#':
		return Token{}, false
	}

	var ws *Token
	if end > l.pos {
		start := l.Position()
		l.advanceN(end - start.Offset)
		tok := l.token(TokenWhitespace, start)
		ws = &tok
	}

	pos := l.Position()
	layout := Span{Start: pos, End: pos}
	top := l.indents[len(l.indents)-1]
	if width > top {
		l.indents = append(l.indents, width)
		l.pending = append(l.pending, Token{Kind: TokenIndent, Span: layout})
	} else if width < top {
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, Token{Kind: TokenDedent, Span: layout})
		}
		if l.indents[len(l.indents)-1] != width {
			l.errorf(layout, "unindent does not match any outer indentation level")
			l.indents = append(l.indents, width)
		}
	}

	if ws != nil {
		return *ws, true
	}
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok, true
	}
	return Token{}, false
}

func (l *Lexer) scanEOF(start Position) Token {
	layout := Span{Start: start, End: start}
	if l.lineHasContent {
		l.pending = append(l.pending, Token{Kind: TokenNewline, Span: layout})
		l.lineHasContent = false
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.pending = append(l.pending, Token{Kind: TokenDedent, Span: layout})
	}
	l.pending = append(l.pending, Token{Kind: TokenEOF, Span: layout})
	l.done = true
	tok := l.pending[0]
	l.pending = l.pending[1:]
	return tok
}

func (l *Lexer) scanNewline(start Position) Token {
	l.advance()
	if l.depth > 0 || !l.lineHasContent {
		if l.depth == 0 {
			l.atLineStart = true
		}
		return l.token(TokenWhitespace, start)
	}
	l.lineHasContent = false
	l.atLineStart = true
	return l.token(TokenNewline, start)
}

func (l *Lexer) scanWhitespace(start Position) Token {
	for {
		ch := l.peek()
		if l.atEnd() || !(ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f') {
			break
		}
		l.advance()
	}
	return l.token(TokenWhitespace, start)
}

func (l *Lexer) scanContinuation(start Position) Token {
	l.advance()
	if l.peek() == '\r' {
		l.advance()
	}
	l.advance()
	return l.token(TokenWhitespace, start)
}

func (l *Lexer) scanComment(start Position) Token {
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
	return l.token(TokenComment, start)
}

func (l *Lexer) scanIdentOrKeyword(start Position) Token {
	for !l.atEnd() && isLetterOrDigit(l.peek()) {
		l.advance()
	}
	tok := l.token(TokenIdent, start)
	tok.Kind = LookupKeyword(tok.Literal)
	return tok
}

func (l *Lexer) scanNumber(start Position) Token {
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		l.advanceN(2)
		for !l.atEnd() && isHexDigit(l.peek()) {
			l.advance()
		}
		return l.token(TokenInt, start)
	}
	if l.peek() == '0' && (l.peekN(1) == 'o' || l.peekN(1) == 'O') {
		l.advanceN(2)
		for !l.atEnd() && l.peek() >= '0' && l.peek() <= '7' {
			l.advance()
		}
		return l.token(TokenInt, start)
	}
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	return l.token(TokenInt, start)
}

func (l *Lexer) scanString(start Position, prefix int) Token {
	l.advanceN(prefix)
	quote := l.peek()
	triple := l.peekN(1) == quote && l.peekN(2) == quote
	if triple {
		l.advanceN(3)
	} else {
		l.advance()
	}

	closed := false
	for !l.atEnd() {
		ch := l.peek()
		if ch == '\\' {
			l.advance()
			l.advance()
			continue
		}
		if triple {
			if ch == quote && l.peekN(1) == quote && l.peekN(2) == quote {
				l.advanceN(3)
				closed = true
				break
			}
			l.advance()
			continue
		}
		if ch == '\n' {
			break
		}
		l.advance()
		if ch == quote {
			closed = true
			break
		}
	}

	tok := l.token(TokenString, start)
	if !closed {
		l.errorf(tok.Span, "unterminated string literal")
	}
	return tok
}

func (l *Lexer) scanOperator(start Position) Token {
	ch := l.peek()

	switch ch {
	case '(':
		return l.open(TokenLParen, start)
	case '[':
		return l.open(TokenLBracket, start)
	case '{':
		return l.open(TokenLBrace, start)
	case ')':
		return l.close(TokenRParen, start)
	case ']':
		return l.close(TokenRBracket, start)
	case '}':
		return l.close(TokenRBrace, start)
	case ',':
		l.advance()
		return l.token(TokenComma, start)
	case ':':
		l.advance()
		return l.token(TokenColon, start)
	case ';':
		l.advance()
		return l.token(TokenSemicolon, start)
	case '.':
		l.advance()
		return l.token(TokenDot, start)
	case '|':
		l.advance()
		return l.token(TokenPipe, start)

	case '=':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenEQ, start)
		}
		l.advance()
		return l.token(TokenAssign, start)

	case '!':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenNE, start)
		}

	case '<':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenLE, start)
		}
		l.advance()
		return l.token(TokenLT, start)

	case '>':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenGE, start)
		}
		l.advance()
		return l.token(TokenGT, start)

	case '+':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenPlusAssign, start)
		}
		l.advance()
		return l.token(TokenPlus, start)

	case '-':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenMinusAssign, start)
		}
		l.advance()
		return l.token(TokenMinus, start)

	case '*':
		if l.peekN(1) == '*' {
			l.advanceN(2)
			return l.token(TokenStarStar, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenStarAssign, start)
		}
		l.advance()
		return l.token(TokenStar, start)

	case '/':
		if l.peekN(1) == '/' {
			if l.peekN(2) == '=' {
				l.advanceN(3)
				return l.token(TokenSlashSlashAssign, start)
			}
			l.advanceN(2)
			return l.token(TokenSlashSlash, start)
		}
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenSlashAssign, start)
		}
		l.advance()
		return l.token(TokenSlash, start)

	case '%':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(TokenPercentAssign, start)
		}
		l.advance()
		return l.token(TokenPercent, start)
	}

	r, size := utf8.DecodeRune(l.input[l.pos:])
	l.advanceN(size)
	tok := l.token(TokenIllegal, start)
	l.errorf(tok.Span, "invalid character %q", r)
	return tok
}

// Newlines between an opening bracket and its closer are whitespace.
func (l *Lexer) open(kind TokenKind, start Position) Token {
	l.depth++
	l.advance()
	return l.token(kind, start)
}

func (l *Lexer) close(kind TokenKind, start Position) Token {
	if l.depth > 0 {
		l.depth--
	}
	l.advance()
	return l.token(kind, start)
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.Position()
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: end},
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isLetterOrDigit(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}

func isStringPrefix(ch byte) bool {
	return ch == 'r' || ch == 'R' || ch == 'b' || ch == 'B'
}
