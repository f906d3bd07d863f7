package parser

import "testing"

func significantKinds(src string) []TokenKind {
	var kinds []TokenKind
	for _, tok := range NewLexer([]byte(src), "BUILD").Tokenize() {
		switch tok.Kind {
		case TokenWhitespace, TokenComment:
			continue
		}
		kinds = append(kinds, tok.Kind)
	}
	return kinds
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenKind
	}{
		{"", []TokenKind{TokenEOF}},
		{"x = 1", []TokenKind{TokenIdent, TokenAssign, TokenInt, TokenNewline, TokenEOF}},
		{"x += 0x1F", []TokenKind{TokenIdent, TokenPlusAssign, TokenInt, TokenNewline, TokenEOF}},
		{"a // b //= c", []TokenKind{TokenIdent, TokenSlashSlash, TokenIdent, TokenSlashSlashAssign, TokenIdent, TokenNewline, TokenEOF}},
		{"** * *=", []TokenKind{TokenStarStar, TokenStar, TokenStarAssign, TokenNewline, TokenEOF}},
		{"== != < <= > >=", []TokenKind{TokenEQ, TokenNE, TokenLT, TokenLE, TokenGT, TokenGE, TokenNewline, TokenEOF}},
		{"'a' \"b\" r'c' '''d'''", []TokenKind{TokenString, TokenString, TokenString, TokenString, TokenNewline, TokenEOF}},
		{"not in and or", []TokenKind{TokenNot, TokenIn, TokenAnd, TokenOr, TokenNewline, TokenEOF}},
		{"while lambda", []TokenKind{TokenWhile, TokenLambda, TokenNewline, TokenEOF}},
		{"# comment\nx", []TokenKind{TokenIdent, TokenNewline, TokenEOF}},
		{"foo(\n  a,\n)", []TokenKind{TokenIdent, TokenLParen, TokenIdent, TokenComma, TokenRParen, TokenNewline, TokenEOF}},
		{"x = \\\n  1", []TokenKind{TokenIdent, TokenAssign, TokenInt, TokenNewline, TokenEOF}},
		{"$", []TokenKind{TokenIllegal, TokenNewline, TokenEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := significantKinds(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLexerIndentation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenKind
	}{
		{
			name:  "block",
			input: "if x:\n  pass\n",
			expected: []TokenKind{
				TokenIf, TokenIdent, TokenColon, TokenNewline,
				TokenIndent, TokenPass, TokenNewline,
				TokenDedent, TokenEOF,
			},
		},
		{
			name:  "nested blocks close together",
			input: "if a:\n  if b:\n    pass\nx\n",
			expected: []TokenKind{
				TokenIf, TokenIdent, TokenColon, TokenNewline,
				TokenIndent, TokenIf, TokenIdent, TokenColon, TokenNewline,
				TokenIndent, TokenPass, TokenNewline,
				TokenDedent, TokenDedent, TokenIdent, TokenNewline, TokenEOF,
			},
		},
		{
			name:  "blank and comment lines keep the level",
			input: "def f():\n  a\n\n# note\n  b\n",
			expected: []TokenKind{
				TokenDef, TokenIdent, TokenLParen, TokenRParen, TokenColon, TokenNewline,
				TokenIndent, TokenIdent, TokenNewline,
				TokenIdent, TokenNewline,
				TokenDedent, TokenEOF,
			},
		},
		{
			name:  "unterminated block at end of input",
			input: "for x in y:\n    pass",
			expected: []TokenKind{
				TokenFor, TokenIdent, TokenIn, TokenIdent, TokenColon, TokenNewline,
				TokenIndent, TokenPass, TokenNewline,
				TokenDedent, TokenEOF,
			},
		},
		{
			name:  "tab counts to the next multiple of eight",
			input: "if x:\n\tpass\n        pass\n",
			expected: []TokenKind{
				TokenIf, TokenIdent, TokenColon, TokenNewline,
				TokenIndent, TokenPass, TokenNewline,
				TokenPass, TokenNewline,
				TokenDedent, TokenEOF,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := significantKinds(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"x = 'abc", "unterminated string literal"},
		{"x = '''abc", "unterminated string literal"},
		{"if x:\n    a\n  b\n", "unindent does not match any outer indentation level"},
		{"x = $", "invalid character '$'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lexer := NewLexer([]byte(tt.input), "BUILD")
			lexer.Tokenize()
			errs := lexer.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Message != tt.message {
				t.Errorf("got %q, want %q", errs[0].Message, tt.message)
			}
		})
	}
}

func TestLexerPositions(t *testing.T) {
	tokens := NewLexer([]byte("a = 1\nbb = 'x'\n"), "BUILD").Tokenize()
	var idents []Token
	for _, tok := range tokens {
		if tok.Kind == TokenIdent {
			idents = append(idents, tok)
		}
	}
	if len(idents) != 2 {
		t.Fatalf("got %d identifiers, want 2", len(idents))
	}
	second := idents[1]
	if second.Literal != "bb" {
		t.Errorf("got literal %q, want %q", second.Literal, "bb")
	}
	if second.Span.Start.Line != 2 || second.Span.Start.Column != 1 {
		t.Errorf("got start %s, want 2:1", second.Span.Start.lineColumn())
	}
	if second.Span.End.Column != 3 {
		t.Errorf("got end column %d, want 3", second.Span.End.Column)
	}
	if second.Span.Start.Offset != 6 {
		t.Errorf("got offset %d, want 6", second.Span.Start.Offset)
	}
}

func TestTokenSet(t *testing.T) {
	set := NewTokenSet(TokenIdent, TokenPercentAssign)
	if !set.Contains(TokenIdent) || !set.Contains(TokenPercentAssign) {
		t.Fatal("missing member")
	}
	if set.Contains(TokenInt) {
		t.Error("unexpected member")
	}
	if got := set.Union(NewTokenSet(TokenInt)).Kinds(); len(got) != 3 {
		t.Errorf("got %v, want 3 kinds", got)
	}
	if !set.Intersects(NewTokenSet(TokenPercentAssign)) {
		t.Error("sets should intersect")
	}
}

func TestForbiddenKeywordMessage(t *testing.T) {
	tests := []struct {
		kind    TokenKind
		message string
		ok      bool
	}{
		{TokenWhile, "'while' not supported, use 'for' instead", true},
		{TokenImport, "'import' not supported, use 'load' instead", true},
		{TokenYield, "keyword 'yield' not supported", true},
		{TokenFor, "", false},
		{TokenIdent, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			message, ok := ForbiddenKeywordMessage(tt.kind)
			if ok != tt.ok || message != tt.message {
				t.Errorf("got (%q, %v), want (%q, %v)", message, ok, tt.message, tt.ok)
			}
		})
	}
}
