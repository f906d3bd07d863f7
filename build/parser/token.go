package parser

import "strconv"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return p.File + ":" + p.lineColumn()
	}
	return p.lineColumn()
}

func (p Position) lineColumn() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

type Span struct {
	Start Position
	End   Position
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIllegal
	TokenWhitespace
	TokenComment

	// Layout
	TokenNewline
	TokenIndent
	TokenDedent

	// Literals
	TokenIdent
	TokenInt
	TokenString

	// Keywords
	TokenAnd
	TokenBreak
	TokenContinue
	TokenDef
	TokenElif
	TokenElse
	TokenFor
	TokenIf
	TokenIn
	TokenNot
	TokenOr
	TokenPass
	TokenReturn

	// Reserved keywords, rejected by the parser
	TokenAs
	TokenAssert
	TokenDel
	TokenExcept
	TokenFinally
	TokenFrom
	TokenGlobal
	TokenImport
	TokenIs
	TokenLambda
	TokenNonlocal
	TokenRaise
	TokenTry
	TokenWith
	TokenWhile
	TokenYield

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenLBrace
	TokenRBrace
	TokenComma
	TokenColon
	TokenSemicolon
	TokenDot

	// Operators
	TokenAssign
	TokenEQ
	TokenNE
	TokenLT
	TokenLE
	TokenGT
	TokenGE
	TokenPlus
	TokenMinus
	TokenStar
	TokenStarStar
	TokenSlash
	TokenSlashSlash
	TokenPercent
	TokenPipe
	TokenPlusAssign
	TokenMinusAssign
	TokenStarAssign
	TokenSlashAssign
	TokenSlashSlashAssign
	TokenPercentAssign

	tokenKindCount
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:              "EOF",
	TokenIllegal:          "Illegal",
	TokenWhitespace:       "Whitespace",
	TokenComment:          "Comment",
	TokenNewline:          "newline",
	TokenIndent:           "indent",
	TokenDedent:           "dedent",
	TokenIdent:            "identifier",
	TokenInt:              "integer",
	TokenString:           "string",
	TokenAnd:              "and",
	TokenBreak:            "break",
	TokenContinue:         "continue",
	TokenDef:              "def",
	TokenElif:             "elif",
	TokenElse:             "else",
	TokenFor:              "for",
	TokenIf:               "if",
	TokenIn:               "in",
	TokenNot:              "not",
	TokenOr:               "or",
	TokenPass:             "pass",
	TokenReturn:           "return",
	TokenAs:               "as",
	TokenAssert:           "assert",
	TokenDel:              "del",
	TokenExcept:           "except",
	TokenFinally:          "finally",
	TokenFrom:             "from",
	TokenGlobal:           "global",
	TokenImport:           "import",
	TokenIs:               "is",
	TokenLambda:           "lambda",
	TokenNonlocal:         "nonlocal",
	TokenRaise:            "raise",
	TokenTry:              "try",
	TokenWith:             "with",
	TokenWhile:            "while",
	TokenYield:            "yield",
	TokenLParen:           "(",
	TokenRParen:           ")",
	TokenLBracket:         "[",
	TokenRBracket:         "]",
	TokenLBrace:           "{",
	TokenRBrace:           "}",
	TokenComma:            ",",
	TokenColon:            ":",
	TokenSemicolon:        ";",
	TokenDot:              ".",
	TokenAssign:           "=",
	TokenEQ:               "==",
	TokenNE:               "!=",
	TokenLT:               "<",
	TokenLE:               "<=",
	TokenGT:               ">",
	TokenGE:               ">=",
	TokenPlus:             "+",
	TokenMinus:            "-",
	TokenStar:             "*",
	TokenStarStar:         "**",
	TokenSlash:            "/",
	TokenSlashSlash:       "//",
	TokenPercent:          "%",
	TokenPipe:             "|",
	TokenPlusAssign:       "+=",
	TokenMinusAssign:      "-=",
	TokenStarAssign:       "*=",
	TokenSlashAssign:      "/=",
	TokenSlashSlashAssign: "//=",
	TokenPercentAssign:    "%=",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
}

var keywords = map[string]TokenKind{
	"and":      TokenAnd,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"def":      TokenDef,
	"elif":     TokenElif,
	"else":     TokenElse,
	"for":      TokenFor,
	"if":       TokenIf,
	"in":       TokenIn,
	"not":      TokenNot,
	"or":       TokenOr,
	"pass":     TokenPass,
	"return":   TokenReturn,
	"as":       TokenAs,
	"assert":   TokenAssert,
	"del":      TokenDel,
	"except":   TokenExcept,
	"finally":  TokenFinally,
	"from":     TokenFrom,
	"global":   TokenGlobal,
	"import":   TokenImport,
	"is":       TokenIs,
	"lambda":   TokenLambda,
	"nonlocal": TokenNonlocal,
	"raise":    TokenRaise,
	"try":      TokenTry,
	"with":     TokenWith,
	"while":    TokenWhile,
	"yield":    TokenYield,
}

func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}

// IsKeyword reports whether k is a keyword, including the reserved ones.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenAnd && k <= TokenYield
}

// ForbiddenKeywords are lexed as keywords but rejected by the parser.
var ForbiddenKeywords = NewTokenSet(
	TokenAs, TokenAssert, TokenDel, TokenExcept, TokenFinally, TokenFrom,
	TokenGlobal, TokenImport, TokenIs, TokenLambda, TokenNonlocal, TokenRaise,
	TokenTry, TokenWith, TokenWhile, TokenYield,
)

// ForbiddenKeywordMessage returns the diagnostic for a reserved keyword and
// false for any other kind.
func ForbiddenKeywordMessage(k TokenKind) (string, bool) {
	if !ForbiddenKeywords.Contains(k) {
		return "", false
	}
	switch k {
	case TokenAssert:
		return "'assert' not supported, use 'fail' instead", true
	case TokenDel:
		return "'del' not supported, use '.pop()' to delete an item from a dictionary or a list", true
	case TokenImport:
		return "'import' not supported, use 'load' instead", true
	case TokenIs:
		return "'is' not supported, use '==' instead", true
	case TokenLambda:
		return "'lambda' not supported, declare a function instead", true
	case TokenRaise:
		return "'raise' not supported, use 'fail' instead", true
	case TokenTry:
		return "'try' not supported, all exceptions are fatal", true
	case TokenWhile:
		return "'while' not supported, use 'for' instead", true
	}
	return "keyword '" + k.String() + "' not supported", true
}

// TokenSet is an immutable set of token kinds.
type TokenSet [2]uint64

func NewTokenSet(kinds ...TokenKind) TokenSet {
	var s TokenSet
	for _, k := range kinds {
		s[k/64] |= 1 << (uint(k) % 64)
	}
	return s
}

func (s TokenSet) Contains(k TokenKind) bool {
	if k < 0 || k >= tokenKindCount {
		return false
	}
	return s[k/64]&(1<<(uint(k)%64)) != 0
}

func (s TokenSet) Union(other TokenSet) TokenSet {
	return TokenSet{s[0] | other[0], s[1] | other[1]}
}

func (s TokenSet) Intersects(other TokenSet) bool {
	return s[0]&other[0] != 0 || s[1]&other[1] != 0
}

func (s TokenSet) Kinds() []TokenKind {
	var kinds []TokenKind
	for k := TokenKind(0); k < tokenKindCount; k++ {
		if s.Contains(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
