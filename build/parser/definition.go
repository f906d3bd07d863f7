package parser

import (
	"io"
	"slices"
)

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

// WithComments keeps comment tokens in File.Comments.
func WithComments() Option {
	return func(p *Parser) {
		p.includeComments = true
	}
}

// File is the result of parsing one BUILD file. Root is never nil.
type File struct {
	Path     string
	Root     *Node
	Errors   []*Error
	Comments []Token
}

// Definition bundles what a host needs to support the language: a lexer,
// the token classes it highlights specially, and the parse entry points.
type Definition struct{}

func (Definition) WhitespaceTokens() TokenSet {
	return NewTokenSet(TokenWhitespace, TokenIllegal)
}

func (Definition) CommentTokens() TokenSet {
	return NewTokenSet(TokenComment)
}

func (Definition) StringLiteralTokens() TokenSet {
	return NewTokenSet(TokenString)
}

func (Definition) FileNodeKind() NodeKind {
	return KindFile
}

func (Definition) NewLexer(src []byte, file string) *Lexer {
	return NewLexer(src, file)
}

func (Definition) Parse(src []byte, opts ...Option) *File {
	return Parse(src, opts...)
}

func (Definition) ParseReader(r io.Reader, opts ...Option) (*File, error) {
	return ParseReader(r, opts...)
}

func (Definition) ParseTokens(cursor TokenCursor, opts ...Option) *File {
	return ParseTokens(cursor, opts...)
}

// Parse tokenizes and parses src. Lexical errors are merged with syntax
// errors in source order.
func Parse(src []byte, opts ...Option) *File {
	p := newParser(opts...)
	lexer := NewLexer(src, p.file)
	tokens := lexer.Tokenize()
	f := p.parse(NewTokenCursor(tokens))
	f.Errors = mergeErrors(lexer.Errors(), f.Errors)
	if p.includeComments {
		for _, tok := range tokens {
			if tok.Kind == TokenComment {
				f.Comments = append(f.Comments, tok)
			}
		}
	}
	return f
}

func ParseReader(r io.Reader, opts ...Option) (*File, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(src, opts...), nil
}

// ParseTokens parses a token stream produced elsewhere. Comment tokens in
// the stream are kept in the tree where the grammar allows them.
func ParseTokens(cursor TokenCursor, opts ...Option) *File {
	return newParser(opts...).parse(cursor)
}

func (p *Parser) parse(cursor TokenCursor) *File {
	p.cursor = cursor
	p.builder = NewBuilder()
	p.comments = nil

	root := p.builder.Mark()
	p.parseFileInput()
	root.Complete(KindFile)

	node, errs := p.builder.Tree(p.cursor.Span().Start)
	return &File{
		Path:     p.file,
		Root:     node,
		Errors:   errs,
		Comments: p.comments,
	}
}

func mergeErrors(lexical, syntax []*Error) []*Error {
	if len(lexical) == 0 {
		return syntax
	}
	errs := make([]*Error, 0, len(lexical)+len(syntax))
	errs = append(errs, lexical...)
	errs = append(errs, syntax...)
	slices.SortStableFunc(errs, func(a, b *Error) int {
		return a.Span.Start.Offset - b.Span.Start.Offset
	})
	return errs
}
