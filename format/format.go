// Package format renders parse results: syntax trees as text or JSON,
// token listings, and compiler-style diagnostics.
package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/bzl/build/parser"
)

// Encoder writes a parsed file to an output.
type Encoder interface {
	Encode(file *parser.File) error
}

// New returns the tree encoder for name, which is "tree" or "json".
func New(name string, w io.Writer, positions bool) (Encoder, error) {
	switch name {
	case "tree", "":
		return NewTreeEncoder(w, positions), nil
	case "json":
		return NewASTJSONEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q", name)
}

type TreeEncoder struct {
	w         io.Writer
	positions bool
}

func NewTreeEncoder(w io.Writer, positions bool) *TreeEncoder {
	return &TreeEncoder{w: w, positions: positions}
}

func (e *TreeEncoder) Encode(file *parser.File) error {
	text := file.Root.String()
	if e.positions {
		text = file.Root.StringWithPositions()
	}
	_, err := io.WriteString(e.w, text)
	return err
}

// TokensEncoder lists tokens one per line with their spans.
type TokensEncoder struct {
	w          io.Writer
	whitespace bool
}

// NewTokensEncoder returns an encoder that skips whitespace tokens unless
// whitespace is set.
func NewTokensEncoder(w io.Writer, whitespace bool) *TokensEncoder {
	return &TokensEncoder{w: w, whitespace: whitespace}
}

func (e *TokensEncoder) Encode(tokens []parser.Token) error {
	for _, tok := range tokens {
		if tok.Kind == parser.TokenWhitespace && !e.whitespace {
			continue
		}
		start, end := tok.Span.Start, tok.Span.End
		line := fmt.Sprintf("%d:%d-%d:%d\t%s", start.Line, start.Column, end.Line, end.Column, tok.Kind)
		if tok.Literal != "" && tok.Kind != parser.TokenNewline && tok.Literal != tok.Kind.String() {
			line += fmt.Sprintf("\t%q", tok.Literal)
		}
		if _, err := fmt.Fprintln(e.w, line); err != nil {
			return err
		}
	}
	return nil
}
