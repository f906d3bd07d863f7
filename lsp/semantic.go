package lsp

import (
	"slices"
	"strings"

	"github.com/dhamidi/bzl/build/parser"
)

// Legend lists the semantic token types in the order of their indexes.
var Legend = []string{"keyword", "string", "number", "comment", "function", "parameter", "variable", "operator"}

const (
	semKeyword = iota
	semString
	semNumber
	semComment
	semFunction
	semParameter
	semVariable
	semOperator
)

type semEntry struct {
	offset int
	line   int // 0-based
	col    int // UTF-16
	length int // UTF-16
	typ    int
}

// SemanticTokens returns the LSP-encoded semantic tokens of a parsed file.
// Comments come from file.Comments.
func SemanticTokens(content []byte, file *parser.File) []uint32 {
	lines := strings.Split(string(content), "\n")
	var entries []semEntry

	emit := func(tok parser.Token, typ int) {
		entries = append(entries, tokenEntries(lines, tok, typ)...)
	}
	classify(file.Root, nil, emit)
	for _, c := range file.Comments {
		emit(c, semComment)
	}

	slices.SortStableFunc(entries, func(a, b semEntry) int {
		return a.offset - b.offset
	})
	return encode(entries)
}

// classify emits the tokens below n. Identifiers are typed by the node
// they appear in.
func classify(n, parent *parser.Node, emit func(parser.Token, int)) {
	if n.Token != nil {
		if typ, ok := tokenType(*n.Token, parent); ok {
			emit(*n.Token, typ)
		}
		return
	}
	for i, child := range n.Children {
		if child.Kind == parser.KindReferenceExpression && isCallee(n, i) {
			for _, tok := range child.Tokens() {
				emit(tok, semFunction)
			}
			continue
		}
		classify(child, n, emit)
	}
}

// isCallee reports whether the i-th child of a call is the reference
// right before its argument list.
func isCallee(call *parser.Node, i int) bool {
	if call.Kind != parser.KindFuncallExpression && call.Kind != parser.KindGlobExpression {
		return false
	}
	for j := i + 1; j < len(call.Children); j++ {
		switch call.Children[j].Kind {
		case parser.KindToken, parser.KindError:
			continue
		case parser.KindArgumentList:
			return true
		}
		return false
	}
	return false
}

func tokenType(tok parser.Token, parent *parser.Node) (int, bool) {
	switch {
	case tok.Kind.IsKeyword():
		return semKeyword, true
	case tok.Kind == parser.TokenString:
		return semString, true
	case tok.Kind == parser.TokenInt:
		return semNumber, true
	case tok.Kind == parser.TokenIdent:
		if parent == nil {
			return semVariable, true
		}
		switch parent.Kind {
		case parser.KindFunctionStatement, parser.KindLoadStatement:
			return semFunction, true
		case parser.KindMandatoryParameter, parser.KindOptionalParameter,
			parser.KindStarParameter, parser.KindStarStarParameter, parser.KindKeywordArgument:
			return semParameter, true
		}
		return semVariable, true
	case tok.Kind >= parser.TokenAssign:
		return semOperator, true
	}
	return 0, false
}

// tokenEntries splits tok into one entry per source line.
func tokenEntries(lines []string, tok parser.Token, typ int) []semEntry {
	start, end := tok.Span.Start, tok.Span.End
	if start.Line < 1 || start.Line > len(lines) || end.Offset <= start.Offset {
		return nil
	}
	var entries []semEntry
	offset := start.Offset
	for line := start.Line; line <= end.Line && line <= len(lines); line++ {
		text := lines[line-1]
		from := 0
		if line == start.Line {
			from = min(start.Column-1, len(text))
		}
		to := len(text)
		if line == end.Line {
			to = min(end.Column-1, len(text))
		}
		if to > from {
			entries = append(entries, semEntry{
				offset: offset,
				line:   line - 1,
				col:    u16Len(text[:from]),
				length: u16Len(text[from:to]),
				typ:    typ,
			})
		}
		offset += len(text) - from + 1
	}
	return entries
}

func encode(entries []semEntry) []uint32 {
	data := make([]uint32, 0, len(entries)*5)
	prevLine, prevCol := 0, 0
	for _, e := range entries {
		deltaLine := e.line - prevLine
		deltaCol := e.col
		if deltaLine == 0 {
			deltaCol = e.col - prevCol
		}
		data = append(data, uint32(deltaLine), uint32(deltaCol), uint32(e.length), uint32(e.typ), 0)
		prevLine, prevCol = e.line, e.col
	}
	return data
}

// u16Len returns the length of s in UTF-16 code units.
func u16Len(s string) int {
	n := 0
	for _, r := range s {
		if r < 0x10000 {
			n++
		} else {
			n += 2
		}
	}
	return n
}
