package grammar

import (
	"fmt"
	"strings"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/bzl/build/parser"
)

// tokenProductions names the production each checked token kind must match.
var tokenProductions = map[parser.TokenKind]string{
	parser.TokenIdent:  "IDENT",
	parser.TokenInt:    "INT",
	parser.TokenString: "STRING",
}

type memoKey struct {
	name   string
	offset int
}

// Lexical matches text against the token productions of a grammar.
// Repetitions are greedy and sequences do not backtrack, which is enough for
// the token productions of the BUILD grammar.
type Lexical struct {
	grammar  ebnf.Grammar
	input    string
	memo     map[memoKey]int // match length, -1 for no match
	visiting map[memoKey]bool
}

func NewLexical(g ebnf.Grammar) *Lexical {
	return &Lexical{grammar: g}
}

// Match returns the length of the longest prefix of text generated by the
// production name.
func (lx *Lexical) Match(name, text string) int {
	lx.input = text
	lx.memo = make(map[memoKey]int)
	lx.visiting = make(map[memoKey]bool)
	return lx.matchName(name, 0)
}

// Accepts reports whether the production name generates exactly text.
func (lx *Lexical) Accepts(name, text string) bool {
	return text != "" && lx.Match(name, text) == len(text)
}

// CheckTokens reports identifier, integer and string tokens whose text the
// grammar's token productions do not generate. Triple-quoted strings are
// outside the STRING production and are not checked.
func (lx *Lexical) CheckTokens(tokens []parser.Token) []*parser.Error {
	var errs []*parser.Error
	for _, tok := range tokens {
		name, ok := tokenProductions[tok.Kind]
		if !ok || isTripleQuoted(tok) {
			continue
		}
		if _, defined := lx.grammar[name]; !defined {
			continue
		}
		if !lx.Accepts(name, tok.Literal) {
			errs = append(errs, &parser.Error{
				Message: fmt.Sprintf("%s %q does not match production %s", tok.Kind, tok.Literal, name),
				Span:    tok.Span,
			})
		}
	}
	return errs
}

func isTripleQuoted(tok parser.Token) bool {
	text := strings.TrimLeft(tok.Literal, "rRbB")
	return tok.Kind == parser.TokenString && (strings.HasPrefix(text, `"""`) || strings.HasPrefix(text, `'''`))
}

func (lx *Lexical) match(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case *ebnf.Token:
		if strings.HasPrefix(lx.input[offset:], e.String) {
			return len(e.String)
		}
		return 0

	case *ebnf.Range:
		if offset >= len(lx.input) || len(e.Begin.String) != 1 || len(e.End.String) != 1 {
			return 0
		}
		ch := lx.input[offset]
		if ch >= e.Begin.String[0] && ch <= e.End.String[0] {
			return 1
		}
		return 0

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n := lx.match(item, offset+total)
			if n == 0 && !nullable(item) {
				return 0
			}
			total += n
		}
		return total

	case ebnf.Alternative:
		best := 0
		for _, alt := range e {
			best = max(best, lx.match(alt, offset))
		}
		return best

	case *ebnf.Repetition:
		total := 0
		for {
			n := lx.match(e.Body, offset+total)
			if n == 0 {
				return total
			}
			total += n
		}

	case *ebnf.Option:
		return lx.match(e.Body, offset)

	case *ebnf.Group:
		return lx.match(e.Body, offset)

	case *ebnf.Name:
		return lx.matchName(e.String, offset)
	}
	return 0
}

// nullable reports whether expr may match the empty string without
// consuming input, so a zero-length match does not fail a sequence.
func nullable(expr ebnf.Expression) bool {
	switch expr.(type) {
	case *ebnf.Option, *ebnf.Repetition:
		return true
	}
	return false
}

func (lx *Lexical) matchName(name string, offset int) int {
	key := memoKey{name: name, offset: offset}
	if result, ok := lx.memo[key]; ok {
		return max(result, 0)
	}
	if lx.visiting[key] {
		return 0
	}

	prod, ok := lx.grammar[name]
	if !ok || prod.Expr == nil {
		lx.memo[key] = -1
		return 0
	}

	lx.visiting[key] = true
	result := lx.match(prod.Expr, offset)
	delete(lx.visiting, key)

	if result == 0 {
		lx.memo[key] = -1
	} else {
		lx.memo[key] = result
	}
	return result
}
