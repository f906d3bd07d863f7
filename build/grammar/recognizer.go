package grammar

import (
	"fmt"
	"sync"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/bzl/build/parser"
)

// terminalKinds maps token productions to the lexer kinds they stand for.
var terminalKinds = map[string]parser.TokenKind{
	"IDENT":   parser.TokenIdent,
	"INT":     parser.TokenInt,
	"STRING":  parser.TokenString,
	"NEWLINE": parser.TokenNewline,
	"INDENT":  parser.TokenIndent,
	"DEDENT":  parser.TokenDedent,
}

type symbol struct {
	name     string // nonterminal name, empty for terminals
	literal  string
	kind     parser.TokenKind
	terminal bool
	byKind   bool
}

func (s symbol) matches(tok parser.Token) bool {
	if s.byKind {
		return tok.Kind == s.kind
	}
	return tok.Kind != parser.TokenString && tok.Literal == s.literal
}

type rule struct {
	lhs string
	rhs []symbol
}

// item is an Earley item: a rule, a dot position in its right-hand side,
// and the chart position where the rule started.
type item struct {
	rule   int
	dot    int
	origin int
}

// Recognizer checks token streams against a grammar with Earley's
// algorithm. Options, groups and repetitions are rewritten into plain
// rules over synthetic nonterminals when the recognizer is built.
type Recognizer struct {
	grammar   ebnf.Grammar
	start     string
	rules     []rule
	byLHS     map[string][]int
	nullable  map[string]bool
	pending   []string
	expanded  map[string]bool
	synthetic int
	err       error
}

// NewRecognizer compiles the productions reachable from start.
func NewRecognizer(g ebnf.Grammar, start string) (*Recognizer, error) {
	if g[start] == nil {
		return nil, fmt.Errorf("production %q not found in grammar", start)
	}
	r := &Recognizer{
		grammar:  g,
		start:    start,
		byLHS:    make(map[string][]int),
		nullable: make(map[string]bool),
		expanded: make(map[string]bool),
	}
	r.require(start)
	for len(r.pending) > 0 && r.err == nil {
		name := r.pending[0]
		r.pending = r.pending[1:]
		r.addAlternatives(name, r.grammar[name].Expr)
	}
	if r.err != nil {
		return nil, r.err
	}
	r.computeNullable()
	return r, nil
}

func (r *Recognizer) require(name string) {
	if r.expanded[name] {
		return
	}
	if r.grammar[name] == nil {
		r.err = fmt.Errorf("missing production %s", name)
		return
	}
	r.expanded[name] = true
	r.pending = append(r.pending, name)
}

func (r *Recognizer) addRule(lhs string, rhs []symbol) {
	r.byLHS[lhs] = append(r.byLHS[lhs], len(r.rules))
	r.rules = append(r.rules, rule{lhs: lhs, rhs: rhs})
}

func (r *Recognizer) addAlternatives(lhs string, expr ebnf.Expression) {
	if alt, ok := expr.(ebnf.Alternative); ok {
		for _, e := range alt {
			r.addRule(lhs, r.symbols(e))
		}
		return
	}
	r.addRule(lhs, r.symbols(expr))
}

func (r *Recognizer) symbols(expr ebnf.Expression) []symbol {
	switch e := expr.(type) {
	case nil:
		return nil
	case ebnf.Sequence:
		var syms []symbol
		for _, x := range e {
			syms = append(syms, r.symbols(x)...)
		}
		return syms
	case *ebnf.Name:
		if kind, ok := terminalKinds[e.String]; ok {
			return []symbol{{terminal: true, byKind: true, kind: kind}}
		}
		r.require(e.String)
		return []symbol{{name: e.String}}
	case *ebnf.Token:
		return []symbol{{terminal: true, literal: e.String}}
	case *ebnf.Group:
		return []symbol{r.synthesize(e.Body, false, false)}
	case *ebnf.Option:
		return []symbol{r.synthesize(e.Body, true, false)}
	case *ebnf.Repetition:
		return []symbol{r.synthesize(e.Body, true, true)}
	case ebnf.Alternative:
		return []symbol{r.synthesize(e, false, false)}
	}
	if r.err == nil {
		r.err = fmt.Errorf("%s: unsupported expression %T outside a token production", expr.Pos(), expr)
	}
	return nil
}

// synthesize introduces a nonterminal for a nested expression. Repetitions
// become left-recursive rules, which Earley parsing handles directly.
func (r *Recognizer) synthesize(body ebnf.Expression, optional, repeat bool) symbol {
	r.synthetic++
	name := fmt.Sprintf("#%d", r.synthetic)
	self := symbol{name: name}
	if optional {
		r.addRule(name, nil)
	}
	if !repeat {
		r.addAlternatives(name, body)
		return self
	}
	alts, ok := body.(ebnf.Alternative)
	if !ok {
		alts = ebnf.Alternative{body}
	}
	for _, alt := range alts {
		rhs := append([]symbol{self}, r.symbols(alt)...)
		r.addRule(name, rhs)
	}
	return self
}

func (r *Recognizer) computeNullable() {
	for changed := true; changed; {
		changed = false
		for _, rl := range r.rules {
			if r.nullable[rl.lhs] {
				continue
			}
			empty := true
			for _, s := range rl.rhs {
				if s.terminal || !r.nullable[s.name] {
					empty = false
					break
				}
			}
			if empty {
				r.nullable[rl.lhs] = true
				changed = true
			}
		}
	}
}

// Recognize reports whether tokens form a sentence of the grammar.
// Whitespace, comments and illegal tokens are skipped. The returned error
// is a *parser.Error at the first token that cannot be accepted.
func (r *Recognizer) Recognize(tokens []parser.Token) error {
	var input []parser.Token
	for _, tok := range tokens {
		switch tok.Kind {
		case parser.TokenWhitespace, parser.TokenComment, parser.TokenIllegal, parser.TokenEOF:
			continue
		}
		input = append(input, tok)
	}

	n := len(input)
	chart := make([][]item, n+1)
	seen := make([]map[item]bool, n+1)
	for i := range seen {
		seen[i] = make(map[item]bool)
	}
	add := func(i int, it item) {
		if !seen[i][it] {
			seen[i][it] = true
			chart[i] = append(chart[i], it)
		}
	}

	for _, ri := range r.byLHS[r.start] {
		add(0, item{rule: ri, origin: 0})
	}

	for i := 0; i <= n; i++ {
		if len(chart[i]) == 0 {
			return unexpected(input, i-1)
		}
		for j := 0; j < len(chart[i]); j++ {
			it := chart[i][j]
			rl := r.rules[it.rule]

			if it.dot == len(rl.rhs) {
				for k := 0; k < len(chart[it.origin]); k++ {
					waiting := chart[it.origin][k]
					wr := r.rules[waiting.rule]
					if waiting.dot < len(wr.rhs) && !wr.rhs[waiting.dot].terminal && wr.rhs[waiting.dot].name == rl.lhs {
						add(i, item{rule: waiting.rule, dot: waiting.dot + 1, origin: waiting.origin})
					}
				}
				continue
			}

			next := rl.rhs[it.dot]
			if next.terminal {
				if i < n && next.matches(input[i]) {
					add(i+1, item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
				}
				continue
			}

			for _, ri := range r.byLHS[next.name] {
				add(i, item{rule: ri, origin: i})
			}
			if r.nullable[next.name] {
				add(i, item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
			}
		}
	}

	for _, it := range chart[n] {
		rl := r.rules[it.rule]
		if rl.lhs == r.start && it.origin == 0 && it.dot == len(rl.rhs) {
			return nil
		}
	}
	return unexpected(input, n)
}

func unexpected(input []parser.Token, pos int) error {
	if pos >= len(input) {
		var at parser.Span
		if len(input) > 0 {
			end := input[len(input)-1].Span.End
			at = parser.Span{Start: end, End: end}
		}
		return &parser.Error{Message: "unexpected end of input", Span: at}
	}
	tok := input[pos]
	what := tok.Kind.String()
	switch tok.Kind {
	case parser.TokenIdent, parser.TokenInt, parser.TokenString:
		what = fmt.Sprintf("%s %s", what, tok.Literal)
	}
	return &parser.Error{Message: "unexpected " + what, Span: tok.Span}
}

var buildRecognizer = sync.OnceValues(func() (*Recognizer, error) {
	g, err := Parse()
	if err != nil {
		return nil, err
	}
	return NewRecognizer(g, Start)
})

// Check tokenizes src and recognizes it with the embedded BUILD grammar.
func Check(src []byte, filename string) error {
	r, err := buildRecognizer()
	if err != nil {
		return err
	}
	lexer := parser.NewLexer(src, filename)
	tokens := lexer.Tokenize()
	if errs := lexer.Errors(); len(errs) > 0 {
		return errs[0]
	}
	return r.Recognize(tokens)
}
