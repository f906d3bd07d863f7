// Package grammar holds the reference grammar of the BUILD language and a
// recognizer that checks token streams against it.
package grammar

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/ebnf"
)

// Start is the start production of the BUILD grammar.
const Start = "File"

//go:embed build.ebnf
var source []byte

// Source returns the text of the embedded grammar.
func Source() []byte {
	return bytes.Clone(source)
}

// Parse parses the embedded grammar.
func Parse() (ebnf.Grammar, error) {
	return ebnf.Parse("build.ebnf", bytes.NewReader(source))
}

// Verify parses the embedded grammar and checks that every production is
// defined and reachable from start.
func Verify(start string) error {
	g, err := Parse()
	if err != nil {
		return err
	}
	return ebnf.Verify(g, start)
}

// Load parses a grammar from r.
func Load(filename string, r io.Reader) (ebnf.Grammar, error) {
	return ebnf.Parse(filename, r)
}

// LoadFile parses the grammar in filename.
func LoadFile(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	g, err := ebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return g, nil
}
