// Package parser provides an error-tolerant parser for the BUILD language
// used by Bazel BUILD and .bzl files.
//
// # Overview
//
// The parser turns source bytes into a concrete syntax tree that keeps every
// consumed token. Malformed input never aborts a parse: errors are recorded
// as annotations in the tree and parsing resumes at the next safe point.
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│ TokenCursor │────▶│   Parser    │
//	│  (bytes)    │     │  (tokens)   │     │ (filtered)  │     │  (events)   │
//	└─────────────┘     └─────────────┘     └─────────────┘     └──────┬──────┘
//	                                                                   │
//	                                                                   ▼
//	                                                            ┌─────────────┐
//	                                                            │   Builder   │
//	                                                            │   (*Node)   │
//	                                                            └─────────────┘
//
// # Usage
//
//	f := parser.Parse(src, parser.WithFile("BUILD"))
//	for _, err := range f.Errors {
//	    fmt.Println(err)
//	}
//	fmt.Print(f.Root)
//
// # Layout
//
// The lexer follows the off-side rule. At the start of each logical line it
// compares the indentation with the enclosing levels and emits Indent or
// Dedent tokens. Blank lines, comment lines, and newlines inside brackets do
// not end a logical line.
//
// # Trees
//
// The parser never builds nodes directly. It records markers in a flat
// event list through a Builder:
//
//	m := b.Mark()         // open a span at the current token
//	m.Complete(kind)      // close it as a node
//	m.Discard()           // drop it, children attach to the parent
//	c.Precede()           // open a span that encloses a completed one
//
// Precede is how left-associative chains are built: "a - b - c" completes
// a BinaryOpExpression for "a - b", then precedes it to wrap the result
// with "- c".
//
// # Error Recovery
//
// Recovery never crosses a line boundary. Expressions resynchronize at
// operators, commas, and closing brackets, and statements at the next
// newline. Reserved Python keywords such as while and import are reported
// once, when consumed, with a hint at the supported alternative:
//
//	while x: pass
//	// 1:1: 'while' not supported, use 'for' instead
//
// # Tree Shapes
//
// Some constructs reuse node kinds:
//
//   - unary minus is a PositionalArgument wrapping its operand
//   - break and continue are both FlowStatement
//   - a conditional expression has no node of its own
//   - several for loop variables are wrapped in a ListLiteral
package parser
