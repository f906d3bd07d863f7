package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/bzl/build/parser"
)

// Diagnostics converts syntax errors into LSP diagnostics with UTF-16
// character offsets.
func Diagnostics(content []byte, errs []*parser.Error) []protocol.Diagnostic {
	lines := strings.Split(string(content), "\n")
	severity := protocol.DiagnosticSeverityError
	source := lsName

	diagnostics := make([]protocol.Diagnostic, 0, len(errs))
	for _, e := range errs {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: toProtocolPosition(lines, e.Span.Start),
				End:   toProtocolPosition(lines, e.Span.End),
			},
			Severity: &severity,
			Source:   &source,
			Message:  e.Message,
		})
	}
	return diagnostics
}

func toProtocolPosition(lines []string, pos parser.Position) protocol.Position {
	if pos.Line < 1 {
		return protocol.Position{}
	}
	line := pos.Line - 1
	character := 0
	if line < len(lines) {
		text := lines[line]
		character = u16Len(text[:min(max(pos.Column-1, 0), len(text))])
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(character)}
}
