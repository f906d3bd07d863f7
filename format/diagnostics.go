package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/dhamidi/bzl/build/parser"
)

// ColorEnabled resolves a color mode of "always", "never" or "auto". Auto
// follows the terminal detection of the color package, which also honors
// NO_COLOR.
func ColorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return !color.NoColor
}

// DiagnosticPrinter renders syntax errors with the offending source line
// and a caret underline.
type DiagnosticPrinter struct {
	w io.Writer

	errorStyle   *color.Color
	messageStyle *color.Color
	fileStyle    *color.Color
	lineStyle    *color.Color
	caretStyle   *color.Color
}

func NewDiagnosticPrinter(w io.Writer, colored bool) *DiagnosticPrinter {
	p := &DiagnosticPrinter{
		w:            w,
		errorStyle:   color.New(color.FgRed, color.Bold),
		messageStyle: color.New(color.Bold),
		fileStyle:    color.New(color.FgCyan, color.Bold),
		lineStyle:    color.New(color.FgHiBlue, color.Bold),
		caretStyle:   color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.errorStyle, p.messageStyle, p.fileStyle, p.lineStyle, p.caretStyle} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Print renders errs, which were reported for src. path names the file in
// the location line; when empty the position's own file is used.
func (p *DiagnosticPrinter) Print(path string, src []byte, errs []*parser.Error) error {
	lines := strings.Split(string(src), "\n")
	var b strings.Builder
	for _, e := range errs {
		p.render(&b, path, lines, e)
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *DiagnosticPrinter) render(b *strings.Builder, path string, lines []string, e *parser.Error) {
	start, end := e.Span.Start, e.Span.End
	if path == "" {
		path = start.File
	}
	if path == "" {
		path = "<input>"
	}

	width := len(strconv.Itoa(start.Line))
	padding := strings.Repeat(" ", width+1)

	b.WriteString(p.errorStyle.Sprint("error: "))
	b.WriteString(p.messageStyle.Sprint(e.Message))
	b.WriteString("\n")
	b.WriteString(p.lineStyle.Sprintf("%s--> ", strings.Repeat(" ", width)))
	b.WriteString(p.fileStyle.Sprintf("%s:%d:%d", path, start.Line, start.Column))
	b.WriteString("\n")

	if start.Line < 1 || start.Line > len(lines) {
		b.WriteString("\n")
		return
	}
	line := strings.TrimSuffix(lines[start.Line-1], "\r")

	b.WriteString(p.lineStyle.Sprintf("%s|", padding))
	b.WriteString("\n")
	b.WriteString(p.lineStyle.Sprintf("%*d | ", width, start.Line))
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(p.lineStyle.Sprintf("%s| ", padding))
	b.WriteString(underlinePrefix(line, start.Column))
	b.WriteString(p.caretStyle.Sprint(strings.Repeat("^", caretWidth(line, start, end))))
	b.WriteString("\n\n")
}

// underlinePrefix blanks out the text before column, keeping tabs so the
// caret lines up with the source line.
func underlinePrefix(line string, column int) string {
	var b strings.Builder
	for i := 0; i < column-1 && i < len(line); i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func caretWidth(line string, start, end parser.Position) int {
	last := len(line) + 1
	if end.Line == start.Line && end.Column < last {
		last = end.Column
	}
	if n := last - start.Column; n > 0 {
		return n
	}
	return 1
}

// Summary returns the closing line of a check run.
func Summary(files, errors int) string {
	noun := "errors"
	if errors == 1 {
		noun = "error"
	}
	return fmt.Sprintf("%d %s in %d files", errors, noun, files)
}
