package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/bzl/build/parser"
)

type ASTJSONEncoder struct {
	w io.Writer
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(file *parser.File) error {
	text, err := e.MarshalText(file)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *ASTJSONEncoder) MarshalText(file *parser.File) ([]byte, error) {
	return json.MarshalIndent(fileToJSON(file), "", "  ")
}

type astJSONFile struct {
	Path   string          `json:"path,omitempty"`
	Errors []*astJSONError `json:"errors"`
	Root   *parser.Node    `json:"root"`
}

type astJSONError struct {
	Message string       `json:"message"`
	Span    *astJSONSpan `json:"span,omitempty"`
}

type astJSONSpan struct {
	Start astJSONPosition `json:"start"`
	End   astJSONPosition `json:"end"`
}

type astJSONPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func fileToJSON(file *parser.File) *astJSONFile {
	return &astJSONFile{
		Path:   file.Path,
		Errors: errorsToJSON(file.Errors),
		Root:   file.Root,
	}
}

func errorsToJSON(errs []*parser.Error) []*astJSONError {
	result := make([]*astJSONError, 0, len(errs))
	for _, e := range errs {
		je := &astJSONError{Message: e.Message}
		if e.Span.Start.Line != 0 {
			je.Span = &astJSONSpan{
				Start: astJSONPosition{Line: e.Span.Start.Line, Column: e.Span.Start.Column},
				End:   astJSONPosition{Line: e.Span.End.Line, Column: e.Span.End.Column},
			}
		}
		result = append(result, je)
	}
	return result
}

type reportJSONFile struct {
	Path   string          `json:"path"`
	Errors []*astJSONError `json:"errors"`
}

// WriteJSONReport writes the errors of files as a JSON array, one entry
// per file, without the trees.
func WriteJSONReport(w io.Writer, files []*parser.File) error {
	report := make([]reportJSONFile, 0, len(files))
	for _, f := range files {
		report = append(report, reportJSONFile{Path: f.Path, Errors: errorsToJSON(f.Errors)})
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
