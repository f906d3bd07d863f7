package grammar

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/bzl/build/parser"
)

func TestVerify(t *testing.T) {
	if err := Verify(Start); err != nil {
		t.Fatalf("Verify(%q) = %v", Start, err)
	}
}

func TestVerifyRejectsBrokenGrammar(t *testing.T) {
	g, err := Load("broken.ebnf", strings.NewReader(`File = Statement .`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := ebnf.Verify(g, "File"); err == nil {
		t.Fatal("expected error for undefined production")
	}
}

func TestNewRecognizerRequiresStart(t *testing.T) {
	g, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := NewRecognizer(g, "Missing"); err == nil {
		t.Fatal("expected error for missing start production")
	}
}

func TestRecognizerSmallGrammar(t *testing.T) {
	g, err := Load("list.ebnf", strings.NewReader(`
List  = "[" [ IDENT { "," IDENT } ] "]" NEWLINE .
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r, err := NewRecognizer(g, "List")
	if err != nil {
		t.Fatalf("NewRecognizer: %v", err)
	}

	tests := []struct {
		input string
		ok    bool
	}{
		{"[]\n", true},
		{"[a]\n", true},
		{"[a, b, c]\n", true},
		{"[a,]\n", false},
		{"[a b]\n", false},
		{"[\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := parser.NewLexer([]byte(tt.input), "").Tokenize()
			err := r.Recognize(tokens)
			if (err == nil) != tt.ok {
				t.Errorf("Recognize(%q) = %v, want ok=%v", tt.input, err, tt.ok)
			}
		})
	}
}

// Inputs accepted by the grammar must also parse without errors.
var validSources = []string{
	"",
	"x = 1\n",
	"x = 1; y = 2;\n",
	"x += [1, 2,]\n",
	"a, b = b, a\n",
	"cc_library(name = 'lib', srcs = glob(['*.cc']), deps = [':a', '//b:c'])\n",
	"load('//tools:defs.bzl', 'rule1', alias = 'rule2')\n",
	"load('//tools:defs.bzl', 'rule1',)\n",
	"x = a if b else c\n",
	"x = not a and b or c\n",
	"x = a not in b\n",
	"x = -1 + 2 * 3 // 4 % 5 | 6\n",
	"x = a.b.c(1)[2][1:2][::3]\n",
	"x = [y for y in z if y]\n",
	"x = {k: v for k, v in d.items()}\n",
	"x = {'a': 1, 'b': 2}\n",
	"x = ()\n",
	"x = (1,)\n",
	"f(*args, **kwargs)\n",
	"def f(a, b = 1, *args, **kwargs):\n    return a\n",
	"def f():\n    pass\n",
	"def f(): return\n",
	"if a:\n    b = 1\nelif c:\n    b = 2\nelse:\n    b = 3\n",
	"for x in y:\n    if x:\n        break\n    continue\n",
	"# comment\n\nx = 1  # trailing\n",
	"x = [\n    1,\n    2,\n]\n",
}

var invalidSources = []string{
	"x = 1,\n",
	"x = 'a' 'b'\n",
	"while x:\n    pass\n",
	"x = [y for]\n",
	"x = (\n",
	"def f(:\n    pass\n",
	"if x\n    pass\n",
	"x = 1 +\n",
	"  x = 1\n",
}

func TestRecognizeValid(t *testing.T) {
	for _, src := range validSources {
		t.Run(src, func(t *testing.T) {
			if err := Check([]byte(src), "BUILD"); err != nil {
				t.Errorf("Check: %v", err)
			}
			if f := parser.Parse([]byte(src)); len(f.Errors) > 0 {
				t.Errorf("parser.Parse errors: %v", f.Errors)
			}
		})
	}
}

func TestRecognizeInvalid(t *testing.T) {
	for _, src := range invalidSources {
		t.Run(src, func(t *testing.T) {
			err := Check([]byte(src), "BUILD")
			if err == nil {
				t.Errorf("Check accepted %q", src)
			}
			var perr *parser.Error
			if err != nil && !errors.As(err, &perr) {
				t.Errorf("Check error %T, want *parser.Error", err)
			}
			if f := parser.Parse([]byte(src)); len(f.Errors) == 0 {
				t.Errorf("parser.Parse reported no errors for %q", src)
			}
		})
	}
}

func TestRecognizeErrorPosition(t *testing.T) {
	err := Check([]byte("x = 1\ny = ]\n"), "BUILD")
	var perr *parser.Error
	if !errors.As(err, &perr) {
		t.Fatalf("Check = %v, want *parser.Error", err)
	}
	if perr.Span.Start.Line != 2 || perr.Span.Start.Column != 5 {
		t.Errorf("error at %s, want 2:5", perr.Span.Start)
	}
	if perr.Message != "unexpected ]" {
		t.Errorf("message = %q", perr.Message)
	}
}

func TestLexicalAccepts(t *testing.T) {
	g, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	lx := NewLexical(g)

	tests := []struct {
		production string
		text       string
		want       bool
	}{
		{"IDENT", "cc_library", true},
		{"IDENT", "_x9", true},
		{"IDENT", "9x", false},
		{"INT", "42", true},
		{"INT", "0x1F", true},
		{"INT", "0o17", true},
		{"INT", "0x", false},
		{"STRING", "'a'", true},
		{"STRING", `"it's"`, true},
		{"STRING", `r'\d+'`, true},
		{"STRING", `'a\'b'`, true},
		{"STRING", "'a", false},
		{"STRING", "''", true},
		{"IDENT", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.production+" "+tt.text, func(t *testing.T) {
			if got := lx.Accepts(tt.production, tt.text); got != tt.want {
				t.Errorf("Accepts(%s, %q) = %v, want %v", tt.production, tt.text, got, tt.want)
			}
		})
	}
}

func TestLexicalCheckTokens(t *testing.T) {
	g, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	lx := NewLexical(g)

	tests := []struct {
		input    string
		expected []string
	}{
		{"x = 'a' + 0x1F\nname = \"b\"\n", nil},
		{"doc = \"\"\"any\ntext\"\"\"\n", nil},
		{"x = 0x\n", []string{`1:5: integer "0x" does not match production INT`}},
		{"x = 'é'\n", []string{`1:5: string "'é'" does not match production STRING`}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := parser.NewLexer([]byte(tt.input), "").Tokenize()
			var got []string
			for _, e := range lx.CheckTokens(tokens) {
				got = append(got, e.Error())
			}
			if strings.Join(got, "\n") != strings.Join(tt.expected, "\n") {
				t.Errorf("CheckTokens(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
