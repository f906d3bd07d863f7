package lsp

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/bzl/build/parser"
)

func TestSemanticTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		expected []uint32
	}{
		{
			name: "call with keyword argument and comment",
			src:  "x = f(a, k = 1)  # c\n",
			expected: []uint32{
				0, 0, 1, semVariable, 0,
				0, 2, 1, semOperator, 0,
				0, 2, 1, semFunction, 0,
				0, 2, 1, semVariable, 0,
				0, 3, 1, semParameter, 0,
				0, 2, 1, semOperator, 0,
				0, 2, 1, semNumber, 0,
				0, 4, 3, semComment, 0,
			},
		},
		{
			name: "function definition",
			src:  "def f(a):\n    return a\n",
			expected: []uint32{
				0, 0, 3, semKeyword, 0,
				0, 4, 1, semFunction, 0,
				0, 2, 1, semParameter, 0,
				1, 4, 6, semKeyword, 0,
				0, 7, 1, semVariable, 0,
			},
		},
		{
			name: "utf-16 columns",
			src:  "x = '😀' + y\n",
			expected: []uint32{
				0, 0, 1, semVariable, 0,
				0, 2, 1, semOperator, 0,
				0, 2, 4, semString, 0,
				0, 5, 1, semOperator, 0,
				0, 2, 1, semVariable, 0,
			},
		},
		{
			name: "multi-line string",
			src:  "x = \"\"\"a\nb\"\"\"\n",
			expected: []uint32{
				0, 0, 1, semVariable, 0,
				0, 2, 1, semOperator, 0,
				0, 2, 4, semString, 0,
				1, 0, 4, semString, 0,
			},
		},
		{
			name:     "empty",
			src:      "",
			expected: []uint32{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			file := parser.Parse([]byte(tt.src), parser.WithComments())
			assert.Equal(t, tt.expected, SemanticTokens([]byte(tt.src), file))
		})
	}
}

func TestSemanticTokensLoad(t *testing.T) {
	t.Parallel()
	src := "load('//a:b.bzl', c = 'd')\n"
	file := parser.Parse([]byte(src), parser.WithComments())
	data := SemanticTokens([]byte(src), file)
	require.Len(t, data, 5*5)
	assert.Equal(t, uint32(semFunction), data[3])
	assert.Equal(t, uint32(semString), data[8])
	assert.Equal(t, uint32(semVariable), data[13])
	assert.Equal(t, uint32(semOperator), data[18])
	assert.Equal(t, uint32(semString), data[23])
}

func TestDiagnostics(t *testing.T) {
	t.Parallel()
	src := []byte("x = '😀' $\n")
	file := parser.Parse(src)
	require.NotEmpty(t, file.Errors)

	diagnostics := Diagnostics(src, file.Errors)
	require.Len(t, diagnostics, len(file.Errors))
	d := diagnostics[0]
	assert.Equal(t, "invalid character '$'", d.Message)
	assert.Equal(t, protocol.Position{Line: 0, Character: 9}, d.Range.Start)
	assert.Equal(t, protocol.Position{Line: 0, Character: 10}, d.Range.End)
	require.NotNil(t, d.Severity)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Equal(t, "bzl", *d.Source)
}

func TestURIs(t *testing.T) {
	t.Parallel()
	path, err := uriToPath("file:///tmp/my%20ws/BUILD")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/my ws/BUILD", path)
	assert.Equal(t, "file:///tmp/my%20ws/BUILD", pathToURI(path))

	path, err = uriToPath("untitled:1")
	require.NoError(t, err)
	assert.Equal(t, "untitled:1", path)
}

type notifications struct {
	mu     sync.Mutex
	params []protocol.PublishDiagnosticsParams
}

func (n *notifications) notify(method string, params any) {
	if method != protocol.ServerTextDocumentPublishDiagnostics {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.params = append(n.params, params.(protocol.PublishDiagnosticsParams))
}

func (n *notifications) last(t *testing.T) protocol.PublishDiagnosticsParams {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.params)
	return n.params[len(n.params)-1]
}

func (n *notifications) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.params)
}

func newTestServer(t *testing.T) (*Server, *glsp.Context, *notifications, string) {
	t.Helper()
	root := t.TempDir()
	ls := NewServer("test", filepath.Join(root, "missing.yaml"))
	notes := &notifications{}
	ctx := &glsp.Context{Notify: notes.notify}

	rootURI := pathToURI(root)
	result, err := ls.initialize(ctx, &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)
	res, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	provider, ok := res.Capabilities.SemanticTokensProvider.(*protocol.SemanticTokensOptions)
	require.True(t, ok)
	assert.Equal(t, Legend, provider.Legend.TokenTypes)
	return ls, ctx, notes, root
}

func TestServerDocumentLifecycle(t *testing.T) {
	ls, ctx, notes, root := newTestServer(t)
	path := filepath.Join(root, "BUILD")
	uri := pathToURI(path)

	require.NoError(t, ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "x = \n"},
	}))
	published := notes.last(t)
	assert.Equal(t, uri, published.URI)
	assert.NotEmpty(t, published.Diagnostics)

	require.NoError(t, ls.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "x = 1\n"}},
	}))
	assert.Empty(t, notes.last(t).Diagnostics)

	tokens, err := ls.textDocumentSemanticTokensFull(ctx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 0, 1, semVariable, 0, 0, 2, 1, semOperator, 0, 0, 2, 1, semNumber, 0}, tokens.Data)

	text := "y = $\n"
	require.NoError(t, ls.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Text:         &text,
	}))
	assert.NotEmpty(t, notes.last(t).Diagnostics)

	require.NoError(t, ls.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	assert.Empty(t, notes.last(t).Diagnostics)
	assert.Nil(t, ls.workspace.GetFile(path))
}

func TestServerCloseRereadsDisk(t *testing.T) {
	ls, ctx, notes, root := newTestServer(t)
	path := filepath.Join(root, "BUILD")
	require.NoError(t, os.WriteFile(path, []byte("x = \n"), 0o644))
	uri := pathToURI(path)

	require.NoError(t, ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "x = 1\n"},
	}))
	assert.Empty(t, notes.last(t).Diagnostics)

	require.NoError(t, ls.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	assert.NotEmpty(t, notes.last(t).Diagnostics)
}

func TestServerInitializedPublishesWorkspaceErrors(t *testing.T) {
	ls, ctx, notes, root := newTestServer(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "BUILD"), []byte("x = $\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "BUILD"), []byte("x = 1\n"), 0o644))

	require.NoError(t, ls.initialized(ctx, &protocol.InitializedParams{}))
	defer ls.shutdown(ctx)

	assert.Equal(t, 1, notes.count())
	published := notes.last(t)
	assert.Equal(t, pathToURI(filepath.Join(root, "pkg", "BUILD")), published.URI)
	assert.NotEmpty(t, published.Diagnostics)
	assert.Len(t, ls.workspace.Files(), 2)
}

func TestRootDirIsAbsolute(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	root := t.TempDir()
	rootURI := pathToURI(root)
	dot := "."

	tests := []struct {
		name   string
		params protocol.InitializeParams
		want   string
	}{
		{"no root", protocol.InitializeParams{}, cwd},
		{"relative root path", protocol.InitializeParams{RootPath: &dot}, cwd},
		{"root uri", protocol.InitializeParams{RootURI: &rootURI}, root},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rootDirOf(&tt.params))
		})
	}
}

func TestInitializeWithoutRootUsesAbsolutePaths(t *testing.T) {
	ls := NewServer("test", filepath.Join(t.TempDir(), "missing.yaml"))
	ctx := &glsp.Context{Notify: (&notifications{}).notify}
	_, err := ls.initialize(ctx, &protocol.InitializeParams{})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(ls.workspace.RootDir()), ls.workspace.RootDir())
}
