// Package lsp serves BUILD file diagnostics and semantic highlighting over
// the Language Server Protocol.
package lsp

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/bzl/config"
	"github.com/dhamidi/bzl/workspace"
)

const lsName = "bzl"

var log = commonlog.GetLogger("bzl.lsp")

type Server struct {
	version    string
	configPath string
	handler    protocol.Handler
	server     *server.Server

	mu        sync.Mutex
	workspace *workspace.Workspace
	watcher   workspace.Watcher
	open      map[string]bool
	notify    glsp.NotifyFunc
}

// NewServer returns a server that reads its settings from configPath, or
// from the workspace root when configPath is empty.
func NewServer(version, configPath string) *Server {
	ls := &Server{
		version:    version,
		configPath: configPath,
		open:       make(map[string]bool),
	}

	ls.handler = protocol.Handler{
		Initialize:                     ls.initialize,
		Initialized:                    ls.initialized,
		Shutdown:                       ls.shutdown,
		SetTrace:                       ls.setTrace,
		TextDocumentDidOpen:            ls.textDocumentDidOpen,
		TextDocumentDidChange:          ls.textDocumentDidChange,
		TextDocumentDidClose:           ls.textDocumentDidClose,
		TextDocumentDidSave:            ls.textDocumentDidSave,
		TextDocumentSemanticTokensFull: ls.textDocumentSemanticTokensFull,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := rootDirOf(params)

	cfg, err := config.Load(config.Path(ls.configPath, filepath.Join(rootDir, config.FileName)))
	if err != nil {
		log.Errorf("%s, using defaults", err)
		cfg = config.Default()
	}

	ls.mu.Lock()
	ls.workspace = workspace.New(rootDir, cfg)
	ls.mu.Unlock()

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     Legend,
			TokenModifiers: []string{},
		},
		Full: true,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

// initialized scans the workspace, publishes the errors found on disk and
// starts watching for changes made outside the editor.
func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.Lock()
	ls.notify = ctx.Notify
	ls.mu.Unlock()
	ws := ls.workspaceOrDefault()

	if err := ws.ScanAll(context.Background()); err != nil {
		log.Errorf("scan workspace: %s", err)
	}
	for _, f := range ws.Files() {
		if len(f.Errors()) > 0 {
			ls.publish(f.Path)
		}
	}

	watcher := workspace.NewWatcher(ws, ls.fileChanged)
	if err := watcher.Start(); err != nil {
		log.Warningf("start file watcher: %s", err)
		watcher.Stop()
		return nil
	}
	ls.mu.Lock()
	ls.watcher = watcher
	ls.mu.Unlock()
	return nil
}

// fileChanged publishes diagnostics for files changed on disk. Open files
// are owned by the editor and are left alone.
func (ls *Server) fileChanged(path string) {
	ls.mu.Lock()
	open := ls.open[path]
	ls.mu.Unlock()
	if !open {
		ls.publish(path)
	}
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	ls.mu.Lock()
	watcher := ls.watcher
	ls.watcher = nil
	ls.mu.Unlock()
	if watcher != nil {
		watcher.Stop()
	}
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.mu.Lock()
	ls.open[path] = true
	ls.mu.Unlock()
	ls.update(ctx, path, []byte(params.TextDocument.Text))
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(ctx, path, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.mu.Lock()
	delete(ls.open, path)
	ls.mu.Unlock()
	ws := ls.workspaceOrDefault()

	if _, err := os.Stat(path); err != nil {
		ws.RemoveFile(path)
		sendDiagnostics(ctx.Notify, path, nil)
		return nil
	}
	if err := ws.ScanFile(path); err != nil {
		log.Warningf("%s", err)
	}
	ls.publishWith(ctx.Notify, path)
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.update(ctx, path, []byte(*params.Text))
		return nil
	}
	if err := ls.workspaceOrDefault().ScanFile(path); err != nil {
		log.Warningf("%s", err)
		return nil
	}
	ls.publishWith(ctx.Notify, path)
	return nil
}

func (ls *Server) textDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	ws := ls.workspaceOrDefault()
	f := ws.GetFile(path)
	if f == nil {
		if err := ws.ScanFile(path); err != nil {
			return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
		}
		f = ws.GetFile(path)
	}
	return &protocol.SemanticTokens{Data: SemanticTokens(f.Content, f.File)}, nil
}

func (ls *Server) update(ctx *glsp.Context, path string, content []byte) {
	ls.workspaceOrDefault().UpdateFile(path, content)
	ls.publishWith(ctx.Notify, path)
}

// workspaceOrDefault returns the workspace, creating one rooted at the
// working directory for clients that skip initialize.
func (ls *Server) workspaceOrDefault() *workspace.Workspace {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.workspace == nil {
		ls.workspace = workspace.New(getRootDir(), config.Default())
	}
	return ls.workspace
}

func (ls *Server) publish(path string) {
	ls.mu.Lock()
	notify := ls.notify
	ls.mu.Unlock()
	if notify != nil {
		ls.publishWith(notify, path)
	}
}

func (ls *Server) publishWith(notify glsp.NotifyFunc, path string) {
	f := ls.workspaceOrDefault().GetFile(path)
	if f == nil {
		sendDiagnostics(notify, path, nil)
		return
	}
	sendDiagnostics(notify, path, Diagnostics(f.Content, f.Errors()))
}

func sendDiagnostics(notify glsp.NotifyFunc, path string, diagnostics []protocol.Diagnostic) {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         pathToURI(path),
		Diagnostics: diagnostics,
	})
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}

func getRootDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

// rootDirOf returns the absolute workspace root named by the client, or
// the working directory when it names none. Editor URIs are absolute, so
// workspace keys have to be too.
func rootDirOf(params *protocol.InitializeParams) string {
	rootDir := ""
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}
	if rootDir == "" {
		return getRootDir()
	}
	if abs, err := filepath.Abs(rootDir); err == nil {
		return abs
	}
	return rootDir
}
