// Package workspace keeps the parsed BUILD files below a root directory up
// to date.
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/bzl/build/parser"
	"github.com/dhamidi/bzl/config"
)

var log = commonlog.GetLogger("bzl.workspace")

type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	config  *config.Config
	files   map[string]*FileInfo
}

type FileInfo struct {
	Path    string
	Content []byte
	File    *parser.File
}

func (f *FileInfo) Errors() []*parser.Error {
	return f.File.Errors
}

func New(rootDir string, cfg *config.Config) *Workspace {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Workspace{
		rootDir: rootDir,
		config:  cfg,
		files:   make(map[string]*FileInfo),
	}
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

func (w *Workspace) Config() *config.Config {
	return w.config
}

// Walk calls fn for every file below the root that the configuration
// includes. Excluded directories are not entered. Unreadable entries are
// logged and skipped.
func (w *Workspace) Walk(fn func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(w.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warningf("walk %s: %s", path, err)
			return nil
		}
		if d.IsDir() {
			if path != w.rootDir && w.config.Excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.config.Matches(path) {
			return nil
		}
		return fn(path, d)
	})
}

// ScanAll parses every included file below the root, using up to
// config.Jobs goroutines. It stops at the first read error.
func (w *Workspace) ScanAll(ctx context.Context) error {
	var paths []string
	if err := w.Walk(func(path string, d fs.DirEntry) error {
		paths = append(paths, path)
		return nil
	}); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.Jobs)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return w.ScanFile(path)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Infof("scanned %d files in %s, %d errors", len(paths), w.rootDir, w.ErrorCount())
	return nil
}

// ScanFile reads and parses one file.
func (w *Workspace) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("scan file: %w", err)
	}
	w.UpdateFile(path, content)
	return nil
}

// UpdateFile parses content as the current text of path.
func (w *Workspace) UpdateFile(path string, content []byte) *FileInfo {
	info := &FileInfo{
		Path:    path,
		Content: content,
		File:    parser.Parse(content, parser.WithFile(w.displayPath(path)), parser.WithComments()),
	}
	if n := len(info.File.Errors); n > 0 {
		log.Debugf("%s: %d syntax errors", path, n)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = info
	return info
}

func (w *Workspace) displayPath(path string) string {
	rel, err := filepath.Rel(w.rootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
}

func (w *Workspace) GetFile(path string) *FileInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

// Files returns the known files ordered by path.
func (w *Workspace) Files() []*FileInfo {
	w.mu.RLock()
	files := make([]*FileInfo, 0, len(w.files))
	for _, f := range w.files {
		files = append(files, f)
	}
	w.mu.RUnlock()

	slices.SortFunc(files, func(a, b *FileInfo) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files
}

func (w *Workspace) ErrorCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for _, f := range w.files {
		n += len(f.File.Errors)
	}
	return n
}
