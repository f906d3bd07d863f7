//go:build linux

package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInotifyWatcher(t *testing.T) {
	root := newTestTree(t)
	ws := New(root, nil)
	require.NoError(t, ws.ScanAll(context.Background()))

	var got changes
	w, err := newNativeWatcher(ws, got.record)
	if err != nil {
		t.Skipf("inotify unavailable: %s", err)
	}
	require.NoError(t, w.Start())
	defer w.Stop()

	buildPath := filepath.Join(root, "BUILD")
	require.NoError(t, os.WriteFile(buildPath, []byte("x = \n"), 0o644))
	assert.Eventually(t, func() bool { return got.seen(buildPath) }, 5*time.Second, 20*time.Millisecond)
	assert.NotEmpty(t, ws.GetFile(buildPath).Errors())

	removed := filepath.Join(root, "tools/defs.bzl")
	require.NoError(t, os.Remove(removed))
	assert.Eventually(t, func() bool { return got.seen(removed) }, 5*time.Second, 20*time.Millisecond)
	assert.Nil(t, ws.GetFile(removed))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	time.Sleep(50 * time.Millisecond)
	added := writeFile(t, root, "sub/BUILD", "y = 1\n")
	assert.Eventually(t, func() bool { return got.seen(added) }, 5*time.Second, 20*time.Millisecond)
	assert.NotNil(t, ws.GetFile(added))

	ignored := writeFile(t, root, "README.md", "changed\n")
	time.Sleep(3 * debounceDelay)
	assert.False(t, got.seen(ignored))
}

func TestInotifyWatcherSurvivesVanishedDirectory(t *testing.T) {
	root := newTestTree(t)
	ws := New(root, nil)
	require.NoError(t, ws.ScanAll(context.Background()))

	var got changes
	w, err := newNativeWatcher(ws, got.record)
	if err != nil {
		t.Skipf("inotify unavailable: %s", err)
	}
	require.NoError(t, w.Start())
	defer w.Stop()

	iw := w.(*inotifyWatcher)
	assert.Error(t, iw.addTree(filepath.Join(root, "gone"), true))

	for range 5 {
		dir := filepath.Join(root, "tmp")
		require.NoError(t, os.Mkdir(dir, 0o755))
		require.NoError(t, os.Remove(dir))
	}

	buildPath := filepath.Join(root, "BUILD")
	require.NoError(t, os.WriteFile(buildPath, []byte("x = 2\n"), 0o644))
	assert.Eventually(t, func() bool { return got.seen(buildPath) }, 5*time.Second, 20*time.Millisecond)
}
