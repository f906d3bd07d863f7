//go:build !linux

package workspace

func newNativeWatcher(w *Workspace, onChange func(string)) (Watcher, error) {
	return nil, errNoNativeWatcher
}
