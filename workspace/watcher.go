package workspace

import (
	"errors"
	"io/fs"
	"sync"
	"time"
)

// Watcher keeps a workspace in sync with the files on disk and reports
// every path it re-parsed or dropped.
type Watcher interface {
	Start() error
	Stop()
}

var errNoNativeWatcher = errors.New("no native file watcher on this platform")

// NewWatcher returns the native watcher of the platform, or a polling
// watcher where there is none.
func NewWatcher(w *Workspace, onChange func(path string)) Watcher {
	if nw, err := newNativeWatcher(w, onChange); err == nil {
		return nw
	} else if err != errNoNativeWatcher {
		log.Warningf("native file watching unavailable, polling instead: %s", err)
	}
	return NewPollWatcher(w, onChange, time.Second)
}

// PollWatcher rescans the workspace at a fixed interval and re-parses
// files whose modification time changed.
type PollWatcher struct {
	workspace *Workspace
	onChange  func(string)
	interval  time.Duration
	modTimes  map[string]time.Time

	started  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func NewPollWatcher(w *Workspace, onChange func(string), interval time.Duration) *PollWatcher {
	if onChange == nil {
		onChange = func(string) {}
	}
	return &PollWatcher{
		workspace: w,
		onChange:  onChange,
		interval:  interval,
		modTimes:  make(map[string]time.Time),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start records the current modification times and begins polling.
// Files already known to the workspace are not reported again.
func (pw *PollWatcher) Start() error {
	pw.Seed()
	pw.started = true
	go pw.run()
	return nil
}

func (pw *PollWatcher) Stop() {
	pw.stopOnce.Do(func() {
		close(pw.stopCh)
	})
	if pw.started {
		<-pw.done
	}
}

func (pw *PollWatcher) run() {
	defer close(pw.done)
	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.stopCh:
			return
		case <-ticker.C:
			pw.Poll()
		}
	}
}

// Seed records modification times without parsing.
func (pw *PollWatcher) Seed() {
	pw.workspace.Walk(func(path string, d fs.DirEntry) error {
		if info, err := d.Info(); err == nil {
			pw.modTimes[path] = info.ModTime()
		}
		return nil
	})
}

// Poll compares the tree with the recorded modification times once.
func (pw *PollWatcher) Poll() {
	current := make(map[string]bool)

	pw.workspace.Walk(func(path string, d fs.DirEntry) error {
		info, err := d.Info()
		if err != nil {
			return nil
		}
		current[path] = true

		lastMod, known := pw.modTimes[path]
		if !known || !info.ModTime().Equal(lastMod) {
			pw.modTimes[path] = info.ModTime()
			if err := pw.workspace.ScanFile(path); err != nil {
				log.Warningf("%s", err)
				return nil
			}
			pw.onChange(path)
		}
		return nil
	})

	for path := range pw.modTimes {
		if !current[path] {
			delete(pw.modTimes, path)
			pw.workspace.RemoveFile(path)
			pw.onChange(path)
		}
	}
}
