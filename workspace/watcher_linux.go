//go:build linux

package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	inotifyMask = unix.IN_CREATE | unix.IN_DELETE | unix.IN_MODIFY | unix.IN_CLOSE_WRITE |
		unix.IN_MOVED_FROM | unix.IN_MOVED_TO
	debounceDelay = 100 * time.Millisecond
)

// inotifyWatcher watches every included directory of the workspace and
// re-parses files shortly after their last change event.
type inotifyWatcher struct {
	workspace *Workspace
	onChange  func(string)
	fd        int

	mu      sync.Mutex
	dirs    map[int]string
	timers  map[string]*time.Timer
	stopped bool

	started  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func newNativeWatcher(w *Workspace, onChange func(string)) (Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify init: %w", err)
	}
	if onChange == nil {
		onChange = func(string) {}
	}
	return &inotifyWatcher{
		workspace: w,
		onChange:  onChange,
		fd:        fd,
		dirs:      make(map[int]string),
		timers:    make(map[string]*time.Timer),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

func (iw *inotifyWatcher) Start() error {
	if err := iw.addTree(iw.workspace.RootDir(), false); err != nil {
		return err
	}
	iw.started = true
	go iw.run()
	return nil
}

func (iw *inotifyWatcher) Stop() {
	iw.stopOnce.Do(func() {
		close(iw.stopCh)
		if iw.started {
			<-iw.done
		}

		iw.mu.Lock()
		iw.stopped = true
		for _, t := range iw.timers {
			t.Stop()
		}
		iw.mu.Unlock()
		unix.Close(iw.fd)
	})
}

// addTree watches root and the directories below it. With schedule set,
// files already present are queued for parsing, which covers directories
// that appeared after the initial scan.
func (iw *inotifyWatcher) addTree(root string, schedule bool) error {
	cfg := iw.workspace.Config()
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			if schedule && cfg.Matches(path) {
				iw.schedule(path)
			}
			return nil
		}
		if path != iw.workspace.RootDir() && cfg.Excluded(d.Name()) {
			return filepath.SkipDir
		}
		wd, err := unix.InotifyAddWatch(iw.fd, path, inotifyMask)
		if err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			log.Warningf("watch %s: %s", path, err)
			return nil
		}
		iw.mu.Lock()
		iw.dirs[wd] = path
		iw.mu.Unlock()
		return nil
	})
}

func (iw *inotifyWatcher) run() {
	defer close(iw.done)
	buf := make([]byte, 64*(unix.SizeofInotifyEvent+unix.NAME_MAX+1))

	for {
		select {
		case <-iw.stopCh:
			return
		default:
		}

		n, err := unix.Read(iw.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				select {
				case <-iw.stopCh:
					return
				case <-time.After(100 * time.Millisecond):
				}
				continue
			}
			log.Errorf("read inotify events: %s", err)
			return
		}
		iw.handle(buf[:n])
	}
}

func (iw *inotifyWatcher) handle(buf []byte) {
	cfg := iw.workspace.Config()
	for offset := 0; offset+unix.SizeofInotifyEvent <= len(buf); {
		event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
		nameStart := offset + unix.SizeofInotifyEvent
		nameEnd := nameStart + int(event.Len)
		if nameEnd > len(buf) {
			return
		}
		name := string(bytes.TrimRight(buf[nameStart:nameEnd], "\x00"))
		offset = nameEnd

		iw.mu.Lock()
		dir := iw.dirs[int(event.Wd)]
		if event.Mask&unix.IN_IGNORED != 0 {
			delete(iw.dirs, int(event.Wd))
		}
		iw.mu.Unlock()
		if dir == "" || name == "" {
			continue
		}

		path := filepath.Join(dir, name)
		if event.Mask&unix.IN_ISDIR != 0 {
			if event.Mask&(unix.IN_CREATE|unix.IN_MOVED_TO) != 0 && !cfg.Excluded(name) {
				if err := iw.addTree(path, true); err != nil {
					log.Warningf("watch %s: %s", path, err)
				}
			}
			continue
		}
		if cfg.Matches(path) {
			iw.schedule(path)
		}
	}
}

func (iw *inotifyWatcher) schedule(path string) {
	iw.mu.Lock()
	defer iw.mu.Unlock()
	if iw.stopped {
		return
	}
	if t, ok := iw.timers[path]; ok {
		t.Stop()
	}
	iw.timers[path] = time.AfterFunc(debounceDelay, func() {
		iw.mu.Lock()
		delete(iw.timers, path)
		stopped := iw.stopped
		iw.mu.Unlock()
		if !stopped {
			iw.apply(path)
		}
	})
}

func (iw *inotifyWatcher) apply(path string) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		iw.workspace.RemoveFile(path)
	} else if err := iw.workspace.ScanFile(path); err != nil {
		log.Warningf("%s", err)
		return
	}
	iw.onChange(path)
}
