// Package watch notifies callers when the coordination state file changes.
//
// The hook replaces the state file by renaming a temp file over it, so the
// watcher follows the parent directory and filters events by file name.
// Until that directory exists, the nearest existing ancestor is watched
// instead and the watch moves down as directories appear.
// Bursts of events (create, write, rename of one save) are debounced into a
// single notification, and a notification is only sent when the file's
// content actually differs from the last one seen.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/laneguard/internal/errors"
	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 100 * time.Millisecond

// StateWatcher watches one state file.
type StateWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	dir      string
	watched  string
	debounce time.Duration
	last     fingerprint

	onChange func()
	onError  func(error)
}

// New creates a watcher for path. Nothing is created on disk: a state file
// whose directory does not exist yet is still seen once it is written.
func New(path string, onChange func()) (*StateWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve state path")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &StateWatcher{
		watcher:  watcher,
		path:     abs,
		dir:      filepath.Dir(abs),
		debounce: DefaultDebounce,
		last:     fingerprintFile(abs),
		onChange: onChange,
		onError:  func(error) {},
	}
	if err := w.watchNearest(); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return w, nil
}

// watchNearest points the watch at the deepest existing directory on the
// way to the state file. It repeats until no deeper directory appeared
// while the watch was being added.
func (w *StateWatcher) watchNearest() error {
	for {
		target := nearestExisting(w.dir)
		if target == w.watched {
			return nil
		}
		if err := w.watcher.Add(target); err != nil {
			return errors.Wrapf(err, "failed to watch %s", target)
		}
		if w.watched != "" {
			_ = w.watcher.Remove(w.watched)
		}
		w.watched = target
	}
}

func nearestExisting(dir string) string {
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// followDirectories moves the watch when a directory on the path appears or
// the watched directory goes away. It reports whether the watch moved.
func (w *StateWatcher) followDirectories(ev fsnotify.Event) bool {
	name := filepath.Clean(ev.Name)
	switch {
	case name == w.watched && ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// The kernel may have dropped the watch already.
		_ = w.watcher.Remove(w.watched)
		w.watched = ""
	case w.watched != w.dir && ev.Op&fsnotify.Create != 0:
	default:
		return false
	}

	before := w.watched
	if err := w.watchNearest(); err != nil {
		w.onError(err)
		return false
	}
	return w.watched != before
}

// fingerprint identifies one version of the state file. A missing file is
// its own version.
type fingerprint struct {
	exists bool
	sum    uint64
}

func fingerprintFile(path string) fingerprint {
	data, err := os.ReadFile(path)
	if err != nil {
		return fingerprint{}
	}
	return fingerprint{exists: true, sum: xxhash.Sum64(data)}
}

// SetDebounce overrides DefaultDebounce. Call before Run.
func (w *StateWatcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// SetErrorCallback receives watcher errors. They never stop Run.
func (w *StateWatcher) SetErrorCallback(cb func(error)) {
	if cb != nil {
		w.onError = cb
	}
}

// Run delivers change notifications until ctx is done, then closes the
// underlying watcher.
func (w *StateWatcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	debounceTimer := time.NewTimer(w.debounce)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			// A move can skip a state file written together with its
			// directory, so check the file once the burst settles.
			if !w.followDirectories(ev) && !w.relevant(ev) {
				continue
			}
			pending = true
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			if !pending {
				continue
			}
			pending = false
			if current := fingerprintFile(w.path); current != w.last {
				w.last = current
				w.onChange()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.onError(err)
		}
	}
}

// relevant reports whether ev can have changed the state file's content.
func (w *StateWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}
