// Package watch provides filesystem watching for automatic incremental scans.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vidsum/vidsum/pkg/vidsum/filter"
	"github.com/vidsum/vidsum/pkg/vidsum/logging"
)

// DefaultDebounce is the quiet period after the last relevant event
// before a settled root is reported.
const DefaultDebounce = 2 * time.Second

var logger = logging.Get("watch")

// Watcher watches library roots for filesystem changes and reports a root
// once its event stream has settled. Event storms (a download finishing,
// a batch move) collapse into a single settle notification.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]struct{}
	debounce   time.Duration

	mu     sync.RWMutex
	paths  map[string]bool
	roots  []string
	closed bool
}

// New creates a new Watcher that considers files with the given extensions
// relevant. A debounce of 0 or below selects DefaultDebounce.
func New(extensions []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	extSet := make(map[string]struct{})
	for _, ext := range filter.NormalizeExtensions(extensions) {
		extSet[ext] = struct{}{}
	}

	return &Watcher{
		watcher:    fsw,
		extensions: extSet,
		debounce:   debounce,
		paths:      make(map[string]bool),
	}, nil
}

// Watch starts watching a library root recursively.
// It adds watches to the root directory and all subdirectories.
// Symlinks are not followed to avoid loops.
func (w *Watcher) Watch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return errors.New("watch root is not a directory: " + absRoot)
	}

	w.mu.Lock()
	w.roots = append(w.roots, absRoot)
	// Longest first so rootFor prefers the most specific root
	sort.Slice(w.roots, func(i, j int) bool {
		return len(w.roots[i]) > len(w.roots[j])
	})
	w.mu.Unlock()

	// Walk and add all directories
	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}

		// Skip symlinks to avoid loops
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if d.IsDir() {
			return w.addWatch(path)
		}

		return nil
	})
}

// addWatch adds a single directory to the watch list.
func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	// Already watching this path
	if w.paths[path] {
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		logger.Warn("failed to add watch", "path", path, "error", err)
		return err
	}

	w.paths[path] = true
	return nil
}

// Run starts the event loop. It blocks until the context is cancelled.
// The onSettle callback is called with a root once no relevant event has
// arrived under it for the configured debounce period.
func (w *Watcher) Run(ctx context.Context, onSettle func(root string)) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			root, relevant := w.handleEvent(event)
			if relevant {
				pending[root] = struct{}{}
				// Restart the quiet period
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("watcher error", "error", err)

		case <-timer.C:
			for root := range pending {
				logger.Debug("root settled", "root", root)
				if onSettle != nil {
					onSettle(root)
				}
				delete(pending, root)
			}
		}
	}
}

// handleEvent processes a single filesystem event. It returns the root the
// event belongs to and whether the event is relevant to the library.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	root, ok := w.rootFor(event.Name)
	if !ok {
		return "", false
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		if w.handleCreate(event.Name) {
			return root, true
		}
	case event.Op&fsnotify.Write != 0:
		if w.matchesExtension(event.Name) {
			return root, true
		}
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		// Rename is treated as a remove - the new name triggers a create
		if w.handleRemove(event.Name) {
			return root, true
		}
	}

	return "", false
}

// handleCreate handles file/directory creation events. New directories are
// registered (including subdirectories moved in with them). It reports
// whether the creation is relevant.
func (w *Watcher) handleCreate(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false // Entry might have been deleted already
	}

	// Skip symlinks
	if info.Mode()&fs.ModeSymlink != 0 {
		return false
	}

	if info.IsDir() {
		_ = w.addWatch(path)

		// Also walk any subdirectories that were created with it
		_ = filepath.WalkDir(path, func(subpath string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil //nolint:nilerr // Skip entries with errors
			}
			if d.Type()&fs.ModeSymlink != 0 {
				return nil // Skip symlinks
			}
			if d.IsDir() && subpath != path {
				_ = w.addWatch(subpath)
			}
			return nil
		})

		// A moved-in directory may carry library files
		return true
	}

	return w.matchesExtension(path)
}

// handleRemove handles file/directory deletion events and drops watches on
// removed directories. It reports whether the removal is relevant.
func (w *Watcher) handleRemove(path string) bool {
	w.mu.Lock()
	wasDir := w.paths[path]
	if wasDir {
		_ = w.watcher.Remove(path)
		delete(w.paths, path)
	}

	// Also remove any child watches
	for childPath := range w.paths {
		if isSubPath(childPath, path) {
			_ = w.watcher.Remove(childPath)
			delete(w.paths, childPath)
		}
	}
	w.mu.Unlock()

	return wasDir || w.matchesExtension(path)
}

// matchesExtension reports whether the path has a relevant extension.
func (w *Watcher) matchesExtension(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	_, ok := w.extensions[ext]
	return ok
}

// rootFor returns the watched root a path belongs to.
func (w *Watcher) rootFor(path string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, root := range w.roots {
		if path == root || isSubPath(path, root) {
			return root, true
		}
	}
	return "", false
}

// watchedDirs returns the number of directories currently watched.
func (w *Watcher) watchedDirs() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.paths)
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	w.paths = make(map[string]bool)
	return w.watcher.Close()
}

// isSubPath checks if path is under parent directory.
func isSubPath(path, parent string) bool {
	return len(path) > len(parent) && path[:len(parent)+1] == parent+string(filepath.Separator)
}
