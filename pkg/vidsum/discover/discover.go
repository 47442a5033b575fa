package discover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vidsum/vidsum/pkg/vidsum/progress"
	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// Sentinel errors for invalid walk roots. They are wrapped with the
// offending path; match with errors.Is.
var (
	// ErrNotFound reports that the walk root does not exist.
	ErrNotFound = errors.New("directory not found")

	// ErrNotADirectory reports that the walk root exists but is not a
	// directory.
	ErrNotADirectory = errors.New("not a directory")
)

// walker holds the state for a single discovery walk.
type walker struct {
	opts    Options
	exts    extSet
	visited *visitedSet
	tracker *progress.Tracker

	// matched collects paths that passed the filters, pending the
	// metadata collection phase.
	matched []string

	// reported is the match count at the last checkpoint, -1 before
	// any. The final checkpoint fires whenever it trails the match
	// count, so even an empty walk reports its zero count once.
	reported int
}

// Discover walks the tree rooted at root and returns a descriptor for
// every file whose extension is in opts.Extensions. Directories named
// with a leading dot are pruned unless they are the root itself, and
// unreadable entries are skipped so a denied subtree yields partial
// results instead of failure.
//
// Cancellation is observed at reporting checkpoints and between metadata
// batches; a cancelled walk returns (nil, ctx.Err()). Result order is
// unspecified.
func Discover(ctx context.Context, root string, opts Options) ([]types.DiscoveredFile, error) {
	_ = opts.Validate()

	w := &walker{
		opts:     opts,
		exts:     newExtSet(opts.Extensions),
		visited:  newVisitedSet(),
		tracker:  progress.NewTracker(),
		reported: -1,
	}

	absRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}

	// The root is recorded up front so a symlink inside the tree that
	// points back at it is skipped like any other revisit.
	if opts.FollowSymlinks {
		if canonical, err := filepath.EvalSymlinks(absRoot); err == nil {
			w.visited.checkAndAdd(canonical)
		}
	}

	if err := w.walkDir(ctx, absRoot); err != nil {
		return nil, err
	}

	// Report the tail if the final count was not already reported.
	if len(w.matched) != w.reported {
		if err := w.checkpoint(ctx); err != nil {
			return nil, err
		}
	}

	return w.collectMetadata(ctx)
}

// validateRoot resolves root to an absolute path and verifies it is an
// existing directory.
func validateRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", root, err)
	}

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%q: %w", root, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%q: %w", root, ErrNotADirectory)
	}
	return abs, nil
}

// walkDir reads one directory and recurses into subdirectories that
// pass the pruning rules. Unreadable directories are skipped. The only
// error it returns is a cancellation observed at a checkpoint.
func (w *walker) walkDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		if w.isDir(entry, path) {
			// Dot-named directories are pruned before being opened.
			// The root never reaches this check, so it is exempt.
			if strings.HasPrefix(name, ".") {
				continue
			}
			if !w.enterDir(path) {
				continue
			}
			if err := w.walkDir(ctx, path); err != nil {
				return err
			}
			continue
		}

		if !w.isFile(entry, path) {
			continue
		}
		if !w.exts.match(name) {
			continue
		}

		w.matched = append(w.matched, path)
		if len(w.matched)%progress.BatchSize == 0 {
			if err := w.checkpoint(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// isDir reports whether entry names a directory, resolving symlinks
// only when following is enabled.
func (w *walker) isDir(entry fs.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if !w.opts.FollowSymlinks || entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isFile reports whether entry names a regular file, resolving symlinks
// only when following is enabled.
func (w *walker) isFile(entry fs.DirEntry, path string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if !w.opts.FollowSymlinks || entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// enterDir reports whether the walk may descend into dir. When
// following symlinks the canonical path is checked against and added to
// the visited set in a single step, so a cycle is broken exactly once.
// An unresolvable path is never descended into.
func (w *walker) enterDir(dir string) bool {
	if !w.opts.FollowSymlinks {
		return true
	}
	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return false
	}
	return !w.visited.checkAndAdd(canonical)
}

// checkpoint observes cancellation and reports progress. It runs on the
// walking goroutine only, so callbacks never overlap.
func (w *walker) checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.opts.OnProgress != nil {
		found := len(w.matched)
		w.opts.OnProgress(found, w.tracker.Rate(found))
	}
	w.reported = len(w.matched)
	return nil
}
