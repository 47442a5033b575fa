// Package usage surveys the on-disk footprint of a library tree.
//
// Unlike discovery, a survey reads raw filesystem truth: every regular
// file is counted, with library extensions split into per-extension
// buckets and everything else aggregated into an "other" bucket. The
// stats command sets these figures next to the catalog's own totals.
package usage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/vidsum/vidsum/pkg/vidsum/filter"
	"github.com/vidsum/vidsum/pkg/vidsum/logging"
	"github.com/vidsum/vidsum/pkg/vidsum/progress"
)

var logger = logging.Get("usage")

// ExtUsage aggregates file count and byte total for one extension.
type ExtUsage struct {
	Files int64
	Bytes int64
}

// Result contains the aggregated survey of a library tree.
type Result struct {
	// Root is the resolved absolute path that was surveyed.
	Root string

	// Dirs is the number of directories traversed.
	Dirs int64

	// TotalFiles is the number of regular files seen, matching or not.
	TotalFiles int64

	// TotalBytes is the byte total of all regular files seen.
	TotalBytes int64

	// OtherFiles is the number of files outside the library extensions.
	OtherFiles int64

	// OtherBytes is the byte total of files outside the library extensions.
	OtherBytes int64

	// Errored is the number of entries that could not be read.
	Errored int64

	// ByExtension holds per-extension buckets for the library extensions.
	ByExtension map[string]ExtUsage

	// Elapsed is the wall time the survey took.
	Elapsed time.Duration
}

// MatchedFiles returns the number of files in library extension buckets.
func (r *Result) MatchedFiles() int64 {
	var n int64
	for _, u := range r.ByExtension {
		n += u.Files
	}
	return n
}

// MatchedBytes returns the byte total of library extension buckets.
func (r *Result) MatchedBytes() int64 {
	var n int64
	for _, u := range r.ByExtension {
		n += u.Bytes
	}
	return n
}

// surveyor aggregates walk results. Counters are atomic; the
// per-extension map is guarded by a mutex since fastwalk calls the
// callback from multiple goroutines.
type surveyor struct {
	extensions map[string]struct{}

	dirs       atomic.Int64
	totalFiles atomic.Int64
	totalBytes atomic.Int64
	otherFiles atomic.Int64
	otherBytes atomic.Int64
	errored    atomic.Int64

	mu    sync.Mutex
	byExt map[string]ExtUsage
}

// Survey walks root with fastwalk's parallel walker and aggregates
// per-extension file counts and byte totals. Symlinks are not followed.
func Survey(ctx context.Context, root string, extensions []string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absRoot)
	}

	s := &surveyor{
		extensions: make(map[string]struct{}),
		byExt:      make(map[string]ExtUsage),
	}
	for _, ext := range filter.NormalizeExtensions(extensions) {
		s.extensions[ext] = struct{}{}
	}

	tracker := progress.NewTracker()

	conf := fastwalk.Config{
		Follow: false, // Don't follow symlinks.
	}
	walkErr := fastwalk.Walk(&conf, absRoot, s.walkCallback(ctx))
	if walkErr != nil {
		return nil, walkErr
	}

	result := &Result{
		Root:        absRoot,
		Dirs:        s.dirs.Load(),
		TotalFiles:  s.totalFiles.Load(),
		TotalBytes:  s.totalBytes.Load(),
		OtherFiles:  s.otherFiles.Load(),
		OtherBytes:  s.otherBytes.Load(),
		Errored:     s.errored.Load(),
		ByExtension: s.byExt,
		Elapsed:     tracker.Elapsed(),
	}

	logger.Debug("survey complete",
		"root", absRoot,
		"files", result.TotalFiles,
		"dirs", result.Dirs,
		"elapsed", result.Elapsed)

	return result, nil
}

// walkCallback returns the callback function for fastwalk.Walk.
func (s *surveyor) walkCallback(ctx context.Context) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		// Check for cancellation.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Count unreadable entries and continue.
		if err != nil {
			s.errored.Add(1)
			return nil
		}

		if d.IsDir() {
			s.dirs.Add(1)
			return nil
		}

		// Only regular files contribute to totals.
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.errored.Add(1)
			return nil
		}

		size := info.Size()
		s.totalFiles.Add(1)
		s.totalBytes.Add(size)

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if _, ok := s.extensions[ext]; ok {
			s.mu.Lock()
			u := s.byExt[ext]
			u.Files++
			u.Bytes += size
			s.byExt[ext] = u
			s.mu.Unlock()
			return nil
		}

		s.otherFiles.Add(1)
		s.otherBytes.Add(size)
		return nil
	}
}
