package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	// MaxSize is the size in bytes that triggers rotation. Zero uses
	// the default of 10 MiB.
	MaxSize int64

	// MaxAge is how many days rotated files are retained. Zero keeps
	// them forever.
	MaxAge int

	// MaxBackups caps the number of rotated files. Zero keeps all,
	// subject to MaxAge.
	MaxBackups int

	// Daily rotates whenever the date changes.
	Daily bool
}

// DefaultRotationConfig returns sensible defaults for rotation.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     30,
		MaxBackups: 5,
		Daily:      true,
	}
}

// RotatingWriter is an io.WriteCloser with size and daily rotation. It
// is safe for concurrent use, and each write takes an flock so several
// vidsum processes can share one log path.
type RotatingWriter struct {
	path string
	cfg  RotationConfig

	mu         sync.Mutex
	file       *os.File
	size       int64
	lastRotate time.Time
}

// rotatedFile is an archived sibling of the active log file.
type rotatedFile struct {
	path  string
	mtime time.Time
}

// NewRotatingWriter opens a rotating writer at path, creating parent
// directories as needed. Stale archives are pruned immediately.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg, lastRotate: time.Now()}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.prune()
	return w, nil
}

// Write appends p to the log file, rotating first when a threshold is
// hit.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.needsRotation(int64(len(p))) {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	fd := int(w.file.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX); err != nil {
		return 0, fmt.Errorf("acquiring file lock: %w", err)
	}
	defer func() { _ = unix.Flock(fd, unix.LOCK_UN) }()

	n, err := w.file.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to log file: %w", err)
	}
	w.size += int64(n)
	return n, nil
}

// Close syncs and closes the log file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("syncing log file: %w", err)
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// open opens or creates the active log file and records its size and
// mtime, so restarts resume the size counter and daily schedule.
func (w *RotatingWriter) open() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return errors.Join(fmt.Errorf("stat log file: %w", err), file.Close())
	}

	w.file = file
	w.size = info.Size()
	w.lastRotate = info.ModTime()
	return nil
}

func (w *RotatingWriter) needsRotation(writeSize int64) bool {
	if w.size+writeSize > w.cfg.MaxSize {
		return true
	}
	return w.cfg.Daily && !sameDay(time.Now(), w.lastRotate)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// rotate renames the active file to its archive name and starts a
// fresh one.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("closing current file: %w", err)
		}
		w.file = nil
	}

	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, w.archiveName(time.Now())); err != nil {
			return fmt.Errorf("renaming log file: %w", err)
		}
	}

	if err := w.open(); err != nil {
		return err
	}
	w.lastRotate = time.Now()
	w.prune()
	return nil
}

// archiveName derives the rotated name, vidsum.log becoming
// vidsum.2026-01-20-150405.log.
func (w *RotatingWriter) archiveName(t time.Time) string {
	ext := filepath.Ext(w.path)
	stem := strings.TrimSuffix(w.path, ext)
	return stem + "." + t.Format("2006-01-02-150405") + ext
}

// prune removes archives beyond MaxBackups or older than MaxAge.
// Failures here are ignored.
func (w *RotatingWriter) prune() {
	archives := w.listArchives()

	var cutoff time.Time
	if w.cfg.MaxAge > 0 {
		cutoff = time.Now().AddDate(0, 0, -w.cfg.MaxAge)
	}
	excess := 0
	if w.cfg.MaxBackups > 0 {
		excess = len(archives) - w.cfg.MaxBackups
	}

	for i, a := range archives {
		if i < excess || (!cutoff.IsZero() && a.mtime.Before(cutoff)) {
			_ = os.Remove(a.path)
		}
	}
}

// listArchives returns the rotated siblings of the log file, oldest
// first.
func (w *RotatingWriter) listArchives() []rotatedFile {
	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var archives []rotatedFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == base {
			continue
		}
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		archives = append(archives, rotatedFile{
			path:  filepath.Join(dir, name),
			mtime: info.ModTime(),
		})
	}

	slices.SortFunc(archives, func(a, b rotatedFile) int {
		return a.mtime.Compare(b.mtime)
	})
	return archives
}
