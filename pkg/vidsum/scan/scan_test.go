package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vidsum/vidsum/pkg/vidsum/cache"
	"github.com/vidsum/vidsum/pkg/vidsum/catalog"
	"github.com/vidsum/vidsum/pkg/vidsum/discover"
	"github.com/vidsum/vidsum/pkg/vidsum/report"
	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// openTestCatalog opens a catalog in a test-scoped temp directory.
func openTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	c, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("catalog.Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("catalog.Close failed: %v", err)
		}
	})
	return c
}

// openTestCache opens a fingerprint cache in a temp directory.
func openTestCache(t *testing.T) *cache.Cache {
	t.Helper()

	c, err := cache.Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("cache.Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("cache.Close failed: %v", err)
		}
	})
	return c
}

// writeFile creates path with the given content, creating parents.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// newLibrary creates a small library: three videos and one stray file.
func newLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "movie.mkv"), "first feature")
	writeFile(t, filepath.Join(root, "episode.mp4"), "second feature, longer")
	writeFile(t, filepath.Join(root, "shows", "pilot.mkv"), "a pilot episode")
	writeFile(t, filepath.Join(root, "note.txt"), "not a video")
	return root
}

// runScan builds a scanner and runs it to completion.
func runScan(t *testing.T, opts Options) *Report {
	t.Helper()

	s, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rep, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return rep
}

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected error for missing roots")
	}
	if _, err := New(Options{Roots: []string{"/media"}}); err == nil {
		t.Error("expected error for missing catalog")
	}
}

func TestRunInitialScan(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)

	rep := runScan(t, Options{Roots: []string{root}, Catalog: cat})

	if rep.Found != 3 {
		t.Errorf("Found: got %d, want 3", rep.Found)
	}
	if rep.New != 3 {
		t.Errorf("New: got %d, want 3", rep.New)
	}
	if rep.Updated != 0 || rep.Skipped != 0 || rep.Errored != 0 {
		t.Errorf("Updated/Skipped/Errored: got %d/%d/%d, want 0/0/0",
			rep.Updated, rep.Skipped, rep.Errored)
	}
	if rep.Mode != "scan" {
		t.Errorf("Mode: got %q, want %q", rep.Mode, "scan")
	}
	if !rep.Incremental {
		t.Error("Incremental should be true for a plain scan")
	}
	if rep.Interrupted {
		t.Error("Interrupted should be false")
	}
	if len(rep.JobID) != 36 {
		t.Errorf("JobID: got %q, want a UUIDv4", rep.JobID)
	}

	entry, err := cat.GetByPath(filepath.Join(root, "movie.mkv"))
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if entry.Status != types.StatusOK {
		t.Errorf("Status: got %q, want %q", entry.Status, types.StatusOK)
	}
	if !strings.HasPrefix(entry.Hash, "xxh64:") {
		t.Errorf("Hash: got %q, want xxh64 fingerprint", entry.Hash)
	}
	if entry.JobID != rep.JobID {
		t.Errorf("JobID on entry: got %q, want %q", entry.JobID, rep.JobID)
	}
}

func TestRunIncrementalSkipsUnchanged(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)
	opts := Options{Roots: []string{root}, Catalog: cat}

	runScan(t, opts)
	rep := runScan(t, opts)

	if rep.Found != 3 {
		t.Errorf("Found: got %d, want 3", rep.Found)
	}
	if rep.Skipped != 3 {
		t.Errorf("Skipped: got %d, want 3", rep.Skipped)
	}
	if rep.New != 0 || rep.Updated != 0 {
		t.Errorf("New/Updated: got %d/%d, want 0/0", rep.New, rep.Updated)
	}
}

func TestRunDetectsModified(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)
	opts := Options{Roots: []string{root}, Catalog: cat}

	runScan(t, opts)

	before, err := cat.GetByPath(filepath.Join(root, "movie.mkv"))
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}

	// Rewrite with different content and push mtime forward so the
	// change is visible at second precision.
	target := filepath.Join(root, "movie.mkv")
	writeFile(t, target, "first feature, director's cut")
	future := time.Now().Add(2 * time.Hour)
	if err := os.Chtimes(target, future, future); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	rep := runScan(t, opts)

	if rep.Updated != 1 {
		t.Errorf("Updated: got %d, want 1", rep.Updated)
	}
	if rep.Skipped != 2 {
		t.Errorf("Skipped: got %d, want 2", rep.Skipped)
	}

	after, err := cat.GetByPath(target)
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if after.Hash == before.Hash {
		t.Error("fingerprint should change when content changes")
	}
}

func TestRunFullRehashesEverything(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)

	runScan(t, Options{Roots: []string{root}, Catalog: cat})
	rep := runScan(t, Options{Roots: []string{root}, Catalog: cat, Full: true})

	if rep.Mode != "full" {
		t.Errorf("Mode: got %q, want %q", rep.Mode, "full")
	}
	if rep.Incremental {
		t.Error("Incremental should be false for a full scan")
	}
	if rep.Updated != 3 {
		t.Errorf("Updated: got %d, want 3", rep.Updated)
	}
	if rep.Skipped != 0 {
		t.Errorf("Skipped: got %d, want 0", rep.Skipped)
	}
}

func TestRunMarksMissing(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)
	opts := Options{Roots: []string{root}, Catalog: cat}

	runScan(t, opts)

	gone := filepath.Join(root, "shows", "pilot.mkv")
	if err := os.Remove(gone); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	rep := runScan(t, opts)

	if rep.Missing != 1 {
		t.Errorf("Missing: got %d, want 1", rep.Missing)
	}
	if rep.Removed != 0 {
		t.Errorf("Removed: got %d, want 0", rep.Removed)
	}
	if rep.Found != 2 {
		t.Errorf("Found: got %d, want 2", rep.Found)
	}

	entry, err := cat.GetByPath(gone)
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if entry.Status != types.StatusMissing {
		t.Errorf("Status: got %q, want %q", entry.Status, types.StatusMissing)
	}
}

func TestRunPruneDeletesMissing(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)

	runScan(t, Options{Roots: []string{root}, Catalog: cat})

	gone := filepath.Join(root, "shows", "pilot.mkv")
	if err := os.Remove(gone); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	rep := runScan(t, Options{Roots: []string{root}, Catalog: cat, Prune: true})

	if rep.Removed != 1 {
		t.Errorf("Removed: got %d, want 1", rep.Removed)
	}
	if rep.Missing != 0 {
		t.Errorf("Missing: got %d, want 0", rep.Missing)
	}

	if _, err := cat.GetByPath(gone); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound after prune, got %v", err)
	}
}

func TestRunReturnedFileIsRehashed(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)
	opts := Options{Roots: []string{root}, Catalog: cat}

	runScan(t, opts)

	target := filepath.Join(root, "movie.mkv")
	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if err := os.Remove(target); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if rep := runScan(t, opts); rep.Missing != 1 {
		t.Fatalf("Missing: got %d, want 1", rep.Missing)
	}

	// The file comes back byte-identical with its old mtime. Size and
	// mtime alone say unchanged, but the record is marked missing, so
	// it must be rescanned back to ok.
	writeFile(t, target, "first feature")
	if err := os.Chtimes(target, info.ModTime(), info.ModTime()); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	rep := runScan(t, opts)

	if rep.Updated != 1 {
		t.Errorf("Updated: got %d, want 1", rep.Updated)
	}

	entry, err := cat.GetByPath(target)
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if entry.Status != types.StatusOK {
		t.Errorf("Status: got %q, want %q", entry.Status, types.StatusOK)
	}
}

func TestRunVerifyConfirmsUnchanged(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)

	runScan(t, Options{Roots: []string{root}, Catalog: cat})
	rep := runScan(t, Options{Roots: []string{root}, Catalog: cat, Verify: true})

	if rep.Mode != "verify" {
		t.Errorf("Mode: got %q, want %q", rep.Mode, "verify")
	}
	if rep.Verified != 3 {
		t.Errorf("Verified: got %d, want 3", rep.Verified)
	}
	if rep.Mismatched != 0 {
		t.Errorf("Mismatched: got %d, want 0", rep.Mismatched)
	}
	if rep.Skipped != 3 {
		t.Errorf("Skipped: got %d, want 3", rep.Skipped)
	}
}

func TestRunVerifyDetectsDrift(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)

	runScan(t, Options{Roots: []string{root}, Catalog: cat})

	// Rewrite one file with different content of the same length and
	// restore its mtime: invisible to the incremental check, caught
	// only by verify.
	target := filepath.Join(root, "movie.mkv")
	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	before, err := cat.GetByPath(target)
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}

	writeFile(t, target, "FIRST FEATURE")
	if err := os.Chtimes(target, info.ModTime(), info.ModTime()); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	rep := runScan(t, Options{Roots: []string{root}, Catalog: cat, Verify: true})

	if rep.Mismatched != 1 {
		t.Errorf("Mismatched: got %d, want 1", rep.Mismatched)
	}
	if rep.Verified != 2 {
		t.Errorf("Verified: got %d, want 2", rep.Verified)
	}
	if rep.Skipped != 2 {
		t.Errorf("Skipped: got %d, want 2", rep.Skipped)
	}
	if rep.Updated != 1 {
		t.Errorf("Updated: got %d, want 1", rep.Updated)
	}

	after, err := cat.GetByPath(target)
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if after.Hash == before.Hash {
		t.Error("drifted fingerprint should be persisted")
	}
}

func TestRunPersistsHashErrors(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("skipping permission test as root")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.mkv"), "readable")
	locked := filepath.Join(root, "locked.mkv")
	writeFile(t, locked, "unreadable")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	defer func() { _ = os.Chmod(locked, 0o644) }()

	cat := openTestCatalog(t)
	rep := runScan(t, Options{Roots: []string{root}, Catalog: cat})

	if rep.New != 2 {
		t.Errorf("New: got %d, want 2", rep.New)
	}
	if rep.Errored != 1 {
		t.Errorf("Errored: got %d, want 1", rep.Errored)
	}
	if len(rep.Errors) != 1 || rep.Errors[0].Path != locked {
		t.Errorf("Errors: got %+v, want one entry for %s", rep.Errors, locked)
	}

	entry, err := cat.GetByPath(locked)
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if entry.Status != types.StatusError {
		t.Errorf("Status: got %q, want %q", entry.Status, types.StatusError)
	}
	if entry.ScanError == "" {
		t.Error("ScanError should carry the failure message")
	}
	if entry.Hash != "" {
		t.Errorf("Hash: got %q, want empty for errored file", entry.Hash)
	}
}

func TestRunSingleExplicitRootPropagatesError(t *testing.T) {
	cat := openTestCatalog(t)

	s, err := New(Options{
		Roots:        []string{"/nonexistent/vidsum-test"},
		Catalog:      cat,
		ExplicitRoot: true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = s.Run(context.Background())
	if !errors.Is(err, discover.ErrNotFound) {
		t.Errorf("expected discover.ErrNotFound, got %v", err)
	}
}

func TestRunMultiRootRecordsFailure(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)

	rep := runScan(t, Options{
		Roots:   []string{root, "/nonexistent/vidsum-test"},
		Catalog: cat,
	})

	if rep.Found != 3 {
		t.Errorf("Found: got %d, want 3", rep.Found)
	}
	if rep.New != 3 {
		t.Errorf("New: got %d, want 3", rep.New)
	}
	if len(rep.Errors) != 1 {
		t.Fatalf("Errors: got %d, want 1", len(rep.Errors))
	}
	if rep.Errors[0].Path != "/nonexistent/vidsum-test" {
		t.Errorf("error path: got %q", rep.Errors[0].Path)
	}
	if rep.Missing != 0 {
		t.Errorf("Missing: got %d, want 0", rep.Missing)
	}
}

func TestRunOverlappingRootsDeduplicate(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)

	rep := runScan(t, Options{
		Roots:   []string{root, filepath.Join(root, "shows")},
		Catalog: cat,
	})

	if rep.Found != 3 {
		t.Errorf("Found: got %d, want 3", rep.Found)
	}
	if rep.New != 3 {
		t.Errorf("New: got %d, want 3", rep.New)
	}
}

func TestRunCancelledMarksInterrupted(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)

	s, err := New(Options{Roots: []string{root}, Catalog: cat})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("Run should not fail on cancellation: %v", err)
	}
	if !rep.Interrupted {
		t.Error("Interrupted should be true")
	}
	if rep.New != 0 {
		t.Errorf("New: got %d, want 0", rep.New)
	}
}

func TestRunConsultsCache(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "movie.mkv")
	writeFile(t, target, "first feature")

	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}

	fpCache := openTestCache(t)
	planted := "xxh64:0000000000000bad:0000000000000bad:13"
	err = fpCache.Put(target, &cache.Entry{
		Size:  info.Size(),
		Mtime: info.ModTime().UnixNano(),
		Hash:  planted,
	})
	if err != nil {
		t.Fatalf("cache.Put failed: %v", err)
	}

	cat := openTestCatalog(t)
	rep := runScan(t, Options{Roots: []string{root}, Catalog: cat, Cache: fpCache})

	if rep.New != 1 {
		t.Errorf("New: got %d, want 1", rep.New)
	}

	entry, err := cat.GetByPath(target)
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if entry.Hash != planted {
		t.Errorf("Hash: got %q, want planted cache value %q", entry.Hash, planted)
	}

	// Full mode goes back to disk and replaces the planted value.
	rep = runScan(t, Options{Roots: []string{root}, Catalog: cat, Cache: fpCache, Full: true})
	if rep.Updated != 1 {
		t.Errorf("Updated: got %d, want 1", rep.Updated)
	}

	entry, err = cat.GetByPath(target)
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if entry.Hash == planted {
		t.Error("full scan should not trust the cache")
	}
	if !strings.HasPrefix(entry.Hash, "xxh64:") {
		t.Errorf("Hash: got %q, want computed fingerprint", entry.Hash)
	}
}

func TestRunFillsCache(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "movie.mkv")
	writeFile(t, target, "first feature")

	fpCache := openTestCache(t)
	cat := openTestCatalog(t)

	runScan(t, Options{Roots: []string{root}, Catalog: cat, Cache: fpCache})

	cached, err := fpCache.Get(target)
	if err != nil {
		t.Fatalf("cache.Get failed: %v", err)
	}
	entry, err := cat.GetByPath(target)
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if cached.Hash != entry.Hash {
		t.Errorf("cached hash %q != catalog hash %q", cached.Hash, entry.Hash)
	}
}

func TestRunArchivesReport(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)

	archive, err := report.New(t.TempDir())
	if err != nil {
		t.Fatalf("report.New failed: %v", err)
	}

	rep := runScan(t, Options{Roots: []string{root}, Catalog: cat, Reports: archive})

	entries, err := archive.List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("archived reports: got %d, want 1", len(entries))
	}
	if entries[0].JobID != rep.JobID {
		t.Errorf("JobID: got %q, want %q", entries[0].JobID, rep.JobID)
	}
	if entries[0].Mode != "scan" {
		t.Errorf("Mode: got %q, want %q", entries[0].Mode, "scan")
	}
	if entries[0].Summary.Found != rep.Found {
		t.Errorf("Summary.Found: got %d, want %d", entries[0].Summary.Found, rep.Found)
	}
}

func TestRunCapturesSnapshot(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)

	runScan(t, Options{Roots: []string{root}, Catalog: cat})

	snaps, err := cat.Snapshots(0)
	if err != nil {
		t.Fatalf("Snapshots failed: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("snapshots: got %d, want 1", len(snaps))
	}
	if snaps[0].TotalFiles != 3 {
		t.Errorf("TotalFiles: got %d, want 3", snaps[0].TotalFiles)
	}
}

func TestRunReportsProgressPhases(t *testing.T) {
	root := newLibrary(t)
	cat := openTestCatalog(t)

	var mu sync.Mutex
	phases := make(map[Phase]bool)

	runScan(t, Options{
		Roots:   []string{root},
		Catalog: cat,
		OnProgress: func(p Progress) {
			mu.Lock()
			phases[p.Phase] = true
			mu.Unlock()
		},
	})

	mu.Lock()
	defer mu.Unlock()
	for _, phase := range []Phase{PhaseDiscover, PhaseHash, PhasePersist} {
		if !phases[phase] {
			t.Errorf("phase %q never reported", phase)
		}
	}
}
