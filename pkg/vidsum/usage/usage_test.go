package usage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// setupSurveyTree creates a small mixed tree:
//
//	root/
//	  movie.mkv        (1024)
//	  episode.MP4      (2048)
//	  notes.txt        (100)
//	  cover.jpg        (300)
//	  shows/
//	    pilot.mkv      (4096)
//	    pilot.srt      (50)
//	  empty/
func setupSurveyTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	for _, dir := range []string{
		filepath.Join(root, "shows"),
		filepath.Join(root, "empty"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create dir %s: %v", dir, err)
		}
	}

	files := []struct {
		path string
		size int64
	}{
		{filepath.Join(root, "movie.mkv"), 1024},
		{filepath.Join(root, "episode.MP4"), 2048},
		{filepath.Join(root, "notes.txt"), 100},
		{filepath.Join(root, "cover.jpg"), 300},
		{filepath.Join(root, "shows", "pilot.mkv"), 4096},
		{filepath.Join(root, "shows", "pilot.srt"), 50},
	}
	for _, f := range files {
		if err := createFileOfSize(f.path, f.size); err != nil {
			t.Fatalf("failed to create file %s: %v", f.path, err)
		}
	}

	return root
}

// createFileOfSize creates a file with the specified size.
func createFileOfSize(path string, size int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if size > 0 {
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return err
		}
	}
	return f.Close()
}

// TestSurvey verifies bucket totals across a mixed tree.
func TestSurvey(t *testing.T) {
	root := setupSurveyTree(t)

	result, err := Survey(context.Background(), root, []string{"mkv", "mp4"})
	if err != nil {
		t.Fatalf("Survey failed: %v", err)
	}

	if result.TotalFiles != 6 {
		t.Errorf("TotalFiles: got %d, want 6", result.TotalFiles)
	}
	wantTotal := int64(1024 + 2048 + 100 + 300 + 4096 + 50)
	if result.TotalBytes != wantTotal {
		t.Errorf("TotalBytes: got %d, want %d", result.TotalBytes, wantTotal)
	}

	// root, shows, empty.
	if result.Dirs != 3 {
		t.Errorf("Dirs: got %d, want 3", result.Dirs)
	}

	if result.OtherFiles != 3 {
		t.Errorf("OtherFiles: got %d, want 3", result.OtherFiles)
	}
	if result.OtherBytes != 100+300+50 {
		t.Errorf("OtherBytes: got %d, want %d", result.OtherBytes, 100+300+50)
	}

	mkv := result.ByExtension["mkv"]
	if mkv.Files != 2 || mkv.Bytes != 1024+4096 {
		t.Errorf("mkv bucket: got %+v, want {Files:2 Bytes:%d}", mkv, 1024+4096)
	}

	// Uppercase extension folds into the lowered bucket.
	mp4 := result.ByExtension["mp4"]
	if mp4.Files != 1 || mp4.Bytes != 2048 {
		t.Errorf("mp4 bucket: got %+v, want {Files:1 Bytes:2048}", mp4)
	}

	if result.Errored != 0 {
		t.Errorf("Errored: got %d, want 0", result.Errored)
	}
}

// TestSurveyMatchedTotals verifies the matched aggregate helpers.
func TestSurveyMatchedTotals(t *testing.T) {
	root := setupSurveyTree(t)

	result, err := Survey(context.Background(), root, []string{"mkv", "mp4"})
	if err != nil {
		t.Fatalf("Survey failed: %v", err)
	}

	if got := result.MatchedFiles(); got != 3 {
		t.Errorf("MatchedFiles: got %d, want 3", got)
	}
	wantBytes := int64(1024 + 2048 + 4096)
	if got := result.MatchedBytes(); got != wantBytes {
		t.Errorf("MatchedBytes: got %d, want %d", got, wantBytes)
	}

	// Matched plus other covers every file seen.
	if result.MatchedFiles()+result.OtherFiles != result.TotalFiles {
		t.Errorf("matched+other != total: %d+%d != %d",
			result.MatchedFiles(), result.OtherFiles, result.TotalFiles)
	}
	if result.MatchedBytes()+result.OtherBytes != result.TotalBytes {
		t.Errorf("matched+other bytes != total: %d+%d != %d",
			result.MatchedBytes(), result.OtherBytes, result.TotalBytes)
	}
}

// TestSurveyNoExtensions verifies everything lands in the other bucket.
func TestSurveyNoExtensions(t *testing.T) {
	root := setupSurveyTree(t)

	result, err := Survey(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("Survey failed: %v", err)
	}

	if result.OtherFiles != result.TotalFiles {
		t.Errorf("OtherFiles: got %d, want %d", result.OtherFiles, result.TotalFiles)
	}
	if len(result.ByExtension) != 0 {
		t.Errorf("ByExtension: got %d buckets, want 0", len(result.ByExtension))
	}
}

// TestSurveyNonExistentRoot verifies a missing root fails.
func TestSurveyNonExistentRoot(t *testing.T) {
	_, err := Survey(context.Background(), "/nonexistent/path/xyz", []string{"mkv"})
	if err == nil {
		t.Fatal("expected error for non-existent root")
	}
}

// TestSurveyFileRoot verifies a file root fails.
func TestSurveyFileRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "movie.mkv")
	if err := createFileOfSize(file, 10); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	_, err := Survey(context.Background(), file, []string{"mkv"})
	if err == nil {
		t.Fatal("expected error for file root")
	}
}

// TestSurveyCancelled verifies a cancelled context aborts the walk.
func TestSurveyCancelled(t *testing.T) {
	root := setupSurveyTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Survey(ctx, root, []string{"mkv"})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestSurveySymlinksNotFollowed verifies symlinked trees are not descended.
func TestSurveySymlinksNotFollowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks not reliable on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	if err := createFileOfSize(filepath.Join(outside, "remote.mkv"), 512); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}
	if err := createFileOfSize(filepath.Join(root, "local.mkv"), 128); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	result, err := Survey(context.Background(), root, []string{"mkv"})
	if err != nil {
		t.Fatalf("Survey failed: %v", err)
	}

	if result.TotalFiles != 1 {
		t.Errorf("TotalFiles: got %d, want 1 (symlink target counted)", result.TotalFiles)
	}
	if result.TotalBytes != 128 {
		t.Errorf("TotalBytes: got %d, want 128", result.TotalBytes)
	}
}
