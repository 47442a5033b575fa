package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewRotatingWriterCreatesDirs(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "dir", "vidsum.log")

	w, err := NewRotatingWriter(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file should exist: %v", err)
	}
}

func TestRotatingWriterWrite(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "vidsum.log")

	w, err := NewRotatingWriter(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}

	msg := []byte("hello log\n")
	n, err := w.Write(msg)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len(msg) {
		t.Errorf("Write() = %d, want %d", n, len(msg))
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if string(content) != "hello log\n" {
		t.Errorf("log content = %q", content)
	}
}

func TestRotatingWriterSizeRotation(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "vidsum.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 64})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	line := strings.Repeat("x", 30) + "\n"
	for range 5 {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}

	rotated := 0
	for _, e := range entries {
		if e.Name() != "vidsum.log" && strings.HasPrefix(e.Name(), "vidsum.") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Error("expected at least one rotated file")
	}

	// The active file stays under the size cap.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() > 64 {
		t.Errorf("active log size = %d, want <= 64", info.Size())
	}
}

func TestRotatingWriterMaxBackups(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "vidsum.log")

	// Seed rotated files with distinct mtimes.
	for i := range 5 {
		name := fmt.Sprintf("vidsum.2026-01-0%d-120000.log", i+1)
		rotatedPath := filepath.Join(tempDir, name)
		if err := os.WriteFile(rotatedPath, []byte("old"), 0o644); err != nil {
			t.Fatalf("failed to seed rotated file: %v", err)
		}
		mtime := time.Now().Add(-time.Duration(5-i) * time.Hour)
		if err := os.Chtimes(rotatedPath, mtime, mtime); err != nil {
			t.Fatalf("failed to set mtime: %v", err)
		}
	}

	w, err := NewRotatingWriter(path, RotationConfig{MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}

	rotated := 0
	for _, e := range entries {
		if e.Name() != "vidsum.log" {
			rotated++
		}
	}
	if rotated != 2 {
		t.Errorf("rotated files after cleanup = %d, want 2", rotated)
	}
}

func TestRotatingWriterMaxAge(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "vidsum.log")

	old := filepath.Join(tempDir, "vidsum.2025-01-01-120000.log")
	if err := os.WriteFile(old, []byte("ancient"), 0o644); err != nil {
		t.Fatalf("failed to seed rotated file: %v", err)
	}
	mtime := time.Now().Add(-40 * 24 * time.Hour)
	if err := os.Chtimes(old, mtime, mtime); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}

	recent := filepath.Join(tempDir, "vidsum.2026-08-01-120000.log")
	if err := os.WriteFile(recent, []byte("recent"), 0o644); err != nil {
		t.Fatalf("failed to seed rotated file: %v", err)
	}

	w, err := NewRotatingWriter(path, RotationConfig{MaxAge: 30})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("file older than MaxAge should be removed")
	}
	if _, err := os.Stat(recent); err != nil {
		t.Error("recent rotated file should be kept")
	}
}

func TestDefaultRotationConfig(t *testing.T) {
	cfg := DefaultRotationConfig()
	if cfg.MaxSize != 10*1024*1024 {
		t.Errorf("MaxSize = %d, want 10 MiB", cfg.MaxSize)
	}
	if cfg.MaxAge != 30 {
		t.Errorf("MaxAge = %d, want 30", cfg.MaxAge)
	}
	if cfg.MaxBackups != 5 {
		t.Errorf("MaxBackups = %d, want 5", cfg.MaxBackups)
	}
	if !cfg.Daily {
		t.Error("Daily should default to true")
	}
}
