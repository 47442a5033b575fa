package cache

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// openTestCache opens a cache in a test-scoped temp directory.
func openTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return c
}

func TestOpenClose(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestGetPut(t *testing.T) {
	c := openTestCache(t)

	entry := &Entry{
		Size:  4096,
		Mtime: time.Now().UnixNano(),
		Hash:  "xxh64:00000000075bcd15:00000000075bcd15:4096",
	}

	if err := c.Put("/media/movies/heat.mkv", entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := c.Get("/media/movies/heat.mkv")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Size != entry.Size {
		t.Errorf("Size = %d, want %d", got.Size, entry.Size)
	}
	if got.Mtime != entry.Mtime {
		t.Errorf("Mtime = %d, want %d", got.Mtime, entry.Mtime)
	}
	if got.Hash != entry.Hash {
		t.Errorf("Hash = %q, want %q", got.Hash, entry.Hash)
	}
}

func TestGetNotFound(t *testing.T) {
	c := openTestCache(t)

	_, err := c.Get("/nonexistent/path.mkv")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	c := openTestCache(t)

	modTime := time.Now()
	entry := &Entry{
		Size:  1024,
		Mtime: modTime.UnixNano(),
		Hash:  "xxh64:0000000000000001:0000000000000002:1024",
	}
	if err := c.Put("/lib/a.mkv", entry); err != nil {
		t.Fatal(err)
	}

	t.Run("valid entry reused", func(t *testing.T) {
		hash, ok := c.Lookup("/lib/a.mkv", 1024, modTime)
		if !ok {
			t.Fatal("Lookup returned ok = false, want true")
		}
		if hash != entry.Hash {
			t.Errorf("hash = %q, want %q", hash, entry.Hash)
		}
	})

	t.Run("size mismatch rejected", func(t *testing.T) {
		if _, ok := c.Lookup("/lib/a.mkv", 2048, modTime); ok {
			t.Error("Lookup accepted entry with changed size")
		}
	})

	t.Run("mtime mismatch rejected", func(t *testing.T) {
		if _, ok := c.Lookup("/lib/a.mkv", 1024, modTime.Add(time.Nanosecond)); ok {
			t.Error("Lookup accepted entry with changed mtime")
		}
	})

	t.Run("unknown path rejected", func(t *testing.T) {
		if _, ok := c.Lookup("/lib/unknown.mkv", 1024, modTime); ok {
			t.Error("Lookup accepted unknown path")
		}
	})
}

func TestPutBatch(t *testing.T) {
	c := openTestCache(t)

	entries := make(map[string]*Entry)
	for i := range 25 {
		path := fmt.Sprintf("/lib/file%02d.mkv", i)
		entries[path] = &Entry{
			Size:  int64(i) * 100,
			Mtime: int64(i),
			Hash:  fmt.Sprintf("xxh64:%016x:%016x:%d", i, i, i*100),
		}
	}

	if err := c.PutBatch(entries); err != nil {
		t.Fatalf("PutBatch failed: %v", err)
	}

	count, err := c.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 25 {
		t.Errorf("Count = %d, want 25", count)
	}

	got, err := c.Get("/lib/file07.mkv")
	if err != nil {
		t.Fatalf("Get after PutBatch failed: %v", err)
	}
	if got.Size != 700 {
		t.Errorf("Size = %d, want 700", got.Size)
	}
}

func TestDelete(t *testing.T) {
	c := openTestCache(t)

	entry := &Entry{Size: 100, Mtime: time.Now().UnixNano(), Hash: "h"}
	if err := c.Put("/lib/gone.mkv", entry); err != nil {
		t.Fatal(err)
	}

	if err := c.Delete("/lib/gone.mkv"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := c.Get("/lib/gone.mkv")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestClear(t *testing.T) {
	c := openTestCache(t)

	paths := []string{
		"/media/movies/a.mkv",
		"/media/movies/sub/b.mkv",
		"/media/shows/c.mkv",
	}
	for i, p := range paths {
		if err := c.Put(p, &Entry{Size: int64(i), Hash: "h"}); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Clear("/media/movies"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	for _, p := range paths[:2] {
		if _, err := c.Get(p); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) = %v, want ErrNotFound", p, err)
		}
	}

	// Sibling tree untouched
	if _, err := c.Get("/media/shows/c.mkv"); err != nil {
		t.Errorf("Get(shows entry) failed: %v", err)
	}
}

func TestClearAll(t *testing.T) {
	c := openTestCache(t)

	for i := range 10 {
		path := fmt.Sprintf("/lib%d/file.mkv", i)
		if err := c.Put(path, &Entry{Size: int64(i), Hash: "h"}); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	count, err := c.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Count after ClearAll = %d, want 0", count)
	}
}

func TestEntryValid(t *testing.T) {
	now := time.Now()
	entry := &Entry{Size: 4096, Mtime: now.UnixNano(), Hash: "h"}

	if !entry.Valid(4096, now) {
		t.Error("Valid = false for identical size and mtime")
	}
	if entry.Valid(4097, now) {
		t.Error("Valid = true for changed size")
	}
	if entry.Valid(4096, now.Add(time.Nanosecond)) {
		t.Error("Valid = true for changed mtime")
	}
}

func TestEntryEncodeDecode(t *testing.T) {
	entry := &Entry{Size: 12345, Mtime: 67890, Hash: "xxh64:aa:bb:12345"}

	data, err := entry.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var got Entry
	if err := got.Decode(data); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got != *entry {
		t.Errorf("roundtrip = %+v, want %+v", got, *entry)
	}
}
