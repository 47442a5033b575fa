// Package cache provides a persistent fingerprint cache backed by Badger.
// Entries are keyed by absolute file path and remember the size and
// modification time the fingerprint was computed against, so a hash can be
// reused only while the file is provably unchanged.
package cache

import (
	"bytes"
	"encoding/gob"
	"path/filepath"
	"time"
)

// Version is incremented when the cache format changes.
const Version = 1

// Entry is a cached fingerprint for a single file.
type Entry struct {
	Size  int64  // File size in bytes when hashed
	Mtime int64  // Modification time as UnixNano when hashed
	Hash  string // Fingerprint string
}

// Valid reports whether the cached fingerprint still applies to a file
// with the given size and modification time. Mtime is compared at full
// nanosecond precision; content identity gets no slack.
func (e *Entry) Valid(size int64, modTime time.Time) bool {
	return e.Size == size && e.Mtime == modTime.UnixNano()
}

// Encode serializes the entry to bytes using gob.
func (e *Entry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes into the entry using gob.
func (e *Entry) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// makeKey creates a cache key for a file path.
func makeKey(path string) []byte {
	return []byte(path)
}

// makePrefix returns the key prefix covering every path under dir.
func makePrefix(dir string) []byte {
	if dir == "" {
		return []byte{}
	}
	return []byte(filepath.Clean(dir) + string(filepath.Separator))
}
