package types

import (
	"path/filepath"
	"strings"
	"time"
)

// Scan status values recorded in the catalog for each file.
const (
	// StatusOK means the file was fingerprinted successfully.
	StatusOK = "ok"

	// StatusError means fingerprinting failed; ScanError holds the message.
	StatusError = "error"

	// StatusMissing means the file was present in an earlier scan but was
	// not found by the most recent one.
	StatusMissing = "missing"
)

// CatalogEntry is a single file record in the catalog database.
type CatalogEntry struct {
	// Path is the absolute file path and the unique key for the entry.
	Path string `json:"path"`

	// Filename is the base name of the file.
	Filename string `json:"filename"`

	// Directory is the parent directory of the file.
	Directory string `json:"directory"`

	// Extension is the lowercase file extension without the leading dot.
	Extension string `json:"extension"`

	// Size is the file size in bytes at scan time.
	Size int64 `json:"size"`

	// ModTime is the file modification time at scan time.
	ModTime time.Time `json:"modified"`

	// Hash is the content fingerprint, empty when Status is not "ok".
	Hash string `json:"hash,omitempty"`

	// ScannedAt is when the entry was last written by a scan.
	ScannedAt time.Time `json:"scanned_at"`

	// Status is one of StatusOK, StatusError, or StatusMissing.
	Status string `json:"status"`

	// ScanError holds the failure message when Status is StatusError.
	ScanError string `json:"scan_error,omitempty"`

	// JobID identifies the scan job that last touched this entry.
	JobID string `json:"job_id,omitempty"`
}

// NewCatalogEntry builds an entry for path, deriving the filename,
// directory, and extension fields from it.
func NewCatalogEntry(path string) CatalogEntry {
	ext := filepath.Ext(path)
	if ext != "" {
		ext = strings.ToLower(ext[1:])
	}
	return CatalogEntry{
		Path:      path,
		Filename:  filepath.Base(path),
		Directory: filepath.Dir(path),
		Extension: ext,
	}
}

// HumanSize returns the entry size formatted as a human-readable string.
func (e *CatalogEntry) HumanSize() string {
	return FormatSize(e.Size)
}

// UpToDate reports whether the stored metadata still matches the given
// size and modification time. Times are compared at second precision so
// filesystems with coarser timestamps do not force rescans.
func (e *CatalogEntry) UpToDate(size int64, modTime time.Time) bool {
	return e.Size == size && e.ModTime.Unix() == modTime.Unix()
}
