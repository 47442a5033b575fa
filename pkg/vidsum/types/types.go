// Package types provides core data types for the vidsum video library
// scanner: the file descriptor produced by discovery, the fingerprint
// result produced by hashing, catalog entries, and helpers for parsing
// and formatting file sizes.
package types

import "time"

// DiscoveredFile describes a file that passed discovery filtering.
// Instances are immutable once created; ownership transfers wholesale
// to the caller of the walker.
type DiscoveredFile struct {
	// Path is the path to the file as encountered during traversal.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// ModTime is the last modification time of the file. The zero time
	// means the operating system did not report one.
	ModTime time.Time `json:"modified"`
}

// HumanSize returns the file size formatted as a human-readable string.
// It uses binary (IEC) units (KiB, MiB, GiB, TiB).
func (f *DiscoveredFile) HumanSize() string {
	return FormatSize(f.Size)
}

// ModSeconds returns the modification time as fractional seconds since
// the Unix epoch, or 0 when the time is unset.
func (f *DiscoveredFile) ModSeconds() float64 {
	if f.ModTime.IsZero() {
		return 0
	}
	return float64(f.ModTime.UnixNano()) / float64(time.Second)
}

// Fingerprint is the per-path outcome of partial-content hashing.
// Exactly one of Hash and Err is set for every input path; hashing
// never drops a path and never reports both.
type Fingerprint struct {
	// Path is the input path, echoed back verbatim.
	Path string `json:"path"`

	// Hash is the fingerprint string in the canonical
	// "xxh64:<first>:<last>:<size>" form; empty when Err is set.
	Hash string `json:"hash,omitempty"`

	// Err is the failure message for this path; empty when Hash is set.
	Err string `json:"error,omitempty"`
}

// OK reports whether the fingerprint was computed successfully.
func (f *Fingerprint) OK() bool {
	return f.Err == ""
}
