// Package output provides formatters for displaying vidsum scan and
// catalog results in various output formats (pretty, plain, json, yaml, etc.).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vidsum/vidsum/pkg/vidsum/logging"
	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// logger is the package-level logger for output operations.
var logger = logging.Get("output")

// Row contains detailed information about a cataloged or fingerprinted
// file for output formatting. It extends the basic file metadata with
// computed fields like human-readable size for easier formatting.
type Row struct {
	// Path is the absolute path to the file.
	Path string `json:"path" yaml:"path"`

	// Name is the base name of the file.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Dir is the directory containing the file.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Ext is the file extension without the dot (e.g., "mkv").
	Ext string `json:"ext,omitempty" yaml:"ext,omitempty"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable file size (e.g., "1.5 GiB").
	SizeHuman string `json:"size_human" yaml:"size_human"`

	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time,omitempty" yaml:"mod_time,omitempty"`

	// Hash is the partial-content fingerprint
	// (e.g., "xxh64:<first>:<last>:<size>").
	Hash string `json:"hash,omitempty" yaml:"hash,omitempty"`

	// ScannedAt is when the file was last cataloged.
	ScannedAt time.Time `json:"scanned_at,omitempty" yaml:"scanned_at,omitempty"`

	// Status is the catalog scan status ("ok", "error", "missing").
	Status string `json:"status,omitempty" yaml:"status,omitempty"`

	// Error holds the per-file error message, if any.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary contains the outcome counters of a scan job.
type Summary struct {
	// JobID is the UUID assigned to the scan job.
	JobID string `json:"job_id" yaml:"job_id"`

	// Mode is the scan mode ("scan", "full", "verify").
	Mode string `json:"mode" yaml:"mode"`

	// Roots are the library roots that were scanned.
	Roots []string `json:"roots" yaml:"roots"`

	// Found is the total number of matching files discovered.
	Found int `json:"found" yaml:"found"`

	// New is the number of files cataloged for the first time.
	New int `json:"new" yaml:"new"`

	// Updated is the number of previously cataloged files rehashed.
	Updated int `json:"updated" yaml:"updated"`

	// Skipped is the number of up-to-date files left untouched.
	Skipped int `json:"skipped" yaml:"skipped"`

	// Errored is the number of files that failed hashing or stat.
	Errored int `json:"errored" yaml:"errored"`

	// Removed is the number of vanished records pruned from the catalog.
	Removed int `json:"removed" yaml:"removed"`

	// Missing is the number of vanished records marked missing.
	Missing int `json:"missing" yaml:"missing"`

	// Verified is the number of unchanged files rehashed in verify mode.
	Verified int `json:"verified" yaml:"verified"`

	// Mismatched is the number of verified files whose fingerprint drifted.
	Mismatched int `json:"mismatched" yaml:"mismatched"`

	// Duration is the total time taken to complete the scan.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Incremental indicates whether change detection was in effect.
	Incremental bool `json:"incremental" yaml:"incremental"`
}

// Result contains the complete output data for formatting.
// It includes file rows, an optional scan summary, and metadata about
// the operation.
type Result struct {
	// Rows contains the file rows to display.
	Rows []Row `json:"rows" yaml:"rows"`

	// Summary contains scan counters when the result came from a scan.
	Summary *Summary `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Source is the root path (or path list) the result covers.
	Source string `json:"source" yaml:"source"`

	// TotalRows is the total number of rows in the result.
	TotalRows int `json:"total_rows" yaml:"total_rows"`

	// Warnings contains any warning messages generated during the operation.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Interrupted indicates if the operation was interrupted by the user.
	Interrupted bool `json:"interrupted" yaml:"interrupted"`
}

// TotalSize returns the sum of all row sizes in the result.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, row := range r.Rows {
		total += row.Size
	}
	return total
}

// RowFromEntry converts a catalog entry to an output row.
func RowFromEntry(e types.CatalogEntry) Row {
	return Row{
		Path:      e.Path,
		Name:      e.Filename,
		Dir:       e.Directory,
		Ext:       e.Extension,
		Size:      e.Size,
		SizeHuman: e.HumanSize(),
		ModTime:   e.ModTime,
		Hash:      e.Hash,
		ScannedAt: e.ScannedAt,
		Status:    e.Status,
		Error:     e.ScanError,
	}
}

// RowsFromEntries converts catalog entries to output rows.
func RowsFromEntries(entries []types.CatalogEntry) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = RowFromEntry(e)
	}
	return rows
}

// RowFromDiscovered converts a discovered file to an output row.
func RowFromDiscovered(f types.DiscoveredFile) Row {
	return Row{
		Path:      f.Path,
		Name:      filepath.Base(f.Path),
		Dir:       filepath.Dir(f.Path),
		Ext:       strings.TrimPrefix(filepath.Ext(f.Path), "."),
		Size:      f.Size,
		SizeHuman: types.FormatSize(f.Size),
		ModTime:   f.ModTime,
	}
}

// RowsFromDiscovered converts discovered files to output rows.
func RowsFromDiscovered(files []types.DiscoveredFile) []Row {
	rows := make([]Row, len(files))
	for i, f := range files {
		rows[i] = RowFromDiscovered(f)
	}
	return rows
}

// RowFromFingerprint converts a fingerprint result to an output row.
// The file size is recovered from the fingerprint's trailing component.
func RowFromFingerprint(fp types.Fingerprint) Row {
	row := Row{
		Path:  fp.Path,
		Name:  filepath.Base(fp.Path),
		Dir:   filepath.Dir(fp.Path),
		Ext:   strings.TrimPrefix(filepath.Ext(fp.Path), "."),
		Hash:  fp.Hash,
		Error: fp.Err,
	}
	if fp.OK() {
		row.Status = types.StatusOK
		row.Size = sizeFromHash(fp.Hash)
		row.SizeHuman = types.FormatSize(row.Size)
	} else {
		row.Status = types.StatusError
	}
	return row
}

// RowsFromFingerprints converts fingerprint results to output rows.
func RowsFromFingerprints(fps []types.Fingerprint) []Row {
	rows := make([]Row, len(fps))
	for i, fp := range fps {
		rows[i] = RowFromFingerprint(fp)
	}
	return rows
}

// sizeFromHash extracts the size component from a fingerprint string.
// Returns 0 when the string does not carry one.
func sizeFromHash(hash string) int64 {
	idx := strings.LastIndexByte(hash, ':')
	if idx < 0 {
		return 0
	}
	size, err := strconv.ParseInt(hash[idx+1:], 10, 64)
	if err != nil {
		return 0
	}
	return size
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
