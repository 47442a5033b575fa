package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when no archived report matches the job ID.
var ErrNotFound = errors.New("report not found")

// Archive manages scan report persistence on the filesystem.
type Archive struct {
	dir string
	mu  sync.Mutex
}

// New creates a new Archive with the given directory.
// The directory is not created until EnsureDir is called.
func New(dir string) (*Archive, error) {
	if dir == "" {
		return nil, errors.New("report directory cannot be empty")
	}
	return &Archive{dir: dir}, nil
}

// EnsureDir creates the report directory if it does not exist.
func (a *Archive) EnsureDir() error {
	return os.MkdirAll(a.dir, 0o755)
}

// Write persists a report entry as <job-id>.json.
// A zero Timestamp is set to the current time.
func (a *Archive) Write(entry *Entry) error {
	if entry.JobID == "" {
		return errors.New("report entry has no job ID")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := a.writeEntry(entry); err != nil {
		return fmt.Errorf("failed to write report entry: %w", err)
	}
	return nil
}

// writeEntry writes an entry to a JSON file in the report directory.
func (a *Archive) writeEntry(entry *Entry) error {
	filePath := filepath.Join(a.dir, entryFilename(entry.JobID))

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	// Write atomically using a temp file and rename
	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		// Cleanup temp file on rename failure
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// entryFilename generates a filename for a report based on its job ID.
func entryFilename(jobID string) string {
	return fmt.Sprintf("%s.json", jobID)
}

// List returns all report entries sorted by timestamp descending (newest first).
// If limit is 0 or negative, all entries are returned.
func (a *Archive) List(limit int) ([]Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	files, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read report directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		entry, err := a.readEntryFile(f.Name())
		if err != nil {
			// Skip files that can't be parsed
			continue
		}
		entries = append(entries, *entry)
	}

	// Sort by timestamp descending (newest first)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	// Apply limit
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	// Ensure we return an empty slice, not nil
	if entries == nil {
		entries = []Entry{}
	}

	return entries, nil
}

// Get retrieves a specific report by job ID.
func (a *Archive) Get(jobID string) (*Entry, error) {
	if jobID == "" {
		return nil, errors.New("job ID cannot be empty")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	entry, err := a.readEntryFile(entryFilename(jobID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, jobID)
		}
		return nil, err
	}
	return entry, nil
}

// readEntryFile reads and parses a report entry from a JSON file.
func (a *Archive) readEntryFile(filename string) (*Entry, error) {
	filePath := filepath.Join(a.dir, filename)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	return &entry, nil
}

// Cleanup removes reports older than retentionDays.
// It returns the number of reports removed.
func (a *Archive) Cleanup(retentionDays int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read report directory: %w", err)
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		info, err := f.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(a.dir, f.Name())); err != nil {
				continue
			}
			removed++
		}
	}

	return removed, nil
}
