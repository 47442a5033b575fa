package scan

import (
	"time"

	"github.com/vidsum/vidsum/pkg/vidsum/report"
)

// Report summarizes one scan job.
type Report struct {
	// JobID is the UUID assigned to this scan.
	JobID string

	// Started is when the scan began, in UTC.
	Started time.Time

	// Elapsed is the total wall time of the scan.
	Elapsed time.Duration

	// Roots are the library directories that were scanned.
	Roots []string

	// Mode is "scan", "full", or "verify".
	Mode string

	// Found is the number of library files discovered on disk.
	Found int

	// New is the number of files persisted that had no catalog record.
	New int

	// Updated is the number of files persisted over an existing record.
	Updated int

	// Skipped is the number of up-to-date files left untouched.
	Skipped int

	// Errored is the number of files persisted with a fingerprint error.
	Errored int

	// Removed is the number of vanished files pruned from the catalog.
	Removed int

	// Missing is the number of vanished files marked missing.
	Missing int

	// Verified is the number of unchanged files whose fingerprint was
	// confirmed in verify mode.
	Verified int

	// Mismatched is the number of unchanged files whose fingerprint
	// drifted in verify mode.
	Mismatched int

	// Interrupted reports that the scan was cancelled and the catalog
	// holds a partial result.
	Interrupted bool

	// Incremental reports that unchanged files were skipped rather
	// than rehashed.
	Incremental bool

	// Errors holds per-path failures: unreadable roots and files whose
	// fingerprint could not be computed.
	Errors []report.ScanError
}

// Processed returns the number of files persisted this scan.
func (r *Report) Processed() int {
	return r.New + r.Updated
}

// archiveEntry converts the report to its archive form.
func (r *Report) archiveEntry() *report.Entry {
	return &report.Entry{
		JobID:     r.JobID,
		Timestamp: r.Started,
		Mode:      r.Mode,
		Roots:     r.Roots,
		Summary: report.Summary{
			Found:          r.Found,
			New:            r.New,
			Updated:        r.Updated,
			Skipped:        r.Skipped,
			Errored:        r.Errored,
			Removed:        r.Removed,
			Missing:        r.Missing,
			Verified:       r.Verified,
			Mismatched:     r.Mismatched,
			ElapsedSeconds: r.Elapsed.Seconds(),
			Interrupted:    r.Interrupted,
			Incremental:    r.Incremental,
		},
		Errors: r.Errors,
	}
}
