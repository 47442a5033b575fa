// Package report provides a JSON archive of scan reports, one file per job.
package report

import "time"

// Entry represents a single archived scan report.
type Entry struct {
	JobID     string      `json:"job_id"`
	Timestamp time.Time   `json:"timestamp"`
	Mode      string      `json:"mode"`
	Roots     []string    `json:"roots"`
	Summary   Summary     `json:"summary"`
	Errors    []ScanError `json:"errors,omitempty"`
}

// Summary contains the outcome counters of a scan job.
type Summary struct {
	Found          int     `json:"found"`
	New            int     `json:"new"`
	Updated        int     `json:"updated"`
	Skipped        int     `json:"skipped"`
	Errored        int     `json:"errored"`
	Removed        int     `json:"removed"`
	Missing        int     `json:"missing"`
	Verified       int     `json:"verified"`
	Mismatched     int     `json:"mismatched"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Interrupted    bool    `json:"interrupted"`
	Incremental    bool    `json:"incremental"`
}

// ScanError records a per-path failure encountered during a scan.
type ScanError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}
