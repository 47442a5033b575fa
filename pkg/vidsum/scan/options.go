// Package scan orchestrates library scans end to end: discovery,
// incremental change detection, fingerprinting, missing-file handling,
// catalog persistence, and report archiving.
package scan

import (
	"errors"

	"github.com/vidsum/vidsum/pkg/vidsum/cache"
	"github.com/vidsum/vidsum/pkg/vidsum/catalog"
	"github.com/vidsum/vidsum/pkg/vidsum/config"
	"github.com/vidsum/vidsum/pkg/vidsum/report"
)

// Phase identifies the stage of a running scan for progress reporting.
type Phase string

const (
	// PhaseDiscover covers the directory walk.
	PhaseDiscover Phase = "discover"

	// PhaseHash covers fingerprinting of changed files.
	PhaseHash Phase = "hash"

	// PhaseVerify covers the rehash pass over unchanged files.
	PhaseVerify Phase = "verify"

	// PhasePersist covers catalog writes.
	PhasePersist Phase = "persist"
)

// Progress is a point-in-time snapshot of a running scan.
type Progress struct {
	// Phase is the stage currently executing.
	Phase Phase

	// Found is the number of files discovered so far.
	Found int

	// Done is the number of items completed in the current phase.
	Done int

	// Total is the number of items the current phase will process.
	// Zero while discovery is still counting.
	Total int

	// Rate is the items-per-second rate of the current phase.
	Rate float64

	// New, Updated, Skipped, and Errored mirror the report counters at
	// the time of the snapshot. Skipped settles before hashing starts;
	// the others climb as batches persist.
	New     int
	Updated int
	Skipped int
	Errored int
}

// Options configures a scan job.
type Options struct {
	// Roots are the library directories to scan.
	Roots []string

	// Extensions are the file extensions treated as library files.
	Extensions []string

	// FollowSymlinks enables following symlinked directories during
	// discovery.
	FollowSymlinks bool

	// StatWorkers is the number of concurrent stat workers for discovery.
	StatWorkers int

	// HashWorkers is the number of concurrent fingerprint workers.
	HashWorkers int

	// Full forces rehashing of every discovered file regardless of
	// catalog state.
	Full bool

	// Prune deletes catalog records of vanished files instead of
	// marking them missing.
	Prune bool

	// Verify rehashes unchanged files and flags fingerprint drift.
	// Ignored when Full is set, since Full rehashes everything anyway.
	Verify bool

	// ExplicitRoot marks a root given on the command line rather than
	// taken from config. Discovery errors then abort the scan instead
	// of being recorded per root.
	ExplicitRoot bool

	// Catalog receives scan results. Required.
	Catalog *catalog.Catalog

	// Cache is an optional fingerprint cache. If nil, caching is
	// disabled.
	Cache *cache.Cache

	// Reports is an optional report archive. If nil, no report file is
	// written.
	Reports *report.Archive

	// OnProgress is called with progress snapshots as the scan runs.
	// It must be safe to call from multiple goroutines.
	OnProgress func(Progress)
}

// Validate checks required fields and applies defaults.
func (o *Options) Validate() error {
	if len(o.Roots) == 0 {
		return errors.New("no library roots configured")
	}
	if o.Catalog == nil {
		return errors.New("catalog is required")
	}
	if len(o.Extensions) == 0 {
		o.Extensions = config.DefaultExtensions
	}
	if o.StatWorkers < 1 {
		o.StatWorkers = config.DefaultStatWorkers
	}
	if o.HashWorkers < 1 {
		o.HashWorkers = config.DefaultHashWorkers
	}
	return nil
}
