// Package discover implements media file discovery for the vidsum video
// library scanner. The filtering traversal is single-threaded because
// hidden-directory pruning and symlink cycle bookkeeping must observe
// each directory exactly once; metadata collection for the matched
// paths runs afterwards on a worker pool.
package discover

import (
	"github.com/vidsum/vidsum/pkg/vidsum/config"
)

// Options configures a discovery walk.
type Options struct {
	// Extensions lists the file extensions to match, compared
	// case-insensitively and without leading dots. Files whose
	// extension is not in the set never match, nor do files without
	// an extension. An empty set matches nothing.
	Extensions []string

	// FollowSymlinks enables descending into symlinked directories.
	// Cycle protection via canonical path tracking applies only when
	// this is set; a walk that never follows links cannot loop.
	FollowSymlinks bool

	// StatWorkers is the number of concurrent workers for the metadata
	// collection phase. More workers help on storage with high latency.
	StatWorkers int

	// OnProgress is called with the running match count and the
	// matches-per-second rate each time the count crosses the reporting
	// granularity, and once more after traversal if the final count was
	// not already reported, so a walk with no matches still reports its
	// zero count once. It runs on the walking goroutine, never
	// concurrently with itself.
	OnProgress func(found int, rate float64)
}

// Validate checks the options and applies defaults for unset values.
func (o *Options) Validate() error {
	if o.StatWorkers < 1 {
		o.StatWorkers = config.DefaultStatWorkers
	}
	return nil
}
