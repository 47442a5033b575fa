// Package progress provides the batching and rate-tracking primitives
// shared by the discovery walker and the partial hasher. Work is split
// into fixed-size batches so cancellation checks and progress callbacks
// can be interleaved between parallel sub-units of work without adding
// per-item overhead.
package progress

import (
	"context"
	"time"
)

// BatchSize is the reporting granularity: the walker reports every
// BatchSize matches and the hasher processes inputs in batches of
// BatchSize paths. Cancellation is only observed at these boundaries,
// which bounds the latency between a cancel request and the operation
// observably stopping to roughly one batch's duration.
const BatchSize = 100

// RatePerSecond computes an items-per-second rate. A non-positive
// elapsed time reports 0 rather than dividing by zero.
func RatePerSecond(n int, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(n) / secs
}

// Tracker computes throughput from a wall-clock start time. It is
// recomputed at each report point and never persisted.
type Tracker struct {
	start time.Time
}

// NewTracker starts a tracker at the current time.
func NewTracker() *Tracker {
	return &Tracker{start: time.Now()}
}

// Elapsed returns the wall-clock time since the tracker started.
func (t *Tracker) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Rate returns the items-per-second rate for n items completed since
// the tracker started.
func (t *Tracker) Rate(n int) float64 {
	return RatePerSecond(n, t.Elapsed())
}

// Batches invokes fn with successive [start, end) index ranges of
// length BatchSize over n items; the final range may be shorter. The
// context is checked before every batch, including the first, and its
// error is returned as soon as cancellation is observed. Work in
// flight within a batch is never preempted.
func Batches(ctx context.Context, n int, fn func(start, end int) error) error {
	for start := 0; start < n; start += BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+BatchSize, n)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}
