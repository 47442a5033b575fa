package fingerprint

import (
	"context"
	"sync"

	"github.com/vidsum/vidsum/pkg/vidsum/progress"
	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// HashAll fingerprints every path and returns exactly one outcome per
// input, in input order: either a hash or a per-path error message.
// Per-path failures never fail the call.
//
// Paths are processed in batches so cancellation can be observed
// between them; on cancellation HashAll returns the results accumulated
// for completed batches along with ctx.Err().
func HashAll(ctx context.Context, paths []string, opts Options) ([]types.Fingerprint, error) {
	_ = opts.Validate()

	results := make([]types.Fingerprint, len(paths))
	tracker := progress.NewTracker()

	processed := 0
	err := progress.Batches(ctx, len(paths), func(start, end int) error {
		hashBatch(paths, results, start, end, opts.Workers)
		processed = end
		if opts.OnProgress != nil {
			opts.OnProgress(processed, len(paths), tracker.Rate(processed))
		}
		return nil
	})
	if err != nil {
		return results[:processed], err
	}
	return results, nil
}

// hashBatch fingerprints paths[start:end] in parallel. Each worker owns
// the result slot for the index it draws, so no locking is needed.
func hashBatch(paths []string, results []types.Fingerprint, start, end, workers int) {
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range min(workers, end-start) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = fingerprintPath(paths[i])
			}
		}()
	}

	for i := start; i < end; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// fingerprintPath produces the single outcome for one path.
func fingerprintPath(path string) types.Fingerprint {
	hash, err := Compute(path)
	if err != nil {
		return types.Fingerprint{Path: path, Err: err.Error()}
	}
	return types.Fingerprint{Path: path, Hash: hash}
}
