package discover

import (
	"context"
	"os"
	"sync"

	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// collectMetadata stats the matched paths on a worker pool. Each slot
// in the result slices is owned by exactly one worker, so no locking is
// needed. Paths whose stat fails are dropped rather than failing the
// walk.
func (w *walker) collectMetadata(ctx context.Context) ([]types.DiscoveredFile, error) {
	results := make([]types.DiscoveredFile, len(w.matched))
	found := make([]bool, len(w.matched))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range w.opts.StatWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], found[i] = statFile(w.matched[i])
			}
		}()
	}

feed:
	for i := range w.matched {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files := make([]types.DiscoveredFile, 0, len(w.matched))
	for i, ok := range found {
		if ok {
			files = append(files, results[i])
		}
	}
	return files, nil
}

// statFile builds the descriptor for one matched path.
func statFile(path string) (types.DiscoveredFile, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return types.DiscoveredFile{}, false
	}
	return types.DiscoveredFile{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, true
}
