package fingerprint

import (
	"github.com/vidsum/vidsum/pkg/vidsum/config"
)

// Options configures a HashAll run.
type Options struct {
	// Workers is the number of concurrent workers hashing within a
	// batch.
	Workers int

	// OnProgress is called after each batch with the number of paths
	// processed so far, the total, and the paths-per-second rate. It
	// runs on the coordinating goroutine, never concurrently with
	// itself.
	OnProgress func(processed, total int, rate float64)
}

// Validate checks the options and applies defaults for unset values.
func (o *Options) Validate() error {
	if o.Workers < 1 {
		o.Workers = config.DefaultHashWorkers
	}
	return nil
}
