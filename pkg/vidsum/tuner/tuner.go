// Package tuner sizes the stat and hash worker pools from detected
// system resources. Detection is best-effort: when a platform call
// fails, conservative defaults stand in so a scan can always start.
package tuner

import "runtime"

// fallbackRAM is assumed when the platform reports nothing usable.
const fallbackRAM = 8 * 1024 * 1024 * 1024

// SystemResources describes the hardware figures worker sizing runs on.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// TotalRAM is the total physical RAM in bytes.
	TotalRAM int64

	// AvailableRAM is an estimate of the RAM free for new work.
	AvailableRAM int64
}

// fallbackResources returns the figures used when detection fails.
func fallbackResources() SystemResources {
	return SystemResources{
		CPUCores:     runtime.NumCPU(),
		TotalRAM:     fallbackRAM,
		AvailableRAM: fallbackRAM / 2,
	}
}
