//go:build !darwin && !linux

package tuner

// Detect returns the fallback figures on platforms without a memory
// detection path. CPU cores are still real.
func Detect() SystemResources {
	return fallbackResources()
}
