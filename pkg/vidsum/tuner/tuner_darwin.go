//go:build darwin

package tuner

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect reads CPU and memory figures for worker sizing. Total memory
// comes from the hw.memsize sysctl; available memory is estimated at
// half of total, since a precise figure would need host_statistics and
// worker sizing only needs a rough one.
func Detect() SystemResources {
	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return fallbackResources()
	}

	total := int64(memsize)
	return SystemResources{
		CPUCores:     runtime.NumCPU(),
		TotalRAM:     total,
		AvailableRAM: total / 2,
	}
}
