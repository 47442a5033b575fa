//go:build linux

package tuner

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect reads CPU and memory figures for worker sizing. Memory comes
// from sysinfo(2); the fallback figures stand in when the call fails.
func Detect() SystemResources {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return fallbackResources()
	}

	unit := max(int64(info.Unit), 1)
	total := int64(info.Totalram) * unit
	free := int64(info.Freeram) * unit

	// Freeram understates what the kernel will actually hand out since
	// page cache is reclaimable. Floor at half of total to keep worker
	// sizing stable on busy systems.
	free = max(free, total/2)

	return SystemResources{
		CPUCores:     runtime.NumCPU(),
		TotalRAM:     total,
		AvailableRAM: free,
	}
}
