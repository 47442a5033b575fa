package tuner

import (
	"runtime"
	"testing"
)

func TestDetect(t *testing.T) {
	resources := Detect()

	if resources.CPUCores != runtime.NumCPU() {
		t.Errorf("CPUCores = %d, want %d (runtime.NumCPU())", resources.CPUCores, runtime.NumCPU())
	}

	// Whether detected or fallen back, the figures must be plausible.
	minRAM := int64(512 * 1024 * 1024)
	if resources.TotalRAM < minRAM {
		t.Errorf("TotalRAM = %d bytes, want >= %d bytes (512MB)", resources.TotalRAM, minRAM)
	}
	if resources.AvailableRAM <= 0 {
		t.Errorf("AvailableRAM = %d, want > 0", resources.AvailableRAM)
	}
	if resources.AvailableRAM > resources.TotalRAM {
		t.Errorf("AvailableRAM (%d) > TotalRAM (%d), available should be <= total",
			resources.AvailableRAM, resources.TotalRAM)
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name            string
		resources       SystemResources
		wantStatWorkers int
		wantHashWorkers int
	}{
		{
			name: "small system (2 cores)",
			resources: SystemResources{
				CPUCores:     2,
				TotalRAM:     4 * 1024 * 1024 * 1024,
				AvailableRAM: 2 * 1024 * 1024 * 1024,
			},
			wantStatWorkers: 8, // floor
			wantHashWorkers: 4, // floor
		},
		{
			name: "medium system (8 cores)",
			resources: SystemResources{
				CPUCores:     8,
				TotalRAM:     16 * 1024 * 1024 * 1024,
				AvailableRAM: 8 * 1024 * 1024 * 1024,
			},
			wantStatWorkers: 16,
			wantHashWorkers: 8,
		},
		{
			name: "large system (48 cores)",
			resources: SystemResources{
				CPUCores:     48,
				TotalRAM:     64 * 1024 * 1024 * 1024,
				AvailableRAM: 32 * 1024 * 1024 * 1024,
			},
			wantStatWorkers: 64, // capped at max
			wantHashWorkers: 48,
		},
		{
			name: "huge system (128 cores)",
			resources: SystemResources{
				CPUCores:     128,
				TotalRAM:     256 * 1024 * 1024 * 1024,
				AvailableRAM: 128 * 1024 * 1024 * 1024,
			},
			wantStatWorkers: 64, // capped at max
			wantHashWorkers: 64, // capped at max
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.resources)

			if got.StatWorkers != tt.wantStatWorkers {
				t.Errorf("StatWorkers = %d, want %d", got.StatWorkers, tt.wantStatWorkers)
			}
			if got.HashWorkers != tt.wantHashWorkers {
				t.Errorf("HashWorkers = %d, want %d", got.HashWorkers, tt.wantHashWorkers)
			}
		})
	}
}

func TestCalculateWithOverrides(t *testing.T) {
	resources := SystemResources{
		CPUCores:     8,
		TotalRAM:     16 * 1024 * 1024 * 1024,
		AvailableRAM: 8 * 1024 * 1024 * 1024,
	}

	tests := []struct {
		name            string
		statOverride    int
		hashOverride    int
		wantStatWorkers int
		wantHashWorkers int
	}{
		{
			name:            "no overrides keeps calculated values",
			statOverride:    0,
			hashOverride:    0,
			wantStatWorkers: 16,
			wantHashWorkers: 8,
		},
		{
			name:            "hash override only",
			statOverride:    0,
			hashOverride:    2,
			wantStatWorkers: 16,
			wantHashWorkers: 2,
		},
		{
			name:            "stat override only",
			statOverride:    32,
			hashOverride:    0,
			wantStatWorkers: 32,
			wantHashWorkers: 8,
		},
		{
			name:            "both overrides",
			statOverride:    12,
			hashOverride:    6,
			wantStatWorkers: 12,
			wantHashWorkers: 6,
		},
		{
			name:            "overrides capped at max",
			statOverride:    500,
			hashOverride:    500,
			wantStatWorkers: 64,
			wantHashWorkers: 64,
		},
		{
			name:            "negative overrides ignored",
			statOverride:    -1,
			hashOverride:    -1,
			wantStatWorkers: 16,
			wantHashWorkers: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateWithOverrides(resources, tt.statOverride, tt.hashOverride)

			if got.StatWorkers != tt.wantStatWorkers {
				t.Errorf("StatWorkers = %d, want %d", got.StatWorkers, tt.wantStatWorkers)
			}
			if got.HashWorkers != tt.wantHashWorkers {
				t.Errorf("HashWorkers = %d, want %d", got.HashWorkers, tt.wantHashWorkers)
			}
		})
	}
}
