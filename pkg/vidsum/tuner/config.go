package tuner

// Worker configuration limits.
const (
	// maxWorkers is the maximum number of workers for any pool.
	maxWorkers = 64

	// minStatWorkers is the minimum number of metadata workers.
	// Stat collection benefits from parallelism even on small systems.
	minStatWorkers = 8

	// minHashWorkers is the minimum number of hashing workers.
	minHashWorkers = 4
)

// OptimalConfig contains tuned worker configuration optimized for the
// detected system resources.
type OptimalConfig struct {
	// StatWorkers is the number of metadata collection workers.
	// Higher values improve stat throughput during discovery.
	StatWorkers int

	// HashWorkers is the number of fingerprint hashing workers.
	// Each worker reads at most two 64 KiB chunks per file.
	HashWorkers int
}

// Calculate returns optimal worker configuration based on system resources.
//
// The calculation logic:
//   - StatWorkers: max(NumCPU*2, 8) - stat calls are metadata-heavy and
//     spend most time waiting on the filesystem
//   - HashWorkers: NumCPU - partial-content hashing alternates between
//     seeked reads and xxHash computation, so parallelism past the core
//     count buys little
//   - Both worker counts are capped at 64 to avoid excessive context switching
func Calculate(resources SystemResources) OptimalConfig {
	// Calculate stat workers: NumCPU*2 with a floor for small systems
	statWorkers := max(resources.CPUCores*2, minStatWorkers)
	statWorkers = min(statWorkers, maxWorkers)

	// Calculate hash workers: NumCPU with a floor for small systems
	hashWorkers := max(resources.CPUCores, minHashWorkers)
	hashWorkers = min(hashWorkers, maxWorkers)

	return OptimalConfig{
		StatWorkers: statWorkers,
		HashWorkers: hashWorkers,
	}
}

// CalculateWithOverrides applies user overrides to the optimal config.
// An override greater than 0 replaces the calculated value for that pool
// (still respecting the maximum cap of 64). Overrides of 0 or below keep
// the calculated values.
func CalculateWithOverrides(resources SystemResources, statOverride, hashOverride int) OptimalConfig {
	config := Calculate(resources)

	if statOverride > 0 {
		config.StatWorkers = min(statOverride, maxWorkers)
	}
	if hashOverride > 0 {
		config.HashWorkers = min(hashOverride, maxWorkers)
	}

	return config
}
