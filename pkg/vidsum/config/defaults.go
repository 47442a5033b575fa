package config

import "time"

const (
	// DefaultRetentionDays bounds how long scan report files are kept.
	DefaultRetentionDays = 30

	// DefaultStatWorkers and DefaultHashWorkers size the scan pools when
	// neither the configuration nor the system probe picked a count.
	DefaultStatWorkers = 8
	DefaultHashWorkers = 4

	// DefaultWatchDebounce is how long watch mode waits after the last
	// filesystem event before rescanning.
	DefaultWatchDebounce = 2 * time.Second
)

// DefaultExtensions lists the video container extensions scanned when the
// configuration does not override them.
var DefaultExtensions = []string{"mkv", "mp4", "avi", "webm", "m4v", "mov"}
