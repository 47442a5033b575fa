package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfig is the annotated starter file written by WriteDefault.
// Slots: reports.path, reports.retention_days, watch.debounce.
const defaultConfig = `# Vidsum Video Library Scanner Configuration

# Library roots scanned when no directories are given on the command line
libraries: []

# Video container extensions to include (case-insensitive, no leading dot)
extensions:
  - mkv
  - mp4
  - avi
  - webm
  - m4v
  - mov

# Follow symlinked directories during discovery
follow_symlinks: false

# Worker pool configuration (0 means size from system resources)
workers:
  stat: 0
  hash: 0

# Catalog database settings
catalog:
  # SQLite database path (empty means use default: $XDG_DATA_HOME/vidsum/catalog.db)
  path: ""

# Fingerprint cache settings for skipping unchanged files
cache:
  enabled: true
  # Cache directory (empty means use default: $XDG_CACHE_HOME/vidsum/fingerprints)
  path: ""

# Report settings for tracking scan history
reports:
  enabled: true
  path: %s
  retention_days: %d

# Watch mode settings
watch:
  # How long to wait after the last filesystem event before rescanning
  debounce: %s

# Output settings
output:
  # Default output format: pretty, plain, json, yaml, csv, tsv, paths, null
  format: pretty

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/vidsum/vidsum.log)
  path: ""
  # Log rotation settings
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    scan: info
    catalog: info
    cache: warn
    watch: info
    tui: info
`

// WriteDefault writes an annotated default config file. An existing
// config.yaml is left untouched.
func WriteDefault() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := ensureDir(dir); err != nil {
		return err
	}

	path := filepath.Join(dir, "config.yaml")
	switch _, err := os.Stat(path); {
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return fmt.Errorf("checking for existing config: %w", err)
	}

	reportDir, err := ReportDir()
	if err != nil {
		return err
	}

	content := fmt.Sprintf(defaultConfig, reportDir, DefaultRetentionDays, DefaultWatchDebounce)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
