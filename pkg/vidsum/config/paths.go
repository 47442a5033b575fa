package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// ConfigDir returns the directory that holds config.yaml. XDG_CONFIG_HOME is
// read directly rather than through the xdg package, which caches the value
// at init time.
func ConfigDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "vidsum"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vidsum"), nil
}

// ReportDir returns the directory that holds scan report files.
func ReportDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".reports"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// DataDir returns $XDG_DATA_HOME/vidsum, home of the catalog database.
func DataDir() string { return filepath.Join(xdg.DataHome, "vidsum") }

// StateDir returns $XDG_STATE_HOME/vidsum, home of the log files.
func StateDir() string { return filepath.Join(xdg.StateHome, "vidsum") }

// CacheDir returns $XDG_CACHE_HOME/vidsum, home of the fingerprint cache.
func CacheDir() string { return filepath.Join(xdg.CacheHome, "vidsum") }

// DefaultCatalogPath returns the default catalog database path.
func DefaultCatalogPath() string { return filepath.Join(DataDir(), "catalog.db") }

// DefaultCachePath returns the default fingerprint cache directory.
func DefaultCachePath() string { return filepath.Join(CacheDir(), "fingerprints") }

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string { return filepath.Join(StateDir(), "vidsum.log") }

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return ensureDir(dir)
}

// EnsureReportDir creates the report directory if it doesn't exist.
func EnsureReportDir() error {
	dir, err := ReportDir()
	if err != nil {
		return err
	}
	return ensureDir(dir)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error { return ensureDir(DataDir()) }

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error { return ensureDir(StateDir()) }

// EnsureCacheDir creates the cache directory if it doesn't exist.
func EnsureCacheDir() error { return ensureDir(CacheDir()) }
