package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidsum/vidsum/pkg/vidsum/cache"
	"github.com/vidsum/vidsum/pkg/vidsum/catalog"
	"github.com/vidsum/vidsum/pkg/vidsum/config"
	"github.com/vidsum/vidsum/pkg/vidsum/logging"
	"github.com/vidsum/vidsum/pkg/vidsum/report"
	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// initializeLogging is the PersistentPreRunE hook for all commands.
// It creates the XDG directories vidsum writes to and initializes the
// logging system from the effective configuration.
func initializeLogging(_ *cobra.Command, _ []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := config.EnsureStateDir(); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	logCfg := buildLogConfig(loadConfigOrDefaults())
	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	return nil
}

// initTUILogging re-initializes logging for TUI mode: console output off
// (the TUI owns the terminal), recent entries buffered for the log panel.
func initTUILogging() error {
	logCfg := buildLogConfig(loadConfigOrDefaults())
	logCfg.ConsoleLevel = ""
	logCfg.TUIMode = true
	return logging.Init(logCfg)
}

// loadConfigOrDefaults loads the configuration file, falling back to
// defaults when it cannot be read. Logging must come up either way.
func loadConfigOrDefaults() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		printVerbose("Failed to load configuration, using logging defaults: %v", err)
		cfg = &config.Config{}
		cfg.Logging.Level = "info"
	}
	return cfg
}

// buildLogConfig translates the file configuration into a logging config.
// The console level follows the --verbose/--quiet flags; the file level
// follows the config.
func buildLogConfig(cfg *config.Config) logging.Config {
	logPath := cfg.Logging.Path
	if logPath == "" {
		logPath = config.DefaultLogPath()
	} else if expanded, err := config.ExpandPath(logPath); err == nil {
		logPath = expanded
	}

	consoleLevel := "warn"
	if getVerbose() {
		consoleLevel = "debug"
	}
	if getQuiet() {
		consoleLevel = "error"
	}

	return logging.Config{
		Level:        cfg.Logging.Level,
		Path:         logPath,
		Rotation:     parseRotationConfig(cfg.Logging.Rotation),
		Components:   cfg.Logging.Components,
		ConsoleLevel: consoleLevel,
	}
}

// parseRotationConfig converts the config package's rotation settings
// (human-readable size strings) into the logging package's representation.
// Unparseable or empty sizes fall back to the rotation default.
func parseRotationConfig(cfg config.RotationConfig) logging.RotationConfig {
	out := logging.RotationConfig{
		MaxSize:    logging.DefaultRotationConfig().MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Daily:      cfg.Daily,
	}

	if cfg.MaxSize != "" {
		if size, err := types.ParseSize(cfg.MaxSize); err == nil {
			out.MaxSize = size
		}
	}

	return out
}

// catalogPath returns the effective catalog database path.
func catalogPath() (string, error) {
	path := viper.GetString("catalog.path")
	if path == "" {
		return config.DefaultCatalogPath(), nil
	}
	return config.ExpandPath(path)
}

// openCatalog opens the catalog database at the configured path.
func openCatalog() (*catalog.Catalog, error) {
	path, err := catalogPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	cat, err := catalog.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return cat, nil
}

// fingerprintCachePath returns the effective fingerprint cache directory.
func fingerprintCachePath() (string, error) {
	path := viper.GetString("cache.path")
	if path == "" {
		return config.DefaultCachePath(), nil
	}
	return config.ExpandPath(path)
}

// cacheEnabled reports whether the fingerprint cache should be used,
// honoring both the config setting and the --no-cache flag.
func cacheEnabled() bool {
	return viper.GetBool("cache.enabled") && !viper.GetBool("no_cache")
}

// openCache opens the fingerprint cache when enabled. Cache failures are
// not fatal: scans work without one, just slower on unchanged trees.
func openCache() *cache.Cache {
	if !cacheEnabled() {
		return nil
	}

	if err := config.EnsureCacheDir(); err != nil {
		printVerbose("Failed to create cache directory, continuing without cache: %v", err)
		return nil
	}

	path, err := fingerprintCachePath()
	if err != nil {
		printVerbose("Failed to resolve cache path, continuing without cache: %v", err)
		return nil
	}

	c, err := cache.Open(path)
	if err != nil {
		printVerbose("Failed to open fingerprint cache, continuing without cache: %v", err)
		return nil
	}
	return c
}

// openReports opens the scan report archive when report writing is
// enabled. Returns nil when disabled or unavailable.
func openReports() *report.Archive {
	if !viper.GetBool("reports.enabled") {
		return nil
	}

	dir := viper.GetString("reports.path")
	if dir == "" {
		d, err := config.ReportDir()
		if err != nil {
			printVerbose("Failed to resolve report directory: %v", err)
			return nil
		}
		dir = d
	} else if expanded, err := config.ExpandPath(dir); err == nil {
		dir = expanded
	}

	archive, err := report.New(dir)
	if err != nil {
		printVerbose("Failed to open report archive: %v", err)
		return nil
	}
	return archive
}
