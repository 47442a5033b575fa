package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidsum/vidsum/pkg/vidsum/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "vidsum",
		Short: "Fingerprint and catalog video libraries",
		Long: `Vidsum scans video libraries, fingerprints file content, and maintains
a durable catalog for change tracking and duplicate detection.

Scans are incremental: only files whose size or modification time changed
since the last scan are rehashed. Use --full to force a complete rescan.

Examples:
  vidsum scan                      # Scan configured library roots
  vidsum scan /media/movies        # Scan a specific directory
  vidsum scan --full --prune       # Rehash everything, drop vanished records
  vidsum hash movie.mkv            # Fingerprint a single file
  vidsum ls --ext mkv --sort size  # Query the catalog
  vidsum stats /media/movies       # Disk usage vs catalog totals
  vidsum watch                     # Rescan on filesystem changes`,
		PersistentPreRunE: initializeLogging,
		SilenceUsage:      true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/vidsum/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (pretty, plain, json, jsonl, yaml, csv, tsv, markdown, paths, null, template)")
	rootCmd.PersistentFlags().String("template", "", "Go template for -o template")
	rootCmd.PersistentFlags().StringSliceP("extensions", "e", nil, "video file extensions to match (e.g., mkv,mp4)")
	rootCmd.PersistentFlags().Bool("follow-symlinks", false, "follow symlinked directories during discovery")
	rootCmd.PersistentFlags().String("catalog", "", "catalog database path")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "override hash worker count (0=auto)")
	rootCmd.PersistentFlags().Int("stat-workers", 0, "override stat worker count (0=auto)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass the fingerprint cache")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("template", rootCmd.PersistentFlags().Lookup("template"))
	_ = viper.BindPFlag("extensions", rootCmd.PersistentFlags().Lookup("extensions"))
	_ = viper.BindPFlag("follow_symlinks", rootCmd.PersistentFlags().Lookup("follow-symlinks"))
	_ = viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("workers.hash", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("workers.stat", rootCmd.PersistentFlags().Lookup("stat-workers"))
	_ = viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Set config name and type
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "vidsum"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "vidsum"))
		}
	}

	// Set environment variable prefix and enable auto env binding
	viper.SetEnvPrefix("VIDSUM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Set defaults from config package. Worker counts default to 0 so the
	// tuner picks values for the machine unless the user pins them.
	viper.SetDefault("libraries", []string{})
	viper.SetDefault("extensions", config.DefaultExtensions)
	viper.SetDefault("follow_symlinks", false)
	viper.SetDefault("workers.stat", 0)
	viper.SetDefault("workers.hash", 0)
	viper.SetDefault("catalog.path", "")
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.path", "")
	viper.SetDefault("reports.enabled", true)
	viper.SetDefault("reports.retention_days", config.DefaultRetentionDays)
	viper.SetDefault("watch.debounce", config.DefaultWatchDebounce.String())
	viper.SetDefault("output.format", "pretty")

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
