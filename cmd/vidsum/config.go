package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidsum/vidsum/pkg/vidsum/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage vidsum configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/vidsum/config.yaml (if set)
  2. ~/.config/vidsum/config.yaml

Environment variables can override config file settings using the VIDSUM_ prefix:
  VIDSUM_LIBRARIES=/media/movies,/media/tv
  VIDSUM_WORKERS_HASH=8
  VIDSUM_CACHE_ENABLED=false`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd, configEditCmd, configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configFilePath returns where config.yaml lives, whether or not the file
// exists yet.
func configFilePath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// editorName picks the editor for config edit: $VISUAL, then $EDITOR,
// then vi.
func editorName() string {
	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return "vi"
}

// workerSetting renders a worker count, where 0 means auto-tuned.
func workerSetting(n int) string {
	if n <= 0 {
		return "auto"
	}
	return strconv.Itoa(n)
}

// pathSetting renders a path setting, showing the effective default when
// the config leaves it empty.
func pathSetting(configured, fallback string) string {
	if configured == "" {
		return fallback + " (default)"
	}
	return configured
}

// fallbackConfig carries the documented defaults so config show can still
// render something when Load fails.
func fallbackConfig() *config.Config {
	cfg := &config.Config{Extensions: config.DefaultExtensions}
	cfg.Cache.Enabled = true
	cfg.Reports.Enabled = true
	cfg.Reports.RetentionDays = config.DefaultRetentionDays
	cfg.Watch.Debounce = config.DefaultWatchDebounce.String()
	cfg.Output.Format = "pretty"
	cfg.Logging.Level = "info"
	return cfg
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		printError("Failed to load configuration: %v", err)
		cfg = fallbackConfig()
	}

	if file := viper.ConfigFileUsed(); file != "" {
		fmt.Printf("Config file: %s\n\n", file)
	} else {
		fmt.Print("Config file: (using defaults, no file found)\n\n")
	}

	settings := []struct {
		key   string
		value string
	}{
		{"libraries", fmt.Sprintf("%v", cfg.Libraries)},
		{"extensions", fmt.Sprintf("%v", cfg.Extensions)},
		{"follow_symlinks", strconv.FormatBool(cfg.FollowSymlinks)},
		{"workers.stat", workerSetting(cfg.Workers.Stat)},
		{"workers.hash", workerSetting(cfg.Workers.Hash)},
		{"catalog.path", pathSetting(cfg.Catalog.Path, config.DefaultCatalogPath())},
		{"cache.enabled", strconv.FormatBool(cfg.Cache.Enabled)},
		{"cache.path", pathSetting(cfg.Cache.Path, config.DefaultCachePath())},
		{"reports.enabled", strconv.FormatBool(cfg.Reports.Enabled)},
		{"reports.retention_days", fmt.Sprintf("%d days", cfg.Reports.RetentionDays)},
		{"watch.debounce", cfg.Watch.Debounce},
		{"output.format", cfg.Output.Format},
		{"logging.level", cfg.Logging.Level},
		{"logging.path", pathSetting(cfg.Logging.Path, config.DefaultLogPath())},
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	for _, s := range settings {
		fmt.Printf("%-24s %s\n", s.key+":", s.value)
	}

	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	overridden := false
	for _, s := range settings {
		name := "VIDSUM_" + strings.ToUpper(strings.ReplaceAll(s.key, ".", "_"))
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			overridden = true
		}
	}
	if !overridden {
		fmt.Println("(none)")
	}

	return nil
}

func runConfigEdit(_ *cobra.Command, _ []string) error {
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	path, err := configFilePath()
	if err != nil {
		return err
	}

	editor := editorName()
	printVerbose("Opening %s with %s", path, editor)

	edit := exec.Command(editor, path)
	edit.Stdin = os.Stdin
	edit.Stdout = os.Stdout
	edit.Stderr = os.Stderr
	if err := edit.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		printInfo("Config file already exists: %s", path)
		printInfo("Use 'vidsum config edit' to modify it.")
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	printInfo("Created default config file: %s", path)
	return nil
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	fmt.Println(path)

	if _, err := os.Stat(path); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}
	return nil
}
