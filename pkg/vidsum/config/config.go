// Package config loads vidsum settings from YAML config files, environment
// variables, and XDG base directories.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	Libraries      []string `mapstructure:"libraries"`
	Extensions     []string `mapstructure:"extensions"`
	FollowSymlinks bool     `mapstructure:"follow_symlinks"`
	Workers        struct {
		Stat int `mapstructure:"stat"` // 0 means size from system resources
		Hash int `mapstructure:"hash"` // 0 means size from system resources
	} `mapstructure:"workers"`
	Catalog struct {
		Path string `mapstructure:"path"` // empty means DefaultCatalogPath
	} `mapstructure:"catalog"`
	Cache struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"` // empty means DefaultCachePath
	} `mapstructure:"cache"`
	Reports struct {
		Enabled       bool   `mapstructure:"enabled"`
		Path          string `mapstructure:"path"`
		RetentionDays int    `mapstructure:"retention_days"`
	} `mapstructure:"reports"`
	Watch struct {
		Debounce string `mapstructure:"debounce"`
	} `mapstructure:"watch"`
	Output struct {
		Format string `mapstructure:"format"`
	} `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load reads the configuration. config.yaml is looked up under
// $XDG_CONFIG_HOME/vidsum, then $HOME/.config/vidsum; a missing file is not
// an error. Environment variables prefixed VIDSUM_ override file values
// (VIDSUM_WORKERS_HASH overrides workers.hash).
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		v.AddConfigPath(filepath.Join(base, "vidsum"))
	}
	v.AddConfigPath(filepath.Join(home, ".config", "vidsum"))

	v.SetEnvPrefix("VIDSUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, home)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	expandUserPaths(&cfg, home)

	return &cfg, nil
}

func setDefaults(v *viper.Viper, home string) {
	defaults := map[string]any{
		"libraries":       []string{},
		"extensions":      DefaultExtensions,
		"follow_symlinks": false,

		"workers.stat": 0,
		"workers.hash": 0,

		"catalog.path":  "",
		"cache.enabled": true,
		"cache.path":    "",

		"reports.enabled":        true,
		"reports.path":           filepath.Join(home, ".config", "vidsum", ".reports"),
		"reports.retention_days": DefaultRetentionDays,

		"watch.debounce": DefaultWatchDebounce.String(),
		"output.format":  "pretty",

		"logging.level":                "info",
		"logging.path":                 "",
		"logging.rotation.max_size":    "10MB",
		"logging.rotation.max_age":     30,
		"logging.rotation.max_backups": 5,
		"logging.rotation.daily":       true,
		"logging.components": map[string]string{
			"scan":    "info",
			"catalog": "info",
			"cache":   "warn",
			"watch":   "info",
			"tui":     "info",
		},
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// expandUserPaths rewrites a leading ~ in path settings that may come
// straight from the config file.
func expandUserPaths(cfg *Config, home string) {
	for _, p := range []*string{&cfg.Catalog.Path, &cfg.Cache.Path, &cfg.Reports.Path} {
		if strings.HasPrefix(*p, "~") {
			*p = filepath.Join(home, strings.TrimPrefix(*p, "~"))
		}
	}
}
