// Package logging provides component-scoped logging with file rotation
// for the vidsum video library scanner.
//
// Basic usage:
//
//	cfg := logging.Config{
//	    Level: "info",
//	    Path:  logging.DefaultLogPath(),
//	}
//	if err := logging.Init(cfg); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("scan")
//	logger.Info("scan started", "root", "/media/movies")
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Rotation configures log file rotation.
	Rotation RotationConfig

	// Components maps component names to per-component level overrides.
	Components map[string]string

	// ConsoleLevel mirrors records at this level and above to stderr.
	// Empty keeps the console quiet.
	ConsoleLevel string

	// TUIMode suppresses console output (the TUI owns the screen) and
	// retains recent entries in a ring buffer for the log panel.
	TUIMode bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Path:     DefaultLogPath(),
		Rotation: DefaultRotationConfig(),
	}
}

// DefaultLogPath returns the log file path under the XDG state
// directory.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "vidsum", "vidsum.log")
}

// std is the process-wide logging state. Loggers handed out before
// Init write to io.Discard until Init rebinds them.
var std = &state{
	loggers:    make(map[string]*Logger),
	components: make(map[string]Level),
}

type state struct {
	mu          sync.RWMutex
	initialized bool
	writer      *RotatingWriter
	level       Level
	components  map[string]Level
	loggers     map[string]*Logger

	consoleLevel Level
	console      bool
	tuiMode      bool

	// buffer holds recent entries for the TUI log panel; nil outside
	// TUI mode.
	buffer *Buffer
}

// Init configures the logging system. Calling it again tears down the
// previous writer and rebinds every logger already handed out.
func Init(cfg Config) error {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.configure(cfg)
}

// Get returns the logger for a component, creating it on first use.
// Component level overrides from the config apply here.
func Get(component string) *Logger {
	std.mu.RLock()
	logger, ok := std.loggers[component]
	std.mu.RUnlock()
	if ok {
		return logger
	}

	std.mu.Lock()
	defer std.mu.Unlock()
	if logger, ok := std.loggers[component]; ok {
		return logger
	}
	logger = std.newLogger(component)
	std.loggers[component] = logger
	return logger
}

// GetBuffer returns the ring buffer holding recent entries, or nil when
// not running in TUI mode.
func GetBuffer() *Buffer {
	std.mu.RLock()
	defer std.mu.RUnlock()
	return std.buffer
}

// Close flushes and closes the log file.
func Close() error {
	std.mu.Lock()
	defer std.mu.Unlock()

	if !std.initialized {
		return nil
	}
	if std.writer != nil {
		if err := std.writer.Close(); err != nil {
			return fmt.Errorf("closing log writer: %w", err)
		}
		std.writer = nil
	}
	std.initialized = false
	std.loggers = make(map[string]*Logger)
	std.components = make(map[string]Level)
	return nil
}

// configure applies cfg. Callers hold s.mu.
func (s *state) configure(cfg Config) error {
	if s.initialized {
		if s.writer != nil {
			if err := s.writer.Close(); err != nil {
				return fmt.Errorf("closing existing writer: %w", err)
			}
		}
		s.loggers = make(map[string]*Logger)
		s.components = make(map[string]Level)
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	s.level = level

	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		s.components[comp] = parsed
	}

	s.tuiMode = cfg.TUIMode
	s.console = false
	if cfg.ConsoleLevel != "" && !cfg.TUIMode {
		consoleLevel, err := ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
		s.consoleLevel = consoleLevel
		s.console = true
	}

	s.buffer = nil
	if cfg.TUIMode {
		s.buffer = NewBuffer(DefaultBufferSize)
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}
	s.writer = writer
	s.initialized = true

	// Rebind loggers handed out before this call.
	for component := range s.loggers {
		s.loggers[component] = s.newLogger(component)
	}
	return nil
}

// newLogger builds a component logger. Callers hold s.mu.
func (s *state) newLogger(component string) *Logger {
	level, ok := s.components[component]
	if !ok {
		level = s.level
	}

	if !s.initialized {
		return &Logger{
			file: log.NewWithOptions(io.Discard, log.Options{
				Level:  level.toCharmLevel(),
				Prefix: component,
			}),
			component: component,
		}
	}

	logger := &Logger{
		file: log.NewWithOptions(s.writer, log.Options{
			Level:           level.toCharmLevel(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
		component: component,
	}
	if s.console && !s.tuiMode {
		logger.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           s.consoleLevel.toCharmLevel(),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
	}
	return logger
}

// Logger writes component-tagged records to the log file and optionally
// to stderr.
type Logger struct {
	file      *log.Logger // writes to io.Discard before Init
	console   *log.Logger
	component string
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// With returns a new logger carrying additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	derived := &Logger{
		file:      l.file.With(args...),
		component: l.component,
	}
	if l.console != nil {
		derived.console = l.console.With(args...)
	}
	return derived
}

func (l *Logger) log(level Level, msg string, args ...any) {
	l.file.Log(level.toCharmLevel(), msg, args...)
	if l.console != nil {
		l.console.Log(level.toCharmLevel(), msg, args...)
	}

	if buf := GetBuffer(); buf != nil {
		buf.Add(Entry{
			Time:      time.Now(),
			Level:     level,
			Component: l.component,
			Message:   msg,
		})
	}
}
