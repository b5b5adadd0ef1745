// Package logger provides structured logging using zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config selects level, destination and timestamp layout.
type Config struct {
	Level      string `yaml:"level"`
	Debug      bool   `yaml:"debug"`
	Output     string `yaml:"output"` // stdout | stderr
	TimeFormat string `yaml:"time_format"`
}

var global = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init replaces the process logger and sets the zerolog timestamp layout,
// which is package-global in zerolog.
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}

	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	} else {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	global = l
	return nil
}

// New builds a logger without touching process state.
// TimeFormat only takes effect through Init.
func New(cfg Config) (zerolog.Logger, error) {
	var out io.Writer = os.Stderr
	switch cfg.Output {
	case "", "stderr":
	case "stdout":
		out = os.Stdout
	default:
		return zerolog.Nop(), fmt.Errorf("logger: unknown output %q", cfg.Output)
	}

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	} else if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logger: %w", err)
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// Get returns the process logger.
func Get() zerolog.Logger {
	return global
}

// WithComponent returns the process logger tagged with a component name.
func WithComponent(component string) zerolog.Logger {
	return global.With().Str("component", component).Logger()
}

// NewTestLogger returns a logger that discards everything.
func NewTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard).Level(zerolog.Disabled)
}
