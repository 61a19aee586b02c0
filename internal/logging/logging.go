// Package logging builds the zerolog logger injected into every service.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the log level and output format.
type Config struct {
	Level  string `mapstructure:"level"`  // trace, debug, info, warn, error. Default: info
	Format string `mapstructure:"format"` // "json" or "console". Default: json
}

// New returns a logger writing to w (os.Stderr when nil).
func New(cfg Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Nop returns a disabled logger for tests and quiet CLI commands.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
