// Package logging configures the process-wide zerolog logger.
//
// The CLI logs human-readable lines to stderr so stdout stays clean for
// prayer times and JSON output. The server and broadcaster log JSON.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Supported output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options controls how the logger is built.
type Options struct {
	Level   string    // trace, debug, info, warn or error; empty means info
	Format  string    // FormatConsole or FormatJSON; empty means console
	Output  io.Writer // defaults to os.Stderr
	NoColor bool      // console format only
}

// ParseLevel converts a level name to a zerolog level. An empty name is info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// New builds a logger from opts without touching the global logger.
func New(opts Options) (zerolog.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(opts.Format) {
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    opts.NoColor,
			TimeFormat: time.Kitchen,
		}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q (use %s or %s)", opts.Format, FormatConsole, FormatJSON)
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// Setup builds a logger and installs it as the global log.Logger.
func Setup(opts Options) error {
	logger, err := New(opts)
	if err != nil {
		return err
	}
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return nil
}
