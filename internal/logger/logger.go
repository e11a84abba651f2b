// Package logger builds the structured logger shared by the store, the remote client and the MCP server.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the level, destination and format of log records.
type Options struct {
	Level  string
	File   string
	Format string
}

func level(option string) (slog.Leveler, bool) {
	switch strings.ToLower(option) {
	case "":
		return slog.LevelWarn, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return nil, false
	}
}

// New returns a logger for options. Invalid options fall back to their
// defaults and the fallback is reported through the returned logger.
// Records go to stderr unless a file is given; stdout is reserved for command output.
func New(options *Options) *slog.Logger {
	return NewWithOutput(options, os.Stderr)
}

// NewWithOutput is New with an explicit default destination.
func NewWithOutput(options *Options, fallback io.Writer) *slog.Logger {
	lvl, ok := level(options.Level)
	if !ok {
		options.Level = ""
		logger := NewWithOutput(options, fallback)
		logger.Warn("could not parse logger level")
		return logger
	}
	opts := slog.HandlerOptions{Level: lvl}

	var output io.Writer
	switch options.File {
	case "", "-":
		output = fallback
	case os.DevNull:
		return slog.New(slog.DiscardHandler)
	default:
		var err error
		output, err = os.OpenFile(options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			options.File = ""
			logger := NewWithOutput(options, fallback)
			logger.Warn("could not open logger file", "err", err)
			return logger
		}
	}

	switch strings.ToLower(options.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(output, &opts))
	case "", "text":
		return slog.New(slog.NewTextHandler(output, &opts))
	default:
		options.Format = "text"
		logger := NewWithOutput(options, fallback)
		logger.Warn("could not parse logger format")
		return logger
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
