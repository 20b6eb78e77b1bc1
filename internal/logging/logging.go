// Package logging builds the zerolog logger used across neurochat.
//
// The chat TUI owns stdout and stderr, so logs go to a file. When the file
// cannot be opened the logger is disabled rather than corrupting the screen.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls where and how much is logged
type Options struct {
	File    string
	Level   string
	Verbose bool
}

// New returns a logger writing to opts.File, plus a closer for the file.
func New(opts Options) (zerolog.Logger, io.Closer) {
	if opts.File == "" {
		return zerolog.Nop(), nopCloser{}
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
		return zerolog.Nop(), nopCloser{}
	}

	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nopCloser{}
	}

	return NewWithWriter(f, opts), f
}

// NewWithWriter returns a logger writing JSON lines to w
func NewWithWriter(w io.Writer, opts Options) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(opts.Level, opts.Verbose)).
		With().
		Timestamp().
		Logger()
}

// NewConsole returns a human-readable logger for one-shot commands
func NewConsole(w io.Writer, opts Options) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(ParseLevel(opts.Level, opts.Verbose)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a config string onto a zerolog level. Verbose forces debug.
func ParseLevel(level string, verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
