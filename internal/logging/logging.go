// Package logging builds the leveled console logger shared by all packages.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Options controls logger construction.
type Options struct {
	Debug  bool
	Quiet  bool
	Format string // "text" or "json"
}

// New returns a logger writing to w. Debug lowers the level to debug; Quiet
// raises it to error.
func New(w io.Writer, opts Options) *log.Logger {
	level := log.InfoLevel
	switch {
	case opts.Debug:
		level = log.DebugLevel
	case opts.Quiet:
		level = log.ErrorLevel
	}

	formatter := log.TextFormatter
	if opts.Format == "json" {
		formatter = log.JSONFormatter
	}

	return log.NewWithOptions(w, log.Options{
		Level:     level,
		Formatter: formatter,
		Prefix:    "todo",
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
