package utils

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger creates a [log.Logger] writing to w (stderr when nil) with timestamps.
// level is parsed from LOG_LEVEL; production switches to the JSON formatter.
func NewLogger(w io.Writer, level string, production bool) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true}
	if production {
		opts.Formatter = log.JSONFormatter
	} else {
		opts.ReportCaller = true
	}
	logger := log.NewWithOptions(w, opts)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// SetupLogger builds the process logger and installs it as the package default.
func SetupLogger(level string, production bool) *log.Logger {
	logger := NewLogger(os.Stderr, level, production)
	log.SetDefault(logger)
	return logger
}
