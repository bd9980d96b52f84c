// Package logging sets up the process-wide logger.
//
// The TUI owns the terminal, so interactive runs log to a file named by
// DONEIT_DEBUG_LOG (or nowhere). Plain CLI commands log to stderr.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New builds a logger writing to w at the given level name.
// Unknown level names fall back to info.
func New(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(level),
		ReportTimestamp: true,
		Prefix:          "doneit",
	})
}

// ForCLI logs to stderr.
func ForCLI(level string) *log.Logger {
	return New(os.Stderr, level)
}

// ForTUI logs to the file named by DONEIT_DEBUG_LOG, or discards
// everything when unset. The caller closes the returned file, if any.
func ForTUI(level string) (*log.Logger, *os.File, error) {
	path := strings.TrimSpace(os.Getenv("DONEIT_DEBUG_LOG"))
	if path == "" {
		return New(io.Discard, level), nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f, nil
}

func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
