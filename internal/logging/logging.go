// Package logging builds the leveled console logger.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Prefix is prepended to every log line.
const Prefix = "tasks"

// Options holds configuration for console logging.
type Options struct {
	Level           string // debug, info, warn, error
	Format          string // text, json, logfmt
	ReportTimestamp bool
	ReportCaller    bool // file:line of the call site, used at debug level
}

// DefaultOptions returns default options for console logging.
func DefaultOptions() Options {
	return Options{
		Level:  "warn",
		Format: "text",
	}
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) (*log.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	formatter, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
		Prefix:          Prefix,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLevel maps a level name to a log level. Empty means warn.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "", "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// ParseFormat maps a format name to a formatter. Empty means text.
func ParseFormat(s string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("unknown log format %q", s)
	}
}
