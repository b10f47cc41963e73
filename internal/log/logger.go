// Package log is a thin verbosity-aware wrapper around log/slog shared by
// every spotlight package.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Verbosity levels
const (
	LevelQuiet = iota // Default: only errors and warnings
	LevelInfo         // -v: run states, page counts, outcome
	LevelDebug        // -vv: API calls, profile fetches, state transitions
	LevelTrace        // -vvv: every feed item
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

const slogLevelTrace = slog.Level(-8)

var (
	verbosity  int
	format     = FormatText
	logger     *slog.Logger
	output     io.Writer
	inProgress bool
)

// Initialize sets up the global logger with the specified verbosity level.
func Initialize(level int, w io.Writer) {
	verbosity = level
	output = w
	logger = slog.New(newHandler(w, format, slogLevelFor(level)))
}

// SetFormat switches between the text and JSON handlers. Scheduled runs use
// JSON so the output can be shipped to a log collector as-is.
func SetFormat(f string) error {
	switch strings.ToLower(f) {
	case "", FormatText:
		format = FormatText
	case FormatJSON:
		format = FormatJSON
	default:
		return fmt.Errorf("unknown log format %q (use text or json)", f)
	}
	logger = slog.New(newHandler(output, format, slogLevelFor(verbosity)))
	return nil
}

func slogLevelFor(level int) slog.Level {
	switch {
	case level >= LevelTrace:
		return slogLevelTrace
	case level >= LevelDebug:
		return slog.LevelDebug
	case level >= LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

func newHandler(w io.Writer, f string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if f == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Info logs at info level (-v)
func Info(msg string, args ...any) {
	if verbosity >= LevelInfo {
		clearProgress()
		logger.Info(msg, args...)
	}
}

// Debug logs at debug level (-vv)
func Debug(msg string, args ...any) {
	if verbosity >= LevelDebug {
		clearProgress()
		logger.Debug(msg, args...)
	}
}

// Trace logs at trace level (-vvv)
func Trace(msg string, args ...any) {
	if verbosity >= LevelTrace {
		clearProgress()
		logger.Log(context.Background(), slogLevelTrace, msg, args...)
	}
}

// Warn logs at warn level (always visible)
func Warn(msg string, args ...any) {
	clearProgress()
	logger.Warn(msg, args...)
}

// Error logs at error level (always visible)
func Error(msg string, args ...any) {
	clearProgress()
	logger.Error(msg, args...)
}

// Progress prints a progress message with carriage return (no newline).
// Only shown at info level in text mode; JSON output stays line-oriented.
func Progress(format string, args ...any) {
	if verbosity >= LevelInfo && !isJSON() {
		inProgress = true
		_, _ = fmt.Fprintf(output, "\r"+format, args...)
	}
}

// ProgressDone completes a progress line with "done" and newline
func ProgressDone() {
	if verbosity >= LevelInfo && inProgress {
		_, _ = fmt.Fprintln(output, " done")
		inProgress = false
	}
}

// ProgressClear clears the current progress line
func ProgressClear() {
	if inProgress {
		_, _ = fmt.Fprint(output, "\r\033[K")
		inProgress = false
	}
}

// clearProgress ensures we don't write over a progress line
func clearProgress() {
	if inProgress {
		_, _ = fmt.Fprintln(output)
		inProgress = false
	}
}

func isJSON() bool {
	return format == FormatJSON
}

// IsInfo returns true if info-level logging is enabled
func IsInfo() bool {
	return verbosity >= LevelInfo
}

// IsDebug returns true if debug-level logging is enabled
func IsDebug() bool {
	return verbosity >= LevelDebug
}

// IsTrace returns true if trace-level logging is enabled
func IsTrace() bool {
	return verbosity >= LevelTrace
}

// Verbosity returns the current verbosity level
func Verbosity() int {
	return verbosity
}

func init() {
	output = os.Stderr
	verbosity = LevelQuiet
	logger = slog.New(newHandler(output, FormatText, slog.LevelWarn))
}
