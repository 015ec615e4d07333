package cli

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// lockedWriter serializes writes from every handler derived from one logger.
// charmbracelet/log gives each With-derived logger its own mutex, so the
// underlying writer needs a lock of its own.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// newLogger returns a slog.Logger backed by a charmbracelet/log handler.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	handler := log.NewWithOptions(&lockedWriter{w: w}, log.Options{
		Level:           parseLogLevel(level),
		Formatter:       parseLogFormatter(format),
		ReportTimestamp: true,
		Prefix:          "fanout",
	})
	return slog.New(handler)
}

func parseLogLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func parseLogFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
