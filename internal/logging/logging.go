// Package logging sets up the diagnostic log. The terminal belongs to the TUI,
// so diagnostics go to a rotating file instead of stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger writing to path. An empty path discards all output.
// The returned closer releases the log file.
func New(path string, verbose bool) (*slog.Logger, io.Closer) {
	if path == "" {
		return slog.New(slog.DiscardHandler), nopCloser{}
	}

	// 0o700: logs may contain prompts
	_ = os.MkdirAll(filepath.Dir(path), 0o700)

	logFile := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	return NewWithWriter(logFile, verbose), logFile
}

// NewWithWriter returns a text logger writing to w.
func NewWithWriter(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
