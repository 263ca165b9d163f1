package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chess10kp/webdesk/internal/config"
)

// New builds the process logger. When cfg.File is set the log is appended to
// that file; the returned closer must be called on shutdown.
func New(cfg config.LogConfig) (*log.Logger, io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closer = f
	}

	logger := NewWithWriter(w, cfg.Level)
	return logger, closer, nil
}

// NewWithWriter builds a logger on an arbitrary writer. An unknown level
// falls back to info.
func NewWithWriter(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
