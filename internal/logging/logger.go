// Package logging builds the structured logger shared by the binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ibeckermayer/sentiview/internal/config"
)

// New returns a logger configured from cfg, plus a close func for any file
// it opened. Unknown levels fall back to info.
func New(cfg config.LoggingConfig) (*log.Logger, func() error, error) {
	var (
		out     io.Writer = os.Stderr
		closeFn           = func() error { return nil }
	)

	if cfg.File {
		f, err := openLogFile()
		if err != nil {
			return nil, nil, err
		}
		out = f
		closeFn = f.Close
	}

	return NewWriter(out, cfg.Level), closeFn, nil
}

// NewWriter returns a logger writing to w at the named level.
func NewWriter(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
	})
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func openLogFile() (*os.File, error) {
	cacheDir, err := config.CacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache directory: %w", err)
	}

	logDir := filepath.Join(cacheDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("sentiview-%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
