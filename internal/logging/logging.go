// Package logging builds the process logger: logrus to stderr, optionally
// teed into a size-rotated file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Level  string // logrus level name; invalid values fall back to warn
	Format string // "text" or "json"
	File   string // optional rotating log file

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultOptions keeps the terminal quiet: only warnings and errors reach
// stderr so generated tests stay readable.
func DefaultOptions() Options {
	return Options{
		Level:      "warn",
		Format:     "text",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

// Logger is a logrus logger whose console output can be muted while a
// terminal UI owns the screen. The log file, if any, keeps receiving.
type Logger struct {
	*logrus.Logger
	console *switchWriter
}

// MuteConsole stops console output until the returned restore is called.
func (l *Logger) MuteConsole() (restore func()) {
	l.console.setMuted(true)
	return func() { l.console.setMuted(false) }
}

// New creates a logger writing to console and, when opts.File is set, to a
// rotating file. The returned close function releases the file.
func New(opts Options, console io.Writer) (*Logger, func() error, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	if opts.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	if console == nil {
		console = os.Stderr
	}
	sw := &switchWriter{w: console}
	out := &Logger{Logger: logger, console: sw}

	closeFn := func() error { return nil }
	if opts.File == "" {
		logger.SetOutput(sw)
		return out, closeFn, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	logger.SetOutput(io.MultiWriter(sw, fileWriter))

	return out, fileWriter.Close, nil
}

// switchWriter drops writes while muted.
type switchWriter struct {
	mu    sync.Mutex
	w     io.Writer
	muted bool
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.muted {
		return len(p), nil
	}
	return s.w.Write(p)
}

func (s *switchWriter) setMuted(m bool) {
	s.mu.Lock()
	s.muted = m
	s.mu.Unlock()
}
