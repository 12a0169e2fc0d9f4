// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package log wraps a structured, levelled logger.
package log // import "mellium.im/wamsg/internal/log"

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Config configures a Logger.
type Config struct {
	// Path of the log file, if empty logs are written to stderr.
	Path string `yaml:"path"`
	// Format to log in, either "text" or "json".
	Format string `yaml:"format"`
	// Level is one of panic|fatal|error|warn|warning|info|debug|trace.
	Level string `yaml:"level"`
}

// Fields are key value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger for logging.
type Logger struct {
	entry *logrus.Entry

	file *os.File
}

// New creates a logger based on the config.
func New(c Config) (*Logger, error) {
	l := logrus.New()
	switch c.Format {
	case "", "text":
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("log: unknown format %q", c.Format)
	}
	if c.Level != "" {
		lvl, err := logrus.ParseLevel(c.Level)
		if err != nil {
			return nil, err
		}
		l.SetLevel(lvl)
	}

	var file *os.File
	if c.Path != "" {
		var err error
		file, err = os.OpenFile(c.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, err
		}
		l.SetOutput(file)
	}
	return &Logger{
		entry: logrus.NewEntry(l),
		file:  file,
	}, nil
}

// Wrap returns a Logger that writes to l.
// If l is nil, a discarding logger is returned.
func Wrap(l *logrus.Logger) *Logger {
	if l == nil {
		return Discard()
	}
	return &Logger{entry: logrus.NewEntry(l)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(l)}
}

// Debug logs a debug message.
func (l *Logger) Debug(s string) {
	l.entry.Debug(s)
}

// Info logs a message with level info.
func (l *Logger) Info(s string) {
	l.entry.Info(s)
}

// Warn logs a message with level warning.
func (l *Logger) Warn(s string) {
	l.entry.Warn(s)
}

// Error logs a message with level error.
func (l *Logger) Error(s string) {
	l.entry.Error(s)
}

// With returns a logger with the fields attached to every entry.
func (l *Logger) With(f Fields) *Logger {
	return &Logger{
		entry: l.entry.WithFields(logrus.Fields(f)),
	}
}

// WithError returns a logger with err attached to every entry.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		entry: l.entry.WithError(err),
	}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
