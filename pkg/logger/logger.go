// Package logger provides the logging interface used across the application,
// backed by logrus with optional rotating file output.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger defines the logging interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
	// With returns a child logger carrying an extra structured field.
	With(key string, value interface{}) Logger
}

// Options configures a logger built with NewWithOptions.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Output io.Writer

	// File enables rotating file output in addition to Output.
	File          string
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int
	CompressFiles bool
}

type logger struct {
	entry *logrus.Entry
}

// New creates a logger writing text to stdout at the level named by LOG_LEVEL.
func New() Logger {
	return NewWithOptions(Options{Level: os.Getenv("LOG_LEVEL")})
}

// NewWithOptions creates a logger from explicit options.
func NewWithOptions(opts Options) Logger {
	base := logrus.New()
	base.SetLevel(ParseLevel(opts.Level))

	if strings.EqualFold(opts.Format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.File != "" {
		out = io.MultiWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.CompressFiles,
		})
	}
	base.SetOutput(out)

	return &logger{entry: logrus.NewEntry(base)}
}

// ParseLevel converts a level name to a logrus level, defaulting to info.
func ParseLevel(levelStr string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func (l *logger) With(key string, value interface{}) Logger {
	return &logger{entry: l.entry.WithField(key, value)}
}

func (l *logger) Debug(v ...interface{})                 { l.entry.Debug(v...) }
func (l *logger) Debugf(format string, v ...interface{}) { l.entry.Debugf(format, v...) }
func (l *logger) Info(v ...interface{})                  { l.entry.Info(v...) }
func (l *logger) Infof(format string, v ...interface{})  { l.entry.Infof(format, v...) }
func (l *logger) Warn(v ...interface{})                  { l.entry.Warn(v...) }
func (l *logger) Warnf(format string, v ...interface{})  { l.entry.Warnf(format, v...) }
func (l *logger) Error(v ...interface{})                 { l.entry.Error(v...) }
func (l *logger) Errorf(format string, v ...interface{}) { l.entry.Errorf(format, v...) }

// Fatal logs an error message and exits
func (l *logger) Fatal(v ...interface{}) { l.entry.Fatal(v...) }

// Fatalf logs a formatted error message and exits
func (l *logger) Fatalf(format string, v ...interface{}) { l.entry.Fatalf(format, v...) }

// Discard returns a logger that drops everything. Useful in tests.
func Discard() Logger {
	return NewWithOptions(Options{Level: "error", Output: io.Discard})
}
