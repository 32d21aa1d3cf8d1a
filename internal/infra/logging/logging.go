// Package logging adapts logrus to the key/value logging contract the
// lifecycle service expects.
package logging

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Config controls logger construction.
type Config struct {
	Level   string // trace, debug, info, warn, error; default info
	Format  string // "json" or "text"; default text
	Service string // stamped on every entry as the service field
}

// Logger wraps a logrus entry behind the Debug/Info/Warn/Error key-value
// surface used across the service layer.
type Logger struct {
	entry *logrus.Entry
}

// New builds a configured logger writing to stdout.
func New(cfg Config) *Logger {
	base := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)
	if cfg.Format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		base.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339Nano, FullTimestamp: true})
	}
	base.SetOutput(os.Stdout)

	entry := logrus.NewEntry(base)
	if cfg.Service != "" {
		entry = entry.WithField("service", cfg.Service)
	}
	return &Logger{entry: entry}
}

// FromLogrus wraps an existing logrus entry.
func FromLogrus(entry *logrus.Entry) *Logger { return &Logger{entry: entry} }

// With returns a child logger carrying the extra key/value pairs.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{entry: l.entry.WithFields(toFields(args))}
}

// Debug logs at debug level with trailing key/value pairs.
func (l *Logger) Debug(msg string, args ...any) { l.entry.WithFields(toFields(args)).Debug(msg) }

// Info logs at info level with trailing key/value pairs.
func (l *Logger) Info(msg string, args ...any) { l.entry.WithFields(toFields(args)).Info(msg) }

// Warn logs at warn level with trailing key/value pairs.
func (l *Logger) Warn(msg string, args ...any) { l.entry.WithFields(toFields(args)).Warn(msg) }

// Error logs at error level with trailing key/value pairs.
func (l *Logger) Error(msg string, args ...any) { l.entry.WithFields(toFields(args)).Error(msg) }

// toFields pairs up the variadic key/value list. A trailing key without a
// value and non-string keys are kept visible rather than dropped.
func toFields(args []any) logrus.Fields {
	if len(args) == 0 {
		return nil
	}
	fields := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			fields["!BADKEY"] = args[i]
			continue
		}
		if i+1 >= len(args) {
			fields[key] = "(MISSING)"
			break
		}
		fields[key] = args[i+1]
	}
	return fields
}
