// Package logger provides structured logging for the map server.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger is the logging abstraction used across the service.
type Logger interface {
	Debug(message string, fields ...Field)
	Info(message string, fields ...Field)
	Warn(message string, fields ...Field)
	Error(message string, fields ...Field)
	// With returns a child logger that attaches fields to every entry.
	With(fields ...Field) Logger
}

// Field represents a structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// WithField creates a new field
func WithField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// WithError creates an "error" field
func WithError(err error) Field {
	return Field{Key: "error", Value: err}
}

// Options configures a logger created by New.
type Options struct {
	Level         string
	File          string
	DisableColors bool
	Output        io.Writer
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New creates a logrus backed logger. An unknown level falls back to info.
func New(opts Options) Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	log.SetFormatter(&ConsoleFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   opts.DisableColors,
	})

	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}
	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = io.MultiWriter(out, file)
		}
	}
	log.SetOutput(out)

	return &logrusLogger{entry: logrus.NewEntry(log)}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &logrusLogger{entry: logrus.NewEntry(log)}
}

func toLogrusFields(fields []Field) logrus.Fields {
	result := make(logrus.Fields, len(fields))
	for _, f := range fields {
		result[f.Key] = f.Value
	}
	return result
}

func (l *logrusLogger) With(fields ...Field) Logger {
	return &logrusLogger{entry: l.entry.WithFields(toLogrusFields(fields))}
}

func (l *logrusLogger) Debug(message string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Debug(message)
}

func (l *logrusLogger) Info(message string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Info(message)
}

func (l *logrusLogger) Warn(message string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Warn(message)
}

func (l *logrusLogger) Error(message string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Error(message)
}

// ConsoleFormatter renders entries as a single colored line.
type ConsoleFormatter struct {
	TimestampFormat string
	DisableColors   bool
}

// Format implements logrus.Formatter
func (f *ConsoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var levelColor *color.Color
	switch entry.Level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelColor = color.New(color.FgRed, color.Bold)
	case logrus.WarnLevel:
		levelColor = color.New(color.FgYellow, color.Bold)
	case logrus.InfoLevel:
		levelColor = color.New(color.FgCyan)
	default:
		levelColor = color.New(color.FgWhite, color.Faint)
	}
	levelText := strings.ToUpper(entry.Level.String())

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(entry.Time.Format(f.TimestampFormat))
	b.WriteString("] ")
	if f.DisableColors {
		b.WriteString(levelText)
	} else {
		b.WriteString(levelColor.Sprint(levelText))
	}
	b.WriteString(": ")
	b.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, entry.Data[k]))
		}
		fields := " {" + strings.Join(parts, ", ") + "}"
		if f.DisableColors {
			b.WriteString(fields)
		} else {
			b.WriteString(color.New(color.FgWhite, color.Faint).Sprint(fields))
		}
	}
	b.WriteString("\n")

	return []byte(b.String()), nil
}
