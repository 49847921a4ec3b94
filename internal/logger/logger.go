package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Fields is a set of structured log fields.
type Fields = map[string]interface{}

// Logger wraps zerolog.Logger with a field-map API.
type Logger struct {
	zlog zerolog.Logger
}

// New creates a Logger writing to stdout.
// Development gets colored console output at debug level; every other
// environment gets JSON at info level. A non-empty level overrides the default.
func New(env, level string) *Logger {
	var output io.Writer = os.Stdout
	if env == "development" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	return NewWithWriter(output, env, level)
}

// NewWithWriter creates a Logger writing to w.
func NewWithWriter(w io.Writer, env, level string) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	zlog := zerolog.New(w).
		Level(resolveLevel(env, level)).
		With().
		Timestamp().
		Logger()

	return &Logger{zlog: zlog}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

func resolveLevel(env, level string) zerolog.Level {
	if level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			return parsed
		}
	}
	if env == "development" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

func withFields(event *zerolog.Event, fields Fields) *zerolog.Event {
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	return event
}

// Debug logs a debug message with optional fields.
func (l *Logger) Debug(msg string, fields Fields) {
	withFields(l.zlog.Debug(), fields).Msg(msg)
}

// Info logs an info message with optional fields.
func (l *Logger) Info(msg string, fields Fields) {
	withFields(l.zlog.Info(), fields).Msg(msg)
}

// Warn logs a warning message with optional fields.
func (l *Logger) Warn(msg string, fields Fields) {
	withFields(l.zlog.Warn(), fields).Msg(msg)
}

// Error logs an error message with an error and optional fields.
func (l *Logger) Error(msg string, err error, fields Fields) {
	withFields(l.zlog.Error().Err(err), fields).Msg(msg)
}

// Fatal logs a fatal message and exits the application.
func (l *Logger) Fatal(msg string, err error, fields Fields) {
	withFields(l.zlog.Fatal().Err(err), fields).Msg(msg)
}

// With creates a child logger with additional context fields.
func (l *Logger) With(fields Fields) *Logger {
	ctx := l.zlog.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}
	return &Logger{zlog: ctx.Logger()}
}

// WithRequestID creates a child logger with a request ID field.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		zlog: l.zlog.With().Str("request_id", requestID).Logger(),
	}
}

// WithUpload creates a child logger scoped to one upload.
func (l *Logger) WithUpload(uploadID string) *Logger {
	return &Logger{
		zlog: l.zlog.With().Str("upload_id", uploadID).Logger(),
	}
}

// GetZerolog returns the underlying zerolog.Logger.
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}
