/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package logger provides the zerolog implementation of the key/value logger used by
// the retriever and the storage drivers.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog. Arguments of Debug, Info, Warn and Error are alternating keys
// and values, as with log/slog.
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // human readable console output
	Output     io.Writer
	WithCaller bool
}

// New creates a structured logger.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "contentstore").
		Logger()

	if cfg.WithCaller {
		// Skip the wrapper frame so the caller is the code that logged.
		zlog = zlog.With().CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 1).Logger()
	}

	return &Logger{zlog: zlog}
}

// ParseLevel maps a level name to a zerolog level. Unknown names mean info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Zerolog returns the underlying zerolog logger
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

// With returns a logger that adds the key/value pairs to every message.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{zlog: l.zlog.With().Fields(pairs(args)).Logger()}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.log(l.zlog.Debug(), msg, args)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.log(l.zlog.Info(), msg, args)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.log(l.zlog.Warn(), msg, args)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.log(l.zlog.Error(), msg, args)
}

func (l *Logger) log(event *zerolog.Event, msg string, args []any) {
	if event == nil {
		return
	}
	event.Fields(pairs(args)).Msg(msg)
}

// pairs turns alternating keys and values into zerolog fields. A dangling key gets the
// value "!MISSING", and non-string keys are stored under "!BADKEY" like slog does.
func pairs(args []any) []any {
	res := make([]any, 0, len(args)+1)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			res = append(res, "!BADKEY", args[i])
			i--
			continue
		}
		if i+1 >= len(args) {
			res = append(res, key, "!MISSING")
			break
		}
		res = append(res, key, args[i+1])
	}
	return res
}
