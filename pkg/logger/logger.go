// Package logger provides the structured logger used across gorigol.
//
// The Logger interface accepts a message plus alternating key/value pairs. The default
// implementation is backed by log/slog, writing either human-readable console lines
// (console-slog) or JSON records, and can additionally tee records into a rotating log file.
package logger

import (
	"fmt"
	"strings"
)

// Level indicates the logging severity level.
type Level = int8

const (
	// DebugLevel logs individual SCPI commands and replies.
	DebugLevel Level = iota - 1
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs recoverable anomalies.
	WarnLevel
	// ErrorLevel logs failed operations.
	ErrorLevel
)

// Logger defines the logging interface used by the transport, session and CLI packages.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	// With creates a child logger carrying the given key/value pairs.
	With(keysAndValues ...any) Logger
	// Level returns the minimum enabled level.
	Level() Level
	// SetLevel sets the minimum enabled level.
	SetLevel(level Level)
}

// ParseLevel converts a level name (debug, info, warn, error) into a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", name)
}
