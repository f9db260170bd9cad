// Package logx provides structured, agent-scoped logging for the
// conversation manager and the truncation engine.
package logx

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is a log severity label.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	debugEnabled bool
	debugOnce    sync.Once
)

// debugOn reports whether debug logging was enabled via the DEBUG
// environment variable (DEBUG=1 or DEBUG=true).
func debugOn() bool {
	debugOnce.Do(func() {
		v := strings.ToLower(os.Getenv("DEBUG"))
		debugEnabled = v == "1" || v == "true"
	})
	return debugEnabled
}

// Logger writes leveled log lines prefixed with an agent identifier.
type Logger struct {
	agentID string
	logger  *log.Logger
}

// NewLogger creates a logger scoped to the given agent ID. Output goes to
// stderr so transcript output on stdout stays machine-readable.
func NewLogger(agentID string) *Logger {
	return &Logger{
		agentID: agentID,
		logger:  log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf("[%s] %s: %s", l.agentID, level, fmt.Sprintf(format, args...))
}

// Debug logs a debug message; suppressed unless DEBUG is set.
func (l *Logger) Debug(format string, args ...any) {
	if !debugOn() {
		return
	}
	l.logf(LevelDebug, format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.logf(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.logf(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.logf(LevelError, format, args...)
}
