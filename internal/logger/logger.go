// Package logger provides a simple logging interface for dockmon components.
// It allows packages to log debug, info, warn, and error messages without
// being coupled to a specific logging implementation.
//
// The dashboard owns the terminal, so the production logger writes through
// logrus to a file configured with Setup.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// DebugEnv enables debug output when set to any non-empty value.
const DebugEnv = "DOCKMON_DEBUG"

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Setup points the shared logrus logger at path, creating parent directories
// as needed. The returned closer releases the file.
func Setup(path string, debug bool) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	configure(logrus.StandardLogger(), f, debug)
	return f, nil
}

// SetupWriter points the shared logrus logger at out. Used when the
// terminal is free, e.g. headless mode logging to stderr.
func SetupWriter(out io.Writer, debug bool) {
	configure(logrus.StandardLogger(), out, debug)
}

func configure(l *logrus.Logger, out io.Writer, debug bool) {
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "01-02 15:04:05.000",
		DisableColors:   true,
	})
	if debug || os.Getenv(DebugEnv) != "" {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
}

// logrusLogger implements Logger on top of a logrus logger.
type logrusLogger struct {
	base   *logrus.Logger
	prefix string
}

// NewEnvLogger creates a logger on the shared logrus logger.
// Debug messages are only emitted when DOCKMON_DEBUG is set or Setup was
// called with debug enabled. The prefix is prepended to all log messages
// (e.g., "[syncer]" or "[docker]").
func NewEnvLogger(prefix string) Logger {
	return &logrusLogger{base: logrus.StandardLogger(), prefix: prefix}
}

// New creates a logger writing to out, independent of the shared logger.
func New(out io.Writer, prefix string, debug bool) Logger {
	l := logrus.New()
	configure(l, out, debug)
	return &logrusLogger{base: l, prefix: prefix}
}

func (l *logrusLogger) format(format string) string {
	if l.prefix == "" {
		return format
	}
	return l.prefix + " " + format
}

func (l *logrusLogger) Debug(format string, args ...interface{}) {
	l.base.Debugf(l.format(format), args...)
}

func (l *logrusLogger) Info(format string, args ...interface{}) {
	l.base.Infof(l.format(format), args...)
}

func (l *logrusLogger) Warn(format string, args ...interface{}) {
	l.base.Warnf(l.format(format), args...)
}

func (l *logrusLogger) Error(format string, args ...interface{}) {
	l.base.Errorf(l.format(format), args...)
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
// Safe for concurrent use; the sync loop logs from worker goroutines.
type BufferLogger struct {
	mu       sync.Mutex
	messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args...) }

// Messages returns a copy of everything captured so far.
func (l *BufferLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages() {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Contains returns true if any captured message contains substr.
func (l *BufferLogger) Contains(substr string) bool {
	for _, m := range l.Messages() {
		if strings.Contains(m.Message, substr) {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = l.messages[:0]
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewEnvLogger("")
)

// Default returns the default logger for the package.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger for the package.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}
