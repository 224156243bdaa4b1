// Package logger provides the logging interface shared by the cookiebridge
// daemon, its transports and the cookie store.
//
// Cookie values must never reach a Logger. Callers log cookie names and
// hosts only.
package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// Logger defines the interface for leveled logging across all components.
type Logger interface {
	// Info logs an informational message (e.g., "daemon listening on ...").
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g., "dropping duplicate reply").
	Warning(format string, args ...interface{})

	// Error logs an error message (e.g., "flush failed: disk full").
	Error(format string, args ...interface{})

	// Close releases resources held by the logger.
	// Safe to call multiple times.
	Close() error
}

// StandardLogger wraps the stdlib *log.Logger for console/file output.
type StandardLogger struct {
	logger *log.Logger
	debug  bool
}

// NewStandardLogger creates a logger that wraps the given *log.Logger.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// WithDebug enables Debug output and returns the logger.
func (s *StandardLogger) WithDebug(enabled bool) *StandardLogger {
	s.debug = enabled
	return s
}

// Info logs an informational message with [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logger.Printf("[INFO] "+format, args...)
}

// Warning logs a warning message with [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logger.Printf("[WARNING] "+format, args...)
}

// Error logs an error message with [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// Debug logs with [DEBUG] prefix when debug output is enabled.
func (s *StandardLogger) Debug(format string, args ...interface{}) {
	if s.debug {
		s.logger.Printf("[DEBUG] "+format, args...)
	}
}

// Close is a no-op for StandardLogger (no resources to release).
func (s *StandardLogger) Close() error {
	return nil
}

// NopLogger is a logger that discards all messages.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Info discards the message.
func (n *NopLogger) Info(format string, args ...interface{}) {}

// Warning discards the message.
func (n *NopLogger) Warning(format string, args ...interface{}) {}

// Error discards the message.
func (n *NopLogger) Error(format string, args ...interface{}) {}

// Close is a no-op.
func (n *NopLogger) Close() error {
	return nil
}

// Ensure implementations satisfy the Logger interface.
var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// Named returns a Logger that prefixes every message with "name: ".
func Named(l Logger, name string) Logger {
	return &namedLogger{l: l, prefix: name + ": "}
}

type namedLogger struct {
	l      Logger
	prefix string
}

func (n *namedLogger) Info(format string, args ...interface{}) {
	n.l.Info(n.prefix+format, args...)
}

func (n *namedLogger) Warning(format string, args ...interface{}) {
	n.l.Warning(n.prefix+format, args...)
}

func (n *namedLogger) Error(format string, args ...interface{}) {
	n.l.Error(n.prefix+format, args...)
}

// Close does not close the wrapped logger; it is owned elsewhere.
func (n *namedLogger) Close() error {
	return nil
}

// ToStdLogger returns a *log.Logger whose output is routed to l at Info
// level. It is meant for libraries that only accept a stdlib logger.
func ToStdLogger(l Logger) *log.Logger {
	return log.New(&infoWriter{l: l}, "", 0)
}

type infoWriter struct {
	l Logger
}

func (w *infoWriter) Write(p []byte) (int, error) {
	w.l.Info("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

var _ io.Writer = (*infoWriter)(nil)

// MockLogger implements Logger for testing purposes.
// It records all log calls for verification in tests.
type MockLogger struct {
	mu           sync.Mutex
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates a new MockLogger for testing.
func NewMockLogger() *MockLogger {
	return &MockLogger{
		InfoCalls:    make([]string, 0),
		WarningCalls: make([]string, 0),
		ErrorCalls:   make([]string, 0),
	}
}

// Info records the formatted message.
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

// Warning records the formatted message.
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

// Error records the formatted message.
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

// Close records that Close was called.
func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

// Warnings returns a copy of the recorded warnings.
func (m *MockLogger) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.WarningCalls...)
}

// Ensure MockLogger satisfies the Logger interface.
var _ Logger = (*MockLogger)(nil)
