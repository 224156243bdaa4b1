package logger

// MultiLogger fans every message out to several backends, typically the
// console and the daemon log file.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger returns a logger writing to each non-nil backend in
// order.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) each(fn func(Logger)) {
	for _, l := range m.loggers {
		fn(l)
	}
}

func (m *MultiLogger) Info(format string, args ...interface{}) {
	m.each(func(l Logger) { l.Info(format, args...) })
}

func (m *MultiLogger) Warning(format string, args ...interface{}) {
	m.each(func(l Logger) { l.Warning(format, args...) })
}

func (m *MultiLogger) Error(format string, args ...interface{}) {
	m.each(func(l Logger) { l.Error(format, args...) })
}

// Debug reaches only the backends that have a debug level.
func (m *MultiLogger) Debug(format string, args ...interface{}) {
	m.each(func(l Logger) {
		if d, ok := l.(interface {
			Debug(string, ...interface{})
		}); ok {
			d.Debug(format, args...)
		}
	})
}

// Close closes every backend and returns the first error.
func (m *MultiLogger) Close() error {
	var first error
	m.each(func(l Logger) {
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
	})
	return first
}

var _ Logger = (*MultiLogger)(nil)
