// Package log provides a small leveled logging facade used throughout the
// minidump parser to report non-fatal anomalies without depending on a
// process-global logger.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Level is a log severity level.
type Level int8

// Available log levels, lowest to highest severity.
const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "?"
	}
}

// Logger is the minimal sink every log call is routed through.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger writes leveled messages to an io.Writer.
type stdLogger struct {
	mu  sync.Mutex
	log *log.Logger
}

// NewStdLogger returns a Logger that writes to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{log: log.New(w, "", log.LstdFlags)}
}

func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Println(append([]interface{}{level.String()}, keyvals...)...)
	return nil
}

// Filter wraps a Logger and drops records below a minimum level.
type Filter struct {
	logger Logger
	level  Level
}

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// FilterLevel sets the minimum level that passes through the filter.
func FilterLevel(level Level) FilterOption {
	return func(f *Filter) {
		f.level = level
	}
}

// NewFilter returns a Logger that only forwards records at or above the
// configured level.
func NewFilter(logger Logger, opts ...FilterOption) Logger {
	f := &Filter{logger: logger, level: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.level {
		return nil
	}
	return f.logger.Log(level, keyvals...)
}

// Helper wraps a Logger with printf-style convenience methods.
type Helper struct {
	logger Logger
}

// NewHelper returns a Helper backed by logger. If logger is nil, a
// discarding logger writing to io.Discard is used so callers never need a
// nil check.
func NewHelper(logger Logger) *Helper {
	if logger == nil {
		logger = NewFilter(NewStdLogger(io.Discard), FilterLevel(LevelFatal+1))
	}
	return &Helper{logger: logger}
}

// Debug logs at debug level.
func (h *Helper) Debug(a ...interface{}) {
	h.logger.Log(LevelDebug, fmt.Sprint(a...))
}

// Debugf logs a formatted message at debug level.
func (h *Helper) Debugf(format string, a ...interface{}) {
	h.logger.Log(LevelDebug, fmt.Sprintf(format, a...))
}

// Info logs at info level.
func (h *Helper) Info(a ...interface{}) {
	h.logger.Log(LevelInfo, fmt.Sprint(a...))
}

// Infof logs a formatted message at info level.
func (h *Helper) Infof(format string, a ...interface{}) {
	h.logger.Log(LevelInfo, fmt.Sprintf(format, a...))
}

// Warn logs at warn level.
func (h *Helper) Warn(a ...interface{}) {
	h.logger.Log(LevelWarn, fmt.Sprint(a...))
}

// Warnf logs a formatted message at warn level.
func (h *Helper) Warnf(format string, a ...interface{}) {
	h.logger.Log(LevelWarn, fmt.Sprintf(format, a...))
}

// Error logs at error level.
func (h *Helper) Error(a ...interface{}) {
	h.logger.Log(LevelError, fmt.Sprint(a...))
}

// Errorf logs a formatted message at error level.
func (h *Helper) Errorf(format string, a ...interface{}) {
	h.logger.Log(LevelError, fmt.Sprintf(format, a...))
}

// defaultLogger is used when a consumer never supplies one.
var defaultLogger = NewStdLogger(os.Stdout)

// DefaultLogger returns the package's fallback stdout logger.
func DefaultLogger() Logger {
	return defaultLogger
}
