// Package logger provides leveled logging for the certman CLI tool.
//
// Debug output goes to stderr, separate from the user-facing output on
// stdout, so verbose runs do not interfere with JSON output or with a
// scheduler capturing the command result.
//
// # Log Levels
//
// Four levels are supported, in order of severity: Debug, Info, Warn,
// Error. By default only Warn and Error are shown; Init(true) enables
// Debug and Info for --verbose runs.
//
// # Usage
//
//	logger.Init(verbose)
//	logger.Debug("loading config from %s", path)
//	logger.Warn("cleanup of TXT record failed: %v", err)
//
// Structured variants append sorted key=value pairs:
//
//	logger.InfoFields("challenge published", map[string]interface{}{
//	    "domain": domain,
//	    "record": req.RecordName,
//	})
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents a logging severity level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
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
	default:
		return "UNKNOWN"
	}
}

// Logger handles leveled logging with thread-safe output.
type Logger struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
}

// Global logger instance. Default: warnings and errors only.
var std = &Logger{
	level:  LevelWarn,
	output: os.Stderr,
}

// Init initializes the global logger with the specified verbosity.
// Verbose enables Debug and Info output.
func Init(verbose bool) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if verbose {
		std.level = LevelDebug
	} else {
		std.level = LevelWarn
	}
}

// SetLevel sets the minimum log level for the global logger.
func SetLevel(level Level) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.level = level
}

// SetOutput sets the output destination for the global logger.
// Useful for testing. Default is os.Stderr.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.output = w
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	_, _ = fmt.Fprintf(l.output, "[%s] %s %s\n",
		level.String(),
		time.Now().Format("2006-01-02 15:04:05"),
		fmt.Sprintf(format, args...))
}

func (l *Logger) logFields(level Level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	// Sorted keys keep the output stable for tests and grep.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	_, _ = fmt.Fprintf(l.output, "[%s] %s %s%s\n",
		level.String(),
		time.Now().Format("2006-01-02 15:04:05"),
		msg,
		b.String())
}

// Debug logs a debug message. Only shown in verbose mode.
func Debug(format string, args ...interface{}) {
	std.log(LevelDebug, format, args...)
}

// Info logs an informational message. Only shown in verbose mode.
func Info(format string, args ...interface{}) {
	std.log(LevelInfo, format, args...)
}

// Warn logs a warning message. Always shown.
func Warn(format string, args ...interface{}) {
	std.log(LevelWarn, format, args...)
}

// Error logs an error message. Always shown.
func Error(format string, args ...interface{}) {
	std.log(LevelError, format, args...)
}

// DebugFields logs a debug message with structured fields.
func DebugFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelDebug, msg, fields)
}

// InfoFields logs an informational message with structured fields.
func InfoFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelInfo, msg, fields)
}

// WarnFields logs a warning message with structured fields.
func WarnFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelWarn, msg, fields)
}

// ErrorFields logs an error message with structured fields.
func ErrorFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelError, msg, fields)
}
