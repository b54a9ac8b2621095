// SPDX-License-Identifier: MIT
/*
Package log is a small level-gated logger shared by every package.

Nothing in here is safe to call from the per-sample path: formatting
allocates. Audio-thread code records counters instead and lets the cold path
report them.
*/
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel converts a string (case-insensitive) to a LogLevel.
// Returns LevelInfo and false if the string is not recognized.
func ParseLevel(levelStr string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

var (
	currentLevel atomic.Uint32
	logger       = stdlog.New(os.Stderr, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds)
)

func init() {
	SetLevel(LevelInfo)
}

// SetLevel sets the global logging level.
func SetLevel(level LogLevel) {
	currentLevel.Store(uint32(level))
}

// GetLevel gets the current global logging level.
func GetLevel() LogLevel {
	return LogLevel(currentLevel.Load())
}

// SetOutput redirects log output. The TUI uses it to keep log lines off the
// alternate screen.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func shouldLog(level LogLevel) bool {
	return level >= GetLevel()
}

func output(level LogLevel, msg string) {
	// Pad to the widest level name so messages line up.
	_ = logger.Output(3, fmt.Sprintf("[%s]%s %s", level, strings.Repeat(" ", 5-len(level.String())), msg))
}

func logf(level LogLevel, format string, v []any) {
	if shouldLog(level) {
		output(level, fmt.Sprintf(format, v...))
	}
}

func logln(level LogLevel, v []any) {
	if shouldLog(level) {
		output(level, fmt.Sprint(v...))
	}
}

func Debugf(format string, v ...any) { logf(LevelDebug, format, v) }
func Infof(format string, v ...any)  { logf(LevelInfo, format, v) }
func Warnf(format string, v ...any)  { logf(LevelWarn, format, v) }
func Errorf(format string, v ...any) { logf(LevelError, format, v) }

func Debug(v ...any) { logln(LevelDebug, v) }
func Info(v ...any)  { logln(LevelInfo, v) }
func Warn(v ...any)  { logln(LevelWarn, v) }
func Error(v ...any) { logln(LevelError, v) }

// Fatalf logs regardless of level and exits the process.
func Fatalf(format string, v ...any) {
	output(LevelFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Fatal logs regardless of level and exits the process.
func Fatal(v ...any) {
	output(LevelFatal, fmt.Sprint(v...))
	os.Exit(1)
}
