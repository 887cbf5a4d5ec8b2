package gateway

import (
	"log"
	"os"
	"strings"
)

// Level is a logging verbosity threshold for Logger.
//
// No example repo in the retrieved corpus pulls in a structured logging
// library (the teacher itself logs with bare fmt.Printf), so this wraps
// the standard library's log.Logger instead of reaching for zerolog/zap —
// see DESIGN.md for the full justification.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelSilent disables all logging.
	LevelSilent
)

// ParseLevel parses one of "debug", "info", "warn", "error", or "silent",
// case-insensitively. It defaults to LevelInfo for anything else.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "silent", "none":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// Logger is the minimal leveled logger used throughout this package.
type Logger struct {
	level Level
	out   *log.Logger
}

// NewLogger builds a Logger at the given level, writing to stderr with a
// timestamped, package-prefixed line format.
func NewLogger(level Level) *Logger {
	return &Logger{
		level: level,
		out:   log.New(os.Stderr, "gateway: ", log.LstdFlags),
	}
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}
	l.out.Printf(format, args...)
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }
