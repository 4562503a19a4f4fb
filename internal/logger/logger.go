package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level controls which messages are emitted.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

var (
	mu      sync.RWMutex
	current = LevelInfo
	out     = log.New(os.Stderr, "", log.LstdFlags)
)

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", s)
}

// SetLevel sets the global log level.
func SetLevel(l Level) {
	mu.Lock()
	current = l
	mu.Unlock()
}

// SetOutput redirects log output, e.g. to a file from config.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = log.New(w, "", log.LstdFlags)
	mu.Unlock()
}

func logf(l Level, format string, args ...any) {
	mu.RLock()
	enabled := l >= current
	w := out
	mu.RUnlock()
	if !enabled {
		return
	}
	w.Printf("[%s] %s", levelNames[l], fmt.Sprintf(format, args...))
}

func Tracef(format string, args ...any) { logf(LevelTrace, format, args...) }
func Debugf(format string, args ...any) { logf(LevelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(LevelWarn, format, args...) }
func Errorf(format string, args ...any) { logf(LevelError, format, args...) }

// Fatalf logs at fatal level and exits.
func Fatalf(format string, args ...any) {
	logf(LevelFatal, format, args...)
	os.Exit(1)
}
