// Package log provides a leveled, categorized file logger for the
// application. Everything is written to a log file rather than stdout
// because stdout belongs to the TUI.
//
// Usage:
//
//	cleanup, err := log.Init(".aisleguide/aisleguide.log")
//	defer cleanup()
//	log.Debug(log.CatGuide, "path planned", "cells", len(p))
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the bracketed tag used in log lines.
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

// ParseLevel converts a string (any case) into a Level.
// Unrecognized values default to LevelDebug.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelDebug
	}
}

// Category identifies the subsystem a log entry came from.
type Category string

const (
	CatGuide  Category = "guide"
	CatAudio  Category = "audio"
	CatSpeech Category = "speech"
	CatConfig Category = "config"
	CatUI     Category = "ui"
)

var (
	mu       sync.Mutex
	out      io.Writer = io.Discard
	minLevel           = LevelDebug
	clock              = time.Now
)

// Init opens (or creates) the log file at path and directs all subsequent
// log calls to it. It returns a cleanup function that flushes and closes
// the file. Before Init is called log output is discarded.
func Init(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	mu.Lock()
	out = f
	mu.Unlock()

	cleanup := func() {
		mu.Lock()
		defer mu.Unlock()
		out = io.Discard
		_ = f.Close()
	}
	return cleanup, nil
}

// SetMinLevel filters out entries below the given level.
func SetMinLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// Debug logs a debug-level entry.
func Debug(cat Category, msg string, kv ...any) { write(LevelDebug, cat, msg, kv...) }

// Info logs an info-level entry.
func Info(cat Category, msg string, kv ...any) { write(LevelInfo, cat, msg, kv...) }

// Warn logs a warn-level entry.
func Warn(cat Category, msg string, kv ...any) { write(LevelWarn, cat, msg, kv...) }

// Error logs an error-level entry.
func Error(cat Category, msg string, kv ...any) { write(LevelError, cat, msg, kv...) }

// write formats an entry as "<ts> [LEVEL] [cat] msg key=value ..." and
// appends it to the log file. Dangling keys (odd kv length) are written as
// key=<missing>.
func write(level Level, cat Category, msg string, kv ...any) {
	mu.Lock()
	defer mu.Unlock()

	if level < minLevel {
		return
	}

	var b strings.Builder
	b.WriteString(clock().Format("2006-01-02 15:04:05.000"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, " %v=<missing>", kv[i])
		}
	}
	b.WriteByte('\n')

	_, _ = io.WriteString(out, b.String())
}
