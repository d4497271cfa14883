// Package log provides leveled debug logging for inline.
//
// The level is process-wide and set once at startup from configuration;
// handlers and services call Debug with the level their message belongs to.
package log

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Level controls how much debug output is emitted.
type Level int32

const (
	// Off disables all debug output.
	Off Level = iota
	// Basic logs high-level operations (one line per request or save).
	Basic
	// Detailed logs intermediate steps (block assembly, upload stages).
	Detailed
	// Trace logs fine-grained progress within a step.
	Trace
	// Wire logs raw request/response bodies.
	Wire
)

// LevelFromInt converts a numeric verbosity (e.g. from a -v flag or env var)
// to a Level, clamping out-of-range values.
func LevelFromInt(n int) Level {
	if n <= 0 {
		return Off
	}
	if n >= int(Wire) {
		return Wire
	}
	return Level(n)
}

var current atomic.Int32

// SetLevel sets the process-wide debug level.
func SetLevel(l Level) {
	current.Store(int32(l))
}

// CurrentLevel returns the active debug level.
func CurrentLevel() Level {
	return Level(current.Load())
}

// Enabled reports whether messages at the given level are emitted.
func Enabled(l Level) bool {
	return l != Off && CurrentLevel() >= l
}

// Debug writes a formatted message to stderr if the given level is enabled.
func Debug(l Level, format string, args ...any) {
	if !Enabled(l) {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// Log writes a formatted message to stderr unconditionally.
func Log(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
