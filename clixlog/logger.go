// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clixlog is the leveled, optionally-JSON, optionally-file-backed
// logger used by the engine's diagnostics and the built-in logger plugin.
// It carries a package-level enable/disable/toggle switch with
// last-writer-wins semantics, per spec §5's "process-level logger
// enable/disable flags are shared mutable state ... explicitly documented
// as global".
package clixlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is the severity of a log record.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

var enabled atomic.Bool

func init() {
	enabled.Store(true)
}

// Enable turns global logging on. Last writer wins across goroutines.
func Enable() { enabled.Store(true) }

// Disable turns global logging off; Logger.log becomes a no-op until
// Enable is called again.
func Disable() { enabled.Store(false) }

// Toggle flips the global switch and returns the new state.
func Toggle() bool {
	for {
		old := enabled.Load()
		if enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Enabled reports the current global switch state.
func Enabled() bool { return enabled.Load() }

// DebugEnabled reports whether CLIX_DEBUG=1 is set in the process
// environment, the ambient switch a host Client checks before printing an
// uncaught error's full cause chain instead of just its top-level
// message — the Go-idiomatic analogue of the teacher's
// NODE_ENV=development stack-trace mode, since Go errors carry a wrap
// chain rather than a captured call stack. Read fresh on every call
// rather than cached, so tests can toggle it with t.Setenv.
func DebugEnabled() bool {
	return os.Getenv("CLIX_DEBUG") == "1"
}

// Rotation configures lumberjack-backed file rotation for a file sink.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotation matches the rotation policy the ambient stack uses
// elsewhere in this codebase's corpus (128MB/5 backups/16 days).
var DefaultRotation = Rotation{MaxSizeMB: 128, MaxBackups: 5, MaxAgeDays: 16}

type record struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Name      string `json:"name,omitempty"`
	Message   string `json:"message"`
}

// Logger writes leveled records to stdout and, optionally, a rotating
// file sink.
type Logger struct {
	writer     io.Writer
	Name       string
	Level      Level
	JSON       bool
	TimeFormat string
}

// New returns a Logger writing to stdout only.
func New(name string, level Level) *Logger {
	return &Logger{writer: os.Stdout, Name: name, Level: level, TimeFormat: time.RFC3339}
}

// NewWithFile returns a Logger writing to stdout and a lumberjack-rotated
// file at path.
func NewWithFile(name string, level Level, path string, rot Rotation) *Logger {
	fileWriter := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAgeDays,
		Compress:   rot.Compress,
	}
	return &Logger{
		writer:     io.MultiWriter(os.Stdout, fileWriter),
		Name:       name,
		Level:      level,
		TimeFormat: time.RFC3339,
	}
}

// Named returns a child Logger sharing this Logger's writer.
func (l *Logger) Named(name string) *Logger {
	full := name
	if l.Name != "" {
		full = l.Name + "/" + name
	}
	return &Logger{writer: l.writer, Name: full, Level: l.Level, JSON: l.JSON, TimeFormat: l.TimeFormat}
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if !enabled.Load() || level < l.Level {
		return
	}
	formatted := fmt.Sprintf(msg, args...)
	ts := time.Now().Format(l.TimeFormat)

	if l.JSON {
		rec := record{Timestamp: ts, Level: level.String(), Name: l.Name, Message: formatted}
		enc, _ := json.Marshal(rec)
		fmt.Fprintf(l.writer, "%s\n", enc)
		return
	}
	if l.Name != "" {
		fmt.Fprintf(l.writer, "[%s] %-5s [%s] %s\n", ts, level, l.Name, formatted)
		return
	}
	fmt.Fprintf(l.writer, "[%s] %-5s %s\n", ts, level, formatted)
}

func (l *Logger) Debug(msg string, args ...any) { l.log(Debug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(Info, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(Warn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(Error, msg, args...) }
