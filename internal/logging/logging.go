// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides a file-backed debug logger.
//
// The logger is off by default. Setting CHATPANE_DEBUG=1 enables it, and
// lines are appended to ~/.chatpane/logs/chatpane.log (0600). User-facing
// output never goes through this package; it exists for diagnosing parse
// warnings and request failures after the fact.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	logDirName  = "logs"
	logFileName = "chatpane.log"

	// EnvDebug enables file logging when set to a non-empty value other
	// than "0".
	EnvDebug = "CHATPANE_DEBUG"
)

// Logger writes timestamped lines to a single log file. A disabled Logger
// is valid; all of its methods are no-ops. The zero value is disabled.
type Logger struct {
	mu      sync.Mutex
	f       *os.File
	enabled bool
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Get returns the process-wide logger, creating it on first use. When
// CHATPANE_DEBUG is unset the returned logger is disabled. Open failures
// also yield a disabled logger; logging must never take the session down.
func Get() *Logger {
	once.Do(func() {
		if v := os.Getenv(EnvDebug); v == "" || v == "0" {
			defaultLogger = &Logger{}
			return
		}
		home, err := os.UserHomeDir()
		if err != nil {
			defaultLogger = &Logger{}
			return
		}
		path := filepath.Join(home, ".chatpane", logDirName, logFileName)
		l, err := New(path)
		if err != nil {
			defaultLogger = &Logger{}
			return
		}
		defaultLogger = l
	})
	return defaultLogger
}

// New opens (or creates) an enabled logger appending to path. The log file
// and its directory are private to the user.
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &Logger{f: f, enabled: true}, nil
}

// Enabled reports whether log lines are being written.
func (l *Logger) Enabled() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Infof writes an INFO line.
func (l *Logger) Infof(format string, args ...any) {
	l.write("INFO", format, args)
}

// Warnf writes a WARN line. The ollama parser uses this to report skipped
// malformed stream lines.
func (l *Logger) Warnf(format string, args ...any) {
	l.write("WARN", format, args)
}

// Errorf writes an ERROR line.
func (l *Logger) Errorf(format string, args ...any) {
	l.write("ERROR", format, args)
}

func (l *Logger) write(level, format string, args []any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || l.f == nil {
		return
	}
	ts := time.Now().UTC().Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.f, "%s %-5s %s\n", ts, level, fmt.Sprintf(format, args...))
}

// Close releases the log file. Further writes become no-ops.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = false
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
