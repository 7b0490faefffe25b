// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// LOGGER TESTS
// =============================================================================

func TestNew_WritesTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chatpane.log")

	l, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer l.Close()

	l.Infof("request sent to %s", "http://127.0.0.1:11434")
	l.Warnf("skipping malformed stream line: %q", "not json")
	l.Errorf("transport failure: %v", "connection refused")

	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	text := string(content)

	for _, want := range []string{"INFO", "WARN", "ERROR", "malformed stream line", "connection refused"} {
		if !strings.Contains(text, want) {
			t.Errorf("log file missing %q in:\n%s", want, text)
		}
	}

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("log file has %d lines, want 3", len(lines))
	}
}

func TestNew_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chatpane.log")

	l, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer l.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("log file perm = %o, want 0600", perm)
	}
}

func TestLogger_DisabledIsNoOp(t *testing.T) {
	var l Logger

	if l.Enabled() {
		t.Error("zero-value logger reports enabled")
	}

	// None of these may panic or write anywhere.
	l.Infof("info %d", 1)
	l.Warnf("warn")
	l.Errorf("error")

	if err := l.Close(); err != nil {
		t.Errorf("Close() on disabled logger error = %v", err)
	}
}

func TestLogger_NilReceiverIsSafe(t *testing.T) {
	var l *Logger

	if l.Enabled() {
		t.Error("nil logger reports enabled")
	}
	l.Warnf("must not panic")
	if err := l.Close(); err != nil {
		t.Errorf("Close() on nil logger error = %v", err)
	}
}

func TestLogger_WriteAfterCloseIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatpane.log")

	l, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	l.Infof("dropped")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if len(content) != 0 {
		t.Errorf("expected empty log after close, got %q", string(content))
	}
}
