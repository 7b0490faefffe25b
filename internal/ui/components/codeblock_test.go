// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides view-layer decoration for the chatpane TUI.
package components

import (
	"regexp"
	"strings"
	"testing"
)

var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripANSI removes color escapes so assertions can match across chroma
// token boundaries.
func stripANSI(s string) string {
	return ansiSeq.ReplaceAllString(s, "")
}

// =============================================================================
// CODE BLOCK TESTS
// =============================================================================

func TestNewCodeBlock(t *testing.T) {
	cb := NewCodeBlock("go", "package main")

	if cb.Language != "go" {
		t.Errorf("Language = %q, want %q", cb.Language, "go")
	}
	if cb.Code != "package main" {
		t.Errorf("Code = %q, want %q", cb.Code, "package main")
	}
	if cb.MaxWidth != 80 {
		t.Errorf("MaxWidth = %d, want 80", cb.MaxWidth)
	}
}

func TestCodeBlockRenderKeepsCodeText(t *testing.T) {
	cb := NewCodeBlock("go", "func add(a, b int) int {\n\treturn a + b\n}")

	rendered := stripANSI(cb.Render())
	if !strings.Contains(rendered, "add") {
		t.Errorf("Render() should contain the function name, got %q", rendered)
	}
	// Line numbers for all three lines
	for _, num := range []string{"1", "2", "3"} {
		if !strings.Contains(rendered, num) {
			t.Errorf("Render() missing line number %s", num)
		}
	}
}

func TestCodeBlockRenderIncludesLanguageBadge(t *testing.T) {
	cb := NewCodeBlock("python", "print('hi')")

	if !strings.Contains(stripANSI(cb.Render()), "python") {
		t.Error("Render() should include the language badge")
	}
}

func TestCodeBlockRenderEmptyLanguage(t *testing.T) {
	cb := NewCodeBlock("", "just some text")

	// Detection may or may not identify a language; rendering must not
	// panic and must keep the text.
	if !strings.Contains(stripANSI(cb.Render()), "just some text") {
		t.Error("Render() should keep the code text")
	}
}

func TestSetMaxWidth(t *testing.T) {
	cb := NewCodeBlock("go", "x := 1")
	cb.SetMaxWidth(40)

	if cb.MaxWidth != 40 {
		t.Errorf("MaxWidth = %d, want 40", cb.MaxWidth)
	}
}

// =============================================================================
// FENCED BLOCK PARSER TESTS
// =============================================================================

func TestParseCodeBlocks(t *testing.T) {
	text := "Here is an example:\n```go\nx := 1\n```\nAnd an explanation."

	got := stripANSI(ParseCodeBlocks(text, 80))
	if !strings.Contains(got, "Here is an example:") {
		t.Error("prose before the fence should survive")
	}
	if !strings.Contains(got, "And an explanation.") {
		t.Error("prose after the fence should survive")
	}
	if !strings.Contains(got, "x := 1") {
		t.Error("code content should survive")
	}
	if strings.Contains(got, "```") {
		t.Error("fence markers should be consumed")
	}
}

func TestParseCodeBlocksNoFences(t *testing.T) {
	text := "plain reply with no code at all"

	if got := ParseCodeBlocks(text, 80); got != text {
		t.Errorf("ParseCodeBlocks(%q) = %q, want unchanged", text, got)
	}
}

func TestParseCodeBlocksUnclosedFence(t *testing.T) {
	text := "Look:\n```python\nprint('hi')"

	got := stripANSI(ParseCodeBlocks(text, 80))
	if !strings.Contains(got, "print('hi')") {
		t.Error("code after an unclosed fence should still render")
	}
	if strings.Contains(got, "```") {
		t.Error("the dangling fence marker should be consumed")
	}
}

func TestParseCodeBlocksMultipleFences(t *testing.T) {
	text := "first\n```\na = 1\n```\nmiddle\n```\nb = 2\n```\nlast"

	got := stripANSI(ParseCodeBlocks(text, 80))
	for _, want := range []string{"first", "middle", "last", "a = 1", "b = 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("ParseCodeBlocks output missing %q", want)
		}
	}
}

// =============================================================================
// INLINE CODE TESTS
// =============================================================================

func TestParseInlineCode(t *testing.T) {
	got := ParseInlineCode("run `go vet` before committing")

	if !strings.Contains(got, "go vet") {
		t.Error("inline code content should survive")
	}
	if strings.Contains(got, "`") {
		t.Error("backticks should be consumed")
	}
}

func TestParseInlineCodeUnclosed(t *testing.T) {
	got := ParseInlineCode("a dangling `tick")

	if !strings.Contains(got, "`tick") {
		t.Errorf("unclosed backtick should be emitted literally, got %q", got)
	}
}

func TestParseInlineCodeNoTicks(t *testing.T) {
	text := "nothing special here"

	if got := ParseInlineCode(text); got != text {
		t.Errorf("ParseInlineCode(%q) = %q, want unchanged", text, got)
	}
}
