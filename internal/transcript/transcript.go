// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript renders model responses into display lines and keeps
// the running chat log for a session.
//
// Rendering is a pure function from (result, prompt) to a flat slice of
// single display lines. The transcript stores plain strings only; colors and
// highlighting are the view's business.
package transcript

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/chatpane/internal/ollama"
)

// Separator is the line drawn between exchanges. Exactly 40 dashes.
const Separator = "----------------------------------------"

// noContentLine is shown when the model answered with nothing visible.
const noContentLine = "AI: [No response content]"

// continuationIndent prefixes every AI line after the first.
const continuationIndent = "    "

// =============================================================================
// RENDERING
// =============================================================================

// Render formats one exchange as display lines. No element ever contains an
// embedded newline: each is exactly one display line.
//
// The prompt line comes first, whitespace-normalized, then a blank. An error
// result renders as a single "Error: " line plus a blank and stops there. A
// successful result renders "AI: " on the first non-empty line of the reply,
// four-space indents on the rest, then a blank, the separator, and two more
// blanks.
func Render(result ollama.ModelResponse, userPrompt string) []string {
	lines := make([]string, 0, 8)
	lines = append(lines, "You: "+Normalize(userPrompt), "")

	if !result.OK {
		return append(lines, "Error: "+flatten(result.Err), "")
	}

	kept := 0
	for _, sub := range strings.Split(result.Text, "\n") {
		sub = strings.TrimSuffix(sub, "\r")
		if sub == "" {
			continue
		}
		if kept == 0 {
			lines = append(lines, "AI: "+sub)
		} else {
			lines = append(lines, continuationIndent+sub)
		}
		kept++
	}
	if kept == 0 {
		lines = append(lines, noContentLine)
	}

	return append(lines, "", Separator, "", "")
}

// Normalize collapses whitespace runs, including newlines and tabs, to
// single spaces and trims the ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// flatten collapses embedded newlines in an error message to spaces so the
// message stays a single display line. Other whitespace is preserved.
func flatten(msg string) string {
	return newlineFlattener.Replace(msg)
}

var newlineFlattener = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// =============================================================================
// SESSION TRANSCRIPT
// =============================================================================

// Transcript is the append-only chat log for one session. It is owned by a
// single caller and is not safe for concurrent use; the send path is
// synchronous, so nothing else ever mutates it.
type Transcript struct {
	id        string
	lines     []string
	exchanges int
}

// New creates an empty transcript with a fresh session ID.
func New() *Transcript {
	return &Transcript{id: uuid.NewString()}
}

// ID returns the session identifier.
func (t *Transcript) ID() string {
	return t.id
}

// Append renders an exchange, adds it to the log, and returns the rendered
// block for immediate display.
func (t *Transcript) Append(result ollama.ModelResponse, userPrompt string) []string {
	block := Render(result, userPrompt)
	t.lines = append(t.lines, block...)
	t.exchanges++
	return block
}

// Lines returns a copy of all display lines so far.
func (t *Transcript) Lines() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Len returns the number of display lines.
func (t *Transcript) Len() int {
	return len(t.lines)
}

// Exchanges returns how many prompt/response pairs have been appended.
func (t *Transcript) Exchanges() int {
	return t.exchanges
}

// Clear empties the log. The session ID is kept.
func (t *Transcript) Clear() {
	t.lines = nil
	t.exchanges = 0
}
