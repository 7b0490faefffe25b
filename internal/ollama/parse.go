// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"

	"github.com/jeranaias/chatpane/internal/util"
)

// maxLineBytes bounds a single stream line during parsing. Ollama chunks are
// small, but a non-streaming body arrives as one line and can carry a long
// completion.
const maxLineBytes = 2 * 1024 * 1024

// excerptRunes bounds the raw-input excerpt embedded in parse failure
// messages.
const excerptRunes = 120

// Notifier receives warnings about recoverable parse problems, such as a
// malformed line inside an otherwise valid stream.
type Notifier interface {
	Warnf(format string, args ...any)
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// ModelResponse is the outcome of parsing a model reply: either extracted
// text or a terminal error message, never both.
type ModelResponse struct {
	OK   bool
	Text string
	Err  string
}

// OkResponse returns a successful response carrying text.
func OkResponse(text string) ModelResponse {
	return ModelResponse{OK: true, Text: text}
}

// ErrResponse returns a failed response carrying an error message.
func ErrResponse(msg string) ModelResponse {
	return ModelResponse{Err: msg}
}

// ParsedLine is the decoded form of one response object. A line can carry an
// error, a text fragment, both, or neither (status-only objects such as the
// final done marker).
type ParsedLine struct {
	HasError    bool
	Error       string
	HasResponse bool
	Text        string
}

// parsedEnvelope matches the fields chatpane cares about in a response
// object. Pointers distinguish an absent field from an explicit null; both
// count as absent. Unknown fields (model, done, timings) are ignored.
type parsedEnvelope struct {
	Error    *string `json:"error"`
	Response *string `json:"response"`
	Text     *string `json:"text"`
}

// =============================================================================
// PARSER
// =============================================================================

// Parser turns raw /api/generate bodies into a ModelResponse. It accepts
// both response shapes Ollama produces: a single JSON object and NDJSON
// stream lines.
type Parser struct {
	notify Notifier
}

// NewParser creates a parser. notify may be nil, in which case warnings are
// dropped.
func NewParser(notify Notifier) *Parser {
	return &Parser{notify: notify}
}

// Parse extracts the model's text or error from raw response bytes.
//
// transportFailed marks raw as a transport error description rather than a
// server body; it short-circuits to a failure without any JSON inspection.
//
// Otherwise the input is decoded leniently:
//
//   - If the whole input is one JSON object, that object is the sole
//     candidate. This also covers pretty-printed bodies that span lines.
//   - Otherwise each non-empty line is decoded on its own; lines that are
//     not JSON objects are skipped with a warning.
//   - An "error" field on any decoded object makes the whole result a
//     failure, even when other objects carried text. The last error seen
//     wins.
//   - Text fragments come from "response", falling back to "text" when
//     "response" is absent, and concatenate in input order.
//
// When at least one object decoded but no text and no error was found, the
// result is Ok("No response received"): the server answered, it just said
// nothing. When nothing decoded at all, the result is a failure carrying a
// truncated excerpt of the input.
func (p *Parser) Parse(raw []byte, transportFailed bool) ModelResponse {
	if transportFailed {
		return ErrResponse("transport failure: " + string(raw))
	}

	var (
		sb        strings.Builder
		parsedAny bool
		hasErr    bool
		errMsg    string
	)

	apply := func(pl ParsedLine) {
		parsedAny = true
		if pl.HasError {
			hasErr = true
			errMsg = pl.Error
		}
		if pl.HasResponse {
			sb.WriteString(pl.Text)
		}
	}

	if pl, ok := decodeLine(raw); ok {
		apply(pl)
	} else {
		scanner := bufio.NewScanner(bytes.NewReader(raw))
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			pl, ok := decodeLine(line)
			if !ok {
				p.warnf("skipping malformed response line: %s", util.TruncateRunes(string(line), excerptRunes))
				continue
			}
			apply(pl)
		}
		if err := scanner.Err(); err != nil {
			p.warnf("response scan stopped early: %v", err)
		}
	}

	switch {
	case hasErr:
		return ErrResponse(errMsg)
	case !parsedAny:
		excerpt := util.TruncateRunes(strings.TrimSpace(string(raw)), excerptRunes)
		return ErrResponse("unable to parse response: " + excerpt)
	case sb.Len() > 0:
		return OkResponse(sb.String())
	default:
		return OkResponse("No response received")
	}
}

// decodeLine decodes one candidate JSON object. ok is false when the bytes
// are not a JSON object, which callers treat as a malformed line.
func decodeLine(line []byte) (ParsedLine, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ParsedLine{}, false
	}

	var env parsedEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return ParsedLine{}, false
	}

	var pl ParsedLine
	if env.Error != nil {
		pl.HasError = true
		pl.Error = *env.Error
	}
	switch {
	case env.Response != nil:
		pl.HasResponse = true
		pl.Text = *env.Response
	case env.Text != nil:
		pl.HasResponse = true
		pl.Text = *env.Text
	}
	return pl, true
}

func (p *Parser) warnf(format string, args ...any) {
	if p.notify == nil {
		return
	}
	p.notify.Warnf(format, args...)
}
