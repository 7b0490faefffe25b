// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package window provides the floating chat pane TUI.
//
// This file renders the pane: a centered, framed block containing the title
// row, the transcript viewport, the prompt input, and the status bar. The
// transcript stores plain lines; every color and every highlighted code
// block here is view-time decoration.
package window

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatpane/internal/config"
	"github.com/jeranaias/chatpane/internal/transcript"
	"github.com/jeranaias/chatpane/internal/ui/components"
	"github.com/jeranaias/chatpane/internal/ui/styles"
	"github.com/jeranaias/chatpane/internal/util"
)

// continuationIndent matches the indent the transcript renderer puts on AI
// lines after the first.
const continuationIndent = "    "

var emptyStateStyle = lipgloss.NewStyle().
	Foreground(styles.TextMuted).
	Italic(true)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the whole terminal: the centered pane when visible, a single
// hint line when hidden.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if !m.visible {
		return m.renderHiddenHint()
	}

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		m.renderPane(),
	)
}

// renderHiddenHint shows how to reopen the pane while it is hidden.
func (m Model) renderHiddenHint() string {
	open := m.keyMap.Open.Help()
	hint := m.theme.ShortcutKey.Render(open.Key) +
		m.theme.ShortcutDesc.Render(" opens the chat pane")

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Bottom,
		hint,
	)
}

// renderPane assembles the framed pane at its configured size.
func (m Model) renderPane() string {
	paneW, paneH := m.paneSize()
	contentW, _ := m.contentSize(paneW, paneH)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitle(contentW),
		m.viewport.View(),
		m.renderInputRow(contentW),
		m.renderStatusBar(contentW),
	)

	// Width includes the padding columns but not the border.
	paneStyle := m.theme.Pane.Width(contentW + 2)
	if border, framed := styles.PaneBorder(m.cfg.Window.Border); framed {
		paneStyle = paneStyle.Border(border)
	}
	pane := paneStyle.Render(content)

	if m.cfg.Window.Border == config.BorderShadow {
		pane = m.paintShadow(pane)
	}
	return pane
}

// paintShadow adds the drop shadow for the "shadow" border: a column of
// shadow cells down the right edge starting one row below the top, and a
// bottom row shifted one column right. Plain spaces keep every line the same
// width so centering stays stable.
func (m Model) paintShadow(pane string) string {
	lines := strings.Split(pane, "\n")
	if len(lines) == 0 {
		return pane
	}

	cell := m.theme.Shadow.Render(styles.ShadowChar)
	width := lipgloss.Width(lines[0])

	var b strings.Builder
	for i, line := range lines {
		b.WriteString(line)
		if i == 0 {
			b.WriteString(" ")
		} else {
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	b.WriteString(" ")
	b.WriteString(m.theme.Shadow.Render(strings.Repeat(styles.ShadowChar, width)))

	return b.String()
}

// =============================================================================
// PANE ROWS
// =============================================================================

// renderTitle renders the top row: the pane name, the active model, and an
// unreachable-server indicator once the probe has answered.
func (m Model) renderTitle(width int) string {
	text := "chatpane · " + m.cfg.Ollama.Model
	if m.serverKnown && !m.serverUp {
		text += " " + styles.StatusIndicators.Error
	}
	return m.theme.Title.Render(util.TruncateWidth(text, width))
}

// renderInputRow renders the prompt line. While a send is in flight the
// input is blurred and a waiting hint takes its place.
func (m Model) renderInputRow(width int) string {
	if m.state == StateWaiting {
		text := util.TruncateWidth("> input disabled while waiting", width)
		return m.theme.InputPlaceholder.Render(text)
	}
	return m.input.View()
}

// renderStatusBar renders the bottom row. Priority: waiting spinner, then a
// transient notice, then the sticky config-changed notice, then key hints.
func (m Model) renderStatusBar(width int) string {
	inner := width - 2 // StatusBar padding
	if inner < 1 {
		inner = 1
	}

	var content string
	switch {
	case m.state == StateWaiting:
		content = m.waiting.View()

	case m.notice != "":
		content = m.theme.NoticeLine.Render(util.TruncateWidth(m.notice, inner))

	case m.configStale:
		content = m.theme.NoticeLine.Render(
			util.TruncateWidth("config changed on disk - restart to apply", inner))

	default:
		content = m.renderKeyHints(inner)
	}

	return m.theme.StatusBar.Render(content)
}

// renderKeyHints formats the short help bindings, dropping trailing entries
// that do not fit.
func (m Model) renderKeyHints(width int) string {
	var plain, styled []string
	for _, b := range m.keyMap.ShortHelp() {
		h := b.Help()
		plain = append(plain, h.Key+" "+h.Desc)
		styled = append(styled,
			m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}

	for len(plain) > 1 && util.StringWidth(strings.Join(plain, " · ")) > width {
		plain = plain[:len(plain)-1]
		styled = styled[:len(styled)-1]
	}

	sep := m.theme.ShortcutDesc.Render(" · ")
	return strings.Join(styled, sep)
}

// =============================================================================
// TRANSCRIPT DECORATION
// =============================================================================

// renderTranscript decorates stored transcript lines for display. Prefixes
// pick the row style; fenced code regions are collected and re-rendered
// through the code block component with chroma highlighting. The stored
// lines themselves are never modified.
func renderTranscript(lines []string, theme *styles.Theme, width int) string {
	if len(lines) == 0 {
		return emptyStateStyle.Render("No messages yet. Type a prompt and press Enter.")
	}

	var (
		out       []string
		inFence   bool
		fenceLang string
		fenceBody []string
	)

	flush := func() {
		block := components.NewCodeBlock(fenceLang, strings.Join(fenceBody, "\n"))
		block.SetMaxWidth(width)
		out = append(out, strings.Split(block.Render(), "\n")...)
		inFence = false
		fenceLang = ""
		fenceBody = nil
	}

	for _, line := range lines {
		if inFence {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "```") {
				flush()
				continue
			}
			fenceBody = append(fenceBody, strings.TrimPrefix(line, continuationIndent))
			continue
		}

		switch {
		case strings.HasPrefix(line, "You: "):
			out = append(out, theme.UserLine.Render(line))

		case strings.HasPrefix(line, "Error: "):
			out = append(out, theme.ErrorLine.Render(line))

		case line == transcript.Separator:
			out = append(out, theme.SeparatorLine.Render(line))

		case strings.HasPrefix(line, "AI: "):
			rest := strings.TrimPrefix(line, "AI: ")
			if strings.HasPrefix(rest, "```") {
				inFence = true
				fenceLang = strings.TrimSpace(strings.TrimPrefix(rest, "```"))
				out = append(out, theme.AILine.Render("AI:"))
				continue
			}
			out = append(out, renderAILine(line, theme))

		case strings.HasPrefix(line, continuationIndent):
			rest := strings.TrimPrefix(line, continuationIndent)
			if strings.HasPrefix(rest, "```") {
				inFence = true
				fenceLang = strings.TrimSpace(strings.TrimPrefix(rest, "```"))
				continue
			}
			out = append(out, renderAILine(line, theme))

		default:
			out = append(out, line)
		}
	}

	// Models frequently stop mid-block; render an unclosed fence anyway.
	if inFence {
		flush()
	}

	return strings.Join(out, "\n")
}

// renderAILine styles one AI text line. Lines carrying `inline code` get
// span decoration instead of the row color: nesting ANSI styles inside a
// lipgloss render resets the outer color mid-line.
func renderAILine(line string, theme *styles.Theme) string {
	if strings.Count(line, "`") >= 2 {
		return components.ParseInlineCode(line)
	}
	return theme.AILine.Render(line)
}
