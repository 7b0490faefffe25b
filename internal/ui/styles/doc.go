// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chatpane TUI.

All colors use Lip Gloss AdaptiveColor so the pane reads well on both light
and dark terminals without configuration.

# Color System (colors.go)

Accent colors:

  - Purple - AI reply lines and the pane title
  - Cyan - user prompt lines and key hints
  - Emerald - success states
  - Amber - warnings and reload notices
  - Rose - errors and transport failures

Transcript rows are plain prefixed lines rather than bubbles, so each row
kind carries a single foreground token: UserLineFg, AILineFg, ErrorLineFg,
NoticeFg.

# Theme System (theme.go)

The Theme struct detects terminal capability at startup and carries one
lipgloss.Style per pane element:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}
	line := theme.UserLine.Render("You: hello")

PaneBorder maps the configured border name ("none", "single", "double",
"rounded", "shadow") to a lipgloss border. The shadow fill itself is painted
by the window using ShadowChar.

# Status Indicators

ACCESSIBILITY: every colored status message carries an ASCII shape indicator
([OK], [X], [!], [i]) so states stay distinguishable without color:

	styles.RenderSuccess("Ollama reachable")
	styles.RenderError("model not found")

# Spinners (animations.go)

SpinnerConfig values feed the bubbles spinner component:

	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: styles.LineSpinner.Frames,
		FPS:    styles.LineSpinner.Duration(),
	}
*/
package styles
