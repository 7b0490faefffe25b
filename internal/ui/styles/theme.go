// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the chatpane TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the chat pane.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// PANE CHROME STYLES
	// ==========================================================================

	Pane   lipgloss.Style
	Title  lipgloss.Style
	Shadow lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT ROW STYLES
	// ==========================================================================

	UserLine      lipgloss.Style
	AILine        lipgloss.Style
	ErrorLine     lipgloss.Style
	SeparatorLine lipgloss.Style
	NoticeLine    lipgloss.Style

	// ==========================================================================
	// INPUT ROW STYLES
	// ==========================================================================

	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	Waiting      lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// ACCESSIBILITY: Status indicator styles with shapes and high contrast
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	// Detect terminal capabilities
	colorProfile := termenv.ColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Pane chrome. The border style itself comes from PaneBorder at render
	// time because it is user-configurable; Pane carries everything else.
	t.Pane = lipgloss.NewStyle().
		BorderForeground(Purple).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Shadow = lipgloss.NewStyle().
		Foreground(OverlayDim)

	// Transcript rows
	t.UserLine = lipgloss.NewStyle().
		Foreground(UserLineFg).
		Bold(true)

	t.AILine = lipgloss.NewStyle().
		Foreground(AILineFg)

	t.ErrorLine = lipgloss.NewStyle().
		Foreground(ErrorLineFg).
		Bold(true)

	t.SeparatorLine = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.NoticeLine = lipgloss.NewStyle().
		Foreground(NoticeFg).
		Italic(true)

	// Input row
	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Waiting = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Status indicators
	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(WarningHighContrast).
		Bold(true)

	t.InfoStyle = lipgloss.NewStyle().
		Foreground(InfoHighContrast).
		Bold(true)
}

// SetSize updates the theme's layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height

	t.StatusBar = t.StatusBar.Width(width)
}

// ShadowChar is the cell used to paint the drop shadow under a "shadow"
// bordered pane.
const ShadowChar = "░"

// PaneBorder maps a configured border name to a lipgloss border. The second
// return reports whether a frame should be drawn at all. The "shadow" style
// keeps a rounded frame; the drop shadow itself is painted by the window
// since lipgloss borders cannot extend past the block they wrap.
func PaneBorder(name string) (lipgloss.Border, bool) {
	switch name {
	case "none":
		return lipgloss.Border{}, false
	case "single":
		return lipgloss.NormalBorder(), true
	case "double":
		return lipgloss.DoubleBorder(), true
	case "shadow":
		return lipgloss.RoundedBorder(), true
	default:
		return lipgloss.RoundedBorder(), true
	}
}
