// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package window provides the floating chat pane TUI.
//
// This file defines the keyboard bindings for the pane. The open/toggle key
// comes from configuration; everything else is fixed.
package window

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings for the chat pane.
type KeyMap struct {
	Open     key.Binding
	Close    key.Binding
	Submit   key.Binding
	Quit     key.Binding
	Copy     key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// NewKeyMap returns the pane key bindings. openKey is the configured toggle
// in bubbletea key notation (e.g. "ctrl+g", "f5"); an empty string falls
// back to ctrl+g.
//
// Scroll bindings deliberately avoid letters and readline chords: the prompt
// input owns printable keys and ctrl+a/e/u/w while the pane is open.
func NewKeyMap(openKey string) KeyMap {
	if openKey == "" {
		openKey = "ctrl+g"
	}

	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys(openKey),
			key.WithHelp(openKey, "toggle pane"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "hide pane"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy transcript"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the bindings shown in the status bar hint line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Close, k.Copy, k.Quit}
}

// FullHelp returns all bindings grouped for a help listing.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Close, k.Quit},
		{k.Submit, k.Copy},
		{k.Up, k.Down, k.PageUp, k.PageDown},
	}
}
