// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package window provides the floating chat pane TUI.
//
// This file defines the Bubble Tea message types used by the pane:
//   - Reply: raw response delivery from the blocking send command
//   - Server: startup reachability probe results
//   - Config: change notifications from the on-disk config watcher
//   - Clipboard: copy outcomes
//   - Notices: expiry of transient status bar text
//
// All message types follow Bubble Tea conventions and are immutable.
package window

// =============================================================================
// REPLY MESSAGES
// =============================================================================

// ReplyMsg delivers the outcome of one send to /api/generate. Raw is either
// the response body or, when TransportFailed is set, a description of the
// transport error. Parsing happens in Update, never in the command.
type ReplyMsg struct {
	// Prompt is the text the user typed, for the transcript's "You:" line.
	Prompt string

	// Raw is the response body or transport error description.
	Raw []byte

	// TransportFailed marks Raw as an error description rather than a body.
	TransportFailed bool
}

// =============================================================================
// SERVER MESSAGES
// =============================================================================

// ServerStatusMsg reports the result of the startup reachability probe.
type ServerStatusMsg struct {
	Running bool
	Err     error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigChangedMsg signals that the config file changed on disk. The running
// pane keeps its snapshot; the status bar tells the user to restart.
type ConfigChangedMsg struct{}

// =============================================================================
// CLIPBOARD MESSAGES
// =============================================================================

// CopyResultMsg reports the outcome of copying the transcript to the system
// clipboard.
type CopyResultMsg struct {
	Lines int
	Err   error
}

// =============================================================================
// NOTICE MESSAGES
// =============================================================================

// noticeExpiredMsg clears a transient status bar notice. The sequence number
// guards against an old timer wiping a newer notice.
type noticeExpiredMsg struct {
	seq int
}
