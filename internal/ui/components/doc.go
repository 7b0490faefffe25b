// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides view-layer decoration for the chatpane TUI.

The transcript stores plain text lines; everything in this package operates
only on what the pane is about to draw.

# Components

CodeBlock (codeblock.go) - Syntax-highlighted fenced code blocks using Chroma.
ParseCodeBlocks rewrites ``` fenced regions of an AI reply into bordered,
line-numbered blocks; ParseInlineCode styles single-backtick spans.

Spinner (spinner.go) - The waiting indicator shown while a request is in
flight, with an elapsed-time counter since requests block with no timeout.

# Usage

	decorated := components.ParseCodeBlocks(replyText, paneWidth)

	sp := components.NewWaitingSpinner()
	cmd := sp.Start()
	// forward tea messages with sp.Update, draw with sp.View
*/
package components
