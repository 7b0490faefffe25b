// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and implements the non-TUI
// commands: ask, chat, models, config, doctor, version, and help.
//
// Output conventions: replies and requested data go to stdout, everything
// else (banners, progress notes, errors) goes to stderr. Colors are enabled
// only when stdout is a terminal and NO_COLOR is unset.
package cli
