// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the chatpane application.
//
// String helpers are rune- and width-aware so transcript excerpts and
// status-bar text never split a multi-byte character. File helpers write
// atomically so the config file survives a crash mid-save.
//
//	excerpt := util.TruncateRunes(raw, 120)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
