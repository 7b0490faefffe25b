// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatpane.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - WindowConfig: Chat pane geometry and border style
//   - OllamaConfig: Model name and server base URL
//   - PromptConfig: Default prompt and dynamic context injection
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CHATPANE_*)
//   - ~/.chatpane/config.toml
//   - ~/.chatpane/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration once at startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    // report and exit
//	}
//
// The returned Config is a value; pass it to the components that need it.
// Nothing reloads or mutates it while the session runs.
package config
