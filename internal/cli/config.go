// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for the chatpane CLI.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   init                Write a default config file
//   show (default)      Display current configuration
//   get [key]           Print one value, or all keys
//   set <key> <value>   Set a configuration value
//
// Examples:
//   chatpane config init
//   chatpane config show
//   chatpane config get ollama.model
//   chatpane config set ollama.model qwen2.5:14b
//   chatpane config set window.width 100
//   chatpane config set keys.open f5
//
// Configuration Keys:
//   window.width            Pane width in cells
//   window.height           Pane height in cells
//   window.border           Border style (single/double/rounded/shadow)
//   ollama.model            Model name sent to /api/generate
//   ollama.base_url         Ollama server URL
//   keys.open               Pane toggle key
//   prompt.default          Static prompt preamble
//   prompt.dynamic.enabled  Enable dynamic prompt context (true/false)
//   prompt.dynamic.context  Context source (none/file)
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatpane/internal/config"
)

// =============================================================================
// CONFIG STYLES
// =============================================================================

var (
	// Config key style (light gray, fixed width for alignment)
	configKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(26)

	// Config value style (green)
	configValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82"))

	// Path style (dim italic)
	configPathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

// =============================================================================
// HANDLE CONFIG
// =============================================================================

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "init":
		return handleConfigInit()

	case "", "show":
		return handleConfigShow()

	case "get":
		return handleConfigGet(args.ConfigKey)

	case "set":
		return handleConfigSet(args.ConfigKey, args.ConfigVal)

	default:
		return NewUsageError(
			fmt.Sprintf("unknown config subcommand: %s", args.Subcommand),
			"chatpane config init|show|get <key>|set <key> <value>")
	}
}

// handleConfigInit writes a default config file, refusing to clobber an
// existing one.
func handleConfigInit() error {
	path, err := config.PathTOML()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("%s Config file already exists: %s\n",
			LabelStyle.Render("[=]"),
			configPathStyle.Render(path))
		fmt.Println(DimStyle.Render("Edit it directly or use: chatpane config set <key> <value>"))
		return nil
	}

	if err := config.EnsureDir(); err != nil {
		return err
	}
	if err := config.Save(config.Default()); err != nil {
		return err
	}

	fmt.Printf("%s Wrote default config: %s\n",
		SuccessStyle.Render("[OK]"),
		configPathStyle.Render(path))
	return nil
}

// handleConfigShow displays the current configuration by section.
func handleConfigShow() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s (using defaults)\n", WarningStyle.Render("[!]"), err)
		cfg = config.Default()
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("chatpane Configuration"))
	fmt.Println(SeparatorStyle.Render(strings.Repeat("=", 41)))
	fmt.Println()

	fmt.Println(ValueStyle.Render("[window]"))
	printConfigLine("width:", fmt.Sprintf("%d", cfg.Window.Width))
	printConfigLine("height:", fmt.Sprintf("%d", cfg.Window.Height))
	printConfigLine("border:", string(cfg.Window.Border))
	fmt.Println()

	fmt.Println(ValueStyle.Render("[ollama]"))
	printConfigLine("model:", cfg.Ollama.Model)
	printConfigLine("base_url:", cfg.Ollama.BaseURL)
	fmt.Println()

	fmt.Println(ValueStyle.Render("[keys]"))
	printConfigLine("open:", cfg.Keys.Open)
	fmt.Println()

	fmt.Println(ValueStyle.Render("[prompt]"))
	printConfigLine("default:", cfg.Prompt.Default)
	printConfigLine("dynamic.enabled:", fmt.Sprintf("%t", cfg.Prompt.Dynamic.Enabled))
	printConfigLine("dynamic.context:", string(cfg.Prompt.Dynamic.Context))
	fmt.Println()

	fmt.Println(SeparatorStyle.Render(strings.Repeat("-", 41)))
	if path, err := config.PathTOML(); err == nil {
		fmt.Printf("Config file: %s\n", configPathStyle.Render(path))
	}
	fmt.Println()

	return nil
}

func printConfigLine(key, value string) {
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render(key),
		configValueStyle.Render(value))
}

// handleConfigGet prints one value by dot-notation key, or every key when
// none is given.
func handleConfigGet(key string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if key == "" {
		for _, k := range config.AllKeys() {
			v, err := cfg.Get(k)
			if err != nil {
				continue
			}
			fmt.Printf("%s = %v\n", k, v)
		}
		return nil
	}

	v, err := cfg.Get(key)
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", v)
	return nil
}

// handleConfigSet sets a configuration value, validates the result, and
// saves the TOML file.
func handleConfigSet(key, value string) error {
	if key == "" {
		return NewUsageError("no config key provided", "chatpane config set <key> <value>")
	}
	if value == "" {
		return NewUsageError("no config value provided",
			fmt.Sprintf("chatpane config set %s <value>", key))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s (using defaults)\n", WarningStyle.Render("[!]"), err)
		cfg = config.Default()
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	// Round-trip through validation so a bad value never reaches disk
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s %s = %s\n",
		SuccessStyle.Render("[OK]"),
		key,
		value)
	return nil
}
