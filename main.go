// chatpane - A floating terminal chat pane for local Ollama.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatpane/internal/cli"
	"github.com/jeranaias/chatpane/internal/config"
	"github.com/jeranaias/chatpane/internal/logging"
	"github.com/jeranaias/chatpane/internal/ollama"
	"github.com/jeranaias/chatpane/internal/prompt"
	"github.com/jeranaias/chatpane/internal/ui/styles"
	"github.com/jeranaias/chatpane/internal/ui/window"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for the config watcher callback
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)

	case cli.CmdAsk:
		if err := cli.HandleAsk(args); err != nil {
			cli.ExitWithError(err)
		}

	case cli.CmdChat:
		if err := cli.HandleChat(args); err != nil {
			cli.ExitWithError(err)
		}

	case cli.CmdModels:
		if err := cli.HandleModels(args); err != nil {
			cli.ExitWithError(err)
		}

	case cli.CmdConfig:
		if err := cli.HandleConfig(args); err != nil {
			cli.ExitWithError(err)
		}

	case cli.CmdDoctor:
		if err := cli.HandleDoctor(args); err != nil {
			cli.ExitWithError(err)
		}

	case cli.CmdVersion:
		cli.PrintVersion()

	case cli.CmdHelp:
		cli.PrintUsage()

	default:
		cli.PrintUsage()
		os.Exit(cli.ExitUsageError)
	}
}

// runTUI launches the floating chat pane.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		cli.ExitWithError(err)
	}
	if args.Model != "" {
		cfg.Ollama.Model = args.Model
	}

	theme := styles.NewTheme()

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
	})
	parser := ollama.NewParser(logging.Get())
	builder := prompt.NewBuilder(logging.Get())

	m := window.New(cfg, client, parser, builder, theme)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	// Store program reference so the watcher callback can reach it
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// The watcher never reloads the live config; it only tells the pane to
	// show a restart notice.
	if path, err := config.PathTOML(); err == nil {
		watcher := config.NewWatcher(path, func() {
			programMu.Lock()
			if programRef != nil {
				programRef.Send(window.ConfigChangedMsg{})
			}
			programMu.Unlock()
		})
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running chatpane: %v\n", err)
		os.Exit(1)
	}
}
