// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Argument parsing and command dispatch for chatpane.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdModels
	CmdConfig
	CmdDoctor
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Model string // --model: override the configured model
	Quiet bool   // -q, --quiet: suppress non-essential output

	// Command-specific
	Query      string // ask: the question text
	File       string // ask: --file to include with the question
	NoStream   bool   // ask: --no-stream requests a single JSON object
	Subcommand string // config subcommand
	ConfigKey  string // config get/set key
	ConfigVal  string // config set value

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `chatpane - floating AI chat pane for your terminal

Chatpane talks to a local Ollama server and shows replies in a small
floating window, or prints them straight to your shell.

Usage:
  chatpane                         Open the chat pane (default)
  chatpane ask "question"          Ask once and print the reply
    --no-stream                    Request a single JSON response
    --file PATH                    Include a file with the question
  chatpane chat                    Interactive terminal chat
  chatpane models                  List models available to Ollama
  chatpane config [subcommand]     Manage configuration
  chatpane doctor                  Run health checks
  chatpane version                 Show version information
  chatpane help                    Show this help

Config Commands:
  chatpane config init             Write a default config file
  chatpane config show             Print the active configuration
  chatpane config get [key]        Print one value (or all of them)
  chatpane config set <key> <val>  Change a value and save

Chat Commands (inside 'chatpane chat'):
  /help                            Show available commands
  /clear                           Clear the transcript
  /model [name]                    Show or switch model
  /status                          Show session details
  /quit                            Exit chat

Global Flags:
  --model NAME                     Override the configured model
  -q, --quiet                      Suppress non-essential output

Environment:
  CHATPANE_MODEL                   Override ollama.model
  CHATPANE_BASE_URL                Override ollama.base_url
  CHATPANE_DEBUG                   Write a debug log
  NO_COLOR / FORCE_COLOR           Disable or force colored output

Examples:
  chatpane ask "explain this error" --file build.log
  chatpane ask --no-stream "write one short haiku"
  chatpane config set window.border shadow
  chatpane config set keys.open ctrl+t

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("chatpane version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(args)

	// If no remaining args, default to the pane
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	// Check first argument for command
	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui", "pane":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "models", "model-list":
		return CmdModels, parsedArgs

	case "config", "cfg":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "doctor", "diag":
		return CmdDoctor, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command - treat it as a prompt and open the pane.
		// Restore the word; it is part of whatever the user typed.
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdTUI, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "--model", "-m":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments. Everything that is not
// a flag joins into the question.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "--no-stream":
			args.NoStream = true
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--file=") {
				args.File = strings.TrimPrefix(arg, "--file=")
			} else {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseConfigArgs parses config subcommand, key, and value.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = strings.ToLower(remaining[0])
	}
	if len(remaining) > 1 {
		args.ConfigKey = remaining[1]
	}
	if len(remaining) > 2 {
		// Values may contain spaces (e.g. a default prompt sentence).
		args.ConfigVal = strings.Join(remaining[2:], " ")
	}
}
