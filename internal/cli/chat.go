// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the chatpane CLI.
//
// USABILITY: Markdown rendering and history for better CLI experience
//
// Handles the "chatpane chat" command which provides an interactive REPL
// sharing the pane's transcript rendering.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Examples:
//   chatpane chat                       Start interactive chat (default model)
//   chatpane chat --model qwen2.5:14b   Use specific model
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear the transcript
//   /model [name]       Show or switch model
//   /status, /s         Show session statistics
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel current generation
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/chatpane/internal/config"
	"github.com/jeranaias/chatpane/internal/logging"
	"github.com/jeranaias/chatpane/internal/ollama"
	"github.com/jeranaias/chatpane/internal/prompt"
	"github.com/jeranaias/chatpane/internal/transcript"
)

// Prompt style for the REPL prompt string.
var promptStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("39")). // Cyan
	Bold(true)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.Dir()
	if err != nil {
		// Fallback to temp directory if config dir unavailable
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "history")

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureDir(); err != nil {
		return
	}

	// 0600: owner read/write only
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	Cfg     config.Config
	Client  *ollama.Client
	Parser  *ollama.Parser
	Builder *prompt.Builder

	// Log accumulates exchanges with the same rendering the pane uses.
	Log *transcript.Transcript

	StartTime time.Time
	Quiet     bool

	// Cancel function for the in-flight request
	CancelFunc context.CancelFunc

	// Input history handler
	// USABILITY: Provides readline-like input with history
	InputCLI *ChatCLI
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command with full interactive support.
func HandleChat(args Args) error {
	if !IsTTY() {
		return fmt.Errorf("chat requires an interactive terminal (use 'chatpane ask' for piped input)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if args.Model != "" {
		cfg.Ollama.Model = args.Model
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
	})

	ctx := context.Background()
	if err := client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("Ollama is not running. Start it with: ollama serve")
	}

	session := &ChatSession{
		Cfg:       cfg,
		Client:    client,
		Parser:    ollama.NewParser(logging.Get()),
		Builder:   prompt.NewBuilder(logging.Get()),
		Log:       transcript.New(),
		StartTime: time.Now(),
		Quiet:     args.Quiet,
		InputCLI:  NewChatCLI(),
	}

	if !session.Quiet {
		printWelcome(session)
	}

	// Ensure input history is saved on exit
	// USABILITY: Save history for future sessions
	defer session.InputCLI.Close()

	// Ctrl+C during generation cancels the request instead of killing the
	// process; liner handles Ctrl+C at the prompt itself.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			if session.CancelFunc != nil {
				session.CancelFunc()
				session.CancelFunc = nil
				fmt.Fprintln(os.Stderr, "\n"+WarningStyle.Render("[Cancelled]"))
			}
		}
	}()

	// Main REPL loop using liner for input history
	// USABILITY: Provides readline-like line editing and history navigation
	for {
		input, err := session.InputCLI.ReadInput(promptStyle.Render("chatpane> "))
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C at the prompt - exit gracefully
				fmt.Println()
				printExitSummary(session)
				return nil
			}
			// EOF (Ctrl+D) or other error - exit gracefully
			fmt.Println()
			printExitSummary(session)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, session)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				printExitSummary(session)
				return nil
			}
			continue
		}

		// Handle exit/quit without slash
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(session)
			return nil
		}

		if err := processMessage(session, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage sends a message and prints the appended transcript block.
// Transport failures become Error: lines in the transcript rather than
// aborting the session.
func processMessage(session *ChatSession, input string) error {
	ctx, cancel := context.WithCancel(context.Background())
	session.CancelFunc = cancel
	defer func() {
		session.CancelFunc = nil
		cancel()
	}()

	full := session.Builder.Build(session.Cfg, input, prompt.Source{})

	raw, err := session.Client.Generate(ctx, full, true)

	var result ollama.ModelResponse
	if err != nil {
		result = session.Parser.Parse([]byte(err.Error()), true)
	} else {
		result = session.Parser.Parse(raw, false)
	}

	block := session.Log.Append(result, input)

	fmt.Println()
	for _, line := range block {
		printTranscriptLine(line)
	}
	return nil
}

// printTranscriptLine prints one rendered transcript line with prefix-aware
// styling. The rendered text itself is never altered.
func printTranscriptLine(line string) {
	switch {
	case strings.HasPrefix(line, "You: "):
		fmt.Println(InfoStyle.Render("You: ") + line[len("You: "):])
	case strings.HasPrefix(line, "Error: "):
		fmt.Println(ErrorStyle.Render("Error: ") + line[len("Error: "):])
	case line == transcript.Separator:
		fmt.Println(SeparatorStyle.Render(line))
	default:
		fmt.Println(line)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, session *ChatSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?":
		printChatHelp()
		return true, nil

	case "/clear", "/c":
		session.Log.Clear()
		fmt.Println(SuccessStyle.Render("[Transcript cleared]"))
		return true, nil

	case "/model", "/m":
		return handleModelCommand(session, args)

	case "/status", "/s":
		printStatus(session)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		// Just "/" shows help
		printChatHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// handleModelCommand handles the /model command.
func handleModelCommand(session *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		fmt.Printf("%s Current model: %s\n",
			LabelStyle.Render("[Model]"),
			ValueStyle.Render(session.Client.Model()))
		return true, nil
	}

	newModel := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := session.Client.GetModel(ctx, newModel); err != nil {
		// Just warn, don't fail - the model may still resolve server-side
		fmt.Fprintf(os.Stderr, "%s Model '%s' not found locally, will attempt to use anyway\n",
			WarningStyle.Render("[Warning]"),
			newModel)
	}

	session.Cfg.Ollama.Model = newModel
	session.Client = ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: session.Cfg.Ollama.BaseURL,
		Model:   newModel,
	})
	fmt.Printf("%s Switched to model: %s\n",
		SuccessStyle.Render("[OK]"),
		newModel)

	return true, nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(session *ChatSession) {
	fmt.Println()
	fmt.Println(TitleStyle.Render("chatpane interactive chat"))
	fmt.Println(DimStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		LabelStyle.Render("Model:"),
		ValueStyle.Render(session.Client.Model()))
	fmt.Printf("%s %s\n",
		LabelStyle.Render("Server:"),
		ValueStyle.Render(session.Client.BaseURL()))
	fmt.Println()
	fmt.Println(DimStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printChatHelp prints available slash commands.
func printChatHelp() {
	fmt.Println()
	fmt.Println(TitleStyle.Render("Available Commands"))
	fmt.Println(DimStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/clear, /c", "Clear the transcript"},
		{"/model [name]", "Show or switch model"},
		{"/status, /s", "Show session statistics"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			SuccessStyle.Render(fmt.Sprintf("%-15s", c.cmd)),
			DimStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(DimStyle.Render("Tip: Ctrl+C cancels current generation, Ctrl+D exits"))
	fmt.Println()
}

// printStatus prints session statistics.
func printStatus(session *ChatSession) {
	elapsed := time.Since(session.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(TitleStyle.Render("Session Status"))
	fmt.Println(DimStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	fmt.Printf("  %s %s\n",
		LabelStyle.Render("Model:"),
		ValueStyle.Render(session.Client.Model()))
	fmt.Printf("  %s %s\n",
		LabelStyle.Render("Server:"),
		ValueStyle.Render(session.Client.BaseURL()))
	fmt.Printf("  %s %d\n",
		LabelStyle.Render("Exchanges:"),
		session.Log.Exchanges())
	fmt.Printf("  %s %s\n",
		LabelStyle.Render("Duration:"),
		elapsed.String())
	fmt.Println()
}

// printExitSummary prints the session summary on exit.
func printExitSummary(session *ChatSession) {
	exchanges := session.Log.Exchanges()
	if exchanges == 0 {
		fmt.Println(DimStyle.Render("Goodbye!"))
		return
	}

	elapsed := time.Since(session.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(TitleStyle.Render("Session Summary"))
	fmt.Println(DimStyle.Render(strings.Repeat("─", 15)))
	fmt.Printf("  %s %d\n",
		LabelStyle.Render("Exchanges:"),
		exchanges)
	fmt.Printf("  %s %s\n",
		LabelStyle.Render("Duration:"),
		elapsed.String())
	fmt.Println()
	fmt.Println(DimStyle.Render("Goodbye!"))
}
