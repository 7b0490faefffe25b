// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command for the chatpane CLI.
//
// USABILITY: Markdown rendering and history for better CLI experience
//
// Command: ask [question]
// Short:   Ask a single question and print the reply
//
// Examples:
//   chatpane ask "What is a goroutine?"
//   chatpane ask "Review this:" --file main.go
//   chatpane ask --no-stream "write one short haiku"
//   cat error.log | chatpane ask
//
// Flags:
//   --no-stream         Request a single JSON response instead of NDJSON
//   -f, --file FILE     Include file content with the question
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/chatpane/internal/config"
	"github.com/jeranaias/chatpane/internal/logging"
	"github.com/jeranaias/chatpane/internal/ollama"
	"github.com/jeranaias/chatpane/internal/prompt"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
// USABILITY: Renders markdown replies with syntax highlighting and formatting.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse prints a reply, rendered as markdown when stdout is a TTY.
// Piped output stays plain so it never carries escape sequences.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Print(response)
	}
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAsk handles the "ask" command: build the prompt, send it, parse the
// reply, print it. Returns an error carrying exit code 1 when the model
// reports an error.
func HandleAsk(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if args.Model != "" {
		cfg.Ollama.Model = args.Model
	}

	question := strings.TrimSpace(args.Query)

	// Piped input becomes the question when none was given on the command
	// line: `cat error.log | chatpane ask`.
	if question == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			reader := bufio.NewReader(os.Stdin)
			data, err := io.ReadAll(reader)
			if err == nil && len(data) > 0 {
				question = strings.TrimSpace(string(data))
				if !args.Quiet {
					fmt.Fprintf(os.Stderr, "%s Read question from stdin (%d bytes)\n",
						InfoStyle.Render("[+]"), len(data))
				}
			}
		}
	}

	if question == "" {
		return NewUsageError("no question provided", `chatpane ask "your question"`)
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
	})

	ctx := context.Background()
	if err := client.CheckRunning(ctx); err != nil {
		return err
	}

	// --file forces file context into the prompt even when the dynamic
	// prompt is disabled in the config; the flag is an explicit request.
	buildCfg := cfg
	src := prompt.Source{}
	if args.File != "" {
		buildCfg.Prompt.Dynamic.Enabled = true
		buildCfg.Prompt.Dynamic.Context = config.ContextFile
		src.Path = args.File
		if !args.Quiet {
			fmt.Fprintf(os.Stderr, "%s Including file: %s\n",
				InfoStyle.Render("[+]"), args.File)
		}
	}

	builder := prompt.NewBuilder(logging.Get())
	full := builder.Build(buildCfg, question, src)

	raw, err := client.Generate(ctx, full, !args.NoStream)
	if err != nil {
		return err
	}

	parser := ollama.NewParser(logging.Get())
	result := parser.Parse(raw, false)
	if !result.OK {
		return fmt.Errorf("%s", result.Err)
	}

	displayResponse(result.Text)
	if !strings.HasSuffix(result.Text, "\n") {
		fmt.Println()
	}
	return nil
}
