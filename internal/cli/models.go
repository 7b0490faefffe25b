// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models.go - Installed model listing for the chatpane CLI.
//
// Command: models
// Short:   List models installed on the local Ollama server
//
// Examples:
//   chatpane models
//   chatpane models --model qwen2.5:14b   Highlight a different model
package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/chatpane/internal/config"
	"github.com/jeranaias/chatpane/internal/ollama"
)

// HandleModels handles the "models" command: fetch the installed model list
// from Ollama and print it as an aligned table, highlighting the configured
// model.
func HandleModels(args Args) error {
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
	models, err := client.ListModels(ctx)
	if err != nil {
		return err
	}

	if len(models) == 0 {
		fmt.Println(DimStyle.Render("No models installed. Pull one with: ollama pull <name>"))
		return nil
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].Name < models[j].Name
	})

	// Name column sizes to the longest entry
	nameWidth := len("NAME")
	for _, m := range models {
		if len(m.Name) > nameWidth {
			nameWidth = len(m.Name)
		}
	}

	fmt.Println()
	fmt.Println(LabelStyle.Render(fmt.Sprintf("%-*s  %-10s  %-12s  %s",
		nameWidth, "NAME", "SIZE", "PARAMETERS", "QUANTIZATION")))

	for _, m := range models {
		params := m.Details.ParameterSize
		if params == "" {
			params = "-"
		}
		quant := m.Details.QuantizationLevel
		if quant == "" {
			quant = "-"
		}

		row := fmt.Sprintf("%-*s  %-10s  %-12s  %s",
			nameWidth, m.Name, ollama.FormatSize(m.Size), params, quant)

		// Highlight the model the pane is configured to use, matching
		// with or without an explicit tag.
		if m.Name == cfg.Ollama.Model || strings.HasPrefix(m.Name, cfg.Ollama.Model+":") {
			fmt.Println(HighlightStyle.Render(row) + DimStyle.Render("  (active)"))
		} else {
			fmt.Println(ValueStyle.Render(row))
		}
	}

	fmt.Println()
	fmt.Printf("%s\n", DimStyle.Render(fmt.Sprintf("%d model(s) installed", len(models))))
	return nil
}
