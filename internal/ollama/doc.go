// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama
// API, and the parser that turns raw response bodies into usable results.
//
// # Key Types
//
//   - Client: HTTP client for the generate, health, and model endpoints
//   - Parser: lenient decoder for single-object and NDJSON response bodies
//   - ModelResponse: parse outcome, either extracted text or an error message
//   - ClientError: categorized transport and protocol errors
//
// # Usage
//
// Create a client, send a prompt, and hand whatever came back to the parser:
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
//	    BaseURL: cfg.Ollama.BaseURL,
//	    Model:   cfg.Ollama.Model,
//	})
//	parser := ollama.NewParser(logging.Get())
//
//	raw, err := client.Generate(ctx, prompt, true)
//	var result ollama.ModelResponse
//	if err != nil {
//	    result = parser.Parse([]byte(err.Error()), true)
//	} else {
//	    result = parser.Parse(raw, false)
//	}
//
// The split keeps responsibilities clean: the client only reports transport
// failures, while everything the server actually said, including in-body
// error fields and non-2xx statuses, flows through the parser.
package ollama
