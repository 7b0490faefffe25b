// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"strconv"
	"time"
)

// =============================================================================
// GENERATE TYPES
// =============================================================================

// GenerateRequest is the request body for /api/generate.
//
// Stream is a pointer so the field can be omitted entirely: Ollama defaults
// to streaming when the key is absent, and only an explicit false disables
// it. Marshaling a plain bool would always emit the key.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream *bool  `json:"stream,omitempty"`
}

// =============================================================================
// MODEL TYPES
// =============================================================================

// ModelInfo contains information about an available model.
type ModelInfo struct {
	Name       string       `json:"name"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	Details    ModelDetails `json:"details"`
}

// ModelDetails contains detailed model information.
type ModelDetails struct {
	Format            string   `json:"format"`
	Family            string   `json:"family"`
	Families          []string `json:"families"`
	ParameterSize     string   `json:"parameter_size"`
	QuantizationLevel string   `json:"quantization_level"`
}

// ListModelsResponse is the response from the list models endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ShowModelRequest is a request to show model information.
type ShowModelRequest struct {
	Name string `json:"name"`
}

// ShowModelResponse contains detailed model information.
type ShowModelResponse struct {
	Modelfile  string       `json:"modelfile"`
	Parameters string       `json:"parameters"`
	Template   string       `json:"template"`
	Details    ModelDetails `json:"details"`
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// FormatSize formats a byte size as a human-readable string.
func FormatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return formatFloat(float64(bytes)/float64(gb)) + " GB"
	case bytes >= mb:
		return formatFloat(float64(bytes)/float64(mb)) + " MB"
	case bytes >= kb:
		return formatFloat(float64(bytes)/float64(kb)) + " KB"
	default:
		return strconv.FormatInt(bytes, 10) + " B"
	}
}

// formatFloat formats a float with one decimal place.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
