// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error display and exit codes for the chatpane CLI.
//
// ERROR HANDLING: Errors must not be silently ignored
//
// Handlers always return errors instead of exiting themselves; main
// displays them and picks the exit code, so every command fails the
// same way.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/chatpane/internal/config"
	"github.com/jeranaias/chatpane/internal/ollama"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general error, including a model-reported one
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the Ollama server could not be reached
	ExitNetworkError = 4
	// ExitNotFoundError indicates a model or resource was not found
	ExitNotFoundError = 5
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError is returned when a command is invoked with bad arguments.
type UsageError struct {
	Message string
	Usage   string // Example of correct usage (optional)
}

func (e *UsageError) Error() string {
	if e.Usage != "" {
		return e.Message + "\nUsage: " + e.Usage
	}
	return e.Message
}

// NewUsageError creates a usage error with an example invocation.
func NewUsageError(message, usage string) error {
	return &UsageError{Message: message, Usage: usage}
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError prints an error to stderr in a consistent format.
func DisplayError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// ExitWithError displays an error and exits with the matching exit code.
// Use this from main for fatal command failures.
func ExitWithError(err error) {
	if err == nil {
		return
	}
	DisplayError(err)
	os.Exit(GetExitCode(err))
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var validationErr config.ValidationError
	if errors.As(err, &validationErr) {
		return ExitConfigError
	}
	var validateErrs config.ValidateErrors
	if errors.As(err, &validateErrs) {
		return ExitConfigError
	}

	if ollama.IsModelNotFound(err) {
		return ExitNotFoundError
	}
	if ollama.IsNotRunning(err) || ollama.IsTimeout(err) {
		return ExitNetworkError
	}

	return ExitGeneralError
}
