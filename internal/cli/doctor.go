// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Health check command for the chatpane CLI.
//
// RELIABILITY: Every check degrades to a suggestion instead of a crash
//
// Command: doctor
// Short:   Diagnose common setup problems
//
// Checks:
//   1. Ollama CLI installed
//   2. Ollama server reachable
//   3. Configured model available
//   4. Config file valid
//   5. Config directory writable
//
// Examples:
//   chatpane doctor
//   chatpane doctor --model qwen2.5:14b   Check a different model
package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatpane/internal/config"
	"github.com/jeranaias/chatpane/internal/ollama"
)

// Fix suggestion style (dim italic, indented under the check line)
var fixStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("245")).
	Italic(true).
	PaddingLeft(2)

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus int

const (
	// CheckPass indicates the check passed successfully.
	CheckPass CheckStatus = iota
	// CheckWarn indicates the check passed with warnings.
	CheckWarn
	// CheckFail indicates the check failed.
	CheckFail
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "Pass"
	case CheckWarn:
		return "Warn"
	case CheckFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// Symbol returns the styled marker for the check status.
func (s CheckStatus) Symbol() string {
	switch s {
	case CheckPass:
		return SuccessStyle.Render("[OK]")
	case CheckWarn:
		return WarningStyle.Render("[!!]")
	case CheckFail:
		return ErrorStyle.Render("[FAIL]")
	default:
		return "?"
	}
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // Suggested fix command or instruction
}

// Render returns a formatted string representation of the health check.
func (c *HealthCheck) Render() string {
	result := fmt.Sprintf("%s %s", c.Status.Symbol(), ValueStyle.Render(c.Message))
	if c.Status != CheckPass && c.Fix != "" {
		result += "\n" + fixStyle.Render("-> "+c.Fix)
	}
	return result
}

// =============================================================================
// HANDLE DOCTOR
// =============================================================================

// HandleDoctor handles the "doctor" command: run every health check, print
// the results, and return an error when any check failed so the process
// exits non-zero.
func HandleDoctor(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		// A broken config is itself a finding, not a reason to stop
		cfg = config.Default()
	}
	if args.Model != "" {
		cfg.Ollama.Model = args.Model
	}

	checks := runAllChecks(cfg)

	passed := 0
	warned := 0
	failed := 0
	for _, check := range checks {
		switch check.Status {
		case CheckPass:
			passed++
		case CheckWarn:
			warned++
		case CheckFail:
			failed++
		}
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("chatpane doctor"))
	fmt.Println(SeparatorStyle.Render(strings.Repeat("=", 41)))
	fmt.Println()

	for _, check := range checks {
		fmt.Println(check.Render())
	}

	fmt.Println()
	fmt.Println(SeparatorStyle.Render(strings.Repeat("-", 41)))

	summaryParts := []string{
		fmt.Sprintf("%d passed", passed),
	}
	if warned > 0 {
		summaryParts = append(summaryParts, WarningStyle.Render(fmt.Sprintf("%d warning", warned)))
	}
	if failed > 0 {
		summaryParts = append(summaryParts, ErrorStyle.Render(fmt.Sprintf("%d failed", failed)))
	}

	fmt.Println(DimStyle.Render(strings.Join(summaryParts, ", ")))
	fmt.Println()

	if failed > 0 {
		return fmt.Errorf("%d health check(s) failed", failed)
	}
	return nil
}

// =============================================================================
// INDIVIDUAL CHECKS
// =============================================================================

func runAllChecks(cfg config.Config) []*HealthCheck {
	var checks []*HealthCheck

	checks = append(checks, checkOllamaInstalled())
	checks = append(checks, checkServerReachable(cfg))
	checks = append(checks, checkModelAvailable(cfg))
	checks = append(checks, checkConfigValid())
	checks = append(checks, checkConfigDirWritable())

	return checks
}

// checkOllamaInstalled checks if the Ollama CLI is installed.
func checkOllamaInstalled() *HealthCheck {
	check := &HealthCheck{
		Name: "Ollama Installed",
	}

	cmd := exec.Command("ollama", "--version")
	output, err := cmd.Output()
	if err != nil {
		check.Status = CheckFail
		check.Message = "Ollama not installed"
		switch runtime.GOOS {
		case "windows":
			check.Fix = "Download from https://ollama.ai/download"
		case "darwin":
			check.Fix = "Run: brew install ollama"
		default:
			check.Fix = "Run: curl -fsSL https://ollama.ai/install.sh | sh"
		}
		return check
	}

	versionStr := strings.TrimSpace(string(output))
	parts := strings.Fields(versionStr)
	version := "unknown"
	if len(parts) > 0 {
		version = parts[len(parts)-1]
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Ollama installed (v%s)", version)
	return check
}

// checkServerReachable checks if the configured Ollama server responds.
func checkServerReachable(cfg config.Config) *HealthCheck {
	check := &HealthCheck{
		Name: "Server Reachable",
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.CheckRunning(ctx); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Ollama server not reachable at %s", cfg.Ollama.BaseURL)
		check.Fix = "Run: ollama serve"
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Ollama running at %s", cfg.Ollama.BaseURL)
	return check
}

// checkModelAvailable checks if the configured model is installed.
func checkModelAvailable(cfg config.Config) *HealthCheck {
	check := &HealthCheck{
		Name: "Model Available",
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Could not check model: %s", err)
		check.Fix = fmt.Sprintf("Run: ollama pull %s", cfg.Ollama.Model)
		return check
	}

	found := false
	for _, m := range models {
		if m.Name == cfg.Ollama.Model || strings.HasPrefix(m.Name, cfg.Ollama.Model+":") {
			found = true
			break
		}
	}

	if !found {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Model not downloaded: %s", cfg.Ollama.Model)
		check.Fix = fmt.Sprintf("Run: ollama pull %s", cfg.Ollama.Model)
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Model available: %s", cfg.Ollama.Model)
	return check
}

// checkConfigValid checks that the config file, if present, parses and
// validates.
func checkConfigValid() *HealthCheck {
	check := &HealthCheck{
		Name: "Config Valid",
	}

	configPath, err := config.PathTOML()
	if err != nil {
		check.Status = CheckWarn
		check.Message = "Could not determine config path"
		return check
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		check.Status = CheckWarn
		check.Message = "No config file (using defaults)"
		check.Fix = "Run: chatpane config init"
		return check
	}

	if _, err := config.Load(); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Config invalid: %s", err)
		check.Fix = "Fix the file or regenerate it: chatpane config init"
		return check
	}

	check.Status = CheckPass
	check.Message = "Config valid"
	return check
}

// checkConfigDirWritable checks that the config directory can hold the
// config file and chat history.
func checkConfigDirWritable() *HealthCheck {
	check := &HealthCheck{
		Name: "Config Dir Writable",
	}

	dir, err := config.Dir()
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Could not determine config directory: %s", err)
		return check
	}

	if err := config.EnsureDir(); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Could not create config directory: %s", err)
		check.Fix = fmt.Sprintf("Create manually: mkdir -p %s", dir)
		return check
	}

	f, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Config directory not writable: %s", err)
		check.Fix = fmt.Sprintf("Check permissions: chmod 755 %s", dir)
		return check
	}
	f.Close()
	os.Remove(f.Name())

	check.Status = CheckPass
	check.Message = "Config directory writable"
	return check
}
