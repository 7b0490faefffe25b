// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatpane.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.chatpane/config.toml
//   - ~/.chatpane/config.json
//   - Built-in defaults
//
// A Config is constructed once at startup and passed by value; nothing in
// this package or its callers mutates a live configuration. The `config set`
// command edits a local copy, validates it, and writes it back to disk.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/chatpane/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete chatpane configuration.
type Config struct {
	// Window controls the floating pane geometry and frame.
	Window WindowConfig `toml:"window" json:"window"`

	// Ollama selects the model and server the pane talks to.
	Ollama OllamaConfig `toml:"ollama" json:"ollama"`

	// Keys holds key bindings.
	Keys KeysConfig `toml:"keys" json:"keys"`

	// Prompt controls default instructions and dynamic context injection.
	Prompt PromptConfig `toml:"prompt" json:"prompt"`
}

// WindowConfig contains the chat pane geometry and border style.
type WindowConfig struct {
	// Width is the pane width in terminal columns.
	Width int `toml:"width" json:"width"`
	// Height is the pane height in terminal rows.
	Height int `toml:"height" json:"height"`
	// Border is the frame style: "none", "single", "double", "rounded", "shadow".
	Border string `toml:"border" json:"border"`
}

// OllamaConfig contains the local Ollama server settings.
type OllamaConfig struct {
	// Model is the model name passed to /api/generate.
	Model string `toml:"model" json:"model"`
	// BaseURL is the server base URL, stored without a trailing slash.
	BaseURL string `toml:"base_url" json:"base_url"`
}

// KeysConfig contains key bindings in bubbletea key notation.
type KeysConfig struct {
	// Open toggles the chat pane (e.g. "ctrl+g", "f5").
	Open string `toml:"open" json:"open"`
}

// PromptConfig contains prompt construction settings.
type PromptConfig struct {
	// Default is prepended to every prompt as an instruction block.
	Default string `toml:"default" json:"default"`
	// Dynamic controls context injection.
	Dynamic DynamicConfig `toml:"dynamic" json:"dynamic"`
}

// DynamicConfig controls dynamic context injection into prompts.
type DynamicConfig struct {
	// Enabled turns context injection on.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Context selects the context source: "file", "project", "none".
	Context string `toml:"context" json:"context"`
}

// Border styles accepted by window.border.
const (
	BorderNone    = "none"
	BorderSingle  = "single"
	BorderDouble  = "double"
	BorderRounded = "rounded"
	BorderShadow  = "shadow"
)

// Context sources accepted by prompt.dynamic.context.
const (
	ContextFile    = "file"
	ContextProject = "project"
	ContextNone    = "none"
)

var validBorders = map[string]bool{
	BorderNone:    true,
	BorderSingle:  true,
	BorderDouble:  true,
	BorderRounded: true,
	BorderShadow:  true,
}

var validContexts = map[string]bool{
	ContextFile:    true,
	ContextProject: true,
	ContextNone:    true,
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  80,
			Height: 20,
			Border: BorderRounded,
		},
		Ollama: OllamaConfig{
			Model:   "deepseek-r1:8b",
			BaseURL: "http://127.0.0.1:11434",
		},
		Keys: KeysConfig{
			Open: "ctrl+g",
		},
		Prompt: PromptConfig{
			Default: "",
			Dynamic: DynamicConfig{
				Enabled: false,
				Context: ContextNone,
			},
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the chatpane configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatpane"), nil
}

// PathTOML returns the path to the TOML config file.
func PathTOML() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// PathJSON returns the path to the JSON config file.
func PathJSON() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults. A missing file is
// not an error. Environment overrides are applied last, before validation.
func Load() (Config, error) {
	tomlPath, err := PathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := PathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	fillDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. JSON is selected by the .json extension; anything else is
// decoded as TOML.
func LoadFromPath(path string) (Config, error) {
	var cfg Config

	if strings.HasSuffix(path, ".json") {
		if err := loadJSON(&cfg, path); err != nil {
			return Config{}, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := loadTOML(&cfg, path); err != nil {
			return Config{}, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	fillDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadTOML(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	// Unknown keys are tolerated so older or newer config files still load.
	_ = meta.Undecoded()
	return nil
}

func loadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults and canonicalizes
// fields that have a single stored form.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Window.Width == 0 {
		cfg.Window.Width = defaults.Window.Width
	}
	if cfg.Window.Height == 0 {
		cfg.Window.Height = defaults.Window.Height
	}
	if cfg.Window.Border == "" {
		cfg.Window.Border = defaults.Window.Border
	}

	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = defaults.Ollama.Model
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = defaults.Ollama.BaseURL
	}
	// Stored without a trailing slash so request paths concatenate cleanly.
	cfg.Ollama.BaseURL = strings.TrimRight(cfg.Ollama.BaseURL, "/")

	if cfg.Keys.Open == "" {
		cfg.Keys.Open = defaults.Keys.Open
	}

	if cfg.Prompt.Dynamic.Context == "" {
		cfg.Prompt.Dynamic.Context = defaults.Prompt.Dynamic.Context
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg Config) error {
	path, err := PathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents a half-written config.
func SaveTOML(cfg Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# chatpane configuration file\n")
	buf.WriteString("# Generated by chatpane - edit with care\n")
	buf.WriteString("#\n")
	buf.WriteString("# Documentation: https://github.com/jeranaias/chatpane\n")
	buf.WriteString("\n")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c Config) Validate() error {
	var errs ValidateErrors

	if c.Window.Width <= 0 {
		errs = append(errs, ValidationError{
			Field:   "window.width",
			Message: fmt.Sprintf("must be positive, got %d", c.Window.Width),
		})
	}
	if c.Window.Height <= 0 {
		errs = append(errs, ValidationError{
			Field:   "window.height",
			Message: fmt.Sprintf("must be positive, got %d", c.Window.Height),
		})
	}
	if !validBorders[strings.ToLower(c.Window.Border)] {
		errs = append(errs, ValidationError{
			Field:   "window.border",
			Message: fmt.Sprintf("invalid border '%s', must be one of: none, single, double, rounded, shadow", c.Window.Border),
		})
	}

	if c.Ollama.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "ollama.model",
			Message: "model name cannot be empty",
		})
	}
	if err := validateBaseURL(c.Ollama.BaseURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "ollama.base_url",
			Message: err.Error(),
		})
	}

	if !validContexts[strings.ToLower(c.Prompt.Dynamic.Context)] {
		errs = append(errs, ValidationError{
			Field:   "prompt.dynamic.context",
			Message: fmt.Sprintf("invalid context '%s', must be one of: file, project, none", c.Prompt.Dynamic.Context),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("base URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL is missing a host")
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("CHATPANE_MODEL"); model != "" {
		c.Ollama.Model = model
	}
	if baseURL := os.Getenv("CHATPANE_BASE_URL"); baseURL != "" {
		c.Ollama.BaseURL = baseURL
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation
// (e.g. "window.border", "prompt.dynamic.context").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 || key == "" {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation. Callers are expected to
// run Validate on the result before saving it.
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 || key == "" {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field
// equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type
// conversion. String inputs are parsed into the field's kind.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.EqualFold(strVal, "true") || strings.EqualFold(strVal, "yes")
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// AllKeys returns all configuration keys in dot notation.
func AllKeys() []string {
	return []string{
		"window.width",
		"window.height",
		"window.border",
		"ollama.model",
		"ollama.base_url",
		"keys.open",
		"prompt.default",
		"prompt.dynamic.enabled",
		"prompt.dynamic.context",
	}
}

// Merge returns base with every non-zero field of override applied on top.
func Merge(base, override Config) Config {
	out := base

	if override.Window.Width != 0 {
		out.Window.Width = override.Window.Width
	}
	if override.Window.Height != 0 {
		out.Window.Height = override.Window.Height
	}
	if override.Window.Border != "" {
		out.Window.Border = override.Window.Border
	}

	if override.Ollama.Model != "" {
		out.Ollama.Model = override.Ollama.Model
	}
	if override.Ollama.BaseURL != "" {
		out.Ollama.BaseURL = strings.TrimRight(override.Ollama.BaseURL, "/")
	}

	if override.Keys.Open != "" {
		out.Keys.Open = override.Keys.Open
	}

	if override.Prompt.Default != "" {
		out.Prompt.Default = override.Prompt.Default
	}
	if override.Prompt.Dynamic.Enabled {
		out.Prompt.Dynamic.Enabled = true
	}
	if override.Prompt.Dynamic.Context != "" {
		out.Prompt.Dynamic.Context = override.Prompt.Dynamic.Context
	}

	return out
}

// String returns a string representation of the config for debugging.
func (c Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
