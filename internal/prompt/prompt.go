// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt assembles the effective prompt sent to the model from the
// user's typed text, the configured default instruction, and optional
// context from the file or project the user was working in.
package prompt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/chatpane/internal/config"
)

const (
	// MaxContextBytes caps file content included in a prompt (50KB).
	MaxContextBytes = 50 * 1024

	// MaxProjectEntries caps the project file listing.
	MaxProjectEntries = 50

	// maxWalkDepth bounds how deep the project listing descends.
	maxWalkDepth = 4
)

// ignoreDirs are directory names excluded from the project listing.
var ignoreDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"node_modules": true, "__pycache__": true, ".venv": true, "venv": true,
	"vendor": true, "target": true, "dist": true, "build": true,
	".idea": true, ".vscode": true, ".vs": true,
}

// sourceExtensions are the file types worth naming in a project summary.
var sourceExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".tsx": true,
	".rs": true, ".c": true, ".h": true, ".cpp": true, ".hpp": true,
	".java": true, ".rb": true, ".sh": true, ".lua": true, ".vim": true,
	".md": true, ".toml": true, ".yaml": true, ".yml": true, ".json": true,
}

// Source describes where the user was when they opened the pane.
type Source struct {
	// Path is the active file, if any.
	Path string

	// Dir is the working directory. Empty means the process working
	// directory.
	Dir string
}

// Notifier receives warnings when context injection degrades.
type Notifier interface {
	Warnf(format string, args ...any)
}

// Builder assembles prompts. Context problems are reported through the
// notifier and never block a send.
type Builder struct {
	notify Notifier
}

// NewBuilder creates a builder. notify may be nil.
func NewBuilder(notify Notifier) *Builder {
	return &Builder{notify: notify}
}

// Build returns the effective prompt for userText.
//
// The configured default prompt, when set, is prepended as an instruction
// block followed by a blank line. User text is NFC-normalized first so
// composed and decomposed input produce identical requests. When the dynamic
// prompt is enabled, file or project context is appended after the text.
func (b *Builder) Build(cfg config.Config, userText string, src Source) string {
	// UNICODE: NFC normalization keeps composed and decomposed forms of the
	// same text byte-identical on the wire.
	text := norm.NFC.String(userText)

	var sb strings.Builder
	if def := strings.TrimSpace(cfg.Prompt.Default); def != "" {
		sb.WriteString(def)
		sb.WriteString("\n\n")
	}
	sb.WriteString(text)

	if !cfg.Prompt.Dynamic.Enabled {
		return sb.String()
	}

	switch cfg.Prompt.Dynamic.Context {
	case config.ContextFile:
		sb.WriteString(b.fileContext(src.Path))
	case config.ContextProject:
		sb.WriteString(b.projectContext(src.Dir))
	}
	return sb.String()
}

// =============================================================================
// FILE CONTEXT
// =============================================================================

// fileContext reads the active file and formats it for inclusion. Problems
// degrade to a warning and an empty string.
func (b *Builder) fileContext(path string) string {
	if path == "" {
		b.warnf("file context requested but no active file")
		return ""
	}

	content, truncated, err := readCapped(path, MaxContextBytes)
	if err != nil {
		b.warnf("skipping file context: %v", err)
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n--- File: %s ---\n", path)
	sb.WriteString(content)
	if truncated {
		sb.WriteString("\n[truncated]")
	}
	sb.WriteString("\n--- End of file ---\n")
	return sb.String()
}

// readCapped reads at most limit bytes of a file, reporting whether content
// was cut off.
func readCapped(path string, limit int) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, fmt.Errorf("file not found: %s", path)
		}
		return "", false, fmt.Errorf("cannot access file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(limit)+1))
	if err != nil {
		return "", false, fmt.Errorf("failed to read file: %w", err)
	}

	truncated := len(data) > limit
	if truncated {
		data = data[:limit]
		// UNICODE: back off a partial rune left at the cut point. A genuine
		// U+FFFD decodes with size 3 and is kept.
		for len(data) > 0 {
			r, size := utf8.DecodeLastRune(data)
			if r != utf8.RuneError || size > 1 {
				break
			}
			data = data[:len(data)-1]
		}
	}
	return string(data), truncated, nil
}

// =============================================================================
// PROJECT CONTEXT
// =============================================================================

// projectContext summarizes the working directory: its name plus a capped
// listing of source files.
func (b *Builder) projectContext(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			b.warnf("skipping project context: %v", err)
			return ""
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		b.warnf("skipping project context: %v", err)
		return ""
	}

	entries, capped, err := listSourceFiles(abs, MaxProjectEntries)
	if err != nil {
		b.warnf("skipping project context: %v", err)
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n--- Project: %s ---\n", filepath.Base(abs))
	for _, entry := range entries {
		sb.WriteString(entry)
		sb.WriteString("\n")
	}
	if capped {
		sb.WriteString("[truncated]\n")
	}
	sb.WriteString("--- End of project ---\n")
	return sb.String()
}

// listSourceFiles walks root up to maxWalkDepth deep and returns relative
// paths of source files, at most max entries. Unreadable subtrees are
// skipped.
func listSourceFiles(root string, max int) ([]string, bool, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, false, err
	}
	if !info.IsDir() {
		return nil, false, fmt.Errorf("not a directory: %s", root)
	}

	var entries []string
	capped := false
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		depth := strings.Count(rel, string(os.PathSeparator))

		if d.IsDir() {
			if ignoreDirs[d.Name()] || depth >= maxWalkDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !sourceExtensions[filepath.Ext(d.Name())] {
			return nil
		}
		if len(entries) >= max {
			capped = true
			return filepath.SkipAll
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return entries, capped, nil
}

func (b *Builder) warnf(format string, args ...any) {
	if b.notify == nil {
		return
	}
	b.notify.Warnf(format, args...)
}
