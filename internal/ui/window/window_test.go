// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package window

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatpane/internal/config"
	"github.com/jeranaias/chatpane/internal/ollama"
	"github.com/jeranaias/chatpane/internal/prompt"
	"github.com/jeranaias/chatpane/internal/transcript"
	"github.com/jeranaias/chatpane/internal/ui/styles"
)

// newTestModel builds a pane over inert collaborators. The client is never
// contacted: tests drive Update with messages instead of running commands.
func newTestModel() Model {
	cfg := config.Default()
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
	})
	return New(cfg, client, ollama.NewParser(nil), prompt.NewBuilder(nil), styles.NewTheme())
}

// update runs one message through the model and re-asserts the concrete type.
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want window.Model", next)
	}
	return out, cmd
}

func keyMsg(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: k})
}

func runeMsg(s string) tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune(s)})
}

// =============================================================================
// KEY MAP TESTS
// =============================================================================

func TestNewKeyMapDefaultsOpenKey(t *testing.T) {
	km := NewKeyMap("")
	if got := km.Open.Help().Key; got != "ctrl+g" {
		t.Errorf("NewKeyMap(\"\") open key = %q, want %q", got, "ctrl+g")
	}
}

func TestNewKeyMapUsesConfiguredKey(t *testing.T) {
	km := NewKeyMap("f5")
	if got := km.Open.Help().Key; got != "f5" {
		t.Errorf("NewKeyMap(\"f5\") open key = %q, want %q", got, "f5")
	}
}

// =============================================================================
// STATE AND TOGGLE TESTS
// =============================================================================

func TestNewStartsVisibleAndIdle(t *testing.T) {
	m := newTestModel()

	if !m.Visible() {
		t.Error("New() pane should start visible")
	}
	if m.State() != StateIdle {
		t.Errorf("New() state = %v, want StateIdle", m.State())
	}
}

func TestOpenKeyTogglesPane(t *testing.T) {
	m := newTestModel()

	m, _ = update(t, m, keyMsg(tea.KeyCtrlG))
	if m.Visible() {
		t.Fatal("open key should hide a visible pane")
	}

	m, _ = update(t, m, keyMsg(tea.KeyCtrlG))
	if !m.Visible() {
		t.Fatal("open key should show a hidden pane")
	}
}

func TestEscClosesPane(t *testing.T) {
	m := newTestModel()

	m, _ = update(t, m, keyMsg(tea.KeyEsc))
	if m.Visible() {
		t.Error("esc should hide the pane")
	}
}

func TestKeysIgnoredWhileHidden(t *testing.T) {
	m := newTestModel()
	m, _ = update(t, m, keyMsg(tea.KeyEsc))

	m, _ = update(t, m, runeMsg("x"))
	if got := m.input.Value(); got != "" {
		t.Errorf("typing while hidden changed input to %q, want empty", got)
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestModel()

	_, cmd := update(t, m, keyMsg(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatal("ctrl+c should return a quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("ctrl+c command produced %v, want tea.Quit", msg)
	}
}

// =============================================================================
// SEND PATH TESTS
// =============================================================================

func TestSubmitEmptyInputIsNoop(t *testing.T) {
	m := newTestModel()

	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	if m.State() != StateIdle {
		t.Errorf("state after empty submit = %v, want StateIdle", m.State())
	}
	if cmd != nil {
		t.Error("empty submit should not produce a command")
	}
}

func TestSubmitMovesToWaiting(t *testing.T) {
	m := newTestModel()
	m.input.SetValue("why is the sky blue?")

	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	if m.State() != StateWaiting {
		t.Errorf("state after submit = %v, want StateWaiting", m.State())
	}
	if cmd == nil {
		t.Error("submit should produce the send command")
	}
	if got := m.input.Value(); got != "" {
		t.Errorf("input after submit = %q, want empty", got)
	}
}

func TestInputDisabledWhileWaiting(t *testing.T) {
	m := newTestModel()
	m.input.SetValue("first")
	m, _ = update(t, m, keyMsg(tea.KeyEnter))

	m, _ = update(t, m, runeMsg("x"))
	if got := m.input.Value(); got != "" {
		t.Errorf("typing while waiting changed input to %q, want empty", got)
	}

	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	if cmd != nil {
		t.Error("submit while waiting should be ignored")
	}
	if m.State() != StateWaiting {
		t.Errorf("state = %v, want StateWaiting", m.State())
	}
}

func TestReplyReturnsToIdleAndAppends(t *testing.T) {
	m := newTestModel()
	m.input.SetValue("hi")
	m, _ = update(t, m, keyMsg(tea.KeyEnter))

	m, _ = update(t, m, ReplyMsg{Prompt: "hi", Raw: []byte(`{"response":"hello"}`)})

	if m.State() != StateIdle {
		t.Errorf("state after reply = %v, want StateIdle", m.State())
	}

	lines := m.Transcript().Lines()
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "You: hi") {
		t.Errorf("transcript missing prompt line:\n%s", joined)
	}
	if !strings.Contains(joined, "AI: hello") {
		t.Errorf("transcript missing reply line:\n%s", joined)
	}
}

func TestTransportFailureLandsAsErrorLine(t *testing.T) {
	m := newTestModel()

	m, _ = update(t, m, ReplyMsg{
		Prompt:          "hi",
		Raw:             []byte("connection refused"),
		TransportFailed: true,
	})

	joined := strings.Join(m.Transcript().Lines(), "\n")
	want := "Error: transport failure: connection refused"
	if !strings.Contains(joined, want) {
		t.Errorf("transcript = %q, want it to contain %q", joined, want)
	}
	if m.State() != StateIdle {
		t.Error("pane should stay usable after a transport failure")
	}
}

// =============================================================================
// GEOMETRY TESTS
// =============================================================================

func TestPaneSizeClampsToTerminal(t *testing.T) {
	m := newTestModel() // configured 80x20
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 12})

	w, h := m.paneSize()
	if w > 40 {
		t.Errorf("pane width = %d, exceeds terminal width 40", w)
	}
	if h > 12 {
		t.Errorf("pane height = %d, exceeds terminal height 12", h)
	}
}

func TestPaneSizeReservesShadowCell(t *testing.T) {
	m := newTestModel()
	m.cfg.Window.Border = config.BorderShadow
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 12})

	w, h := m.paneSize()
	if w > 39 {
		t.Errorf("shadow pane width = %d, want at most 39", w)
	}
	if h > 11 {
		t.Errorf("shadow pane height = %d, want at most 11", h)
	}
}

func TestPaneSizeHasFloor(t *testing.T) {
	m := newTestModel()
	m.cfg.Window.Width = 5
	m.cfg.Window.Height = 2
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	w, h := m.paneSize()
	if w < minPaneWidth {
		t.Errorf("pane width = %d, want at least %d", w, minPaneWidth)
	}
	if h < minPaneHeight {
		t.Errorf("pane height = %d, want at least %d", h, minPaneHeight)
	}
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestConfigChangeShowsRestartNotice(t *testing.T) {
	m := newTestModel()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, ConfigChangedMsg{})

	if !strings.Contains(m.View(), "restart to apply") {
		t.Error("View() missing the config-changed notice")
	}
}

func TestNoticeExpiryIgnoresStaleTimers(t *testing.T) {
	m := newTestModel()

	(&m).setNotice("first")
	firstSeq := m.noticeSeq
	(&m).setNotice("second")

	m, _ = update(t, m, noticeExpiredMsg{seq: firstSeq})
	if m.notice != "second" {
		t.Errorf("stale expiry cleared notice, got %q, want %q", m.notice, "second")
	}

	m, _ = update(t, m, noticeExpiredMsg{seq: m.noticeSeq})
	if m.notice != "" {
		t.Errorf("notice = %q after its own expiry, want empty", m.notice)
	}
}

func TestServerDownSetsNotice(t *testing.T) {
	m := newTestModel()

	m, cmd := update(t, m, ServerStatusMsg{Running: false})
	if m.notice == "" {
		t.Error("unreachable server should set a status notice")
	}
	if cmd == nil {
		t.Error("notice should come with an expiry timer")
	}
}

// =============================================================================
// CLIPBOARD TESTS
// =============================================================================

func TestCopyEmptyTranscriptFails(t *testing.T) {
	m := newTestModel()

	msg := m.copyCmd()()
	res, ok := msg.(CopyResultMsg)
	if !ok {
		t.Fatalf("copyCmd() produced %T, want CopyResultMsg", msg)
	}
	if res.Err == nil {
		t.Error("copying an empty transcript should fail")
	}
}

// =============================================================================
// VIEW TESTS
// =============================================================================

func TestViewBeforeResizeShowsLoading(t *testing.T) {
	m := newTestModel()

	if got := m.View(); got != "Loading..." {
		t.Errorf("View() before resize = %q, want %q", got, "Loading...")
	}
}

func TestHiddenViewShowsOpenHint(t *testing.T) {
	m := newTestModel()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, keyMsg(tea.KeyEsc))

	if !strings.Contains(m.View(), "ctrl+g") {
		t.Error("hidden view should mention the open key")
	}
}

func TestVisibleViewShowsTitleAndModel(t *testing.T) {
	m := newTestModel()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()
	if !strings.Contains(view, "chatpane") {
		t.Error("View() missing pane title")
	}
	if !strings.Contains(view, "deepseek-r1:8b") {
		t.Error("View() missing model name")
	}
}

// =============================================================================
// TRANSCRIPT DECORATION TESTS
// =============================================================================

func TestRenderTranscriptEmptyState(t *testing.T) {
	got := renderTranscript(nil, styles.NewTheme(), 80)
	if !strings.Contains(got, "No messages yet") {
		t.Errorf("renderTranscript(nil) = %q, want empty-state hint", got)
	}
}

func TestRenderTranscriptReplacesFences(t *testing.T) {
	lines := []string{
		"You: show me hello world",
		"",
		"AI: here you go:",
		"    ```go",
		`    fmt.Println("hi")`,
		"    ```",
		"",
		transcript.Separator,
		"", "",
	}

	// Highlighting splits identifiers from punctuation, so assert on a
	// single token rather than the full expression.
	got := renderTranscript(lines, styles.NewTheme(), 80)
	if !strings.Contains(got, "Println") {
		t.Errorf("decorated transcript lost code content:\n%s", got)
	}
	if strings.Contains(got, "```") {
		t.Errorf("decorated transcript still contains fence markers:\n%s", got)
	}
	if !strings.Contains(got, "You: show me hello world") {
		t.Errorf("decorated transcript lost the prompt line:\n%s", got)
	}
}

func TestRenderTranscriptUnclosedFence(t *testing.T) {
	lines := []string{
		"You: go on",
		"",
		"AI: ```python",
		"    print(1)",
	}

	got := renderTranscript(lines, styles.NewTheme(), 80)
	if !strings.Contains(got, "print") {
		t.Errorf("unclosed fence content dropped:\n%s", got)
	}
}
