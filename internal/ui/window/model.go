// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package window provides the floating chat pane TUI.
package window

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatpane/internal/config"
	"github.com/jeranaias/chatpane/internal/ollama"
	"github.com/jeranaias/chatpane/internal/prompt"
	"github.com/jeranaias/chatpane/internal/transcript"
	"github.com/jeranaias/chatpane/internal/ui/components"
	"github.com/jeranaias/chatpane/internal/ui/styles"
)

// =============================================================================
// PANE STATE
// =============================================================================

// State represents the current state of the pane.
type State int

const (
	StateIdle    State = iota // Ready for input
	StateWaiting              // A send is in flight
)

// =============================================================================
// LAYOUT CONSTANTS
// =============================================================================

const (
	// minPaneWidth and minPaneHeight bound how small the pane gets when the
	// terminal is cramped. Below these the chrome rows would eat everything.
	minPaneWidth  = 24
	minPaneHeight = 8

	// chromeRows is title + input + status inside the frame. MUST stay in
	// sync with the rows view.go stacks around the viewport.
	chromeRows = 3

	// inputPromptLen is the width of the textinput prompt ("> ").
	inputPromptLen = 2

	// probeTimeout bounds the startup reachability check.
	probeTimeout = 10 * time.Second

	// noticeTTL is how long a transient status bar notice stays up.
	noticeTTL = 4 * time.Second
)

// =============================================================================
// PANE MODEL
// =============================================================================

// Model is the Bubble Tea model for the floating chat pane.
type Model struct {
	// State
	state   State
	visible bool

	// Configuration snapshot. Changes on disk do not touch a running pane;
	// the watcher only raises configStale.
	cfg config.Config

	// Styling
	theme *styles.Theme

	// Terminal dimensions
	width  int
	height int

	// Send path collaborators
	client  *ollama.Client
	parser  *ollama.Parser
	builder *prompt.Builder
	log     *transcript.Transcript

	// UI components
	viewport viewport.Model
	input    textinput.Model
	waiting  components.Spinner

	// Key bindings
	keyMap KeyMap

	// Status bar state
	notice      string // transient notice, cleared by timer
	noticeSeq   int    // guards stale expiry timers
	configStale bool   // sticky: config changed on disk
	serverKnown bool   // probe has answered
	serverUp    bool
}

// New creates a pane model over the given collaborators. The pane starts
// visible and idle.
func New(cfg config.Config, client *ollama.Client, parser *ollama.Parser, builder *prompt.Builder, theme *styles.Theme) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a prompt..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(cfg.Window.Width, cfg.Window.Height)
	vp.SetContent("")

	return Model{
		state:    StateIdle,
		visible:  true,
		cfg:      cfg,
		theme:    theme,
		client:   client,
		parser:   parser,
		builder:  builder,
		log:      transcript.New(),
		viewport: vp,
		input:    ti,
		waiting:  components.NewWaitingSpinner(),
		keyMap:   NewKeyMap(cfg.Keys.Open),
	}
}

// Visible reports whether the pane is currently shown.
func (m Model) Visible() bool {
	return m.visible
}

// State returns the current pane state.
func (m Model) State() State {
	return m.state
}

// Transcript returns the session transcript.
func (m Model) Transcript() *transcript.Transcript {
	return m.log
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and probes the Ollama server once.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.probeCmd())
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		return m.handleReply(msg)

	case ServerStatusMsg:
		return m.handleServerStatus(msg)

	case ConfigChangedMsg:
		m.configStale = true
		return m, nil

	case CopyResultMsg:
		if msg.Err != nil {
			return m, m.setNotice("copy failed: " + msg.Err.Error())
		}
		return m, m.setNotice("transcript copied")

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.waiting, cmd = m.waiting.Update(msg)
		return m, cmd
	}

	return m, nil
}

// =============================================================================
// RESIZE
// =============================================================================

// handleResize recomputes the pane geometry. The pane is the configured
// window.width x window.height, clamped to the terminal, with one extra
// row/column reserved when a drop shadow will be painted.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	paneW, paneH := m.paneSize()
	contentW, contentH := m.contentSize(paneW, paneH)

	viewportH := contentH - chromeRows
	if viewportH < 1 {
		viewportH = 1
	}

	m.viewport.Width = contentW
	m.viewport.Height = viewportH

	inputW := contentW - inputPromptLen - 1
	if inputW < 10 {
		inputW = 10
	}
	m.input.Width = inputW

	// Theme dimensions track the pane's content area, not the terminal.
	if m.theme != nil {
		m.theme.SetSize(contentW, contentH)
	}

	m.refreshViewport()
	return m, nil
}

// paneSize returns the outer pane dimensions (frame included) after clamping
// to the terminal.
func (m Model) paneSize() (w, h int) {
	shadowPad := 0
	if m.cfg.Window.Border == config.BorderShadow {
		shadowPad = 1
	}

	w = m.cfg.Window.Width
	h = m.cfg.Window.Height

	if max := m.width - shadowPad; w > max {
		w = max
	}
	if max := m.height - shadowPad; h > max {
		h = max
	}
	if w < minPaneWidth {
		w = minPaneWidth
	}
	if h < minPaneHeight {
		h = minPaneHeight
	}
	return w, h
}

// contentSize returns the inner dimensions after subtracting the frame: two
// columns of padding always, plus two rows/columns of border when one is
// drawn.
func (m Model) contentSize(paneW, paneH int) (w, h int) {
	_, framed := styles.PaneBorder(m.cfg.Window.Border)

	w = paneW - 2 // Pane style padding
	h = paneH
	if framed {
		w -= 2
		h -= 2
	}
	if w < 1 {
		w = 1
	}
	if h < chromeRows+1 {
		h = chromeRows + 1
	}
	return w, h
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit and toggle work in any state, visible or not.
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Open):
		m.visible = !m.visible
		if m.visible && m.state == StateIdle {
			m.input.Focus()
			return m, textinput.Blink
		}
		m.input.Blur()
		return m, nil
	}

	if !m.visible {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Close):
		m.visible = false
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keyMap.Copy):
		return m, m.copyCmd()

	case key.Matches(msg, m.keyMap.Submit):
		if m.state == StateWaiting {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	// Input is disabled while a send is in flight.
	if m.state == StateWaiting {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SEND PATH
// =============================================================================

// submit moves the pane into the waiting state and fires the blocking send.
// Update's single-threaded message delivery guarantees no overlapping sends:
// while waiting, Submit is ignored, so at most one sendCmd is ever in flight.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.state = StateWaiting
	m.input.SetValue("")
	m.input.Blur()

	return m, tea.Batch(m.waiting.Start(), m.sendCmd(text))
}

// sendCmd builds the full prompt and posts it. The request blocks with no
// timeout and no cancellation; the pane stays responsive because the block
// happens inside the command, not in Update.
//
// RELIABILITY: capture collaborators before the closure so the command sees
// a consistent snapshot regardless of later model copies.
func (m Model) sendCmd(text string) tea.Cmd {
	client := m.client
	builder := m.builder
	cfg := m.cfg

	return func() tea.Msg {
		full := builder.Build(cfg, text, prompt.Source{})
		raw, err := client.Generate(context.Background(), full, true)
		if err != nil {
			return ReplyMsg{Prompt: text, Raw: []byte(err.Error()), TransportFailed: true}
		}
		return ReplyMsg{Prompt: text, Raw: raw}
	}
}

// handleReply parses the raw body, appends the exchange, and scrolls to the
// bottom. Server-reported errors land in the transcript as "Error:" lines;
// the pane returns to idle either way.
func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	m.state = StateIdle
	m.waiting.Stop()

	result := m.parser.Parse(msg.Raw, msg.TransportFailed)
	m.log.Append(result, msg.Prompt)
	m.refreshViewport()
	m.viewport.GotoBottom()

	if m.visible {
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

// probeCmd checks server reachability once at startup.
func (m Model) probeCmd() tea.Cmd {
	client := m.client

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		err := client.CheckRunning(ctx)
		return ServerStatusMsg{Running: err == nil, Err: err}
	}
}

// copyCmd copies the full transcript to the system clipboard. Lines are
// snapshotted before the closure; the clipboard call runs off the Update
// loop and must not touch the model.
func (m Model) copyCmd() tea.Cmd {
	lines := m.log.Lines()

	return func() tea.Msg {
		if len(lines) == 0 {
			return CopyResultMsg{Err: errors.New("transcript is empty")}
		}
		err := clipboard.WriteAll(strings.Join(lines, "\n"))
		return CopyResultMsg{Lines: len(lines), Err: err}
	}
}

func (m Model) handleServerStatus(msg ServerStatusMsg) (tea.Model, tea.Cmd) {
	m.serverKnown = true
	m.serverUp = msg.Running
	if !msg.Running {
		return m, m.setNotice("Ollama not reachable. Start it with: ollama serve")
	}
	return m, nil
}

// setNotice shows transient text in the status bar and schedules its expiry.
func (m *Model) setNotice(text string) tea.Cmd {
	m.notice = text
	m.noticeSeq++
	seq := m.noticeSeq

	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// refreshViewport re-renders the transcript into the viewport at the current
// width.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(renderTranscript(m.log.Lines(), m.theme, m.viewport.Width))
}
