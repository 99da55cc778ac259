// Package bubble adapts a mounted editor to the bubbletea program
// lifecycle: mount on model creation, forward editor notifications as
// messages, destroy on quit. It is the terminal counterpart of a
// component wrapper; the reconciliation itself stays in the root package.
package bubble

import (
	"context"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/editkit/tether"
)

// ReadyMsg reports that asynchronous editor initialization finished.
type ReadyMsg struct {
	// Err is non-nil when initialization failed.
	Err error
}

// TextMsg carries a rate-limited text-changed notification.
type TextMsg struct {
	Change tether.TextChange
}

// SwapMsg carries a completed document swap.
type SwapMsg struct {
	Swap tether.DocumentSwap
}

// SetConfigMsg asks the model to reconcile its editor to a new
// configuration.
type SetConfigMsg struct {
	Config tether.Config
}

// UpdateErrMsg reports a failed reconciliation. The editor keeps its last
// committed state.
type UpdateErrMsg struct {
	Err error
}

// eventBuffer bounds how many notifications may queue between frames.
const eventBuffer = 64

// Model is a tea.Model owning one mounted editor. It is also the
// editor's focus surface.
type Model struct {
	ed     *tether.Editor
	events chan tea.Msg

	focused atomic.Bool

	value  string
	docID  string
	width     int
	height    int
	err       error
	updateErr error
	ready     bool

	frame  lipgloss.Style
	status lipgloss.Style
}

// New mounts an editor for cfg and wraps it in a model. Initialization
// continues in the background; the model reports completion with a
// ReadyMsg.
func New(cfg tether.Config, opts ...tether.Option) (*Model, error) {
	m := &Model{
		events: make(chan tea.Msg, eventBuffer),
		value:  cfg.Value,
		docID:  cfg.DocumentID,
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
		status: lipgloss.NewStyle().Faint(true),
	}

	ed, err := tether.Mount(m, &cfg, opts...)
	if err != nil {
		return nil, err
	}
	m.ed = ed

	ed.Events().OnTextChange(func(tc tether.TextChange) {
		m.send(TextMsg{Change: tc})
	})
	ed.Events().OnDocumentChanged(func(ds tether.DocumentSwap) {
		m.send(SwapMsg{Swap: ds})
	})
	return m, nil
}

// Focus implements the editor's focus surface.
func (m *Model) Focus() { m.focused.Store(true) }

// Editor returns the underlying editor handle.
func (m *Model) Editor() *tether.Editor { return m.ed }

// send queues a notification for the program loop, dropping it when the
// buffer is full. Observers must never block the editor's dispatch path.
func (m *Model) send(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

// nextEvent is the re-armed command pumping editor notifications into the
// program loop.
func (m *Model) nextEvent() tea.Msg {
	return <-m.events
}

func (m *Model) awaitReady() tea.Msg {
	err := m.ed.Ready(context.Background())
	return ReadyMsg{Err: err}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.awaitReady, m.nextEvent)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ReadyMsg:
		m.ready = true
		m.err = msg.Err
		if msg.Err == nil {
			if v := m.ed.View(); v != nil {
				m.value = v.Doc()
			}
		}
		return m, nil

	case TextMsg:
		m.value = msg.Change.Value
		return m, m.nextEvent

	case SwapMsg:
		m.docID = msg.Swap.To
		if v := m.ed.View(); v != nil {
			m.value = v.Doc()
		}
		return m, m.nextEvent

	case SetConfigMsg:
		cfg := msg.Config
		m.updateErr = nil
		return m, func() tea.Msg {
			if err := m.ed.Update(context.Background(), &cfg); err != nil {
				return UpdateErrMsg{Err: err}
			}
			return nil
		}

	case UpdateErrMsg:
		m.updateErr = msg.Err
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			_ = m.ed.Destroy(context.Background())
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return m.status.Render("editor failed: " + m.err.Error())
	}
	if !m.ready {
		return m.status.Render("mounting editor...")
	}

	frame := m.frame
	if m.width > 4 {
		frame = frame.Width(m.width - 4)
	}
	if m.focused.Load() {
		frame = frame.BorderForeground(lipgloss.Color("12"))
	}

	var status strings.Builder
	if m.docID != "" {
		status.WriteString(m.docID)
	} else {
		status.WriteString("(untitled)")
	}
	if v := m.ed.View(); v != nil {
		if st := v.State(); st != nil && !st.Editable() {
			status.WriteString("  [read-only]")
		}
	}
	if m.updateErr != nil {
		status.WriteString("  !" + m.updateErr.Error())
	}

	return frame.Render(m.value) + "\n" + m.status.Render(status.String())
}

// RunModel blocks running an already-built model until the user quits.
func RunModel(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Run mounts an editor for cfg and blocks running the program until the
// user quits. Convenience entry point for hosts without their own loop.
func Run(cfg tether.Config, opts ...tether.Option) error {
	m, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	return RunModel(m)
}
