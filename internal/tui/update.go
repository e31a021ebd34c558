// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/matt-FFFFFF/tickbox/internal/events"
)

// EventMsg wraps a bus event for the tea framework.
type EventMsg struct {
	Event events.Event
}

// StreamClosedMsg indicates the event bus reached end-of-stream: every
// producer has shut down.
type StreamClosedMsg struct{}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()

		return m, nil

	case EventMsg:
		m.applyEvent(msg.Event)
		return m, nil

	case StreamClosedMsg:
		m.done = true

		// End-of-stream is the natural shutdown signal unless a Wait event
		// asked us to hold the screen for the user.
		if !m.wait {
			m.quitting = true
			return m, tea.Quit
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	if !m.ready {
		return "Starting...\n"
	}

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("Workflow"))
	view.WriteString("\n")
	view.WriteString(m.renderChecklist())
	view.WriteString("\n\n")
	view.WriteString(m.styles.Title.Render("Command output"))
	view.WriteString("\n")
	view.WriteString(m.styles.Border.Render(m.viewport.View()))
	view.WriteString("\n")
	view.WriteString(m.styles.Help.Render(m.helpText()))

	return view.String()
}

func (m *Model) helpText() string {
	if m.done {
		return "'q' to quit"
	}

	return "↑/↓ to scroll, 'q' to abort the run"
}

// resizeViewport fits the output pane under the checklist.
func (m *Model) resizeViewport() {
	h := m.height - len(m.rows) - chromeLines
	if h < 1 {
		h = 1
	}

	w := m.width - 2 // border
	if w < 1 {
		w = 1
	}

	if !m.ready {
		m.viewport = viewport.New(w, h)
		m.ready = true
	} else {
		m.viewport.Width = w
		m.viewport.Height = h
	}

	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}
