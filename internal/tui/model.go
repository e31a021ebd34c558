// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/tickbox/internal/events"
	"github.com/matt-FFFFFF/tickbox/internal/step"
)

// Checklist glyphs for the workflow pane.
const (
	glyphUnchecked = "☐"
	glyphChecked   = "☑"
	glyphFailed    = "☒"
)

const (
	durationDecimals = 1 // rendered duration precision, e.g. (2.3s)
	chromeLines      = 5 // title, pane headers and help footer
)

// Model is the bubbletea model for the workflow display: a checklist of
// steps on top and the combined command output below.
type Model struct {
	rows     []step.Snapshot
	lines    []string
	viewport viewport.Model
	styles   *Styles

	width  int
	height int
	ready  bool

	wait     bool
	done     bool
	quitting bool
}

// Styles contains the lipgloss styling for the display.
type Styles struct {
	Title    lipgloss.Style
	Pending  lipgloss.Style
	Running  lipgloss.Style
	Complete lipgloss.Style
	Failed   lipgloss.Style
	Skipped  lipgloss.Style
	Border   lipgloss.Style
	Help     lipgloss.Style
}

// NewStyles creates the default styling for the display.
func NewStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Running:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Complete: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Failed:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Skipped:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// NewModel creates an empty display model.
func NewModel() *Model {
	return &Model{
		styles: NewStyles(),
	}
}

// applyEvent folds one bus event into the model.
func (m *Model) applyEvent(ev events.Event) {
	switch ev.Kind {
	case events.KindWait:
		m.wait = true

	case events.KindStatus:
		m.upsertRow(ev.Task)

	case events.KindAddLine:
		m.lines = append(m.lines, ev.Line)

		if m.ready {
			atBottom := m.viewport.AtBottom()
			m.viewport.SetContent(strings.Join(m.lines, "\n"))

			if atBottom {
				m.viewport.GotoBottom()
			}
		}
	}
}

// upsertRow applies a status snapshot keyed by its position index: a new
// index appends, an existing one replaces in place. Rows are never
// reordered.
func (m *Model) upsertRow(snap step.Snapshot) {
	for snap.N >= len(m.rows) {
		m.rows = append(m.rows, step.Snapshot{N: len(m.rows)})
	}

	m.rows[snap.N] = snap
}

// renderChecklist renders the workflow pane.
func (m *Model) renderChecklist() string {
	var b strings.Builder

	for i, row := range m.rows {
		if i > 0 {
			b.WriteString("\n")
		}

		b.WriteString(m.renderRow(row))
	}

	return b.String()
}

func (m *Model) renderRow(row step.Snapshot) string {
	var (
		glyph string
		style lipgloss.Style
	)

	switch row.State {
	case step.StateRunning:
		glyph, style = glyphUnchecked, m.styles.Running
	case step.StateComplete:
		glyph, style = glyphChecked, m.styles.Complete
	case step.StateFailed:
		glyph, style = glyphFailed, m.styles.Failed
	case step.StateSkipped:
		glyph, style = glyphUnchecked, m.styles.Skipped
	default:
		glyph, style = glyphUnchecked, m.styles.Pending
	}

	label := fmt.Sprintf("%s %s", glyph, row.Name)

	if row.State == step.StateSkipped {
		label += " (skipped)"
	}

	if row.Duration > 0 {
		label += fmt.Sprintf(" (%.*fs)", durationDecimals, row.Duration.Seconds())
	}

	return style.Render(label)
}
