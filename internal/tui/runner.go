// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/tickbox/internal/events"
)

// Runner bridges the event bus to a bubbletea program.
type Runner struct {
	model   *Model
	program *tea.Program
}

// NewRunner creates a display runner bound to ctx.
func NewRunner(ctx context.Context) *Runner {
	model := NewModel()
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	return &Runner{
		model:   model,
		program: program,
	}
}

// Run drains the bus into the display and blocks until the display exits,
// either because the stream ended (and no Wait was seen) or because the
// user quit. Quitting mid-run disconnects the consumer side of the bus,
// which makes in-flight supervisors kill their processes.
func (r *Runner) Run(bus *events.Bus) error {
	go func() {
		// Send is a no-op once the program has finished, so the pump can
		// keep draining until the producers shut down.
		for ev := range bus.Events() {
			r.program.Send(EventMsg{Event: ev})
		}

		r.program.Send(StreamClosedMsg{})
	}()

	_, err := r.program.Run()

	bus.Disconnect()

	return err //nolint:wrapcheck
}
