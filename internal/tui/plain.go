// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/matt-FFFFFF/tickbox/internal/color"
	"github.com/matt-FFFFFF/tickbox/internal/events"
	"github.com/matt-FFFFFF/tickbox/internal/step"
)

// RunPlain drains the bus without a TUI, for headless environments and
// non-interactive terminals. Output lines stream to w as they arrive; the
// step checklist is printed once, after the stream ends. A Wait event makes
// the renderer block for Enter on stdin before returning.
func RunPlain(bus *events.Bus, w io.Writer, stdin io.Reader) error {
	var wait bool

	rows := make(map[int]step.Snapshot)

	for ev := range bus.Events() {
		switch ev.Kind {
		case events.KindWait:
			wait = true

		case events.KindStatus:
			rows[ev.Task.N] = ev.Task

		case events.KindAddLine:
			if _, err := fmt.Fprintln(w, ev.Line); err != nil {
				bus.Disconnect()
				return err //nolint:wrapcheck
			}
		}
	}

	bus.Disconnect()

	printChecklist(w, rows)

	if wait {
		fmt.Fprint(w, "Press Enter to continue...") //nolint:errcheck

		_, _ = bufio.NewReader(stdin).ReadString('\n')
	}

	return nil
}

func printChecklist(w io.Writer, rows map[int]step.Snapshot) {
	if len(rows) == 0 {
		return
	}

	ns := make([]int, 0, len(rows))
	for n := range rows {
		ns = append(ns, n)
	}

	sort.Ints(ns)

	fmt.Fprintln(w) //nolint:errcheck

	for _, n := range ns {
		row := rows[n]

		var line string

		switch row.State {
		case step.StateComplete:
			line = color.Colorize(fmt.Sprintf("%s %s", glyphChecked, row.Name), color.FgGreen)
		case step.StateFailed:
			line = color.Colorize(fmt.Sprintf("%s %s", glyphFailed, row.Name), color.FgRed)
		case step.StateSkipped:
			line = color.Colorize(fmt.Sprintf("%s %s (skipped)", glyphUnchecked, row.Name), color.FgHiBlack)
		default:
			line = color.Colorize(fmt.Sprintf("%s %s", glyphUnchecked, row.Name), color.FgYellow)
		}

		fmt.Fprintln(w, line) //nolint:errcheck
	}
}
