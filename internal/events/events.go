// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package events defines the event protocol between the scheduler, the
// process supervisors and the display consumer, and the bounded bus that
// carries it.
package events

import (
	"github.com/matt-FFFFFF/tickbox/internal/step"
)

// Kind discriminates the Event variants.
type Kind int

const (
	// KindWait tells the consumer not to exit automatically on end-of-stream;
	// an explicit user action is required first.
	KindWait Kind = iota
	// KindStatus carries a task snapshot. Consumers treat it as an idempotent
	// upsert keyed by the snapshot's N.
	KindStatus
	// KindAddLine carries one line of combined process output, appended to the
	// consumer's scrollback.
	KindAddLine
)

// String implements the Stringer interface for Kind.
func (k Kind) String() string {
	switch k {
	case KindWait:
		return "wait"
	case KindStatus:
		return "status"
	case KindAddLine:
		return "addline"
	default:
		return "unknown"
	}
}

// Event is an immutable value snapshot sent over the bus. Task is valid
// only for KindStatus, Line only for KindAddLine.
type Event struct {
	Kind Kind
	Task step.Snapshot
	Line string
}

// Wait returns a KindWait event.
func Wait() Event {
	return Event{Kind: KindWait}
}

// Status returns a KindStatus event carrying a copy of the task's state.
func Status(t *step.Task) Event {
	return Event{Kind: KindStatus, Task: t.Snapshot()}
}

// AddLine returns a KindAddLine event.
func AddLine(line string) Event {
	return Event{Kind: KindAddLine, Line: line}
}
