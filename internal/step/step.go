// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package step

import (
	"time"
)

// State is the lifecycle state of a task. Transitions are monotonic:
// Pending -> Running -> Complete|Failed, or Pending -> Skipped.
type State int

const (
	// StatePending means the task has not been dispatched yet.
	StatePending State = iota
	// StateRunning means the task's process is currently executing.
	StateRunning
	// StateComplete means the task's process exited successfully.
	StateComplete
	// StateFailed means the task's process exited unsuccessfully or could not be started.
	StateFailed
	// StateSkipped means the task was excluded by the name filter and never ran.
	StateSkipped
)

// String implements the Stringer interface for State.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	case StateSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed || s == StateSkipped
}

// Task is one schedulable unit of work, backed by one executable file.
// N is the position in run order, assigned once at load time. ID is the
// numeric filename prefix and determines run order and sync-point range
// membership. The scheduler is the sole mutator of a task after load.
type Task struct {
	N        int
	ID       int
	Name     string
	Path     string
	State    State
	Started  time.Time
	Duration time.Duration
}

// Snapshot is an immutable copy of a task's observable state, carried by
// status events. Consumers own the value they receive.
type Snapshot struct {
	N        int
	ID       int
	Name     string
	State    State
	Started  time.Time
	Duration time.Duration
}

// Snapshot returns a value copy of the task's current state.
func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		N:        t.N,
		ID:       t.ID,
		Name:     t.Name,
		State:    t.State,
		Started:  t.Started,
		Duration: t.Duration,
	}
}

// MarkRunning transitions the task from Pending to Running.
// It reports whether the transition was applied.
func (t *Task) MarkRunning(now time.Time) bool {
	if t.State != StatePending {
		return false
	}

	t.State = StateRunning
	t.Started = now

	return true
}

// MarkComplete transitions the task from Running to Complete.
// It reports whether the transition was applied.
func (t *Task) MarkComplete(d time.Duration) bool {
	if t.State != StateRunning {
		return false
	}

	t.State = StateComplete
	t.Duration = d

	return true
}

// MarkFailed transitions the task from Running to Failed.
// It reports whether the transition was applied.
func (t *Task) MarkFailed(d time.Duration) bool {
	if t.State != StateRunning {
		return false
	}

	t.State = StateFailed
	t.Duration = d

	return true
}

// MarkSkipped transitions the task from Pending to Skipped.
// It reports whether the transition was applied.
func (t *Task) MarkSkipped() bool {
	if t.State != StatePending {
		return false
	}

	t.State = StateSkipped

	return true
}
