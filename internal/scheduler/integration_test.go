// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/tickbox/internal/events"
	"github.com/matt-FFFFFF/tickbox/internal/step"
	"github.com/matt-FFFFFF/tickbox/internal/workenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// writeSteps creates real step scripts, each printing lineCount numbered
// lines, and returns the tasks plus a minimal environment.
func writeSteps(t *testing.T, lineCount int, ids ...int) ([]*step.Task, *workenv.Environment) {
	t.Helper()

	dir := t.TempDir()
	tasks := make([]*step.Task, 0, len(ids))

	for n, id := range ids {
		name := fmt.Sprintf("%02d-step", id)
		path := filepath.Join(dir, name)
		script := fmt.Sprintf("for i in $(seq 1 %d); do echo %s:$i; done\n", lineCount, name)
		require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

		tasks = append(tasks, &step.Task{N: n, ID: id, Name: name, Path: path})
	}

	return tasks, &workenv.Environment{WorkDir: dir, TempDir: t.TempDir()}
}

// runWithConsumer drives Run with the real supervisor while a consumer
// goroutine drains the bus, so a small capacity exercises backpressure.
func runWithConsumer(t *testing.T, s *Scheduler, tasks []*step.Task, capacity int) (bool, []events.Event) {
	t.Helper()

	bus := events.New(capacity)
	sender := bus.Sender()

	collected := make(chan []events.Event, 1)

	go func() {
		var evs []events.Event
		for ev := range bus.Events() {
			evs = append(evs, ev)
		}

		collected <- evs
	}()

	ok := s.Run(context.Background(), tasks, sender)
	sender.Close()

	return ok, <-collected
}

// stepLines extracts the numbered output lines of one step, in arrival order.
func stepLines(evs []events.Event, name string) []string {
	var out []string

	for _, ev := range evs {
		if ev.Kind == events.KindAddLine && strings.HasPrefix(ev.Line, name+":") {
			out = append(out, ev.Line)
		}
	}

	return out
}

func TestRun_SequentialRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)

	const lineCount = 25

	tasks, env := writeSteps(t, lineCount, 1, 2)

	s := &Scheduler{Policy: Sequential(), Env: env}

	ok, evs := runWithConsumer(t, s, tasks, 4)
	require.True(t, ok)

	for _, task := range tasks {
		assert.Equal(t, step.StateComplete, task.State)

		got := stepLines(evs, task.Name)
		require.Len(t, got, lineCount, "every line of %s must arrive", task.Name)

		for i, line := range got {
			assert.Equal(t, fmt.Sprintf("%s:%d", task.Name, i+1), line)
		}
	}

	// Sequential execution: all of step 1's output precedes step 2's.
	firstOf2 := -1
	lastOf1 := -1

	for i, ev := range evs {
		if ev.Kind != events.KindAddLine {
			continue
		}

		if strings.HasPrefix(ev.Line, "01-step:") {
			lastOf1 = i
		}

		if strings.HasPrefix(ev.Line, "02-step:") && firstOf2 < 0 {
			firstOf2 = i
		}
	}

	assert.Less(t, lastOf1, firstOf2)
}

func TestRun_ParallelRoundTripLossless(t *testing.T) {
	defer goleak.VerifyNone(t)

	const lineCount = 50

	tasks, env := writeSteps(t, lineCount, 0, 1, 2)

	s := &Scheduler{
		Policy:      Ranges([]IDRange{{Lo: 0, Hi: 2}}),
		Concurrency: 3,
		Env:         env,
	}

	// A small capacity forces producers through the backpressure path.
	ok, evs := runWithConsumer(t, s, tasks, 8)
	require.True(t, ok)

	for _, task := range tasks {
		assert.Equal(t, step.StateComplete, task.State)

		got := stepLines(evs, task.Name)
		require.Len(t, got, lineCount, "no line of %s may be dropped", task.Name)

		// Interleaving across steps is free, per-step order is not.
		for i, line := range got {
			assert.Equal(t, fmt.Sprintf("%s:%d", task.Name, i+1), line)
		}
	}
}

func TestRun_FailingStep(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "01-fail")
	require.NoError(t, os.WriteFile(path, []byte("false\n"), 0o755))

	tasks := []*step.Task{{N: 0, ID: 1, Name: "01-fail", Path: path}}
	env := &workenv.Environment{WorkDir: dir, TempDir: t.TempDir()}

	s := &Scheduler{Env: env}

	ok, evs := runWithConsumer(t, s, tasks, 8)
	require.False(t, ok)
	assert.Equal(t, step.StateFailed, tasks[0].State)

	var sawWait bool

	for _, ev := range evs {
		if ev.Kind == events.KindWait {
			sawWait = true
		}
	}

	assert.True(t, sawWait, "a failed run must emit Wait")
}
