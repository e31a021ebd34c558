// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scheduler decides which steps run now and which must wait. It
// bounds concurrency, enforces sync-point barriers and aggregates the
// overall success of a run.
package scheduler

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/tickbox/internal/ctxlog"
	"github.com/matt-FFFFFF/tickbox/internal/events"
	"github.com/matt-FFFFFF/tickbox/internal/step"
	"github.com/matt-FFFFFF/tickbox/internal/supervisor"
	"github.com/matt-FFFFFF/tickbox/internal/workenv"
)

// DefaultConcurrency bounds the running set when no explicit cap is given.
const DefaultConcurrency = 4

// LaunchFunc supervises one task to completion. It exists so tests can
// substitute a fake for supervisor.Execute.
type LaunchFunc func(context.Context, *step.Task, *workenv.Environment, *events.Sender) (supervisor.Outcome, error)

// Scheduler runs an ordered task list under a concurrency cap and a sync
// policy. The zero value is usable: sequential, cap of DefaultConcurrency,
// no filter.
type Scheduler struct {
	// Concurrency is the maximum size of the running set. Values below 1
	// select DefaultConcurrency.
	Concurrency int
	// Policy decides which tasks may run concurrently.
	Policy SyncPolicy
	// Filter skips tasks whose name it does not match. Nil matches all.
	Filter *regexp.Regexp
	// Env is passed unmodified to every spawned process.
	Env *workenv.Environment
	// WaitAtEnd forces a Wait event before Run returns, regardless of outcome.
	WaitAtEnd bool
	// Launch overrides the supervisor for tests. Nil selects supervisor.Execute.
	Launch LaunchFunc
}

// completion is the resolution of one launched task.
type completion struct {
	task    *step.Task
	outcome supervisor.Outcome
	err     error
	elapsed time.Duration
}

// Run dispatches tasks in order, honouring the concurrency cap and sync
// points, and emits Status/AddLine/Wait events throughout. It returns true
// only if no task failed.
//
// Failure semantics are fail-fast, drain-in-flight: the first failed task
// stops dispatch of new tasks, but already-launched siblings run to their
// natural end.
func (s *Scheduler) Run(ctx context.Context, tasks []*step.Task, sender *events.Sender) bool {
	logger := ctxlog.Logger(ctx)

	launch := s.Launch
	if launch == nil {
		launch = supervisor.Execute
	}

	limit := s.Concurrency
	if limit < 1 {
		limit = DefaultConcurrency
	}

	var (
		failed       bool
		waitSent     bool
		disconnected bool
		merr         *multierror.Error
	)

	running := make(map[int]*step.Task, limit)
	done := make(chan completion)

	// finish resolves one completed task: state transition, status event,
	// and the Wait event on the first failure of the run.
	finish := func(c completion) {
		delete(running, c.task.N)

		success := c.err == nil && c.outcome.Success()

		if errors.Is(c.err, events.ErrConsumerGone) {
			// The consumer went away mid-stream; nothing can be emitted for
			// this task anymore.
			disconnected = true
			c.task.MarkFailed(c.elapsed)
			failed = true

			return
		}

		if c.err != nil {
			// Spawn and reap errors count as step failures; under-reporting
			// them as mere diagnostics hides real breakage.
			merr = multierror.Append(merr, c.err)
		}

		if success {
			c.task.MarkComplete(c.elapsed)
		} else {
			c.task.MarkFailed(c.elapsed)

			if !failed {
				failed = true
				waitSent = true

				if err := sender.Send(events.Wait()); err != nil {
					disconnected = true
				}
			}
		}

		if err := sender.Send(events.Status(c.task)); err != nil {
			disconnected = true
		}
	}

	for _, t := range tasks {
		if failed || disconnected {
			break
		}

		// Filtered tasks never occupy a slot and never consult the policy.
		if s.Filter != nil && !s.Filter.MatchString(t.Name) {
			t.MarkSkipped()

			if err := sender.Send(events.Status(t)); err != nil {
				disconnected = true
				break
			}

			continue
		}

		// At the cap: wait for whichever running task finishes first.
		if len(running) == limit {
			finish(<-done)

			if failed || disconnected {
				break
			}
		}

		// A sync point drains the whole running set before t may start.
		if len(running) > 0 && syncPoint(t, runningTasks(running), s.Policy) {
			logger.Debug("sync point, draining running set", "step", t.Name, "running", len(running))

			for len(running) > 0 {
				finish(<-done)
			}

			if failed || disconnected {
				break
			}
		}

		start := time.Now()
		t.MarkRunning(start)

		if err := sender.Send(events.Status(t)); err != nil {
			disconnected = true
			t.MarkFailed(0)
			failed = true

			break
		}

		running[t.N] = t

		// Each supervisor gets its own clone of the producer handle.
		sup := sender.Clone()

		go func(t *step.Task, sup *events.Sender) {
			defer sup.Close()

			outcome, err := launch(ctx, t, s.Env, sup)
			done <- completion{task: t, outcome: outcome, err: err, elapsed: time.Since(start)}
		}(t, sup)
	}

	// Drain in-flight tasks; a failure here still marks the run failed but
	// cannot un-launch anything.
	for len(running) > 0 {
		finish(<-done)
	}

	if err := merr.ErrorOrNil(); err != nil {
		logger.Error("supervisor errors", "error", err)
	}

	if s.WaitAtEnd && !waitSent && !disconnected {
		_ = sender.Send(events.Wait())
	}

	// A vanished consumer aborts the run with tasks still pending; that is
	// never a success, whichever send happened to fail first.
	return !failed && !disconnected
}

// runningTasks flattens the running set for the sync-point check.
func runningTasks(running map[int]*step.Task) []*step.Task {
	out := make([]*step.Task, 0, len(running))
	for _, t := range running {
		out = append(out, t)
	}

	return out
}
