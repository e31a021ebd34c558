// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package supervisor owns the lifecycle of one step process. It multiplexes
// the process's two output streams and its exit into the single ordered
// event stream consumed by the display.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/matt-FFFFFF/tickbox/internal/ctxlog"
	"github.com/matt-FFFFFF/tickbox/internal/events"
	"github.com/matt-FFFFFF/tickbox/internal/lineread"
	"github.com/matt-FFFFFF/tickbox/internal/step"
	"github.com/matt-FFFFFF/tickbox/internal/workenv"
)

// shell is the interpreter every step file is launched through.
const shell = "bash"

var (
	// ErrFailedToCreatePipe is returned when an output pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrCouldNotStartProcess is returned when the step executable could not be launched.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrWaitFailed is returned when the process handle could not be reaped.
	ErrWaitFailed = errors.New("failed to wait for process")
)

// OutcomeKind discriminates how a step process finished.
type OutcomeKind int

const (
	// OutcomeSuccess means the process exited with code zero.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeNonZeroExit means the process exited with a non-zero code.
	OutcomeNonZeroExit
	// OutcomeSignaled means the process was terminated by a signal.
	OutcomeSignaled
)

// Outcome is the terminal result of a supervised process. ExitCode is valid
// for OutcomeNonZeroExit, Signal for OutcomeSignaled.
type Outcome struct {
	Kind     OutcomeKind
	ExitCode int
	Signal   syscall.Signal
}

// Success reports whether the process succeeded.
func (o Outcome) Success() bool {
	return o.Kind == OutcomeSuccess
}

// Summary renders the one-line result emitted after a process finishes.
func (o Outcome) Summary(name string) string {
	switch o.Kind {
	case OutcomeSignaled:
		return fmt.Sprintf("%s terminated by signal: %s", name, o.Signal.String())
	case OutcomeNonZeroExit:
		return fmt.Sprintf("%s exited with code %d", name, o.ExitCode)
	default:
		return fmt.Sprintf("%s exited with code 0", name)
	}
}

// Execute runs one task to completion, streaming its combined output as
// AddLine events in the order lines complete across both streams.
//
// If any send fails because the consumer disconnected, the subprocess is
// killed and Execute returns immediately without waiting for remaining
// output. Other than that there is no cancellation: a hung process blocks
// until it exits.
func Execute(ctx context.Context, t *step.Task, env *workenv.Environment, sender *events.Sender) (Outcome, error) {
	logger := ctxlog.Logger(ctx).With("step", t.Name)

	if err := sender.Send(events.AddLine("Running " + t.Name)); err != nil {
		return Outcome{}, err
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return Outcome{}, errors.Join(ErrFailedToCreatePipe, err)
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(rOut, wOut)
		return Outcome{}, errors.Join(ErrFailedToCreatePipe, err)
	}

	cmd := exec.Command(shell, "-c", t.Path)
	cmd.Dir = env.WorkDir
	cmd.Env = env.Apply(os.Environ())
	cmd.Stdout = wOut
	cmd.Stderr = wErr

	if err := cmd.Start(); err != nil {
		closeAll(rOut, wOut, rErr, wErr)
		logger.Debug("spawn failed", "error", err)
		_ = sender.Send(events.AddLine(fmt.Sprintf("Failed to start %s: %v", t.Name, err)))

		return Outcome{}, errors.Join(ErrCouldNotStartProcess, err)
	}

	logger.Debug("process started", "pid", cmd.Process.Pid)

	// The child holds its own copies of the write ends; closing ours lets
	// the readers observe EOF when the child exits.
	closeAll(wOut, wErr)
	defer closeAll(rOut, rErr)

	stdout := lineread.New(rOut)
	stderr := lineread.New(rErr)

	waitCh := make(chan error, 1)

	go func() {
		waitCh <- cmd.Wait()
	}()

	outLines := stdout.Lines()
	errLines := stderr.Lines()

	var (
		waitErr error
		exited  bool
	)

	// abort kills the subprocess after a failed send and returns without
	// waiting for remaining output. The still-open line channels are drained
	// in the background so their pumps can finish once the child dies.
	abort := func(sendErr error) (Outcome, error) {
		killPs(ctx, cmd.Process)

		for _, ch := range []<-chan string{outLines, errLines} {
			if ch == nil {
				continue
			}

			go func(c <-chan string) {
				for range c {
				}
			}(ch)
		}

		return Outcome{}, sendErr
	}

	// Race line arrival on either stream against process exit; first ready
	// wins each iteration. A stream leaves the race at EOF. After exit we
	// keep racing until both streams close, so buffered output lands ahead
	// of the summary line.
	for outLines != nil || errLines != nil || !exited {
		select {
		case line, ok := <-errLines:
			if !ok {
				if err := stderr.Err(); err != nil {
					_ = sender.Send(events.AddLine(fmt.Sprintf("Error reading stderr of %s: %v", t.Name, err)))
				}

				errLines = nil

				continue
			}

			if err := sender.Send(events.AddLine(line)); err != nil {
				return abort(err)
			}

		case line, ok := <-outLines:
			if !ok {
				if err := stdout.Err(); err != nil {
					_ = sender.Send(events.AddLine(fmt.Sprintf("Error reading stdout of %s: %v", t.Name, err)))
				}

				outLines = nil

				continue
			}

			if err := sender.Send(events.AddLine(line)); err != nil {
				return abort(err)
			}

		case err := <-waitCh:
			waitErr = err
			exited = true
			waitCh = nil
		}
	}

	outcome, err := outcomeFromWait(waitErr)
	if err != nil {
		logger.Debug("wait failed", "error", err)
		_ = sender.Send(events.AddLine(fmt.Sprintf("Got an error running %s: %v", t.Name, err)))

		return Outcome{}, err
	}

	logger.Debug("process finished", "outcome", outcome.Summary(t.Name))

	if err := sender.Send(events.AddLine("")); err != nil {
		return outcome, err
	}

	if err := sender.Send(events.AddLine(outcome.Summary(t.Name))); err != nil {
		return outcome, err
	}

	return outcome, nil
}

// outcomeFromWait converts the result of Process.Wait into an Outcome.
func outcomeFromWait(err error) (Outcome, error) {
	if err == nil {
		return Outcome{Kind: OutcomeSuccess}, nil
	}

	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return Outcome{}, errors.Join(ErrWaitFailed, err)
	}

	if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return Outcome{Kind: OutcomeSignaled, Signal: ws.Signal()}, nil
	}

	return Outcome{Kind: OutcomeNonZeroExit, ExitCode: ee.ExitCode()}, nil
}

func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
