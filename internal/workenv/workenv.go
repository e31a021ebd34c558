// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package workenv builds the environment injected into every spawned step.
// It is assembled once, before scheduling starts, and never mutated again.
package workenv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/tickbox/internal/ctxlog"
)

// Environment variable names injected into every step process.
const (
	// EnvTempDir is a scratch directory shared by all steps of one run.
	EnvTempDir = "TICKBOX_TEMPDIR"
	// EnvWorkDir is the resolved absolute working directory of the run.
	EnvWorkDir = "TICKBOX_CWD"
	// EnvBranch is the current VCS branch, set only when the working
	// directory is part of a git repository.
	EnvBranch = "TICKBOX_BRANCH"
)

var (
	// ErrResolveWorkDir is returned when the working directory cannot be resolved.
	ErrResolveWorkDir = errors.New("failed to resolve working directory")
	// ErrTempDir is returned when the scratch directory cannot be created.
	ErrTempDir = errors.New("failed to create temp directory")
	// ErrGitBranch is returned when the branch lookup fails inside a repository.
	ErrGitBranch = errors.New("failed to determine git branch")
)

// Var is one environment entry. The set passed to steps is ordered:
// built-ins first, then user-defined entries in configuration order.
type Var struct {
	Name  string
	Value string
}

// gitBranch is a package variable so tests can stub the git invocation.
var gitBranch = func(ctx context.Context, cwd string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "branch", "--show-current")
	cmd.Dir = cwd

	out, err := cmd.Output()
	if err != nil {
		return "", errors.Join(ErrGitBranch, err)
	}

	return strings.TrimSpace(string(out)), nil
}

// Environment is the immutable variable set for one run, plus the cleanup
// for its scratch directory.
type Environment struct {
	Vars    []Var
	WorkDir string
	TempDir string
}

// Build resolves cwd, creates the scratch directory and assembles the
// ordered variable set. The caller must call Cleanup when the run ends.
func Build(ctx context.Context, cwd string, extra []Var) (*Environment, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return nil, errors.Join(ErrResolveWorkDir, err)
	}

	if fi, err := os.Stat(abs); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrResolveWorkDir, abs)
	}

	tmp, err := os.MkdirTemp("", "tickbox-*")
	if err != nil {
		return nil, errors.Join(ErrTempDir, err)
	}

	vars := []Var{
		{Name: EnvTempDir, Value: tmp},
		{Name: EnvWorkDir, Value: abs},
	}

	if fi, err := os.Stat(filepath.Join(abs, ".git")); err == nil && fi.IsDir() {
		branch, err := gitBranch(ctx, abs)
		if err != nil {
			_ = os.RemoveAll(tmp)
			return nil, err
		}

		if branch != "" {
			vars = append(vars, Var{Name: EnvBranch, Value: branch})
		}
	}

	for _, v := range extra {
		ctxlog.Debug(ctx, "adding user environment variable", "name", v.Name)
		vars = append(vars, v)
	}

	return &Environment{
		Vars:    vars,
		WorkDir: abs,
		TempDir: tmp,
	}, nil
}

// Cleanup removes the scratch directory.
func (e *Environment) Cleanup() {
	_ = os.RemoveAll(e.TempDir)
}

// Apply appends the environment's variables to the inherited process
// environment in NAME=value form.
func (e *Environment) Apply(base []string) []string {
	out := make([]string, 0, len(base)+len(e.Vars))
	out = append(out, base...)

	for _, v := range e.Vars {
		out = append(out, v.Name+"="+v.Value)
	}

	return out
}
