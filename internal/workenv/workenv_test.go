// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package workenv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func varNames(vars []Var) []string {
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}

	return names
}

func TestBuild_NoRepository(t *testing.T) {
	cwd := t.TempDir()

	env, err := Build(context.Background(), cwd, nil)
	require.NoError(t, err)
	defer env.Cleanup()

	assert.Equal(t, []string{EnvTempDir, EnvWorkDir}, varNames(env.Vars))
	assert.Equal(t, cwd, env.WorkDir)
	assert.DirExists(t, env.TempDir)
}

func TestBuild_WithRepository(t *testing.T) {
	stubs := gostub.Stub(&gitBranch, func(_ context.Context, _ string) (string, error) {
		return "feature/x", nil
	})
	defer stubs.Reset()

	cwd := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(cwd, ".git"), 0o755))

	env, err := Build(context.Background(), cwd, []Var{{Name: "USER_VAR", Value: "1"}})
	require.NoError(t, err)
	defer env.Cleanup()

	assert.Equal(t, []string{EnvTempDir, EnvWorkDir, EnvBranch, "USER_VAR"}, varNames(env.Vars))
	assert.Equal(t, "feature/x", env.Vars[2].Value)
}

func TestBuild_DetachedHead(t *testing.T) {
	stubs := gostub.Stub(&gitBranch, func(_ context.Context, _ string) (string, error) {
		return "", nil // detached HEAD prints nothing
	})
	defer stubs.Reset()

	cwd := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(cwd, ".git"), 0o755))

	env, err := Build(context.Background(), cwd, nil)
	require.NoError(t, err)
	defer env.Cleanup()

	assert.NotContains(t, varNames(env.Vars), EnvBranch)
}

func TestBuild_GitBranchError(t *testing.T) {
	stubs := gostub.Stub(&gitBranch, func(_ context.Context, _ string) (string, error) {
		return "", ErrGitBranch
	})
	defer stubs.Reset()

	cwd := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(cwd, ".git"), 0o755))

	_, err := Build(context.Background(), cwd, nil)
	require.ErrorIs(t, err, ErrGitBranch)
}

func TestBuild_BadWorkDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := Build(context.Background(), file, nil)
	require.ErrorIs(t, err, ErrResolveWorkDir)
}

func TestEnvironment_Cleanup(t *testing.T) {
	env, err := Build(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)

	env.Cleanup()

	_, statErr := os.Stat(env.TempDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnvironment_Apply(t *testing.T) {
	env := &Environment{
		Vars: []Var{
			{Name: "A", Value: "1"},
			{Name: "B", Value: "2"},
		},
	}

	got := env.Apply([]string{"PATH=/usr/bin"})
	assert.Equal(t, []string{"PATH=/usr/bin", "A=1", "B=2"}, got)
}
