// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/matt-FFFFFF/tickbox/internal/workenv"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "tickbox.yaml", []byte(content), 0o644))

	return fsys
}

func TestLoad_Valid(t *testing.T) {
	fsys := writeConfig(t, `
env:
  GOFLAGS: "-count=1"
  CGO_ENABLED: "0"
  APP_ENV: staging
sync_patterns:
  - "^01-"
  - "^02-"
`)

	cfg, err := Load(fsys, "tickbox.yaml")
	require.NoError(t, err)

	// Entry order must survive YAML decoding.
	assert.Equal(t, []workenv.Var{
		{Name: "GOFLAGS", Value: "-count=1"},
		{Name: "CGO_ENABLED", Value: "0"},
		{Name: "APP_ENV", Value: "staging"},
	}, cfg.Env)

	require.Len(t, cfg.SyncPatterns, 2)
	assert.True(t, cfg.SyncPatterns[0].MatchString("01-build"))
	assert.False(t, cfg.SyncPatterns[0].MatchString("02-test"))
}

func TestLoad_Empty(t *testing.T) {
	fsys := writeConfig(t, "env:\nsync_patterns:\n")

	cfg, err := Load(fsys, "tickbox.yaml")
	require.NoError(t, err)
	assert.Empty(t, cfg.Env)
	assert.Empty(t, cfg.SyncPatterns)
}

func TestLoad_MissingFile(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := Load(fsys, "nowhere.yaml")
	require.ErrorIs(t, err, ErrReadFile)
}

func TestLoad_UnknownKey(t *testing.T) {
	fsys := writeConfig(t, "steps: 5\n")

	_, err := Load(fsys, "tickbox.yaml")
	require.ErrorIs(t, err, ErrParse)
}

func TestLoad_BadPattern(t *testing.T) {
	fsys := writeConfig(t, `
sync_patterns:
  - "("
`)

	_, err := Load(fsys, "tickbox.yaml")
	require.ErrorIs(t, err, ErrBadPattern)
}

func TestLoad_NonScalarEnvValue(t *testing.T) {
	fsys := writeConfig(t, `
env:
  NESTED:
    a: b
`)

	_, err := Load(fsys, "tickbox.yaml")
	require.ErrorIs(t, err, ErrBadEnvValue)
}
