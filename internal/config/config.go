// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the optional tickbox YAML configuration file. The
// file contributes user environment variables and the ordered name-pattern
// sync groups consumed by the scheduler.
package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/tickbox/internal/workenv"
	"github.com/spf13/afero"
)

var (
	// ErrReadFile is returned when the configuration file cannot be read.
	ErrReadFile = errors.New("failed to read config file")
	// ErrParse is returned when the configuration is not valid YAML or
	// contains unknown keys.
	ErrParse = errors.New("failed to parse config file")
	// ErrBadPattern is returned when a sync pattern is not a valid regular expression.
	ErrBadPattern = errors.New("invalid sync pattern")
	// ErrBadEnvValue is returned when an env entry's value is not a scalar.
	ErrBadEnvValue = errors.New("env values must be strings")
)

// file mirrors the YAML schema. Env is ordered; entry order is the order
// variables are injected into step processes.
type file struct {
	Env          yaml.MapSlice `yaml:"env"`
	SyncPatterns []string      `yaml:"sync_patterns"`
}

// Config is the validated configuration.
type Config struct {
	// Env holds user-defined variables in file order.
	Env []workenv.Var
	// SyncPatterns defines the name-pattern parallel groups, tested in
	// order with first match winning.
	SyncPatterns []*regexp.Regexp
}

// Load reads and validates the configuration at path.
func Load(fsys afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Join(ErrReadFile, err)
	}

	var f file
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict(), yaml.UseOrderedMap()); err != nil {
		return nil, errors.Join(ErrParse, err)
	}

	cfg := &Config{
		Env:          make([]workenv.Var, 0, len(f.Env)),
		SyncPatterns: make([]*regexp.Regexp, 0, len(f.SyncPatterns)),
	}

	for _, item := range f.Env {
		name := fmt.Sprintf("%v", item.Key)

		value, ok := item.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrBadEnvValue, name)
		}

		cfg.Env = append(cfg.Env, workenv.Var{Name: name, Value: value})
	}

	for _, p := range f.SyncPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrBadPattern, p, err)
		}

		cfg.SyncPatterns = append(cfg.SyncPatterns, re)
	}

	return cfg, nil
}
