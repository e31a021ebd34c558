// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package step

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/tickbox/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrReadDir is returned when the step directory cannot be read.
	ErrReadDir = errors.New("failed to read step directory")
	// ErrDuplicateID is returned when two step files share the same numeric prefix.
	ErrDuplicateID = errors.New("duplicate step id")
	// ErrNoSteps is returned when the directory contains no runnable steps.
	ErrNoSteps = errors.New("no steps found in directory")
)

// Load scans dir for step files and returns them ordered by ascending id,
// with N assigned 0..len-1 in that order.
//
// A step file's id is its leading decimal filename prefix (e.g. "10-build"
// has id 10). Dotfiles, editor backups ("~" suffix) and subdirectories are
// ignored, as are files without a numeric prefix. Ids must be unique.
func Load(ctx context.Context, fsys afero.Fs, dir string) ([]*Task, error) {
	logger := ctxlog.Logger(ctx).With("dir", dir)

	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Join(ErrReadDir, err)
	}

	tasks := make([]*Task, 0, len(entries))
	seen := make(map[int]string, len(entries))

	for _, entry := range entries {
		name := entry.Name()

		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
			continue
		}

		id, ok := parseID(name)
		if !ok {
			logger.Debug("ignoring file without numeric prefix", "name", name)
			continue
		}

		if other, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w %d: %s and %s", ErrDuplicateID, id, other, name)
		}

		seen[id] = name

		tasks = append(tasks, &Task{
			ID:   id,
			Name: name,
			Path: filepath.Join(dir, name),
		})
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSteps, dir)
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	for n, t := range tasks {
		t.N = n
	}

	logger.Debug("loaded steps", "count", len(tasks))

	return tasks, nil
}

// parseID extracts the leading decimal prefix of a step filename.
func parseID(name string) (int, bool) {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}

	if i == 0 {
		return 0, false
	}

	id, err := strconv.Atoi(name[:i])
	if err != nil {
		return 0, false
	}

	return id, true
}
