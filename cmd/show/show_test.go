// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package show

import (
	"regexp"
	"testing"

	"github.com/matt-FFFFFF/tickbox/internal/scheduler"
	"github.com/matt-FFFFFF/tickbox/internal/step"
	"github.com/stretchr/testify/assert"
)

func TestGroupLabel(t *testing.T) {
	ranges := []scheduler.IDRange{{Lo: 0, Hi: 2}}
	patterns := []*regexp.Regexp{regexp.MustCompile("^01-")}

	tests := []struct {
		name     string
		task     *step.Task
		ranges   []scheduler.IDRange
		patterns []*regexp.Regexp
		expected string
	}{
		{
			name:     "in range group",
			task:     &step.Task{ID: 1, Name: "01-a"},
			ranges:   ranges,
			expected: "0-2",
		},
		{
			name:     "outside range groups",
			task:     &step.Task{ID: 5, Name: "05-b"},
			ranges:   ranges,
			expected: barrierLabel,
		},
		{
			name:     "ranges take precedence over patterns",
			task:     &step.Task{ID: 1, Name: "01-a"},
			ranges:   ranges,
			patterns: patterns,
			expected: "0-2",
		},
		{
			name:     "pattern group",
			task:     &step.Task{ID: 1, Name: "01-a"},
			patterns: patterns,
			expected: "^01-",
		},
		{
			name:     "outside pattern groups",
			task:     &step.Task{ID: 2, Name: "02-b"},
			patterns: patterns,
			expected: barrierLabel,
		},
		{
			name:     "no policy",
			task:     &step.Task{ID: 1, Name: "01-a"},
			expected: "sequential",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, groupLabel(tt.task, tt.ranges, tt.patterns))
		})
	}
}
