// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package lineread

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func collect(r *Reader) []string {
	var lines []string
	for line := range r.Lines() {
		lines = append(lines, line)
	}

	return lines
}

func TestReader_Lines(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := New(strings.NewReader("one\ntwo\nthree\n"))

	assert.Equal(t, []string{"one", "two", "three"}, collect(r))
	require.NoError(t, r.Err())
}

func TestReader_NoTrailingNewline(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := New(strings.NewReader("one\ntwo"))

	assert.Equal(t, []string{"one", "two"}, collect(r))
	require.NoError(t, r.Err())
}

func TestReader_EmptyInput(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := New(strings.NewReader(""))

	assert.Empty(t, collect(r))
	require.NoError(t, r.Err())
}

func TestReader_LineTooLong(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := New(strings.NewReader(strings.Repeat("x", maxLineSize+1)))

	collect(r)
	require.Error(t, r.Err())
}
