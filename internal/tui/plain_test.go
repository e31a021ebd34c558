// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/tickbox/internal/events"
	"github.com/matt-FFFFFF/tickbox/internal/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRunPlain(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := events.New(16)
	sender := bus.Sender()

	require.NoError(t, sender.Send(statusEvent(0, "01-build", step.StateRunning)))
	require.NoError(t, sender.Send(events.AddLine("building...")))
	require.NoError(t, sender.Send(statusEvent(0, "01-build", step.StateComplete)))
	sender.Close()

	var out bytes.Buffer

	require.NoError(t, RunPlain(bus, &out, strings.NewReader("")))

	got := out.String()
	assert.Contains(t, got, "building...")
	assert.Contains(t, got, glyphChecked+" 01-build")
	assert.NotContains(t, got, "Press Enter")
}

func TestRunPlain_Wait(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := events.New(16)
	sender := bus.Sender()

	require.NoError(t, sender.Send(statusEvent(0, "01-build", step.StateFailed)))
	require.NoError(t, sender.Send(events.Wait()))
	sender.Close()

	var out bytes.Buffer

	require.NoError(t, RunPlain(bus, &out, strings.NewReader("\n")))

	got := out.String()
	assert.Contains(t, got, glyphFailed+" 01-build")
	assert.Contains(t, got, "Press Enter")
}
