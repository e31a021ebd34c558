// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui renders the live workflow display: a checklist of steps and
// the combined output of their processes, driven entirely by the event
// bus. A plain line-oriented renderer is provided for non-interactive use.
package tui
