// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a structured slog logger through a context and
// renders it with a human-friendly handler. The log level is read once at
// startup from the TICKBOX_LOG_LEVEL environment variable.
package ctxlog
