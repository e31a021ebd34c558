// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"os"

	"github.com/matt-FFFFFF/tickbox/cmd/run"
	"github.com/matt-FFFFFF/tickbox/cmd/show"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		show.ShowCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "tickbox",
	Description: `Tickbox runs the numbered step scripts in a directory as one workflow,
showing a live checklist and the combined output of every step. Steps run
sequentially by default; inclusive id ranges or name patterns declare groups
that may run in parallel, and the first failure stops new steps from starting
while in-flight ones drain.`,
	Usage:     "tickbox run --dir ./steps",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}
