// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package show

import (
	"context"
	"fmt"
	"regexp"
	"text/tabwriter"

	"github.com/matt-FFFFFF/tickbox/internal/config"
	"github.com/matt-FFFFFF/tickbox/internal/scheduler"
	"github.com/matt-FFFFFF/tickbox/internal/step"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	dirFlag    = "dir"
	rangesFlag = "ranges"
	configFlag = "config"
)

const barrierLabel = "(barrier)"

// ShowCmd resolves the step order and sync grouping without running anything.
var ShowCmd = &cli.Command{
	Name:        "show",
	Description: "Show the resolved step order and parallel grouping without running anything.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     dirFlag,
			Aliases:  []string{"d"},
			Usage:    "Directory containing the numbered step scripts",
			Required: true,
		},
		&cli.StringFlag{
			Name:  rangesFlag,
			Usage: "Parallel groups as inclusive id ranges, e.g. \"0-2,5-7\" (overrides sync_patterns)",
		},
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   "Path to a tickbox YAML configuration file",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	fsys := afero.NewOsFs()

	var patterns []*regexp.Regexp

	if path := cmd.String(configFlag); path != "" {
		cfg, err := config.Load(fsys, path)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		patterns = cfg.SyncPatterns
	}

	var ranges []scheduler.IDRange

	if expr := cmd.String(rangesFlag); expr != "" {
		parsed, err := scheduler.ParseRanges(expr)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		ranges = parsed
	}

	tasks, err := step.Load(ctx, fsys, cmd.String(dirFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	w := tabwriter.NewWriter(cmd.Writer, 2, 4, 2, ' ', 0)

	fmt.Fprintln(w, "#\tID\tNAME\tGROUP") //nolint:errcheck

	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", t.N, t.ID, t.Name, groupLabel(t, ranges, patterns)) //nolint:errcheck
	}

	return w.Flush() //nolint:wrapcheck
}

// groupLabel names the parallel group a task belongs to. Explicit ranges
// take precedence over name patterns; a task in no group is a barrier.
func groupLabel(t *step.Task, ranges []scheduler.IDRange, patterns []*regexp.Regexp) string {
	if len(ranges) > 0 {
		for _, r := range ranges {
			if r.Contains(t.ID) {
				return fmt.Sprintf("%d-%d", r.Lo, r.Hi)
			}
		}

		return barrierLabel
	}

	if len(patterns) > 0 {
		for _, p := range patterns {
			if p.MatchString(t.Name) {
				return p.String()
			}
		}

		return barrierLabel
	}

	return "sequential"
}
