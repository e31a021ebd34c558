// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"errors"
	"os"
	"regexp"

	"github.com/matt-FFFFFF/tickbox/internal/config"
	"github.com/matt-FFFFFF/tickbox/internal/ctxlog"
	"github.com/matt-FFFFFF/tickbox/internal/events"
	"github.com/matt-FFFFFF/tickbox/internal/scheduler"
	"github.com/matt-FFFFFF/tickbox/internal/step"
	"github.com/matt-FFFFFF/tickbox/internal/tui"
	"github.com/matt-FFFFFF/tickbox/internal/workenv"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	dirFlag         = "dir"
	cwdFlag         = "cwd"
	concurrencyFlag = "concurrency"
	rangesFlag      = "ranges"
	filterFlag      = "filter"
	configFlag      = "config"
	waitFlag        = "wait"
	noTuiFlag       = "no-tui"
)

// ErrBadFilter is returned when the name filter is not a valid regular expression.
var ErrBadFilter = errors.New("invalid filter pattern")

// RunCmd runs the numbered step scripts in a directory as one workflow.
var RunCmd = &cli.Command{
	Name:        "run",
	Description: "Run the numbered step scripts in a directory as one workflow.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     dirFlag,
			Aliases:  []string{"d"},
			Usage:    "Directory containing the numbered step scripts",
			Required: true,
		},
		&cli.StringFlag{
			Name:  cwdFlag,
			Usage: "Working directory for every step process",
			Value: ".",
		},
		&cli.IntFlag{
			Name:    concurrencyFlag,
			Aliases: []string{"j"},
			Usage:   "Maximum number of steps running at once",
			Value:   scheduler.DefaultConcurrency,
		},
		&cli.StringFlag{
			Name:  rangesFlag,
			Usage: "Parallel groups as inclusive id ranges, e.g. \"0-2,5-7\" (overrides sync_patterns)",
		},
		&cli.StringFlag{
			Name:  filterFlag,
			Usage: "Only run steps whose name matches this regular expression; the rest are skipped",
		},
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   "Path to a tickbox YAML configuration file",
		},
		&cli.BoolFlag{
			Name:  waitFlag,
			Usage: "Keep the display open at the end of the run even on success",
		},
		&cli.BoolFlag{
			Name:  noTuiFlag,
			Usage: "Use the plain line renderer instead of the full-screen display",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	fsys := afero.NewOsFs()

	cfg := &config.Config{}

	if path := cmd.String(configFlag); path != "" {
		loaded, err := config.Load(fsys, path)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		cfg = loaded
	}

	tasks, err := step.Load(ctx, fsys, cmd.String(dirFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	policy, err := buildPolicy(cmd.String(rangesFlag), cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var filter *regexp.Regexp

	if f := cmd.String(filterFlag); f != "" {
		filter, err = regexp.Compile(f)
		if err != nil {
			return cli.Exit(errors.Join(ErrBadFilter, err).Error(), 1)
		}
	}

	env, err := workenv.Build(ctx, cmd.String(cwdFlag), cfg.Env)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer env.Cleanup()

	sched := &scheduler.Scheduler{
		Concurrency: cmd.Int(concurrencyFlag),
		Policy:      policy,
		Filter:      filter,
		Env:         env,
		WaitAtEnd:   cmd.Bool(waitFlag),
	}

	plain := cmd.Bool(noTuiFlag) || !term.IsTerminal(int(os.Stdout.Fd()))

	// While the TUI owns the terminal, log lines are buffered and flushed
	// after it exits.
	var logBuf bytes.Buffer

	runCtx := ctx
	if !plain {
		runCtx = ctxlog.NewForDisplay(ctx, &logBuf)
	}

	bus := events.New(events.DefaultCapacity)
	sender := bus.Sender()

	okCh := make(chan bool, 1)

	go func() {
		defer sender.Close()

		okCh <- sched.Run(runCtx, tasks, sender)
	}()

	if plain {
		if err := tui.RunPlain(bus, cmd.Writer, os.Stdin); err != nil {
			ctxlog.Error(runCtx, "display failed", "error", err)
		}
	} else {
		if err := tui.NewRunner(runCtx).Run(bus); err != nil {
			ctxlog.Error(runCtx, "display failed", "error", err)
		}
	}

	ok := <-okCh

	if logBuf.Len() > 0 {
		_, _ = logBuf.WriteTo(cmd.ErrWriter)
	}

	if !ok {
		return cli.Exit("workflow failed", 1)
	}

	return nil
}

// buildPolicy resolves the sync policy: explicit ranges beat configured
// name patterns, and neither means sequential execution.
func buildPolicy(rangeExpr string, cfg *config.Config) (scheduler.SyncPolicy, error) {
	if rangeExpr != "" {
		ranges, err := scheduler.ParseRanges(rangeExpr)
		if err != nil {
			return scheduler.Sequential(), err
		}

		return scheduler.Ranges(ranges), nil
	}

	if len(cfg.SyncPatterns) > 0 {
		return scheduler.NamePatterns(cfg.SyncPatterns), nil
	}

	return scheduler.Sequential(), nil
}
