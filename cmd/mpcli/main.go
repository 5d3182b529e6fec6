// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the mpcli command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/mpcli"
	"github.com/matt-FFFFFF/mpcli/cmd/mpcli/batch"
	"github.com/matt-FFFFFF/mpcli/cmd/mpcli/profile"
	"github.com/matt-FFFFFF/mpcli/cmd/mpcli/results"
	"github.com/matt-FFFFFF/mpcli/internal/ctxlog"
	"github.com/matt-FFFFFF/mpcli/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		batch.CliCmd,
		batch.ScriptCmd,
		results.ResultsCmd,
		profile.ProfileCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "mpcli",
	Description: `mpcli splits a list of inputs into groups and runs one worker process per group in parallel.
Every worker reuses a single session on the object server, so authentication happens once
however many inputs there are. Failed workers are retried up to --tries times.

Set MPCLI_LOG_LEVEL to DEBUG, INFO, WARN or ERROR to control logging.`,
	Usage:     "mpcli cli --groupsize 10 -- delete Image -- 1 2 3",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", mpcli.Version, mpcli.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")
}
