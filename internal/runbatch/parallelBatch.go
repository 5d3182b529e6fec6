// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"

	"github.com/matt-FFFFFF/mpcli/internal/ctxlog"
	"github.com/matt-FFFFFF/mpcli/internal/progress"
	"golang.org/x/sync/errgroup"
)

var _ Runnable = (*ParallelBatch)(nil)

// ParallelBatch represents a collection of commands, which can be run in parallel.
type ParallelBatch struct {
	*BaseCommand
	Commands []Runnable // The commands or nested batches to run
	Limit    int        // Maximum number of commands running at once, 0 means no limit
}

// NewParallelBatch creates a ParallelBatch and makes it the parent of each command.
func NewParallelBatch(base *BaseCommand, limit int, cmds ...Runnable) *ParallelBatch {
	if base == nil {
		base = NewBaseCommand("", "", nil)
	}

	b := &ParallelBatch{
		BaseCommand: base,
		Commands:    cmds,
		Limit:       limit,
	}

	for _, c := range cmds {
		c.SetParent(b)
	}

	return b
}

// Run implements the Runnable interface for ParallelBatch.
// Child results are returned in the order of Commands, whatever order they complete in.
func (b *ParallelBatch) Run(ctx context.Context) Results {
	path := CommandPath(b)
	logger := ctxlog.Logger(ctx).
		With("label", FullLabel(b)).
		With("runnableType", "ParallelBatch")

	reportEvent(b.reporter, path, progress.EventStarted, "starting parallel batch", progress.EventData{Total: len(b.Commands)})

	for _, cmd := range b.Commands {
		cmd.InheritEnv(b.Env)

		if b.hasProgressReporter() {
			cmd.SetProgressReporter(b.reporter)
		}
	}

	logger.Debug("running commands", "count", len(b.Commands), "limit", b.Limit)

	children := make(Results, len(b.Commands))

	var g errgroup.Group
	if b.Limit > 0 {
		g.SetLimit(b.Limit)
	}

	for i, cmd := range b.Commands {
		g.Go(func() error {
			res := cmd.Run(ctx)
			if len(res) == 0 {
				res = Results{{Label: cmd.GetLabel(), Status: ResultStatusUnknown}}
			}

			children[i] = res[0]

			return nil
		})
	}

	_ = g.Wait()

	res := &Result{
		Label:    b.GetLabel(),
		Children: children,
		Status:   ResultStatusSuccess,
	}

	if children.HasError() {
		res.ExitCode = -1
		res.Error = ErrResultChildrenHasError
		res.Status = ResultStatusError
	}

	reportResult(b.reporter, path, res, 0)

	return Results{res}
}
