// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v3"
	"github.com/matt-FFFFFF/mpcli/internal/ctxlog"
	"github.com/matt-FFFFFF/mpcli/internal/progress"
)

var _ Runnable = (*RetryCommand)(nil)

var (
	// ErrRetriesExhausted is joined into the result error when every try failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrAttemptFailed describes a failed attempt that did not carry an error of its own.
	ErrAttemptFailed = errors.New("attempt failed")
)

// RetryCommand runs Command until it succeeds or Tries attempts have been made.
// Attempts are separated by a constant Delay. A successful attempt is never repeated.
type RetryCommand struct {
	*BaseCommand
	Command Runnable      // The command to retry
	Tries   int           // Maximum number of attempts, values below 1 mean 1
	Delay   time.Duration // Wait between attempts
}

// NewRetryCommand wraps cmd and makes the new RetryCommand its parent.
func NewRetryCommand(base *BaseCommand, cmd Runnable, tries int, delay time.Duration) *RetryCommand {
	if base == nil {
		base = NewBaseCommand(cmd.GetLabel(), "", nil)
	}

	r := &RetryCommand{
		BaseCommand: base,
		Command:     cmd,
		Tries:       tries,
		Delay:       delay,
	}
	cmd.SetParent(r)

	return r
}

// Run implements the Runnable interface for RetryCommand.
func (r *RetryCommand) Run(ctx context.Context) Results {
	tries := max(r.Tries, 1)
	path := CommandPath(r)
	logger := ctxlog.Logger(ctx).
		With("runnableType", "RetryCommand").
		With("label", FullLabel(r))

	r.Command.InheritEnv(r.Env)
	r.Command.SetProgressReporter(newPinnedReporter(r.reporter, path))

	reportEvent(r.reporter, path, progress.EventStarted, "started", progress.EventData{MaxAttempts: tries})

	var (
		last     *Result
		attempts int
	)

	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		attempts++
		logger.Debug("starting attempt", "attempt", attempts, "tries", tries)

		results := r.Command.Run(ctx)
		if len(results) > 0 {
			last = results[0]
		}

		if len(results) > 0 && !results.HasError() {
			return nil
		}

		err := ErrAttemptFailed
		if last != nil && last.Error != nil {
			err = last.Error
		} else if last != nil {
			err = fmt.Errorf("%w: exit code %d", ErrAttemptFailed, last.ExitCode)
		}

		if ctx.Err() != nil || attempts >= tries {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, next time.Duration) {
		logger.Debug("attempt failed, retrying", "attempt", attempts, "tries", tries, "wait", next, "error", err)
		reportEvent(r.reporter, path, progress.EventRetrying,
			fmt.Sprintf("attempt %d/%d failed", attempts, tries),
			progress.EventData{
				Error:       err,
				ExitCode:    exitCodeOf(last),
				Attempt:     attempts,
				MaxAttempts: tries,
			})
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(r.Delay), ctx)

	err := backoff.RetryNotify(op, b, notify)

	res := &Result{ExitCode: -1, Status: ResultStatusError}
	if last != nil {
		res = cloneResult(last)
	}

	res.Label = r.GetLabel()
	res.Attempts = attempts

	if err != nil {
		res.Status = ResultStatusError
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}

		switch {
		case ctx.Err() != nil:
			if !errors.Is(res.Error, ctx.Err()) {
				res.Error = errors.Join(res.Error, ctx.Err())
			}
		case attempts >= tries:
			res.Error = errors.Join(res.Error, ErrRetriesExhausted)
		default:
			// The context deadline falls before the next attempt would start.
			res.Error = errors.Join(res.Error, ErrTimeoutExceeded, context.DeadlineExceeded)
		}

		logger.Debug("giving up", "attempts", attempts, "error", res.Error)
	}

	reportResult(r.reporter, path, res, tries)

	return Results{res}
}

func exitCodeOf(r *Result) int {
	if r == nil {
		return -1
	}

	return r.ExitCode
}

func cloneResult(r *Result) *Result {
	c := *r
	c.Args = slices.Clone(r.Args)
	c.Children = slices.Clone(r.Children)

	return &c
}
