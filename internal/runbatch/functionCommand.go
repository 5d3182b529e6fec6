// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/mpcli/internal/ctxlog"
)

var _ Runnable = (*FunctionCommand)(nil)

// ErrFunctionCmdPanic is the error returned when a function command panics.
// It is constructed with the value that caused the panic.
type ErrFunctionCmdPanic struct {
	v any
}

// Error implements the error interface for ErrFunctionCmdPanic.
func (e *ErrFunctionCmdPanic) Error() string {
	const prefix = "function command panic:"

	switch x := e.v.(type) {
	case string:
		return fmt.Sprintf("%s %s", prefix, x)
	case error:
		return fmt.Sprintf("%s %s", prefix, x.Error())
	default:
		return fmt.Sprintf("%s %v", prefix, x)
	}
}

// Unwrap returns the panic value if it was an error.
func (e *ErrFunctionCmdPanic) Unwrap() error {
	if err, ok := e.v.(error); ok {
		return err
	}

	return nil
}

// NewErrFunctionCmdPanic creates a new ErrFunctionCmdPanic with the given value.
func NewErrFunctionCmdPanic(v any) error {
	return &ErrFunctionCmdPanic{v: v}
}

// FunctionCommand is a command that runs a function. It implements the Runnable interface.
type FunctionCommand struct {
	*BaseCommand
	Func FunctionCommandFunc // The function to run
	Args []string            // Recorded in the result, not passed to Func
}

// FunctionCommandFunc is the type of the function that can be run by FunctionCommand.
type FunctionCommandFunc func(ctx context.Context) FunctionCommandReturn

// FunctionCommandReturn is the return type of the function run by FunctionCommand.
type FunctionCommandReturn struct {
	StdOut []byte // Output to record in the result
	Err    error  // Any error that occurred during execution
}

// NewFunctionCommand creates a FunctionCommand.
func NewFunctionCommand(base *BaseCommand, fn FunctionCommandFunc) *FunctionCommand {
	if base == nil {
		base = NewBaseCommand("", "", nil)
	}

	return &FunctionCommand{
		BaseCommand: base,
		Func:        fn,
	}
}

// Run implements the Runnable interface for FunctionCommand.
func (f *FunctionCommand) Run(ctx context.Context) Results {
	logger := ctxlog.Logger(ctx).
		With("runnableType", "FunctionCommand").
		With("label", FullLabel(f))

	res := &Result{
		Label:  f.GetLabel(),
		Args:   f.Args,
		Status: ResultStatusSuccess,
	}

	if f.Func == nil {
		logger.Debug("no function to run, returning success")
		return Results{res}
	}

	// Buffered so the goroutine can always finish, even after the context is done.
	frCh := make(chan FunctionCommandReturn, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("function command panicked", "panic", r)
				frCh <- FunctionCommandReturn{Err: NewErrFunctionCmdPanic(r)}
			}
		}()

		frCh <- f.Func(ctx)
	}()

	select {
	case fr := <-frCh:
		res.StdOut = fr.StdOut

		if fr.Err != nil {
			logger.Debug("function command failed", "error", fr.Err)

			res.ExitCode = -1
			res.Error = fr.Err
			res.Status = ResultStatusError
		}

	case <-ctx.Done():
		logger.Debug("function command context cancelled", "error", ctx.Err())

		res.ExitCode = -1
		res.Error = ctx.Err()
		res.Status = ResultStatusError
	}

	return Results{res}
}
