// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/mpcli/internal/cmdline"
	"github.com/matt-FFFFFF/mpcli/internal/ctxlog"
	"github.com/matt-FFFFFF/mpcli/internal/partition"
	"github.com/matt-FFFFFF/mpcli/internal/progress"
	"github.com/matt-FFFFFF/mpcli/internal/runbatch"
	"github.com/matt-FFFFFF/mpcli/internal/session"
)

const (
	scriptGetCommand     = "get"
	scriptProcessCommand = "process"
)

var (
	// ErrGroupFailed is returned for every group whose worker failed after all its tries.
	ErrGroupFailed = errors.New("group failed")
	// ErrScriptGet is returned when the script could not list its inputs.
	ErrScriptGet = errors.New("script get failed")
	// ErrNoClient is returned when the Dispatcher has no session client.
	ErrNoClient = errors.New("no session client configured")
)

// Dispatcher runs requests against a session client.
type Dispatcher struct {
	Client session.Client
}

// New creates a Dispatcher.
func New(client session.Client) *Dispatcher {
	return &Dispatcher{Client: client}
}

// Run logs in, runs every group and closes the session.
//
// The returned results hold one batch result whose children are the groups in input order.
// The error aggregates every failed group with go-multierror and is nil when all groups succeeded.
// When login fails no worker is started and the error wraps session.ErrLogin.
func (d *Dispatcher) Run(ctx context.Context, req Request, reporter progress.Reporter) (runbatch.Results, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if d.Client == nil {
		return nil, ErrNoClient
	}

	ctx = ctxlog.With(ctx, "runID", uuid.NewString(), "mode", string(req.Mode))
	logger := ctxlog.Logger(ctx)

	sess, err := d.Client.Login(ctx, req.Credentials)
	if err != nil {
		if !errors.Is(err, session.ErrLogin) {
			err = errors.Join(session.ErrLogin, err)
		}

		return nil, err
	}

	defer func() {
		// The session is closed even when the run was cancelled.
		closeCtx := context.WithoutCancel(ctx)
		if err := d.Client.Close(closeCtx, sess, req.Detach || sess.Joined); err != nil {
			logger.Warn("failed to close session", "error", err)
		}
	}()

	inputs := req.Inputs
	if req.Mode == ModeScript && len(inputs) == 0 {
		if inputs, err = d.scriptInputs(ctx, req, sess); err != nil {
			return nil, err
		}
	}

	groups, err := partition.Split(inputs, req.GroupSize)
	if err != nil {
		return nil, errors.Join(ErrInvalidRequest, err)
	}

	threads := req.Threads
	if threads < 1 {
		threads = runtime.NumCPU()
	}

	logger.Info("dispatching",
		"inputs", len(inputs),
		"groups", len(groups),
		"groupSize", req.GroupSize,
		"threads", threads,
		"tries", max(req.Tries, 1),
		"dryRun", req.DryRun)

	workers := make([]runbatch.Runnable, 0, len(groups))
	for i, group := range groups {
		workers = append(workers, d.worker(req, sess, i, len(groups), group))
	}

	batch := runbatch.NewParallelBatch(runbatch.NewBaseCommand(batchLabel(req), "", sess.Env()), threads, workers...)
	if reporter != nil {
		batch.SetProgressReporter(reporter)
	}

	results := batch.Run(ctx)

	var merr *multierror.Error

	for _, r := range results[0].Children {
		if !r.Failed() {
			continue
		}

		cause := r.Error
		if cause == nil {
			cause = fmt.Errorf("exit code %d", r.ExitCode) //nolint:err113
		}

		merr = multierror.Append(merr, fmt.Errorf("%w: %s: %w", ErrGroupFailed, r.Label, cause))
	}

	if err := merr.ErrorOrNil(); err != nil {
		logger.Error("dispatch finished with failed groups", "failed", merr.Len(), "groups", len(groups))
		return results, err
	}

	logger.Info("dispatch finished", "groups", len(groups))

	return results, nil
}

// worker builds the retried command for one group.
func (d *Dispatcher) worker(req Request, sess *session.Session, i, n int, group []string) runbatch.Runnable {
	exe, args := commandLine(req, sess, group)
	base := runbatch.NewBaseCommand(filepath.Base(exe), "", nil)

	var cmd runbatch.Runnable

	if req.DryRun {
		line := strings.Join(slices.Concat([]string{exe}, args), " ")
		fc := runbatch.NewFunctionCommand(base, func(context.Context) runbatch.FunctionCommandReturn {
			return runbatch.FunctionCommandReturn{StdOut: []byte(line + "\n")}
		})
		fc.Args = slices.Concat([]string{exe}, args)
		cmd = fc
	} else {
		oc := runbatch.NewOSCommand(base, exe, args)
		oc.SecretArgs = secrets(req)
		cmd = oc
	}

	label := fmt.Sprintf("group %d/%d", i+1, n)

	return runbatch.NewRetryCommand(runbatch.NewBaseCommand(label, "", nil), cmd, req.Tries, req.RetryDelay)
}

// commandLine returns the executable and arguments for one group.
func commandLine(req Request, sess *session.Session, group []string) (string, []string) {
	if req.Mode == ModeScript {
		return req.Script, slices.Concat([]string{scriptProcessCommand}, req.Common, []string{cmdline.Separator}, group)
	}

	exe := req.ClientPath
	if exe == "" {
		exe = session.DefaultClientPath
	}

	var login []string
	if req.Login {
		login = sess.LoginArgs()
	}

	return exe, slices.Concat(req.Common, login, group)
}

// scriptInputs asks the script for its inputs.
func (d *Dispatcher) scriptInputs(ctx context.Context, req Request, sess *session.Session) ([]string, error) {
	ctxlog.Info(ctx, "no inputs given, asking script", "script", req.Script)

	cmd := runbatch.NewOSCommand(
		runbatch.NewBaseCommand(filepath.Base(req.Script)+" "+scriptGetCommand, "", sess.Env()),
		req.Script,
		slices.Concat([]string{scriptGetCommand}, req.Common),
	)
	cmd.SecretArgs = secrets(req)

	res := cmd.Run(ctx)[0]
	if res.Failed() {
		err := errors.Join(ErrScriptGet, res.Error)
		if stderr := strings.TrimSpace(string(res.StdErr)); stderr != "" {
			err = fmt.Errorf("%w: %s", err, stderr)
		}

		return nil, err
	}

	inputs, err := cmdline.ReadInputs(bytes.NewReader(res.StdOut))
	if err != nil {
		return nil, errors.Join(ErrScriptGet, err)
	}

	return inputs, nil
}

func secrets(req Request) []string {
	if req.Credentials.Password == "" {
		return nil
	}

	return []string{req.Credentials.Password}
}

func batchLabel(req Request) string {
	if req.DryRun {
		return string(req.Mode) + " (dry run)"
	}

	return string(req.Mode)
}
