// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/mpcli/internal/cmdline"
	"github.com/matt-FFFFFF/mpcli/internal/config"
	"github.com/matt-FFFFFF/mpcli/internal/ctxlog"
	"github.com/matt-FFFFFF/mpcli/internal/dispatch"
	"github.com/matt-FFFFFF/mpcli/internal/progress"
	"github.com/matt-FFFFFF/mpcli/internal/runbatch"
	"github.com/matt-FFFFFF/mpcli/internal/session"
	"github.com/matt-FFFFFF/mpcli/internal/tui"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const reporterBufferSize = 256

// newClient returns the session client used for a dispatch.
var newClient = func(path string) session.Client {
	return session.NewExecClient(path, session.NewLinerPrompter())
}

// fsFactory returns the filesystem used for inputs files, scripts and results files.
var fsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// stdin is read when the inputs file is "-".
var stdin io.Reader = os.Stdin

func actionFunc(mode dispatch.Mode) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		logger := ctxlog.Logger(ctx).With("command", cmd.Name)
		logger.Debug("Running dispatch command")

		req, err := buildRequest(ctx, cmd, mode)
		if err != nil {
			logger.Error(fmt.Sprintf("Invalid arguments: %s", err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		if err := req.Validate(); err != nil {
			logger.Error(err.Error())
			return cli.Exit(cliExitStr, 1)
		}

		d := dispatch.New(newClient(req.ClientPath))

		res, runErr := execute(ctx, cmd, d, req)
		if res == nil && runErr != nil {
			logger.Error(fmt.Sprintf("Dispatch failed: %s", runErr.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		if outFileName := cmd.String(outFlag); outFileName != "" {
			if err := writeResultsFile(outFileName, res); err != nil {
				logger.Error(err.Error())
				return cli.Exit(cliExitStr, 1)
			}

			logger.Info(fmt.Sprintf("Results written to %s", outFileName))
		}

		opts := runbatch.DefaultOutputOptions()
		opts.IncludeStdErr = !cmd.Bool(noStdErrFlag)
		opts.IncludeStdOut = cmd.Bool(stdOutFlag) || req.DryRun
		opts.ShowSuccessDetails = cmd.Bool(successFlag) || req.DryRun
		opts.ShowArgs = cmd.Bool(showArgsFlag)

		if err := res.WriteTextWithOptions(cmd.Root().Writer, opts); err != nil {
			logger.Error(fmt.Sprintf("Failed to write results: %s", err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		if runErr != nil || res.HasError() {
			logger.Error("Some groups failed. See above for details.")
			return cli.Exit(cliExitStr, 1)
		}

		return nil
	}
}

// buildRequest resolves the settings from the built-in defaults, the profile and the flags, in that order.
func buildRequest(ctx context.Context, cmd *cli.Command, mode dispatch.Mode) (dispatch.Request, error) {
	s := config.Defaults()

	if url := cmd.String(configFlag); url != "" {
		p, err := config.Load(ctx, url)
		if err != nil {
			return dispatch.Request{}, err
		}

		s = p.Apply(s)
	}

	s = applyFlags(cmd, s)

	args := cmd.Args().Slice()
	common, inputs := cmdline.SplitAtSeparator(args)

	if name := cmd.String(inputsFileFlag); name != "" {
		more, err := readInputsFile(name)
		if err != nil {
			return dispatch.Request{}, err
		}

		inputs = append(inputs, more...)
	} else if mode == dispatch.ModeCLI {
		// The first -- is consumed by flag parsing, so the inputs need a second one.
		if !slices.Contains(args, cmdline.Separator) {
			return dispatch.Request{}, ErrNoInputsSeparator
		}

		if len(inputs) == 0 {
			ctxlog.Warn(ctx, "no inputs given after --")
		}
	}

	req := dispatch.Request{
		Mode:       mode,
		ClientPath: s.Client,
		Common:     common,
		Inputs:     inputs,
		GroupSize:  s.GroupSize,
		Threads:    s.Threads,
		Tries:      s.Tries,
		RetryDelay: s.RetryDelay,
		Login:      s.Login,
		DryRun:     cmd.Bool(dryRunFlag),
		Detach:     cmd.Bool(detachFlag),
		Credentials: session.Credentials{
			Server:   s.Server,
			Port:     s.Port,
			User:     s.User,
			Password: cmd.String(passwordFlag),
			Group:    s.Group,
			Key:      cmd.String(keyFlag),
		},
	}

	if mode == dispatch.ModeScript {
		req.Script = cmd.String(scriptFlag)
		if err := checkScript(req.Script); err != nil {
			return dispatch.Request{}, err
		}
	}

	return req, nil
}

// applyFlags overrides s with every flag given on the command line or in the environment.
func applyFlags(cmd *cli.Command, s config.Settings) config.Settings {
	if cmd.IsSet(serverFlag) {
		s.Server = cmd.String(serverFlag)
	}

	if cmd.IsSet(portFlag) {
		s.Port = cmd.Int(portFlag)
	}

	if cmd.IsSet(userFlag) {
		s.User = cmd.String(userFlag)
	}

	if cmd.IsSet(groupFlag) {
		s.Group = cmd.String(groupFlag)
	}

	if cmd.IsSet(clientFlag) {
		s.Client = cmd.String(clientFlag)
	}

	if cmd.IsSet(triesFlag) {
		s.Tries = cmd.Int(triesFlag)
	}

	if cmd.IsSet(retryDelayFlag) {
		s.RetryDelay = cmd.Duration(retryDelayFlag)
	}

	if cmd.IsSet(groupSizeFlag) {
		s.GroupSize = cmd.Int(groupSizeFlag)
	}

	if cmd.IsSet(threadsFlag) {
		s.Threads = cmd.Int(threadsFlag)
	}

	if cmd.IsSet(loginFlag) {
		s.Login = cmd.Bool(loginFlag)
	}

	return s
}

func readInputsFile(name string) ([]string, error) {
	if name == stdinInputsName {
		inputs, err := cmdline.ReadInputs(stdin)
		if err != nil {
			return nil, errors.Join(ErrReadInputsFile, err)
		}

		return inputs, nil
	}

	f, err := fsFactory().Open(name)
	if err != nil {
		return nil, errors.Join(ErrReadInputsFile, err)
	}

	defer f.Close() //nolint:errcheck

	inputs, err := cmdline.ReadInputs(f)
	if err != nil {
		return nil, errors.Join(ErrReadInputsFile, err)
	}

	return inputs, nil
}

// checkScript fails when a script given as a path does not exist.
// A bare name is looked up in PATH when the workers start.
func checkScript(script string) error {
	if script == "" || !strings.ContainsRune(script, os.PathSeparator) {
		return nil
	}

	ok, err := afero.Exists(fsFactory(), script)
	if err != nil {
		return errors.Join(ErrScriptNotFound, err)
	}

	if !ok {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, script)
	}

	return nil
}

// execute runs the dispatch, either reporting progress to the log or in the TUI.
func execute(ctx context.Context, cmd *cli.Command, d *dispatch.Dispatcher, req dispatch.Request) (runbatch.Results, error) {
	if !cmd.Bool(tuiFlag) {
		reporter := progress.NewChannelReporter(ctx, reporterBufferSize)
		reporter.Listen(progress.NewLogListener(ctx))

		defer reporter.Close()

		return d.Run(ctx, req, reporter)
	}

	ctxlog.Info(ctx, "Starting interactive TUI mode...")

	buf := new(bytes.Buffer)
	tuiCtx := ctxlog.NewForTUI(ctx, buf)

	runner := tui.NewRunner(tuiCtx, string(req.Mode))

	res, err := runner.Run(tuiCtx, func(ctx context.Context, reporter progress.Reporter) (runbatch.Results, error) {
		return d.Run(ctx, req, reporter)
	})

	buf.WriteTo(cmd.Root().ErrWriter) //nolint:errcheck

	return res, err
}

func writeResultsFile(name string, res runbatch.Results) error {
	f, err := fsFactory().Create(name)
	if err != nil {
		return errors.Join(ErrWriteResultsFile, err)
	}

	defer f.Close() //nolint:errcheck

	if err := res.WriteBinary(f); err != nil {
		return errors.Join(ErrWriteResultsFile, err)
	}

	return nil
}
