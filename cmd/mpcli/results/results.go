// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package results contains the commands that work with saved results files.
package results

import (
	"context"
	"errors"

	"github.com/matt-FFFFFF/mpcli/internal/runbatch"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	fileArg      = "file"
	stdOutFlag   = "stdout"
	noStdErrFlag = "no-stderr"
	successFlag  = "success"
	showArgsFlag = "show-args"
	failedFlag   = "failed"
)

var (
	// ErrReadFile is returned when the file cannot be read.
	ErrReadFile = errors.New("failed to read file")
	// ErrNoFile is returned when no file name is given.
	ErrNoFile = errors.New("no results file given")
	// ErrWriteResults is returned when the results cannot be written to stdout.
	ErrWriteResults = errors.New("failed to write results to stdout")
	// ErrResultsHaveErrors is returned by show --failed when the saved run had failed groups.
	ErrResultsHaveErrors = errors.New("results contain failed groups")
)

// fsFactory returns the filesystem results files are read from.
var fsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// ResultsCmd groups the results subcommands.
var ResultsCmd = newResultsCmd()

func newResultsCmd() *cli.Command {
	return &cli.Command{
		Name:  "results",
		Usage: "Work with results saved with --out",
		Commands: []*cli.Command{
			newShowCmd(),
		},
	}
}

// newShowCmd returns the command that renders a saved results file.
func newShowCmd() *cli.Command {
	return &cli.Command{
		Name:        "show",
		Usage:       "Show previously saved results",
		Description: "Show the results of a cli or script run saved with --out.",
		ArgsUsage:   "FILE",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: fileArg,
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  stdOutFlag,
				Usage: "Include stdout in the results",
			},
			&cli.BoolFlag{
				Name:  noStdErrFlag,
				Usage: "Exclude stderr from the results",
			},
			&cli.BoolFlag{
				Name:  successFlag,
				Usage: "Include details of successful workers in the results",
			},
			&cli.BoolFlag{
				Name:  showArgsFlag,
				Usage: "Include the command line of each worker in the results",
			},
			&cli.BoolFlag{
				Name:  failedFlag,
				Usage: "Exit with status 1 when the saved run had failed groups",
			},
		},
		Action: showAction,
	}
}

func showAction(_ context.Context, cmd *cli.Command) error {
	name := cmd.StringArg(fileArg)
	if name == "" {
		return ErrNoFile
	}

	file, err := fsFactory().Open(name)
	if err != nil {
		return errors.Join(ErrReadFile, err)
	}
	defer file.Close() // nolint:errcheck

	results, err := runbatch.ReadBinary(file)
	if err != nil {
		return err
	}

	opts := runbatch.DefaultOutputOptions()
	opts.IncludeStdOut = cmd.Bool(stdOutFlag)
	opts.IncludeStdErr = !cmd.Bool(noStdErrFlag)
	opts.ShowSuccessDetails = cmd.Bool(successFlag)
	opts.ShowArgs = cmd.Bool(showArgsFlag)

	if err := results.WriteTextWithOptions(cmd.Root().Writer, opts); err != nil {
		return errors.Join(ErrWriteResults, err)
	}

	if cmd.Bool(failedFlag) && results.HasError() {
		return cli.Exit(ErrResultsHaveErrors.Error(), 1)
	}

	return nil
}
