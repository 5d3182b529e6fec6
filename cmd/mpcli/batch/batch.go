// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batch contains the cli and script commands that dispatch inputs to parallel workers.
package batch

import (
	"errors"
	"time"

	"github.com/matt-FFFFFF/mpcli/internal/dispatch"
	"github.com/matt-FFFFFF/mpcli/internal/session"
	"github.com/urfave/cli/v3"
)

const (
	serverFlag      = "server"
	portFlag        = "port"
	userFlag        = "user"
	passwordFlag    = "password"
	groupFlag       = "group"
	keyFlag         = "key"
	loginFlag       = "login"
	triesFlag       = "tries"
	retryDelayFlag  = "retry-delay"
	groupSizeFlag   = "groupsize"
	threadsFlag     = "threads"
	dryRunFlag      = "dry-run"
	clientFlag      = "client"
	inputsFileFlag  = "inputs-file"
	configFlag      = "config"
	outFlag         = "out"
	tuiFlag         = "tui"
	detachFlag      = "detach"
	stdOutFlag      = "stdout"
	noStdErrFlag    = "no-stderr"
	successFlag     = "success"
	showArgsFlag    = "show-args"
	scriptFlag      = "script"
	stdinInputsName = "-"
	cliExitStr      = ""
	envPassword     = "MPCLI_PASSWORD"
	sessionCategory = "Session"
	workerCategory  = "Workers"
	outputCategory  = "Output"
)

var (
	// ErrReadInputsFile is returned when the inputs file cannot be read.
	ErrReadInputsFile = errors.New("failed to read inputs file")
	// ErrScriptNotFound is returned when the script path does not exist.
	ErrScriptNotFound = errors.New("script not found")
	// ErrWriteResultsFile is returned when the results file cannot be written.
	ErrWriteResultsFile = errors.New("failed to write results file")
	// ErrNoInputsSeparator is returned when cli mode finds no separator before the inputs.
	ErrNoInputsSeparator = errors.New("no inputs given, use: -- <client args> -- <inputs>")
)

// CliCmd runs the object-server client CLI over groups of inputs.
var CliCmd = newCommand(dispatch.ModeCLI)

// ScriptCmd runs a script over groups of inputs.
var ScriptCmd = newCommand(dispatch.ModeScript)

func newCommand(mode dispatch.Mode) *cli.Command {
	switch mode {
	case dispatch.ModeScript:
		return &cli.Command{
			Name:      string(dispatch.ModeScript),
			Usage:     "Run a script over groups of inputs in parallel",
			ArgsUsage: "-- [script args...] -- [inputs...]",
			Description: `Log in once, split the inputs into groups and run one script process per group.

Each worker runs: <script> process [script args...] -- <group inputs...>
When no inputs are given the script is asked for them first with: <script> get [script args...]

The session is exported to every worker in the MPCLI_SERVER, MPCLI_PORT, MPCLI_USER,
MPCLI_SESSION_KEY and MPCLI_GROUP environment variables.`,
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:      scriptFlag,
					Usage:     "Path of the script to run",
					TakesFile: true,
					Required:  true,
					OnlyOnce:  true,
				},
			}, sharedFlags()...),
			Action: actionFunc(dispatch.ModeScript),
		}
	default:
		return &cli.Command{
			Name:      string(dispatch.ModeCLI),
			Usage:     "Run a client CLI command over groups of inputs in parallel",
			ArgsUsage: "-- <client args...> -- [inputs...]",
			Description: `Log in once, split the inputs into groups and run one client process per group.

Each worker runs: <client> <client args...> [login args] <group inputs...>
Use --login to append "-s <server> -p <port> -k <session key>" to every worker.

The first -- ends the mpcli flags, the second separates the client arguments from the inputs.`,
			Flags:  sharedFlags(),
			Action: actionFunc(dispatch.ModeCLI),
		}
	}
}

func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     serverFlag,
			Aliases:  []string{"s"},
			Usage:    "Object server host name. Defaults to " + session.DefaultServer,
			Category: sessionCategory,
			Sources:  cli.EnvVars(session.EnvServer),
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:     portFlag,
			Aliases:  []string{"p"},
			Usage:    "Object server port",
			Value:    session.DefaultPort,
			Category: sessionCategory,
			Sources:  cli.EnvVars(session.EnvPort),
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     userFlag,
			Aliases:  []string{"u"},
			Usage:    "User name, prompted for when needed and not set",
			Category: sessionCategory,
			Sources:  cli.EnvVars(session.EnvUser),
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     passwordFlag,
			Aliases:  []string{"w"},
			Usage:    "Password, prompted for when needed and not set. It is passed to the client login on its command line",
			Category: sessionCategory,
			Sources:  cli.EnvVars(envPassword),
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     groupFlag,
			Aliases:  []string{"g"},
			Usage:    "Group to log in to",
			Category: sessionCategory,
			Sources:  cli.EnvVars(session.EnvGroup),
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     keyFlag,
			Aliases:  []string{"k"},
			Usage:    "Join the existing session with this key instead of creating one",
			Category: sessionCategory,
			Sources:  cli.EnvVars(session.EnvSessionKey),
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     loginFlag,
			Usage:    "Append the session login arguments to every client command",
			Category: sessionCategory,
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     detachFlag,
			Usage:    "Leave the session open when finished",
			Category: sessionCategory,
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:      clientFlag,
			Usage:     "Object server client executable",
			Value:     session.DefaultClientPath,
			TakesFile: true,
			Category:  sessionCategory,
			OnlyOnce:  true,
		},
		&cli.IntFlag{
			Name:     triesFlag,
			Usage:    "Number of attempts for each worker",
			Value:    1,
			Category: workerCategory,
			OnlyOnce: true,
		},
		&cli.DurationFlag{
			Name:     retryDelayFlag,
			Usage:    "Time to wait between attempts",
			Value:    time.Second,
			Category: workerCategory,
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:     groupSizeFlag,
			Usage:    "Maximum number of inputs given to each worker",
			Value:    1,
			Category: workerCategory,
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:        threadsFlag,
			Aliases:     []string{"j"},
			Usage:       "Maximum number of concurrent workers",
			DefaultText: "number of CPUs",
			Category:    workerCategory,
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:     dryRunFlag,
			Aliases:  []string{"n"},
			Usage:    "Log in and show the worker command lines without running them",
			Category: workerCategory,
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:      inputsFileFlag,
			Aliases:   []string{"i"},
			Usage:     "Read additional inputs from a file, one per line. Use - for stdin",
			TakesFile: true,
			Category:  workerCategory,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage: "URL of a YAML or HCL profile with default flag values. " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:      outFlag,
			Usage:     "Save the results to this file, read it back with 'mpcli results show'",
			TakesFile: true,
			Category:  outputCategory,
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:     tuiFlag,
			Aliases:  []string{"t", "interactive"},
			Usage:    "Show worker progress in an interactive terminal user interface",
			Category: outputCategory,
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     stdOutFlag,
			Usage:    "Include stdout in the results",
			Category: outputCategory,
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     noStdErrFlag,
			Usage:    "Exclude stderr from the results",
			Category: outputCategory,
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     successFlag,
			Usage:    "Include details of successful workers in the results",
			Category: outputCategory,
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     showArgsFlag,
			Usage:    "Include the command line of each worker in the results",
			Category: outputCategory,
			OnlyOnce: true,
		},
	}
}
