// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package profile contains the commands that help write and check profiles.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/mpcli/internal/color"
	"github.com/matt-FFFFFF/mpcli/internal/config"
	"github.com/urfave/cli/v3"
)

const (
	formatFlag = "format"
	urlArg     = "url"
	formatYAML = "yaml"
	formatHCL  = "hcl"
	jsonIndent = 2
)

var (
	// ErrUnknownFormat is returned for a format other than yaml or hcl.
	ErrUnknownFormat = errors.New("unknown format, use yaml or hcl")
	// ErrNoURL is returned when no profile URL is given.
	ErrNoURL = errors.New("no profile URL given")
)

const exampleYAML = `# mpcli profile, pass it with --config.
# Flags given on the command line take precedence.
server: omero.example.org
port: 4064
user: alice
group: lab
client: omero
tries: 3
retry_delay: 5s
groupsize: 50
threads: 8
login: true
`

const exampleHCL = `# mpcli profile, pass it with --config.
# Flags given on the command line take precedence.
# Environment variables are available as env.NAME.
server      = "omero.example.org"
port        = 4064
user        = env.MPCLI_USER
group       = "lab"
client      = "omero"
tries       = 3
retry_delay = "5s"
groupsize   = 50
threads     = 8
login       = true
`

// ProfileCmd groups the profile subcommands.
var ProfileCmd = newProfileCmd()

func newProfileCmd() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Get info on the profile format and check profiles",
		Commands: []*cli.Command{
			{
				Name:  "example",
				Usage: "Print an example profile",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  formatFlag,
						Usage: "Profile format, yaml or hcl",
						Value: formatYAML,
					},
				},
				Action: exampleAction,
			},
			{
				Name:        "show",
				Usage:       "Print the settings a profile resolves to",
				Description: "Fetch and decode a profile and print it merged with the built-in defaults.",
				ArgsUsage:   "URL",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: urlArg,
					},
				},
				Action: showAction,
			},
		},
	}
}

func exampleAction(_ context.Context, cmd *cli.Command) error {
	var example string

	switch f := cmd.String(formatFlag); f {
	case formatYAML:
		example = exampleYAML
	case formatHCL:
		example = exampleHCL
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}

	_, err := fmt.Fprint(cmd.Root().Writer, example)

	return err //nolint:wrapcheck
}

// resolved is the JSON view of config.Settings.
type resolved struct {
	Server     string `json:"server"`
	Port       int    `json:"port"`
	User       string `json:"user"`
	Group      string `json:"group"`
	Client     string `json:"client"`
	Tries      int    `json:"tries"`
	RetryDelay string `json:"retry_delay"`
	GroupSize  int    `json:"groupsize"`
	Threads    int    `json:"threads"`
	Login      bool   `json:"login"`
}

func showAction(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg(urlArg)
	if url == "" {
		return ErrNoURL
	}

	p, err := config.Load(ctx, url)
	if err != nil {
		return err //nolint:wrapcheck
	}

	s := p.Apply(config.Defaults())

	data, err := json.Marshal(resolved{
		Server:     s.Server,
		Port:       s.Port,
		User:       s.User,
		Group:      s.Group,
		Client:     s.Client,
		Tries:      s.Tries,
		RetryDelay: s.RetryDelay.String(),
		GroupSize:  s.GroupSize,
		Threads:    s.Threads,
		Login:      s.Login,
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err //nolint:wrapcheck
	}

	f := colorjson.NewFormatter()
	f.Indent = jsonIndent
	f.DisabledColor = !color.Enabled()

	out, err := f.Marshal(obj)
	if err != nil {
		return err //nolint:wrapcheck
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, string(out))

	return err //nolint:wrapcheck
}
