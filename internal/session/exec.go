// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/mpcli/internal/ctxlog"
	"github.com/matt-FFFFFF/mpcli/internal/runbatch"
)

// DefaultClientPath is the client CLI used when none is configured.
const DefaultClientPath = "omero"

var _ Client = (*ExecClient)(nil)

// ExecClient manages sessions by running the object server's command line client.
type ExecClient struct {
	Path     string   // Client executable, DefaultClientPath when empty
	Prompter Prompter // Asks for a missing user or password, may be nil
}

// NewExecClient creates an ExecClient for the given executable.
func NewExecClient(path string, prompter Prompter) *ExecClient {
	return &ExecClient{Path: path, Prompter: prompter}
}

// Login implements Client.
func (c *ExecClient) Login(ctx context.Context, creds Credentials) (*Session, error) {
	creds = creds.WithDefaults()

	logger := ctxlog.Logger(ctx).With("server", creds.Server, "port", creds.Port)

	if creds.Key != "" {
		logger.Info("joining session")

		if _, err := c.run(ctx, "login", "-s", creds.Server, "-p", strconv.Itoa(creds.Port), "-k", creds.Key); err != nil {
			return nil, errors.Join(ErrLogin, err)
		}

		return &Session{
			Server: creds.Server,
			Port:   creds.Port,
			User:   creds.User,
			Key:    creds.Key,
			Group:  creds.Group,
			Joined: true,
		}, nil
	}

	creds, err := c.complete(creds)
	if err != nil {
		return nil, err
	}

	logger.Info("creating session", "user", creds.User)

	args := []string{"login", "-s", creds.Server, "-p", strconv.Itoa(creds.Port), "-u", creds.User, "-w", creds.Password}
	if creds.Group != "" {
		args = append(args, "-g", creds.Group)
	}

	if _, err := c.runSecret(ctx, []string{creds.Password}, args...); err != nil {
		return nil, errors.Join(ErrLogin, err)
	}

	out, err := c.run(ctx, "sessions", "key")
	if err != nil {
		return nil, errors.Join(ErrLogin, err)
	}

	key := firstLine(out)
	if key == "" {
		return nil, fmt.Errorf("%w: client returned an empty session key", ErrLogin)
	}

	logger.Debug("session created")

	return &Session{
		Server: creds.Server,
		Port:   creds.Port,
		User:   creds.User,
		Key:    key,
		Group:  creds.Group,
	}, nil
}

// Close implements Client.
func (c *ExecClient) Close(ctx context.Context, s *Session, detach bool) error {
	if s == nil {
		return nil
	}

	if detach {
		ctxlog.Info(ctx, "detaching session", "server", s.Server)
		return nil
	}

	ctxlog.Info(ctx, "closing session", "server", s.Server)

	if _, err := c.run(ctx, "logout"); err != nil {
		return errors.Join(ErrLogout, err)
	}

	return nil
}

// complete prompts for the user and password when they are missing.
func (c *ExecClient) complete(creds Credentials) (Credentials, error) {
	if creds.User != "" && creds.Password != "" {
		return creds, nil
	}

	if c.Prompter == nil {
		return creds, fmt.Errorf("%w: user and password are required when no session key is given", ErrMissingCredentials)
	}

	var err error

	if creds.User == "" {
		if creds.User, err = c.Prompter.Prompt("User: "); err != nil {
			return creds, err //nolint:wrapcheck
		}
	}

	if creds.Password == "" {
		if creds.Password, err = c.Prompter.PromptPassword("Password: "); err != nil {
			return creds, err //nolint:wrapcheck
		}
	}

	if creds.User == "" || creds.Password == "" {
		return creds, fmt.Errorf("%w: user and password must not be empty", ErrMissingCredentials)
	}

	return creds, nil
}

// run executes the client and returns its stdout.
// A failure includes the client's stderr in the error.
func (c *ExecClient) run(ctx context.Context, args ...string) ([]byte, error) {
	return c.runSecret(ctx, nil, args...)
}

func (c *ExecClient) runSecret(ctx context.Context, secrets []string, args ...string) ([]byte, error) {
	path := c.Path
	if path == "" {
		path = DefaultClientPath
	}

	cmd := runbatch.NewOSCommand(runbatch.NewBaseCommand(path+" "+args[0], "", nil), path, args)
	cmd.SecretArgs = secrets

	res := cmd.Run(ctx)[0]
	if !res.Failed() {
		return res.StdOut, nil
	}

	err := res.Error
	if err == nil {
		err = fmt.Errorf("%s %s exited with code %d", path, args[0], res.ExitCode) //nolint:err113
	}

	if stderr := strings.TrimSpace(string(res.StdErr)); stderr != "" {
		err = fmt.Errorf("%w: %s", err, stderr)
	}

	return nil, err
}

func firstLine(b []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}

	return ""
}
