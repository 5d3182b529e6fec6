// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/matt-FFFFFF/mpcli/internal/partition"
	"github.com/matt-FFFFFF/mpcli/internal/session"
)

// Mode selects what each worker runs.
type Mode string

const (
	// ModeCLI runs the client CLI with the group appended.
	ModeCLI Mode = "cli"
	// ModeScript runs a script's process entry point with the group appended.
	ModeScript Mode = "script"
)

var (
	// ErrInvalidRequest is returned when a Request cannot be dispatched.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnknownMode is returned for a mode other than cli or script.
	ErrUnknownMode = errors.New("unknown mode")
	// ErrNoCommand is returned in cli mode when there is nothing to run.
	ErrNoCommand = errors.New("no client command given")
	// ErrNoScript is returned in script mode when no script is given.
	ErrNoScript = errors.New("no script given")
)

// Request describes one dispatch.
type Request struct {
	Mode        Mode
	ClientPath  string        // Client CLI executable, session.DefaultClientPath when empty
	Script      string        // Script executable, script mode only
	Common      []string      // Arguments shared by every worker
	Inputs      []string      // Inputs to split into groups
	GroupSize   int           // Maximum inputs per group
	Threads     int           // Maximum concurrent workers, number of CPUs when < 1
	Tries       int           // Attempts per worker, values below 1 mean 1
	RetryDelay  time.Duration // Wait between attempts
	Login       bool          // Append the session login arguments to cli mode workers
	DryRun      bool          // Report the worker command lines without running them
	Detach      bool          // Leave the session open afterwards
	Credentials session.Credentials
}

// Validate checks the request, every error wraps ErrInvalidRequest.
func (r Request) Validate() error {
	var err error

	switch r.Mode {
	case ModeCLI:
		if len(r.Common) == 0 {
			err = ErrNoCommand
		}
	case ModeScript:
		if r.Script == "" {
			err = ErrNoScript
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMode, r.Mode)
	}

	if r.GroupSize < 1 {
		err = errors.Join(err, fmt.Errorf("%w: got %d", partition.ErrInvalidGroupSize, r.GroupSize))
	}

	if r.RetryDelay < 0 {
		err = errors.Join(err, fmt.Errorf("retry delay must not be negative: got %s", r.RetryDelay)) //nolint:err113
	}

	if err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}

	return nil
}
