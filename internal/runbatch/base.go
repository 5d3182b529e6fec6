// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"maps"

	"github.com/matt-FFFFFF/mpcli/internal/progress"
)

// BaseCommand holds the fields shared by every Runnable.
// It should be embedded in other command types to provide common functionality.
type BaseCommand struct {
	Label    string            // Optional label for the command
	Cwd      string            // The working directory for the command
	Env      map[string]string // Environment variables to be passed to the command
	parent   Runnable          // The parent command or batch, if any
	reporter progress.Reporter // Receives progress events, may be nil
}

// NewBaseCommand creates a new BaseCommand with the specified parameters.
func NewBaseCommand(label, cwd string, env map[string]string) *BaseCommand {
	if env == nil {
		env = make(map[string]string)
	}

	return &BaseCommand{
		Label: label,
		Cwd:   cwd,
		Env:   env,
	}
}

// GetLabel returns the label of the command.
func (c *BaseCommand) GetLabel() string {
	if c.Label == "" {
		return "Command"
	}

	return c.Label
}

// GetParent returns the parent for this command or batch.
func (c *BaseCommand) GetParent() Runnable {
	return c.parent
}

// SetParent sets the parent for this command or batch.
func (c *BaseCommand) SetParent(parent Runnable) {
	c.parent = parent
}

// InheritEnv adds environment variables to the command.
// Variables already set on the command win.
func (c *BaseCommand) InheritEnv(env map[string]string) {
	if len(c.Env) == 0 {
		c.Env = maps.Clone(env)
		return
	}

	for k, v := range env {
		if _, ok := c.Env[k]; !ok {
			c.Env[k] = v
		}
	}
}

// SetProgressReporter sets the progress reporter for this command.
func (c *BaseCommand) SetProgressReporter(reporter progress.Reporter) {
	c.reporter = reporter
}

// GetProgressReporter returns the progress reporter, or nil.
func (c *BaseCommand) GetProgressReporter() progress.Reporter {
	return c.reporter
}

func (c *BaseCommand) hasProgressReporter() bool {
	return c.reporter != nil
}
