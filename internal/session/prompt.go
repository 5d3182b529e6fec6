// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"errors"
	"os"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// Prompter asks the user for missing credentials.
type Prompter interface {
	Prompt(label string) (string, error)
	PromptPassword(label string) (string, error)
}

var _ Prompter = (*LinerPrompter)(nil)

// stdinIsTerminal is a variable so tests can stub it.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec
}

// LinerPrompter prompts on the terminal using liner.
// It refuses to prompt when stdin is not a terminal.
type LinerPrompter struct{}

// NewLinerPrompter creates a LinerPrompter.
func NewLinerPrompter() *LinerPrompter {
	return &LinerPrompter{}
}

// Prompt reads a line with echo on.
func (p *LinerPrompter) Prompt(label string) (string, error) {
	return p.read(label, false)
}

// PromptPassword reads a line with echo off.
func (p *LinerPrompter) PromptPassword(label string) (string, error) {
	return p.read(label, true)
}

func (p *LinerPrompter) read(label string, secret bool) (string, error) {
	if !stdinIsTerminal() {
		return "", errors.Join(ErrMissingCredentials, errors.New("stdin is not a terminal")) //nolint:err113
	}

	line := liner.NewLiner()
	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)

	var (
		input string
		err   error
	)

	if secret {
		input, err = line.PasswordPrompt(label)
	} else {
		input, err = line.Prompt(label)
	}

	if err != nil {
		return "", errors.Join(ErrMissingCredentials, err)
	}

	return input, nil
}
