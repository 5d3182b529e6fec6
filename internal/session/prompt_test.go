// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/require"
)

func TestLinerPrompter_NotATerminal(t *testing.T) {
	stubs := gostub.Stub(&stdinIsTerminal, func() bool { return false })
	defer stubs.Reset()

	p := NewLinerPrompter()

	_, err := p.Prompt("User: ")
	require.ErrorIs(t, err, ErrMissingCredentials)

	_, err = p.PromptPassword("Password: ")
	require.ErrorIs(t, err, ErrMissingCredentials)
}
