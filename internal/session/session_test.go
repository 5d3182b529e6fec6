// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialsWithDefaults(t *testing.T) {
	c := Credentials{User: "u"}.WithDefaults()
	assert.Equal(t, "localhost", c.Server)
	assert.Equal(t, 4064, c.Port)

	c = Credentials{Server: "omero.example.org", Port: 14064}.WithDefaults()
	assert.Equal(t, "omero.example.org", c.Server)
	assert.Equal(t, 14064, c.Port)
}

func TestSessionLoginArgs(t *testing.T) {
	s := &Session{Server: "localhost", Port: 4064, Key: "abc-123"}
	assert.Equal(t, []string{"-s", "localhost", "-p", "4064", "-k", "abc-123"}, s.LoginArgs())
}

func TestSessionEnv(t *testing.T) {
	s := &Session{Server: "localhost", Port: 4064, User: "root", Key: "abc-123"}
	assert.Equal(t, map[string]string{
		EnvServer:     "localhost",
		EnvPort:       "4064",
		EnvUser:       "root",
		EnvSessionKey: "abc-123",
	}, s.Env(), "empty group is omitted")
}
