// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"errors"
	"strconv"
)

const (
	// DefaultServer is used when no server is given.
	DefaultServer = "localhost"
	// DefaultPort is used when no port is given.
	DefaultPort = 4064
)

// Environment variables exported to every worker.
const (
	EnvServer     = "MPCLI_SERVER"
	EnvPort       = "MPCLI_PORT"
	EnvUser       = "MPCLI_USER"
	EnvSessionKey = "MPCLI_SESSION_KEY"
	EnvGroup      = "MPCLI_GROUP"
)

var (
	// ErrLogin is returned when a session could not be created or joined.
	ErrLogin = errors.New("login failed")
	// ErrLogout is returned when a session could not be closed.
	ErrLogout = errors.New("logout failed")
	// ErrMissingCredentials is returned when a user or password is needed but cannot be prompted for.
	ErrMissingCredentials = errors.New("missing credentials")
)

// Credentials are what is needed to create or join a session.
// When Key is set the session is joined and User and Password are not needed.
type Credentials struct {
	Server   string
	Port     int
	User     string
	Password string
	Group    string
	Key      string
}

// WithDefaults returns a copy with the server and port defaults applied.
func (c Credentials) WithDefaults() Credentials {
	if c.Server == "" {
		c.Server = DefaultServer
	}

	if c.Port == 0 {
		c.Port = DefaultPort
	}

	return c
}

// Session is an authenticated session on the object server.
type Session struct {
	Server string
	Port   int
	User   string
	Key    string
	Group  string
	Joined bool // The session existed before login and should be detached, not closed.
}

// LoginArgs returns the arguments that make the client CLI reuse this session.
func (s *Session) LoginArgs() []string {
	return []string{"-s", s.Server, "-p", strconv.Itoa(s.Port), "-k", s.Key}
}

// Env returns the environment variables that describe this session.
// Empty values are omitted.
func (s *Session) Env() map[string]string {
	env := map[string]string{
		EnvServer:     s.Server,
		EnvPort:       strconv.Itoa(s.Port),
		EnvUser:       s.User,
		EnvSessionKey: s.Key,
		EnvGroup:      s.Group,
	}

	for k, v := range env {
		if v == "" {
			delete(env, k)
		}
	}

	return env
}

// Client creates and closes sessions.
type Client interface {
	// Login creates a new session, or joins one when Credentials.Key is set.
	Login(ctx context.Context, creds Credentials) (*Session, error)
	// Close ends the session. When detach is true the session is left open on the server.
	Close(ctx context.Context, s *Session, detach bool) error
}
