// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name          string
		setupContext  func() context.Context
		expectDefault bool
	}{
		{
			name: "context with logger",
			setupContext: func() context.Context {
				return New(context.Background(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
			},
		},
		{
			name:          "context without logger",
			setupContext:  context.Background,
			expectDefault: true,
		},
		{
			name: "context with nil logger passed to New",
			setupContext: func() context.Context {
				return New(context.Background(), nil)
			},
			expectDefault: true,
		},
		{
			name: "context with wrong type value",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), loggerKey{}, "not a logger")
			},
			expectDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Logger(tt.setupContext())
			require.NotNil(t, logger)

			if tt.expectDefault {
				assert.Same(t, DefaultLogger, logger)
				return
			}

			assert.NotSame(t, DefaultLogger, logger)
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer

	ctx := New(context.Background(), slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	tests := []struct {
		name     string
		logFunc  func(context.Context, string, ...any)
		message  string
		expected string
	}{
		{name: "info", logFunc: Info, message: "test info message", expected: "INFO"},
		{name: "debug", logFunc: Debug, message: "test debug message", expected: "DEBUG"},
		{name: "warn", logFunc: Warn, message: "test warning message", expected: "WARN"},
		{name: "error", logFunc: Error, message: "test error message", expected: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(ctx, tt.message, "key", "value")

			out := buf.String()
			assert.Contains(t, out, tt.expected)
			assert.Contains(t, out, tt.message)
			assert.Contains(t, out, "key=value")
		})
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer

	ctx := New(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
	ctx = With(ctx, "runID", "abc")

	Info(ctx, "hello")
	assert.Contains(t, buf.String(), "runID=abc")
}

func TestNewForTUI(t *testing.T) {
	prev := LevelVar.Level()
	t.Cleanup(func() { LevelVar.Set(prev) })
	LevelVar.Set(slog.LevelInfo)

	var buf bytes.Buffer

	ctx := NewForTUI(context.Background(), &buf)
	Info(ctx, "buffered", "group", 3)

	out := buf.String()
	assert.Contains(t, out, "buffered")
	assert.Contains(t, out, `"group": 3`)
	assert.NotContains(t, out, "\033[", "TUI logger must not emit colour codes")
}

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		envValue string
		expected slog.Level
	}{
		{envValue: "DEBUG", expected: slog.LevelDebug},
		{envValue: "info", expected: slog.LevelInfo},
		{envValue: "WARN", expected: slog.LevelWarn},
		{envValue: "ERROR", expected: slog.LevelError},
		{envValue: "bogus", expected: slog.LevelWarn},
		{envValue: "", expected: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			t.Setenv(LogLevelEnvVar, tt.envValue)
			assert.Equal(t, tt.expected, logLevelFromEnv())
		})
	}
}
