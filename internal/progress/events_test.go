// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/mpcli/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventStarted, "started"},
		{EventRetrying, "retrying"},
		{EventOutput, "output"},
		{EventCompleted, "completed"},
		{EventFailed, "failed"},
		{EventSkipped, "skipped"},
		{EventType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.eventType.String())
		})
	}
}

func TestNullReporter(t *testing.T) {
	reporter := NewNullReporter()
	require.NotNil(t, reporter)

	reporter.Report(Event{CommandPath: []string{"test"}, Type: EventStarted, Timestamp: time.Now()})
	reporter.Close()
}

type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) OnEvent(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, e)
}

func (c *collector) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Event(nil), c.events...)
}

func TestChannelReporter_DeliversInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	reporter := NewChannelReporter(context.Background(), 10)
	c := &collector{}
	reporter.Listen(c)

	reporter.Report(Event{Type: EventStarted, Message: "one"})
	reporter.Report(Event{Type: EventCompleted, Message: "two"})
	reporter.Close()

	events := c.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, "one", events[0].Message)
	assert.Equal(t, "two", events[1].Message)
}

func TestChannelReporter_ReportAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	reporter := NewChannelReporter(context.Background(), 1)
	reporter.Close()
	reporter.Close()

	assert.NotPanics(t, func() {
		reporter.Report(Event{Type: EventStarted})
	})
}

func TestChannelReporter_FullBufferDoesNotBlock(t *testing.T) {
	defer goleak.VerifyNone(t)

	reporter := NewChannelReporter(context.Background(), 1)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for range 100 {
			reporter.Report(Event{Type: EventOutput})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Report blocked on a full buffer")
	}

	assert.Len(t, reporter.Events(), 1)
	reporter.Close()
}

func TestChannelReporter_ConcurrentReportAndClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	reporter := NewChannelReporter(context.Background(), 4)
	reporter.Listen(ListenerFunc(func(Event) {}))

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 50 {
				reporter.Report(Event{Type: EventOutput})
			}
		}()
	}

	reporter.Close()
	wg.Wait()
}

func TestLogListener(t *testing.T) {
	var buf bytes.Buffer

	ctx := ctxlog.New(context.Background(), slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	l := NewLogListener(ctx)
	l.OnEvent(Event{
		CommandPath: []string{"import", "group 1/2"},
		Type:        EventRetrying,
		Data:        EventData{Attempt: 1, MaxAttempts: 3, Error: errors.New("exit status 1")},
	})
	l.OnEvent(Event{
		CommandPath: []string{"import", "group 2/2"},
		Type:        EventFailed,
		Data:        EventData{Attempt: 3, MaxAttempts: 3, ExitCode: 2},
	})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `worker="import > group 1/2"`)
	assert.Contains(t, out, "attempt=1")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "exitCode=2")
}
