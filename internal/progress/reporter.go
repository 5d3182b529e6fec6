// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"strings"
	"sync"

	"github.com/matt-FFFFFF/mpcli/internal/ctxlog"
)

// ChannelReporter implements Reporter using a buffered channel.
// Events reported after Close, or while the buffer is full, are dropped.
type ChannelReporter struct {
	ch     chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// NewChannelReporter creates a new ChannelReporter with the specified buffer size.
func NewChannelReporter(ctx context.Context, bufferSize int) *ChannelReporter {
	reporterCtx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan Event, bufferSize),
		ctx:    reporterCtx,
		cancel: cancel,
	}
}

// Report implements Reporter.Report without blocking.
func (cr *ChannelReporter) Report(event Event) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.closed {
		return
	}

	select {
	case cr.ch <- event:
	default:
		// Channel is full, drop the event to avoid blocking a worker
	}
}

// Close implements Reporter.Close.
// It closes the channel and waits for listeners to drain the buffered events.
func (cr *ChannelReporter) Close() {
	cr.once.Do(func() {
		cr.mu.Lock()
		cr.closed = true
		close(cr.ch)
		cr.mu.Unlock()

		cr.wg.Wait()
		cr.cancel()
	})
}

// Listen forwards events to the listener in a background goroutine until the
// reporter is closed or its parent context is cancelled.
func (cr *ChannelReporter) Listen(listener Listener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for {
			select {
			case event, ok := <-cr.ch:
				if !ok {
					return
				}

				listener.OnEvent(event)
			case <-cr.ctx.Done():
				return
			}
		}
	}()
}

// Events returns a read-only channel of progress events.
func (cr *ChannelReporter) Events() <-chan Event {
	return cr.ch
}

// NewLogListener returns a Listener that writes worker events to the context logger.
// Retries are warnings, failures are errors, everything else is info or debug.
func NewLogListener(ctx context.Context) Listener {
	logger := ctxlog.Logger(ctx)

	return ListenerFunc(func(e Event) {
		path := strings.Join(e.CommandPath, " > ")

		switch e.Type {
		case EventStarted:
			logger.Info("worker started", "worker", path)
		case EventRetrying:
			logger.Warn("worker attempt failed, retrying",
				"worker", path,
				"attempt", e.Data.Attempt,
				"tries", e.Data.MaxAttempts,
				"error", e.Data.Error)
		case EventCompleted:
			logger.Info("worker completed", "worker", path, "attempts", e.Data.Attempt)
		case EventFailed:
			logger.Error("worker failed",
				"worker", path,
				"exitCode", e.Data.ExitCode,
				"attempts", e.Data.Attempt,
				"error", e.Data.Error)
		case EventOutput:
			logger.Debug("worker output", "worker", path, "line", e.Data.OutputLine, "stderr", e.Data.IsStderr)
		case EventSkipped:
			logger.Info("worker skipped", "worker", path)
		}
	})
}
