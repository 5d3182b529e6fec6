// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matt-FFFFFF/mpcli/internal/progress"
)

// fakeCmd fails its first `failures` runs and succeeds afterwards.
type fakeCmd struct {
	*BaseCommand
	failures int32
	delay    time.Duration
	runs     atomic.Int32
	gauge    *concurrencyGauge
}

func newFakeCmd(label string, failures int32, delay time.Duration) *fakeCmd {
	return &fakeCmd{
		BaseCommand: NewBaseCommand(label, "", nil),
		failures:    failures,
		delay:       delay,
	}
}

func (f *fakeCmd) Run(ctx context.Context) Results {
	n := f.runs.Add(1)

	if f.gauge != nil {
		f.gauge.enter()
		defer f.gauge.leave()
	}

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return Results{{Label: f.Label, ExitCode: -1, Error: ctx.Err(), Status: ResultStatusError}}
	}

	if n <= f.failures {
		return Results{{
			Label:    f.Label,
			ExitCode: 1,
			StdErr:   []byte("boom\n"),
			Status:   ResultStatusError,
		}}
	}

	return Results{{Label: f.Label, StdOut: []byte("ok\n"), Status: ResultStatusSuccess}}
}

// concurrencyGauge records the highest number of concurrent runs.
type concurrencyGauge struct {
	cur  atomic.Int32
	peak atomic.Int32
}

func (g *concurrencyGauge) enter() {
	n := g.cur.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (g *concurrencyGauge) leave() {
	g.cur.Add(-1)
}

// recordingReporter keeps every event and forwards output lines to a channel.
type recordingReporter struct {
	mu     sync.Mutex
	events []progress.Event
	lines  chan string
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{lines: make(chan string, 1024)}
}

func (r *recordingReporter) Report(e progress.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()

	if e.Type == progress.EventOutput {
		select {
		case r.lines <- e.Data.OutputLine:
		default:
		}
	}
}

func (r *recordingReporter) Close() {}

func (r *recordingReporter) types() []progress.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []progress.EventType

	for _, e := range r.events {
		if e.Type != progress.EventOutput {
			out = append(out, e.Type)
		}
	}

	return out
}

func (r *recordingReporter) all() []progress.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]progress.Event(nil), r.events...)
}
