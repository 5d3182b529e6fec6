// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"slices"
	"strings"
	"time"

	"github.com/matt-FFFFFF/mpcli/internal/progress"
)

// reportEvent sends an event if reporter is not nil.
func reportEvent(reporter progress.Reporter, path []string, t progress.EventType, msg string, data progress.EventData) {
	if reporter == nil {
		return
	}

	reporter.Report(progress.Event{
		CommandPath: slices.Clone(path),
		Type:        t,
		Message:     msg,
		Timestamp:   time.Now(),
		Data:        data,
	})
}

// reportResult sends a completed or failed event for the first result.
func reportResult(reporter progress.Reporter, path []string, res *Result, maxAttempts int) {
	if reporter == nil || res == nil {
		return
	}

	data := progress.EventData{
		ExitCode:    res.ExitCode,
		Error:       res.Error,
		Attempt:     res.Attempts,
		MaxAttempts: maxAttempts,
	}

	if !res.Failed() && !res.Children.HasError() {
		reportEvent(reporter, path, progress.EventCompleted, "completed", data)
		return
	}

	if firstErrLine, _, _ := strings.Cut(string(res.StdErr), "\n"); firstErrLine != "" {
		data.OutputLine = firstErrLine
		data.IsStderr = true
	}

	reportEvent(reporter, path, progress.EventFailed, "failed", data)
}

// pinnedReporter forwards events under a fixed command path.
// Close is a no-op, the wrapped reporter is owned elsewhere.
type pinnedReporter struct {
	inner progress.Reporter
	path  []string
}

func newPinnedReporter(inner progress.Reporter, path []string) progress.Reporter {
	if inner == nil {
		return nil
	}

	return &pinnedReporter{inner: inner, path: slices.Clone(path)}
}

// Report implements progress.Reporter.
func (p *pinnedReporter) Report(e progress.Event) {
	e.CommandPath = slices.Clone(p.path)
	p.inner.Report(e)
}

// Close implements progress.Reporter.
func (p *pinnedReporter) Close() {}
