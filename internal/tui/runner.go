// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/mpcli/internal/progress"
	"github.com/matt-FFFFFF/mpcli/internal/runbatch"
)

var _ progress.Reporter = (*TUIReporter)(nil)

// RunFunc performs the work displayed by the TUI, reporting progress to reporter.
type RunFunc func(ctx context.Context, reporter progress.Reporter) (runbatch.Results, error)

// Runner manages the TUI application and progress event integration.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *TUIReporter
	mutex    sync.Mutex
}

// TUIReporter implements progress.Reporter and forwards events to the TUI.
type TUIReporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewTUIReporter creates a new TUI progress reporter.
func NewTUIReporter(program *tea.Program) *TUIReporter {
	return &TUIReporter{
		program: program,
	}
}

// Report implements progress.Reporter.
func (tr *TUIReporter) Report(event progress.Event) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	tr.program.Send(ProgressEventMsg{Event: event})
}

// Close implements progress.Reporter.
func (tr *TUIReporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	tr.closed = true
}

// NewRunner creates a new TUI runner. Options are passed to the bubbletea program.
func NewRunner(ctx context.Context, title string, opts ...tea.ProgramOption) *Runner {
	model := NewModel(ctx, title)
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	return &Runner{
		model:    model,
		program:  program,
		reporter: NewTUIReporter(program),
	}
}

// Reporter returns the progress reporter for this runner.
func (r *Runner) Reporter() progress.Reporter {
	return r.reporter
}

// Run starts the TUI and fn. When fn returns the TUI stays open until the user quits.
// Quitting the TUI early cancels the context passed to fn and waits for it to return.
func (r *Runner) Run(ctx context.Context, fn RunFunc) (runbatch.Results, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		results runbatch.Results
		err     error
	}

	resultChan := make(chan outcome, 1)

	go func() {
		res, err := fn(runCtx, r.reporter)
		resultChan <- outcome{results: res, err: err}
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var (
		out    outcome
		tuiErr error
	)

	select {
	case out = <-resultChan:
		r.program.Send(DispatchCompletedMsg{Results: out.results, Err: out.err})

		tuiErr = <-tuiDone

		r.reporter.Close()

	case tuiErr = <-tuiDone:
		r.reporter.Close()
		cancel()

		out = <-resultChan

	case <-ctx.Done():
		r.reporter.Close()
		r.program.Quit()

		out = <-resultChan
		<-tuiDone
	}

	if out.err == nil && tuiErr != nil {
		out.err = tuiErr
	}

	return out.results, out.err
}
