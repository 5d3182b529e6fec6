// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"strings"
	"sync"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/mpcli/internal/progress"
	"github.com/matt-FFFFFF/mpcli/internal/runbatch"
)

// GroupStatus represents the current state of a group in the TUI.
type GroupStatus int

const (
	StatusPending GroupStatus = iota
	StatusRunning
	StatusRetrying
	StatusSuccess
	StatusFailed
)

// String returns a string representation of the group status.
func (s GroupStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusRetrying:
		return "retrying"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// GroupNode is one worker group in the display.
type GroupNode struct {
	Name        string      // Display name, e.g. "group 3/10"
	Status      GroupStatus // Current execution status
	Attempt     int         // Attempts finished so far
	MaxAttempts int         // Configured tries
	StartTime   *time.Time  // When the first attempt started
	EndTime     *time.Time  // When the group finished
	LastOutput  string      // Last line of output
	ErrorMsg    string      // Error of the last failed attempt
	mutex       sync.RWMutex
}

// NewGroupNode creates a pending group.
func NewGroupNode(name string) *GroupNode {
	return &GroupNode{
		Name:   name,
		Status: StatusPending,
	}
}

// UpdateStatus safely updates the group status and its timings.
func (g *GroupNode) UpdateStatus(status GroupStatus) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.Status = status
	now := time.Now()

	switch status {
	case StatusRunning, StatusRetrying:
		if g.StartTime == nil {
			g.StartTime = &now
		}
	case StatusSuccess, StatusFailed:
		if g.StartTime == nil {
			g.StartTime = &now
		}

		if g.EndTime == nil {
			g.EndTime = &now
		}
	}
}

// UpdateOutput safely updates the last output line.
func (g *GroupNode) UpdateOutput(output string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if output = strings.TrimSpace(output); output != "" {
		g.LastOutput = output
	}
}

// UpdateAttempt safely records attempt progress and the last error.
func (g *GroupNode) UpdateAttempt(attempt, maxAttempts int, errMsg string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if attempt > 0 {
		g.Attempt = attempt
	}

	if maxAttempts > 0 {
		g.MaxAttempts = maxAttempts
	}

	if errMsg != "" {
		g.ErrorMsg = errMsg
	}
}

// groupSnapshot is a copy of a GroupNode for rendering.
type groupSnapshot struct {
	Name        string
	Status      GroupStatus
	Attempt     int
	MaxAttempts int
	StartTime   *time.Time
	EndTime     *time.Time
	LastOutput  string
	ErrorMsg    string
}

func (g *GroupNode) snapshot() groupSnapshot {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return groupSnapshot{
		Name:        g.Name,
		Status:      g.Status,
		Attempt:     g.Attempt,
		MaxAttempts: g.MaxAttempts,
		StartTime:   g.StartTime,
		EndTime:     g.EndTime,
		LastOutput:  g.LastOutput,
		ErrorMsg:    g.ErrorMsg,
	}
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	title     string
	total     int                   // Number of groups announced by the batch
	groups    []*GroupNode          // In order of first appearance
	index     map[string]*GroupNode // By group name
	width     int
	height    int
	quitting  bool
	completed bool             // The dispatch has returned
	results   runbatch.Results // Final results
	err       error            // Final error
	mutex     sync.RWMutex

	spinner  spinner.Model
	bar      progressbar.Model
	viewport viewport.Model
	styles   *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title    lipgloss.Style
	Pending  lipgloss.Style
	Running  lipgloss.Style
	Retrying lipgloss.Style
	Success  lipgloss.Style
	Failed   lipgloss.Style
	Output   lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Border   lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Retrying: lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")),
	}
}

const (
	defaultWidth  = 80
	defaultHeight = 24
	barWidth      = 40
)

// NewModel creates a new TUI model.
func NewModel(ctx context.Context, title string) *Model {
	return &Model{
		ctx:      ctx,
		title:    title,
		index:    make(map[string]*GroupNode),
		width:    defaultWidth,
		height:   defaultHeight,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:      progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithWidth(barWidth)),
		viewport: viewport.New(defaultWidth-2, defaultHeight-reservedLines), //nolint:mnd
		styles:   NewStyles(),
	}
}

// getOrCreateGroup returns the group with the given name, creating it if needed.
func (m *Model) getOrCreateGroup(name string) *GroupNode {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if g, ok := m.index[name]; ok {
		return g
	}

	g := NewGroupNode(name)
	m.index[name] = g
	m.groups = append(m.groups, g)

	return g
}

// counts returns the number of finished and failed groups.
func (m *Model) counts() (finished, failed int) {
	for _, g := range m.groups {
		switch g.snapshot().Status {
		case StatusSuccess:
			finished++
		case StatusFailed:
			finished++
			failed++
		}
	}

	return finished, failed
}

// processProgressEvent handles incoming progress events.
// Paths of length one belong to the batch, longer paths to a group.
func (m *Model) processProgressEvent(event progress.Event) {
	switch len(event.CommandPath) {
	case 0:
		return
	case 1:
		if event.Type == progress.EventStarted {
			m.mutex.Lock()
			m.total = event.Data.Total
			m.mutex.Unlock()
		}

		return
	}

	g := m.getOrCreateGroup(event.CommandPath[1])

	var errMsg string
	if event.Data.Error != nil {
		errMsg = event.Data.Error.Error()
	}

	switch event.Type {
	case progress.EventStarted:
		g.UpdateAttempt(0, event.Data.MaxAttempts, "")
		g.UpdateStatus(StatusRunning)

	case progress.EventRetrying:
		g.UpdateAttempt(event.Data.Attempt, event.Data.MaxAttempts, errMsg)
		g.UpdateStatus(StatusRetrying)

	case progress.EventOutput:
		g.UpdateOutput(event.Data.OutputLine)

	case progress.EventCompleted:
		g.UpdateAttempt(event.Data.Attempt, event.Data.MaxAttempts, "")
		g.UpdateStatus(StatusSuccess)

	case progress.EventFailed:
		g.UpdateAttempt(event.Data.Attempt, event.Data.MaxAttempts, errMsg)
		g.UpdateStatus(StatusFailed)

	case progress.EventSkipped:
		g.UpdateStatus(StatusPending)
	}
}
