// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/mpcli/internal/progress"
	"github.com/matt-FFFFFF/mpcli/internal/runbatch"
)

const (
	reservedLines           = 9 // title, border, progress bar and help
	minStatusBarHeight      = 10
	minNameWidth            = 20
	durationRounding        = 100 * time.Millisecond
	ellipsis                = "..."
	outputColumnPadding     = 4
	minOutputColumnWidth    = 10
	maxNameColumnPercentage = 50
)

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.Event
}

// DispatchCompletedMsg indicates that the dispatch has returned.
type DispatchCompletedMsg struct {
	Results runbatch.Results
	Err     error
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.mutex.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-2, 1) //nolint:mnd
		m.viewport.Height = max(msg.Height-reservedLines, 1)
		m.mutex.Unlock()

		return m, nil

	case ProgressEventMsg:
		m.processProgressEvent(msg.Event)
		return m, nil

	case DispatchCompletedMsg:
		m.mutex.Lock()
		m.completed = true
		m.results = msg.Results
		m.err = msg.Err
		m.mutex.Unlock()

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var content strings.Builder

	for _, g := range m.groups {
		m.renderGroup(&content, g.snapshot())
	}

	if m.completed {
		content.WriteString("\n")

		switch {
		case m.err != nil || m.results.HasError():
			content.WriteString(m.styles.Failed.Render("⚠️  Dispatch completed with errors"))
		default:
			content.WriteString(m.styles.Success.Render("✅ Dispatch completed successfully"))
		}

		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("mpcli " + m.title))
	view.WriteString("\n")
	view.WriteString(m.styles.Border.Render(m.viewport.View()))
	view.WriteString("\n")
	view.WriteString(m.renderStatusBar())

	if m.height > minStatusBarHeight {
		helpText := "↑/↓ to scroll, 'q' to cancel and quit"
		if m.completed {
			helpText = "↑/↓ to scroll, 'q' to quit and return to terminal"
		}

		view.WriteString("\n")
		view.WriteString(m.styles.Help.Render(helpText))
	}

	return view.String()
}

// renderStatusBar renders the progress bar and group counts.
func (m *Model) renderStatusBar() string {
	finished, failed := m.counts()

	total := max(m.total, len(m.groups))

	pct := 1.0
	if total > 0 {
		pct = float64(finished) / float64(total)
	}

	status := fmt.Sprintf(" %d/%d groups", finished, total)
	if failed > 0 {
		status += m.styles.Failed.Render(fmt.Sprintf(" (%d failed)", failed))
	}

	return m.bar.ViewAs(pct) + status
}

// renderGroup renders a single group line with its last output or error.
func (m *Model) renderGroup(b *strings.Builder, g groupSnapshot) {
	var icon, name string

	switch g.Status {
	case StatusPending:
		icon = "⏳"
		name = m.styles.Pending.Render(g.Name)
	case StatusRunning:
		icon = m.spinner.View()
		name = m.styles.Running.Render(g.Name)
	case StatusRetrying:
		icon = "🔁"
		name = m.styles.Retrying.Render(g.Name)
	case StatusSuccess:
		icon = "✅"
		name = m.styles.Success.Render(g.Name)
	case StatusFailed:
		icon = "❌"
		name = m.styles.Failed.Render(g.Name)
	default:
		icon = "❓"
		name = m.styles.Pending.Render(g.Name)
	}

	left := icon + " " + name

	if g.MaxAttempts > 1 {
		left += m.styles.Output.Render(fmt.Sprintf(" [%d/%d]", max(g.Attempt, 1), g.MaxAttempts))
	}

	if g.StartTime != nil {
		elapsed := time.Since(*g.StartTime)
		if g.EndTime != nil {
			elapsed = g.EndTime.Sub(*g.StartTime)
		}

		left += m.styles.Output.Render(fmt.Sprintf(" (%v)", elapsed.Round(durationRounding)))
	}

	var right string

	switch {
	case g.ErrorMsg != "" && (g.Status == StatusFailed || g.Status == StatusRetrying):
		right = m.styles.Error.Render(truncate("Error: "+firstLine(g.ErrorMsg), m.outputWidth()))
	case g.LastOutput != "" && g.Status == StatusRunning:
		right = m.styles.Output.Render(truncate(g.LastOutput, m.outputWidth()))
	}

	nameWidth := max(m.viewport.Width*maxNameColumnPercentage/100, minNameWidth) //nolint:mnd
	if w := lipgloss.Width(left); w < nameWidth {
		left += strings.Repeat(" ", nameWidth-w)
	}

	b.WriteString(left)
	b.WriteString(right)
	b.WriteString("\n")
}

func (m *Model) outputWidth() int {
	nameWidth := max(m.viewport.Width*maxNameColumnPercentage/100, minNameWidth) //nolint:mnd
	return max(m.viewport.Width-nameWidth-outputColumnPadding, minOutputColumnWidth)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}

	if width <= len(ellipsis) {
		return string(r[:width])
	}

	return string(r[:width-len(ellipsis)]) + ellipsis
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
