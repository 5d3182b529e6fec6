// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event represents a real-time update from a worker.
// Events are emitted throughout the worker lifecycle to drive the TUI and
// the console log listener.
type Event struct {
	CommandPath []string  // Hierarchical path to the command (e.g., ["import", "group 2/5"])
	Type        EventType // Event type indicating what happened
	Message     string    // Human-readable status message
	Timestamp   time.Time // When the event occurred
	Data        EventData // Type-specific data
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventStarted indicates a command has begun execution.
	EventStarted EventType = iota
	// EventRetrying indicates a failed attempt is about to be retried.
	EventRetrying
	// EventOutput indicates a new line of stdout/stderr output is available.
	EventOutput
	// EventCompleted indicates successful completion.
	EventCompleted
	// EventFailed indicates the command failed.
	EventFailed
	// EventSkipped indicates the command was not run.
	EventSkipped
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventStarted:
		return "started"
	case EventRetrying:
		return "retrying"
	case EventOutput:
		return "output"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// EventData contains type-specific information for progress events.
type EventData struct {
	// For EventOutput
	OutputLine string // The actual output line
	IsStderr   bool   // True if this is stderr output

	// For EventCompleted/EventFailed
	ExitCode int   // Command exit code
	Error    error // Error if the command failed

	// For EventRetrying, EventCompleted and EventFailed
	Attempt     int // The attempt that just finished, starting at 1
	MaxAttempts int // The configured number of tries

	// For EventStarted of a batch
	Total int // Number of workers in the batch
}

// Reporter is the interface for sending progress events.
type Reporter interface {
	// Report sends a progress event. Implementations must not block.
	Report(event Event)
	// Close signals that no more events will be sent and cleans up resources.
	Close()
}

// Listener receives progress events.
type Listener interface {
	// OnEvent is called for each event. It must return quickly.
	OnEvent(event Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

// OnEvent implements Listener.
func (f ListenerFunc) OnEvent(event Event) {
	f(event)
}

// NullReporter is a no-op implementation of Reporter.
type NullReporter struct{}

// Report implements Reporter.Report by doing nothing.
func (NullReporter) Report(Event) {}

// Close implements Reporter.Close by doing nothing.
func (NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return NullReporter{}
}
