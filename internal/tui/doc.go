// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a real-time Terminal User Interface (TUI) for monitoring
// a dispatch. It shows one line per group with a status indicator, the attempt
// number, the elapsed time and the last output line of running workers, above
// an overall progress bar.
//
// The TUI is fed by the progress event system through a TUIReporter.
package tui
