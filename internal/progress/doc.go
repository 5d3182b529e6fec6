// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries real-time worker events (start, retry, output, finish)
// from the runbatch commands to the TUI or the console log.
package progress
