// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs worker processes and Go functions, alone or in parallel batches,
// and collects their results into a tree.
//
// The building blocks are:
//
//   - OSCommand, a single operating system process with captured and bounded output;
//   - FunctionCommand, a Go function run as if it were a process;
//   - RetryCommand, which re-runs another Runnable until it succeeds or runs out of tries;
//   - ParallelBatch, which runs its children concurrently with an optional limit.
//
// Every Runnable may be given a progress.Reporter which receives lifecycle and output events.
// Results can be rendered as coloured text or persisted with encoding/gob.
package runbatch
