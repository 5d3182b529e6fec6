// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/matt-FFFFFF/mpcli/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestParallelBatchRun_AllSuccess(t *testing.T) {
	defer goleak.VerifyNone(t)

	batch := NewParallelBatch(NewBaseCommand("parallel-batch-success", "", nil), 0,
		newFakeCmd("cmd1", 0, 10*time.Millisecond),
		newFakeCmd("cmd2", 0, 20*time.Millisecond),
	)

	results := batch.Run(context.Background())
	require.Len(t, results, 1)
	require.NoError(t, results[0].Error)
	assert.Equal(t, ResultStatusSuccess, results[0].Status)
	assert.Len(t, results[0].Children, 2)
}

func TestParallelBatchRun_ChildFails(t *testing.T) {
	defer goleak.VerifyNone(t)

	batch := NewParallelBatch(NewBaseCommand("parallel-batch-fail", "", nil), 0,
		newFakeCmd("ok", 0, 0),
		newFakeCmd("bad", 1, 0),
	)

	res := batch.Run(context.Background())[0]
	require.ErrorIs(t, res.Error, ErrResultChildrenHasError)
	assert.Equal(t, ResultStatusError, res.Status)
	assert.Equal(t, -1, res.ExitCode)
	assert.Equal(t, ResultStatusSuccess, res.Children[0].Status)
	assert.Equal(t, ResultStatusError, res.Children[1].Status)
}

func TestParallelBatchRun_ResultsInCommandOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	const n = 5

	cmds := make([]Runnable, 0, n)
	for i := range n {
		// Later commands finish first.
		cmds = append(cmds, newFakeCmd(fmt.Sprintf("group %d/%d", i+1, n), 0, time.Duration(n-i)*10*time.Millisecond))
	}

	res := NewParallelBatch(nil, 0, cmds...).Run(context.Background())[0]
	require.Len(t, res.Children, n)

	for i, c := range res.Children {
		assert.Equal(t, fmt.Sprintf("group %d/%d", i+1, n), c.Label)
	}
}

func TestParallelBatchRun_Limit(t *testing.T) {
	defer goleak.VerifyNone(t)

	gauge := &concurrencyGauge{}
	cmds := make([]Runnable, 0, 8)

	for i := range 8 {
		c := newFakeCmd(fmt.Sprintf("cmd%d", i), 0, 20*time.Millisecond)
		c.gauge = gauge
		cmds = append(cmds, c)
	}

	res := NewParallelBatch(nil, 2, cmds...).Run(context.Background())[0]
	require.NoError(t, res.Error)
	assert.Len(t, res.Children, 8)
	assert.LessOrEqual(t, gauge.peak.Load(), int32(2))
	assert.Positive(t, gauge.peak.Load())
}

func TestParallelBatchRun_EnvAndReporterPropagate(t *testing.T) {
	child := newFakeCmd("child", 0, 0)
	batch := NewParallelBatch(NewBaseCommand("batch", "", map[string]string{"MPCLI_SESSION_KEY": "abc"}), 0, child)
	rep := newRecordingReporter()
	batch.SetProgressReporter(rep)

	res := batch.Run(context.Background())[0]
	require.NoError(t, res.Error)

	assert.Equal(t, "abc", child.Env["MPCLI_SESSION_KEY"])
	assert.Equal(t, rep, child.GetProgressReporter())
	assert.Equal(t, []progress.EventType{progress.EventStarted, progress.EventCompleted}, rep.types())
}
