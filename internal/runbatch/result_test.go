// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"errors"
	"testing"

	"github.com/matt-FFFFFF/mpcli/internal/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsHasError(t *testing.T) {
	tests := []struct {
		name    string
		results Results
		want    bool
	}{
		{name: "empty", results: Results{}, want: false},
		{name: "success", results: Results{{Status: ResultStatusSuccess}}, want: false},
		{name: "exit code", results: Results{{ExitCode: 1}}, want: true},
		{name: "error", results: Results{{Error: errors.New("x")}}, want: true}, //nolint:err113
		{name: "status", results: Results{{Status: ResultStatusError}}, want: true},
		{
			name: "nested child",
			results: Results{{
				Status:   ResultStatusSuccess,
				Children: Results{{Status: ResultStatusSuccess}, {ExitCode: 2}},
			}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.results.HasError())
		})
	}
}

func TestResultsBinaryRoundTrip(t *testing.T) {
	in := Results{{
		Label:  "cli",
		Status: ResultStatusError,
		Error:  ErrResultChildrenHasError,
		Children: Results{
			{Label: "group 1/2", Status: ResultStatusSuccess, StdOut: []byte("ok\n"), Attempts: 1, Args: []string{"omero", "tag", "1"}},
			{Label: "group 2/2", Status: ResultStatusError, ExitCode: 1, Attempts: 3, Error: errors.Join(errors.New("boom"), ErrRetriesExhausted)}, //nolint:err113
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, in.WriteBinary(&buf))

	out, err := ReadBinary(&buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Children, 2)

	assert.Equal(t, in[0].Error.Error(), out[0].Error.Error())
	assert.Equal(t, []string{"omero", "tag", "1"}, out[0].Children[0].Args)
	assert.Equal(t, "ok\n", string(out[0].Children[0].StdOut))
	assert.NoError(t, out[0].Children[0].Error)
	assert.Equal(t, 3, out[0].Children[1].Attempts)
	assert.Equal(t, "boom\nretries exhausted", out[0].Children[1].Error.Error())
	assert.True(t, out.HasError())
}

func TestReadBinary_Garbage(t *testing.T) {
	_, err := ReadBinary(bytes.NewReader([]byte("not gob")))
	require.ErrorIs(t, err, ErrReadGob)
}

func TestWriteTextWithOptions(t *testing.T) {
	prev := color.Enabled()
	color.SetEnabled(false)
	t.Cleanup(func() { color.SetEnabled(prev) })

	results := Results{{
		Label:  "cli",
		Status: ResultStatusError,
		Error:  ErrResultChildrenHasError,
		Children: Results{
			{Label: "group 1/2", Status: ResultStatusSuccess, StdOut: []byte("ok\n"), Attempts: 1},
			{
				Label:    "group 2/2",
				Status:   ResultStatusError,
				ExitCode: 1,
				Attempts: 3,
				Error:    ErrRetriesExhausted,
				StdErr:   []byte("boom\n"),
				Args:     []string{"omero", "tag", "2"},
			},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, results.WriteTextWithOptions(&buf, &OutputOptions{IncludeStdErr: true, ShowArgs: true}))

	out := buf.String()
	assert.Contains(t, out, "✗ cli\n")
	assert.NotContains(t, out, "result has children with errors")
	assert.Contains(t, out, "  ✓ group 1/2\n")
	assert.Contains(t, out, "  ✗ group 2/2 (exit code: 1) (attempts: 3)\n")
	assert.Contains(t, out, "    ➜ Error: retries exhausted\n")
	assert.Contains(t, out, "    ➜ Command: omero tag 2\n")
	assert.Contains(t, out, "       boom\n")
	assert.NotContains(t, out, "ok")
}
