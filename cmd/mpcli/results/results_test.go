// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package results

import (
	"bytes"
	"context"
	"testing"

	"github.com/matt-FFFFFF/mpcli/internal/color"
	"github.com/matt-FFFFFF/mpcli/internal/runbatch"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func savedResults() runbatch.Results {
	return runbatch.Results{{
		Label:    "cli",
		Status:   runbatch.ResultStatusError,
		ExitCode: -1,
		Error:    runbatch.ErrResultChildrenHasError,
		Children: runbatch.Results{
			{Label: "group 1/2", Status: runbatch.ResultStatusSuccess, StdOut: []byte("done\n"), Attempts: 1},
			{
				Label:    "group 2/2",
				Status:   runbatch.ResultStatusError,
				ExitCode: 2,
				Attempts: 2,
				Error:    runbatch.ErrRetriesExhausted,
				StdErr:   []byte("no such object\n"),
				Args:     []string{"omero", "delete", "Image:2"},
			},
		},
	}}
}

func runShow(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()

	stubs := gostub.StubFunc(&fsFactory, fs)
	t.Cleanup(stubs.Reset)

	prev := color.Enabled()
	color.SetEnabled(false)
	t.Cleanup(func() { color.SetEnabled(prev) })

	out := new(bytes.Buffer)
	root := &cli.Command{
		Name:           "mpcli",
		Commands:       []*cli.Command{newResultsCmd()},
		Writer:         out,
		ErrWriter:      new(bytes.Buffer),
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	err := root.Run(context.Background(), append([]string{"mpcli", "results", "show"}, args...))

	return out.String(), err
}

func writeSaved(t *testing.T, fs afero.Fs, name string) {
	t.Helper()

	f, err := fs.Create(name)
	require.NoError(t, err)

	require.NoError(t, savedResults().WriteBinary(f))
	require.NoError(t, f.Close())
}

func TestShow(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSaved(t, fs, "/results.gob")

	out, err := runShow(t, fs, "--show-args", "/results.gob")
	require.NoError(t, err)

	assert.Contains(t, out, "✗ cli")
	assert.Contains(t, out, "✓ group 1/2")
	assert.Contains(t, out, "✗ group 2/2 (exit code: 2) (attempts: 2)")
	assert.Contains(t, out, "➜ Command: omero delete Image:2")
	assert.Contains(t, out, "no such object")
	assert.NotContains(t, out, "done")
}

func TestShow_IncludeStdOut(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSaved(t, fs, "/results.gob")

	out, err := runShow(t, fs, "--stdout", "--success", "--no-stderr", "/results.gob")
	require.NoError(t, err)

	assert.Contains(t, out, "done")
	assert.NotContains(t, out, "no such object")
}

func TestShow_FailedExitCode(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSaved(t, fs, "/results.gob")

	_, err := runShow(t, fs, "--failed", "/results.gob")
	require.Error(t, err)

	var exitErr cli.ExitCoder

	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
}

func TestShow_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		setup   func(fs afero.Fs)
		args    []string
		wantErr error
	}{
		{
			name:    "no file argument",
			wantErr: ErrNoFile,
		},
		{
			name:    "missing file",
			args:    []string{"/missing.gob"},
			wantErr: ErrReadFile,
		},
		{
			name: "not a results file",
			setup: func(fs afero.Fs) {
				_ = afero.WriteFile(fs, "/garbage.gob", []byte("not gob"), 0o644)
			},
			args:    []string{"/garbage.gob"},
			wantErr: runbatch.ErrReadGob,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tc.setup != nil {
				tc.setup(fs)
			}

			_, err := runShow(t, fs, tc.args...)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
