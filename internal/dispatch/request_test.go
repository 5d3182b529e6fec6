// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"testing"
	"time"

	"github.com/matt-FFFFFF/mpcli/internal/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name: "cli ok",
			req:  Request{Mode: ModeCLI, Common: []string{"tag", "link"}, GroupSize: 1},
		},
		{
			name: "script ok",
			req:  Request{Mode: ModeScript, Script: "./s.py", GroupSize: 3},
		},
		{
			name:    "unknown mode",
			req:     Request{Mode: "batch", GroupSize: 1},
			wantErr: ErrUnknownMode,
		},
		{
			name:    "cli without command",
			req:     Request{Mode: ModeCLI, GroupSize: 1},
			wantErr: ErrNoCommand,
		},
		{
			name:    "script without script",
			req:     Request{Mode: ModeScript, GroupSize: 1},
			wantErr: ErrNoScript,
		},
		{
			name:    "zero group size",
			req:     Request{Mode: ModeCLI, Common: []string{"x"}},
			wantErr: partition.ErrInvalidGroupSize,
		},
		{
			name:    "negative delay",
			req:     Request{Mode: ModeCLI, Common: []string{"x"}, GroupSize: 1, RetryDelay: -time.Second},
			wantErr: ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrInvalidRequest)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
