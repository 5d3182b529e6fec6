// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var errFunctionTest = errors.New("function test error")

func TestFunctionCommand(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name       string
		fn         FunctionCommandFunc
		wantErr    error
		wantStatus ResultStatus
		wantOut    string
	}{
		{
			name:       "nil function succeeds",
			wantStatus: ResultStatusSuccess,
		},
		{
			name: "output recorded",
			fn: func(context.Context) FunctionCommandReturn {
				return FunctionCommandReturn{StdOut: []byte("dry run\n")}
			},
			wantStatus: ResultStatusSuccess,
			wantOut:    "dry run\n",
		},
		{
			name: "error",
			fn: func(context.Context) FunctionCommandReturn {
				return FunctionCommandReturn{Err: errFunctionTest}
			},
			wantErr:    errFunctionTest,
			wantStatus: ResultStatusError,
		},
		{
			name: "panic with error",
			fn: func(context.Context) FunctionCommandReturn {
				panic(errFunctionTest)
			},
			wantErr:    errFunctionTest,
			wantStatus: ResultStatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFunctionCommand(NewBaseCommand(tt.name, "", nil), tt.fn)

			res := f.Run(context.Background())[0]
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantOut, string(res.StdOut))

			if tt.wantErr == nil {
				require.NoError(t, res.Error)
				return
			}

			require.ErrorIs(t, res.Error, tt.wantErr)
			assert.Equal(t, -1, res.ExitCode)
		})
	}
}

func TestFunctionCommand_PanicValue(t *testing.T) {
	f := NewFunctionCommand(nil, func(context.Context) FunctionCommandReturn {
		panic("oh no")
	})

	res := f.Run(context.Background())[0]

	var panicErr *ErrFunctionCmdPanic

	require.ErrorAs(t, res.Error, &panicErr)
	assert.Equal(t, "function command panic: oh no", res.Error.Error())
}

func TestFunctionCommand_ContextCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	f := NewFunctionCommand(nil, func(ctx context.Context) FunctionCommandReturn {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)

		return FunctionCommandReturn{}
	})

	res := f.Run(ctx)[0]
	require.ErrorIs(t, res.Error, context.DeadlineExceeded)
	assert.Equal(t, ResultStatusError, res.Status)

	// Let the function goroutine finish before the leak check.
	time.Sleep(50 * time.Millisecond)
}
