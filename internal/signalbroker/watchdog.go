// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/mpcli/internal/ctxlog"
)

// Watch monitors the signal channel.
// It cancels the context on the second signal of a given type and returns when the context is done.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Warn(ctx, "received second signal of type, cancelling all workers", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Warn(ctx, "received signal, forwarding to workers; repeat to abort", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
