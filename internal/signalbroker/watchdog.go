// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/optrack/internal/ctxlog"
)

// Watch monitors sigCh until ctx is done or the channel is closed.
// The first signal of a type calls soft, normally a tracker cancel press.
// The second signal of the same type calls cancel and returns.
func Watch(ctx context.Context, sigCh <-chan os.Signal, soft func(os.Signal), cancel context.CancelFunc) {
	sigMap := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, seen := sigMap[sig]; seen {
				ctxlog.Logger(ctx).Info("watchdog", "detail", "received second signal of type, forcefully terminating", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Logger(ctx).Info("watchdog", "detail", "received first signal of type, requesting cancellation", "signal", sig.String())

			sigMap[sig] = struct{}{}

			if soft != nil {
				soft(sig)
			}
		}
	}
}
