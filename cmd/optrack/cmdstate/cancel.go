// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdstate carries state shared between main and the subcommands.
// The signal watcher is started in main before any operation exists, so the
// operation to cancel is registered here once a subcommand creates it.
package cmdstate

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/matt-FFFFFF/optrack/internal/ctxlog"
)

// CancelTargetKey is the context key for the process-wide CancelTarget.
type CancelTargetKey struct{}

// CancelTarget forwards the first termination signal to the running operation's cancel press.
type CancelTarget struct {
	fn atomic.Pointer[func() bool]
}

// Set registers the cancel press of the running operation. A nil fn clears it.
func (c *CancelTarget) Set(fn func() bool) {
	if fn == nil {
		c.fn.Store(nil)
		return
	}

	c.fn.Store(&fn)
}

// Press presses cancel on the registered operation and reports whether its hook fired.
func (c *CancelTarget) Press(ctx context.Context, sig os.Signal) bool {
	fn := c.fn.Load()
	if fn == nil {
		ctxlog.Debug(ctx, "signal received with no running operation", "signal", sig.String())
		return false
	}

	pressed := (*fn)()
	if !pressed {
		ctxlog.Info(ctx, "operation cannot be cancelled right now, send the signal again to terminate", "signal", sig.String())
	}

	return pressed
}

// WithCancelTarget stores target in ctx.
func WithCancelTarget(ctx context.Context, target *CancelTarget) context.Context {
	return context.WithValue(ctx, CancelTargetKey{}, target)
}

// CancelTargetFrom returns the target stored in ctx, or a new unshared one.
func CancelTargetFrom(ctx context.Context) *CancelTarget {
	if t, ok := ctx.Value(CancelTargetKey{}).(*CancelTarget); ok && t != nil {
		return t
	}

	return &CancelTarget{}
}
