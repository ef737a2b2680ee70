// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package operation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matt-FFFFFF/optrack/internal/ctxlog"
	"github.com/matt-FFFFFF/optrack/internal/progress"
	"github.com/matt-FFFFFF/optrack/internal/tracker"
)

// Step lets a running function steer its own tracker.
// Hold and Resume bracket sub-steps of unknown duration, such as waiting for
// user input. SetCancelEnabled marks sections that must not be interrupted.
type Step interface {
	Hold()
	Resume()
	SetCancelEnabled(enabled bool)
}

// Func is the blocking work of an operation. It must return promptly once ctx is done.
type Func func(ctx context.Context, step Step) error

// Option configures an Operation.
type Option func(o *Operation)

// WithHideOnComplete hides the indicator after the tracker's hide delay once the operation ends.
func WithHideOnComplete() Option {
	return func(o *Operation) {
		o.hide = true
	}
}

// WithTrackerOptions passes options through to the underlying tracker.
func WithTrackerOptions(opts ...tracker.Option) Option {
	return func(o *Operation) {
		o.trackerOpts = append(o.trackerOpts, opts...)
	}
}

// Operation is a blocking function tracked for progress and cancellation.
type Operation struct {
	label       string
	timeout     time.Duration
	fn          Func
	hide        bool
	trackerOpts []tracker.Option
	tracker     *tracker.Tracker

	mu              sync.Mutex
	cancel          context.CancelFunc
	cancelRequested bool
}

// New creates an operation. A non-positive timeout uses the tracker's default.
func New(label string, timeout time.Duration, fn Func, reporter progress.Reporter, opts ...Option) *Operation {
	o := &Operation{
		label:   label,
		timeout: timeout,
		fn:      fn,
	}

	for _, opt := range opts {
		opt(o)
	}

	trackerOpts := append([]tracker.Option{
		tracker.WithCancelHook(tracker.CancelFunc(o.requestCancel)),
	}, o.trackerOpts...)

	o.tracker = tracker.New(label, reporter, trackerOpts...)

	return o
}

// Label returns the operation label.
func (o *Operation) Label() string {
	return o.label
}

// Tracker returns the tracker driving this operation's indicator.
func (o *Operation) Tracker() *tracker.Tracker {
	return o.tracker
}

// Cancel presses cancel on the operation's tracker. It is safe to call from
// the goroutine that owns the sink.
func (o *Operation) Cancel() bool {
	return o.tracker.Cancel()
}

// Run starts the tracker, runs the function and completes the tracker with
// the outcome. The returned error wraps ErrCancelled when the user cancelled.
// Run returns when ctx is done even if the function has not yet returned.
func (o *Operation) Run(ctx context.Context) error {
	logger := ctxlog.Logger(ctx).With("operation", o.label)

	if o.fn == nil {
		logger.Debug("no function to run, returning success")
		o.finish(nil)

		return nil
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.mu.Lock()
	o.cancel = cancel

	if o.cancelRequested {
		cancel()
	}
	o.mu.Unlock()

	o.tracker.Start(ctx, o.timeout)

	errCh := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("operation panicked", "panic", r)
				errCh <- NewErrPanic(r)
			}
		}()

		errCh <- o.fn(opCtx, o.tracker)
	}()

	var err error

	select {
	case err = <-errCh:
		logger.Debug("operation function returned", "error", err)
	case <-ctx.Done():
		logger.Info("context done before operation returned", "error", ctx.Err())
		err = ctx.Err()
	}

	if err != nil && o.tracker.Cancelled() {
		err = errors.Join(ErrCancelled, err)
	}

	o.finish(err)

	return err
}

func (o *Operation) finish(err error) {
	switch {
	case err == nil && o.hide:
		o.tracker.CompleteOKHidden()
	case err == nil:
		o.tracker.CompleteOK()
	case o.hide:
		o.tracker.CompleteErrorHidden()
	default:
		o.tracker.CompleteError()
	}
}

func (o *Operation) requestCancel() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cancelRequested = true

	if o.cancel != nil {
		o.cancel()
	}
}
