// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matt-FFFFFF/optrack/internal/clock"
	"github.com/matt-FFFFFF/optrack/internal/ctxlog"
	"github.com/matt-FFFFFF/optrack/internal/progress"
)

// CancelHook is asked to stop the tracked operation when the user presses cancel.
type CancelHook interface {
	Cancel()
}

// CancelFunc adapts a plain function, typically a context.CancelFunc, to CancelHook.
type CancelFunc func()

// Cancel implements CancelHook.
func (f CancelFunc) Cancel() {
	f()
}

// Option configures a Tracker.
type Option func(t *Tracker)

// WithCancelHook sets the hook invoked by Cancel.
// Without a hook the cancel affordance is never offered.
func WithCancelHook(hook CancelHook) Option {
	return func(t *Tracker) {
		t.hook = hook
	}
}

// WithConfig overrides the tunables. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(t *Tracker) {
		t.cfg = cfg.WithDefaults()
	}
}

// WithClock replaces the system clock, used by tests to drive ticks.
func WithClock(c clock.Clock) Option {
	return func(t *Tracker) {
		t.clock = c
	}
}

// Tracker is the progress and cancellation controller for one operation.
// All methods are safe for concurrent use. Apart from Cancel, they report
// events while holding the tracker lock and so must not be called from the
// goroutine that consumes the reporter's events.
type Tracker struct {
	label    string
	reporter progress.Reporter
	hook     CancelHook
	clock    clock.Clock
	cfg      Config

	cancelEnabled atomic.Bool
	cancelled     atomic.Bool
	finished      atomic.Bool

	mu         sync.Mutex
	ctx        context.Context
	state      State
	timeout    time.Duration
	elapsed    time.Duration
	wall       time.Duration
	watchdogAt time.Duration
	shown      bool
	overrun    bool
	ticking    bool
	stopped    bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

// New creates an idle tracker that reports to reporter.
// A nil reporter discards every event.
func New(label string, reporter progress.Reporter, opts ...Option) *Tracker {
	if reporter == nil {
		reporter = progress.NewNullReporter()
	}

	t := &Tracker{
		label:    label,
		reporter: reporter,
		clock:    clock.System{},
		cfg:      DefaultConfig(),
		ctx:      context.Background(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(t)
	}

	t.cancelEnabled.Store(t.hook != nil)

	return t
}

// Start moves the tracker from idle to running and spawns the ticking goroutine.
// A non-positive timeout is replaced by Config.DefaultTimeout.
// Calling Start while the goroutine is active only resets the elapsed and
// wall clock counters. Start on a completed or stopped tracker does nothing.
func (t *Tracker) Start(ctx context.Context, timeout time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Terminal() || t.stopped {
		return
	}

	if t.ticking {
		t.logger().Debug("tracker restarted", "elapsed", t.elapsed, "wallClock", t.wall)
		t.elapsed = 0
		t.wall = 0
		t.watchdogAt = t.cfg.WatchdogThreshold

		if t.overrun {
			t.overrun = false

			if t.state == StateRunning {
				t.emitLocked(progress.Event{Type: progress.EventIndeterminate, Enabled: false})
			}
		}

		return
	}

	if timeout <= 0 {
		timeout = t.cfg.DefaultTimeout
	}

	if ctx != nil {
		t.ctx = ctx
	}

	t.timeout = timeout
	t.state = StateRunning
	t.ticking = true
	t.watchdogAt = t.cfg.WatchdogThreshold

	t.logger().Debug("tracker started", "timeout", timeout, "tick", t.cfg.TickInterval)

	t.emitLocked(progress.Event{
		Type:    progress.EventCancelAffordance,
		Enabled: t.hook != nil && t.cancelEnabled.Load(),
	})

	go t.run(t.clock.NewTicker(t.cfg.TickInterval))
}

// Hold freezes progress and switches the indicator to indeterminate mode.
// It is used around sub-steps whose duration cannot be estimated.
func (t *Tracker) Hold() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return
	}

	t.state = StateHeld
	t.emitLocked(progress.Event{Type: progress.EventIndeterminate, Enabled: true})
}

// Resume continues progress from where Hold froze it.
func (t *Tracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateHeld {
		return
	}

	t.state = StateRunning

	if !t.overrun {
		t.emitLocked(progress.Event{Type: progress.EventIndeterminate, Enabled: false})
	}
}

// CompleteOK finishes the tracker successfully and shows a full-scale value.
func (t *Tracker) CompleteOK() {
	t.complete(StateDone, t.cfg.ScaleMax)
}

// CompleteError finishes the tracker as failed and resets the value to zero.
func (t *Tracker) CompleteError() {
	t.complete(StateDoneError, 0)
}

// CompleteOKHidden is CompleteOK followed, after Config.HideDelay, by hiding the indicator.
// It blocks the caller for the hide delay.
func (t *Tracker) CompleteOKHidden() {
	t.completeHidden(StateDone, t.cfg.ScaleMax)
}

// CompleteErrorHidden is CompleteError followed, after Config.HideDelay, by hiding the indicator.
// It blocks the caller for the hide delay.
func (t *Tracker) CompleteErrorHidden() {
	t.completeHidden(StateDoneError, 0)
}

// SetCancelEnabled toggles whether a cancel press is honoured.
func (t *Tracker) SetCancelEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Terminal() {
		return
	}

	t.cancelEnabled.Store(enabled)
	t.emitLocked(progress.Event{
		Type:    progress.EventCancelAffordance,
		Enabled: enabled && t.hook != nil,
	})
}

// Cancel is the user's cancel press. It invokes the cancel hook when one is
// present, cancelling is enabled and the tracker has not finished. The hook
// runs at most once per tracker; later presses return false.
// Cancel does not change the tracker state: the cancelled operation is
// expected to call one of the Complete methods.
func (t *Tracker) Cancel() bool {
	if t.hook == nil || !t.cancelEnabled.Load() || t.finished.Load() {
		return false
	}

	if !t.cancelled.CompareAndSwap(false, true) {
		return false
	}

	t.hook.Cancel()

	return true
}

// Cancelled reports whether the cancel hook has been invoked.
func (t *Tracker) Cancelled() bool {
	return t.cancelled.Load()
}

// Stop terminates the ticking goroutine without a terminal transition and
// waits for it to exit. No event is reported. It exists for owners that are
// shutting down and for tests, so that a tracker whose operation never
// completes does not outlive them.
func (t *Tracker) Stop() {
	t.mu.Lock()
	t.stopped = true
	ticking := t.ticking
	t.mu.Unlock()

	t.stopOnce.Do(func() { close(t.stop) })

	if !ticking {
		t.doneOnce.Do(func() { close(t.done) })
	}

	<-t.done
}

// Done returns a channel that is closed once the ticking goroutine has exited,
// or once an unstarted tracker is completed or stopped.
func (t *Tracker) Done() <-chan struct{} {
	return t.done
}

// Label returns the tracker's label.
func (t *Tracker) Label() string {
	return t.label
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// Timeout returns the expected duration progress is scaled against.
func (t *Tracker) Timeout() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.timeout
}

// Elapsed returns the time accumulated while running.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.elapsed
}

// WallClock returns the total time since Start, including held time.
func (t *Tracker) WallClock() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.wall
}

func (t *Tracker) run(ticker clock.Ticker) {
	defer t.doneOnce.Do(func() { close(t.done) })
	defer ticker.Stop()
	defer func() {
		if r := recover(); r != nil {
			t.logger().Error("tracker ticking goroutine panicked", "panic", r)
		}
	}()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C():
			if !t.advance() {
				return
			}
		}
	}
}

// advance performs one tick. It returns false once the tracker is finished.
func (t *Tracker) advance() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Terminal() || t.stopped {
		return false
	}

	tick := t.cfg.TickInterval
	t.wall += tick

	if !t.shown && t.wall > t.cfg.DisplayDelay {
		t.shown = true
		t.emitLocked(progress.Event{Type: progress.EventVisible, Enabled: true})
	}

	if t.state == StateRunning {
		t.elapsed += tick

		if t.elapsed >= t.timeout {
			t.overrun = true
			t.emitLocked(progress.Event{Type: progress.EventIndeterminate, Enabled: true})
		} else {
			t.emitLocked(progress.Event{
				Type:  progress.EventValue,
				Value: scale(t.elapsed, t.timeout, t.cfg.ScaleMax),
			})
		}
	}

	if t.wall > t.watchdogAt {
		msg := fmt.Sprintf("operation %q has been running for %s", t.label, t.wall)
		t.logger().Warn("watchdog", "detail", msg, "timeout", t.timeout)
		t.emitLocked(progress.Event{Type: progress.EventWatchdog, Message: msg})
		t.watchdogAt += t.cfg.WatchdogThreshold
	}

	return true
}

// complete performs the terminal transition. It returns false if the tracker
// had already finished.
func (t *Tracker) complete(final State, value int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Terminal() {
		return false
	}

	t.logger().Debug("tracker completed", "state", final.String(), "elapsed", t.elapsed, "wallClock", t.wall)

	t.state = final
	t.finished.Store(true)
	t.cancelEnabled.Store(false)
	t.emitLocked(progress.Event{Type: progress.EventCancelAffordance, Enabled: false})
	t.emitLocked(progress.Event{Type: progress.EventValue, Value: value})

	t.stopOnce.Do(func() { close(t.stop) })

	if !t.ticking {
		t.doneOnce.Do(func() { close(t.done) })
	}

	return true
}

func (t *Tracker) completeHidden(final State, value int) {
	if !t.complete(final, value) {
		return
	}

	<-t.clock.After(t.cfg.HideDelay)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.emitLocked(progress.Event{Type: progress.EventVisible, Enabled: false})
}

func (t *Tracker) emitLocked(event progress.Event) {
	event.Tracker = t.label
	event.Timestamp = time.Now()
	t.reporter.Report(event)
}

func (t *Tracker) logger() *slog.Logger {
	return ctxlog.Logger(t.ctx).With("tracker", t.label)
}

// scale converts elapsed time into a progress value in [0, max].
func scale(elapsed, timeout time.Duration, maxValue int) int {
	if timeout <= 0 {
		return 0
	}

	v := int(math.Round(float64(elapsed) * float64(maxValue) / float64(timeout)))

	return min(max(v, 0), maxValue)
}
