// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/optrack/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newManualTracker(t *testing.T, opts ...Option) (*Tracker, *recorder, *manualClock) {
	t.Helper()

	rec := &recorder{}
	clk := &manualClock{}
	tr := New("test", rec, append([]Option{WithClock(clk)}, opts...)...)

	return tr, rec, clk
}

// advance delivers n ticks and waits until the tracker has processed all of them.
func advance(t *testing.T, tr *Tracker, clk *manualClock, n int) {
	t.Helper()

	tk := clk.ticker()
	require.NotNil(t, tk, "tracker has not been started")

	want := tr.WallClock() + time.Duration(n)*tk.period
	require.Equal(t, n, tk.tick(n), "ticking goroutine stopped accepting ticks")
	require.Eventually(t, func() bool {
		return tr.WallClock() == want
	}, time.Second, time.Millisecond)
}

func TestTracker_ProgressSequence(t *testing.T) {
	defer goleak.VerifyNone(t)

	tr, rec, clk := newManualTracker(t)
	tr.Start(context.Background(), time.Second)
	assert.Equal(t, StateRunning, tr.State())

	advance(t, tr, clk, 5)

	assert.Equal(t, []int{10, 20, 30, 40, 50}, rec.values())
	assert.Equal(t, 500*time.Millisecond, tr.Elapsed())

	tr.CompleteOK()
	<-tr.Done()

	assert.Equal(t, StateDone, tr.State())
	assert.Equal(t, progress.Event{Tracker: "test", Type: progress.EventValue, Value: 100}, withoutTime(rec.last()))

	// the ticking goroutine has exited: no tick is accepted and nothing follows
	n := rec.count()
	assert.Equal(t, 0, clk.ticker().tick(1))
	assert.Equal(t, n, rec.count())
	assert.True(t, clk.ticker().stopped.Load())
}

func TestTracker_StartZeroUsesDefaultTimeout(t *testing.T) {
	tr, rec, clk := newManualTracker(t)
	defer tr.Stop()

	tr.Start(context.Background(), 0)
	assert.Equal(t, DefaultTimeout, tr.Timeout())

	advance(t, tr, clk, 5)

	// 100ms steps against 50s: 0.2, 0.4, 0.6, 0.8, 1.0
	assert.Equal(t, []int{0, 0, 1, 1, 1}, rec.values())
}

func TestTracker_StartNegativeUsesConfiguredDefault(t *testing.T) {
	tr, _, _ := newManualTracker(t, WithConfig(Config{DefaultTimeout: 2 * time.Second}))
	defer tr.Stop()

	tr.Start(context.Background(), -time.Second)

	assert.Equal(t, 2*time.Second, tr.Timeout())
}

func TestScale(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		timeout  time.Duration
		maxValue int
		expected int
	}{
		{name: "zero elapsed", elapsed: 0, timeout: time.Second, maxValue: 100, expected: 0},
		{name: "half way", elapsed: 500 * time.Millisecond, timeout: time.Second, maxValue: 100, expected: 50},
		{name: "rounds down", elapsed: 100 * time.Millisecond, timeout: 3 * time.Second, maxValue: 100, expected: 3},
		{name: "rounds up", elapsed: 200 * time.Millisecond, timeout: 3 * time.Second, maxValue: 100, expected: 7},
		{name: "full scale", elapsed: time.Second, timeout: time.Second, maxValue: 100, expected: 100},
		{name: "clamped above", elapsed: 3 * time.Second, timeout: time.Second, maxValue: 100, expected: 100},
		{name: "clamped below", elapsed: -time.Second, timeout: time.Second, maxValue: 100, expected: 0},
		{name: "other scale", elapsed: 250 * time.Millisecond, timeout: time.Second, maxValue: 1000, expected: 250},
		{name: "zero timeout", elapsed: time.Second, timeout: 0, maxValue: 100, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scale(tt.elapsed, tt.timeout, tt.maxValue))
		})
	}
}

func TestTracker_ValuesFollowFormula(t *testing.T) {
	for _, timeout := range []time.Duration{700 * time.Millisecond, 1300 * time.Millisecond, 3 * time.Second} {
		t.Run(timeout.String(), func(t *testing.T) {
			tr, rec, clk := newManualTracker(t)
			defer tr.Stop()

			tr.Start(context.Background(), timeout)

			ticks := int(timeout/DefaultTickInterval) - 1
			advance(t, tr, clk, ticks)

			values := rec.values()
			require.Len(t, values, ticks)

			for i, v := range values {
				elapsed := time.Duration(i+1) * DefaultTickInterval
				assert.Equal(t, scale(elapsed, timeout, DefaultScaleMax), v, "elapsed %s", elapsed)
			}
		})
	}
}

func TestTracker_OverrunSwitchesToIndeterminate(t *testing.T) {
	tr, rec, clk := newManualTracker(t)
	defer tr.Stop()

	tr.Start(context.Background(), 300*time.Millisecond)
	advance(t, tr, clk, 5)

	var progressPhase []progress.Event

	for _, e := range rec.snapshot() {
		if e.Type == progress.EventValue || e.Type == progress.EventIndeterminate {
			progressPhase = append(progressPhase, withoutTime(e))
		}
	}

	assert.Equal(t, []progress.Event{
		{Tracker: "test", Type: progress.EventValue, Value: 33},
		{Tracker: "test", Type: progress.EventValue, Value: 67},
		{Tracker: "test", Type: progress.EventIndeterminate, Enabled: true},
		{Tracker: "test", Type: progress.EventIndeterminate, Enabled: true},
		{Tracker: "test", Type: progress.EventIndeterminate, Enabled: true},
	}, progressPhase)

	// the estimate is not a deadline
	assert.Equal(t, StateRunning, tr.State())
	assert.Equal(t, 500*time.Millisecond, tr.Elapsed())
}

func TestTracker_HoldFreezesElapsedButNotWallClock(t *testing.T) {
	tr, rec, clk := newManualTracker(t)
	defer tr.Stop()

	tr.Start(context.Background(), time.Second)
	advance(t, tr, clk, 2)

	tr.Hold()
	assert.Equal(t, StateHeld, tr.State())
	assert.Equal(t, progress.Event{Tracker: "test", Type: progress.EventIndeterminate, Enabled: true}, withoutTime(rec.last()))

	advance(t, tr, clk, 3)
	assert.Equal(t, 200*time.Millisecond, tr.Elapsed())
	assert.Equal(t, 500*time.Millisecond, tr.WallClock())
	assert.Equal(t, []int{10, 20}, rec.values(), "no values are reported while held")

	tr.Resume()
	assert.Equal(t, StateRunning, tr.State())
	assert.Equal(t, progress.Event{Tracker: "test", Type: progress.EventIndeterminate, Enabled: false}, withoutTime(rec.last()))

	advance(t, tr, clk, 1)
	assert.Equal(t, []int{10, 20, 30}, rec.values())
}

func TestTracker_HoldResumeWithoutTickLeavesElapsedUnchanged(t *testing.T) {
	tr, _, clk := newManualTracker(t)
	defer tr.Stop()

	tr.Start(context.Background(), time.Second)
	advance(t, tr, clk, 3)

	before := tr.Elapsed()

	tr.Hold()
	tr.Resume()

	assert.Equal(t, before, tr.Elapsed())
	assert.Equal(t, StateRunning, tr.State())
}

func TestTracker_HoldResumeBeforeStartAreNoOps(t *testing.T) {
	tr, rec, clk := newManualTracker(t)

	tr.Hold()
	tr.Resume()

	assert.Equal(t, StateIdle, tr.State())
	assert.Zero(t, rec.count())
	assert.Zero(t, clk.tickerCount())
}

func TestTracker_ResumeAfterOverrunStaysIndeterminate(t *testing.T) {
	tr, rec, clk := newManualTracker(t)
	defer tr.Stop()

	tr.Start(context.Background(), 100*time.Millisecond)
	advance(t, tr, clk, 1)

	tr.Hold()
	n := rec.count()
	tr.Resume()

	assert.Equal(t, n, rec.count(), "resume must not leave indeterminate mode after the estimate has overrun")
}

func TestTracker_TerminalStateIsFinal(t *testing.T) {
	tests := []struct {
		name     string
		complete func(tr *Tracker)
		state    State
		value    int
	}{
		{name: "CompleteOK", complete: (*Tracker).CompleteOK, state: StateDone, value: DefaultScaleMax},
		{name: "CompleteError", complete: (*Tracker).CompleteError, state: StateDoneError, value: 0},
		{name: "CompleteOKHidden", complete: (*Tracker).CompleteOKHidden, state: StateDone, value: DefaultScaleMax},
		{name: "CompleteErrorHidden", complete: (*Tracker).CompleteErrorHidden, state: StateDoneError, value: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			hook := &countingHook{}
			tr, rec, clk := newManualTracker(t, WithCancelHook(hook))

			tr.Start(context.Background(), time.Second)
			advance(t, tr, clk, 2)

			tt.complete(tr)
			<-tr.Done()

			assert.Equal(t, tt.state, tr.State())

			values := rec.values()
			assert.Equal(t, tt.value, values[len(values)-1])

			affordance := rec.ofType(progress.EventCancelAffordance)
			assert.False(t, affordance[len(affordance)-1].Enabled, "cancel is disabled on completion")

			n := rec.count()

			tr.Hold()
			tr.Resume()
			tr.CompleteOK()
			tr.CompleteError()
			tr.CompleteOKHidden()
			tr.CompleteErrorHidden()
			tr.SetCancelEnabled(true)
			tr.Start(context.Background(), time.Second)

			assert.Equal(t, n, rec.count(), "no event may follow the terminal transition")
			assert.Equal(t, tt.state, tr.State())
			assert.False(t, tr.Cancel())
			assert.Zero(t, hook.calls.Load())
			assert.Equal(t, 1, clk.tickerCount())
		})
	}
}

func TestTracker_CompleteOKHiddenHidesAfterDelay(t *testing.T) {
	tr, rec, clk := newManualTracker(t)

	tr.Start(context.Background(), time.Second)
	advance(t, tr, clk, 1)

	tr.CompleteOKHidden()

	events := rec.snapshot()
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, progress.Event{Tracker: "test", Type: progress.EventValue, Value: 100}, withoutTime(events[len(events)-2]))
	assert.Equal(t, progress.Event{Tracker: "test", Type: progress.EventVisible, Enabled: false}, withoutTime(events[len(events)-1]))
	assert.Equal(t, []time.Duration{DefaultHideDelay}, clk.afterDelays())
}

func TestTracker_CompleteHiddenWaitsOnSystemClock(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{}
	tr := New("real", rec, WithConfig(Config{
		TickInterval: 5 * time.Millisecond,
		HideDelay:    50 * time.Millisecond,
	}))

	tr.Start(context.Background(), time.Second)
	tr.CompleteErrorHidden()
	<-tr.Done()

	events := rec.snapshot()
	require.GreaterOrEqual(t, len(events), 2)

	final := events[len(events)-2]
	hide := events[len(events)-1]

	assert.Equal(t, progress.EventValue, final.Type)
	assert.Equal(t, 0, final.Value)
	assert.Equal(t, progress.EventVisible, hide.Type)
	assert.False(t, hide.Enabled)
	assert.GreaterOrEqual(t, hide.Timestamp.Sub(final.Timestamp), 50*time.Millisecond)
}

func TestTracker_CompleteHiddenOnlyHidesOnce(t *testing.T) {
	tr, rec, _ := newManualTracker(t)

	tr.Start(context.Background(), time.Second)
	tr.CompleteOKHidden()
	tr.CompleteErrorHidden()

	assert.Len(t, rec.ofType(progress.EventVisible), 1)
	assert.Equal(t, StateDone, tr.State())
}

func TestTracker_DisplayDelay(t *testing.T) {
	tr, rec, clk := newManualTracker(t)
	defer tr.Stop()

	tr.Start(context.Background(), 10*time.Second)

	advance(t, tr, clk, 5)
	assert.Empty(t, rec.ofType(progress.EventVisible), "fast operations are never shown")

	advance(t, tr, clk, 1)
	assert.Len(t, rec.ofType(progress.EventVisible), 1)

	advance(t, tr, clk, 10)
	visible := rec.ofType(progress.EventVisible)
	require.Len(t, visible, 1, "the indicator is shown once")
	assert.True(t, visible[0].Enabled)
}

func TestTracker_DisplayDelayCountsHeldTime(t *testing.T) {
	tr, rec, clk := newManualTracker(t)
	defer tr.Stop()

	tr.Start(context.Background(), 10*time.Second)
	tr.Hold()
	advance(t, tr, clk, 6)

	assert.Len(t, rec.ofType(progress.EventVisible), 1)
}

func TestTracker_WatchdogRepeatsWithoutFlooding(t *testing.T) {
	tr, rec, clk := newManualTracker(t, WithConfig(Config{WatchdogThreshold: 300 * time.Millisecond}))
	defer tr.Stop()

	tr.Start(context.Background(), time.Second)

	advance(t, tr, clk, 3)
	assert.Empty(t, rec.ofType(progress.EventWatchdog))

	advance(t, tr, clk, 1)
	assert.Len(t, rec.ofType(progress.EventWatchdog), 1)

	// held time still counts towards the watchdog
	tr.Hold()
	advance(t, tr, clk, 3)

	warnings := rec.ofType(progress.EventWatchdog)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[1].Message, "700ms")
	assert.Equal(t, StateHeld, tr.State(), "the watchdog is never fatal")
}

func TestTracker_StartTwiceResetsCounters(t *testing.T) {
	tr, rec, clk := newManualTracker(t)
	defer tr.Stop()

	tr.Start(context.Background(), time.Second)
	advance(t, tr, clk, 4)

	tr.Start(context.Background(), time.Second)

	assert.Equal(t, 1, clk.tickerCount(), "a second ticking goroutine must not be spawned")
	assert.Zero(t, tr.Elapsed())
	assert.Zero(t, tr.WallClock())

	advance(t, tr, clk, 1)
	assert.Equal(t, []int{10, 20, 30, 40, 10}, rec.values())
}

func TestTracker_RestartLeavesOverrun(t *testing.T) {
	tr, rec, clk := newManualTracker(t)
	defer tr.Stop()

	tr.Start(context.Background(), 200*time.Millisecond)
	advance(t, tr, clk, 3)

	tr.Start(context.Background(), 200*time.Millisecond)
	assert.Equal(t, progress.Event{Tracker: "test", Type: progress.EventIndeterminate, Enabled: false}, withoutTime(rec.last()))

	advance(t, tr, clk, 1)
	assert.Equal(t, 50, rec.last().Value)
}

func TestTracker_CompleteBeforeStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	tr, rec, clk := newManualTracker(t)

	tr.CompleteError()

	select {
	case <-tr.Done():
	default:
		t.Fatal("Done should be closed for a completed tracker that never started")
	}

	tr.Start(context.Background(), time.Second)

	assert.Equal(t, StateDoneError, tr.State())
	assert.Zero(t, clk.tickerCount())
	assert.Equal(t, 0, rec.last().Value)
}

func TestTracker_CancelAffordance(t *testing.T) {
	t.Run("offered with a hook", func(t *testing.T) {
		tr, rec, _ := newManualTracker(t, WithCancelHook(&countingHook{}))
		defer tr.Stop()

		tr.Start(context.Background(), time.Second)

		first := rec.snapshot()[0]
		assert.Equal(t, progress.EventCancelAffordance, first.Type)
		assert.True(t, first.Enabled)

		tr.SetCancelEnabled(false)
		assert.False(t, rec.last().Enabled)
		assert.Equal(t, StateRunning, tr.State(), "toggling cancel does not change state")
	})

	t.Run("never offered without a hook", func(t *testing.T) {
		tr, rec, _ := newManualTracker(t)
		defer tr.Stop()

		tr.Start(context.Background(), time.Second)
		tr.SetCancelEnabled(true)

		for _, e := range rec.ofType(progress.EventCancelAffordance) {
			assert.False(t, e.Enabled)
		}

		assert.False(t, tr.Cancel())
	})
}

func TestTracker_CancelFiresHookAtMostOnce(t *testing.T) {
	hook := &countingHook{}
	tr, _, _ := newManualTracker(t, WithCancelHook(hook))
	defer tr.Stop()

	tr.Start(context.Background(), time.Second)

	assert.True(t, tr.Cancel())
	assert.False(t, tr.Cancel())
	assert.Equal(t, int32(1), hook.calls.Load())
	assert.True(t, tr.Cancelled())
	assert.Equal(t, StateRunning, tr.State(), "cancel is advisory; the operation completes the tracker")
}

func TestTracker_ConcurrentCancelPresses(t *testing.T) {
	hook := &countingHook{}
	tr, _, _ := newManualTracker(t, WithCancelHook(hook))
	defer tr.Stop()

	tr.Start(context.Background(), time.Second)

	var wg sync.WaitGroup

	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			tr.Cancel()
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), hook.calls.Load())
}

func TestTracker_CancelDisabled(t *testing.T) {
	hook := &countingHook{}
	tr, _, _ := newManualTracker(t, WithCancelHook(hook))
	defer tr.Stop()

	tr.Start(context.Background(), time.Second)
	tr.SetCancelEnabled(false)

	assert.False(t, tr.Cancel())
	assert.Zero(t, hook.calls.Load())

	tr.SetCancelEnabled(true)

	assert.True(t, tr.Cancel())
	assert.Equal(t, int32(1), hook.calls.Load())
}

func TestTracker_CancelFuncHook(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr, _, _ := newManualTracker(t, WithCancelHook(CancelFunc(cancel)))
	defer tr.Stop()

	tr.Start(ctx, time.Second)
	require.True(t, tr.Cancel())

	select {
	case <-ctx.Done():
	default:
		t.Fatal("cancel hook should cancel the context")
	}
}

func TestTracker_NoLeakAfterCompletion(t *testing.T) {
	defer goleak.VerifyNone(t)

	tr := New("real", &recorder{}, WithConfig(Config{TickInterval: time.Millisecond}))
	tr.Start(context.Background(), 50*time.Millisecond)

	time.Sleep(20 * time.Millisecond)

	tr.CompleteOK()
	<-tr.Done()
}

func TestTracker_AbandonedTrackerLeaksUntilStopped(t *testing.T) {
	defer goleak.VerifyNone(t)

	tr := New("abandoned", &recorder{}, WithConfig(Config{TickInterval: time.Millisecond}))
	tr.Start(context.Background(), 50*time.Millisecond)

	time.Sleep(10 * time.Millisecond)

	// the owner forgot to complete: the ticking goroutine is still alive
	err := goleak.Find()
	require.Error(t, err)

	tr.Stop()
	assert.NotEqual(t, StateDone, tr.State(), "Stop is not a terminal transition")
}

func TestTracker_StopBeforeStart(t *testing.T) {
	tr, rec, clk := newManualTracker(t)

	tr.Stop()
	tr.Start(context.Background(), time.Second)

	assert.Equal(t, StateIdle, tr.State())
	assert.Zero(t, clk.tickerCount())
	assert.Zero(t, rec.count())
}

func TestTracker_NilReporter(t *testing.T) {
	tr := New("nil", nil, WithClock(&manualClock{}))

	tr.Start(context.Background(), time.Second)
	tr.CompleteOK()

	assert.Equal(t, StateDone, tr.State())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
		terminal bool
	}{
		{StateIdle, "idle", false},
		{StateRunning, "running", false},
		{StateHeld, "held", false},
		{StateDone, "done", true},
		{StateDoneError, "done-error", true},
		{State(42), "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
			assert.Equal(t, tt.terminal, tt.state.Terminal())
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{TickInterval: 10 * time.Millisecond, ScaleMax: 1000}.WithDefaults()

	assert.Equal(t, 10*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 1000, cfg.ScaleMax)
	assert.Equal(t, DefaultDisplayDelay, cfg.DisplayDelay)
	assert.Equal(t, DefaultWatchdogThreshold, cfg.WatchdogThreshold)
	assert.Equal(t, DefaultHideDelay, cfg.HideDelay)
	assert.Equal(t, DefaultTimeout, cfg.DefaultTimeout)
	assert.Equal(t, DefaultConfig(), Config{}.WithDefaults())
}

func withoutTime(e progress.Event) progress.Event {
	e.Timestamp = time.Time{}
	return e
}
