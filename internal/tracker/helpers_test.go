// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tracker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/matt-FFFFFF/optrack/internal/clock"
	"github.com/matt-FFFFFF/optrack/internal/progress"
)

// manualClock hands out tickers that only fire when the test says so.
type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
	afters  []time.Duration
}

func (c *manualClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	tk := &manualTicker{ch: make(chan time.Time), period: d}
	c.tickers = append(c.tickers, tk)

	return tk
}

// After fires immediately and records the requested delay.
func (c *manualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.afters = append(c.afters, d)
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- time.Now()

	return ch
}

func (c *manualClock) ticker() *manualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.tickers) == 0 {
		return nil
	}

	return c.tickers[len(c.tickers)-1]
}

func (c *manualClock) tickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.tickers)
}

func (c *manualClock) afterDelays() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]time.Duration(nil), c.afters...)
}

type manualTicker struct {
	ch      chan time.Time
	period  time.Duration
	stopped atomic.Bool
}

func (m *manualTicker) C() <-chan time.Time {
	return m.ch
}

func (m *manualTicker) Stop() {
	m.stopped.Store(true)
}

// tick delivers up to n ticks and returns how many the ticking goroutine accepted.
func (m *manualTicker) tick(n int) int {
	for i := range n {
		select {
		case m.ch <- time.Now():
		case <-time.After(100 * time.Millisecond):
			return i
		}
	}

	return n
}

// recorder is a synchronous Reporter that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recorder) Report(event progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

func (r *recorder) Close() {}

func (r *recorder) snapshot() []progress.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]progress.Event(nil), r.events...)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.events)
}

func (r *recorder) ofType(et progress.EventType) []progress.Event {
	var out []progress.Event

	for _, e := range r.snapshot() {
		if e.Type == et {
			out = append(out, e)
		}
	}

	return out
}

func (r *recorder) values() []int {
	var out []int

	for _, e := range r.ofType(progress.EventValue) {
		out = append(out, e.Value)
	}

	return out
}

func (r *recorder) last() progress.Event {
	events := r.snapshot()
	if len(events) == 0 {
		return progress.Event{}
	}

	return events[len(events)-1]
}

type countingHook struct {
	calls atomic.Int32
}

func (h *countingHook) Cancel() {
	h.calls.Add(1)
}
