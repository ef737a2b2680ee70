// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package clock provides the time source used by trackers.
// Production code uses System; tests substitute a manual implementation
// so that ticks can be driven deterministically.
package clock

import "time"

// Ticker delivers ticks on C until Stop is called.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers and one-shot timers.
type Clock interface {
	NewTicker(d time.Duration) Ticker
	After(d time.Duration) <-chan time.Time
}

var _ Clock = System{}

// System implements Clock using the time package.
type System struct{}

// NewTicker returns a ticker backed by time.NewTicker.
func (System) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

// After returns time.After(d).
func (System) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

type systemTicker struct {
	t *time.Ticker
}

func (s *systemTicker) C() <-chan time.Time {
	return s.t.C
}

func (s *systemTicker) Stop() {
	s.t.Stop()
}
