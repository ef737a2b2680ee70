// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tracker

import "time"

const (
	// DefaultTickInterval is how often the ticking goroutine advances time.
	DefaultTickInterval = 100 * time.Millisecond
	// DefaultDisplayDelay is how long an operation runs before its indicator is shown.
	DefaultDisplayDelay = 500 * time.Millisecond
	// DefaultWatchdogThreshold is the wall time after which a runaway warning is logged.
	DefaultWatchdogThreshold = 5 * time.Minute
	// DefaultHideDelay is how long a completed indicator stays visible in the *Hidden variants.
	DefaultHideDelay = time.Second
	// DefaultScaleMax is the full-scale progress value.
	DefaultScaleMax = 100
	// DefaultTimeout is the expected duration used when Start is given none.
	DefaultTimeout = 50 * time.Second
)

// Config holds the tunables of a Tracker.
// Zero fields are replaced by the package defaults.
type Config struct {
	TickInterval      time.Duration
	DisplayDelay      time.Duration
	WatchdogThreshold time.Duration
	HideDelay         time.Duration
	ScaleMax          int
	DefaultTimeout    time.Duration
}

// DefaultConfig returns the default tunables.
func DefaultConfig() Config {
	return Config{
		TickInterval:      DefaultTickInterval,
		DisplayDelay:      DefaultDisplayDelay,
		WatchdogThreshold: DefaultWatchdogThreshold,
		HideDelay:         DefaultHideDelay,
		ScaleMax:          DefaultScaleMax,
		DefaultTimeout:    DefaultTimeout,
	}
}

// WithDefaults returns a copy of c with every unset field filled from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()

	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}

	if c.DisplayDelay <= 0 {
		c.DisplayDelay = d.DisplayDelay
	}

	if c.WatchdogThreshold <= 0 {
		c.WatchdogThreshold = d.WatchdogThreshold
	}

	if c.HideDelay <= 0 {
		c.HideDelay = d.HideDelay
	}

	if c.ScaleMax <= 0 {
		c.ScaleMax = d.ScaleMax
	}

	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = d.DefaultTimeout
	}

	return c
}
