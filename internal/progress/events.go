// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a single visual change requested by a tracker.
type Event struct {
	Tracker   string    // Label of the tracker that produced the event
	Type      EventType // What the sink should change
	Value     int       // For EventValue, the scaled progress value
	Enabled   bool      // For EventVisible, EventIndeterminate and EventCancelAffordance
	Message   string    // For EventWatchdog, the diagnostic text
	Timestamp time.Time // When the event was produced
}

// EventType represents the type of visual event.
type EventType int

const (
	// EventVisible shows or hides the indicator.
	EventVisible EventType = iota
	// EventValue sets the scaled progress value.
	EventValue
	// EventIndeterminate enters or leaves indeterminate (busy) mode.
	EventIndeterminate
	// EventCancelAffordance enables or disables the cancel control.
	EventCancelAffordance
	// EventWatchdog reports that the operation has run for an abnormally long time.
	EventWatchdog
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventVisible:
		return "visible"
	case EventValue:
		return "value"
	case EventIndeterminate:
		return "indeterminate"
	case EventCancelAffordance:
		return "cancel-affordance"
	case EventWatchdog:
		return "watchdog"
	default:
		return "unknown"
	}
}

// Reporter is the interface trackers send events through.
type Reporter interface {
	// Report delivers an event. Events from one caller must reach the
	// sink in the order they were reported.
	Report(event Event)
	// Close signals that no more events will be sent and cleans up resources.
	Close()
}

// Listener receives events on the goroutine that owns the sink.
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(event Event)

// OnEvent implements Listener.
func (f ListenerFunc) OnEvent(event Event) {
	f(event)
}

// NullReporter is a no-op implementation of Reporter.
// Used when an operation runs without any indicator.
type NullReporter struct{}

// Report implements Reporter.Report by doing nothing.
func (nr *NullReporter) Report(_ Event) {}

// Close implements Reporter.Close by doing nothing.
func (nr *NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return &NullReporter{}
}
