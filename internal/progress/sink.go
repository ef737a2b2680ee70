// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

// Sink is the visual indicator driven by a tracker.
// Its methods are only ever called from one goroutine.
type Sink interface {
	SetVisible(visible bool)
	SetValue(value int)
	SetIndeterminate(indeterminate bool)
	SetCancelEnabled(enabled bool)
}

// DiagnosticSink is implemented by sinks that want watchdog diagnostics.
type DiagnosticSink interface {
	Sink
	Diagnostic(message string)
}

// Apply maps an event onto the matching Sink method.
// Watchdog events are only passed on to a DiagnosticSink.
func Apply(sink Sink, event Event) {
	switch event.Type {
	case EventVisible:
		sink.SetVisible(event.Enabled)
	case EventValue:
		sink.SetValue(event.Value)
	case EventIndeterminate:
		sink.SetIndeterminate(event.Enabled)
	case EventCancelAffordance:
		sink.SetCancelEnabled(event.Enabled)
	case EventWatchdog:
		if ds, ok := sink.(DiagnosticSink); ok {
			ds.Diagnostic(event.Message)
		}
	}
}

// SinkListener returns a Listener that applies every event to sink.
func SinkListener(sink Sink) Listener {
	return ListenerFunc(func(event Event) {
		Apply(sink, event)
	})
}
