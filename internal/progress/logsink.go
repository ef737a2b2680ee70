// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"log/slog"
)

var _ DiagnosticSink = (*LogSink)(nil)

// LogSink is a headless Sink that records the indicator state and writes
// changes to a structured logger. It is used when no terminal UI is attached.
type LogSink struct {
	logger        *slog.Logger
	visible       bool
	value         int
	indeterminate bool
	cancelEnabled bool
}

// NewLogSink creates a LogSink that writes to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{
		logger: logger,
	}
}

// SetVisible implements Sink.
func (s *LogSink) SetVisible(visible bool) {
	if s.visible == visible {
		return
	}

	s.visible = visible
	s.logger.Info("indicator visibility changed", "visible", visible)
}

// SetValue implements Sink.
func (s *LogSink) SetValue(value int) {
	s.value = value
	s.logger.Debug("progress", "value", value)
}

// SetIndeterminate implements Sink.
func (s *LogSink) SetIndeterminate(indeterminate bool) {
	if s.indeterminate == indeterminate {
		return
	}

	s.indeterminate = indeterminate
	s.logger.Info("indicator mode changed", "indeterminate", indeterminate)
}

// SetCancelEnabled implements Sink.
func (s *LogSink) SetCancelEnabled(enabled bool) {
	s.cancelEnabled = enabled
	s.logger.Debug("cancel affordance", "enabled", enabled)
}

// Diagnostic implements DiagnosticSink.
func (s *LogSink) Diagnostic(message string) {
	s.logger.Warn("watchdog", "detail", message)
}

// Value returns the last value applied to the sink.
func (s *LogSink) Value() int {
	return s.value
}

// Visible reports whether the indicator is currently shown.
func (s *LogSink) Visible() bool {
	return s.visible
}

// Indeterminate reports whether the indicator is in busy mode.
func (s *LogSink) Indeterminate() bool {
	return s.indeterminate
}

// CancelEnabled reports whether the cancel control is currently actionable.
func (s *LogSink) CancelEnabled() bool {
	return s.cancelEnabled
}
