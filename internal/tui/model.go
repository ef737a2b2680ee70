// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/optrack/internal/progress"
)

const (
	outputPollInterval = 200 * time.Millisecond
	defaultBarWidth    = 40
	maxBarWidth        = 80
	barPadding         = 4
)

var _ progress.DiagnosticSink = (*Model)(nil)

// Styles contains all the styling for the TUI.
type Styles struct {
	Label   lipgloss.Style
	Spinner lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Warning lipgloss.Style
	Output  lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Label: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		Spinner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Italic(true),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// Model is the indicator for one tracked operation.
// It implements progress.DiagnosticSink and must only be mutated by the
// bubbletea event loop.
type Model struct {
	label     string
	scaleMax  int
	canceller func() bool
	output    func() string
	lastLine  string

	visible       bool
	value         int
	indeterminate bool
	cancelEnabled bool
	diagnostic    string

	spinning        bool
	cancelRequested bool
	done            bool
	err             error
	quitOnDone      bool
	quitting        bool

	bar     bubblesprogress.Model
	spinner spinner.Model
	styles  *Styles
}

// ModelOption configures a Model.
type ModelOption func(m *Model)

// WithCanceller sets the function called on a cancel key press.
func WithCanceller(fn func() bool) ModelOption {
	return func(m *Model) {
		m.canceller = fn
	}
}

// WithOutputSource sets a function polled for the command's latest output line.
// It is called from the event loop and must be safe for concurrent use with the writer it reads.
func WithOutputSource(fn func() string) ModelOption {
	return func(m *Model) {
		m.output = fn
	}
}

// WithQuitOnDone makes the program exit as soon as the operation finishes.
func WithQuitOnDone() ModelOption {
	return func(m *Model) {
		m.quitOnDone = true
	}
}

// NewModel creates a model for the operation named label whose values run from 0 to scaleMax.
func NewModel(label string, scaleMax int, opts ...ModelOption) *Model {
	styles := NewStyles()

	if scaleMax <= 0 {
		scaleMax = 100
	}

	m := &Model{
		label:    label,
		scaleMax: scaleMax,
		styles:   styles,
		bar: bubblesprogress.New(
			bubblesprogress.WithDefaultGradient(),
			bubblesprogress.WithWidth(defaultBarWidth),
		),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(styles.Spinner),
		),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// SetVisible implements progress.Sink.
func (m *Model) SetVisible(visible bool) {
	m.visible = visible
}

// SetValue implements progress.Sink.
func (m *Model) SetValue(value int) {
	m.value = min(max(value, 0), m.scaleMax)
}

// SetIndeterminate implements progress.Sink.
func (m *Model) SetIndeterminate(on bool) {
	m.indeterminate = on
}

// SetCancelEnabled implements progress.Sink.
func (m *Model) SetCancelEnabled(enabled bool) {
	m.cancelEnabled = enabled
}

// Diagnostic implements progress.DiagnosticSink.
func (m *Model) Diagnostic(msg string) {
	m.diagnostic = msg
}

// Percent returns the current value as a fraction of the full scale.
func (m *Model) Percent() float64 {
	return float64(m.value) / float64(m.scaleMax)
}

// Err returns the operation's result once it is done.
func (m *Model) Err() error {
	return m.err
}

// Done reports whether the operation has finished.
func (m *Model) Done() bool {
	return m.done
}
