// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/optrack/internal/operation"
	"github.com/matt-FFFFFF/optrack/internal/progress"
)

// EventMsg wraps a tracker event for the tea framework.
type EventMsg struct {
	Event progress.Event
}

// outputTickMsg asks the model to poll its output source.
type outputTickMsg struct{}

// OperationDoneMsg indicates that the tracked operation has returned.
type OperationDoneMsg struct {
	Err error
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return m.pollOutput()
}

func (m *Model) pollOutput() tea.Cmd {
	if m.output == nil {
		return nil
	}

	return tea.Tick(outputPollInterval, func(time.Time) tea.Msg {
		return outputTickMsg{}
	})
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-barPadding, 1), maxBarWidth)
		return m, nil

	case EventMsg:
		progress.Apply(m, msg.Event)
		return m, m.startSpinner()

	case spinner.TickMsg:
		if !m.indeterminate || m.done {
			m.spinning = false
			return m, nil
		}

		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case outputTickMsg:
		if m.output == nil {
			return m, nil
		}

		m.lastLine = m.output()

		if m.done {
			return m, nil
		}

		return m, m.pollOutput()

	case OperationDoneMsg:
		m.done = true
		m.err = msg.Err

		if m.quitOnDone {
			m.quitting = true
			return m, tea.Quit
		}

		return m, nil
	}

	return m, nil
}

// startSpinner begins the spinner tick loop when indeterminate mode is entered.
// Only one loop runs at a time.
func (m *Model) startSpinner() tea.Cmd {
	if !m.indeterminate || m.spinning || m.done {
		return nil
	}

	m.spinning = true

	return m.spinner.Tick
}

// handleKeyPress processes keyboard input.
// While the operation runs, c, esc and ctrl+c press cancel; a second ctrl+c
// after cancel was pressed leaves the TUI. Once done, q or ctrl+c quits.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		if m.done {
			m.quitting = true
			return m, tea.Quit
		}

	case "c", "esc":
		m.pressCancel()

	case "ctrl+c":
		if m.done || m.cancelRequested {
			m.quitting = true
			return m, tea.Quit
		}

		m.pressCancel()
	}

	return m, nil
}

func (m *Model) pressCancel() {
	if m.done || !m.cancelEnabled || m.canceller == nil {
		return
	}

	if m.canceller() {
		m.cancelRequested = true
	}
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var view strings.Builder

	view.WriteString(m.styles.Label.Render(m.label))
	view.WriteString("\n")

	if m.visible {
		if m.indeterminate && !m.done {
			view.WriteString(m.spinner.View())
			view.WriteString(" working, no estimate available")
		} else {
			view.WriteString(m.bar.ViewAs(m.Percent()))
		}

		view.WriteString("\n")
	}

	if m.lastLine != "" && !m.done {
		view.WriteString(m.styles.Output.Render("> " + m.lastLine))
		view.WriteString("\n")
	}

	if m.diagnostic != "" && !m.done {
		view.WriteString(m.styles.Warning.Render(m.diagnostic))
		view.WriteString("\n")
	}

	if m.done {
		view.WriteString(m.renderResult())
		view.WriteString("\n")
	}

	view.WriteString(m.styles.Help.Render(m.helpText()))
	view.WriteString("\n")

	return view.String()
}

func (m *Model) renderResult() string {
	switch {
	case m.err == nil:
		return m.styles.Success.Render("✅ Completed successfully")
	case errors.Is(m.err, operation.ErrCancelled):
		return m.styles.Failed.Render("⚠️  Cancelled: " + oneLine(m.err))
	default:
		return m.styles.Failed.Render("⚠️  Failed: " + oneLine(m.err))
	}
}

func (m *Model) helpText() string {
	switch {
	case m.done:
		return "'q' to quit and return to terminal"
	case m.cancelRequested:
		return "cancelling... ctrl+c again to leave"
	case m.cancelEnabled && m.canceller != nil:
		return "'c' or esc to cancel"
	default:
		return "cancel unavailable"
	}
}

// oneLine flattens joined errors, which are newline separated.
func oneLine(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", ": ")
}
