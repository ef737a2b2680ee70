// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/optrack/internal/ctxlog"
	"github.com/matt-FFFFFF/optrack/internal/progress"
)

// ErrTUI is returned when the bubbletea program fails.
var ErrTUI = errors.New("terminal user interface error")

var _ progress.Reporter = (*Reporter)(nil)

// Operation is the tracked work a Runner drives.
type Operation interface {
	Run(ctx context.Context) error
	Cancel() bool
}

// Reporter implements progress.Reporter and forwards events to the TUI.
type Reporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewReporter creates a reporter that sends events to program.
func NewReporter(program *tea.Program) *Reporter {
	return &Reporter{
		program: program,
	}
}

// Report implements progress.Reporter.
// It blocks until the event loop accepts the event or the program has exited.
func (tr *Reporter) Report(event progress.Event) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	tr.program.Send(EventMsg{Event: event})
}

// Close implements progress.Reporter.
func (tr *Reporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	tr.closed = true
}

// Runner manages the TUI program for a single operation.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *Reporter
	mutex    sync.Mutex
}

// NewRunner creates a TUI runner for the operation named label.
// The program stops when ctx is done.
func NewRunner(ctx context.Context, label string, scaleMax int, modelOpts []ModelOption, programOpts ...tea.ProgramOption) *Runner {
	model := NewModel(label, scaleMax, modelOpts...)
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, programOpts...)...)

	return &Runner{
		model:    model,
		program:  program,
		reporter: NewReporter(program),
	}
}

// Reporter returns the progress reporter that feeds this runner's model.
func (r *Runner) Reporter() progress.Reporter {
	return r.reporter
}

// Model returns the runner's model. It must not be read while the program runs.
func (r *Runner) Model() *Model {
	return r.model
}

// Run starts the TUI and executes op. Cancel key presses go to op.Cancel.
// If the user leaves the TUI early, cancel is pressed and Run waits for op.
// The result is op's error joined with any TUI failure.
func (r *Runner) Run(ctx context.Context, op Operation) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	logger := ctxlog.Logger(ctx)

	if r.model.canceller == nil {
		r.model.canceller = op.Cancel
	}

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	opDone := make(chan error, 1)

	go func() {
		opDone <- op.Run(ctx)
	}()

	var opErr, tuiErr error

	select {
	case opErr = <-opDone:
		logger.Debug("operation finished, waiting for user to leave the TUI", "error", opErr)
		r.program.Send(OperationDoneMsg{Err: opErr})

		tuiErr = <-tuiDone

	case tuiErr = <-tuiDone:
		logger.Info("TUI exited before the operation finished, cancelling")
		r.reporter.Close()
		op.Cancel()

		opErr = <-opDone
	}

	r.reporter.Close()

	if tuiErr != nil && !errors.Is(tuiErr, tea.ErrProgramKilled) {
		return errors.Join(opErr, ErrTUI, tuiErr)
	}

	return opErr
}
