// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matt-FFFFFF/optrack/internal/ctxlog"
	"github.com/matt-FFFFFF/optrack/internal/operation"
	"github.com/peterh/liner"
)

var (
	// ErrNotConfirmed is returned when the user declines to run the command.
	ErrNotConfirmed = errors.New("not confirmed by user")
	// ErrPrompt is returned when the confirmation prompt cannot be read.
	ErrPrompt = errors.New("failed to read confirmation")
)

// Prompter reads one line of input after showing prompt.
// Tests replace it.
var Prompter = func(prompt string) (string, error) {
	line := liner.NewLiner()
	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)

	return line.Prompt(prompt)
}

// confirmFunc asks the user before running next. The tracker is held and
// cancel disabled while the prompt is shown; Ctrl+C aborts the prompt instead.
func confirmFunc(label string, next operation.Func) operation.Func {
	return func(ctx context.Context, step operation.Step) error {
		step.Hold()
		step.SetCancelEnabled(false)

		answer, err := Prompter(fmt.Sprintf("Run %s? [y/N] ", label))

		step.SetCancelEnabled(true)
		step.Resume()

		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			ctxlog.Info(ctx, "confirmation aborted")
			return ErrNotConfirmed
		case err != nil:
			return errors.Join(ErrPrompt, err)
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return next(ctx, step)
		default:
			return ErrNotConfirmed
		}
	}
}
