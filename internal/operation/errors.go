// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package operation

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled is joined to the result of an operation that was cancelled by the user.
	ErrCancelled = errors.New("operation cancelled")
	// ErrCouldNotStartProcess is returned when a shell command could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrCommandFailed is returned when a shell command exits unsuccessfully.
	ErrCommandFailed = errors.New("command failed")
)

// ErrPanic is returned when the operation function panics.
// It is constructed with the value that caused the panic.
type ErrPanic struct {
	v any
}

// NewErrPanic creates a new ErrPanic with the given value.
func NewErrPanic(v any) error {
	return &ErrPanic{v: v}
}

// Error implements the error interface for ErrPanic.
func (e *ErrPanic) Error() string {
	prefix := "operation panic:"

	switch x := e.v.(type) {
	case string:
		return fmt.Sprintf("%s %s", prefix, x)
	case error:
		return fmt.Sprintf("%s %s", prefix, x.Error())
	default:
		return fmt.Sprintf("%s %v", prefix, x)
	}
}

// Unwrap returns the panic value when it is an error.
func (e *ErrPanic) Unwrap() error {
	if err, ok := e.v.(error); ok {
		return err
	}

	return nil
}
