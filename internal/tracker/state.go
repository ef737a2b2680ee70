// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tracker

// State is the lifecycle state of a Tracker.
type State int

const (
	// StateIdle is the state before Start.
	StateIdle State = iota
	// StateRunning means progress advances on every tick.
	StateRunning
	// StateHeld means progress is frozen and the indicator is indeterminate.
	StateHeld
	// StateDone is the terminal state after a successful operation.
	StateDone
	// StateDoneError is the terminal state after a failed operation.
	StateDoneError
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateHeld:
		return "held"
	case StateDone:
		return "done"
	case StateDoneError:
		return "done-error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateDoneError
}
