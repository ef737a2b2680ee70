// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tracker implements the progress and cancellation controller that
// wraps every long-running operation.
//
// A Tracker estimates progress toward an operation's expected duration, drives
// a visual indicator from a background ticking goroutine, can be held while a
// sub-step of unknown length runs, forwards a user's cancel press to a
// caller-supplied hook, and finishes in exactly one terminal state.
//
// The tracker never touches the indicator directly. Every change is sent as a
// progress.Event through a progress.Reporter, which delivers it to the
// goroutine that owns the indicator.
//
// The expected duration is only used to scale progress. It is not a deadline:
// once it is exceeded the indicator switches to indeterminate mode and the
// operation is allowed to continue for as long as it needs.
package tracker
