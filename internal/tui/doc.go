// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui is a bubbletea front end for a single tracked operation.
//
// The bubbletea event loop is the only goroutine that touches the indicator.
// Tracker events reach it through Reporter, which forwards them with
// tea.Program.Send. The model shows a progress bar, switches to a spinner in
// indeterminate mode and offers a cancel key while cancelling is enabled.
package tui
