// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress is the boundary between trackers and whatever displays them.
// Trackers describe visual changes as Events and hand them to a Reporter.
// The Reporter delivers them, in order, to the single goroutine that owns the
// visual Sink, so a Sink never has to be safe for concurrent use.
package progress
