// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-aware logger built on log/slog.
//
// The logger travels in the context.Context so that trackers and operations
// log with whatever handler the entry point installed. The default is a pretty
// console handler; NewForTUI diverts output into a writer while a terminal UI
// owns the screen.
package ctxlog
