// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader provides a writer that keeps a command's complete output
// and its most recent non-empty line, so a progress display can show what a
// long-running command is doing without owning its output.
package teereader
