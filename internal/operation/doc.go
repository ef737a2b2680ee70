// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package operation runs a single blocking function under a tracker.
//
// The tracker's cancel hook is wired to the context handed to the function,
// so a cancel press asks the function to stop. The function's result, or a
// recovered panic, decides which terminal transition the tracker makes.
package operation
