// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ANSI foreground colours used by the pretty handler.
const (
	fgRed       = 31
	fgYellow    = 33
	fgBlue      = 34
	fgCyan      = 36
	fgWhite     = 37
	fgHiMagenta = 95
	fgHiWhite   = 97
)

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"

	ansiPrefix = "\033["
	ansiReset  = "\033[0m"
)

func colorize(s string, code int) string {
	sb := strings.Builder{}
	sb.Grow(len(s) + len(ansiPrefix) + len(ansiReset) + 4) //nolint:mnd
	sb.WriteString(ansiPrefix)
	sb.WriteString(strconv.Itoa(code))
	sb.WriteString("m")
	sb.WriteString(s)
	sb.WriteString(ansiReset)

	return sb.String()
}

// ColorEnabled reports whether colour output should be used on stderr.
// NO_COLOR wins over FORCE_COLOR; otherwise colour follows terminal detection.
func ColorEnabled() bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	return term.IsTerminal(int(os.Stderr.Fd()))
}
