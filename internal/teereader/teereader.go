// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"bytes"
	"strings"
	"sync"
)

// LastLineWriter buffers everything written to it and tracks the last
// complete, non-blank line. It is safe for concurrent use.
type LastLineWriter struct {
	full     bytes.Buffer
	partial  strings.Builder
	lastLine string
	mu       sync.RWMutex
}

// NewLastLineWriter creates an empty LastLineWriter.
func NewLastLineWriter() *LastLineWriter {
	return &LastLineWriter{}
}

// Write implements io.Writer. It never fails.
func (w *LastLineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.full.Write(p)

	data := string(p)

	for {
		i := strings.IndexByte(data, '\n')
		if i < 0 {
			w.partial.WriteString(data)
			break
		}

		w.partial.WriteString(data[:i])

		if line := strings.TrimSpace(strings.TrimSuffix(w.partial.String(), "\r")); line != "" {
			w.lastLine = line
		}

		w.partial.Reset()
		data = data[i+1:]
	}

	return len(p), nil
}

// LastLine returns the last complete non-blank line, truncated to maxLength
// runes with a trailing "..." when maxLength is positive and exceeded.
func (w *LastLineWriter) LastLine(maxLength int) string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return truncate(w.lastLine, maxLength)
}

// Partial returns text written since the last newline.
func (w *LastLineWriter) Partial() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.partial.String()
}

// Bytes returns a copy of everything written so far.
func (w *LastLineWriter) Bytes() []byte {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return bytes.Clone(w.full.Bytes())
}

func truncate(s string, maxLength int) string {
	const ellipsis = "..."

	r := []rune(s)
	if maxLength <= 0 || len(r) <= maxLength {
		return s
	}

	if maxLength <= len(ellipsis) {
		return string(r[:maxLength])
	}

	return string(r[:maxLength-len(ellipsis)]) + ellipsis
}
