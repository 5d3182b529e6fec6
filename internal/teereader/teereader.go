// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"errors"
	"io"
	"strings"
	"sync"
)

// LastLineTeeReader wraps an io.Reader, remembers the last complete line and
// calls OnLine for every complete line read. A trailing line without a newline
// is emitted when the underlying reader returns io.EOF.
// It is safe for concurrent use.
type LastLineTeeReader struct {
	reader  io.Reader
	onLine  func(string)
	partial strings.Builder
	last    string
	mu      sync.RWMutex
}

// NewLastLineTeeReader creates a reader around r. onLine may be nil.
func NewLastLineTeeReader(r io.Reader, onLine func(string)) *LastLineTeeReader {
	return &LastLineTeeReader{
		reader: r,
		onLine: onLine,
	}
}

// Read implements io.Reader.
func (lt *LastLineTeeReader) Read(p []byte) (int, error) {
	n, err := lt.reader.Read(p)

	var lines []string

	lt.mu.Lock()

	for _, b := range p[:n] {
		if b != '\n' {
			lt.partial.WriteByte(b)
			continue
		}

		lines = append(lines, lt.finishLine())
	}

	if errors.Is(err, io.EOF) && lt.partial.Len() > 0 {
		lines = append(lines, lt.finishLine())
	}

	lt.mu.Unlock()

	if lt.onLine != nil {
		for _, l := range lines {
			lt.onLine(l)
		}
	}

	return n, err //nolint:wrapcheck
}

// finishLine must be called with the lock held.
func (lt *LastLineTeeReader) finishLine() string {
	line := strings.TrimSuffix(lt.partial.String(), "\r")
	lt.partial.Reset()
	lt.last = line

	return line
}

// GetLastLine returns the last complete line read so far.
// If maxLength > 3 and the line is longer, it is truncated and "..." is appended.
func (lt *LastLineTeeReader) GetLastLine(maxLength int) string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	if maxLength > 3 && len(lt.last) > maxLength {
		return lt.last[:maxLength-3] + "..."
	}

	return lt.last
}

// GetPartialLine returns the data after the last newline.
func (lt *LastLineTeeReader) GetPartialLine() string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return lt.partial.String()
}
