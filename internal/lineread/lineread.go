// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package lineread pumps complete lines from a byte stream onto a channel,
// so multiple streams can be raced with select.
package lineread

import (
	"bufio"
	"io"
)

const (
	// maxLineSize caps a single line; longer lines fail the scan rather
	// than growing the buffer without bound.
	maxLineSize = 1024 * 1024

	initialBufSize = 64 * 1024
)

// Reader delivers the complete lines of an io.Reader over a channel.
type Reader struct {
	lines chan string
	err   error
}

// New starts a pump goroutine reading r line by line. The Lines channel is
// closed at end of input or on read error; Err reports the latter.
func New(r io.Reader) *Reader {
	lr := &Reader{
		lines: make(chan string),
	}

	go lr.pump(r)

	return lr
}

// Lines returns the channel of complete lines. It is closed when the
// stream ends.
func (lr *Reader) Lines() <-chan string {
	return lr.lines
}

// Err returns the read error that ended the stream, if any. It must only
// be called after Lines has been closed.
func (lr *Reader) Err() error {
	return lr.err
}

func (lr *Reader) pump(r io.Reader) {
	defer close(lr.lines)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialBufSize), maxLineSize)

	for scanner.Scan() {
		lr.lines <- scanner.Text()
	}

	lr.err = scanner.Err()
}
