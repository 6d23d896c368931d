// Copyright (c) 2024 The Gnet Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cursor provides a byte-at-a-time reader over an arbitrary source
// with a small pushback stack, so that parsers can undo a failed lookahead
// without the source having to support seeking.
package cursor

import (
	"io"

	"github.com/pkg/errors"

	"github.com/panjf2000/pktscan/pkg/buffer/ring"
)

const (
	// MaxPushback is the number of bytes that may be pending in the pushback stack.
	MaxPushback = 2

	// maxConsecutiveEmptyReads bounds how many times a source may return 0, nil in a row.
	maxConsecutiveEmptyReads = 100
)

// ErrPushbackFull occurs when more than MaxPushback bytes are pushed back.
var ErrPushbackFull = errors.New("cursor: pushback stack is full")

// Cursor reads one byte at a time from a source through a fixed read-ahead window.
type Cursor struct {
	src     io.Reader
	window  *ring.Buffer
	pending [MaxPushback]byte
	npend   int
	offset  int64
	err     error // sticky, io.EOF or a wrapped source error
}

// New returns a Cursor reading from r with a read-ahead window of the given size,
// ring.DefaultBufferSize is used when size <= 0.
func New(r io.Reader, size int) *Cursor {
	return &Cursor{src: r, window: ring.New(size)}
}

// Next returns the next byte of the stream. Pushed back bytes are returned
// first, the most recently pushed one before the others.
// It returns io.EOF at a clean end-of-stream, any other error comes from the source.
func (c *Cursor) Next() (byte, error) {
	if c.npend > 0 {
		c.npend--
		c.offset++
		return c.pending[c.npend], nil
	}

	for c.window.IsEmpty() {
		if c.err != nil {
			return 0, c.err
		}
		c.fill()
	}

	b, _ := c.window.ReadByte()
	c.offset++
	return b, nil
}

// Unread pushes bs back onto the stream so that the following calls to Next
// return them in the order given. Successive calls stack, the last pushed
// byte is read first.
func (c *Cursor) Unread(bs ...byte) error {
	if c.npend+len(bs) > MaxPushback {
		return ErrPushbackFull
	}
	for i := len(bs) - 1; i >= 0; i-- {
		c.pending[c.npend] = bs[i]
		c.npend++
		c.offset--
	}
	return nil
}

// Offset returns the logical stream position, that is the number of bytes
// handed out by Next minus the ones pushed back since.
func (c *Cursor) Offset() int64 {
	return c.offset
}

func (c *Cursor) fill() {
	for i := maxConsecutiveEmptyReads; i > 0; i-- {
		n, err := c.window.Fill(c.src)
		if err != nil {
			// Bytes delivered together with the error are still served before it.
			if err == io.EOF {
				c.err = io.EOF
			} else {
				c.err = errors.Wrap(err, "cursor: read source")
			}
			return
		}
		if n > 0 {
			return
		}
	}
	c.err = io.ErrNoProgress
}
