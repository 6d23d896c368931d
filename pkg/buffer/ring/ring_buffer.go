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

// Package ring implements a fixed-capacity circular byte buffer used as the
// read-ahead window between a byte source and the cursor that drains it.
package ring

import (
	"errors"
	"io"
)

// DefaultBufferSize is the capacity used when New is given a non-positive size.
const DefaultBufferSize = 4 * 1024 // 4KB

var (
	// ErrIsEmpty will be returned when trying to read an empty ring-buffer.
	ErrIsEmpty = errors.New("ring-buffer is empty")
	// ErrIsFull will be returned when trying to write a full ring-buffer.
	ErrIsFull = errors.New("ring-buffer is full")
)

// Buffer is a circular buffer with a fixed capacity, it never grows after New.
type Buffer struct {
	buf     []byte
	size    int
	r       int // next position to read
	w       int // next position to write
	isEmpty bool
}

// New returns a new Buffer whose capacity is size rounded up to a power of two.
func New(size int) *Buffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	size = ceilToPowerOfTwo(size)
	return &Buffer{
		buf:     make([]byte, size),
		size:    size,
		isEmpty: true,
	}
}

// ReadByte reads and returns the next byte from the buffer or ErrIsEmpty.
func (rb *Buffer) ReadByte() (b byte, err error) {
	if rb.isEmpty {
		return 0, ErrIsEmpty
	}
	b = rb.buf[rb.r]
	rb.r++
	if rb.r == rb.size {
		rb.r = 0
	}
	if rb.r == rb.w {
		rb.Reset()
	}
	return
}

// Fill performs a single Read from r into the largest contiguous free region
// and returns the number of bytes it stored.
func (rb *Buffer) Fill(r io.Reader) (n int, err error) {
	if rb.IsFull() {
		return 0, ErrIsFull
	}
	if rb.isEmpty {
		rb.r, rb.w = 0, 0
	}

	end := rb.size
	if rb.w < rb.r {
		end = rb.r
	}
	n, err = r.Read(rb.buf[rb.w:end])
	if n < 0 {
		panic("ring.Buffer.Fill: reader returned negative count from Read")
	}
	if n > 0 {
		rb.w = (rb.w + n) % rb.size
		rb.isEmpty = false
	}
	return
}

// Buffered returns the length of available bytes to read.
func (rb *Buffer) Buffered() int {
	if rb.r == rb.w {
		if rb.isEmpty {
			return 0
		}
		return rb.size
	}
	if rb.w > rb.r {
		return rb.w - rb.r
	}
	return rb.size - rb.r + rb.w
}

// Cap returns the size of the underlying buffer.
func (rb *Buffer) Cap() int {
	return rb.size
}

// IsFull tells if this ring-buffer is full.
func (rb *Buffer) IsFull() bool {
	return rb.r == rb.w && !rb.isEmpty
}

// IsEmpty tells if this ring-buffer is empty.
func (rb *Buffer) IsEmpty() bool {
	return rb.isEmpty
}

// Reset the read pointer and write pointer to zero.
func (rb *Buffer) Reset() {
	rb.isEmpty = true
	rb.r, rb.w = 0, 0
}

func ceilToPowerOfTwo(n int) int {
	if n <= 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
