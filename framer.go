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

package pktscan

import (
	"io"

	"github.com/panjf2000/pktscan/pkg/cursor"
	"github.com/panjf2000/pktscan/pkg/frame"
	"github.com/panjf2000/pktscan/pkg/logging"
)

// Outcome is the alias of frame.Outcome.
type Outcome = frame.Outcome

// Stats holds the counters of a framer, they only ever grow.
type Stats struct {
	// Bytes is the number of stream bytes consumed so far.
	Bytes int64
	// Frames is the number of resolved frames, well-formed or not.
	Frames int
	// Malformed is the number of frames whose payload fell short of the declared length.
	Malformed int
	// MissingMarker is the number of first marker bytes not followed by the second one.
	MissingMarker int
}

// Framer finds frames in a byte stream and resolves each of them into an Outcome.
// It is not safe for concurrent use.
type Framer struct {
	cur    *cursor.Cursor
	opts   *Options
	logger logging.Logger
	stats  Stats
	err    error
}

// NewFramer returns a Framer reading from r.
func NewFramer(r io.Reader, opts ...Option) *Framer {
	options := loadOptions(opts...)
	return &Framer{
		cur:    cursor.New(r, options.BufferSize),
		opts:   options,
		logger: options.Logger,
	}
}

// Next returns the outcome of the next candidate frame.
// It returns io.EOF once the stream is exhausted, any other error means the
// source failed and no more outcomes will follow.
func (f *Framer) Next() (Outcome, error) {
	if f.err != nil {
		return Outcome{}, f.err
	}
	o, err := f.next()
	f.stats.Bytes = f.cur.Offset()
	if err != nil {
		f.err = err
		return Outcome{}, err
	}
	return o, nil
}

// Stats returns a snapshot of the framer counters.
func (f *Framer) Stats() Stats {
	return f.stats
}

func (f *Framer) next() (Outcome, error) {
	start, err := f.seekMarker()
	if err != nil {
		return Outcome{}, err
	}

	// A header cut short carries nothing worth reporting.
	n, err := f.cur.Next()
	if err != nil {
		return Outcome{}, err
	}

	return f.readPayload(start, int(n))
}

// seekMarker discards bytes up to and including the next start marker and
// returns the offset of its first byte.
func (f *Framer) seekMarker() (int64, error) {
	for {
		b, err := f.cur.Next()
		if err != nil {
			return 0, err
		}
		if b != frame.Marker0 {
			continue
		}
		start := f.cur.Offset() - 1

		if b, err = f.cur.Next(); err != nil {
			return 0, err
		}
		if b == frame.Marker1 {
			return start, nil
		}

		f.stats.MissingMarker++
		f.logger.Warnf("missing second marker byte at offset %d, got 0x%02X", start+1, b)
		// b may be the first byte of the real marker.
		if err = f.cur.Unread(b); err != nil {
			return 0, err
		}
	}
}

func (f *Framer) readPayload(start int64, declared int) (Outcome, error) {
	payload := make([]byte, 0, declared)
	for len(payload) < declared {
		b, err := f.cur.Next()
		if err == io.EOF {
			return f.truncated(start, declared, len(payload))
		}
		if err != nil {
			return Outcome{}, err
		}

		if b == frame.Marker0 && f.opts.ResyncPolicy == ResyncActive {
			la, err := f.cur.Next()
			switch {
			case err == nil && la == frame.Marker1:
				if err = f.cur.Unread(frame.Marker0, frame.Marker1); err != nil {
					return Outcome{}, err
				}
				return f.malformed(start, declared, len(payload), frame.ReasonResync), nil
			case err == nil:
				if err = f.cur.Unread(la); err != nil {
					return Outcome{}, err
				}
			case err != io.EOF:
				return Outcome{}, err
			}
		}
		payload = append(payload, b)
	}

	o := Outcome{
		Kind:        frame.WellFormed,
		Payload:     payload,
		DeclaredLen: declared,
		ActualLen:   declared,
		Seq:         f.stats.Frames,
		Offset:      start,
	}
	f.stats.Frames++
	return o, nil
}

func (f *Framer) truncated(start int64, declared, actual int) (Outcome, error) {
	if f.opts.DropTruncated {
		f.logger.Debugf("dropping frame at offset %d cut short by end of stream: declared %d bytes, got %d",
			start, declared, actual)
		return Outcome{}, io.EOF
	}
	return f.malformed(start, declared, actual, frame.ReasonTruncated), nil
}

func (f *Framer) malformed(start int64, declared, actual int, reason frame.Reason) Outcome {
	o := Outcome{
		Kind:        frame.Malformed,
		Reason:      reason,
		DeclaredLen: declared,
		ActualLen:   actual,
		Seq:         f.stats.Frames,
		Offset:      start,
	}
	f.stats.Frames++
	f.stats.Malformed++
	return o
}
