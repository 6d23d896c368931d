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

// Package transcript renders frame outcomes: well-formed payloads as lines of
// the output stream, malformed frames as diagnostics.
package transcript

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/panjf2000/pktscan/pkg/frame"
	"github.com/panjf2000/pktscan/pkg/logging"
)

const hexDigits = "0123456789ABCDEF"

// Emitter writes one transcript line per well-formed outcome.
type Emitter struct {
	out    io.Writer
	logger logging.Logger
	lines  int
}

// New returns an Emitter writing the transcript to out and diagnostics to logger,
// logging.GetDefaultLogger() is used if logger is nil.
func New(out io.Writer, logger logging.Logger) *Emitter {
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	return &Emitter{out: out, logger: logger}
}

// Emit reports o, a well-formed outcome goes to the output stream with a
// single Write, a malformed one to the logger only.
func (e *Emitter) Emit(o frame.Outcome) error {
	switch o.Kind {
	case frame.WellFormed:
		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)

		buf.B = AppendLine(buf.B, o.Payload)
		if _, err := e.out.Write(buf.B); err != nil {
			return errors.Wrapf(err, "transcript: write frame #%d", o.Seq)
		}
		e.lines++
		return nil
	case frame.Malformed:
		e.logger.Warnf("malformed frame #%d at offset %d (%s): declared length %d, actual length %d",
			o.Seq, o.Offset, o.Reason, o.DeclaredLen, o.ActualLen)
		return nil
	default:
		return errors.Errorf("transcript: unknown outcome kind %v", o.Kind)
	}
}

// Lines returns the number of lines written so far.
func (e *Emitter) Lines() int {
	return e.lines
}

// AppendLine appends the transcript line of payload to dst: its length
// right-justified in three columns within braces, then every byte as two
// uppercase hex digits preceded by a space, then a newline.
func AppendLine(dst, payload []byte) []byte {
	n := len(payload)
	dst = append(dst, '{')
	switch {
	case n < 10:
		dst = append(dst, ' ', ' ')
	case n < 100:
		dst = append(dst, ' ')
	}
	dst = strconv.AppendInt(dst, int64(n), 10)
	dst = append(dst, '}')
	for _, b := range payload {
		dst = append(dst, ' ', hexDigits[b>>4], hexDigits[b&0x0f])
	}
	return append(dst, '\n')
}
