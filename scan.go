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

	"github.com/panjf2000/pktscan/pkg/transcript"
)

// Scan reads frames from r until the stream is exhausted and writes the
// transcript of the well-formed ones to w. Malformed frames and a final
// summary are reported on the logger set up with WithLogger.
//
// It returns a nil error on a clean end of stream, otherwise the first
// error of the source or of w.
func Scan(r io.Reader, w io.Writer, opts ...Option) (Stats, error) {
	f := NewFramer(r, opts...)
	em := transcript.New(w, f.logger)

	var err error
	for {
		var o Outcome
		if o, err = f.Next(); err != nil {
			break
		}
		if err = em.Emit(o); err != nil {
			break
		}
	}
	if err == io.EOF {
		err = nil
	}

	stats := f.Stats()
	f.logger.Infof("frames=%d malformed=%d missing_marker=%d bytes=%d",
		stats.Frames, stats.Malformed, stats.MissingMarker, stats.Bytes)
	return stats, err
}
