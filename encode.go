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

import "github.com/panjf2000/pktscan/pkg/frame"

// AppendFrame appends the wire encoding of payload to dst: the start marker,
// the one-byte length and the payload itself.
//
// The payload is not escaped, so a payload holding the start marker cannot be
// told apart from a new frame when parsed under ResyncActive.
func AppendFrame(dst, payload []byte) ([]byte, error) {
	if len(payload) > frame.MaxPayloadLen {
		return dst, ErrInvalidPayloadLength
	}
	if n := frame.HeaderLen + len(payload); cap(dst)-len(dst) < n {
		dst = append(make([]byte, 0, len(dst)+n), dst...)
	}
	dst = append(dst, frame.Marker0, frame.Marker1, byte(len(payload)))
	return append(dst, payload...), nil
}
