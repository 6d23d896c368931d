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

// Package frame defines the wire constants of the marker-framed protocol and
// the outcome values a framer resolves candidate frames into.
package frame

import "fmt"

const (
	// Marker0 is the first byte of the start marker.
	Marker0 byte = 0x21
	// Marker1 is the second byte of the start marker.
	Marker1 byte = 0x22
	// HeaderLen is the number of bytes preceding the payload: two marker bytes and the length.
	HeaderLen = 3
	// MaxPayloadLen is the largest payload a one-byte length field can declare.
	MaxPayloadLen = 255
)

// Kind tells a well-formed outcome from a malformed one.
type Kind int

const (
	// WellFormed means exactly the declared number of payload bytes were read.
	WellFormed Kind = iota
	// Malformed means the payload ended up shorter than declared.
	Malformed
)

func (k Kind) String() string {
	switch k {
	case WellFormed:
		return "well-formed"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Reason tells why a frame was classified as malformed.
type Reason int

const (
	// ReasonNone is set on well-formed outcomes.
	ReasonNone Reason = iota
	// ReasonResync means a start marker showed up before the payload was complete.
	ReasonResync
	// ReasonTruncated means the stream ended before the payload was complete.
	ReasonTruncated
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonResync:
		return "resync"
	case ReasonTruncated:
		return "truncated"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Outcome is the resolution of one candidate frame.
//
// For WellFormed outcomes Payload holds DeclaredLen bytes. For Malformed
// outcomes Payload is nil and ActualLen is the number of payload bytes that
// were consumed before the frame was abandoned.
type Outcome struct {
	Kind        Kind
	Reason      Reason
	Payload     []byte
	DeclaredLen int
	ActualLen   int
	// Seq is the zero-based number of this frame among all resolved frames.
	Seq int
	// Offset is the stream offset of the frame's first marker byte.
	Offset int64
}

// IsWellFormed reports whether o carries a complete payload.
func (o Outcome) IsWellFormed() bool {
	return o.Kind == WellFormed
}

func (o Outcome) String() string {
	if o.Kind == WellFormed {
		return fmt.Sprintf("frame #%d at offset %d: %s, %d bytes", o.Seq, o.Offset, o.Kind, o.DeclaredLen)
	}
	return fmt.Sprintf("frame #%d at offset %d: %s (%s), declared %d bytes, got %d",
		o.Seq, o.Offset, o.Kind, o.Reason, o.DeclaredLen, o.ActualLen)
}
