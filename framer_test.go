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
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/panjf2000/pktscan/pkg/frame"
)

func stream(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	require.NoError(t, err)
	return b
}

func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func collect(t *testing.T, f *Framer) []Outcome {
	t.Helper()
	var outcomes []Outcome
	for {
		o, err := f.Next()
		if err == io.EOF {
			return outcomes
		}
		require.NoError(t, err)
		outcomes = append(outcomes, o)
	}
}

func TestFramerWellFormed(t *testing.T) {
	logger, logs := observedLogger()
	f := NewFramer(bytes.NewReader(stream(t, "21 22 03 41 42 43")), WithLogger(logger))

	outcomes := collect(t, f)
	require.Len(t, outcomes, 1)
	assert.Equal(t, frame.WellFormed, outcomes[0].Kind)
	assert.Equal(t, []byte("ABC"), outcomes[0].Payload)
	assert.Equal(t, 3, outcomes[0].DeclaredLen)
	assert.Equal(t, 0, outcomes[0].Seq)
	assert.EqualValues(t, 0, outcomes[0].Offset)
	assert.Equal(t, Stats{Bytes: 6, Frames: 1}, f.Stats())
	assert.Zero(t, logs.Len())
}

func TestFramerTruncatedPayload(t *testing.T) {
	f := NewFramer(bytes.NewReader(stream(t, "21 22 04 41 42 43")), WithLogger(zap.NewNop().Sugar()))

	outcomes := collect(t, f)
	require.Len(t, outcomes, 1)
	o := outcomes[0]
	assert.Equal(t, frame.Malformed, o.Kind)
	assert.Equal(t, frame.ReasonTruncated, o.Reason)
	assert.Equal(t, 4, o.DeclaredLen)
	assert.Equal(t, 3, o.ActualLen)
	assert.Nil(t, o.Payload)
	assert.Equal(t, Stats{Bytes: 6, Frames: 1, Malformed: 1}, f.Stats())
}

func TestFramerDropTruncated(t *testing.T) {
	f := NewFramer(bytes.NewReader(stream(t, "21 22 04 41 42 43")),
		WithLogger(zap.NewNop().Sugar()), WithDropTruncated(true))

	assert.Empty(t, collect(t, f))
	assert.Equal(t, Stats{Bytes: 6}, f.Stats())
}

func TestFramerResyncOnEmbeddedMarker(t *testing.T) {
	f := NewFramer(bytes.NewReader(stream(t, "21 22 02 41 21 22 03 58 59 5A")), WithLogger(zap.NewNop().Sugar()))

	outcomes := collect(t, f)
	require.Len(t, outcomes, 2)

	assert.Equal(t, frame.Malformed, outcomes[0].Kind)
	assert.Equal(t, frame.ReasonResync, outcomes[0].Reason)
	assert.Equal(t, 2, outcomes[0].DeclaredLen)
	assert.Equal(t, 1, outcomes[0].ActualLen)
	assert.Equal(t, 0, outcomes[0].Seq)

	assert.Equal(t, frame.WellFormed, outcomes[1].Kind)
	assert.Equal(t, []byte("XYZ"), outcomes[1].Payload)
	assert.Equal(t, 1, outcomes[1].Seq)
	assert.EqualValues(t, 4, outcomes[1].Offset)

	assert.Equal(t, Stats{Bytes: 10, Frames: 2, Malformed: 1}, f.Stats())
}

func TestFramerLenientKeepsEmbeddedMarker(t *testing.T) {
	f := NewFramer(bytes.NewReader(stream(t, "21 22 02 41 21 22 03 58 59 5A")),
		WithLogger(zap.NewNop().Sugar()), WithResyncPolicy(ResyncLenient))

	outcomes := collect(t, f)
	require.Len(t, outcomes, 1)
	assert.Equal(t, frame.WellFormed, outcomes[0].Kind)
	assert.Equal(t, []byte{0x41, 0x21}, outcomes[0].Payload)
	assert.Equal(t, Stats{Bytes: 10, Frames: 1}, f.Stats())
}

func TestFramerMarkerPairInPayloadIsAmbiguous(t *testing.T) {
	// The payload was meant to be 41 21 22 42, the embedded marker pair wins.
	f := NewFramer(bytes.NewReader(stream(t, "21 22 04 41 21 22 42")), WithLogger(zap.NewNop().Sugar()))

	outcomes := collect(t, f)
	require.Len(t, outcomes, 2)
	assert.Equal(t, frame.ReasonResync, outcomes[0].Reason)
	assert.Equal(t, 4, outcomes[0].DeclaredLen)
	assert.Equal(t, 1, outcomes[0].ActualLen)

	// 21 22 42 is a header declaring 0x42 bytes with nothing behind it.
	assert.Equal(t, frame.ReasonTruncated, outcomes[1].Reason)
	assert.Equal(t, 0x42, outcomes[1].DeclaredLen)
	assert.Equal(t, 0, outcomes[1].ActualLen)
	assert.Equal(t, 2, f.Stats().Malformed)
}

func TestFramerLoneMarkerByteInPayload(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		payload []byte
	}{
		{name: "middle", input: "21 22 03 21 41 42", payload: []byte{0x21, 0x41, 0x42}},
		{name: "last-before-eof", input: "21 22 02 41 21", payload: []byte{0x41, 0x21}},
		{name: "last-before-next-frame", input: "21 22 02 41 21 21 22 00", payload: []byte{0x41, 0x21}},
		{name: "second-marker-alone", input: "21 22 02 22 22", payload: []byte{0x22, 0x22}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFramer(bytes.NewReader(stream(t, tt.input)), WithLogger(zap.NewNop().Sugar()))
			o, err := f.Next()
			require.NoError(t, err)
			assert.Equal(t, frame.WellFormed, o.Kind)
			assert.Equal(t, tt.payload, o.Payload)
		})
	}
}

func TestFramerDoubledMarkerByteInPayload(t *testing.T) {
	// The first 21 is payload since it is followed by 21, the second one starts a frame.
	f := NewFramer(bytes.NewReader(stream(t, "21 22 03 21 21 22 01 7E")), WithLogger(zap.NewNop().Sugar()))

	outcomes := collect(t, f)
	require.Len(t, outcomes, 2)
	assert.Equal(t, frame.Malformed, outcomes[0].Kind)
	assert.Equal(t, 1, outcomes[0].ActualLen)
	assert.Equal(t, []byte{0x7e}, outcomes[1].Payload)
	assert.EqualValues(t, 4, outcomes[1].Offset)
}

func TestFramerMissingSecondMarker(t *testing.T) {
	logger, logs := observedLogger()
	f := NewFramer(bytes.NewReader(stream(t, "21 41 21 21 22 01 58")), WithLogger(logger))

	outcomes := collect(t, f)
	require.Len(t, outcomes, 1)
	assert.Equal(t, []byte("X"), outcomes[0].Payload)
	assert.EqualValues(t, 3, outcomes[0].Offset)

	assert.Equal(t, Stats{Bytes: 7, Frames: 1, MissingMarker: 2}, f.Stats())
	warnings := logs.FilterMessageSnippet("missing second marker byte").All()
	require.Len(t, warnings, 2)
	assert.Equal(t, "missing second marker byte at offset 1, got 0x41", warnings[0].Message)
	assert.Equal(t, "missing second marker byte at offset 3, got 0x21", warnings[1].Message)
}

func TestFramerSilentInputs(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "garbage", input: "00 FF 22 7E 41"},
		{name: "first-marker-only", input: "21"},
		{name: "marker-only", input: "21 22"},
		{name: "garbage-then-marker", input: "10 20 21 22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := observedLogger()
			data := stream(t, tt.input)
			f := NewFramer(bytes.NewReader(data), WithLogger(logger))
			assert.Empty(t, collect(t, f))
			assert.Equal(t, Stats{Bytes: int64(len(data))}, f.Stats())
			assert.Zero(t, logs.Len())
		})
	}
}

func TestFramerZeroLengthFrames(t *testing.T) {
	f := NewFramer(bytes.NewReader(stream(t, "21 22 00 21 22 01 41 21 22 00")), WithLogger(zap.NewNop().Sugar()))

	outcomes := collect(t, f)
	require.Len(t, outcomes, 3)
	assert.Empty(t, outcomes[0].Payload)
	assert.True(t, outcomes[0].IsWellFormed())
	assert.Equal(t, []byte("A"), outcomes[1].Payload)
	assert.Empty(t, outcomes[2].Payload)
	assert.Equal(t, 2, outcomes[2].Seq)
}

func TestFramerLeadingGarbage(t *testing.T) {
	f := NewFramer(bytes.NewReader(stream(t, "00 FF 22 21 22 01 7E")), WithLogger(zap.NewNop().Sugar()))

	outcomes := collect(t, f)
	require.Len(t, outcomes, 1)
	assert.Equal(t, []byte{0x7e}, outcomes[0].Payload)
	assert.EqualValues(t, 3, outcomes[0].Offset)
	assert.Zero(t, f.Stats().MissingMarker)
}

func TestFramerEOFIsSticky(t *testing.T) {
	f := NewFramer(bytes.NewReader(stream(t, "21 22 01 41")), WithLogger(zap.NewNop().Sugar()))
	_, err := f.Next()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.Next()
		assert.ErrorIs(t, err, io.EOF)
	}
}

func TestFramerSourceError(t *testing.T) {
	errDisk := errors.New("disk on fire")
	src := io.MultiReader(bytes.NewReader(stream(t, "21 22 01 41 21 22 05 41")), iotest.ErrReader(errDisk))
	f := NewFramer(src, WithLogger(zap.NewNop().Sugar()))

	o, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("A"), o.Payload)

	_, err = f.Next()
	assert.ErrorIs(t, err, errDisk)
	assert.NotErrorIs(t, err, io.EOF)
	_, err = f.Next()
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, 1, f.Stats().Frames, "the frame cut by the failure is not resolved")
}

func TestFramerReadSizes(t *testing.T) {
	input := stream(t, "7F 21 22 02 41 21 22 03 58 59 5A 21 41 21 22 00 21 22 01 21")
	want := NewFramer(bytes.NewReader(input), WithLogger(zap.NewNop().Sugar()))
	expected := collect(t, want)
	require.Len(t, expected, 4)

	for _, size := range []int{1, 2, 3, 16} {
		f := NewFramer(iotest.OneByteReader(bytes.NewReader(input)),
			WithLogger(zap.NewNop().Sugar()), WithBufferSize(size))
		assert.Equalf(t, expected, collect(t, f), "buffer size %d", size)
		assert.Equal(t, want.Stats(), f.Stats())
	}
}
