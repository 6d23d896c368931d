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
	"strings"

	"github.com/panjf2000/pktscan/pkg/logging"
)

// ResyncPolicy decides what a start marker found inside a payload means.
type ResyncPolicy int

const (
	// ResyncActive abandons the frame in progress as soon as a full start marker
	// shows up in its payload, and parses a new frame from there.
	ResyncActive ResyncPolicy = iota
	// ResyncLenient treats marker bytes inside a payload as ordinary data, a frame
	// is then only found malformed when the stream ends early.
	ResyncLenient
)

func (p ResyncPolicy) String() string {
	switch p {
	case ResyncActive:
		return "active"
	case ResyncLenient:
		return "lenient"
	default:
		return "unknown"
	}
}

// ParseResyncPolicy maps "active" or "lenient" to its ResyncPolicy.
func ParseResyncPolicy(s string) (ResyncPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "":
		return ResyncActive, nil
	case "lenient":
		return ResyncLenient, nil
	default:
		return ResyncActive, ErrInvalidResyncPolicy
	}
}

// Option is a function that will set up option.
type Option func(opts *Options)

func loadOptions(options ...Option) *Options {
	opts := new(Options)
	for _, option := range options {
		option(opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetDefaultLogger()
	}
	return opts
}

// Options are configurations for the framer.
type Options struct {
	// ResyncPolicy decides whether a start marker inside a payload starts a new frame,
	// ResyncActive is the default.
	ResyncPolicy ResyncPolicy

	// DropTruncated silently drops a frame cut short by the end of the stream
	// instead of reporting it as malformed.
	DropTruncated bool

	// BufferSize is the size of the read-ahead window in bytes, ring.DefaultBufferSize is used if it's 0.
	BufferSize int

	// Logger is the diagnostics channel, logging.GetDefaultLogger() is used if it's nil.
	Logger logging.Logger
}

// WithOptions sets up all options.
func WithOptions(options Options) Option {
	return func(opts *Options) {
		*opts = options
	}
}

// WithResyncPolicy sets up the resync policy.
func WithResyncPolicy(policy ResyncPolicy) Option {
	return func(opts *Options) {
		opts.ResyncPolicy = policy
	}
}

// WithDropTruncated sets up whether frames truncated by the end of stream are dropped silently.
func WithDropTruncated(drop bool) Option {
	return func(opts *Options) {
		opts.DropTruncated = drop
	}
}

// WithBufferSize sets up the read-ahead window size.
func WithBufferSize(size int) Option {
	return func(opts *Options) {
		opts.BufferSize = size
	}
}

// WithLogger sets up a customized logger.
func WithLogger(logger logging.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}
