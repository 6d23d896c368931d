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

import "errors"

var (
	// ErrInvalidPayloadLength occurs when a payload does not fit into the one-byte length field.
	ErrInvalidPayloadLength = errors.New("payload length does not fit into a byte")
	// ErrInvalidResyncPolicy occurs when an unknown resync policy name is parsed.
	ErrInvalidResyncPolicy = errors.New("unknown resync policy, expected: active or lenient")
)
