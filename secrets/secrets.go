// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package secrets contains the share types for secret sharing. A single-byte
// secret is split into `Point`s, a secret of arbitrary length into `Share`s.
//
// Shares are addressed by an index starting at 0. The polynomial is evaluated
// at x = index + 1, so that x = 0, where the secret lives, is never handed out.
package secrets

// Point represents one share of a single-byte secret.
type Point struct {
	// X is the share index.
	X byte
	// Y is the value of the share.
	Y byte
}

// Share represents one share of a multi-byte secret: one value per byte of
// the secret, all evaluated at the same index.
type Share struct {
	index  byte
	values []byte
}

// NewShare creates a share from an index and its values. The values are copied.
func NewShare(index byte, values []byte) Share {
	return Share{index: index, values: append([]byte(nil), values...)}
}

// Index returns the share index.
func (s Share) Index() byte { return s.index }

// Values returns a copy of the share values.
func (s Share) Values() []byte { return append([]byte(nil), s.values...) }

// Len returns the number of values, which is the length of the split secret.
func (s Share) Len() int { return len(s.values) }

// ValueAt returns the value for byte position i of the secret.
func (s Share) ValueAt(i int) byte { return s.values[i] }

// EvaluationPoint returns the x coordinate a share index is evaluated at.
// The result is only meaningful for indices below 255.
func EvaluationPoint(index byte) byte {
	return index + 1
}
