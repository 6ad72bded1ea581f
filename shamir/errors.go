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

package shamir

import "errors"

// Errors returned by the split and recover functions. They are wrapped with
// details about the offending argument; use errors.Is to test for them.
var (
	// ErrNilInput is returned for a nil secret or a nil share collection.
	ErrNilInput = errors.New("input must not be nil")
	// ErrEmptyInput is returned for an empty secret or an empty share collection.
	ErrEmptyInput = errors.New("input must not be empty")
	// ErrInvalidThreshold is returned when the threshold is zero or larger
	// than the number of shares.
	ErrInvalidThreshold = errors.New("invalid threshold")
	// ErrTooManyShares is returned when more than MaxShares shares are requested.
	ErrTooManyShares = errors.New("too many shares")
	// ErrSizeMismatch is returned when shares hold a different number of values.
	ErrSizeMismatch = errors.New("shares have different sizes")
	// ErrInvalidIndex is returned for a share index that no split can produce.
	ErrInvalidIndex = errors.New("invalid share index")
	// ErrDuplicateIndex is returned when two shares have the same index.
	ErrDuplicateIndex = errors.New("duplicate share index")
)
