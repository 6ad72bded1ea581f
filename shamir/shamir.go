// Copyright 2022 Google LLC
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

// Package shamir performs t-of-n [Shamir Secret Sharing] (SSS) over GF(2^8)
// on single bytes and on byte sequences of arbitrary length. SSS is based on
// the Lagrange interpolation theorem, which states that `k` points are enough
// to uniquely determine a polynomial of degree less than or equal to `k - 1`.
//
// Every byte of a secret is the constant term of its own random polynomial.
// Share `i` (counting from 0) holds the evaluations at x = i + 1.
//
// This scheme is secure under the following assumptions:
//   - The scheme requires a trusted dealer to generate the shares. Participants
//     must trust the dealer with access to the secret and to properly generate the
//     shares.
//   - The scheme assumes a passive adversary which can observe fewer than
//     threshold shares without being able to reconstruct the secret. Shares are
//     not authenticated: recovering from fewer than threshold shares, or from
//     corrupted shares, silently yields a wrong secret. Callers that need to
//     detect this must add their own integrity check, for example a checksum
//     embedded in the secret before splitting.
//
// [Shamir Secret Sharing]: https://web.mit.edu/6.857/OldStuff/Fall03/ref/Shamir-HowToShareAsecrets.pdf
package shamir

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/GoogleCloudPlatform/secretsharing/internal/field/gf256"
	"github.com/GoogleCloudPlatform/secretsharing/internal/polynomial"
	"github.com/GoogleCloudPlatform/secretsharing/secrets"
)

// MaxShares is the largest number of shares a secret can be split into.
const MaxShares = 16

// Dealer splits secrets using Rand as its source of randomness.
// A Dealer is safe for concurrent use if Rand is.
type Dealer struct {
	// Rand must be a cryptographically secure source of randomness.
	// If nil, crypto/rand.Reader is used.
	Rand io.Reader
}

var defaultDealer = &Dealer{Rand: rand.Reader}

func (d *Dealer) reader() io.Reader {
	if d == nil || d.Rand == nil {
		return rand.Reader
	}
	return d.Rand
}

// SplitByte splits a single-byte secret into total shares. Element `i` of the
// result is the value of the share with index `i`.
func SplitByte(threshold, total int, secret byte) ([]byte, error) {
	return defaultDealer.SplitByte(threshold, total, secret)
}

// SplitPoints is like SplitByte but returns the shares as points.
func SplitPoints(threshold, total int, secret byte) ([]secrets.Point, error) {
	return defaultDealer.SplitPoints(threshold, total, secret)
}

// SplitSecret splits a secret into total shares where threshold or more shares
// can be combined to reconstruct the original secret.
func SplitSecret(threshold, total int, secret []byte) ([]secrets.Share, error) {
	return defaultDealer.SplitSecret(threshold, total, secret)
}

// SplitByte splits a single-byte secret into total shares.
func (d *Dealer) SplitByte(threshold, total int, secret byte) ([]byte, error) {
	if err := validateSplitInput(threshold, total); err != nil {
		return nil, err
	}
	rows, err := polynomial.Split(threshold, total, []byte{secret}, d.reader())
	if err != nil {
		return nil, err
	}
	out := make([]byte, total)
	for i, row := range rows {
		out[i] = row[0]
	}
	return out, nil
}

// SplitPoints splits a single-byte secret into total points with X set to the
// share index.
func (d *Dealer) SplitPoints(threshold, total int, secret byte) ([]secrets.Point, error) {
	values, err := d.SplitByte(threshold, total, secret)
	if err != nil {
		return nil, err
	}
	points := make([]secrets.Point, len(values))
	for i, v := range values {
		points[i] = secrets.Point{X: byte(i), Y: v}
	}
	return points, nil
}

// SplitSecret splits a secret into total shares, each holding one value per
// byte of the secret.
func (d *Dealer) SplitSecret(threshold, total int, secret []byte) ([]secrets.Share, error) {
	if secret == nil {
		return nil, fmt.Errorf("%w: secret", ErrNilInput)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: secret must have at least one byte", ErrEmptyInput)
	}
	if err := validateSplitInput(threshold, total); err != nil {
		return nil, err
	}
	rows, err := polynomial.Split(threshold, total, secret, d.reader())
	if err != nil {
		return nil, err
	}
	shares := make([]secrets.Share, total)
	for i, row := range rows {
		shares[i] = secrets.NewShare(byte(i), row)
	}
	return shares, nil
}

// RecoverPoints recovers a single-byte secret from points produced by
// SplitPoints or SplitByte.
//
// The number of points provided must meet the threshold the secret was split
// with. RecoverPoints cannot detect missing, bogus or corrupted points.
func RecoverPoints(points []secrets.Point) (byte, error) {
	if points == nil {
		return 0, fmt.Errorf("%w: points", ErrNilInput)
	}
	if len(points) == 0 {
		return 0, fmt.Errorf("%w: at least 1 point is needed to recover a secret", ErrEmptyInput)
	}
	indices := make([]byte, len(points))
	for i, p := range points {
		indices[i] = p.X
	}
	out, err := recoverColumns(indices, 1, func(share, _ int) byte { return points[share].Y })
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// RecoverPairs recovers a single-byte secret from (index, value) pairs.
func RecoverPairs(pairs [][2]byte) (byte, error) {
	if pairs == nil {
		return 0, fmt.Errorf("%w: pairs", ErrNilInput)
	}
	if len(pairs) == 0 {
		return 0, fmt.Errorf("%w: at least 1 pair is needed to recover a secret", ErrEmptyInput)
	}
	indices := make([]byte, len(pairs))
	for i, p := range pairs {
		indices[i] = p[0]
	}
	out, err := recoverColumns(indices, 1, func(share, _ int) byte { return pairs[share][1] })
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// RecoverSecret recovers a secret from shares produced by SplitSecret.
//
// The number of shares provided must meet the threshold the secret was split
// with. RecoverSecret cannot detect missing, bogus or corrupted shares.
func RecoverSecret(shares []secrets.Share) ([]byte, error) {
	if shares == nil {
		return nil, fmt.Errorf("%w: shares", ErrNilInput)
	}
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: at least 1 share is needed to recover a secret", ErrEmptyInput)
	}
	size := shares[0].Len()
	indices := make([]byte, len(shares))
	for i, s := range shares {
		if s.Len() != size {
			return nil, fmt.Errorf("%w: share %d has %d values, share %d has %d", ErrSizeMismatch, s.Index(), s.Len(), shares[0].Index(), size)
		}
		indices[i] = s.Index()
	}
	return recoverColumns(indices, size, func(share, pos int) byte { return shares[share].ValueAt(pos) })
}

// recoverColumns interpolates `size` secrets at x = 0. value(share, pos)
// returns the y coordinate of share number `share` at byte position `pos`.
func recoverColumns(indices []byte, size int, value func(share, pos int) byte) ([]byte, error) {
	xVals, err := evaluationPoints(indices)
	if err != nil {
		return nil, err
	}
	// The Lagrange coefficients only depend on the x coordinates, hence they
	// are shared by every byte position.
	coefficients, err := polynomial.LagrangeCoefficients(xVals)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	yVals := make([]gf256.Element, len(indices))
	for pos := range out {
		for i := range yVals {
			yVals[i] = gf256.Element(value(i, pos))
		}
		s, err := polynomial.Interpolate(coefficients, yVals)
		if err != nil {
			return nil, err
		}
		out[pos] = byte(s)
	}
	return out, nil
}

func evaluationPoints(indices []byte) ([]gf256.Element, error) {
	var seen [MaxShares]bool
	xVals := make([]gf256.Element, len(indices))
	for i, idx := range indices {
		if int(idx) >= MaxShares {
			return nil, fmt.Errorf("%w: %d, must be smaller than %d", ErrInvalidIndex, idx, MaxShares)
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateIndex, idx)
		}
		seen[idx] = true
		xVals[i] = gf256.Element(secrets.EvaluationPoint(idx))
	}
	return xVals, nil
}

func validateSplitInput(threshold, total int) error {
	if threshold < 1 {
		return fmt.Errorf("%w: threshold must be at least 1, got %d", ErrInvalidThreshold, threshold)
	}
	if total > MaxShares {
		return fmt.Errorf("%w: at most %d shares are supported, got %d", ErrTooManyShares, MaxShares, total)
	}
	if threshold > total {
		return fmt.Errorf("%w: threshold (%d) should be smaller than or equal to the number of shares (%d)", ErrInvalidThreshold, threshold, total)
	}
	return nil
}
