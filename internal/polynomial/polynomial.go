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

// Package polynomial implements the polynomial arithmetic behind shamir secret
// sharing over GF(2^8): building and evaluating random polynomials, and
// Lagrange interpolation at x = 0.
package polynomial

import (
	"fmt"
	"io"

	"github.com/GoogleCloudPlatform/secretsharing/internal/field/gf256"
)

// Split splits every byte of secret with its own random polynomial of degree
// threshold - 1 and evaluates the polynomials at x = 1..numShares.
//
// The returned rows are indexed by share:
//
//	rows[0] = [ F1(1), F2(1), ..., FL(1) ]
//	rows[1] = [ F1(2), F2(2), ..., FL(2) ]
//	rows[N-1] = [ F1(N), F2(N), ..., FL(N) ]
//
// The random coefficients are read from rand. With a threshold of 1 every row
// is a copy of the secret and rand is not read.
func Split(threshold, numShares int, secret []byte, rand io.Reader) ([][]byte, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("threshold must be at least 1, got %d", threshold)
	}
	if numShares < threshold {
		return nil, fmt.Errorf("numShares (%d) must not be smaller than threshold (%d)", numShares, threshold)
	}
	if numShares > 255 {
		return nil, fmt.Errorf("numShares (%d) must be smaller than 256", numShares)
	}
	rows := make([][]byte, numShares)
	if threshold == 1 {
		for i := range rows {
			rows[i] = append([]byte(nil), secret...)
		}
		return rows, nil
	}

	degree := threshold - 1
	// One read for all byte positions; each position gets its own slice of
	// coefficients so no randomness is shared between polynomials.
	randomness := make([]byte, len(secret)*degree)
	defer clear(randomness)
	if _, err := io.ReadFull(rand, randomness); err != nil {
		return nil, fmt.Errorf("failed to read random coefficients: %v", err)
	}

	for i := range rows {
		rows[i] = make([]byte, len(secret))
	}
	coefficients := make([]gf256.Element, threshold)
	defer clear(coefficients)
	for pos, subsecret := range secret {
		// subsecret + R_1 * x^1 + R_2 * X^2 + ... + R_N * X^N
		coefficients[0] = gf256.Element(subsecret)
		for k, r := range randomness[pos*degree : (pos+1)*degree] {
			coefficients[k+1] = gf256.Element(r)
		}
		for i := range rows {
			rows[i][pos] = byte(Evaluate(coefficients, gf256.Element(i+1)))
		}
	}
	return rows, nil
}

// Evaluate evaluates a polynomial at `x` where `coefficients` take the form:
// f(x) = c[n-1] * x^(n-1) + c[n-2] * x^(n-2) + ... + c[1] * x^1 + c[0]
func Evaluate(coefficients []gf256.Element, x gf256.Element) gf256.Element {
	var sum gf256.Element
	for i := len(coefficients) - 1; i > 0; i-- {
		sum = sum.Add(coefficients[i]).Multiply(x)
	}
	if len(coefficients) == 0 {
		return sum
	}
	return sum.Add(coefficients[0])
}

// LagrangeCoefficients computes the Lagrange basis polynomials at x = 0 for
// the given x coordinates:
//
//	∏j={1,n,j≠i} ( x[j] / ( x[j] - x[i] ) )
//
// Subtraction is xor in GF(2^8), hence 0 - x[j] = x[j]. The x coordinates must
// be distinct; a repeated coordinate returns an error.
func LagrangeCoefficients(x []gf256.Element) ([]gf256.Element, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("must have at least 1 value")
	}
	out := make([]gf256.Element, len(x))
	for i := range x {
		num, den := gf256.Element(1), gf256.Element(1)
		for j := range x {
			if i == j {
				continue
			}
			if x[i] == x[j] {
				return nil, fmt.Errorf("all shares should be unique points, x = %d repeats", x[i])
			}
			num = num.Multiply(x[j])
			den = den.Multiply(x[i].Subtract(x[j]))
		}
		var err error
		if out[i], err = num.Divide(den); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Interpolate recovers the constant term of the polynomial from the y
// coordinates and the Lagrange coefficients of their x coordinates:
//
//	∑i={1,n} y[i] * lagrange_coefficient[i]
func Interpolate(lagCoeff []gf256.Element, yVals []gf256.Element) (gf256.Element, error) {
	if len(lagCoeff) != len(yVals) {
		return 0, fmt.Errorf("invalid lagrange coefficients: got %d for %d values", len(lagCoeff), len(yVals))
	}
	var sum gf256.Element
	for i, y := range yVals {
		sum = sum.Add(y.Multiply(lagCoeff[i]))
	}
	return sum, nil
}
