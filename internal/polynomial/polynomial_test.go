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

package polynomial_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"testing"

	"github.com/GoogleCloudPlatform/secretsharing/internal/field/gf256"
	"github.com/GoogleCloudPlatform/secretsharing/internal/polynomial"
	"github.com/google/go-cmp/cmp"
	"github.com/google/tink/go/subtle/random"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

type countingReader struct {
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.n += len(p)
	return rand.Read(p)
}

func reconstruct(t *testing.T, rows [][]byte, indices []int) []byte {
	t.Helper()
	x := make([]gf256.Element, len(indices))
	for i, idx := range indices {
		x[i] = gf256.Element(idx + 1)
	}
	coeffs, err := polynomial.LagrangeCoefficients(x)
	if err != nil {
		t.Fatalf("LagrangeCoefficients(%v) err = %v, want nil", x, err)
	}
	out := make([]byte, len(rows[indices[0]]))
	for pos := range out {
		y := make([]gf256.Element, len(indices))
		for i, idx := range indices {
			y[i] = gf256.Element(rows[idx][pos])
		}
		s, err := polynomial.Interpolate(coeffs, y)
		if err != nil {
			t.Fatalf("Interpolate() err = %v, want nil", err)
		}
		out[pos] = byte(s)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	for _, tc := range []struct {
		coefficients []gf256.Element
		x            gf256.Element
		want         gf256.Element
	}{
		{coefficients: nil, x: 3, want: 0},
		{coefficients: []gf256.Element{5}, x: 200, want: 5},
		{coefficients: []gf256.Element{1, 1}, x: 2, want: 3},
		// 7 + 2*3 + 1*3^2 = 7 ^ 6 ^ 5
		{coefficients: []gf256.Element{7, 2, 1}, x: 3, want: 7 ^ 6 ^ 5},
		{coefficients: []gf256.Element{9, 4, 4}, x: 0, want: 9},
	} {
		t.Run(fmt.Sprintf("%v at %d", tc.coefficients, tc.x), func(t *testing.T) {
			if got := polynomial.Evaluate(tc.coefficients, tc.x); got != tc.want {
				t.Errorf("Evaluate(%v, %d) got = %d, want = %d", tc.coefficients, tc.x, got, tc.want)
			}
		})
	}
}

func TestSplitThresholdOneDoesNotReadRandomness(t *testing.T) {
	secret := []byte("abcdefghijklmnopqrstuvwxyz123456")
	rows, err := polynomial.Split(1, 5, secret, failingReader{})
	if err != nil {
		t.Fatalf("Split() err = %v, want nil", err)
	}
	for i, row := range rows {
		if !bytes.Equal(row, secret) {
			t.Errorf("rows[%d] got = %v, want = %v", i, row, secret)
		}
	}
}

func TestSplitReadsOneCoefficientPerDegreeAndByte(t *testing.T) {
	for _, tc := range []struct {
		threshold, numShares, secretLen int
	}{
		{threshold: 2, numShares: 3, secretLen: 1},
		{threshold: 3, numShares: 5, secretLen: 32},
		{threshold: 16, numShares: 16, secretLen: 7},
	} {
		t.Run(fmt.Sprintf("t-%d n-%d", tc.threshold, tc.numShares), func(t *testing.T) {
			r := &countingReader{}
			if _, err := polynomial.Split(tc.threshold, tc.numShares, random.GetRandomBytes(uint32(tc.secretLen)), r); err != nil {
				t.Fatalf("Split() err = %v, want nil", err)
			}
			if want := (tc.threshold - 1) * tc.secretLen; r.n != want {
				t.Errorf("Split() read %d random bytes, want %d", r.n, want)
			}
		})
	}
}

func TestSplitEvaluatesAtIndexPlusOne(t *testing.T) {
	// Coefficients for byte 0 are (1, 2), for byte 1 (3, 4).
	r := bytes.NewReader([]byte{1, 2, 3, 4})
	secret := []byte{0x10, 0x20}
	rows, err := polynomial.Split(3, 4, secret, r)
	if err != nil {
		t.Fatalf("Split() err = %v, want nil", err)
	}
	for i, row := range rows {
		x := gf256.Element(i + 1)
		want := []byte{
			byte(polynomial.Evaluate([]gf256.Element{0x10, 1, 2}, x)),
			byte(polynomial.Evaluate([]gf256.Element{0x20, 3, 4}, x)),
		}
		if !cmp.Equal(row, want) {
			t.Errorf("rows[%d] got = %v, want = %v", i, row, want)
		}
	}
}

func TestSplitFailingReader(t *testing.T) {
	if _, err := polynomial.Split(2, 3, []byte{1}, failingReader{}); err == nil {
		t.Fatalf("Split() err = nil, want non-nil error")
	}
}

func TestSplitInvalidParameters(t *testing.T) {
	for _, tc := range []struct {
		name                 string
		threshold, numShares int
	}{
		{name: "zero threshold", threshold: 0, numShares: 3},
		{name: "threshold above shares", threshold: 4, numShares: 3},
		{name: "too many shares", threshold: 2, numShares: 256},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := polynomial.Split(tc.threshold, tc.numShares, []byte{1}, rand.Reader); err == nil {
				t.Errorf("Split(%d, %d) err = nil, want non-nil error", tc.threshold, tc.numShares)
			}
		})
	}
}

func TestSplitInterpolateAllSubsets(t *testing.T) {
	secret := random.GetRandomBytes(16)
	const numShares = 6
	for threshold := 1; threshold <= numShares; threshold++ {
		rows, err := polynomial.Split(threshold, numShares, secret, rand.Reader)
		if err != nil {
			t.Fatalf("Split(%d, %d) err = %v, want nil", threshold, numShares, err)
		}
		for mask := 0; mask < 1<<numShares; mask++ {
			var indices []int
			for i := 0; i < numShares; i++ {
				if mask&(1<<i) != 0 {
					indices = append(indices, i)
				}
			}
			if len(indices) < threshold {
				continue
			}
			if got := reconstruct(t, rows, indices); !bytes.Equal(got, secret) {
				t.Errorf("threshold %d, shares %v: got %x, want %x", threshold, indices, got, secret)
			}
		}
	}
}

func TestInterpolateBelowThresholdIsOffByLeadingTerm(t *testing.T) {
	// With f(x) = s + x + x^2, the line through (xi, f(xi)) and (xj, f(xj))
	// crosses x = 0 at s + xi*xj.
	secret := []byte{94}
	rows, err := polynomial.Split(3, 5, secret, bytes.NewReader([]byte{1, 1}))
	if err != nil {
		t.Fatalf("Split() err = %v, want nil", err)
	}
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			got := reconstruct(t, rows, []int{i, j})
			want := gf256.Element(secret[0]).Add(gf256.Element(i + 1).Multiply(gf256.Element(j + 1)))
			if got[0] != byte(want) {
				t.Errorf("shares (%d, %d): got %d, want %d", i, j, got[0], want)
			}
			if got[0] == secret[0] {
				t.Errorf("shares (%d, %d) recovered the secret below threshold", i, j)
			}
		}
	}
}

func TestLagrangeCoefficients(t *testing.T) {
	t.Run("single point", func(t *testing.T) {
		got, err := polynomial.LagrangeCoefficients([]gf256.Element{7})
		if err != nil {
			t.Fatal(err)
		}
		if want := []gf256.Element{1}; !cmp.Equal(got, want) {
			t.Errorf("LagrangeCoefficients() got = %v, want = %v", got, want)
		}
	})
	t.Run("coefficients sum to one", func(t *testing.T) {
		// Interpolating the constant polynomial 1 must give 1.
		got, err := polynomial.LagrangeCoefficients([]gf256.Element{1, 2, 3, 9, 200})
		if err != nil {
			t.Fatal(err)
		}
		var sum gf256.Element
		for _, c := range got {
			sum = sum.Add(c)
		}
		if sum != 1 {
			t.Errorf("sum of coefficients got = %d, want = 1", sum)
		}
	})
	t.Run("duplicate x", func(t *testing.T) {
		if _, err := polynomial.LagrangeCoefficients([]gf256.Element{1, 2, 1}); err == nil {
			t.Errorf("LagrangeCoefficients() err = nil, want non-nil error")
		}
	})
	t.Run("empty", func(t *testing.T) {
		if _, err := polynomial.LagrangeCoefficients(nil); err == nil {
			t.Errorf("LagrangeCoefficients() err = nil, want non-nil error")
		}
	})
}

func TestInterpolateLengthMismatch(t *testing.T) {
	if _, err := polynomial.Interpolate([]gf256.Element{1, 2}, []gf256.Element{1}); err == nil {
		t.Fatalf("Interpolate() err = nil, want non-nil error")
	}
}
