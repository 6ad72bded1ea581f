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

// Package gf256 implements arithmetic in the field GF(2^8).
//
// The field is defined by the AES irreducible polynomial x^8 + x^4 + x^3 + x + 1
// (0x11B). Multiplication and division go through log/antilog tables built
// once from the generator 0x03 when the package is initialized. The tables
// are never written afterwards, so concurrent use needs no synchronization.
//
// Shares produced with a different polynomial or generator are not
// interoperable with this package.
package gf256

import (
	"fmt"
)

// Element is an element of GF(2^8).
type Element byte

// irreducible polynomial (x^8 + x^4 + x^3 + x + 1)
// (x^8 + x^4 + x^3 + x + 1) = {0x01 0x1B}
// we deal with uint8 so we only need 0x1B
const irreduciblePolynomial = 0x1B

// Generator is the generator of the multiplicative group used to build the
// log/antilog tables.
const Generator Element = 0x03

// order of the multiplicative group.
const order = 255

var (
	// expTable[i] = Generator^i. It is doubled so that the sum of two
	// logarithms can index it without a modulo.
	expTable [2 * order]Element
	// logTable[e] = log_Generator(e). logTable[0] is unused.
	logTable [256]uint8
)

func init() {
	x := Element(1)
	for i := 0; i < order; i++ {
		expTable[i] = x
		expTable[i+order] = x
		logTable[x] = uint8(i)
		x = shiftMultiply(x, Generator)
	}
}

// shiftMultiply multiplies without the tables. It is only used to build them.
func shiftMultiply(a, b Element) Element {
	x := byte(a)
	y := byte(b)

	var product uint8

	// Negating a 0/1 bit yields an all-zeros or all-ones mask, which lets the
	// loop select values with AND instead of branching.
	for i := 7; i >= 0; i-- {
		// if MSB in current product is set, mod is irreduciblePolynomial, else 0
		mod := (-(product >> 7)) & irreduciblePolynomial

		// multiply coefficient x[i] with every coefficient in y
		xiTimesY := -((x >> i) & 1) & y

		product = xiTimesY ^ mod ^ (product << 1)
	}
	return Element(product)
}

// Add element `a` and returns a new element in GF(2^8).
func (e Element) Add(a Element) Element {
	return e ^ a
}

// Subtract element `a` and returns a new element in GF(2^8).
// In characteristic 2 this is the same operation as Add.
func (e Element) Subtract(a Element) Element {
	return e.Add(a)
}

// Multiply by element `a` and returns a new element.
func (e Element) Multiply(a Element) Element {
	if e == 0 || a == 0 {
		return 0
	}
	return expTable[int(logTable[e])+int(logTable[a])]
}

// Divide by element `a` and returns a new element.
// Division by zero is not defined and returns an error.
func (e Element) Divide(a Element) (Element, error) {
	if a == 0 {
		return 0, fmt.Errorf("division of %d by zero is not defined", e)
	}
	if e == 0 {
		return 0, nil
	}
	return expTable[int(logTable[e])+order-int(logTable[a])], nil
}

// Inverse returns an element that's the multiplicative inverse.
// If element has no inverse, an error is returned.
func (e Element) Inverse() (Element, error) {
	if e == 0 {
		return 0, fmt.Errorf("inverse of zero is not defined")
	}
	return expTable[order-int(logTable[e])], nil
}

// Pow raises the element to the n-th power. Negative exponents raise the
// inverse. Zero to the power of zero is one, zero to any other power is zero.
func (e Element) Pow(n int) Element {
	if n == 0 {
		return 1
	}
	if e == 0 {
		return 0
	}
	m := n % order
	if m < 0 {
		m += order
	}
	return expTable[(int(logTable[e])*m)%order]
}
