// Copyright 2026 Google LLC
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

// Package gf256 implements arithmetic in GF(2^8) over the AES polynomial.
package gf256

import (
	"fmt"
	"io"
)

// x^8 + x^4 + x^3 + x + 1, with the x^8 term implied by the byte width.
const reducer = 0x1B

// Add returns a + b. Subtraction is the same operation.
func Add(a, b byte) byte {
	return a ^ b
}

// Mul returns a * b without lookup tables or data-dependent branches.
func Mul(a, b byte) byte {
	var p byte
	for i := 7; i >= 0; i-- {
		// Masks are all ones or all zeros depending on the tested bit.
		carry := -(p >> 7) & reducer
		term := -((a >> i) & 1) & b
		p = term ^ carry ^ (p << 1)
	}
	return p
}

// Inv returns the multiplicative inverse of a, computed as a^254.
func Inv(a byte) (byte, error) {
	if a == 0 {
		return 0, fmt.Errorf("zero has no inverse")
	}
	a2 := Mul(a, a)
	a3 := Mul(a2, a)
	t := Mul(a3, a3)  // a^6
	t = Mul(t, t)     // a^12
	a15 := Mul(t, a3) // a^15
	t = Mul(t, t)     // a^24
	t = Mul(t, t)     // a^48
	t = Mul(t, a15)   // a^63
	t = Mul(t, t)     // a^126
	t = Mul(t, a)     // a^127
	return Mul(t, t), nil
}

// Div returns a / b.
func Div(a, b byte) (byte, error) {
	inv, err := Inv(b)
	if err != nil {
		return 0, err
	}
	return Mul(a, inv), nil
}

// RandomNonZero reads one uniformly distributed non-zero element from r.
func RandomNonZero(r io.Reader) (byte, error) {
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, fmt.Errorf("reading random element: %v", err)
		}
		if b[0] != 0 {
			return b[0], nil
		}
	}
}
