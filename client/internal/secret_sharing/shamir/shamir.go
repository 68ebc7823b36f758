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

// Package shamir performs t-of-n [Shamir Secret Sharing] over GF(2^8), one
// polynomial per secret byte. Any t shares recover the secret by Lagrange
// interpolation at zero; fewer reveal nothing about it.
//
// The scheme trusts the dealer and assumes a passive adversary. It does not
// detect bogus or corrupted shares: callers must authenticate the result.
//
// [Shamir Secret Sharing]: https://web.mit.edu/6.857/OldStuff/Fall03/ref/Shamir-HowToShareAsecrets.pdf
package shamir

import (
	"fmt"
	"io"

	"github.com/LithiumSR/cfshare/client/internal/secret_sharing/gf256"
)

// MaxShares is the number of distinct non-zero x-coordinates in GF(2^8).
const MaxShares = 255

// Share is one evaluation point of every per-byte polynomial.
type Share struct {
	// X is the evaluation point, in 1..MaxShares.
	X byte
	// Value holds f_i(X) for each secret byte i.
	Value []byte
}

// Split splits secret into numShares shares, any threshold of which can be
// combined to recover it. Random coefficients are read from r. Shares are
// returned with X = 1..numShares in order.
func Split(r io.Reader, secret []byte, threshold, numShares int) ([]Share, error) {
	switch {
	case len(secret) == 0:
		return nil, fmt.Errorf("secret must not be empty")
	case threshold < 2:
		return nil, fmt.Errorf("threshold must be at least 2, got %d", threshold)
	case numShares < threshold:
		return nil, fmt.Errorf("numShares (%d) must be at least threshold (%d)", numShares, threshold)
	case numShares > MaxShares:
		return nil, fmt.Errorf("numShares must be at most %d, got %d", MaxShares, numShares)
	}

	shares := make([]Share, numShares)
	for i := range shares {
		shares[i] = Share{X: byte(i + 1), Value: make([]byte, len(secret))}
	}
	coeffs := make([]byte, threshold)
	for b, s := range secret {
		// f(x) = s + c1*x + ... + c(t-1)*x^(t-1), with non-zero random c.
		coeffs[0] = s
		for i := 1; i < threshold; i++ {
			c, err := gf256.RandomNonZero(r)
			if err != nil {
				return nil, err
			}
			coeffs[i] = c
		}
		for i := range shares {
			shares[i].Value[b] = evaluate(coeffs, shares[i].X)
		}
	}
	clear(coeffs)
	return shares, nil
}

// evaluate computes the polynomial at x with Horner's rule.
func evaluate(coeffs []byte, x byte) byte {
	var sum byte
	for i := len(coeffs) - 1; i > 0; i-- {
		sum = gf256.Mul(gf256.Add(sum, coeffs[i]), x)
	}
	return gf256.Add(sum, coeffs[0])
}

// Combine interpolates the shares at zero. Every share must have a distinct
// non-zero X and the same value length. Passing fewer shares than the split
// threshold yields an unrelated value without error.
func Combine(shares []Share) ([]byte, error) {
	if len(shares) < 2 {
		return nil, fmt.Errorf("at least 2 shares are required, got %d", len(shares))
	}
	size := len(shares[0].Value)
	if size == 0 {
		return nil, fmt.Errorf("share value must not be empty")
	}
	seen := make(map[byte]bool, len(shares))
	for _, s := range shares {
		if s.X == 0 {
			return nil, fmt.Errorf("share has reserved X value 0")
		}
		if seen[s.X] {
			return nil, fmt.Errorf("duplicate share X value %d", s.X)
		}
		seen[s.X] = true
		if len(s.Value) != size {
			return nil, fmt.Errorf("share X=%d has length %d, want %d", s.X, len(s.Value), size)
		}
	}

	basis, err := lagrangeAtZero(shares)
	if err != nil {
		return nil, err
	}
	secret := make([]byte, size)
	for b := range secret {
		var sum byte
		for i, s := range shares {
			sum = gf256.Add(sum, gf256.Mul(s.Value[b], basis[i]))
		}
		secret[b] = sum
	}
	return secret, nil
}

// lagrangeAtZero returns l_i(0) = prod_{j != i} x_j / (x_j - x_i) for each share.
func lagrangeAtZero(shares []Share) ([]byte, error) {
	basis := make([]byte, len(shares))
	for i, si := range shares {
		l := byte(1)
		for j, sj := range shares {
			if i == j {
				continue
			}
			term, err := gf256.Div(sj.X, gf256.Add(sj.X, si.X))
			if err != nil {
				return nil, err
			}
			l = gf256.Mul(l, term)
		}
		basis[i] = l
	}
	return basis, nil
}
