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

// Package shares generates the split secret and converts it to and from
// printable share tokens.
//
// A token has the form "<scheme>-<threshold>-<payload>". The threshold is
// carried so that combining too few shares fails instead of silently
// producing the wrong secret.
package shares

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/LithiumSR/cfshare/constants"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
)

// SecretBytes is the size of the shared secret in bytes.
const SecretBytes = 32

// Secret is the random key protected by the shares.
type Secret [SecretBytes]byte

// NewSecret reads a Secret from r.
func NewSecret(r io.Reader) (Secret, error) {
	var s Secret
	if _, err := io.ReadFull(r, s[:]); err != nil {
		return Secret{}, cferrors.New(cferrors.Entropy, "new secret", err)
	}
	return s, nil
}

// Wipe zeroes the secret.
func (s *Secret) Wipe() {
	clear(s[:])
}

// Share is one printable token and its 1-based index.
type Share struct {
	Index uint64
	Token []byte
}

// Scheme turns a secret into tokens and back.
type Scheme interface {
	// Name is the token prefix identifying the scheme.
	Name() string
	// Create returns total shares, indexed 1..total, any threshold of which
	// recover secret.
	Create(r io.Reader, threshold, total int, secret []byte) ([]Share, error)
	// Combine recovers the secret from payloads whose tokens were already
	// checked for a common scheme and threshold, sorted by index.
	Combine(payloads []Payload) ([]byte, error)
}

// Payload is the scheme-specific part of a token.
type Payload struct {
	Index uint64
	Data  string
}

var schemes = map[string]Scheme{
	shamirName: Shamir{},
	sssaName:   SSSA{},
}

// DefaultScheme is used when no scheme is configured.
const DefaultScheme = shamirName

// Lookup returns the scheme registered under name.
func Lookup(name string) (Scheme, error) {
	s, ok := schemes[strings.ToLower(name)]
	if !ok {
		return nil, cferrors.Newf(cferrors.Configuration, "lookup scheme", "unknown sharing scheme %q", name)
	}
	return s, nil
}

// ValidateParams checks 1 < threshold <= total <= constants.MaxShares.
func ValidateParams(threshold, total int) error {
	if threshold <= 1 || threshold > total || total > constants.MaxShares {
		return cferrors.Newf(cferrors.Configuration, "validate", "threshold %d, total %d: %w", threshold, total, cferrors.ErrInvalidThreshold)
	}
	return nil
}

// FormatToken builds the printable token "<scheme>-<threshold>-<payload>".
// Schemes outside this package use it so that Combine can route their
// tokens back to them.
func FormatToken(scheme string, threshold int, payload string) []byte {
	return []byte(fmt.Sprintf("%s-%d-%s", scheme, threshold, payload))
}

func parseToken(token []byte) (string, int, string, error) {
	parts := strings.SplitN(string(token), "-", 3)
	if len(parts) != 3 || parts[2] == "" {
		return "", 0, "", fmt.Errorf("malformed share token")
	}
	threshold, err := strconv.Atoi(parts[1])
	if err != nil || threshold < 2 || threshold > constants.MaxShares {
		return "", 0, "", fmt.Errorf("malformed threshold in share token")
	}
	return parts[0], threshold, parts[2], nil
}

// Combine recovers the secret from shares using the built-in schemes. The
// shares must use one scheme and threshold, have distinct indices and number
// at least the threshold.
func Combine(shares []Share) (Secret, error) {
	return CombineWith(nil, shares)
}

// CombineWith is Combine, but tokens named after preferred are handed to
// preferred instead of the built-in scheme of that name.
func CombineWith(preferred Scheme, shares []Share) (Secret, error) {
	const op = "combine shares"
	if len(shares) == 0 {
		return Secret{}, cferrors.New(cferrors.Share, op, cferrors.ErrInsufficientShares)
	}

	var (
		scheme    string
		threshold int
	)
	parsed := make([]Payload, 0, len(shares))
	seen := make(map[uint64]bool, len(shares))
	for _, s := range shares {
		name, t, payload, err := parseToken(s.Token)
		if err != nil {
			return Secret{}, cferrors.New(cferrors.Share, op, fmt.Errorf("share %d: %v", s.Index, err))
		}
		if s.Index == 0 || s.Index > constants.MaxShares {
			return Secret{}, cferrors.Newf(cferrors.Share, op, "share index %d out of range", s.Index)
		}
		if seen[s.Index] {
			return Secret{}, cferrors.Newf(cferrors.Share, op, "index %d: %w", s.Index, cferrors.ErrDuplicateIndex)
		}
		seen[s.Index] = true
		if len(parsed) > 0 && (name != scheme || t != threshold) {
			return Secret{}, cferrors.Newf(cferrors.Share, op, "share %d does not match the other shares", s.Index)
		}
		scheme, threshold = name, t
		parsed = append(parsed, Payload{Index: s.Index, Data: payload})
	}
	if len(parsed) < threshold {
		return Secret{}, cferrors.Newf(cferrors.Share, op, "need %d, got %d: %w", threshold, len(parsed), cferrors.ErrInsufficientShares)
	}

	impl, ok := schemes[scheme]
	if preferred != nil && preferred.Name() == scheme {
		impl, ok = preferred, true
	}
	if !ok {
		return Secret{}, cferrors.Newf(cferrors.Share, op, "unknown sharing scheme %q", scheme)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Index < parsed[j].Index })
	raw, err := impl.Combine(parsed)
	if err != nil {
		return Secret{}, cferrors.New(cferrors.Share, op, err)
	}
	defer clear(raw)
	if len(raw) != SecretBytes {
		return Secret{}, cferrors.Newf(cferrors.Share, op, "recovered secret has length %d, want %d", len(raw), SecretBytes)
	}
	var secret Secret
	copy(secret[:], raw)
	return secret, nil
}

// Fingerprint returns a short digest that identifies a token without
// revealing it.
func Fingerprint(token []byte) string {
	sum := sha256.Sum256(token)
	return hex.EncodeToString(sum[:8])
}
