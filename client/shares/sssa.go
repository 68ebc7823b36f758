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

package shares

import (
	"encoding/hex"
	"fmt"
	"io"

	cferrors "github.com/LithiumSR/cfshare/internal/errors"
	"github.com/SSSaaS/sssa-golang"
)

const sssaName = "sssa"

// SSSA shares the hex-encoded secret over a 256-bit prime field using
// sssa-golang. The library draws its own randomness from crypto/rand, so
// the reader passed to Create is not consulted.
type SSSA struct{}

// Name implements Scheme.
func (SSSA) Name() string { return sssaName }

// Create implements Scheme.
func (SSSA) Create(_ io.Reader, threshold, total int, secret []byte) ([]Share, error) {
	if err := ValidateParams(threshold, total); err != nil {
		return nil, err
	}
	tokens, err := sssa.Create(threshold, total, hex.EncodeToString(secret))
	if err != nil {
		return nil, cferrors.New(cferrors.Entropy, "create sssa shares", err)
	}
	out := make([]Share, len(tokens))
	for i, tok := range tokens {
		out[i] = Share{Index: uint64(i + 1), Token: FormatToken(sssaName, threshold, tok)}
	}
	return out, nil
}

// Combine implements Scheme.
func (SSSA) Combine(parsed []Payload) ([]byte, error) {
	tokens := make([]string, len(parsed))
	for i, p := range parsed {
		if !sssa.IsValidShare(p.Data) {
			return nil, fmt.Errorf("share %d has a malformed payload", p.Index)
		}
		tokens[i] = p.Data
	}
	secretHex, err := sssa.Combine(tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to combine shares: %v", err)
	}
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("combined value is not a valid secret")
	}
	return secret, nil
}
