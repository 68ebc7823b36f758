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
	"encoding/base64"
	"fmt"
	"io"

	"github.com/LithiumSR/cfshare/client/internal/secret_sharing/shamir"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
)

const shamirName = "shamir"

// Shamir shares the secret byte-wise over GF(2^8). The payload is the
// base64 of the share value followed by its x-coordinate.
type Shamir struct{}

// Name implements Scheme.
func (Shamir) Name() string { return shamirName }

// Create implements Scheme.
func (Shamir) Create(r io.Reader, threshold, total int, secret []byte) ([]Share, error) {
	if err := ValidateParams(threshold, total); err != nil {
		return nil, err
	}
	split, err := shamir.Split(r, secret, threshold, total)
	if err != nil {
		return nil, cferrors.New(cferrors.Entropy, "create shamir shares", err)
	}
	out := make([]Share, 0, len(split))
	for _, s := range split {
		raw := append(s.Value, s.X)
		payload := base64.RawURLEncoding.EncodeToString(raw)
		clear(raw)
		out = append(out, Share{Index: uint64(s.X), Token: FormatToken(shamirName, threshold, payload)})
	}
	return out, nil
}

// Combine implements Scheme.
func (Shamir) Combine(parsed []Payload) ([]byte, error) {
	points := make([]shamir.Share, 0, len(parsed))
	for _, p := range parsed {
		raw, err := base64.RawURLEncoding.DecodeString(p.Data)
		if err != nil || len(raw) < 2 {
			return nil, fmt.Errorf("share %d has a malformed payload", p.Index)
		}
		x := raw[len(raw)-1]
		if uint64(x) != p.Index {
			return nil, fmt.Errorf("share %d carries x-coordinate %d", p.Index, x)
		}
		points = append(points, shamir.Share{X: x, Value: raw[:len(raw)-1]})
	}
	return shamir.Combine(points)
}
