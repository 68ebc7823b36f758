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

package streamcipher

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"

	"github.com/LithiumSR/cfshare/constants"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
	"github.com/google/tink/go/subtle"
)

// MAC accumulates an HMAC-SHA256 tag.
type MAC struct {
	h hash.Hash
}

// NewMAC returns a MAC keyed with key, which must be KeySize bytes.
func NewMAC(key []byte) (*MAC, error) {
	if len(key) != KeySize {
		return nil, cferrors.Newf(cferrors.Configuration, "new mac", "key must be %d bytes, got %d", KeySize, len(key))
	}
	return &MAC{h: hmac.New(sha256.New, key)}, nil
}

// Update adds p to the tagged data.
func (m *MAC) Update(p []byte) {
	m.h.Write(p)
}

// Finalize returns the tag over everything passed to Update.
func (m *MAC) Finalize() []byte {
	return m.h.Sum(nil)
}

// Verify compares the accumulated tag with tag in constant time.
func (m *MAC) Verify(tag []byte) error {
	if !hmac.Equal(m.Finalize(), tag) {
		return cferrors.New(cferrors.Integrity, "verify tag", cferrors.ErrTagMismatch)
	}
	return nil
}

// Keys holds the cipher and MAC keys for one split.
type Keys struct {
	Cipher []byte
	MAC    []byte
}

// DeriveKeys expands the shared secret into per-purpose keys. Standard suites
// use the secret for both the cipher and the tag. Hardened suites derive each
// key with HKDF-SHA256.
func DeriveKeys(s Suite, secret []byte) (Keys, error) {
	if _, err := s.Params(); err != nil {
		return Keys{}, err
	}
	if len(secret) != KeySize {
		return Keys{}, cferrors.Newf(cferrors.Configuration, "derive keys", "secret must be %d bytes, got %d", KeySize, len(secret))
	}
	if !s.Hardened() {
		return Keys{Cipher: secret, MAC: secret}, nil
	}
	enc, err := subtle.ComputeHKDF("SHA256", secret, nil, []byte(constants.EncryptionKeyInfo), KeySize)
	if err != nil {
		return Keys{}, cferrors.New(cferrors.Configuration, "derive keys", err)
	}
	mac, err := subtle.ComputeHKDF("SHA256", secret, nil, []byte(constants.MACKeyInfo), KeySize)
	if err != nil {
		return Keys{}, cferrors.New(cferrors.Configuration, "derive keys", err)
	}
	return Keys{Cipher: enc, MAC: mac}, nil
}

// TagsCiphertext reports whether the tag for s covers the ciphertext rather
// than the plaintext.
func (s Suite) TagsCiphertext() bool {
	return s.Hardened()
}
