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

// Package streamcipher provides the length-preserving ciphers and the keyed
// integrity tag used to protect split files.
package streamcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"strings"

	cferrors "github.com/LithiumSR/cfshare/internal/errors"
	"github.com/dgryski/go-camellia"
)

// Suite identifies a cipher suite on the wire.
type Suite uint64

const (
	// AES is AES-256 in CTR mode.
	AES Suite = 1
	// ChaCha20 is ChaCha20 with a 128-bit counter and nonce block.
	ChaCha20 Suite = 2
	// Camellia is Camellia-256 in CTR mode.
	Camellia Suite = 3
)

// HardenedFlag marks a suite whose cipher and MAC keys are derived
// separately and whose tag covers the ciphertext.
const HardenedFlag Suite = 0x100

// Sizes shared by every suite.
const (
	KeySize = 32
	IVSize  = 16
	TagSize = 32
)

// Params describes one suite.
type Params struct {
	Name    string
	KeySize int
	IVSize  int
	TagSize int

	newStream func(key, iv []byte) (cipher.Stream, error)
}

var suites = map[Suite]Params{
	AES: {
		Name:      "AES",
		KeySize:   KeySize,
		IVSize:    IVSize,
		TagSize:   TagSize,
		newStream: ctrStream(aes.NewCipher),
	},
	ChaCha20: {
		Name:      "ChaCha20",
		KeySize:   KeySize,
		IVSize:    IVSize,
		TagSize:   TagSize,
		newStream: newChaChaStream,
	},
	Camellia: {
		Name:      "Camellia",
		KeySize:   KeySize,
		IVSize:    IVSize,
		TagSize:   TagSize,
		newStream: ctrStream(camellia.New),
	},
}

func ctrStream(newBlock func([]byte) (cipher.Block, error)) func(key, iv []byte) (cipher.Stream, error) {
	return func(key, iv []byte) (cipher.Stream, error) {
		block, err := newBlock(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewCTR(block, iv), nil
	}
}

// Base strips the hardened flag.
func (s Suite) Base() Suite {
	return s &^ HardenedFlag
}

// Hardened reports whether s derives separate keys and authenticates the ciphertext.
func (s Suite) Hardened() bool {
	return s&HardenedFlag != 0
}

// Valid reports whether s is a known suite.
func (s Suite) Valid() bool {
	if s&^(HardenedFlag|0xFF) != 0 {
		return false
	}
	_, ok := suites[s.Base()]
	return ok
}

// Params returns the table entry for s.
func (s Suite) Params() (Params, error) {
	if !s.Valid() {
		return Params{}, cferrors.Newf(cferrors.Configuration, "suite", "code %d: %w", uint64(s), cferrors.ErrUnknownSuite)
	}
	return suites[s.Base()], nil
}

func (s Suite) String() string {
	p, ok := suites[s.Base()]
	if !ok || !s.Valid() {
		return fmt.Sprintf("Suite(%d)", uint64(s))
	}
	if s.Hardened() {
		return p.Name + "-hardened"
	}
	return p.Name
}

// ParseSuite maps a case-insensitive name such as "aes", "chacha" or
// "camellia-hardened" to a Suite.
func ParseSuite(name string) (Suite, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	var flag Suite
	if base, ok := strings.CutSuffix(n, "-hardened"); ok {
		n, flag = base, HardenedFlag
	}
	switch n {
	case "aes":
		return AES | flag, nil
	case "chacha20", "chacha":
		return ChaCha20 | flag, nil
	case "camellia":
		return Camellia | flag, nil
	}
	return 0, cferrors.Newf(cferrors.Configuration, "parse suite", "%q: %w", name, cferrors.ErrUnknownSuite)
}

// Suites lists every known suite, standard ones first.
func Suites() []Suite {
	return []Suite{AES, ChaCha20, Camellia, AES | HardenedFlag, ChaCha20 | HardenedFlag, Camellia | HardenedFlag}
}
