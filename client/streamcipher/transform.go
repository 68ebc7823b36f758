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
	"crypto/cipher"
	"fmt"

	cferrors "github.com/LithiumSR/cfshare/internal/errors"
)

// Transform is an incremental, length-preserving encryption or decryption.
type Transform interface {
	// Update writes the transform of src into dst, which must be at least
	// len(src) bytes. dst and src may overlap entirely.
	Update(dst, src []byte)
	// Finalize ends the stream and returns any trailing output. Stream
	// ciphers never produce any.
	Finalize() []byte
}

type streamTransform struct {
	stream cipher.Stream
	done   bool
}

func (t *streamTransform) Update(dst, src []byte) {
	if t.done {
		panic("streamcipher: Update after Finalize")
	}
	t.stream.XORKeyStream(dst[:len(src)], src)
}

func (t *streamTransform) Finalize() []byte {
	t.done = true
	return nil
}

func newTransform(op string, s Suite, key, iv []byte) (Transform, error) {
	p, err := s.Params()
	if err != nil {
		return nil, err
	}
	if len(key) != p.KeySize {
		return nil, cferrors.Newf(cferrors.Configuration, op, "%v key must be %d bytes, got %d", s, p.KeySize, len(key))
	}
	if len(iv) != p.IVSize {
		return nil, cferrors.Newf(cferrors.Configuration, op, "%v IV must be %d bytes, got %d", s, p.IVSize, len(iv))
	}
	stream, err := p.newStream(key, iv)
	if err != nil {
		return nil, cferrors.New(cferrors.Configuration, op, fmt.Errorf("initializing %v: %v", s, err))
	}
	return &streamTransform{stream: stream}, nil
}

// NewEncrypter returns a Transform that encrypts with suite s.
func NewEncrypter(s Suite, key, iv []byte) (Transform, error) {
	return newTransform("new encrypter", s, key, iv)
}

// NewDecrypter returns a Transform that decrypts with suite s. For the
// counter-mode suites it is the same keystream as NewEncrypter.
func NewDecrypter(s Suite, key, iv []byte) (Transform, error) {
	return newTransform("new decrypter", s, key, iv)
}
