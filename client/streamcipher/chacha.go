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
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

const chachaBlocksPerNonce = 1 << 32

// chachaStream treats the 16-byte IV as a little-endian 32-bit block counter
// followed by a 96-bit nonce. When the counter wraps, the carry propagates
// into the nonce words.
type chachaStream struct {
	key   []byte
	words [4]uint32
	c     *chacha20.Cipher
	// left is the number of keystream bytes before the counter wraps.
	left uint64
}

func newChaChaStream(key, iv []byte) (cipher.Stream, error) {
	s := &chachaStream{key: append([]byte(nil), key...)}
	for i := range s.words {
		s.words[i] = binary.LittleEndian.Uint32(iv[4*i:])
	}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *chachaStream) reset() error {
	var nonce [chacha20.NonceSize]byte
	for i := 1; i < 4; i++ {
		binary.LittleEndian.PutUint32(nonce[4*(i-1):], s.words[i])
	}
	c, err := chacha20.NewUnauthenticatedCipher(s.key, nonce[:])
	if err != nil {
		return err
	}
	c.SetCounter(s.words[0])
	s.c = c
	s.left = (chachaBlocksPerNonce - uint64(s.words[0])) * 64
	return nil
}

func (s *chachaStream) XORKeyStream(dst, src []byte) {
	for len(src) > 0 {
		n := uint64(len(src))
		if n > s.left {
			n = s.left
		}
		s.c.XORKeyStream(dst[:n], src[:n])
		dst, src = dst[n:], src[n:]
		s.left -= n
		if s.left == 0 {
			s.words[0] = 0
			for i := 1; i < 4; i++ {
				s.words[i]++
				if s.words[i] != 0 {
					break
				}
			}
			if err := s.reset(); err != nil {
				// The key length was validated on construction.
				panic(err)
			}
		}
	}
}
