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

package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/LithiumSR/cfshare/client/streamcipher"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
)

// readChunk fills buf from r, returning io.EOF only when nothing was read.
func readChunk(ctx context.Context, r io.Reader, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(r, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return n, nil
	}
	if errors.Is(err, io.EOF) {
		return 0, io.EOF
	}
	return n, err
}

// encryptStream encrypts src into dst chunk by chunk while feeding the tag
// with the plaintext, or with the ciphertext when tagCiphertext is set. It
// returns the number of bytes written.
func encryptStream(ctx context.Context, src io.Reader, dst io.Writer, enc streamcipher.Transform, mac *streamcipher.MAC, tagCiphertext bool, chunk int) (int64, error) {
	in := make([]byte, chunk)
	out := make([]byte, chunk)
	var written int64
	for {
		n, err := readChunk(ctx, src, in)
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, fmt.Errorf("failed to read plaintext: %w", err)
		}
		if !tagCiphertext {
			mac.Update(in[:n])
		}
		enc.Update(out[:n], in[:n])
		if tagCiphertext {
			mac.Update(out[:n])
		}
		if _, err := dst.Write(out[:n]); err != nil {
			return written, fmt.Errorf("failed to write ciphertext: %w", err)
		}
		written += int64(n)
	}
	if tail := enc.Finalize(); len(tail) > 0 {
		if tagCiphertext {
			mac.Update(tail)
		}
		if _, err := dst.Write(tail); err != nil {
			return written, fmt.Errorf("failed to write ciphertext: %w", err)
		}
		written += int64(len(tail))
	}
	clear(in)
	return written, nil
}

// tagStream feeds all of src to mac.
func tagStream(ctx context.Context, src io.Reader, mac *streamcipher.MAC, chunk int) error {
	buf := make([]byte, chunk)
	for {
		n, err := readChunk(ctx, src, buf)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read ciphertext: %w", err)
		}
		mac.Update(buf[:n])
	}
}

// decryptStream decrypts src into dst and checks the tag. With a hardened
// suite the tag is checked over src before anything is written, so src is
// read twice.
func decryptStream(ctx context.Context, src *io.SectionReader, dst io.Writer, suite streamcipher.Suite, keys streamcipher.Keys, iv, tag []byte, chunk int) (int64, error) {
	mac, err := streamcipher.NewMAC(keys.MAC)
	if err != nil {
		return 0, err
	}
	if suite.TagsCiphertext() {
		if err := tagStream(ctx, io.NewSectionReader(src, 0, src.Size()), mac, chunk); err != nil {
			return 0, err
		}
		if err := mac.Verify(tag); err != nil {
			return 0, err
		}
	}

	dec, err := streamcipher.NewDecrypter(suite, keys.Cipher, iv)
	if err != nil {
		return 0, err
	}
	in := make([]byte, chunk)
	out := make([]byte, chunk)
	defer clear(out)
	r := io.NewSectionReader(src, 0, src.Size())
	var written int64
	for {
		n, err := readChunk(ctx, r, in)
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, fmt.Errorf("failed to read ciphertext: %w", err)
		}
		dec.Update(out[:n], in[:n])
		if !suite.TagsCiphertext() {
			mac.Update(out[:n])
		}
		if _, err := dst.Write(out[:n]); err != nil {
			return written, cferrors.New(cferrors.IO, "write output", err)
		}
		written += int64(n)
	}
	if tail := dec.Finalize(); len(tail) > 0 {
		if !suite.TagsCiphertext() {
			mac.Update(tail)
		}
		if _, err := dst.Write(tail); err != nil {
			return written, cferrors.New(cferrors.IO, "write output", err)
		}
		written += int64(len(tail))
	}
	if !suite.TagsCiphertext() {
		if err := mac.Verify(tag); err != nil {
			return written, err
		}
	}
	return written, nil
}

// copyChunks copies src to dst in chunk-sized steps, checking ctx between them.
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader, chunk int) (int64, error) {
	buf := make([]byte, chunk)
	var written int64
	for {
		n, err := readChunk(ctx, src, buf)
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		if _, err := dst.Write(buf[:n]); err != nil {
			return written, err
		}
		written += int64(n)
	}
}
