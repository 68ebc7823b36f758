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

// Package frame reads and writes the headers of split artifacts. All
// integers are little-endian.
//
// Fragment:
// - incomplete flag (1 byte), 1 when the body is a slice of the ciphertext
// - cipher suite (8 bytes)
// - share index (8 bytes), 1-based
// - share length (8 bytes), followed by the share token
// - IV (16 bytes)
// - tag (32 bytes)
// - body, extending to the end of the file
//
// Share file: cipher suite, share index and share length (8 bytes each),
// followed by the share token and nothing else.
//
// Container: IV (16 bytes), tag (32 bytes), then the whole ciphertext.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/LithiumSR/cfshare/client/streamcipher"
	"github.com/LithiumSR/cfshare/constants"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
)

// MaxShareLen bounds the share token length accepted on decode.
const MaxShareLen = 64 << 10

type fragmentPrefix struct {
	Incomplete uint8
	Suite      uint64
	ShareIndex uint64
	ShareLen   uint64
}

type sharePrefix struct {
	Suite      uint64
	ShareIndex uint64
	ShareLen   uint64
}

// ContainerHeader is the start of a fragment after the share token, and the
// whole header of a shares-only container.
type ContainerHeader struct {
	IV  [streamcipher.IVSize]byte
	Tag [streamcipher.TagSize]byte
}

// ContainerHeaderSize is the encoded size of a ContainerHeader.
const ContainerHeaderSize = streamcipher.IVSize + streamcipher.TagSize

// FragmentHeader precedes every fragment body.
type FragmentHeader struct {
	// Incomplete is set when fragments partition the ciphertext.
	Incomplete bool
	Suite      streamcipher.Suite
	ShareIndex uint64
	Share      []byte
	ContainerHeader
}

// Size returns the encoded length of h, which is the offset of the body.
func (h *FragmentHeader) Size() int64 {
	return int64(binary.Size(fragmentPrefix{})) + int64(len(h.Share)) + ContainerHeaderSize
}

// ShareHeader is the complete content of a share file.
type ShareHeader struct {
	Suite      streamcipher.Suite
	ShareIndex uint64
	Share      []byte
}

// Size returns the encoded length of h.
func (h *ShareHeader) Size() int64 {
	return int64(binary.Size(sharePrefix{})) + int64(len(h.Share))
}

func parseErr(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return cferrors.New(cferrors.Parse, op, cferrors.ErrTruncated)
	}
	return cferrors.New(cferrors.IO, op, err)
}

// checkFields validates header fields. Bad fields are a parse error when
// decoding and a configuration error when encoding.
func checkFields(kind cferrors.Kind, op string, suite, index, shareLen uint64) error {
	if !streamcipher.Suite(suite).Valid() {
		return cferrors.Newf(kind, op, "suite code %d: %w", suite, cferrors.ErrUnknownSuite)
	}
	if index == 0 || index > constants.MaxShares {
		return cferrors.Newf(kind, op, "share index %d out of range", index)
	}
	if shareLen == 0 || shareLen > MaxShareLen {
		return cferrors.Newf(kind, op, "share length %d out of range", shareLen)
	}
	return nil
}

func readShare(op string, r io.Reader, n uint64) ([]byte, error) {
	share := make([]byte, n)
	if _, err := io.ReadFull(r, share); err != nil {
		return nil, parseErr(op, err)
	}
	return share, nil
}

// WriteFragmentHeader writes h to w.
func WriteFragmentHeader(w io.Writer, h *FragmentHeader) error {
	if err := checkFields(cferrors.Configuration, "write fragment header", uint64(h.Suite), h.ShareIndex, uint64(len(h.Share))); err != nil {
		return err
	}
	prefix := fragmentPrefix{
		Suite:      uint64(h.Suite),
		ShareIndex: h.ShareIndex,
		ShareLen:   uint64(len(h.Share)),
	}
	if h.Incomplete {
		prefix.Incomplete = 1
	}
	if err := binary.Write(w, binary.LittleEndian, prefix); err != nil {
		return fmt.Errorf("failed to write fragment header: %v", err)
	}
	if _, err := w.Write(h.Share); err != nil {
		return fmt.Errorf("failed to write share: %v", err)
	}
	return WriteContainerHeader(w, &h.ContainerHeader)
}

// ReadFragmentHeader reads a fragment header from r, leaving r positioned at
// the start of the body.
func ReadFragmentHeader(r io.Reader) (*FragmentHeader, error) {
	const op = "read fragment header"
	var prefix fragmentPrefix
	if err := binary.Read(r, binary.LittleEndian, &prefix); err != nil {
		return nil, parseErr(op, err)
	}
	if prefix.Incomplete > 1 {
		return nil, cferrors.Newf(cferrors.Parse, op, "incomplete flag must be 0 or 1, got %d", prefix.Incomplete)
	}
	if err := checkFields(cferrors.Parse, op, prefix.Suite, prefix.ShareIndex, prefix.ShareLen); err != nil {
		return nil, err
	}
	share, err := readShare(op, r, prefix.ShareLen)
	if err != nil {
		return nil, err
	}
	ch, err := ReadContainerHeader(r)
	if err != nil {
		return nil, err
	}
	return &FragmentHeader{
		Incomplete:      prefix.Incomplete == 1,
		Suite:           streamcipher.Suite(prefix.Suite),
		ShareIndex:      prefix.ShareIndex,
		Share:           share,
		ContainerHeader: *ch,
	}, nil
}

// WriteShareHeader writes h to w.
func WriteShareHeader(w io.Writer, h *ShareHeader) error {
	if err := checkFields(cferrors.Configuration, "write share header", uint64(h.Suite), h.ShareIndex, uint64(len(h.Share))); err != nil {
		return err
	}
	prefix := sharePrefix{
		Suite:      uint64(h.Suite),
		ShareIndex: h.ShareIndex,
		ShareLen:   uint64(len(h.Share)),
	}
	if err := binary.Write(w, binary.LittleEndian, prefix); err != nil {
		return fmt.Errorf("failed to write share header: %v", err)
	}
	if _, err := w.Write(h.Share); err != nil {
		return fmt.Errorf("failed to write share: %v", err)
	}
	return nil
}

// ReadShareHeader reads a share file from r. Any data after the share token
// is an error.
func ReadShareHeader(r io.Reader) (*ShareHeader, error) {
	const op = "read share header"
	var prefix sharePrefix
	if err := binary.Read(r, binary.LittleEndian, &prefix); err != nil {
		return nil, parseErr(op, err)
	}
	if err := checkFields(cferrors.Parse, op, prefix.Suite, prefix.ShareIndex, prefix.ShareLen); err != nil {
		return nil, err
	}
	share, err := readShare(op, r, prefix.ShareLen)
	if err != nil {
		return nil, err
	}
	var extra [1]byte
	if n, _ := io.ReadFull(r, extra[:]); n != 0 {
		return nil, cferrors.Newf(cferrors.Parse, op, "unexpected data after share token")
	}
	return &ShareHeader{
		Suite:      streamcipher.Suite(prefix.Suite),
		ShareIndex: prefix.ShareIndex,
		Share:      share,
	}, nil
}

// WriteContainerHeader writes h to w.
func WriteContainerHeader(w io.Writer, h *ContainerHeader) error {
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("failed to write IV and tag: %v", err)
	}
	return nil
}

// ReadContainerHeader reads an IV and tag from r.
func ReadContainerHeader(r io.Reader) (*ContainerHeader, error) {
	var h ContainerHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, parseErr("read IV and tag", err)
	}
	return &h, nil
}
