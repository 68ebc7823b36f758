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

package frame

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/LithiumSR/cfshare/client/streamcipher"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/tink/go/subtle/random"
)

func testFragmentHeader(suite streamcipher.Suite, incomplete bool) *FragmentHeader {
	h := &FragmentHeader{
		Incomplete: incomplete,
		Suite:      suite,
		ShareIndex: 3,
		Share:      []byte("shamir-3-AbCdEfGh"),
	}
	copy(h.IV[:], random.GetRandomBytes(streamcipher.IVSize))
	copy(h.Tag[:], random.GetRandomBytes(streamcipher.TagSize))
	return h
}

func TestFragmentHeaderRoundTrip(t *testing.T) {
	for _, suite := range streamcipher.Suites() {
		for _, incomplete := range []bool{false, true} {
			t.Run(fmt.Sprintf("%v/incomplete=%v", suite, incomplete), func(t *testing.T) {
				want := testFragmentHeader(suite, incomplete)
				var buf bytes.Buffer
				if err := WriteFragmentHeader(&buf, want); err != nil {
					t.Fatalf("WriteFragmentHeader() returned error: %v", err)
				}
				if got := int64(buf.Len()); got != want.Size() {
					t.Errorf("encoded size = %d, Size() = %d", got, want.Size())
				}
				got, err := ReadFragmentHeader(&buf)
				if err != nil {
					t.Fatalf("ReadFragmentHeader() returned error: %v", err)
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("ReadFragmentHeader() returned diff (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestWriteFragmentHeaderExplicitByteOrder(t *testing.T) {
	share := bytes.Repeat([]byte{'s'}, 0x0102)
	h := &FragmentHeader{
		Incomplete: true,
		Suite:      streamcipher.ChaCha20,
		ShareIndex: 0xFE,
		Share:      share,
	}
	h.IV[0], h.Tag[31] = 0xAA, 0xBB

	var buf bytes.Buffer
	if err := WriteFragmentHeader(&buf, h); err != nil {
		t.Fatalf("WriteFragmentHeader() returned error: %v", err)
	}

	var want []byte
	want = append(want, 0x01)                         // incomplete
	want = append(want, 2, 0, 0, 0, 0, 0, 0, 0)       // suite
	want = append(want, 0xFE, 0, 0, 0, 0, 0, 0, 0)    // share index
	want = append(want, 0x02, 0x01, 0, 0, 0, 0, 0, 0) // share length
	want = append(want, share...)                     // share
	want = append(want, 0xAA)                         // IV
	want = append(want, make([]byte, 15+31)...)       // rest of IV, tag
	want = append(want, 0xBB)                         // last tag byte
	if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
		t.Errorf("WriteFragmentHeader() produced unexpected bytes (-want +got):\n%s", diff)
	}
}

func TestWriteRejectsInvalidFields(t *testing.T) {
	for _, tc := range []struct {
		name string
		h    *FragmentHeader
	}{
		{name: "index zero", h: &FragmentHeader{Suite: streamcipher.AES, ShareIndex: 0, Share: []byte("x")}},
		{name: "index above limit", h: &FragmentHeader{Suite: streamcipher.AES, ShareIndex: 256, Share: []byte("x")}},
		{name: "empty share", h: &FragmentHeader{Suite: streamcipher.AES, ShareIndex: 1}},
		{name: "unknown suite", h: &FragmentHeader{Suite: 9, ShareIndex: 1, Share: []byte("x")}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteFragmentHeader(&buf, tc.h); !cferrors.IsKind(err, cferrors.Configuration) {
				t.Errorf("WriteFragmentHeader() = %v, want configuration error", err)
			}
			sh := &ShareHeader{Suite: tc.h.Suite, ShareIndex: tc.h.ShareIndex, Share: tc.h.Share}
			if err := WriteShareHeader(&buf, sh); !cferrors.IsKind(err, cferrors.Configuration) {
				t.Errorf("WriteShareHeader() = %v, want configuration error", err)
			}
		})
	}
}

func TestReadFragmentHeaderLeavesBody(t *testing.T) {
	h := testFragmentHeader(streamcipher.AES, false)
	var buf bytes.Buffer
	if err := WriteFragmentHeader(&buf, h); err != nil {
		t.Fatalf("WriteFragmentHeader() returned error: %v", err)
	}
	body := []byte("I am the ciphertext body.")
	buf.Write(body)

	r := bytes.NewReader(buf.Bytes())
	if _, err := ReadFragmentHeader(r); err != nil {
		t.Fatalf("ReadFragmentHeader() returned error: %v", err)
	}
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		t.Fatalf("r.Seek(0, io.SeekCurrent) returned error: %v", err)
	}
	if pos != h.Size() {
		t.Errorf("reader position = %d, want %d", pos, h.Size())
	}
	rest, _ := io.ReadAll(r)
	if !bytes.Equal(rest, body) {
		t.Errorf("remaining data = %q, want %q", rest, body)
	}
}

func TestReadFragmentHeaderTruncated(t *testing.T) {
	h := testFragmentHeader(streamcipher.Camellia, true)
	var buf bytes.Buffer
	if err := WriteFragmentHeader(&buf, h); err != nil {
		t.Fatalf("WriteFragmentHeader() returned error: %v", err)
	}
	full := buf.Bytes()
	for n := 0; n < len(full); n++ {
		_, err := ReadFragmentHeader(bytes.NewReader(full[:n]))
		if !cferrors.IsKind(err, cferrors.Parse) || !errors.Is(err, cferrors.ErrTruncated) {
			t.Fatalf("ReadFragmentHeader(%d of %d bytes) = %v, want truncated parse error", n, len(full), err)
		}
	}
}

func TestReadFragmentHeaderMalformed(t *testing.T) {
	valid := func() []byte {
		var buf bytes.Buffer
		if err := WriteFragmentHeader(&buf, testFragmentHeader(streamcipher.AES, false)); err != nil {
			t.Fatalf("WriteFragmentHeader() returned error: %v", err)
		}
		return buf.Bytes()
	}
	for _, tc := range []struct {
		name   string
		mutate func(b []byte)
	}{
		{name: "incomplete flag 2", mutate: func(b []byte) { b[0] = 2 }},
		{name: "unknown suite", mutate: func(b []byte) { b[1] = 7 }},
		{name: "unknown suite flag", mutate: func(b []byte) { b[3] = 1 }},
		{name: "zero index", mutate: func(b []byte) { b[9] = 0 }},
		{name: "index above 255", mutate: func(b []byte) { b[10] = 1 }},
		{name: "huge share length", mutate: func(b []byte) { b[24] = 0xFF }},
		{name: "zero share length", mutate: func(b []byte) { b[17] = 0 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := valid()
			tc.mutate(b)
			if _, err := ReadFragmentHeader(bytes.NewReader(b)); !cferrors.IsKind(err, cferrors.Parse) {
				t.Errorf("ReadFragmentHeader() = %v, want parse error", err)
			}
		})
	}
}

func TestShareHeaderRoundTrip(t *testing.T) {
	for _, suite := range streamcipher.Suites() {
		t.Run(suite.String(), func(t *testing.T) {
			want := &ShareHeader{Suite: suite, ShareIndex: 255, Share: []byte("sssa-2-token")}
			var buf bytes.Buffer
			if err := WriteShareHeader(&buf, want); err != nil {
				t.Fatalf("WriteShareHeader() returned error: %v", err)
			}
			if got := int64(buf.Len()); got != want.Size() {
				t.Errorf("encoded size = %d, Size() = %d", got, want.Size())
			}
			got, err := ReadShareHeader(&buf)
			if err != nil {
				t.Fatalf("ReadShareHeader() returned error: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ReadShareHeader() returned diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadShareHeaderErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteShareHeader(&buf, &ShareHeader{Suite: streamcipher.AES, ShareIndex: 1, Share: []byte("token")}); err != nil {
		t.Fatalf("WriteShareHeader() returned error: %v", err)
	}
	full := buf.Bytes()

	for n := 0; n < len(full); n++ {
		if _, err := ReadShareHeader(bytes.NewReader(full[:n])); !errors.Is(err, cferrors.ErrTruncated) {
			t.Fatalf("ReadShareHeader(%d of %d bytes) = %v, want %v", n, len(full), err, cferrors.ErrTruncated)
		}
	}

	trailing := append(append([]byte(nil), full...), 0)
	if _, err := ReadShareHeader(bytes.NewReader(trailing)); !cferrors.IsKind(err, cferrors.Parse) {
		t.Errorf("ReadShareHeader(trailing data) = %v, want parse error", err)
	}
}

func TestContainerHeaderRoundTrip(t *testing.T) {
	var want ContainerHeader
	copy(want.IV[:], random.GetRandomBytes(streamcipher.IVSize))
	copy(want.Tag[:], random.GetRandomBytes(streamcipher.TagSize))

	var buf bytes.Buffer
	if err := WriteContainerHeader(&buf, &want); err != nil {
		t.Fatalf("WriteContainerHeader() returned error: %v", err)
	}
	if buf.Len() != ContainerHeaderSize {
		t.Fatalf("encoded size = %d, want %d", buf.Len(), ContainerHeaderSize)
	}
	if !bytes.Equal(buf.Bytes()[:streamcipher.IVSize], want.IV[:]) {
		t.Error("container header does not start with the IV")
	}
	got, err := ReadContainerHeader(&buf)
	if err != nil {
		t.Fatalf("ReadContainerHeader() returned error: %v", err)
	}
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("ReadContainerHeader() returned diff (-want +got):\n%s", diff)
	}

	if _, err := ReadContainerHeader(bytes.NewReader(make([]byte, ContainerHeaderSize-1))); !errors.Is(err, cferrors.ErrTruncated) {
		t.Errorf("ReadContainerHeader(short) = %v, want %v", err, cferrors.ErrTruncated)
	}
}
