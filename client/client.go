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

// Package client splits files into encrypted fragments, any threshold of
// which reconstruct the original, and reassembles them.
package client

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/LithiumSR/cfshare/client/shares"
	"github.com/LithiumSR/cfshare/client/streamcipher"
	"github.com/LithiumSR/cfshare/constants"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
	"github.com/spf13/afero"
)

// Layout describes how the ciphertext is spread over the artifacts.
type Layout int

const (
	// Duplicated fragments each carry the whole ciphertext.
	Duplicated Layout = iota
	// Partitioned fragments each carry a contiguous slice of the ciphertext.
	Partitioned
	// SharesOnly keeps the ciphertext in one container next to share files.
	SharesOnly
)

func (l Layout) String() string {
	switch l {
	case Duplicated:
		return "duplicated"
	case Partitioned:
		return "partitioned"
	case SharesOnly:
		return "shares-only"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// SplitOptions configures ShareClient.Split.
type SplitOptions struct {
	// Input is the file to split.
	Input string
	// OutputPrefix is prepended to every artifact name.
	OutputPrefix string
	// Threshold is the number of shares needed to reconstruct (M).
	Threshold int
	// Total is the number of shares produced (N).
	Total int
	// Suite selects the cipher. Zero means AES.
	Suite streamcipher.Suite
	// SharesOnly writes one container plus Total share files.
	SharesOnly bool
	// Key, if set, is used instead of a random secret. It must be 32 bytes.
	Key []byte
}

// SplitResult describes the artifacts written by Split.
type SplitResult struct {
	Layout Layout
	Suite  streamcipher.Suite
	// Files lists the artifacts in index order. In shares-only mode the
	// container comes first.
	Files  []string
	Shares []shares.Share
	// CiphertextLen is the length of the encrypted input.
	CiphertextLen int64
}

// ReconstructedMetadata describes a successful reconstruction.
type ReconstructedMetadata struct {
	Layout Layout
	Suite  streamcipher.Suite
	// Indices lists the share indices used, ascending.
	Indices []uint64
	// Bytes is the length of the restored file.
	Bytes int64
}

// ShareClient splits and reconstructs files. The zero value uses the OS
// file system, crypto/rand, the default sharing scheme and chunk size.
// A ShareClient holds no per-call state and may be shared by goroutines.
type ShareClient struct {
	// Fs is the file system holding inputs, outputs and temporary files.
	Fs afero.Fs
	// Rand is the entropy source for secrets, IVs and share coefficients.
	Rand io.Reader
	// Scheme produces share tokens and combines tokens carrying its name.
	// Tokens of the built-in schemes are combined whatever Scheme is.
	Scheme shares.Scheme
	// ChunkSize is the number of bytes processed per step.
	ChunkSize int
	// TempDir holds intermediate ciphertext. Empty means the OS default.
	TempDir string
	// Metrics, if set, records operation counts and durations.
	Metrics *Metrics
}

func (c *ShareClient) fs() afero.Fs {
	if c.Fs == nil {
		return afero.NewOsFs()
	}
	return c.Fs
}

func (c *ShareClient) rand() io.Reader {
	if c.Rand == nil {
		return rand.Reader
	}
	return c.Rand
}

func (c *ShareClient) scheme() shares.Scheme {
	if c.Scheme == nil {
		return shares.Shamir{}
	}
	return c.Scheme
}

func (c *ShareClient) chunkSize() (int, error) {
	if c.ChunkSize == 0 {
		return constants.ChunkSize, nil
	}
	if c.ChunkSize < constants.MinChunkSize || c.ChunkSize > constants.MaxChunkSize {
		return 0, cferrors.Newf(cferrors.Configuration, "chunk size", "%d is outside [%d, %d]", c.ChunkSize, constants.MinChunkSize, constants.MaxChunkSize)
	}
	return c.ChunkSize, nil
}

// FragmentName returns the path of fragment index of total.
func FragmentName(prefix string, index, total int) string {
	return fmt.Sprintf(constants.FragmentNameFormat, prefix, index, total)
}

// ShareName returns the path of share file index of total.
func ShareName(prefix string, index, total int) string {
	return fmt.Sprintf(constants.ShareNameFormat, prefix, index, total)
}
