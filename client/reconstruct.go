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
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/LithiumSR/cfshare/client/frame"
	"github.com/LithiumSR/cfshare/client/shares"
	"github.com/LithiumSR/cfshare/client/streamcipher"
	"github.com/LithiumSR/cfshare/client/tempstore"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
	glog "github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// openFragment is a parsed fragment and its still-open file.
type openFragment struct {
	path   string
	file   afero.File
	header *frame.FragmentHeader
	body   int64
}

// Reconstruct restores the original file at output.
//
// With two or more fragments and no share files, fragments are validated
// against each other, ordered by share index and reassembled. With exactly
// one input and at least one share file, the input is a shares-only
// container. Any other combination is rejected before output is created.
//
// The output only appears once the tag verifies. On any failure nothing is
// left at output that this call created.
func (c *ShareClient) Reconstruct(ctx context.Context, fragments []string, output string, shareFiles []string) (md *ReconstructedMetadata, err error) {
	start := time.Now()
	defer func() {
		var n int64
		if md != nil {
			n = md.Bytes
		}
		c.Metrics.observe(opReconstruct, n, err, start)
	}()

	const op = "reconstruct"
	switch {
	case len(fragments) == 0:
		return nil, cferrors.New(cferrors.Consistency, op, cferrors.ErrNoInputs)
	case len(fragments) > 1 && len(shareFiles) > 0:
		return nil, cferrors.New(cferrors.Consistency, op, cferrors.ErrMixedInputs)
	case len(fragments) == 1 && len(shareFiles) == 0:
		return nil, cferrors.New(cferrors.Consistency, op, cferrors.ErrMissingShares)
	case output == "":
		return nil, cferrors.Newf(cferrors.Configuration, op, "no output file")
	}
	chunk, err := c.chunkSize()
	if err != nil {
		return nil, err
	}

	opID := uuid.NewString()
	if len(shareFiles) > 0 {
		glog.Infof("[%s] Reconstructing %s from container %s and %d share files", opID, output, fragments[0], len(shareFiles))
		return c.reconstructSharesOnly(ctx, opID, fragments[0], shareFiles, output, chunk)
	}
	glog.Infof("[%s] Reconstructing %s from %d fragments", opID, output, len(fragments))
	return c.reconstructFragments(ctx, opID, fragments, output, chunk)
}

func (c *ShareClient) openFragments(paths []string) ([]*openFragment, error) {
	const op = "read fragments"
	fs := c.fs()
	var opened []*openFragment
	fail := func(err error) ([]*openFragment, error) {
		closeFragments(opened)
		return nil, err
	}
	for _, path := range paths {
		f, err := fs.Open(path)
		if err != nil {
			return fail(cferrors.New(cferrors.IO, op, err))
		}
		of := &openFragment{path: path, file: f}
		opened = append(opened, of)
		h, err := frame.ReadFragmentHeader(f)
		if err != nil {
			return fail(fmt.Errorf("%s: %w", path, err))
		}
		info, err := f.Stat()
		if err != nil {
			return fail(cferrors.New(cferrors.IO, op, err))
		}
		of.header = h
		of.body = info.Size() - h.Size()
	}
	return opened, nil
}

func closeFragments(fragments []*openFragment) {
	for _, f := range fragments {
		f.file.Close()
	}
}

// checkFragments verifies the fragments come from one split and sorts them
// by share index.
func checkFragments(fragments []*openFragment) error {
	const op = "check fragments"
	first := fragments[0].header
	seen := make(map[uint64]string, len(fragments))
	for _, f := range fragments {
		h := f.header
		if h.Suite != first.Suite || h.Incomplete != first.Incomplete || h.IV != first.IV || h.Tag != first.Tag {
			return cferrors.Newf(cferrors.Consistency, op, "%s and %s: %w", fragments[0].path, f.path, cferrors.ErrFragmentMismatch)
		}
		if prev, ok := seen[h.ShareIndex]; ok {
			return cferrors.Newf(cferrors.Consistency, op, "%s and %s both have index %d: %w", prev, f.path, h.ShareIndex, cferrors.ErrDuplicateIndex)
		}
		seen[h.ShareIndex] = f.path
		if !first.Incomplete && f.body != fragments[0].body {
			return cferrors.Newf(cferrors.Consistency, op, "%s has a %d byte body, %s has %d: %w", f.path, f.body, fragments[0].path, fragments[0].body, cferrors.ErrFragmentMismatch)
		}
	}
	sort.Slice(fragments, func(i, j int) bool { return fragments[i].header.ShareIndex < fragments[j].header.ShareIndex })
	return nil
}

func (c *ShareClient) reconstructFragments(ctx context.Context, opID string, paths []string, output string, chunk int) (*ReconstructedMetadata, error) {
	fragments, err := c.openFragments(paths)
	if err != nil {
		return nil, err
	}
	defer closeFragments(fragments)
	if err := checkFragments(fragments); err != nil {
		return nil, err
	}

	first := fragments[0].header
	given := make([]shares.Share, len(fragments))
	indices := make([]uint64, len(fragments))
	for i, f := range fragments {
		given[i] = shares.Share{Index: f.header.ShareIndex, Token: f.header.Share}
		indices[i] = f.header.ShareIndex
	}
	secret, err := shares.CombineWith(c.scheme(), given)
	if err != nil {
		return nil, err
	}
	defer secret.Wipe()

	md := &ReconstructedMetadata{Layout: Duplicated, Suite: first.Suite, Indices: indices}
	var ciphertext *io.SectionReader
	if first.Incomplete {
		md.Layout = Partitioned
		joined, err := tempstore.Acquire(c.fs(), c.TempDir, "cfshare-")
		if err != nil {
			return nil, cferrors.New(cferrors.IO, "create temporary ciphertext", err)
		}
		defer func() {
			if err := joined.Release(); err != nil {
				glog.Warningf("[%s] %v", opID, err)
			}
		}()
		var total int64
		for _, f := range fragments {
			n, err := copyChunks(ctx, joined, io.NewSectionReader(f.file, f.header.Size(), f.body), chunk)
			if err != nil {
				return nil, cferrors.New(cferrors.IO, "join fragments", err)
			}
			total += n
		}
		ciphertext = io.NewSectionReader(joined, 0, total)
	} else {
		if err := compareBodies(ctx, fragments, chunk); err != nil {
			return nil, err
		}
		ciphertext = io.NewSectionReader(fragments[0].file, first.Size(), fragments[0].body)
	}

	n, err := c.restore(ctx, opID, ciphertext, output, first.Suite, secret, &first.ContainerHeader, chunk)
	if err != nil {
		return nil, err
	}
	md.Bytes = n
	return md, nil
}

// compareBodies checks that every duplicated body equals the first one.
func compareBodies(ctx context.Context, fragments []*openFragment, chunk int) error {
	const op = "compare fragments"
	ref := fragments[0]
	a, b := make([]byte, chunk), make([]byte, chunk)
	for _, f := range fragments[1:] {
		ra := io.NewSectionReader(ref.file, ref.header.Size(), ref.body)
		rb := io.NewSectionReader(f.file, f.header.Size(), f.body)
		for {
			n, err := readChunk(ctx, ra, a)
			if err == io.EOF {
				break
			}
			if err != nil {
				return cferrors.New(cferrors.IO, op, err)
			}
			if _, err := io.ReadFull(rb, b[:n]); err != nil {
				return cferrors.New(cferrors.IO, op, err)
			}
			if !bytes.Equal(a[:n], b[:n]) {
				return cferrors.Newf(cferrors.Integrity, op, "%s differs from %s: %w", f.path, ref.path, cferrors.ErrTagMismatch)
			}
		}
	}
	return nil
}

func (c *ShareClient) readShareFiles(paths []string) ([]*frame.ShareHeader, error) {
	const op = "read share files"
	fs := c.fs()
	headers := make([]*frame.ShareHeader, 0, len(paths))
	seen := make(map[uint64]string, len(paths))
	for _, path := range paths {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, cferrors.New(cferrors.IO, op, err)
		}
		h, err := frame.ReadShareHeader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(headers) > 0 && h.Suite != headers[0].Suite {
			return nil, cferrors.Newf(cferrors.Consistency, op, "%s uses %v, %s uses %v: %w", path, h.Suite, paths[0], headers[0].Suite, cferrors.ErrFragmentMismatch)
		}
		if prev, ok := seen[h.ShareIndex]; ok {
			return nil, cferrors.Newf(cferrors.Consistency, op, "%s and %s both have index %d: %w", prev, path, h.ShareIndex, cferrors.ErrDuplicateIndex)
		}
		seen[h.ShareIndex] = path
		headers = append(headers, h)
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].ShareIndex < headers[j].ShareIndex })
	return headers, nil
}

func (c *ShareClient) reconstructSharesOnly(ctx context.Context, opID, container string, shareFiles []string, output string, chunk int) (*ReconstructedMetadata, error) {
	headers, err := c.readShareFiles(shareFiles)
	if err != nil {
		return nil, err
	}
	given := make([]shares.Share, len(headers))
	indices := make([]uint64, len(headers))
	for i, h := range headers {
		given[i] = shares.Share{Index: h.ShareIndex, Token: h.Share}
		indices[i] = h.ShareIndex
	}
	secret, err := shares.CombineWith(c.scheme(), given)
	if err != nil {
		return nil, err
	}
	defer secret.Wipe()

	f, err := c.fs().Open(container)
	if err != nil {
		return nil, cferrors.New(cferrors.IO, "open container", err)
	}
	defer f.Close()
	ch, err := frame.ReadContainerHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", container, err)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, cferrors.New(cferrors.IO, "read container", err)
	}
	ciphertext := io.NewSectionReader(f, frame.ContainerHeaderSize, info.Size()-frame.ContainerHeaderSize)

	suite := headers[0].Suite
	n, err := c.restore(ctx, opID, ciphertext, output, suite, secret, ch, chunk)
	if err != nil {
		return nil, err
	}
	return &ReconstructedMetadata{Layout: SharesOnly, Suite: suite, Indices: indices, Bytes: n}, nil
}

// restore decrypts ciphertext into output, publishing it only if the tag
// verifies.
func (c *ShareClient) restore(ctx context.Context, opID string, ciphertext *io.SectionReader, output string, suite streamcipher.Suite, secret shares.Secret, ch *frame.ContainerHeader, chunk int) (int64, error) {
	keys, err := streamcipher.DeriveKeys(suite, secret[:])
	if err != nil {
		return 0, err
	}
	out, err := tempstore.CreatePending(c.fs(), output)
	if err != nil {
		return 0, cferrors.New(cferrors.IO, "create output", err)
	}
	n, err := decryptStream(ctx, ciphertext, out, suite, keys, ch.IV[:], ch.Tag[:], chunk)
	if err != nil {
		out.Abort()
		if cferrors.IsKind(err, cferrors.Integrity) {
			glog.Warningf("[%s] Tag mismatch, discarded output for %s", opID, output)
		}
		return 0, cferrors.New(cferrors.IO, "decrypt", err)
	}
	if err := out.Commit(); err != nil {
		return 0, cferrors.New(cferrors.IO, "publish output", err)
	}
	glog.Infof("[%s] Restored %d bytes to %s", opID, n, output)
	return n, nil
}
