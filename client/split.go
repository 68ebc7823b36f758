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
	"io"
	"os"
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

func (c *ShareClient) validateSplit(opts *SplitOptions) (int, error) {
	const op = "split"
	if opts.Suite == 0 {
		opts.Suite = streamcipher.AES
	}
	if _, err := opts.Suite.Params(); err != nil {
		return 0, err
	}
	if err := shares.ValidateParams(opts.Threshold, opts.Total); err != nil {
		return 0, err
	}
	if opts.Input == "" {
		return 0, cferrors.Newf(cferrors.Configuration, op, "no input file")
	}
	if opts.OutputPrefix == "" {
		return 0, cferrors.Newf(cferrors.Configuration, op, "no output prefix")
	}
	if opts.Key != nil && len(opts.Key) != shares.SecretBytes {
		return 0, cferrors.Newf(cferrors.Configuration, op, "key must be %d bytes, got %d", shares.SecretBytes, len(opts.Key))
	}
	return c.chunkSize()
}

// Split encrypts opts.Input and writes opts.Total artifacts, any
// opts.Threshold of which reconstruct it. Parameters are validated before
// any file is touched. On failure every artifact written by this call and
// all intermediate data are removed.
func (c *ShareClient) Split(ctx context.Context, opts SplitOptions) (res *SplitResult, err error) {
	start := time.Now()
	defer func() {
		var n int64
		if res != nil {
			n = res.CiphertextLen
		}
		c.Metrics.observe(opSplit, n, err, start)
	}()

	chunk, err := c.validateSplit(&opts)
	if err != nil {
		return nil, err
	}
	opID := uuid.NewString()
	glog.Infof("[%s] Splitting %s into %d fragments, threshold %d, suite %v", opID, opts.Input, opts.Total, opts.Threshold, opts.Suite)

	fs := c.fs()
	in, err := fs.Open(opts.Input)
	if err != nil {
		return nil, cferrors.New(cferrors.IO, "open input", err)
	}
	defer in.Close()

	var secret shares.Secret
	if opts.Key != nil {
		copy(secret[:], opts.Key)
	} else if secret, err = shares.NewSecret(c.rand()); err != nil {
		return nil, err
	}
	defer secret.Wipe()

	var ch frame.ContainerHeader
	if _, err := io.ReadFull(c.rand(), ch.IV[:]); err != nil {
		return nil, cferrors.New(cferrors.Entropy, "generate IV", err)
	}
	keys, err := streamcipher.DeriveKeys(opts.Suite, secret[:])
	if err != nil {
		return nil, err
	}
	enc, err := streamcipher.NewEncrypter(opts.Suite, keys.Cipher, ch.IV[:])
	if err != nil {
		return nil, err
	}
	mac, err := streamcipher.NewMAC(keys.MAC)
	if err != nil {
		return nil, err
	}

	ciphertext, err := tempstore.Acquire(fs, c.TempDir, "cfshare-")
	if err != nil {
		return nil, cferrors.New(cferrors.IO, "create temporary ciphertext", err)
	}
	defer func() {
		if rerr := ciphertext.Release(); rerr != nil {
			glog.Warningf("[%s] %v", opID, rerr)
		}
	}()

	ctLen, err := encryptStream(ctx, in, ciphertext, enc, mac, opts.Suite.TagsCiphertext(), chunk)
	if err != nil {
		return nil, cferrors.New(cferrors.IO, "encrypt", err)
	}
	copy(ch.Tag[:], mac.Finalize())
	glog.V(2).Infof("[%s] Encrypted %d bytes", opID, ctLen)

	created, err := c.scheme().Create(c.rand(), opts.Threshold, opts.Total, secret[:])
	if err != nil {
		return nil, err
	}

	w := &artifactWriter{ctx: ctx, fs: c.fs(), chunk: chunk, opID: opID}
	defer func() {
		if err != nil {
			w.rollback()
		}
	}()

	res = &SplitResult{Suite: opts.Suite, Shares: created, CiphertextLen: ctLen}
	switch {
	case opts.SharesOnly:
		res.Layout = SharesOnly
		err = w.writeSharesOnly(opts, &ch, created, ciphertext, ctLen)
	case opts.Threshold == opts.Total:
		res.Layout = Partitioned
		err = w.writeFragments(opts, &ch, created, ciphertext, ctLen, true)
	default:
		res.Layout = Duplicated
		err = w.writeFragments(opts, &ch, created, ciphertext, ctLen, false)
	}
	if err != nil {
		return nil, err
	}
	res.Files = w.published
	glog.Infof("[%s] Wrote %d artifacts (%v layout) in %v", opID, len(w.published), res.Layout, time.Since(start))
	return res, nil
}

// artifactWriter publishes artifacts and remembers them for rollback.
type artifactWriter struct {
	ctx       context.Context
	fs        afero.Fs
	chunk     int
	opID      string
	published []string
}

func (w *artifactWriter) publish(path string, write func(io.Writer) error) error {
	p, err := tempstore.CreatePending(w.fs, path)
	if err != nil {
		return cferrors.New(cferrors.IO, "create "+path, err)
	}
	if err := write(p); err != nil {
		p.Abort()
		return cferrors.New(cferrors.IO, "write "+path, err)
	}
	if err := p.Commit(); err != nil {
		return cferrors.New(cferrors.IO, "commit "+path, err)
	}
	w.published = append(w.published, path)
	glog.V(2).Infof("[%s] Wrote %s", w.opID, path)
	return nil
}

func (w *artifactWriter) rollback() {
	for _, path := range w.published {
		if err := w.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			glog.Warningf("[%s] Failed to remove %s after error: %v", w.opID, path, err)
		}
	}
	w.published = nil
}

func (w *artifactWriter) writeFragments(opts SplitOptions, ch *frame.ContainerHeader, created []shares.Share, ct io.ReaderAt, ctLen int64, partition bool) error {
	n := int64(len(created))
	part := ctLen / n
	for i, s := range created {
		off, size := int64(0), ctLen
		if partition {
			off, size = int64(i)*part, part
			if int64(i) == n-1 {
				size = ctLen - off
			}
		}
		h := &frame.FragmentHeader{
			Incomplete:      partition,
			Suite:           opts.Suite,
			ShareIndex:      s.Index,
			Share:           s.Token,
			ContainerHeader: *ch,
		}
		body := io.NewSectionReader(ct, off, size)
		err := w.publish(FragmentName(opts.OutputPrefix, int(s.Index), len(created)), func(out io.Writer) error {
			if err := frame.WriteFragmentHeader(out, h); err != nil {
				return err
			}
			_, err := copyChunks(w.ctx, out, body, w.chunk)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *artifactWriter) writeSharesOnly(opts SplitOptions, ch *frame.ContainerHeader, created []shares.Share, ct io.ReaderAt, ctLen int64) error {
	err := w.publish(opts.OutputPrefix, func(out io.Writer) error {
		if err := frame.WriteContainerHeader(out, ch); err != nil {
			return err
		}
		_, err := copyChunks(w.ctx, out, io.NewSectionReader(ct, 0, ctLen), w.chunk)
		return err
	})
	if err != nil {
		return err
	}
	for _, s := range created {
		h := &frame.ShareHeader{Suite: opts.Suite, ShareIndex: s.Index, Share: s.Token}
		err := w.publish(ShareName(opts.OutputPrefix, int(s.Index), len(created)), func(out io.Writer) error {
			return frame.WriteShareHeader(out, h)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
