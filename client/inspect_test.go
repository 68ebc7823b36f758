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
	"testing"

	"github.com/LithiumSR/cfshare/client/frame"
	"github.com/LithiumSR/cfshare/client/shares"
	"github.com/LithiumSR/cfshare/client/streamcipher"
	"github.com/LithiumSR/cfshare/client/testutil"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestInspect(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteRandomFile(t, fs, testInput, 1000)
	c := newTestClient(fs)
	ctx := context.Background()

	dup, err := c.Split(ctx, SplitOptions{Input: testInput, OutputPrefix: "/dup/f", Threshold: 2, Total: 3, Suite: streamcipher.Camellia})
	if err != nil {
		t.Fatalf("Split() returned error: %v", err)
	}
	part, err := c.Split(ctx, SplitOptions{Input: testInput, OutputPrefix: "/part/f", Threshold: 2, Total: 2})
	if err != nil {
		t.Fatalf("Split() returned error: %v", err)
	}
	only, err := c.Split(ctx, SplitOptions{Input: testInput, OutputPrefix: "/only/f", Threshold: 2, Total: 2, SharesOnly: true, Suite: streamcipher.AES | streamcipher.HardenedFlag})
	if err != nil {
		t.Fatalf("Split() returned error: %v", err)
	}

	dupHeader := &frame.FragmentHeader{Suite: streamcipher.Camellia, ShareIndex: 2, Share: dup.Shares[1].Token}
	partHeader := &frame.FragmentHeader{Incomplete: true, Suite: streamcipher.AES, ShareIndex: 2, Share: part.Shares[1].Token}
	shareHeader := &frame.ShareHeader{Suite: streamcipher.AES | streamcipher.HardenedFlag, ShareIndex: 1, Share: only.Shares[0].Token}

	for _, tc := range []struct {
		name string
		path string
		want *ArtifactInfo
	}{
		{
			name: "duplicated fragment",
			path: dup.Files[1],
			want: &ArtifactInfo{
				Path:        dup.Files[1],
				Suite:       streamcipher.Camellia,
				ShareIndex:  2,
				Layout:      Duplicated,
				Fingerprint: shares.Fingerprint(dup.Shares[1].Token),
				HeaderLen:   dupHeader.Size(),
				BodyLen:     1000,
			},
		},
		{
			name: "partitioned fragment",
			path: part.Files[1],
			want: &ArtifactInfo{
				Path:        part.Files[1],
				Suite:       streamcipher.AES,
				ShareIndex:  2,
				Layout:      Partitioned,
				Fingerprint: shares.Fingerprint(part.Shares[1].Token),
				HeaderLen:   partHeader.Size(),
				BodyLen:     500,
			},
		},
		{
			name: "share file",
			path: only.Files[1],
			want: &ArtifactInfo{
				Path:        only.Files[1],
				IsShare:     true,
				Suite:       streamcipher.AES | streamcipher.HardenedFlag,
				ShareIndex:  1,
				Layout:      SharesOnly,
				Fingerprint: shares.Fingerprint(only.Shares[0].Token),
				HeaderLen:   shareHeader.Size(),
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Inspect(tc.path)
			if err != nil {
				t.Fatalf("Inspect(%s) returned error: %v", tc.path, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Inspect(%s) returned diff (-want +got):\n%s", tc.path, diff)
			}
		})
	}
}

func TestInspectErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/short", []byte{0x01}, 0o644); err != nil {
		t.Fatalf("WriteFile() returned error: %v", err)
	}
	if err := afero.WriteFile(fs, "/short.share", []byte{0x01, 0x00}, 0o644); err != nil {
		t.Fatalf("WriteFile() returned error: %v", err)
	}
	c := newTestClient(fs)

	for _, tc := range []struct {
		path string
		kind cferrors.Kind
	}{
		{path: "/short", kind: cferrors.Parse},
		{path: "/short.share", kind: cferrors.Parse},
		{path: "/missing", kind: cferrors.IO},
		{path: "/missing.share", kind: cferrors.IO},
	} {
		t.Run(tc.path, func(t *testing.T) {
			if _, err := c.Inspect(tc.path); !cferrors.IsKind(err, tc.kind) {
				t.Errorf("Inspect(%s) = %v, want %v error", tc.path, err, tc.kind)
			}
		})
	}
}
