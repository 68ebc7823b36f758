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
	"fmt"
	"strings"

	"github.com/LithiumSR/cfshare/client/frame"
	"github.com/LithiumSR/cfshare/client/shares"
	"github.com/LithiumSR/cfshare/client/streamcipher"
	"github.com/LithiumSR/cfshare/constants"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
	"github.com/spf13/afero"
)

// ArtifactInfo is the non-secret description of a fragment or share file.
type ArtifactInfo struct {
	Path       string
	IsShare    bool
	Suite      streamcipher.Suite
	ShareIndex uint64
	// Layout is only meaningful for fragments.
	Layout Layout
	// Fingerprint identifies the share token without revealing it.
	Fingerprint string
	HeaderLen   int64
	BodyLen     int64
}

// Inspect decodes the header of a fragment, or of a share file when path
// ends in ".share".
func (c *ShareClient) Inspect(path string) (*ArtifactInfo, error) {
	fs := c.fs()
	if strings.HasSuffix(path, constants.ShareFileSuffix) {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, cferrors.New(cferrors.IO, "inspect", err)
		}
		h, err := frame.ReadShareHeader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &ArtifactInfo{
			Path:        path,
			IsShare:     true,
			Suite:       h.Suite,
			ShareIndex:  h.ShareIndex,
			Layout:      SharesOnly,
			Fingerprint: shares.Fingerprint(h.Share),
			HeaderLen:   h.Size(),
		}, nil
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, cferrors.New(cferrors.IO, "inspect", err)
	}
	defer f.Close()
	h, err := frame.ReadFragmentHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, cferrors.New(cferrors.IO, "inspect", err)
	}
	layout := Duplicated
	if h.Incomplete {
		layout = Partitioned
	}
	return &ArtifactInfo{
		Path:        path,
		Suite:       h.Suite,
		ShareIndex:  h.ShareIndex,
		Layout:      layout,
		Fingerprint: shares.Fingerprint(h.Share),
		HeaderLen:   h.Size(),
		BodyLen:     info.Size() - h.Size(),
	}, nil
}
