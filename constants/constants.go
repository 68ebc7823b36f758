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

// Package constants contains values shared between the client library and the binaries.
package constants

// ChunkSize is the default number of bytes read, encrypted and written per step.
const ChunkSize = 2048

// MinChunkSize and MaxChunkSize bound the configurable chunk size.
const (
	MinChunkSize = 512
	MaxChunkSize = 1 << 20
)

// MaxShares is the largest number of shares a split may produce. Share
// x-coordinates live in GF(2^8) and zero is reserved for the secret.
const MaxShares = 255

// FragmentNameFormat names a fragment file from its prefix, 1-based index and total.
const FragmentNameFormat = "%s%d_%d"

// ShareNameFormat names a share file in shares-only mode.
const ShareNameFormat = "%s%d_%d.share"

// ShareFileSuffix identifies share files on the command line.
const ShareFileSuffix = ".share"

// DefaultConfigFile is the name of the configuration file looked up in the
// user configuration directory.
const DefaultConfigFile = "cfshare.yaml"

// HKDF info strings for the hardened suites.
const (
	EncryptionKeyInfo = "cfshare v1 encryption key"
	MACKeyInfo        = "cfshare v1 mac key"
)
