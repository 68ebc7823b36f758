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

// Package config loads the cfshare YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/LithiumSR/cfshare/client/shares"
	"github.com/LithiumSR/cfshare/client/streamcipher"
	"github.com/LithiumSR/cfshare/constants"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var userConfigDir = os.UserConfigDir

// Config holds settings shared by every subcommand. Flags given on the
// command line take precedence.
type Config struct {
	// Cipher is a suite name understood by streamcipher.ParseSuite.
	Cipher string `json:"cipher,omitempty"`
	// Hardened selects the HKDF and encrypt-then-MAC variant of Cipher.
	Hardened bool `json:"hardened,omitempty"`
	// SharingScheme names the scheme used for new shares.
	SharingScheme string `json:"sharingScheme,omitempty"`
	ChunkSize     int    `json:"chunkSize,omitempty"`
	TempDir       string `json:"tempDir,omitempty"`
	// MetricsFile, if set, receives Prometheus metrics after each command.
	MetricsFile string `json:"metricsFile,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Cipher:        "aes",
		SharingScheme: shares.DefaultScheme,
		ChunkSize:     constants.ChunkSize,
	}
}

// DefaultPath returns the configuration path under the user's config
// directory.
func DefaultPath() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.DefaultConfigFile), nil
}

// Load reads the file at path over the defaults. A missing file is only an
// error when explicit is set.
func Load(afs afero.Fs, path string, explicit bool) (*Config, error) {
	const op = "load config"
	cfg := Defaults()
	data, err := afero.ReadFile(afs, path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, cferrors.New(cferrors.Configuration, op, err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, cferrors.New(cferrors.Configuration, op, fmt.Errorf("%s: %v", path, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every field has a usable value.
func (c *Config) Validate() error {
	if _, err := c.Suite(); err != nil {
		return err
	}
	if _, err := shares.Lookup(c.SharingScheme); err != nil {
		return err
	}
	if c.ChunkSize != 0 && (c.ChunkSize < constants.MinChunkSize || c.ChunkSize > constants.MaxChunkSize) {
		return cferrors.Newf(cferrors.Configuration, "validate config", "chunkSize %d is outside [%d, %d]", c.ChunkSize, constants.MinChunkSize, constants.MaxChunkSize)
	}
	return nil
}

// Suite resolves Cipher and Hardened.
func (c *Config) Suite() (streamcipher.Suite, error) {
	s, err := streamcipher.ParseSuite(c.Cipher)
	if err != nil {
		return 0, err
	}
	if c.Hardened {
		s |= streamcipher.HardenedFlag
	}
	return s, nil
}

// Scheme resolves SharingScheme.
func (c *Config) Scheme() (shares.Scheme, error) {
	return shares.Lookup(c.SharingScheme)
}
