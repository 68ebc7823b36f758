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

// Package testutil contains utilities for unit tests.
package testutil

import (
	"crypto/sha256"
	"errors"
	"os"
	"sort"
	"testing"

	"github.com/google/tink/go/subtle/random"
	"github.com/spf13/afero"
)

// ErrInjected is returned by the fakes in this package.
var ErrInjected = errors.New("injected failure")

// FailingReader is an entropy source that always fails.
type FailingReader struct{}

func (FailingReader) Read([]byte) (int, error) {
	return 0, ErrInjected
}

// FailingFs wraps an afero.Fs and refuses to create files for which FailOn
// returns true.
type FailingFs struct {
	afero.Fs
	FailOn func(name string) bool
}

// Create implements afero.Fs.
func (f *FailingFs) Create(name string) (afero.File, error) {
	if f.FailOn != nil && f.FailOn(name) {
		return nil, &os.PathError{Op: "create", Path: name, Err: ErrInjected}
	}
	return f.Fs.Create(name)
}

// OpenFile implements afero.Fs.
func (f *FailingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 && f.FailOn != nil && f.FailOn(name) {
		return nil, &os.PathError{Op: "open", Path: name, Err: ErrInjected}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

// WriteRandomFile writes size random bytes to path and returns them.
func WriteRandomFile(t *testing.T, fs afero.Fs, path string, size int) []byte {
	t.Helper()
	data := random.GetRandomBytes(uint32(size))
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("afero.WriteFile(%s) returned error: %v", path, err)
	}
	return data
}

// FileSHA256 returns the SHA-256 digest of the file at path.
func FileSHA256(t *testing.T, fs afero.Fs, path string) [sha256.Size]byte {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("afero.ReadFile(%s) returned error: %v", path, err)
	}
	return sha256.Sum256(data)
}

// ListFiles returns every regular file under root, sorted.
func ListFiles(t *testing.T, fs afero.Fs, root string) []string {
	t.Helper()
	var files []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("afero.Walk(%s) returned error: %v", root, err)
	}
	sort.Strings(files)
	return files
}
