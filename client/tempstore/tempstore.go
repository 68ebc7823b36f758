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

// Package tempstore manages private temporary files and outputs that only
// appear under their final name once complete.
package tempstore

import (
	"fmt"
	"os"
	"path/filepath"

	glog "github.com/golang/glog"
	"github.com/spf13/afero"
)

// File is a temporary file that is removed on Release. Names are unique, so
// concurrent callers never share a file.
type File struct {
	afero.File
	fs       afero.Fs
	closed   bool
	released bool
}

// Acquire creates a new temporary file in dir (the default temporary
// directory if empty) whose name starts with pattern.
func Acquire(fs afero.Fs, dir, pattern string) (*File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create temporary directory %s: %w", dir, err)
	}
	f, err := afero.TempFile(fs, dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	return &File{File: f, fs: fs}, nil
}

// Close closes the file but keeps it on disk until Release.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.File.Close()
}

// Release closes and deletes the file. Calling it again does nothing.
func (f *File) Release() error {
	if f.released {
		return nil
	}
	f.released = true
	closeErr := f.Close()
	if err := f.fs.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temporary file %s: %w", f.Name(), err)
	}
	return closeErr
}

// Pending is an output written under a hidden sibling name and moved to its
// final path by Commit.
type Pending struct {
	*File
	target string
	done   bool
}

// CreatePending starts writing the output for target. The temporary file
// lives in the same directory so that Commit is a rename.
func CreatePending(fs afero.Fs, target string) (*Pending, error) {
	dir := filepath.Dir(target)
	f, err := Acquire(fs, dir, "."+filepath.Base(target)+".partial-")
	if err != nil {
		return nil, err
	}
	return &Pending{File: f, target: target}, nil
}

// Target returns the final path.
func (p *Pending) Target() string {
	return p.target
}

// Commit flushes the output and renames it to the target path.
func (p *Pending) Commit() error {
	if p.done {
		return fmt.Errorf("output %s already finished", p.target)
	}
	if err := p.Sync(); err != nil {
		p.Abort()
		return fmt.Errorf("failed to flush %s: %w", p.target, err)
	}
	if err := p.Close(); err != nil {
		p.Abort()
		return fmt.Errorf("failed to close %s: %w", p.target, err)
	}
	if err := p.fs.Rename(p.Name(), p.target); err != nil {
		p.Abort()
		return fmt.Errorf("failed to move output to %s: %w", p.target, err)
	}
	p.done = true
	p.released = true
	return nil
}

// Abort discards the output. It does nothing after Commit.
func (p *Pending) Abort() {
	if p.done {
		return
	}
	p.done = true
	if err := p.Release(); err != nil {
		glog.Warningf("Discarding partial output for %s: %v", p.target, err)
	}
}
