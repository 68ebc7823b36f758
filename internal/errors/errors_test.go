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

package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestNewKeepsInnermostKind(t *testing.T) {
	inner := New(Parse, "decode fragment", ErrTruncated)
	outer := New(IO, "reconstruct", fmt.Errorf("reading header: %w", inner))

	if got := KindOf(outer); got != Parse {
		t.Errorf("KindOf() = %v, want %v", got, Parse)
	}
	if !errors.Is(outer, ErrTruncated) {
		t.Errorf("errors.Is(%v, ErrTruncated) = false, want true", outer)
	}
}

func TestNewNil(t *testing.T) {
	if err := New(IO, "op", nil); err != nil {
		t.Errorf("New(nil) = %v, want nil", err)
	}
}

func TestIsKind(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		kind Kind
		want bool
	}{
		{name: "matching", err: New(Integrity, "verify", ErrTagMismatch), kind: Integrity, want: true},
		{name: "other kind", err: New(Share, "combine", ErrInsufficientShares), kind: Integrity, want: false},
		{name: "plain error", err: io.EOF, kind: IO, want: false},
		{name: "nil", err: nil, kind: Unknown, want: false},
		{name: "formatted", err: Newf(Configuration, "split", "bad total %d: %w", 300, ErrInvalidThreshold), kind: Configuration, want: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsKind(tc.err, tc.kind); got != tc.want {
				t.Errorf("IsKind(%v, %v) = %v, want %v", tc.err, tc.kind, got, tc.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := New(Consistency, "reconstruct", ErrFragmentMismatch)
	for _, want := range []string{"reconstruct", "consistency", ErrFragmentMismatch.Error()} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("%q does not contain %q", err.Error(), want)
		}
	}
}
