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

package gf256

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestMul(t *testing.T) {
	for _, tc := range []struct {
		a, b, want byte
	}{
		// AES field arithmetic examples.
		{a: 0x53, b: 0xCA, want: 0x01},
		{a: 0x02, b: 0x87, want: 0x15},
		{a: 0x03, b: 0x6E, want: 0xB2},
		{a: 161, b: 56, want: 102},
		{a: 51, b: 82, want: 15},
		{a: 15, b: 30, want: 170},
		{a: 105, b: 27, want: 20},
		{a: 178, b: 160, want: 67},
		{a: 244, b: 118, want: 55},
		{a: 0, b: 200, want: 0},
		{a: 1, b: 200, want: 200},
	} {
		t.Run(fmt.Sprintf("%d*%d", tc.a, tc.b), func(t *testing.T) {
			if got := Mul(tc.a, tc.b); got != tc.want {
				t.Errorf("Mul(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
			if got := Mul(tc.b, tc.a); got != tc.want {
				t.Errorf("Mul(%d, %d) = %d, want %d", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestInv(t *testing.T) {
	for _, tc := range []struct {
		a, want byte
	}{
		{a: 0x53, want: 0xCA},
		{a: 29, want: 64},
		{a: 180, want: 17},
		{a: 249, want: 156},
		{a: 1, want: 1},
	} {
		got, err := Inv(tc.a)
		if err != nil {
			t.Fatalf("Inv(%d) returned error: %v", tc.a, err)
		}
		if got != tc.want {
			t.Errorf("Inv(%d) = %d, want %d", tc.a, got, tc.want)
		}
	}
}

func TestInvEveryElement(t *testing.T) {
	for a := 1; a < 256; a++ {
		inv, err := Inv(byte(a))
		if err != nil {
			t.Fatalf("Inv(%d) returned error: %v", a, err)
		}
		if got := Mul(byte(a), inv); got != 1 {
			t.Fatalf("%d * Inv(%d) = %d, want 1", a, a, got)
		}
	}
}

func TestInvZero(t *testing.T) {
	if _, err := Inv(0); err == nil {
		t.Error("Inv(0) returned no error")
	}
	if _, err := Div(5, 0); err == nil {
		t.Error("Div(5, 0) returned no error")
	}
}

func TestRandomNonZeroSkipsZero(t *testing.T) {
	got, err := RandomNonZero(bytes.NewReader([]byte{0, 0, 7}))
	if err != nil {
		t.Fatalf("RandomNonZero() returned error: %v", err)
	}
	if got != 7 {
		t.Errorf("RandomNonZero() = %d, want 7", got)
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestRandomNonZeroReaderError(t *testing.T) {
	if _, err := RandomNonZero(errReader{}); err == nil {
		t.Error("RandomNonZero() returned no error for a failing reader")
	}
}
