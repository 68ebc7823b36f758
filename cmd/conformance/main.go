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

// Binary to check split and bind behaviour end to end on an in-memory file
// system.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/LithiumSR/cfshare/client"
	"github.com/LithiumSR/cfshare/client/shares"
	"github.com/LithiumSR/cfshare/client/streamcipher"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
	"github.com/alecthomas/colour"
	"github.com/google/tink/go/subtle/random"
	"github.com/spf13/afero"
)

var (
	size = flag.Int("size", 10000, "Size of the random input file in bytes.")
)

const (
	input  = "/in/data"
	prefix = "/out/data"
	output = "/restored/data"
)

type conformanceTest struct {
	testName string
	// wantKind is the expected error kind, or Unknown for success.
	wantKind cferrors.Kind
	run      func(ctx context.Context, env *env) error
}

// env is a fresh file system holding the random input.
type env struct {
	fs        afero.Fs
	client    *client.ShareClient
	plaintext []byte
}

func newEnv() (*env, error) {
	fs := afero.NewMemMapFs()
	data := random.GetRandomBytes(uint32(*size))
	if err := afero.WriteFile(fs, input, data, 0o600); err != nil {
		return nil, err
	}
	return &env{fs: fs, client: &client.ShareClient{Fs: fs, TempDir: "/tmp"}, plaintext: data}, nil
}

func (e *env) split(ctx context.Context, m, n int, suite streamcipher.Suite, sharesOnly bool) error {
	_, err := e.client.Split(ctx, client.SplitOptions{
		Input:        input,
		OutputPrefix: prefix,
		Threshold:    m,
		Total:        n,
		Suite:        suite,
		SharesOnly:   sharesOnly,
	})
	return err
}

func fragments(n int, indices ...int) []string {
	var out []string
	for _, i := range indices {
		out = append(out, client.FragmentName(prefix, i, n))
	}
	return out
}

// restore binds the inputs and checks the output matches the input.
func (e *env) restore(ctx context.Context, inputs, shareFiles []string) error {
	if _, err := e.client.Reconstruct(ctx, inputs, output, shareFiles); err != nil {
		return err
	}
	got, err := afero.ReadFile(e.fs, output)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, e.plaintext) {
		return fmt.Errorf("restored file differs from the input")
	}
	return nil
}

func (e *env) flipLastByte(path string) error {
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return err
	}
	data[len(data)-1] ^= 0x80
	return afero.WriteFile(e.fs, path, data, 0o600)
}

func roundTrip(suite streamcipher.Suite, m, n int, use ...int) conformanceTest {
	return conformanceTest{
		testName: fmt.Sprintf("%v: split %d of %d, bind %v", suite, m, n, use),
		run: func(ctx context.Context, e *env) error {
			if err := e.split(ctx, m, n, suite, false); err != nil {
				return err
			}
			return e.restore(ctx, fragments(n, use...), nil)
		},
	}
}

func testCases() []conformanceTest {
	var cases []conformanceTest
	for _, s := range streamcipher.Suites() {
		cases = append(cases, roundTrip(s, 3, 5, 5, 3, 1), roundTrip(s, 5, 5, 3, 1, 2, 4, 5))
	}
	return append(cases,
		conformanceTest{
			testName: "Shares-only container with 2 of 3 shares",
			run: func(ctx context.Context, e *env) error {
				if err := e.split(ctx, 2, 3, streamcipher.AES, true); err != nil {
					return err
				}
				return e.restore(ctx, []string{prefix}, []string{client.ShareName(prefix, 3, 3), client.ShareName(prefix, 1, 3)})
			},
		},
		conformanceTest{
			testName: "SSSA shares",
			run: func(ctx context.Context, e *env) error {
				e.client.Scheme = shares.SSSA{}
				if err := e.split(ctx, 2, 4, streamcipher.ChaCha20, false); err != nil {
					return err
				}
				return e.restore(ctx, fragments(4, 2, 4), nil)
			},
		},
		conformanceTest{
			testName: "Threshold above total is rejected",
			wantKind: cferrors.Configuration,
			run: func(ctx context.Context, e *env) error {
				return e.split(ctx, 4, 3, streamcipher.AES, false)
			},
		},
		conformanceTest{
			testName: "Fewer shares than the threshold",
			wantKind: cferrors.Share,
			run: func(ctx context.Context, e *env) error {
				if err := e.split(ctx, 3, 5, streamcipher.AES, false); err != nil {
					return err
				}
				return e.restore(ctx, fragments(5, 1, 2), nil)
			},
		},
		conformanceTest{
			testName: "Modified fragment body",
			wantKind: cferrors.Integrity,
			run: func(ctx context.Context, e *env) error {
				if err := e.split(ctx, 3, 3, streamcipher.Camellia, false); err != nil {
					return err
				}
				if err := e.flipLastByte(client.FragmentName(prefix, 2, 3)); err != nil {
					return err
				}
				return e.restore(ctx, fragments(3, 1, 2, 3), nil)
			},
		},
		conformanceTest{
			testName: "Fragments from two splits",
			wantKind: cferrors.Consistency,
			run: func(ctx context.Context, e *env) error {
				if err := e.split(ctx, 2, 3, streamcipher.AES, false); err != nil {
					return err
				}
				first, err := afero.ReadFile(e.fs, client.FragmentName(prefix, 1, 3))
				if err != nil {
					return err
				}
				if err := e.split(ctx, 2, 3, streamcipher.AES, false); err != nil {
					return err
				}
				if err := afero.WriteFile(e.fs, "/old1_3", first, 0o600); err != nil {
					return err
				}
				return e.restore(ctx, []string{"/old1_3", client.FragmentName(prefix, 2, 3)}, nil)
			},
		},
		conformanceTest{
			testName: "Fragments mixed with share files",
			wantKind: cferrors.Consistency,
			run: func(ctx context.Context, e *env) error {
				return e.restore(ctx, fragments(3, 1, 2), []string{"/x.share"})
			},
		},
	)
}

func main() {
	flag.Parse()
	ctx := context.Background()

	fmt.Println("Running split and bind tests...")
	failed := 0
	for _, tc := range testCases() {
		e, err := newEnv()
		if err == nil {
			err = tc.run(ctx, e)
		}
		var passed bool
		if tc.wantKind == cferrors.Unknown {
			passed = err == nil
		} else {
			passed = cferrors.IsKind(err, tc.wantKind)
		}
		if passed {
			colour.Printf("^2 - %v^R\n", tc.testName)
		} else {
			failed++
			colour.Printf("^1 - %v: %v^R\n", tc.testName, err)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}
