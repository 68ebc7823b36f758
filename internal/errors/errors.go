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

// Package errors defines the error kinds reported by split and reconstruct
// operations. Messages never include key material or share tokens.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind int

const (
	// Unknown is reported for errors that carry no classification.
	Unknown Kind = iota
	// Configuration covers invalid thresholds, unknown suites and bad key or IV sizes.
	Configuration
	// Entropy means the random source failed.
	Entropy
	// Parse means a header was truncated or malformed.
	Parse
	// Consistency covers artifacts that disagree or an invalid mix of inputs.
	Consistency
	// Share means the secret could not be combined from the given shares.
	Share
	// Integrity means the tag did not match the reconstructed data.
	Integrity
	// IO covers file system failures.
	IO
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Entropy:
		return "entropy"
	case Parse:
		return "parse"
	case Consistency:
		return "consistency"
	case Share:
		return "share"
	case Integrity:
		return "integrity"
	case IO:
		return "io"
	default:
		return "unknown"
	}
}

// Sentinel errors for parameter and input validation.
var (
	// ErrInvalidThreshold means the threshold or total is out of range.
	ErrInvalidThreshold = errors.New("threshold must satisfy 1 < threshold <= total <= 255")

	// ErrUnknownSuite means a suite name or code is not recognised.
	ErrUnknownSuite = errors.New("unknown cipher suite")

	// ErrTruncated means input ended inside a header.
	ErrTruncated = errors.New("truncated header")

	// ErrMixedInputs means fragments and share files were given together.
	ErrMixedInputs = errors.New("fragments and share files cannot be combined")

	// ErrMissingShares means a single container was given without share files.
	ErrMissingShares = errors.New("a single input requires share files")

	// ErrNoInputs means nothing was given to reconstruct from.
	ErrNoInputs = errors.New("no input files")
)

// Sentinel errors for reconstruction.
var (
	// ErrFragmentMismatch means fragments disagree on suite, IV, tag or layout.
	ErrFragmentMismatch = errors.New("fragments do not belong to the same split")

	// ErrDuplicateIndex means two inputs carry the same share index.
	ErrDuplicateIndex = errors.New("duplicate share index")

	// ErrInsufficientShares means fewer shares than the threshold were given.
	ErrInsufficientShares = errors.New("not enough shares")

	// ErrTagMismatch means the integrity tag did not verify.
	ErrTagMismatch = errors.New("integrity tag mismatch")
)

// Error attaches a Kind and the failing operation to an underlying error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an *Error of the given kind. If err is already an *Error it is
// returned unchanged so the innermost classification wins.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf is New with a formatted message. Use %w to keep a sentinel matchable.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
