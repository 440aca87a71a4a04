// SPDX-License-Identifier: MPL-2.0

// Package fingerprint computes content fingerprints for emitted artifacts.
package fingerprint

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"

	"github.com/zeebo/blake3"
)

const (
	// MD5 matches the digest bundlers use for [chunkhash] by default.
	MD5 Algorithm = "md5"
	// SHA256 is the SHA-2 256-bit digest.
	SHA256 Algorithm = "sha256"
	// BLAKE3 is the 256-bit BLAKE3 digest.
	BLAKE3 Algorithm = "blake3"

	// DefaultAlgorithm is used when no algorithm is configured.
	DefaultAlgorithm = MD5
)

// ErrUnknownAlgorithm is the sentinel wrapped by UnknownAlgorithmError.
var ErrUnknownAlgorithm = errors.New("unknown fingerprint algorithm")

type (
	// Algorithm names a digest function.
	Algorithm string

	// UnknownAlgorithmError is returned for an Algorithm that is not supported.
	UnknownAlgorithmError struct {
		Value Algorithm
	}

	// Service computes and truncates fingerprints with a fixed algorithm.
	Service struct {
		algorithm Algorithm
		newHash   func() hash.Hash
	}
)

// Algorithms returns the supported algorithms in display order.
func Algorithms() []Algorithm {
	return []Algorithm{MD5, SHA256, BLAKE3}
}

// String returns the algorithm name.
func (a Algorithm) String() string { return string(a) }

// Validate returns an error wrapping ErrUnknownAlgorithm when a is not supported.
func (a Algorithm) Validate() error {
	switch a {
	case MD5, SHA256, BLAKE3:
		return nil
	default:
		return &UnknownAlgorithmError{Value: a}
	}
}

// Error implements the error interface.
func (e *UnknownAlgorithmError) Error() string {
	return fmt.Sprintf("unknown fingerprint algorithm %q (valid: md5, sha256, blake3)", e.Value)
}

// Unwrap returns ErrUnknownAlgorithm for errors.Is() compatibility.
func (e *UnknownAlgorithmError) Unwrap() error { return ErrUnknownAlgorithm }

// New returns a Service for the given algorithm. An empty algorithm selects
// DefaultAlgorithm.
func New(a Algorithm) (*Service, error) {
	if a == "" {
		a = DefaultAlgorithm
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	s := &Service{algorithm: a}
	switch a {
	case MD5:
		s.newHash = md5.New
	case SHA256:
		s.newHash = sha256.New
	case BLAKE3:
		s.newHash = func() hash.Hash { return blake3.New() }
	}
	return s, nil
}

// Algorithm returns the digest function used by the service.
func (s *Service) Algorithm() Algorithm { return s.algorithm }

// Compute returns the lowercase hex digest of payload. Identical payloads
// always produce identical fingerprints.
func (s *Service) Compute(payload []byte) string {
	h := s.newHash()
	h.Write(payload) //nolint:errcheck // hash.Hash writes never fail
	return hex.EncodeToString(h.Sum(nil))
}

// ComputeString is Compute for text payloads.
func (s *Service) ComputeString(payload string) string {
	return s.Compute([]byte(payload))
}

// Truncate returns the first length characters of full. A negative length
// means no truncation, and a length beyond len(full) returns full unchanged.
func Truncate(full string, length int) string {
	if length < 0 || length >= len(full) {
		return full
	}
	return full[:length]
}
