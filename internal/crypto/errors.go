// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the primitives of this package. Callers match
// them with [errors.Is]; the concrete error is usually an [*OpError] that
// records which primitive failed.
var (
	// ErrDerivation is returned when a key cannot be derived from a password,
	// e.g. because the password is empty or the salt has the wrong length.
	ErrDerivation = errors.New("key derivation failed")

	// ErrAuthentication is returned when an authenticated ciphertext does not
	// verify under the supplied key. It covers wrong keys, tampered bytes and
	// truncated tags alike; the three cases are indistinguishable by design of
	// the AEAD.
	ErrAuthentication = errors.New("authentication failed")

	// ErrFormat is returned when an encoded value cannot be decoded into an
	// envelope (invalid base64 or fewer bytes than a nonce).
	ErrFormat = errors.New("malformed ciphertext")

	// ErrInvalidKey is returned when a key or public key has the wrong length.
	ErrInvalidKey = errors.New("invalid key length")

	// ErrMalformedPayload is returned by [KeyChainService.DecryptData] when the
	// ciphertext authenticates but the plaintext is not the expected JSON.
	ErrMalformedPayload = errors.New("malformed decrypted payload")

	// ErrRandFailure is returned when the random source cannot be read.
	ErrRandFailure = errors.New("crypto/rand failure")
)

// OpError records the primitive that failed together with the sentinel (or
// underlying) error.
type OpError struct {
	Op  string // "argon2id", "seal", "open", "unwrap", "decode", "box-open", "rand"
	Err error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crypto %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("crypto %s failed", e.Op)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opError(op string, err error) error {
	return &OpError{Op: op, Err: err}
}
