// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// NonceSize is the length of the random nonce prepended to every
	// ciphertext.
	NonceSize = 24
	// Overhead is the Poly1305 tag length added by Seal.
	Overhead = secretbox.Overhead
)

// randReader is the entropy source for keys, salts and nonces.
var randReader io.Reader = rand.Reader

// Envelope is an authenticated ciphertext together with the nonce it was
// sealed under. A nonce is never reused: every Seal draws a fresh one.
type Envelope struct {
	Nonce      [NonceSize]byte
	Ciphertext []byte
}

// Seal encrypts plaintext under key with XSalsa20-Poly1305.
func Seal(plaintext, key []byte) (Envelope, error) {
	k, err := toKey(key)
	if err != nil {
		return Envelope{}, opError("seal", err)
	}
	defer Wipe(k[:])

	var env Envelope
	if _, err := io.ReadFull(randReader, env.Nonce[:]); err != nil {
		return Envelope{}, opError("rand", fmt.Errorf("%w: %v", ErrRandFailure, err))
	}

	env.Ciphertext = secretbox.Seal(nil, plaintext, &env.Nonce, k)
	return env, nil
}

// Open verifies and decrypts env under key. Any verification failure,
// including a ciphertext shorter than the tag, is reported as
// [ErrAuthentication]; no partial plaintext is ever returned.
func Open(env Envelope, key []byte) ([]byte, error) {
	k, err := toKey(key)
	if err != nil {
		return nil, opError("open", err)
	}
	defer Wipe(k[:])

	if len(env.Ciphertext) < Overhead {
		return nil, opError("open", ErrAuthentication)
	}

	plaintext, ok := secretbox.Open(nil, env.Ciphertext, &env.Nonce, k)
	if !ok {
		return nil, opError("open", ErrAuthentication)
	}
	return plaintext, nil
}

func toKey(key []byte) (*[KeySize]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(key))
	}
	var k [KeySize]byte
	copy(k[:], key)
	return &k, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return nil, opError("rand", fmt.Errorf("%w: %v", ErrRandFailure, err))
	}
	return b, nil
}
