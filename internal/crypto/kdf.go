// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the length of every symmetric key in the hierarchy.
	KeySize = 32
	// SaltSize is the length of the per-account Argon2id salt.
	SaltSize = 16
)

// KDFParams are the Argon2id tuning parameters.
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultKDFParams is the only parameter set used outside of tests. Changing
// it locks every existing account out, since the same password and salt would
// then yield a different key-encryption key.
var DefaultKDFParams = KDFParams{
	Time:    3,
	Memory:  64 * 1024, // 64 MiB
	Threads: 4,
	KeyLen:  KeySize,
}

// deriveKey runs Argon2id over password and salt.
func deriveKey(password string, salt []byte, p KDFParams) ([]byte, error) {
	if password == "" {
		return nil, opError("argon2id", fmt.Errorf("%w: empty password", ErrDerivation))
	}
	if len(salt) != SaltSize {
		return nil, opError("argon2id", fmt.Errorf("%w: salt must be %d bytes, got %d", ErrDerivation, SaltSize, len(salt)))
	}

	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen), nil
}
