// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"fmt"

	"golang.org/x/crypto/nacl/box"
)

const (
	// PublicKeySize is the length of an X25519 public or private key.
	PublicKeySize = 32
	// sealedHeaderSize covers the ephemeral public key and the nonce.
	sealedHeaderSize = PublicKeySize + NonceSize
)

// OpenSealed decrypts a challenge addressed to the holder of privateKey.
// The layout is ephemeralPublicKey(32) ‖ nonce(24) ‖ box ciphertext.
func OpenSealed(sealed, privateKey []byte) ([]byte, error) {
	if len(privateKey) != PublicKeySize {
		return nil, opError("box-open", fmt.Errorf("%w: private key must be %d bytes", ErrInvalidKey, PublicKeySize))
	}
	if len(sealed) < sealedHeaderSize+box.Overhead {
		return nil, opError("box-open", fmt.Errorf("%w: sealed challenge is %d bytes", ErrFormat, len(sealed)))
	}

	var (
		ephemeral [PublicKeySize]byte
		nonce     [NonceSize]byte
		priv      [PublicKeySize]byte
	)
	copy(ephemeral[:], sealed[:PublicKeySize])
	copy(nonce[:], sealed[PublicKeySize:sealedHeaderSize])
	copy(priv[:], privateKey)
	defer Wipe(priv[:])

	plaintext, ok := box.Open(nil, sealed[sealedHeaderSize:], &nonce, &ephemeral, &priv)
	if !ok {
		return nil, opError("box-open", ErrAuthentication)
	}
	return plaintext, nil
}

// SealTo encrypts message for recipientPublicKey under a fresh ephemeral key
// pair and returns it in the layout read by [OpenSealed].
func SealTo(message, recipientPublicKey []byte) ([]byte, error) {
	if len(recipientPublicKey) != PublicKeySize {
		return nil, opError("box-seal", fmt.Errorf("%w: public key must be %d bytes", ErrInvalidKey, PublicKeySize))
	}

	ephemeralPub, ephemeralPriv, err := box.GenerateKey(randReader)
	if err != nil {
		return nil, opError("rand", fmt.Errorf("%w: %v", ErrRandFailure, err))
	}
	defer Wipe(ephemeralPriv[:])

	nonce, err := randomBytes(NonceSize)
	if err != nil {
		return nil, err
	}

	var (
		n   [NonceSize]byte
		pub [PublicKeySize]byte
	)
	copy(n[:], nonce)
	copy(pub[:], recipientPublicKey)

	out := make([]byte, 0, sealedHeaderSize+len(message)+box.Overhead)
	out = append(out, ephemeralPub[:]...)
	out = append(out, n[:]...)
	return box.Seal(out, message, &n, &pub, ephemeralPriv), nil
}
