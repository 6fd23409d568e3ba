// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/box"
)

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct {
	params KDFParams
}

// NewKeyChainService constructs a [KeyChainService] using [DefaultKDFParams]:
//   - time cost:   3 iterations
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewKeyChainService() KeyChainService {
	return &keyChainService{params: DefaultKDFParams}
}

// GenerateSalt implements [KeyChainService].
func (k *keyChainService) GenerateSalt() ([]byte, error) {
	return randomBytes(SaltSize)
}

// DeriveKey implements [KeyChainService].
func (k *keyChainService) DeriveKey(password string, salt []byte) ([]byte, error) {
	return deriveKey(password, salt, k.params)
}

// NewMasterKey implements [KeyChainService].
func (k *keyChainService) NewMasterKey() ([]byte, error) {
	return randomBytes(KeySize)
}

// NewCollectionKey implements [KeyChainService].
func (k *keyChainService) NewCollectionKey() ([]byte, error) {
	return randomBytes(KeySize)
}

// NewFileKey implements [KeyChainService].
func (k *keyChainService) NewFileKey() ([]byte, error) {
	return randomBytes(KeySize)
}

// NewRecoveryKey implements [KeyChainService].
func (k *keyChainService) NewRecoveryKey() ([]byte, error) {
	return randomBytes(KeySize)
}

// GenerateKeyPair implements [KeyChainService].
func (k *keyChainService) GenerateKeyPair() ([]byte, []byte, error) {
	pub, priv, err := box.GenerateKey(randReader)
	if err != nil {
		return nil, nil, opError("rand", fmt.Errorf("%w: %v", ErrRandFailure, err))
	}
	publicKey := append([]byte(nil), pub[:]...)
	privateKey := append([]byte(nil), priv[:]...)
	Wipe(priv[:])
	return publicKey, privateKey, nil
}

// WrapKey implements [KeyChainService].
func (k *keyChainService) WrapKey(child, parent []byte) (Envelope, error) {
	if len(child) != KeySize {
		return Envelope{}, opError("wrap", fmt.Errorf("%w: child key is %d bytes", ErrInvalidKey, len(child)))
	}
	return Seal(child, parent)
}

// UnwrapKey implements [KeyChainService].
func (k *keyChainService) UnwrapKey(wrapped Envelope, parent []byte) ([]byte, error) {
	child, err := Open(wrapped, parent)
	if err != nil {
		return nil, err
	}
	if len(child) != KeySize {
		Wipe(child)
		return nil, opError("unwrap", fmt.Errorf("%w: unwrapped key is %d bytes", ErrFormat, len(child)))
	}
	return child, nil
}

// Seal implements [KeyChainService].
func (k *keyChainService) Seal(plaintext, key []byte) (Envelope, error) {
	return Seal(plaintext, key)
}

// Open implements [KeyChainService].
func (k *keyChainService) Open(env Envelope, key []byte) ([]byte, error) {
	return Open(env, key)
}

// OpenChallenge implements [KeyChainService].
func (k *keyChainService) OpenChallenge(sealed, privateKey []byte) ([]byte, error) {
	return OpenSealed(sealed, privateKey)
}

// EncryptData implements [KeyChainService]. The output is the base64 form of
// nonce ‖ ciphertext over the JSON encoding of data.
func (k *keyChainService) EncryptData(data any, key []byte) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal data: %w", err)
	}
	defer Wipe(plaintext)

	env, err := Seal(plaintext, key)
	if err != nil {
		return "", err
	}
	return env.Encode(), nil
}

// DecryptData implements [KeyChainService]. Decoding failures surface as
// [ErrFormat], tag failures as [ErrAuthentication], and a plaintext that is
// not valid JSON for target as [ErrMalformedPayload].
func (k *keyChainService) DecryptData(encoded string, key []byte, target any) error {
	env, err := DecodeEnvelope(encoded)
	if err != nil {
		return err
	}

	plaintext, err := Open(env, key)
	if err != nil {
		return err
	}
	defer Wipe(plaintext)

	if err = json.Unmarshal(plaintext, target); err != nil {
		return opError("unmarshal", fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}
	return nil
}

var verificationWords = [...]string{
	"able", "acid", "also", "apex", "aqua", "arch", "atom", "aunt",
	"back", "base", "bath", "bear", "bell", "best", "bird", "blue",
	"boat", "body", "bone", "book", "born", "both", "bowl", "bulk",
	"burn", "bush", "busy", "calm", "came", "camp", "card", "care",
}

// VerificationID implements [KeyChainService]. The first four bytes of
// SHA-256(publicKey) each select one word.
func (k *keyChainService) VerificationID(publicKey []byte) string {
	sum := sha256.Sum256(publicKey)

	words := make([]string, 4)
	for i := range words {
		words[i] = verificationWords[int(sum[i])%len(verificationWords)]
	}
	return strings.Join(words, "-")
}
