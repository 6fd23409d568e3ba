// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto holds all client-side cryptography of the end-to-end
// encrypted file store. It knows nothing about the network, the database or
// users; its only job is to generate, derive, wrap and unwrap keys and to
// seal and open payloads.
//
// Key hierarchy:
//
//	KEK           = Argon2id(password, salt)
//	MasterKey     = random, stored as Seal(MasterKey, KEK)
//	PrivateKey    = X25519, stored as Seal(PrivateKey, MasterKey)
//	RecoveryKey   = random, stored as Seal(RecoveryKey, MasterKey);
//	                MasterKey is also stored as Seal(MasterKey, RecoveryKey)
//	CollectionKey = random, stored as Seal(CollectionKey, MasterKey)
//	FileKey       = random, stored as Seal(FileKey, CollectionKey)
//
// Every ciphertext is XSalsa20-Poly1305 with a fresh 24-byte nonce, framed as
// nonce ‖ ciphertext and transported as standard base64.
package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/keychain_service_mock.go -package=mock

// KeyChainService is the client's key-management facade.
type KeyChainService interface {
	// GenerateSalt returns 16 random bytes. The salt is not secret; it makes
	// equal passwords yield different key-encryption keys.
	GenerateSalt() ([]byte, error)

	// DeriveKey derives the 32-byte key-encryption key from password and salt
	// with Argon2id. Deterministic for equal inputs. Returns [ErrDerivation]
	// for an empty password or a salt that is not 16 bytes.
	DeriveKey(password string, salt []byte) ([]byte, error)

	// NewMasterKey, NewCollectionKey, NewFileKey and NewRecoveryKey return 32
	// fresh random bytes each.
	NewMasterKey() ([]byte, error)
	NewCollectionKey() ([]byte, error)
	NewFileKey() ([]byte, error)
	NewRecoveryKey() ([]byte, error)

	// GenerateKeyPair returns a fresh X25519 key pair.
	GenerateKeyPair() (publicKey, privateKey []byte, err error)

	// WrapKey seals child under parent.
	WrapKey(child, parent []byte) (Envelope, error)

	// UnwrapKey opens a wrapped key. Returns [ErrAuthentication] when parent
	// is not the key that wrapped it and [ErrFormat] when the plaintext is not
	// a 32-byte key.
	UnwrapKey(wrapped Envelope, parent []byte) ([]byte, error)

	// Seal and Open are the raw symmetric primitives.
	Seal(plaintext, key []byte) (Envelope, error)
	Open(env Envelope, key []byte) ([]byte, error)

	// OpenChallenge decrypts a sealed login challenge with the account's
	// private key.
	OpenChallenge(sealed, privateKey []byte) ([]byte, error)

	// EncryptData marshals data to JSON and seals it under key, returning
	// the encoded envelope.
	EncryptData(data any, key []byte) (string, error)

	// DecryptData decodes and opens an envelope produced by EncryptData and
	// unmarshals the plaintext into target.
	DecryptData(encoded string, key []byte, target any) error

	// VerificationID returns a four-word fingerprint of publicKey suitable
	// for reading aloud.
	VerificationID(publicKey []byte) string
}
