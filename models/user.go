// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// RegisterInput is what the user types at registration. It never leaves the
// client: the service turns it into a [RegistrationPayload] and drops the
// password.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Timezone  string
}

// RegistrationPayload is the body of POST /register. Every byte field is
// standard base64; every secret in it is wrapped.
type RegistrationPayload struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Timezone  string `json:"timezone,omitempty"`

	// Salt is the Argon2id salt of the account (16 bytes, not secret).
	Salt string `json:"salt"`

	// PublicKey is the account's X25519 public key in the clear.
	PublicKey string `json:"publicKey"`

	// EncryptedMasterKey is the master key sealed under the password KEK.
	EncryptedMasterKey string `json:"encryptedMasterKey"`

	// EncryptedPrivateKey is the X25519 private key sealed under the master key.
	EncryptedPrivateKey string `json:"encryptedPrivateKey"`

	// EncryptedRecoveryKey is the recovery key sealed under the master key.
	EncryptedRecoveryKey string `json:"encryptedRecoveryKey"`

	// MasterKeyEncryptedWithRecoveryKey lets the recovery key restore the
	// master key after a forgotten password.
	MasterKeyEncryptedWithRecoveryKey string `json:"masterKeyEncryptedWithRecoveryKey"`

	// VerificationID is the four-word fingerprint of PublicKey.
	VerificationID string `json:"verificationID"`
}

// RegisterResult is returned to the caller after a successful registration.
type RegisterResult struct {
	// RecoveryKey is the base64 recovery key. It is shown once and is the only
	// way back into the account if the password is lost.
	RecoveryKey string

	VerificationID string
}
