// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// OTTRequest is the body of POST /request-ott.
type OTTRequest struct {
	Email string `json:"email"`
}

// VerifyOTTRequest is the body of POST /verify-ott.
type VerifyOTTRequest struct {
	Email string `json:"email"`
	OTT   string `json:"ott"`
}

// LoginChallenge is returned by POST /verify-ott. It carries everything the
// client needs to prove knowledge of the password without sending it. A
// challenge is single-use: once CompleteLogin has been attempted with its
// ChallengeID the server rejects it.
type LoginChallenge struct {
	ChallengeID         string `json:"challengeId"`
	Salt                string `json:"salt"`
	PublicKey           string `json:"publicKey"`
	EncryptedMasterKey  string `json:"encryptedMasterKey"`
	EncryptedPrivateKey string `json:"encryptedPrivateKey"`

	// EncryptedChallenge is ephemeralPublicKey ‖ nonce ‖ box, base64.
	EncryptedChallenge string `json:"encryptedChallenge"`
}

// CompleteLoginRequest is the body of POST /complete-login. DecryptedData is
// the base64 of the opened challenge bytes.
type CompleteLoginRequest struct {
	Email         string `json:"email"`
	ChallengeID   string `json:"challengeId"`
	DecryptedData string `json:"decryptedData"`
}

// RefreshRequest is the body of POST /token/refresh.
type RefreshRequest struct {
	Value string `json:"value"`
}

// MessageResponse is the generic acknowledgement body used by endpoints that
// return no data (e.g. POST /request-ott).
type MessageResponse struct {
	Message string `json:"message"`
}
