// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains message strings shared by the client and the API it
// talks to.
//
// The API answers failed requests with a plain-text body holding one of the
// Msg* constants. The client matches on the exact text where the status code
// alone is ambiguous (e.g. a 410 for a consumed login challenge versus an
// expired one).
package app

const (
	// MsgInvalidDataProvided is returned when the request body cannot be
	// decoded or fails basic validation (e.g. missing required fields).
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgTokenIsExpiredOrInvalid is returned when a JWT bearer token is
	// either expired or cannot be verified (e.g. wrong signature).
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgAccountAlreadyExists is returned by /register for a taken email.
	MsgAccountAlreadyExists = "account already exists"

	// MsgAccountNotFound is returned when no account matches the email.
	MsgAccountNotFound = "account not found"

	// MsgInvalidOTT is returned by /verify-ott for a wrong or expired code.
	MsgInvalidOTT = "invalid one-time token"

	// MsgChallengeAlreadyUsed is returned by /complete-login when the
	// challenge id was already redeemed.
	MsgChallengeAlreadyUsed = "challenge already used"

	// MsgChallengeExpired is returned by /complete-login when the challenge
	// outlived its validity window.
	MsgChallengeExpired = "challenge expired"

	// MsgChallengeMismatch is returned by /complete-login when the decrypted
	// challenge does not match what the server issued.
	MsgChallengeMismatch = "challenge verification failed"

	// MsgCollectionNotFound and MsgFileNotFound are returned for unknown ids
	// or ids owned by another account.
	MsgCollectionNotFound = "collection not found"
	MsgFileNotFound       = "file not found"

	// MsgFileDataMissing is returned by GET /files/{id}/data when the record
	// exists but no blob was uploaded.
	MsgFileDataMissing = "file data missing"

	// MsgFileDataExists is returned by POST /files/{id}/data when a blob was
	// already stored for the record. Blobs are write-once.
	MsgFileDataExists = "file data already uploaded"
)
