// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"

	"github.com/MKhiriev/go-paper-cloud/internal/session"
)

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrWrongPassword is returned when the password-derived key does not open
	// the account's master key, or the server rejects the challenge proof.
	ErrWrongPassword = errors.New("wrong password")

	// ErrAccessDenied is returned when a parent key does not unwrap a
	// collection or file key.
	ErrAccessDenied = errors.New("access denied")

	// ErrChallengeExpired is returned when the server no longer accepts the
	// login challenge, e.g. because it was already used.
	ErrChallengeExpired = errors.New("login challenge expired")

	// ErrIntegrity is returned when a downloaded file does not match its
	// record: hash, metadata or size.
	ErrIntegrity = errors.New("integrity check failed")

	ErrInvalidLoginState = errors.New("operation not allowed in current login state")
	ErrNotAuthenticated  = session.ErrNotAuthenticated

	// ErrSessionInvalidated is returned when the server rejected the access
	// token and the session was closed.
	ErrSessionInvalidated = errors.New("session invalidated")

	ErrInvalidOTT         = errors.New("invalid one-time token")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrFileNotFound       = errors.New("file not found")
	ErrUnsupportedVersion = errors.New("unsupported encryption version")
)

var ErrVersionIsNotSpecified = errors.New("app version is not specified")
