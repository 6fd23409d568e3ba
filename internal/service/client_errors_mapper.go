// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-paper-cloud/internal/adapter"
	"github.com/MKhiriev/go-paper-cloud/internal/app"
	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
)

// mapAdapterError translates the adapter's transport error into a service
// business error. The adapter error stays in the chain so that callers can
// still match adapter.ErrNetwork and the status sentinels.
func mapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	msg := extractBody(err)

	var mapped error
	switch {
	case errors.Is(err, adapter.ErrGone):
		switch msg {
		case app.MsgChallengeExpired, app.MsgChallengeAlreadyUsed:
			mapped = ErrChallengeExpired
		}

	case errors.Is(err, adapter.ErrBadRequest):
		switch msg {
		case app.MsgInvalidOTT:
			mapped = ErrInvalidOTT
		case app.MsgChallengeExpired, app.MsgChallengeAlreadyUsed:
			mapped = ErrChallengeExpired
		case app.MsgInvalidDataProvided:
			mapped = ErrInvalidDataProvided
		}

	case errors.Is(err, adapter.ErrUnauthorized):
		switch msg {
		case app.MsgChallengeMismatch:
			return fmt.Errorf("%w: %w", errors.Join(ErrWrongPassword, crypto.ErrAuthentication), err)
		case app.MsgChallengeExpired, app.MsgChallengeAlreadyUsed:
			mapped = ErrChallengeExpired
		default:
			mapped = ErrSessionInvalidated
		}

	case errors.Is(err, adapter.ErrForbidden):
		mapped = ErrAccessDenied

	case errors.Is(err, adapter.ErrNotFound):
		switch msg {
		case app.MsgAccountNotFound:
			mapped = ErrAccountNotFound
		case app.MsgCollectionNotFound:
			mapped = ErrCollectionNotFound
		case app.MsgFileNotFound, app.MsgFileDataMissing:
			mapped = ErrFileNotFound
		}

	case errors.Is(err, adapter.ErrConflict):
		if msg == app.MsgAccountAlreadyExists {
			mapped = ErrAccountExists
		}
	}

	if mapped == nil {
		return err
	}
	return fmt.Errorf("%w: %w", mapped, err)
}

// extractBody extracts the body from a message of the form "bad request: <body>"
func extractBody(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx != -1 {
		return msg[idx+2:]
	}
	return msg
}
