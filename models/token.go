// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokens is the token pair issued by POST /complete-login and
// POST /token/refresh.
type SessionTokens struct {
	AccessToken            string    `json:"access_token"`
	AccessTokenExpiryTime  time.Time `json:"access_token_expiry_date"`
	RefreshToken           string    `json:"refresh_token"`
	RefreshTokenExpiryTime time.Time `json:"refresh_token_expiry_date"`
}

// IsZero reports whether no access token is held.
func (t SessionTokens) IsZero() bool {
	return t.AccessToken == ""
}

// AccessExpiresWithin reports whether the access token expires before
// now+leeway. A token without a known expiry is treated as expiring.
func (t SessionTokens) AccessExpiresWithin(now time.Time, leeway time.Duration) bool {
	if t.AccessTokenExpiryTime.IsZero() {
		return true
	}
	return !now.Add(leeway).Before(t.AccessTokenExpiryTime)
}

// Token kinds carried in [TokenClaims.Kind].
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// TokenClaims is the JWT claim set of both session tokens. Subject holds the
// account email.
type TokenClaims struct {
	jwt.RegisteredClaims

	// Kind distinguishes access from refresh tokens so one cannot be
	// presented in place of the other.
	Kind string `json:"kind"`
}
