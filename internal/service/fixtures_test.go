// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/mock"
	"github.com/MKhiriev/go-paper-cloud/internal/session"
	"github.com/MKhiriev/go-paper-cloud/internal/validators"
	"github.com/MKhiriev/go-paper-cloud/models"
)

const (
	testEmail    = "alice@example.com"
	testPassword = "correct-horse-battery-staple"
)

func testTokens() models.SessionTokens {
	return models.SessionTokens{
		AccessToken:            "access",
		AccessTokenExpiryTime:  time.Now().Add(time.Hour),
		RefreshToken:           "refresh",
		RefreshTokenExpiryTime: time.Now().Add(24 * time.Hour),
	}
}

func randomKey(t *testing.T) []byte {
	t.Helper()
	key, err := crypto.NewKeyChainService().NewMasterKey()
	require.NoError(t, err)
	return key
}

// authenticatedSession returns a logged-in session and a copy of its master
// key.
func authenticatedSession(t *testing.T) (*session.Session, []byte) {
	t.Helper()

	pub, priv, err := crypto.NewKeyChainService().GenerateKeyPair()
	require.NoError(t, err)
	master := randomKey(t)

	sess := session.New(logger.Nop())
	sess.Authenticate(testEmail, testTokens(), append([]byte(nil), master...), priv, pub)
	return sess, master
}

type registeredAccount struct {
	payload     models.RegistrationPayload
	recoveryKey string
}

// registerAccount runs the real registration and captures what would have
// been sent to the server.
func registerAccount(t *testing.T) registeredAccount {
	t.Helper()

	ctrl := gomock.NewController(t)
	serverAdapter := mock.NewMockServerAdapter(ctrl)

	var payload models.RegistrationPayload
	serverAdapter.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p models.RegistrationPayload) error {
			payload = p
			return nil
		})

	auth := NewClientAuthService(serverAdapter, crypto.NewKeyChainService(), session.New(nil),
		validators.NewClientInputValidator(0), logger.Nop())

	result, err := auth.Register(context.Background(), models.RegisterInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	return registeredAccount{payload: payload, recoveryKey: result.RecoveryKey}
}

// challengeFor builds the challenge a server would answer /verify-ott with.
func challengeFor(t *testing.T, p models.RegistrationPayload) (models.LoginChallenge, []byte) {
	t.Helper()

	pub, err := crypto.DecodeBytes(p.PublicKey)
	require.NoError(t, err)

	plain := []byte("0123456789abcdef0123456789abcdef")
	sealed, err := crypto.SealTo(plain, pub)
	require.NoError(t, err)

	return models.LoginChallenge{
		ChallengeID:         "challenge-1",
		Salt:                p.Salt,
		PublicKey:           p.PublicKey,
		EncryptedMasterKey:  p.EncryptedMasterKey,
		EncryptedPrivateKey: p.EncryptedPrivateKey,
		EncryptedChallenge:  crypto.EncodeBytes(sealed),
	}, plain
}
