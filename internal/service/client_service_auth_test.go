// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-paper-cloud/internal/adapter"
	"github.com/MKhiriev/go-paper-cloud/internal/app"
	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/mock"
	"github.com/MKhiriev/go-paper-cloud/internal/session"
	"github.com/MKhiriev/go-paper-cloud/internal/validators"
	"github.com/MKhiriev/go-paper-cloud/models"
)

func newAuthService(serverAdapter adapter.ServerAdapter, sess *session.Session) ClientAuthService {
	return NewClientAuthService(serverAdapter, crypto.NewKeyChainService(), sess,
		validators.NewClientInputValidator(0), logger.Nop())
}

func TestClientAuthService_Register_BuildsKeyHierarchy(t *testing.T) {
	acc := registerAccount(t)
	p := acc.payload
	keys := crypto.NewKeyChainService()

	assert.Equal(t, testEmail, p.Email)

	salt, err := crypto.DecodeBytes(p.Salt)
	require.NoError(t, err)
	require.Len(t, salt, crypto.SaltSize)

	kek, err := keys.DeriveKey(testPassword, salt)
	require.NoError(t, err)

	encMaster, err := crypto.DecodeEnvelope(p.EncryptedMasterKey)
	require.NoError(t, err)
	master, err := keys.UnwrapKey(encMaster, kek)
	require.NoError(t, err)

	encPrivate, err := crypto.DecodeEnvelope(p.EncryptedPrivateKey)
	require.NoError(t, err)
	private, err := keys.UnwrapKey(encPrivate, master)
	require.NoError(t, err)

	public, err := crypto.DecodeBytes(p.PublicKey)
	require.NoError(t, err)
	assert.NoError(t, checkKeyPair(public, private))
	assert.Equal(t, keys.VerificationID(public), p.VerificationID)

	// ключ восстановления открывает мастер-ключ
	encRecovery, err := crypto.DecodeEnvelope(p.EncryptedRecoveryKey)
	require.NoError(t, err)
	recovery, err := keys.UnwrapKey(encRecovery, master)
	require.NoError(t, err)
	assert.Equal(t, crypto.EncodeBytes(recovery), acc.recoveryKey)

	auth := newAuthService(nil, session.New(nil))
	recovered, err := auth.RecoverMasterKey(acc.recoveryKey, p.MasterKeyEncryptedWithRecoveryKey)
	require.NoError(t, err)
	assert.Equal(t, master, recovered)
}

func TestClientAuthService_Register_NoPasswordOnTheWire(t *testing.T) {
	p := registerAccount(t).payload
	for _, field := range []string{p.Salt, p.PublicKey, p.EncryptedMasterKey, p.EncryptedPrivateKey,
		p.EncryptedRecoveryKey, p.MasterKeyEncryptedWithRecoveryKey, p.VerificationID} {
		assert.NotContains(t, field, testPassword)
	}
}

func TestClientAuthService_Register_InvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	serverAdapter := mock.NewMockServerAdapter(ctrl)
	serverAdapter.EXPECT().Register(gomock.Any(), gomock.Any()).Times(0)

	auth := newAuthService(serverAdapter, session.New(nil))
	_, err := auth.Register(context.Background(), models.RegisterInput{Email: "not-an-email", Password: testPassword})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
	assert.ErrorIs(t, err, validators.ErrInvalidEmail)
}

func TestClientAuthService_Register_AccountExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	serverAdapter := mock.NewMockServerAdapter(ctrl)
	serverAdapter.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		Return(adapterErr("register", adapter.ErrConflict, app.MsgAccountAlreadyExists))

	auth := newAuthService(serverAdapter, session.New(nil))
	_, err := auth.Register(context.Background(), models.RegisterInput{Email: testEmail, Password: testPassword})
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestClientAuthService_Register_CancelledDuringDerivation(t *testing.T) {
	ctrl := gomock.NewController(t)
	keys := mock.NewMockKeyChainService(ctrl)
	serverAdapter := mock.NewMockServerAdapter(ctrl)

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	keys.EXPECT().GenerateSalt().Return(make([]byte, crypto.SaltSize), nil)
	keys.EXPECT().DeriveKey(testPassword, gomock.Any()).DoAndReturn(func(string, []byte) ([]byte, error) {
		<-release
		return make([]byte, crypto.KeySize), nil
	})

	auth := NewClientAuthService(serverAdapter, keys, session.New(nil), validators.NewClientInputValidator(0), logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// no key is generated and nothing is sent once the caller gave up
	_, err := auth.Register(ctx, models.RegisterInput{Email: testEmail, Password: testPassword})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientAuthService_BeginLogin(t *testing.T) {
	auth := newAuthService(nil, session.New(nil))

	flow, err := auth.BeginLogin(testEmail)
	require.NoError(t, err)
	assert.Equal(t, LoginStateIdle, flow.State())
	assert.Equal(t, testEmail, flow.Email())

	_, err = auth.BeginLogin("")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestClientAuthService_RefreshTokens(t *testing.T) {
	refreshed := models.SessionTokens{
		AccessToken:           "access-2",
		AccessTokenExpiryTime: time.Now().Add(2 * time.Hour),
	}

	tests := []struct {
		name       string
		result     models.SessionTokens
		err        error
		wantErr    error
		wantAccess string
		wantAlive  bool
	}{
		{
			name:       "rotates access token and keeps refresh token",
			result:     refreshed,
			wantAccess: "access-2",
			wantAlive:  true,
		},
		{
			name:      "rejected refresh token ends the session",
			err:       adapterErr("refresh token", adapter.ErrUnauthorized, app.MsgTokenIsExpiredOrInvalid),
			wantErr:   ErrSessionInvalidated,
			wantAlive: false,
		},
		{
			name:       "network error keeps the session",
			err:        adapterErr("refresh token request", adapter.ErrNetwork, "connection refused"),
			wantErr:    adapter.ErrNetwork,
			wantAccess: "access",
			wantAlive:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			serverAdapter := mock.NewMockServerAdapter(ctrl)
			serverAdapter.EXPECT().RefreshToken(gomock.Any(), "refresh").Return(tt.result, tt.err)

			sess, _ := authenticatedSession(t)
			auth := newAuthService(serverAdapter, sess)

			err := auth.RefreshTokens(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantAlive, sess.IsAuthenticated())
			if tt.wantAlive {
				assert.Equal(t, tt.wantAccess, sess.AccessToken())
				assert.Equal(t, "refresh", sess.Tokens().RefreshToken)
			}
		})
	}
}

func TestClientAuthService_RefreshTokens_NotAuthenticated(t *testing.T) {
	auth := newAuthService(nil, session.New(nil))
	assert.ErrorIs(t, auth.RefreshTokens(context.Background()), ErrNotAuthenticated)
}

func TestClientAuthService_Logout(t *testing.T) {
	sess, _ := authenticatedSession(t)
	auth := newAuthService(nil, sess)

	auth.Logout(context.Background())

	assert.False(t, sess.IsAuthenticated())
	assert.ErrorIs(t, sess.Err(), session.ErrLoggedOut)
	_, err := sess.MasterKey()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestClientAuthService_RecoverMasterKey_WrongKey(t *testing.T) {
	acc := registerAccount(t)
	auth := newAuthService(nil, session.New(nil))

	_, err := auth.RecoverMasterKey(crypto.EncodeBytes(randomKey(t)), acc.payload.MasterKeyEncryptedWithRecoveryKey)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.ErrorIs(t, err, crypto.ErrAuthentication)

	_, err = auth.RecoverMasterKey("%%%", acc.payload.MasterKeyEncryptedWithRecoveryKey)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrAccessDenied))
}
