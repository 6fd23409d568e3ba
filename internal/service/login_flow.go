// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/curve25519"

	"github.com/MKhiriev/go-paper-cloud/internal/adapter"
	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/session"
	"github.com/MKhiriev/go-paper-cloud/models"
)

// LoginState is the position of a [LoginFlow] in the login sequence.
type LoginState int

const (
	LoginStateIdle LoginState = iota
	LoginStateOTTRequested
	LoginStateOTTVerified
	LoginStatePasswordSubmitted
	LoginStateAuthenticated
	LoginStateFailed
)

func (s LoginState) String() string {
	switch s {
	case LoginStateIdle:
		return "idle"
	case LoginStateOTTRequested:
		return "ott_requested"
	case LoginStateOTTVerified:
		return "ott_verified"
	case LoginStatePasswordSubmitted:
		return "password_submitted"
	case LoginStateAuthenticated:
		return "authenticated"
	case LoginStateFailed:
		return "failed"
	default:
		return fmt.Sprintf("LoginState(%d)", int(s))
	}
}

// LoginFlow is one login attempt: request a one-time token, verify it to
// obtain a challenge, then prove knowledge of the password by opening the
// challenge. A flow that reached Authenticated or Failed cannot be reused.
type LoginFlow struct {
	mu        sync.Mutex
	email     string
	state     LoginState
	challenge models.LoginChallenge

	adapter adapter.ServerAdapter
	keys    crypto.KeyChainService
	session *session.Session
	logger  *logger.Logger
}

func newLoginFlow(email string, serverAdapter adapter.ServerAdapter, keys crypto.KeyChainService, sess *session.Session, log *logger.Logger) *LoginFlow {
	if log == nil {
		log = logger.Nop()
	}
	return &LoginFlow{
		email:   email,
		state:   LoginStateIdle,
		adapter: serverAdapter,
		keys:    keys,
		session: sess,
		logger:  log,
	}
}

// State returns the current state.
func (f *LoginFlow) State() LoginState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Email returns the account the flow logs into.
func (f *LoginFlow) Email() string {
	return f.email
}

// RequestOneTimeToken asks the server to send a one-time token to the
// account's email. It may be repeated until the token is verified.
func (f *LoginFlow) RequestOneTimeToken(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(LoginStateIdle, LoginStateOTTRequested); err != nil {
		return err
	}

	if err := f.adapter.RequestOTT(ctx, f.email); err != nil {
		f.logger.Err(err).
			Str("func", "LoginFlow.RequestOneTimeToken").
			Str("email", logger.CensorEmail(f.email)).
			Msg("failed to request one-time token")
		return mapAdapterError(err)
	}

	f.state = LoginStateOTTRequested
	return nil
}

// VerifyOneTimeToken exchanges the code for a login challenge. A rejected
// code leaves the flow in OTTRequested so the user can retry.
func (f *LoginFlow) VerifyOneTimeToken(ctx context.Context, code string) (models.LoginChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(LoginStateOTTRequested); err != nil {
		return models.LoginChallenge{}, err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return models.LoginChallenge{}, ErrInvalidOTT
	}

	challenge, err := f.adapter.VerifyOTT(ctx, f.email, code)
	if err != nil {
		f.logger.Err(err).
			Str("func", "LoginFlow.VerifyOneTimeToken").
			Str("email", logger.CensorEmail(f.email)).
			Msg("one-time token rejected")
		return models.LoginChallenge{}, mapAdapterError(err)
	}

	if challenge.ChallengeID == "" || challenge.Salt == "" || challenge.EncryptedMasterKey == "" ||
		challenge.EncryptedPrivateKey == "" || challenge.EncryptedChallenge == "" || challenge.PublicKey == "" {
		f.state = LoginStateFailed
		return models.LoginChallenge{}, fmt.Errorf("%w: incomplete login challenge", crypto.ErrFormat)
	}

	f.challenge = challenge
	f.state = LoginStateOTTVerified
	return challenge, nil
}

// CompleteLogin derives the key-encryption key from password, unwraps the
// master and private keys, opens the challenge and submits it. On success
// the keys and tokens move into the session.
//
// A wrong password is detected locally and no request is sent. Any failure
// is final: a new flow is needed for another attempt.
func (f *LoginFlow) CompleteLogin(ctx context.Context, password string) (models.SessionTokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(LoginStateOTTVerified); err != nil {
		return models.SessionTokens{}, err
	}
	f.state = LoginStatePasswordSubmitted

	challenge := f.challenge
	f.challenge = models.LoginChallenge{}

	tokens, err := f.completeLogin(ctx, challenge, password)
	if err != nil {
		f.state = LoginStateFailed
		f.logger.Warn().
			Err(err).
			Str("func", "LoginFlow.CompleteLogin").
			Str("email", logger.CensorEmail(f.email)).
			Msg("login failed")
		return models.SessionTokens{}, err
	}

	f.state = LoginStateAuthenticated
	f.logger.Info().
		Str("func", "LoginFlow.CompleteLogin").
		Str("email", logger.CensorEmail(f.email)).
		Msg("logged in")
	return tokens, nil
}

func (f *LoginFlow) completeLogin(ctx context.Context, ch models.LoginChallenge, password string) (models.SessionTokens, error) {
	salt, err := crypto.DecodeBytes(ch.Salt)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("decode salt: %w", err)
	}

	kek, err := deriveKey(ctx, f.keys, password, salt)
	if err != nil {
		return models.SessionTokens{}, err
	}
	defer crypto.Wipe(kek)

	encMaster, err := crypto.DecodeEnvelope(ch.EncryptedMasterKey)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("decode master key: %w", err)
	}
	masterKey, err := f.keys.UnwrapKey(encMaster, kek)
	if err != nil {
		if errors.Is(err, crypto.ErrAuthentication) {
			return models.SessionTokens{}, fmt.Errorf("%w: %w", ErrWrongPassword, err)
		}
		return models.SessionTokens{}, fmt.Errorf("unwrap master key: %w", err)
	}

	var privateKey, publicKey []byte
	handedOver := false
	defer func() {
		if !handedOver {
			crypto.Wipe(masterKey, privateKey)
		}
	}()

	encPrivate, err := crypto.DecodeEnvelope(ch.EncryptedPrivateKey)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("decode private key: %w", err)
	}
	privateKey, err = f.keys.UnwrapKey(encPrivate, masterKey)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("unwrap private key: %w", err)
	}

	publicKey, err = crypto.DecodeBytes(ch.PublicKey)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("decode public key: %w", err)
	}
	if err = checkKeyPair(publicKey, privateKey); err != nil {
		return models.SessionTokens{}, err
	}

	sealed, err := crypto.DecodeBytes(ch.EncryptedChallenge)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("decode challenge: %w", err)
	}
	plainChallenge, err := f.keys.OpenChallenge(sealed, privateKey)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("open challenge: %w", err)
	}
	defer crypto.Wipe(plainChallenge)

	if err = ctx.Err(); err != nil {
		return models.SessionTokens{}, err
	}

	tokens, err := f.adapter.CompleteLogin(ctx, models.CompleteLoginRequest{
		Email:         f.email,
		ChallengeID:   ch.ChallengeID,
		DecryptedData: crypto.EncodeBytes(plainChallenge),
	})
	if err != nil {
		return models.SessionTokens{}, mapAdapterError(err)
	}

	f.session.Authenticate(f.email, tokens, masterKey, privateKey, publicKey)
	handedOver = true

	return tokens, nil
}

// checkKeyPair verifies that privateKey is the scalar of publicKey.
func checkKeyPair(publicKey, privateKey []byte) error {
	derived, err := curve25519.X25519(privateKey, curve25519.Basepoint)
	if err != nil {
		return fmt.Errorf("%w: %w", crypto.ErrInvalidKey, err)
	}
	if subtle.ConstantTimeCompare(derived, publicKey) != 1 {
		return fmt.Errorf("%w: public key does not belong to the private key", ErrIntegrity)
	}
	return nil
}

func (f *LoginFlow) expect(allowed ...LoginState) error {
	for _, s := range allowed {
		if f.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidLoginState, f.state)
}
