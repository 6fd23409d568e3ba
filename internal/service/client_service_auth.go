// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-paper-cloud/internal/adapter"
	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/session"
	"github.com/MKhiriev/go-paper-cloud/internal/validators"
	"github.com/MKhiriev/go-paper-cloud/models"
)

type clientAuthService struct {
	adapter   adapter.ServerAdapter
	keys      crypto.KeyChainService
	session   *session.Session
	validator validators.Validator
	logger    *logger.Logger
}

func NewClientAuthService(serverAdapter adapter.ServerAdapter, keys crypto.KeyChainService, sess *session.Session, validator validators.Validator, log *logger.Logger) ClientAuthService {
	return &clientAuthService{
		adapter:   serverAdapter,
		keys:      keys,
		session:   sess,
		validator: validator,
		logger:    log,
	}
}

func (a *clientAuthService) Register(ctx context.Context, input models.RegisterInput) (models.RegisterResult, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, input); err != nil {
		return models.RegisterResult{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	salt, err := a.keys.GenerateSalt()
	if err != nil {
		return models.RegisterResult{}, fmt.Errorf("error generating salt: %w", err)
	}

	kek, err := deriveKey(ctx, a.keys, input.Password, salt)
	if err != nil {
		return models.RegisterResult{}, err
	}
	defer crypto.Wipe(kek)

	masterKey, err := a.keys.NewMasterKey()
	if err != nil {
		return models.RegisterResult{}, fmt.Errorf("error generating master key: %w", err)
	}
	defer crypto.Wipe(masterKey)

	publicKey, privateKey, err := a.keys.GenerateKeyPair()
	if err != nil {
		return models.RegisterResult{}, fmt.Errorf("error generating key pair: %w", err)
	}
	defer crypto.Wipe(privateKey)

	recoveryKey, err := a.keys.NewRecoveryKey()
	if err != nil {
		return models.RegisterResult{}, fmt.Errorf("error generating recovery key: %w", err)
	}
	defer crypto.Wipe(recoveryKey)

	// KEK -> master -> (private, recovery); recovery -> master
	wraps := []struct{ child, parent []byte }{
		{child: masterKey, parent: kek},
		{child: privateKey, parent: masterKey},
		{child: recoveryKey, parent: masterKey},
		{child: masterKey, parent: recoveryKey},
	}
	encoded := make([]string, len(wraps))
	for i, w := range wraps {
		env, err := a.keys.WrapKey(w.child, w.parent)
		if err != nil {
			return models.RegisterResult{}, fmt.Errorf("error wrapping key: %w", err)
		}
		encoded[i] = env.Encode()
	}

	verificationID := a.keys.VerificationID(publicKey)
	payload := models.RegistrationPayload{
		Email:                             input.Email,
		FirstName:                         input.FirstName,
		LastName:                          input.LastName,
		Timezone:                          input.Timezone,
		Salt:                              crypto.EncodeBytes(salt),
		PublicKey:                         crypto.EncodeBytes(publicKey),
		EncryptedMasterKey:                encoded[0],
		EncryptedPrivateKey:               encoded[1],
		EncryptedRecoveryKey:              encoded[2],
		MasterKeyEncryptedWithRecoveryKey: encoded[3],
		VerificationID:                    verificationID,
	}

	if err = a.adapter.Register(ctx, payload); err != nil {
		log.Err(err).
			Str("func", "clientAuthService.Register").
			Str("email", logger.CensorEmail(input.Email)).
			Msg("server rejected registration")
		return models.RegisterResult{}, mapAdapterError(err)
	}

	log.Info().
		Str("func", "clientAuthService.Register").
		Str("email", logger.CensorEmail(input.Email)).
		Str("verification_id", verificationID).
		Msg("account registered")

	return models.RegisterResult{
		RecoveryKey:    crypto.EncodeBytes(recoveryKey),
		VerificationID: verificationID,
	}, nil
}

func (a *clientAuthService) BeginLogin(email string) (*LoginFlow, error) {
	if err := a.validator.Validate(context.Background(), models.OTTRequest{Email: email}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return newLoginFlow(email, a.adapter, a.keys, a.session, a.logger), nil
}

func (a *clientAuthService) RefreshTokens(ctx context.Context) error {
	log := logger.FromContext(ctx)

	current := a.session.Tokens()
	if !a.session.IsAuthenticated() || current.RefreshToken == "" {
		return ErrNotAuthenticated
	}

	tokens, err := a.adapter.RefreshToken(ctx, current.RefreshToken)
	if err != nil {
		if errors.Is(err, adapter.ErrUnauthorized) || errors.Is(err, adapter.ErrForbidden) {
			a.session.Invalidate(ErrSessionInvalidated)
			return fmt.Errorf("%w: %w", ErrSessionInvalidated, err)
		}
		log.Err(err).Str("func", "clientAuthService.RefreshTokens").Msg("token refresh failed")
		return mapAdapterError(err)
	}

	// the server may keep the refresh token and only rotate the access token
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = current.RefreshToken
		tokens.RefreshTokenExpiryTime = current.RefreshTokenExpiryTime
	}
	a.session.SetTokens(tokens)

	log.Debug().
		Str("func", "clientAuthService.RefreshTokens").
		Time("access_expires_at", tokens.AccessTokenExpiryTime).
		Msg("tokens refreshed")
	return nil
}

func (a *clientAuthService) Logout(ctx context.Context) {
	logger.FromContext(ctx).Info().
		Str("func", "clientAuthService.Logout").
		Str("email", logger.CensorEmail(a.session.Email())).
		Msg("logging out")
	a.session.Logout()
}

func (a *clientAuthService) RecoverMasterKey(recoveryKey, masterKeyEncryptedWithRecoveryKey string) ([]byte, error) {
	key, err := crypto.DecodeBytes(recoveryKey)
	if err != nil {
		return nil, fmt.Errorf("decode recovery key: %w", err)
	}
	defer crypto.Wipe(key)

	wrapped, err := crypto.DecodeEnvelope(masterKeyEncryptedWithRecoveryKey)
	if err != nil {
		return nil, fmt.Errorf("decode wrapped master key: %w", err)
	}

	masterKey, err := a.keys.UnwrapKey(wrapped, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAccessDenied, err)
	}
	return masterKey, nil
}

// deriveKey runs the KDF off the caller's goroutine. When ctx ends first the
// result is abandoned and wiped as soon as it arrives.
func deriveKey(ctx context.Context, keys crypto.KeyChainService, password string, salt []byte) ([]byte, error) {
	type result struct {
		key []byte
		err error
	}

	done := make(chan result, 1)
	go func() {
		key, err := keys.DeriveKey(password, salt)
		done <- result{key: key, err: err}
	}()

	select {
	case r := <-done:
		return r.key, r.err
	case <-ctx.Done():
		go func() {
			r := <-done
			crypto.Wipe(r.key)
		}()
		return nil, ctx.Err()
	}
}
