// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package testserver

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-paper-cloud/internal/app"
	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/utils"
	"github.com/MKhiriev/go-paper-cloud/models"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var payload models.RegistrationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Err(err).Str("func", "*Server.register").Msg("invalid JSON was passed")
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}
	if !validRegistration(payload) {
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[payload.Email]; exists {
		utils.WriteError(w, app.MsgAccountAlreadyExists, http.StatusConflict)
		return
	}
	s.accounts[payload.Email] = &account{registration: payload, createdAt: s.now()}

	log.Info().Str("email", logger.CensorEmail(payload.Email)).Msg("account registered")
	w.WriteHeader(http.StatusCreated)
}

func validRegistration(p models.RegistrationPayload) bool {
	if p.Email == "" || p.Salt == "" || p.EncryptedMasterKey == "" || p.EncryptedPrivateKey == "" {
		return false
	}
	pub, err := crypto.DecodeBytes(p.PublicKey)
	return err == nil && len(pub) == crypto.PublicKeySize
}

func (s *Server) requestOTT(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req models.OTTRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	ott, err := newOTT()
	if err != nil {
		log.Err(err).Str("func", "*Server.requestOTT").Msg("error generating one-time token")
		utils.WriteError(w, app.MsgInternalServerError, http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	_, exists := s.accounts[req.Email]
	if exists {
		s.otts[req.Email] = ott
	}
	s.mu.Unlock()

	if !exists {
		utils.WriteError(w, app.MsgAccountNotFound, http.StatusNotFound)
		return
	}

	if s.deliverOTT != nil {
		s.deliverOTT(req.Email, ott)
	}
	log.Debug().Str("email", logger.CensorEmail(req.Email)).Msg("one-time token issued")
	_, _ = utils.WriteJSON(w, models.MessageResponse{Message: "one-time token sent"}, http.StatusAccepted)
}

func (s *Server) verifyOTT(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req models.VerifyOTTRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, exists := s.accounts[req.Email]
	if !exists {
		utils.WriteError(w, app.MsgAccountNotFound, http.StatusNotFound)
		return
	}
	want, issued := s.otts[req.Email]
	if !issued || subtle.ConstantTimeCompare([]byte(want), []byte(req.OTT)) != 1 {
		utils.WriteError(w, app.MsgInvalidOTT, http.StatusBadRequest)
		return
	}
	delete(s.otts, req.Email)

	pub, err := crypto.DecodeBytes(acc.registration.PublicKey)
	if err != nil {
		log.Err(err).Str("func", "*Server.verifyOTT").Msg("stored public key is not decodable")
		utils.WriteError(w, app.MsgInternalServerError, http.StatusInternalServerError)
		return
	}

	plain := make([]byte, challengeSize)
	if _, err = rand.Read(plain); err != nil {
		utils.WriteError(w, app.MsgInternalServerError, http.StatusInternalServerError)
		return
	}
	sealed, err := crypto.SealTo(plain, pub)
	if err != nil {
		log.Err(err).Str("func", "*Server.verifyOTT").Msg("error sealing challenge")
		utils.WriteError(w, app.MsgInternalServerError, http.StatusInternalServerError)
		return
	}

	c := &challenge{
		id:        s.ids.Generate(),
		email:     req.Email,
		plain:     plain,
		expiresAt: s.now().Add(s.challengeTTL),
	}
	s.challenges[c.id] = c

	_, _ = utils.WriteJSON(w, models.LoginChallenge{
		ChallengeID:         c.id,
		Salt:                acc.registration.Salt,
		PublicKey:           acc.registration.PublicKey,
		EncryptedMasterKey:  acc.registration.EncryptedMasterKey,
		EncryptedPrivateKey: acc.registration.EncryptedPrivateKey,
		EncryptedChallenge:  crypto.EncodeBytes(sealed),
	}, http.StatusOK)
}

func (s *Server) completeLogin(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req models.CompleteLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChallengeID == "" {
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	c, ok := s.challenges[req.ChallengeID]
	if !ok || c.email != req.Email {
		s.mu.Unlock()
		utils.WriteError(w, app.MsgChallengeExpired, http.StatusGone)
		return
	}
	if c.used {
		s.mu.Unlock()
		utils.WriteError(w, app.MsgChallengeAlreadyUsed, http.StatusGone)
		return
	}
	// одна попытка на challenge, даже неудачная
	c.used = true
	expired := s.now().After(c.expiresAt)
	plain := c.plain
	s.mu.Unlock()

	if expired {
		utils.WriteError(w, app.MsgChallengeExpired, http.StatusGone)
		return
	}

	got, err := crypto.DecodeBytes(req.DecryptedData)
	if err != nil || subtle.ConstantTimeCompare(got, plain) != 1 {
		log.Warn().Str("email", logger.CensorEmail(req.Email)).Msg("challenge mismatch")
		utils.WriteError(w, app.MsgChallengeMismatch, http.StatusUnauthorized)
		return
	}

	tokens, err := s.issueTokens(req.Email)
	if err != nil {
		log.Err(err).Str("func", "*Server.completeLogin").Msg("error issuing tokens")
		utils.WriteError(w, app.MsgInternalServerError, http.StatusInternalServerError)
		return
	}

	log.Info().Str("email", logger.CensorEmail(req.Email)).Msg("login completed")
	_, _ = utils.WriteJSON(w, tokens, http.StatusOK)
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == "" {
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	claims, err := utils.ValidateAndParseJWTToken(req.Value, s.currentSignKey(), s.issuer, models.TokenKindRefresh)
	if err != nil {
		log.Err(err).Str("func", "*Server.refreshToken").Msg("rejected refresh token")
		utils.WriteError(w, app.MsgTokenIsExpiredOrInvalid, http.StatusUnauthorized)
		return
	}

	tokens, err := s.issueTokens(claims.Subject)
	if err != nil {
		log.Err(err).Str("func", "*Server.refreshToken").Msg("error issuing tokens")
		utils.WriteError(w, app.MsgInternalServerError, http.StatusInternalServerError)
		return
	}
	_, _ = utils.WriteJSON(w, tokens, http.StatusOK)
}

func (s *Server) issueTokens(email string) (models.SessionTokens, error) {
	signKey := s.currentSignKey()

	access, accessExp, err := utils.GenerateJWTToken(s.issuer, email, models.TokenKindAccess, s.accessTTL, signKey)
	if err != nil {
		return models.SessionTokens{}, err
	}
	refresh, refreshExp, err := utils.GenerateJWTToken(s.issuer, email, models.TokenKindRefresh, s.refreshTTL, signKey)
	if err != nil {
		return models.SessionTokens{}, err
	}
	return models.SessionTokens{
		AccessToken:            access,
		AccessTokenExpiryTime:  accessExp,
		RefreshToken:           refresh,
		RefreshTokenExpiryTime: refreshExp,
	}, nil
}
