// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package testserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-paper-cloud/internal/app"
	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
	"github.com/MKhiriev/go-paper-cloud/internal/utils"
	"github.com/MKhiriev/go-paper-cloud/models"
)

const testEmail = "alice@example.com"

type testClient struct {
	t  *testing.T
	ts *httptest.Server
}

func newTestClient(t *testing.T, s *Server) *testClient {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testClient{t: t, ts: ts}
}

func (c *testClient) do(method, path, token string, body any) (int, []byte) {
	c.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.ts.URL+path, reader)
	require.NoError(c.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.ts.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, raw
}

type testAccount struct {
	pub, priv []byte
	payload   models.RegistrationPayload
}

func newTestAccount(t *testing.T) testAccount {
	t.Helper()
	pub, priv, err := crypto.NewKeyChainService().GenerateKeyPair()
	require.NoError(t, err)
	return testAccount{
		pub:  pub,
		priv: priv,
		payload: models.RegistrationPayload{
			Email:               testEmail,
			Salt:                crypto.EncodeBytes(make([]byte, crypto.SaltSize)),
			PublicKey:           crypto.EncodeBytes(pub),
			EncryptedMasterKey:  "bWFzdGVy",
			EncryptedPrivateKey: "cHJpdmF0ZQ==",
		},
	}
}

// login runs the whole handshake and returns the issued tokens.
func login(t *testing.T, s *Server, c *testClient, acc testAccount) models.SessionTokens {
	t.Helper()

	status, _ := c.do(http.MethodPost, "/request-ott", "", models.OTTRequest{Email: testEmail})
	require.Equal(t, http.StatusAccepted, status)

	ott, ok := s.LastOTT(testEmail)
	require.True(t, ok)

	status, body := c.do(http.MethodPost, "/verify-ott", "", models.VerifyOTTRequest{Email: testEmail, OTT: ott})
	require.Equal(t, http.StatusOK, status)

	var ch models.LoginChallenge
	require.NoError(t, json.Unmarshal(body, &ch))

	sealed, err := crypto.DecodeBytes(ch.EncryptedChallenge)
	require.NoError(t, err)
	plain, err := crypto.OpenSealed(sealed, acc.priv)
	require.NoError(t, err)

	status, body = c.do(http.MethodPost, "/complete-login", "", models.CompleteLoginRequest{
		Email: testEmail, ChallengeID: ch.ChallengeID, DecryptedData: crypto.EncodeBytes(plain),
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var tokens models.SessionTokens
	require.NoError(t, json.Unmarshal(body, &tokens))
	return tokens
}

func TestServer_Register(t *testing.T) {
	s := New()
	c := newTestClient(t, s)
	acc := newTestAccount(t)

	status, _ := c.do(http.MethodPost, "/register", "", acc.payload)
	assert.Equal(t, http.StatusCreated, status)

	status, body := c.do(http.MethodPost, "/register", "", acc.payload)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, app.MsgAccountAlreadyExists, string(body))

	bad := acc.payload
	bad.Email = "bob@example.com"
	bad.PublicKey = "c2hvcnQ="
	status, body = c.do(http.MethodPost, "/register", "", bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, app.MsgInvalidDataProvided, string(body))

	stored, ok := s.Registration(testEmail)
	require.True(t, ok)
	assert.Equal(t, acc.payload, stored)
}

func TestServer_RequestOTT_UnknownAccount(t *testing.T) {
	c := newTestClient(t, New())

	status, body := c.do(http.MethodPost, "/request-ott", "", models.OTTRequest{Email: "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, app.MsgAccountNotFound, string(body))
}

func TestServer_VerifyOTT_WrongCode(t *testing.T) {
	s := New()
	c := newTestClient(t, s)
	acc := newTestAccount(t)
	c.do(http.MethodPost, "/register", "", acc.payload)
	c.do(http.MethodPost, "/request-ott", "", models.OTTRequest{Email: testEmail})

	status, body := c.do(http.MethodPost, "/verify-ott", "", models.VerifyOTTRequest{Email: testEmail, OTT: "not-a-code"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, app.MsgInvalidOTT, string(body))

	// код остаётся действительным после неверной попытки
	_, ok := s.LastOTT(testEmail)
	assert.True(t, ok)
}

func TestServer_LoginAndChallengeReplay(t *testing.T) {
	s := New()
	c := newTestClient(t, s)
	acc := newTestAccount(t)
	c.do(http.MethodPost, "/register", "", acc.payload)

	c.do(http.MethodPost, "/request-ott", "", models.OTTRequest{Email: testEmail})
	ott, _ := s.LastOTT(testEmail)
	_, body := c.do(http.MethodPost, "/verify-ott", "", models.VerifyOTTRequest{Email: testEmail, OTT: ott})

	var ch models.LoginChallenge
	require.NoError(t, json.Unmarshal(body, &ch))
	assert.Equal(t, acc.payload.Salt, ch.Salt)
	assert.Equal(t, acc.payload.EncryptedMasterKey, ch.EncryptedMasterKey)

	sealed, _ := crypto.DecodeBytes(ch.EncryptedChallenge)
	plain, err := crypto.OpenSealed(sealed, acc.priv)
	require.NoError(t, err)
	req := models.CompleteLoginRequest{Email: testEmail, ChallengeID: ch.ChallengeID, DecryptedData: crypto.EncodeBytes(plain)}

	status, body := c.do(http.MethodPost, "/complete-login", "", req)
	require.Equal(t, http.StatusOK, status)

	var tokens models.SessionTokens
	require.NoError(t, json.Unmarshal(body, &tokens))
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.True(t, tokens.AccessTokenExpiryTime.After(time.Now()))

	status, body = c.do(http.MethodPost, "/complete-login", "", req)
	assert.Equal(t, http.StatusGone, status)
	assert.Equal(t, app.MsgChallengeAlreadyUsed, string(body))
}

func TestServer_CompleteLogin_Mismatch(t *testing.T) {
	s := New()
	c := newTestClient(t, s)
	acc := newTestAccount(t)
	c.do(http.MethodPost, "/register", "", acc.payload)

	c.do(http.MethodPost, "/request-ott", "", models.OTTRequest{Email: testEmail})
	ott, _ := s.LastOTT(testEmail)
	_, body := c.do(http.MethodPost, "/verify-ott", "", models.VerifyOTTRequest{Email: testEmail, OTT: ott})

	var ch models.LoginChallenge
	require.NoError(t, json.Unmarshal(body, &ch))

	status, body := c.do(http.MethodPost, "/complete-login", "", models.CompleteLoginRequest{
		Email: testEmail, ChallengeID: ch.ChallengeID, DecryptedData: crypto.EncodeBytes(make([]byte, challengeSize)),
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, app.MsgChallengeMismatch, string(body))
}

func TestServer_CompleteLogin_Expired(t *testing.T) {
	start := time.Now()
	var skew atomic.Int64
	s := New(WithClock(func() time.Time { return start.Add(time.Duration(skew.Load())) }), WithChallengeTTL(time.Minute))
	c := newTestClient(t, s)
	acc := newTestAccount(t)
	c.do(http.MethodPost, "/register", "", acc.payload)

	c.do(http.MethodPost, "/request-ott", "", models.OTTRequest{Email: testEmail})
	ott, _ := s.LastOTT(testEmail)
	_, body := c.do(http.MethodPost, "/verify-ott", "", models.VerifyOTTRequest{Email: testEmail, OTT: ott})

	var ch models.LoginChallenge
	require.NoError(t, json.Unmarshal(body, &ch))

	skew.Store(int64(2 * time.Minute))

	status, body := c.do(http.MethodPost, "/complete-login", "", models.CompleteLoginRequest{
		Email: testEmail, ChallengeID: ch.ChallengeID, DecryptedData: "AAAA",
	})
	assert.Equal(t, http.StatusGone, status)
	assert.Equal(t, app.MsgChallengeExpired, string(body))
}

func TestServer_RefreshToken(t *testing.T) {
	s := New()
	c := newTestClient(t, s)
	acc := newTestAccount(t)
	c.do(http.MethodPost, "/register", "", acc.payload)
	tokens := login(t, s, c, acc)

	status, body := c.do(http.MethodPost, "/token/refresh", "", models.RefreshRequest{Value: tokens.RefreshToken})
	require.Equal(t, http.StatusOK, status)

	var refreshed models.SessionTokens
	require.NoError(t, json.Unmarshal(body, &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)

	// access token is not accepted as a refresh token
	status, body = c.do(http.MethodPost, "/token/refresh", "", models.RefreshRequest{Value: tokens.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, app.MsgTokenIsExpiredOrInvalid, string(body))
}

func TestServer_AuthMiddleware(t *testing.T) {
	s := New()
	c := newTestClient(t, s)
	acc := newTestAccount(t)
	c.do(http.MethodPost, "/register", "", acc.payload)
	tokens := login(t, s, c, acc)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "no token", token: "", status: http.StatusUnauthorized},
		{name: "garbage", token: "abc.def.ghi", status: http.StatusUnauthorized},
		{name: "refresh token", token: tokens.RefreshToken, status: http.StatusUnauthorized},
		{name: "access token", token: tokens.AccessToken, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := c.do(http.MethodGet, "/collections", tt.token, nil)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestServer_CollectionsAndFiles(t *testing.T) {
	s := New()
	c := newTestClient(t, s)
	acc := newTestAccount(t)
	c.do(http.MethodPost, "/register", "", acc.payload)
	token := login(t, s, c, acc).AccessToken

	status, body := c.do(http.MethodPost, "/collections", token, models.Collection{
		Type: models.CollectionTypeFolder, EncryptedName: "bmFtZQ==", EncryptedCollectionKey: "a2V5",
	})
	require.Equal(t, http.StatusCreated, status)
	var col models.Collection
	require.NoError(t, json.Unmarshal(body, &col))
	assert.True(t, utils.IsUUID(col.ID))
	assert.False(t, col.CreatedAt.IsZero())

	status, body = c.do(http.MethodPut, "/collections/"+col.ID, token, models.Collection{EncryptedName: "cmVuYW1lZA=="})
	require.Equal(t, http.StatusOK, status)
	var updated models.Collection
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "cmVuYW1lZA==", updated.EncryptedName)
	assert.Equal(t, col.EncryptedCollectionKey, updated.EncryptedCollectionKey)

	blob := bytes.Repeat([]byte{7}, 64)
	record := models.FileRecord{
		CollectionID:      col.ID,
		EncryptedFileKey:  "a2V5",
		EncryptedMetadata: "bWV0YQ==",
		EncryptionVersion: models.EncryptionVersionV1,
		ContentHash:       utils.ContentHash(blob),
		EncryptedSize:     int64(len(blob)),
	}
	status, body = c.do(http.MethodPost, "/files", token, record)
	require.Equal(t, http.StatusCreated, status)
	require.NoError(t, json.Unmarshal(body, &record))
	require.NotEmpty(t, record.ID)

	status, body = c.do(http.MethodGet, "/files/"+record.ID+"/data", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, app.MsgFileDataMissing, string(body))

	status, body = c.do(http.MethodPost, "/files/"+record.ID+"/data", token, []byte("wrong"))
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	status, _ = c.do(http.MethodPost, "/files/"+record.ID+"/data", token, blob)
	require.Equal(t, http.StatusNoContent, status)

	status, body = c.do(http.MethodPost, "/files/"+record.ID+"/data", token, blob)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, app.MsgFileDataExists, string(body))

	status, body = c.do(http.MethodGet, "/files/"+record.ID+"/data", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, blob, body)

	status, body = c.do(http.MethodGet, "/collections/"+col.ID+"/files", token, nil)
	require.Equal(t, http.StatusOK, status)
	var records []models.FileRecord
	require.NoError(t, json.Unmarshal(body, &records))
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)

	status, _ = c.do(http.MethodDelete, "/collections/"+col.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, 0, s.FileCount())

	status, body = c.do(http.MethodGet, "/collections/"+col.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, app.MsgCollectionNotFound, string(body))
}

func TestServer_FileInUnknownCollection(t *testing.T) {
	s := New()
	c := newTestClient(t, s)
	acc := newTestAccount(t)
	c.do(http.MethodPost, "/register", "", acc.payload)
	token := login(t, s, c, acc).AccessToken

	status, body := c.do(http.MethodPost, "/files", token, models.FileRecord{
		CollectionID:      "missing",
		EncryptedFileKey:  "a2V5",
		EncryptedMetadata: "bWV0YQ==",
		EncryptionVersion: models.EncryptionVersionV1,
		ContentHash:       strings.Repeat("0", 64),
		EncryptedSize:     64,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, app.MsgCollectionNotFound, string(body))
}

func TestServer_FailureQueues(t *testing.T) {
	s := New()
	c := newTestClient(t, s)
	acc := newTestAccount(t)
	c.do(http.MethodPost, "/register", "", acc.payload)
	token := login(t, s, c, acc).AccessToken

	s.FailNextUpload(http.StatusServiceUnavailable)
	status, _ := c.do(http.MethodPost, "/files/anything/data", token, []byte("x"))
	assert.Equal(t, http.StatusServiceUnavailable, status)

	// second upload is no longer forced to fail
	status, _ = c.do(http.MethodPost, "/files/anything/data", token, []byte("x"))
	assert.Equal(t, http.StatusNotFound, status)

	s.FailNextDelete(http.StatusInternalServerError)
	status, _ = c.do(http.MethodDelete, "/files/anything", token, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestServer_RequestIDEchoed(t *testing.T) {
	ts := httptest.NewServer(New().Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/collections", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "req-42")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-42", resp.Header.Get(requestIDHeader))
}

func TestServer_RevokeTokens(t *testing.T) {
	s := New()
	c := newTestClient(t, s)
	acc := newTestAccount(t)
	c.do(http.MethodPost, "/register", "", acc.payload)
	tokens := login(t, s, c, acc)

	s.RevokeTokens()

	status, _ := c.do(http.MethodGet, "/collections", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = c.do(http.MethodPost, "/token/refresh", "", models.RefreshRequest{Value: tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)
}
