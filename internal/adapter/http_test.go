// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-paper-cloud/internal/config"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/utils"
	"github.com/MKhiriev/go-paper-cloud/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	token       string
	invalidated atomic.Int32
}

func (f *fakeTokens) AccessToken() string  { return f.token }
func (f *fakeTokens) Invalidate(err error) { f.invalidated.Add(1) }

// newTestAdapter создаёт httpServerAdapter, направленный на тестовый сервер
func newTestAdapter(t *testing.T, serverURL string, tokens TokenSource) *httpServerAdapter {
	t.Helper()
	adapterCfg := config.ClientAdapter{
		HTTPAddress:      serverURL,
		RequestTimeout:   5 * time.Second,
		RetryCount:       2,
		RetryWaitTime:    time.Millisecond,
		RetryMaxWaitTime: 5 * time.Millisecond,
	}

	a, err := NewHTTPServerAdapter(adapterCfg, tokens, logger.Nop())
	require.NoError(t, err)
	return a.(*httpServerAdapter)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// ── constructor ─────────────────────────────────────────────────────────────

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "localhost:8000", want: "http://localhost:8000"},
		{in: "https://api.example.com/", want: "https://api.example.com"},
		{in: "  http://h:1/v1/ ", want: "http://h:1/v1"},
		{in: "", wantErr: true},
		{in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHTTPServerAdapter_InvalidAddress(t *testing.T) {
	_, err := NewHTTPServerAdapter(config.ClientAdapter{}, nil, nil)
	assert.Error(t, err)
}

// ── auth ────────────────────────────────────────────────────────────────────

func TestRegister_Success(t *testing.T) {
	payload := models.RegistrationPayload{Email: "alice@example.com", Salt: "c2FsdA=="}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/register", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(requestIDHeader))

		var got models.RegistrationPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, payload, got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, &fakeTokens{token: "ignored"})
	require.NoError(t, a.Register(context.Background(), payload))
}

func TestRegister_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("account already exists"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, nil)
	err := a.Register(context.Background(), models.RegistrationPayload{Email: "alice@example.com"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "account already exists")
}

func TestRequestOTT_Accepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/request-ott", r.URL.Path)
		var req models.OTTRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Email)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, nil)
	assert.NoError(t, a.RequestOTT(context.Background(), "alice@example.com"))
}

func TestVerifyOTT_Success(t *testing.T) {
	want := models.LoginChallenge{ChallengeID: "ch-1", Salt: "c2FsdA==", EncryptedChallenge: "Ym94"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify-ott", r.URL.Path)
		var req models.VerifyOTTRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "123456", req.OTT)
		writeJSON(t, w, http.StatusOK, want)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, nil)
	got, err := a.VerifyOTT(context.Background(), "alice@example.com", "123456")

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVerifyOTT_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, nil)
	_, err := a.VerifyOTT(context.Background(), "alice@example.com", "1")

	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestCompleteLogin_ChallengeUsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
		_, _ = w.Write([]byte("challenge already used"))
	}))
	defer srv.Close()

	tokens := &fakeTokens{}
	a := newTestAdapter(t, srv.URL, tokens)
	_, err := a.CompleteLogin(context.Background(), models.CompleteLoginRequest{ChallengeID: "ch-1"})

	assert.ErrorIs(t, err, ErrGone)
	assert.Contains(t, err.Error(), "challenge already used")
}

func TestCompleteLogin_ExpiryFromJWT(t *testing.T) {
	access, exp, err := utils.GenerateJWTToken("test", "alice@example.com", models.TokenKindAccess, time.Hour, "k")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"access_token": access, "refresh_token": "opaque"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, nil)
	got, err := a.CompleteLogin(context.Background(), models.CompleteLoginRequest{})

	require.NoError(t, err)
	assert.Equal(t, access, got.AccessToken)
	assert.Equal(t, exp.Unix(), got.AccessTokenExpiryTime.Unix())
	assert.True(t, got.RefreshTokenExpiryTime.IsZero(), "opaque refresh token has no exp")
}

func TestCompleteLogin_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.SessionTokens{})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, nil)
	_, err := a.CompleteLogin(context.Background(), models.CompleteLoginRequest{})

	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestRefreshToken_Success(t *testing.T) {
	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token/refresh", r.URL.Path)
		var req models.RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "refresh-1", req.Value)
		writeJSON(t, w, http.StatusOK, models.SessionTokens{AccessToken: "a2", AccessTokenExpiryTime: exp, RefreshToken: "r2"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, nil)
	got, err := a.RefreshToken(context.Background(), "refresh-1")

	require.NoError(t, err)
	assert.Equal(t, "a2", got.AccessToken)
	assert.True(t, exp.Equal(got.AccessTokenExpiryTime))
}

// ── authenticated calls ─────────────────────────────────────────────────────

func TestAuthedRequest_SetsBearerAndRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		assert.Equal(t, "req-42", r.Header.Get(requestIDHeader))
		writeJSON(t, w, http.StatusOK, []models.Collection{{ID: "c1", Type: models.CollectionTypeFolder}})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, &fakeTokens{token: "access-1"})
	ctx := utils.WithRequestID(context.Background(), "req-42")

	got, err := a.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
}

func TestUnauthorized_InvalidatesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("token is expired or invalid"))
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "stale"}
	a := newTestAdapter(t, srv.URL, tokens)

	_, err := a.GetFile(context.Background(), "f1")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), tokens.invalidated.Load())
}

func TestUnauthorized_UnauthenticatedCallKeepsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "t"}
	a := newTestAdapter(t, srv.URL, tokens)

	err := a.RequestOTT(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, tokens.invalidated.Load())
}

func TestCollectionCRUD_Paths(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(t, w, http.StatusOK, models.Collection{ID: "c1", EncryptedName: "bmFtZQ=="})
		}
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, &fakeTokens{token: "t"})
	ctx := context.Background()

	_, err := a.CreateCollection(ctx, models.Collection{Type: models.CollectionTypeAlbum})
	require.NoError(t, err)
	_, err = a.GetCollection(ctx, "c1")
	require.NoError(t, err)
	_, err = a.UpdateCollection(ctx, models.Collection{ID: "c1"})
	require.NoError(t, err)
	require.NoError(t, a.DeleteCollection(ctx, "c1"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"POST /collections",
		"GET /collections/c1",
		"PUT /collections/c1",
		"DELETE /collections/c1",
	}, seen)
}

func TestListFiles_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/c1/files", r.URL.Path)
		writeJSON(t, w, http.StatusOK, []models.FileRecord{{ID: "f1", CollectionID: "c1"}, {ID: "f2", CollectionID: "c1"}})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, &fakeTokens{token: "t"})
	got, err := a.ListFiles(context.Background(), "c1")

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFileData_RoundTripBinary(t *testing.T) {
	blob := []byte{0x00, 0xff, 0x10, 0x80, 0x00}
	var (
		mu     sync.Mutex
		stored []byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/f1/data", r.URL.Path)
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
			mu.Lock()
			stored, _ = io.ReadAll(r.Body)
			mu.Unlock()
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			mu.Lock()
			defer mu.Unlock()
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(stored)
		}
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, &fakeTokens{token: "t"})
	ctx := context.Background()

	require.NoError(t, a.UploadFileData(ctx, "f1", blob))
	got, err := a.DownloadFileData(ctx, "f1")

	require.NoError(t, err)
	assert.Equal(t, blob, got)
}

// ── retry policy ────────────────────────────────────────────────────────────

func TestRetry_ReadsAreRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(t, w, http.StatusOK, models.FileRecord{ID: "f1"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, &fakeTokens{token: "t"})
	got, err := a.GetFile(context.Background(), "f1")

	require.NoError(t, err)
	assert.Equal(t, "f1", got.ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetry_WritesAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, &fakeTokens{token: "t"})
	err := a.UploadFileData(context.Background(), "f1", []byte("blob"))

	assert.ErrorIs(t, err, ErrBadGateway)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNetworkError(t *testing.T) {
	// свободный порт без слушателя
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	a := newTestAdapter(t, "http://"+addr, &fakeTokens{token: "t"})
	_, err = a.ListFiles(context.Background(), "c1")

	assert.ErrorIs(t, err, ErrNetwork)
}

func TestCanceledContextIsNotNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestAdapter(t, srv.URL, &fakeTokens{token: "t"})
	_, err := a.ListFiles(ctx, "c1")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNetwork)
}
