// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/go-paper-cloud/internal/config"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/utils"
	"github.com/MKhiriev/go-paper-cloud/models"
	"github.com/go-resty/resty/v2"
)

const requestIDHeader = "X-Request-ID"

type httpServerAdapter struct {
	client *utils.HTTPClient
	tokens TokenSource
	ids    *utils.UUIDGenerator

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying HTTP client with the resolved base URL, request
// timeout and the read-only retry policy.
//
// tokens may be nil for a client that only registers.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, tokens TokenSource, log *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	client := utils.NewHTTPClient().
		WithIdempotentRetry(adapterCfg.RetryCount, adapterCfg.RetryWaitTime, adapterCfg.RetryMaxWaitTime)
	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpServerAdapter{
		client: client,
		tokens: tokens,
		ids:    utils.NewUUIDGenerator(),
		logger: log,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Register implements [ServerAdapter]. POST /register.
func (h *httpServerAdapter) Register(ctx context.Context, payload models.RegistrationPayload) error {
	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/register")

	return h.check("register", resp, err, false)
}

// RequestOTT implements [ServerAdapter]. POST /request-ott, expects 202.
func (h *httpServerAdapter) RequestOTT(ctx context.Context, email string) error {
	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.OTTRequest{Email: email}).
		Post("/request-ott")

	return h.check("request ott", resp, err, false)
}

// VerifyOTT implements [ServerAdapter]. POST /verify-ott.
func (h *httpServerAdapter) VerifyOTT(ctx context.Context, email, ott string) (models.LoginChallenge, error) {
	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.VerifyOTTRequest{Email: email, OTT: ott}).
		Post("/verify-ott")
	if err = h.check("verify ott", resp, err, false); err != nil {
		return models.LoginChallenge{}, err
	}

	var challenge models.LoginChallenge
	if err = decode(resp, &challenge); err != nil {
		return models.LoginChallenge{}, fmt.Errorf("verify ott: %w", err)
	}
	return challenge, nil
}

// CompleteLogin implements [ServerAdapter]. POST /complete-login.
func (h *httpServerAdapter) CompleteLogin(ctx context.Context, req models.CompleteLoginRequest) (models.SessionTokens, error) {
	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/complete-login")
	if err = h.check("complete login", resp, err, false); err != nil {
		return models.SessionTokens{}, err
	}

	return decodeTokens("complete login", resp)
}

// RefreshToken implements [ServerAdapter]. POST /token/refresh.
func (h *httpServerAdapter) RefreshToken(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.RefreshRequest{Value: refreshToken}).
		Post("/token/refresh")
	if err = h.check("refresh token", resp, err, false); err != nil {
		return models.SessionTokens{}, err
	}

	return decodeTokens("refresh token", resp)
}

// ListCollections implements [ServerAdapter]. GET /collections.
func (h *httpServerAdapter) ListCollections(ctx context.Context) ([]models.Collection, error) {
	resp, err := h.authedRequest(ctx).Get("/collections")
	if err = h.check("list collections", resp, err, true); err != nil {
		return nil, err
	}

	var collections []models.Collection
	if err = decode(resp, &collections); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return collections, nil
}

// CreateCollection implements [ServerAdapter]. POST /collections.
func (h *httpServerAdapter) CreateCollection(ctx context.Context, c models.Collection) (models.Collection, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(c).
		Post("/collections")
	return h.collectionResult("create collection", resp, err)
}

// GetCollection implements [ServerAdapter]. GET /collections/{id}.
func (h *httpServerAdapter) GetCollection(ctx context.Context, id string) (models.Collection, error) {
	resp, err := h.authedRequest(ctx).
		SetPathParam("id", id).
		Get("/collections/{id}")
	return h.collectionResult("get collection", resp, err)
}

// UpdateCollection implements [ServerAdapter]. PUT /collections/{id}.
func (h *httpServerAdapter) UpdateCollection(ctx context.Context, c models.Collection) (models.Collection, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", c.ID).
		SetBody(c).
		Put("/collections/{id}")
	return h.collectionResult("update collection", resp, err)
}

// DeleteCollection implements [ServerAdapter]. DELETE /collections/{id}.
func (h *httpServerAdapter) DeleteCollection(ctx context.Context, id string) error {
	resp, err := h.authedRequest(ctx).
		SetPathParam("id", id).
		Delete("/collections/{id}")
	return h.check("delete collection", resp, err, true)
}

// ListFiles implements [ServerAdapter]. GET /collections/{id}/files.
func (h *httpServerAdapter) ListFiles(ctx context.Context, collectionID string) ([]models.FileRecord, error) {
	resp, err := h.authedRequest(ctx).
		SetPathParam("id", collectionID).
		Get("/collections/{id}/files")
	if err = h.check("list files", resp, err, true); err != nil {
		return nil, err
	}

	var records []models.FileRecord
	if err = decode(resp, &records); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return records, nil
}

// CreateFile implements [ServerAdapter]. POST /files.
func (h *httpServerAdapter) CreateFile(ctx context.Context, record models.FileRecord) (models.FileRecord, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(record).
		Post("/files")
	return h.fileResult("create file", resp, err)
}

// GetFile implements [ServerAdapter]. GET /files/{id}.
func (h *httpServerAdapter) GetFile(ctx context.Context, id string) (models.FileRecord, error) {
	resp, err := h.authedRequest(ctx).
		SetPathParam("id", id).
		Get("/files/{id}")
	return h.fileResult("get file", resp, err)
}

// DeleteFile implements [ServerAdapter]. DELETE /files/{id}.
func (h *httpServerAdapter) DeleteFile(ctx context.Context, id string) error {
	resp, err := h.authedRequest(ctx).
		SetPathParam("id", id).
		Delete("/files/{id}")
	return h.check("delete file", resp, err, true)
}

// UploadFileData implements [ServerAdapter]. POST /files/{id}/data with the raw
// nonce ‖ ciphertext bytes as body.
func (h *httpServerAdapter) UploadFileData(ctx context.Context, id string, blob []byte) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetPathParam("id", id).
		SetBody(blob).
		Post("/files/{id}/data")
	return h.check("upload file data", resp, err, true)
}

// DownloadFileData implements [ServerAdapter]. GET /files/{id}/data.
func (h *httpServerAdapter) DownloadFileData(ctx context.Context, id string) ([]byte, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Accept", "application/octet-stream").
		SetPathParam("id", id).
		Get("/files/{id}/data")
	if err = h.check("download file data", resp, err, true); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (h *httpServerAdapter) collectionResult(op string, resp *resty.Response, err error) (models.Collection, error) {
	if err = h.check(op, resp, err, true); err != nil {
		return models.Collection{}, err
	}

	var c models.Collection
	if err = decode(resp, &c); err != nil {
		return models.Collection{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (h *httpServerAdapter) fileResult(op string, resp *resty.Response, err error) (models.FileRecord, error) {
	if err = h.check(op, resp, err, true); err != nil {
		return models.FileRecord{}, err
	}

	var record models.FileRecord
	if err = decode(resp, &record); err != nil {
		return models.FileRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	return record, nil
}

// check turns a resty result into an error. A 401 on an authenticated call
// ends the session through the TokenSource.
func (h *httpServerAdapter) check(op string, resp *resty.Response, err error, authed bool) error {
	if err != nil {
		return fmt.Errorf("%s request: %w", op, mapTransportError(err))
	}

	h.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode()).
		Dur("took", resp.Time()).
		Str("request_id", resp.Request.Header.Get(requestIDHeader)).
		Msg("api call")

	if err = mapHTTPError(resp); err != nil {
		if authed && h.tokens != nil && errors.Is(err, ErrUnauthorized) {
			h.tokens.Invalidate(err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (h *httpServerAdapter) request(ctx context.Context) *resty.Request {
	requestID, ok := utils.GetRequestIDFromContext(ctx)
	if !ok {
		requestID = h.ids.Generate()
	}
	return h.client.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, requestID)
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.request(ctx)
	if h.tokens == nil {
		return req
	}
	if token := h.tokens.AccessToken(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func decode(resp *resty.Response, v any) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

// decodeTokens reads a token pair. When the server omits an expiry it is taken
// from the token's own exp claim.
func decodeTokens(op string, resp *resty.Response) (models.SessionTokens, error) {
	var tokens models.SessionTokens
	if err := decode(resp, &tokens); err != nil {
		return models.SessionTokens{}, fmt.Errorf("%s: %w", op, err)
	}
	if tokens.AccessToken == "" {
		return models.SessionTokens{}, fmt.Errorf("%s: %w: empty access token", op, ErrUnexpectedResponse)
	}

	tokens.AccessTokenExpiryTime = expiryOr(tokens.AccessTokenExpiryTime, tokens.AccessToken)
	tokens.RefreshTokenExpiryTime = expiryOr(tokens.RefreshTokenExpiryTime, tokens.RefreshToken)
	return tokens, nil
}

func expiryOr(t time.Time, token string) time.Time {
	if !t.IsZero() || token == "" {
		return t
	}
	if exp, err := utils.ParseExpiryFromJWT(token); err == nil {
		return exp
	}
	return t
}
