// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the papercloud API.
//
// The primary abstraction is [ServerAdapter], which decouples the service layer
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPServerAdapter]) built on resty.
//
// The adapter only moves ciphertext. Every byte field it sends or receives is
// already sealed (or is public, like a salt or a public key).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrGone] for 410, [ErrUnauthorized] for 401). Transport
// failures are wrapped in [ErrNetwork].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-paper-cloud/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// TokenSource supplies the bearer token for authenticated requests and is told
// when the server rejects it. *session.Session implements it.
type TokenSource interface {
	AccessToken() string

	// Invalidate is called once the server answers 401 to an authenticated
	// request. The client must drop its tokens and keys and sign in again.
	Invalidate(reason error)
}

// ServerAdapter defines transport-agnostic communication with the papercloud
// API. Implementations are responsible for serialisation, authentication
// header management, and mapping transport-level errors to the sentinel values
// defined in this package.
type ServerAdapter interface {
	// Register creates an account from a fully built key set.
	Register(ctx context.Context, payload models.RegistrationPayload) error

	// RequestOTT asks the server to send a one-time token to email out of
	// band.
	RequestOTT(ctx context.Context, email string) error

	// VerifyOTT exchanges the one-time token for a single-use login challenge.
	VerifyOTT(ctx context.Context, email, ott string) (models.LoginChallenge, error)

	// CompleteLogin submits the decrypted challenge. A consumed challenge
	// yields [ErrGone].
	CompleteLogin(ctx context.Context, req models.CompleteLoginRequest) (models.SessionTokens, error)

	// RefreshToken trades a refresh token for a new token pair.
	RefreshToken(ctx context.Context, refreshToken string) (models.SessionTokens, error)

	ListCollections(ctx context.Context) ([]models.Collection, error)
	CreateCollection(ctx context.Context, c models.Collection) (models.Collection, error)
	GetCollection(ctx context.Context, id string) (models.Collection, error)
	UpdateCollection(ctx context.Context, c models.Collection) (models.Collection, error)
	DeleteCollection(ctx context.Context, id string) error

	// ListFiles returns the records of every file in collectionID.
	ListFiles(ctx context.Context, collectionID string) ([]models.FileRecord, error)

	// CreateFile stores a file record. The server assigns ID and timestamps.
	CreateFile(ctx context.Context, record models.FileRecord) (models.FileRecord, error)
	GetFile(ctx context.Context, id string) (models.FileRecord, error)
	DeleteFile(ctx context.Context, id string) error

	// UploadFileData stores the encrypted content blob of file id. It is never
	// retried.
	UploadFileData(ctx context.Context, id string, blob []byte) error

	// DownloadFileData fetches the encrypted content blob of file id.
	DownloadFileData(ctx context.Context, id string) ([]byte, error)
}
