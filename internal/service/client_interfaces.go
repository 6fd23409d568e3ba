// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-paper-cloud/models"
)

// ClientAuthService defines the client-side contract for registration and
// authentication. Implementations own the key derivation and never send the
// password or any unwrapped key to the server.
type ClientAuthService interface {
	// Register creates the account's key set from the password, posts the
	// wrapped keys to the server and returns the recovery key, shown once.
	// Returns an error if validation, key generation, or the server call fails.
	Register(ctx context.Context, input models.RegisterInput) (models.RegisterResult, error)

	// BeginLogin starts a login attempt for email. The returned flow walks
	// through the one-time token and password challenge steps.
	BeginLogin(email string) (*LoginFlow, error)

	// RefreshTokens exchanges the session's refresh token for a new pair.
	// A rejected refresh invalidates the session.
	RefreshTokens(ctx context.Context) error

	// Logout wipes every key held by the session and drops its tokens.
	Logout(ctx context.Context)

	// RecoverMasterKey opens the master key with the recovery key shown at
	// registration. Both arguments are base64.
	RecoverMasterKey(recoveryKey, masterKeyEncryptedWithRecoveryKey string) ([]byte, error)
}

// ClientCollectionService manages collections. The collection key is
// created on the client and reaches the server only wrapped under the master
// key.
type ClientCollectionService interface {
	// CreateCollection creates a collection key, seals the name under it and
	// posts the record. The new key is registered in the session.
	CreateCollection(ctx context.Context, input models.CollectionInput) (models.DecryptedCollection, error)

	// ListCollections returns every collection of the account with names
	// opened. Falls back to the local cache when the server is unreachable.
	ListCollections(ctx context.Context) ([]models.DecryptedCollection, error)

	GetCollection(ctx context.Context, id string) (models.DecryptedCollection, error)

	// RenameCollection reseals the name under the existing collection key.
	RenameCollection(ctx context.Context, id, name string) (models.DecryptedCollection, error)

	DeleteCollection(ctx context.Context, id string) error

	// UnlockCollection unwraps the collection key with the master key,
	// registers it in the session and returns a copy.
	UnlockCollection(ctx context.Context, id string) ([]byte, error)
}

// ClientFileService implements the file envelope flow: per-file keys wrapped
// under the collection key, sealed metadata and sealed content.
type ClientFileService interface {
	// Upload encrypts input under a fresh file key, writes the record and then
	// the content blob. When the blob cannot be stored the record is deleted.
	Upload(ctx context.Context, input models.UploadInput, parentKey []byte) (models.FileRecord, error)

	// UploadMany runs Upload for every input concurrently. Results keep the
	// input order.
	UploadMany(ctx context.Context, inputs []models.UploadInput, parentKey []byte) ([]models.FileRecord, error)

	// Download fetches and decrypts a file. No bytes are returned unless every
	// check passed.
	Download(ctx context.Context, fileID string, parentKey []byte) (models.FileMetadata, []byte, error)

	// ListFiles opens the metadata of every file in a collection. Falls back
	// to the local cache when the server is unreachable.
	ListFiles(ctx context.Context, collectionID string, parentKey []byte) ([]models.DecryptedFile, error)

	DeleteFile(ctx context.Context, fileID string) error
}

// AppInfoService reports build metadata of the running binary.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
