// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-paper-cloud/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// RecordCache keeps the last known server records on the device so that
// listings still work offline. Only ciphertext is cached: wrapped keys,
// sealed names and sealed metadata. Every row is scoped by owner, the
// account email.
type RecordCache interface {
	SaveCollections(ctx context.Context, owner string, collections ...models.Collection) error
	ReplaceCollections(ctx context.Context, owner string, collections []models.Collection) error
	ListCollections(ctx context.Context, owner string) ([]models.Collection, error)
	DeleteCollection(ctx context.Context, owner, collectionID string) error

	SaveFileRecords(ctx context.Context, owner string, records ...models.FileRecord) error
	ReplaceFileRecords(ctx context.Context, owner, collectionID string, records []models.FileRecord) error
	ListFileRecords(ctx context.Context, owner, collectionID string) ([]models.FileRecord, error)
	DeleteFileRecord(ctx context.Context, owner, fileID string) error
}
