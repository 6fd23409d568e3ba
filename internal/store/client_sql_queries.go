// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-paper-cloud/models"
)

const (
	collectionsTable = "collections"
	fileRecordsTable = "file_records"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

var collectionColumns = []string{
	"id",
	"type",
	"encrypted_name",
	"encrypted_collection_key",
	"created_at",
	"updated_at",
}

var fileRecordColumns = []string{
	"id",
	"collection_id",
	"encrypted_file_key",
	"encrypted_metadata",
	"encryption_version",
	"content_hash",
	"encrypted_size",
	"created_at",
	"modified_at",
}

func buildUpsertCollectionQuery(owner string, c models.Collection) (string, []any, error) {
	return psql.Insert(collectionsTable).
		Columns(append([]string{"owner"}, collectionColumns...)...).
		Values(owner, c.ID, c.Type, c.EncryptedName, c.EncryptedCollectionKey, c.CreatedAt, c.UpdatedAt).
		Suffix(`ON CONFLICT (owner, id) DO UPDATE SET
			type = excluded.type,
			encrypted_name = excluded.encrypted_name,
			encrypted_collection_key = excluded.encrypted_collection_key,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`).
		ToSql()
}

func buildSelectCollectionsQuery(owner string) (string, []any, error) {
	return psql.Select(collectionColumns...).
		From(collectionsTable).
		Where(sq.Eq{"owner": owner}).
		OrderBy("created_at", "id").
		ToSql()
}

func buildDeleteCollectionsQuery(owner string, collectionID string) (string, []any, error) {
	q := psql.Delete(collectionsTable).Where(sq.Eq{"owner": owner})
	if collectionID != "" {
		q = q.Where(sq.Eq{"id": collectionID})
	}
	return q.ToSql()
}

func buildUpsertFileRecordQuery(owner string, r models.FileRecord) (string, []any, error) {
	return psql.Insert(fileRecordsTable).
		Columns(append([]string{"owner"}, fileRecordColumns...)...).
		Values(owner, r.ID, r.CollectionID, r.EncryptedFileKey, r.EncryptedMetadata,
			r.EncryptionVersion, r.ContentHash, r.EncryptedSize, r.CreatedAt, r.ModifiedAt).
		Suffix(`ON CONFLICT (owner, id) DO UPDATE SET
			collection_id = excluded.collection_id,
			encrypted_file_key = excluded.encrypted_file_key,
			encrypted_metadata = excluded.encrypted_metadata,
			encryption_version = excluded.encryption_version,
			content_hash = excluded.content_hash,
			encrypted_size = excluded.encrypted_size,
			created_at = excluded.created_at,
			modified_at = excluded.modified_at`).
		ToSql()
}

func buildSelectFileRecordsQuery(owner, collectionID string) (string, []any, error) {
	return psql.Select(fileRecordColumns...).
		From(fileRecordsTable).
		Where(sq.Eq{"owner": owner, "collection_id": collectionID}).
		OrderBy("created_at", "id").
		ToSql()
}

// buildDeleteFileRecordsQuery deletes one record by id, or every record of a
// collection when fileID is empty.
func buildDeleteFileRecordsQuery(owner, collectionID, fileID string) (string, []any, error) {
	q := psql.Delete(fileRecordsTable).Where(sq.Eq{"owner": owner})
	if collectionID != "" {
		q = q.Where(sq.Eq{"collection_id": collectionID})
	}
	if fileID != "" {
		q = q.Where(sq.Eq{"id": fileID})
	}
	return q.ToSql()
}
