// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/models"
)

type recordCache struct {
	*DB
	logger *logger.Logger
}

func NewRecordCache(db *DB, logger *logger.Logger) RecordCache {
	return &recordCache{
		DB:     db,
		logger: logger,
	}
}

type queryBuilder func() (string, []any, error)

// inTx runs every statement in a single transaction.
func (r *recordCache) inTx(ctx context.Context, funcName, owner string, statements ...queryBuilder) error {
	log := logger.FromContext(ctx)

	if owner == "" {
		return ErrEmptyOwner
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	for _, build := range statements {
		query, args, err := build()
		if err != nil {
			log.Err(err).Str("func", funcName).Msg("failed to build query")
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).Str("func", funcName).Msg("failed to execute statement")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}
	return nil
}

func (r *recordCache) SaveCollections(ctx context.Context, owner string, collections ...models.Collection) error {
	if len(collections) == 0 {
		return nil
	}
	return r.inTx(ctx, "recordCache.SaveCollections", owner, upsertCollections(owner, collections)...)
}

func (r *recordCache) ReplaceCollections(ctx context.Context, owner string, collections []models.Collection) error {
	statements := []queryBuilder{
		func() (string, []any, error) { return buildDeleteCollectionsQuery(owner, "") },
	}
	statements = append(statements, upsertCollections(owner, collections)...)
	return r.inTx(ctx, "recordCache.ReplaceCollections", owner, statements...)
}

func upsertCollections(owner string, collections []models.Collection) []queryBuilder {
	statements := make([]queryBuilder, 0, len(collections))
	for _, c := range collections {
		statements = append(statements, func() (string, []any, error) { return buildUpsertCollectionQuery(owner, c) })
	}
	return statements
}

func (r *recordCache) ListCollections(ctx context.Context, owner string) ([]models.Collection, error) {
	log := logger.FromContext(ctx)

	if owner == "" {
		return nil, ErrEmptyOwner
	}

	query, args, err := buildSelectCollectionsQuery(owner)
	if err != nil {
		log.Err(err).Str("func", "recordCache.ListCollections").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordCache.ListCollections").
			Msg("failed to execute query for cached collections")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var items []models.Collection
	for rows.Next() {
		var c models.Collection
		if err = rows.Scan(&c.ID, &c.Type, &c.EncryptedName, &c.EncryptedCollectionKey, &c.CreatedAt, &c.UpdatedAt); err != nil {
			log.Err(err).
				Str("func", "recordCache.ListCollections").
				Msg("failed to scan collection row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		items = append(items, c)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).
			Str("func", "recordCache.ListCollections").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return items, nil
}

// DeleteCollection drops the collection together with its cached file records.
func (r *recordCache) DeleteCollection(ctx context.Context, owner, collectionID string) error {
	if collectionID == "" {
		return ErrRecordNotFound
	}
	return r.inTx(ctx, "recordCache.DeleteCollection", owner,
		func() (string, []any, error) { return buildDeleteFileRecordsQuery(owner, collectionID, "") },
		func() (string, []any, error) { return buildDeleteCollectionsQuery(owner, collectionID) },
	)
}

func (r *recordCache) SaveFileRecords(ctx context.Context, owner string, records ...models.FileRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.inTx(ctx, "recordCache.SaveFileRecords", owner, upsertFileRecords(owner, records)...)
}

// ReplaceFileRecords makes the cached listing of a collection equal to records.
func (r *recordCache) ReplaceFileRecords(ctx context.Context, owner, collectionID string, records []models.FileRecord) error {
	statements := []queryBuilder{
		func() (string, []any, error) { return buildDeleteFileRecordsQuery(owner, collectionID, "") },
	}
	statements = append(statements, upsertFileRecords(owner, records)...)
	return r.inTx(ctx, "recordCache.ReplaceFileRecords", owner, statements...)
}

func upsertFileRecords(owner string, records []models.FileRecord) []queryBuilder {
	statements := make([]queryBuilder, 0, len(records))
	for _, rec := range records {
		statements = append(statements, func() (string, []any, error) { return buildUpsertFileRecordQuery(owner, rec) })
	}
	return statements
}

func (r *recordCache) ListFileRecords(ctx context.Context, owner, collectionID string) ([]models.FileRecord, error) {
	log := logger.FromContext(ctx)

	if owner == "" {
		return nil, ErrEmptyOwner
	}

	query, args, err := buildSelectFileRecordsQuery(owner, collectionID)
	if err != nil {
		log.Err(err).Str("func", "recordCache.ListFileRecords").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordCache.ListFileRecords").
			Str("collection_id", collectionID).
			Msg("failed to execute query for cached file records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var items []models.FileRecord
	for rows.Next() {
		var rec models.FileRecord
		err = rows.Scan(
			&rec.ID,
			&rec.CollectionID,
			&rec.EncryptedFileKey,
			&rec.EncryptedMetadata,
			&rec.EncryptionVersion,
			&rec.ContentHash,
			&rec.EncryptedSize,
			&rec.CreatedAt,
			&rec.ModifiedAt,
		)
		if err != nil {
			log.Err(err).
				Str("func", "recordCache.ListFileRecords").
				Str("collection_id", collectionID).
				Msg("failed to scan file record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		items = append(items, rec)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).
			Str("func", "recordCache.ListFileRecords").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return items, nil
}

func (r *recordCache) DeleteFileRecord(ctx context.Context, owner, fileID string) error {
	log := logger.FromContext(ctx)

	if owner == "" {
		return ErrEmptyOwner
	}
	if fileID == "" {
		return ErrRecordNotFound
	}

	query, args, err := buildDeleteFileRecordsQuery(owner, "", fileID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordCache.DeleteFileRecord").
			Str("file_id", fileID).
			Msg("failed to delete cached file record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

