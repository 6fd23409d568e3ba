// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-paper-cloud/internal/adapter"
	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/session"
	"github.com/MKhiriev/go-paper-cloud/internal/store"
	"github.com/MKhiriev/go-paper-cloud/internal/utils"
	"github.com/MKhiriev/go-paper-cloud/internal/validators"
	"github.com/MKhiriev/go-paper-cloud/models"
)

// fields checked on a record before the server assigned its id
var newRecordFields = []string{
	validators.FieldCollectionID,
	validators.FieldEncryptedFileKey,
	validators.FieldEncryptedMetadata,
	validators.FieldContentHash,
	validators.FieldEncryptedSize,
}

type clientFileService struct {
	adapter       adapter.ServerAdapter
	keys          crypto.KeyChainService
	session       *session.Session
	cache         store.RecordCache
	validator     validators.Validator
	maxConcurrent int
	logger        *logger.Logger
}

// NewClientFileService builds the file service. maxConcurrent bounds
// UploadMany; zero or less means no bound. cache may be nil.
func NewClientFileService(serverAdapter adapter.ServerAdapter, keys crypto.KeyChainService, sess *session.Session,
	cache store.RecordCache, validator validators.Validator, maxConcurrent int, log *logger.Logger) ClientFileService {
	return &clientFileService{
		adapter:       serverAdapter,
		keys:          keys,
		session:       sess,
		cache:         cache,
		validator:     validator,
		maxConcurrent: maxConcurrent,
		logger:        log,
	}
}

func (s *clientFileService) Upload(ctx context.Context, input models.UploadInput, parentKey []byte) (models.FileRecord, error) {
	log := logger.FromContext(ctx)

	if err := ctx.Err(); err != nil {
		return models.FileRecord{}, err
	}
	if input.Metadata.Size == 0 {
		input.Metadata.Size = int64(len(input.Content))
	}
	if err := s.validator.Validate(ctx, input); err != nil {
		return models.FileRecord{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if len(parentKey) != crypto.KeySize {
		return models.FileRecord{}, crypto.ErrInvalidKey
	}

	now := time.Now().UTC()
	if input.Metadata.CreatedAt.IsZero() {
		input.Metadata.CreatedAt = now
	}
	if input.Metadata.ModifiedAt.IsZero() {
		input.Metadata.ModifiedAt = now
	}

	fileKey, err := s.keys.NewFileKey()
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("error generating file key: %w", err)
	}
	defer crypto.Wipe(fileKey)

	wrapped, err := s.keys.WrapKey(fileKey, parentKey)
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("error wrapping file key: %w", err)
	}

	content, err := s.keys.Seal(input.Content, fileKey)
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("error sealing content: %w", err)
	}
	blob := content.Bytes()

	encMetadata, err := s.keys.EncryptData(input.Metadata, fileKey)
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("error sealing metadata: %w", err)
	}

	record := models.FileRecord{
		CollectionID:      input.CollectionID,
		EncryptedFileKey:  wrapped.Encode(),
		EncryptedMetadata: encMetadata,
		EncryptionVersion: models.EncryptionVersionV1,
		ContentHash:       utils.ContentHash(blob),
		EncryptedSize:     int64(len(blob)),
	}
	if err = s.validator.Validate(ctx, record, newRecordFields...); err != nil {
		return models.FileRecord{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	created, err := s.adapter.CreateFile(ctx, record)
	if err != nil {
		return models.FileRecord{}, mapAdapterError(err)
	}
	record.ID = created.ID
	record.CreatedAt = created.CreatedAt
	record.ModifiedAt = created.ModifiedAt

	if err = s.adapter.UploadFileData(ctx, record.ID, blob); err != nil {
		uploadErr := fmt.Errorf("upload file data: %w", mapAdapterError(err))

		// the record without its blob must not survive
		if delErr := s.adapter.DeleteFile(context.WithoutCancel(ctx), record.ID); delErr != nil {
			log.Err(delErr).
				Str("func", "clientFileService.Upload").
				Str("file_id", record.ID).
				Msg("failed to roll back file record")
			return models.FileRecord{}, errors.Join(uploadErr, fmt.Errorf("roll back file record %s: %w", record.ID, mapAdapterError(delErr)))
		}

		log.Warn().Err(err).
			Str("func", "clientFileService.Upload").
			Str("file_id", record.ID).
			Msg("file data upload failed, record rolled back")
		return models.FileRecord{}, uploadErr
	}

	s.cacheRecords(ctx, record)

	log.Debug().
		Str("func", "clientFileService.Upload").
		Str("file_id", record.ID).
		Int64("encrypted_size", record.EncryptedSize).
		Msg("file uploaded")
	return record, nil
}

// UploadMany stops at the first failure. Files uploaded before it stay on the
// server and their records are returned at their input positions.
func (s *clientFileService) UploadMany(ctx context.Context, inputs []models.UploadInput, parentKey []byte) ([]models.FileRecord, error) {
	records := make([]models.FileRecord, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	if s.maxConcurrent > 0 {
		g.SetLimit(s.maxConcurrent)
	}

	for i, input := range inputs {
		g.Go(func() error {
			record, err := s.Upload(gctx, input, parentKey)
			if err != nil {
				return fmt.Errorf("upload %q: %w", input.Metadata.Name, err)
			}
			records[i] = record
			return nil
		})
	}

	return records, g.Wait()
}

func (s *clientFileService) Download(ctx context.Context, fileID string, parentKey []byte) (models.FileMetadata, []byte, error) {
	if len(parentKey) != crypto.KeySize {
		return models.FileMetadata{}, nil, crypto.ErrInvalidKey
	}

	var (
		record models.FileRecord
		blob   []byte
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		record, err = s.adapter.GetFile(gctx, fileID)
		return err
	})
	g.Go(func() error {
		var err error
		blob, err = s.adapter.DownloadFileData(gctx, fileID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.FileMetadata{}, nil, mapAdapterError(err)
	}

	metadata, content, err := s.decrypt(ctx, record, blob, parentKey)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("func", "clientFileService.Download").
			Str("file_id", fileID).
			Msg("downloaded file rejected")
		return models.FileMetadata{}, nil, err
	}
	return metadata, content, nil
}

func (s *clientFileService) decrypt(ctx context.Context, record models.FileRecord, blob, parentKey []byte) (models.FileMetadata, []byte, error) {
	if err := s.validator.Validate(ctx, record); err != nil {
		return models.FileMetadata{}, nil, fmt.Errorf("%w: %w", crypto.ErrFormat, err)
	}
	if record.EncryptionVersion != models.EncryptionVersionV1 {
		return models.FileMetadata{}, nil, fmt.Errorf("%w: %w %q", crypto.ErrFormat, ErrUnsupportedVersion, record.EncryptionVersion)
	}

	fileKey, err := s.unwrapFileKey(record, parentKey)
	if err != nil {
		return models.FileMetadata{}, nil, err
	}
	defer crypto.Wipe(fileKey)

	if int64(len(blob)) != record.EncryptedSize || utils.ContentHash(blob) != record.ContentHash {
		return models.FileMetadata{}, nil, fmt.Errorf("%w: content hash mismatch", ErrIntegrity)
	}

	var metadata models.FileMetadata
	if err = s.keys.DecryptData(record.EncryptedMetadata, fileKey, &metadata); err != nil {
		return models.FileMetadata{}, nil, fmt.Errorf("%w: metadata: %w", ErrIntegrity, err)
	}

	env, err := crypto.EnvelopeFromBytes(blob)
	if err != nil {
		return models.FileMetadata{}, nil, err
	}
	content, err := s.keys.Open(env, fileKey)
	if err != nil {
		return models.FileMetadata{}, nil, fmt.Errorf("open content: %w", err)
	}

	if int64(len(content)) != metadata.Size {
		crypto.Wipe(content)
		return models.FileMetadata{}, nil, fmt.Errorf("%w: size %d, metadata says %d", ErrIntegrity, len(content), metadata.Size)
	}
	return metadata, content, nil
}

func (s *clientFileService) ListFiles(ctx context.Context, collectionID string, parentKey []byte) ([]models.DecryptedFile, error) {
	log := logger.FromContext(ctx)

	if len(parentKey) != crypto.KeySize {
		return nil, crypto.ErrInvalidKey
	}

	records, err := s.adapter.ListFiles(ctx, collectionID)
	switch {
	case err == nil:
		if s.cache != nil {
			if cacheErr := s.cache.ReplaceFileRecords(ctx, s.session.Email(), collectionID, records); cacheErr != nil {
				log.Warn().Err(cacheErr).Str("func", "clientFileService.ListFiles").Msg("failed to cache file records")
			}
		}
	case errors.Is(err, adapter.ErrNetwork) && s.cache != nil:
		log.Warn().Err(err).
			Str("func", "clientFileService.ListFiles").
			Str("collection_id", collectionID).
			Msg("server unreachable, using cached file records")
		records, err = s.cache.ListFileRecords(ctx, s.session.Email(), collectionID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, mapAdapterError(err)
	}

	files := make([]models.DecryptedFile, 0, len(records))
	for _, record := range records {
		file, err := s.openRecord(record, parentKey)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (s *clientFileService) openRecord(record models.FileRecord, parentKey []byte) (models.DecryptedFile, error) {
	fileKey, err := s.unwrapFileKey(record, parentKey)
	if err != nil {
		return models.DecryptedFile{}, err
	}
	defer crypto.Wipe(fileKey)

	var metadata models.FileMetadata
	if err = s.keys.DecryptData(record.EncryptedMetadata, fileKey, &metadata); err != nil {
		return models.DecryptedFile{}, fmt.Errorf("%w: file %s metadata: %w", ErrIntegrity, record.ID, err)
	}

	return models.DecryptedFile{
		ID:           record.ID,
		CollectionID: record.CollectionID,
		Metadata:     metadata,
		CreatedAt:    record.CreatedAt,
		ModifiedAt:   record.ModifiedAt,
	}, nil
}

func (s *clientFileService) unwrapFileKey(record models.FileRecord, parentKey []byte) ([]byte, error) {
	wrapped, err := crypto.DecodeEnvelope(record.EncryptedFileKey)
	if err != nil {
		return nil, fmt.Errorf("file %s key: %w", record.ID, err)
	}
	fileKey, err := s.keys.UnwrapKey(wrapped, parentKey)
	if err != nil {
		return nil, fmt.Errorf("%w: file %s: %w", ErrAccessDenied, record.ID, err)
	}
	return fileKey, nil
}

func (s *clientFileService) DeleteFile(ctx context.Context, fileID string) error {
	if err := s.adapter.DeleteFile(ctx, fileID); err != nil {
		return mapAdapterError(err)
	}

	if s.cache != nil {
		err := s.cache.DeleteFileRecord(ctx, s.session.Email(), fileID)
		if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			logger.FromContext(ctx).Warn().Err(err).
				Str("func", "clientFileService.DeleteFile").
				Str("file_id", fileID).
				Msg("failed to drop cached file record")
		}
	}
	return nil
}

func (s *clientFileService) cacheRecords(ctx context.Context, records ...models.FileRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SaveFileRecords(ctx, s.session.Email(), records...); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("func", "clientFileService.cacheRecords").
			Msg("failed to cache file records")
	}
}
