// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-paper-cloud/internal/adapter"
	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/session"
	"github.com/MKhiriev/go-paper-cloud/internal/store"
	"github.com/MKhiriev/go-paper-cloud/internal/validators"
	"github.com/MKhiriev/go-paper-cloud/models"
)

type clientCollectionService struct {
	adapter   adapter.ServerAdapter
	keys      crypto.KeyChainService
	session   *session.Session
	cache     store.RecordCache
	validator validators.Validator
	logger    *logger.Logger
}

// NewClientCollectionService builds the collection service. cache may be nil,
// in which case nothing is cached and listings need the server.
func NewClientCollectionService(serverAdapter adapter.ServerAdapter, keys crypto.KeyChainService, sess *session.Session,
	cache store.RecordCache, validator validators.Validator, log *logger.Logger) ClientCollectionService {
	return &clientCollectionService{
		adapter:   serverAdapter,
		keys:      keys,
		session:   sess,
		cache:     cache,
		validator: validator,
		logger:    log,
	}
}

func (s *clientCollectionService) CreateCollection(ctx context.Context, input models.CollectionInput) (models.DecryptedCollection, error) {
	if err := s.validator.Validate(ctx, input); err != nil {
		return models.DecryptedCollection{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	masterKey, err := s.session.MasterKey()
	if err != nil {
		return models.DecryptedCollection{}, err
	}
	defer crypto.Wipe(masterKey)

	collectionKey, err := s.keys.NewCollectionKey()
	if err != nil {
		return models.DecryptedCollection{}, fmt.Errorf("error generating collection key: %w", err)
	}
	defer crypto.Wipe(collectionKey)

	wrapped, err := s.keys.WrapKey(collectionKey, masterKey)
	if err != nil {
		return models.DecryptedCollection{}, fmt.Errorf("error wrapping collection key: %w", err)
	}
	encName, err := s.keys.EncryptData(models.CollectionName{Name: input.Name}, collectionKey)
	if err != nil {
		return models.DecryptedCollection{}, fmt.Errorf("error sealing collection name: %w", err)
	}

	created, err := s.adapter.CreateCollection(ctx, models.Collection{
		Type:                   input.Type,
		EncryptedName:          encName,
		EncryptedCollectionKey: wrapped.Encode(),
	})
	if err != nil {
		return models.DecryptedCollection{}, mapAdapterError(err)
	}

	if err = s.session.SetCollectionKey(created.ID, collectionKey); err != nil {
		return models.DecryptedCollection{}, err
	}
	s.cacheCollections(ctx, created)

	return decrypted(created, input.Name), nil
}

func (s *clientCollectionService) ListCollections(ctx context.Context) ([]models.DecryptedCollection, error) {
	log := logger.FromContext(ctx)

	masterKey, err := s.session.MasterKey()
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(masterKey)

	collections, err := s.adapter.ListCollections(ctx)
	switch {
	case err == nil:
		if s.cache != nil {
			if cacheErr := s.cache.ReplaceCollections(ctx, s.session.Email(), collections); cacheErr != nil {
				log.Warn().Err(cacheErr).Str("func", "clientCollectionService.ListCollections").Msg("failed to cache collections")
			}
		}
	case errors.Is(err, adapter.ErrNetwork) && s.cache != nil:
		log.Warn().Err(err).Str("func", "clientCollectionService.ListCollections").Msg("server unreachable, using cached collections")
		collections, err = s.cache.ListCollections(ctx, s.session.Email())
		if err != nil {
			return nil, err
		}
	default:
		return nil, mapAdapterError(err)
	}

	result := make([]models.DecryptedCollection, 0, len(collections))
	for _, c := range collections {
		d, err := s.unlock(c, masterKey)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

func (s *clientCollectionService) GetCollection(ctx context.Context, id string) (models.DecryptedCollection, error) {
	masterKey, err := s.session.MasterKey()
	if err != nil {
		return models.DecryptedCollection{}, err
	}
	defer crypto.Wipe(masterKey)

	c, err := s.adapter.GetCollection(ctx, id)
	if err != nil {
		return models.DecryptedCollection{}, mapAdapterError(err)
	}
	return s.unlock(c, masterKey)
}

func (s *clientCollectionService) RenameCollection(ctx context.Context, id, name string) (models.DecryptedCollection, error) {
	if err := s.validator.Validate(ctx, models.CollectionInput{Name: name}, validators.FieldName); err != nil {
		return models.DecryptedCollection{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	masterKey, err := s.session.MasterKey()
	if err != nil {
		return models.DecryptedCollection{}, err
	}
	defer crypto.Wipe(masterKey)

	c, err := s.adapter.GetCollection(ctx, id)
	if err != nil {
		return models.DecryptedCollection{}, mapAdapterError(err)
	}
	if _, err = s.unlock(c, masterKey); err != nil {
		return models.DecryptedCollection{}, err
	}
	collectionKey, err := s.session.CollectionKey(id)
	if err != nil {
		return models.DecryptedCollection{}, err
	}
	defer crypto.Wipe(collectionKey)

	c.EncryptedName, err = s.keys.EncryptData(models.CollectionName{Name: name}, collectionKey)
	if err != nil {
		return models.DecryptedCollection{}, fmt.Errorf("error sealing collection name: %w", err)
	}

	updated, err := s.adapter.UpdateCollection(ctx, c)
	if err != nil {
		return models.DecryptedCollection{}, mapAdapterError(err)
	}
	s.cacheCollections(ctx, updated)

	return decrypted(updated, name), nil
}

func (s *clientCollectionService) DeleteCollection(ctx context.Context, id string) error {
	if !s.session.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	if err := s.adapter.DeleteCollection(ctx, id); err != nil {
		return mapAdapterError(err)
	}
	s.session.ForgetCollectionKey(id)

	if s.cache != nil {
		if err := s.cache.DeleteCollection(ctx, s.session.Email(), id); err != nil {
			logger.FromContext(ctx).Warn().Err(err).
				Str("func", "clientCollectionService.DeleteCollection").
				Str("collection_id", id).
				Msg("failed to drop cached collection")
		}
	}
	return nil
}

func (s *clientCollectionService) UnlockCollection(ctx context.Context, id string) ([]byte, error) {
	if key, err := s.session.CollectionKey(id); err == nil {
		return key, nil
	} else if !errors.Is(err, session.ErrNoCollectionKey) {
		return nil, err
	}

	if _, err := s.GetCollection(ctx, id); err != nil {
		return nil, err
	}
	return s.session.CollectionKey(id)
}

// unlock opens the collection key and name and registers the key in the
// session keyring.
func (s *clientCollectionService) unlock(c models.Collection, masterKey []byte) (models.DecryptedCollection, error) {
	wrapped, err := crypto.DecodeEnvelope(c.EncryptedCollectionKey)
	if err != nil {
		return models.DecryptedCollection{}, fmt.Errorf("collection %s key: %w", c.ID, err)
	}

	collectionKey, err := s.keys.UnwrapKey(wrapped, masterKey)
	if err != nil {
		return models.DecryptedCollection{}, fmt.Errorf("%w: collection %s: %w", ErrAccessDenied, c.ID, err)
	}
	defer crypto.Wipe(collectionKey)

	var name models.CollectionName
	if err = s.keys.DecryptData(c.EncryptedName, collectionKey, &name); err != nil {
		return models.DecryptedCollection{}, fmt.Errorf("%w: collection %s name: %w", ErrIntegrity, c.ID, err)
	}

	if err = s.session.SetCollectionKey(c.ID, collectionKey); err != nil {
		return models.DecryptedCollection{}, err
	}
	return decrypted(c, name.Name), nil
}

func (s *clientCollectionService) cacheCollections(ctx context.Context, collections ...models.Collection) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SaveCollections(ctx, s.session.Email(), collections...); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("func", "clientCollectionService.cacheCollections").
			Msg("failed to cache collections")
	}
}

func decrypted(c models.Collection, name string) models.DecryptedCollection {
	return models.DecryptedCollection{
		ID:        c.ID,
		Type:      c.Type,
		Name:      name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
