// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/go-paper-cloud/internal/adapter"
	"github.com/MKhiriev/go-paper-cloud/internal/config"
	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/session"
	"github.com/MKhiriev/go-paper-cloud/internal/store"
	"github.com/MKhiriev/go-paper-cloud/internal/validators"
	"github.com/MKhiriev/go-paper-cloud/internal/workers"
)

type ClientServices struct {
	AuthService       ClientAuthService
	CollectionService ClientCollectionService
	FileService       ClientFileService
	RefreshJob        workers.Worker
}

// NewClientServices wires the client services around one session. cache may
// be nil.
func NewClientServices(cfg *config.ClientConfig, serverAdapter adapter.ServerAdapter, cache store.RecordCache,
	sess *session.Session, log *logger.Logger) *ClientServices {
	keys := crypto.NewKeyChainService()
	validator := validators.NewClientInputValidator(cfg.Transfer.MaxFileSize)

	authSvc := NewClientAuthService(serverAdapter, keys, sess, validator, log)

	return &ClientServices{
		AuthService:       authSvc,
		CollectionService: NewClientCollectionService(serverAdapter, keys, sess, cache, validator, log),
		FileService:       NewClientFileService(serverAdapter, keys, sess, cache, validator, cfg.Transfer.MaxConcurrent, log),
		RefreshJob:        NewClientRefreshJob(authSvc, sess, cfg.Workers, log),
	}
}
