// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"net/mail"
	"strings"
)

// validate checks the merged [StructuredConfig]. Source-level problems are
// already reported by the builder; cross-field rules live on [ClientConfig].
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}
	if cfg.Adapter.RetryCount > 0 && cfg.Adapter.RetryWaitTime <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.RefreshCheckInterval <= 0 || cfg.Workers.RefreshLeeway < 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Transfer.MaxConcurrent <= 0 || cfg.Transfer.MaxFileSize <= 0 {
		return ErrInvalidTransferConfigs
	}

	if cfg.App.Email != "" {
		if _, err := mail.ParseAddress(cfg.App.Email); err != nil {
			return ErrInvalidAppConfigs
		}
	}

	return nil
}
