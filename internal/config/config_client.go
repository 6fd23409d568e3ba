// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings.
type ClientApp struct {
	Email    string
	LogFile  string
	LogLevel string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the API base URL.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound requests.
	RequestTimeout time.Duration
	// RetryCount is the number of retries for idempotent reads (0 = none).
	RetryCount int
	// RetryWaitTime and RetryMaxWaitTime bound the back-off between retries.
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite connection string of the record cache.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	RefreshCheckInterval time.Duration
	RefreshLeeway        time.Duration
}

// ClientTransfer contains upload/download limits.
type ClientTransfer struct {
	MaxConcurrent int
	MaxFileSize   int64
}

// ClientConfig is the validated client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App      ClientApp
	Adapter  ClientAdapter
	Storage  ClientStorage
	Workers  ClientWorkers
	Transfer ClientTransfer
}

// GetClientConfig builds and validates the client configuration. flagCfg is
// the struct returned by [BindFlags] after the command line has been parsed;
// it may be nil.
func GetClientConfig(flagCfg *StructuredConfig) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(flagCfg)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	retryCount := cfg.Adapter.RetryCount
	if retryCount < 0 {
		retryCount = 0
	}

	return &ClientConfig{
		App: ClientApp{
			Email:    cfg.App.Email,
			LogFile:  cfg.App.LogFile,
			LogLevel: cfg.App.LogLevel,
		},
		Adapter: ClientAdapter{
			HTTPAddress:      cfg.Adapter.HTTPAddress,
			RequestTimeout:   cfg.Adapter.RequestTimeout,
			RetryCount:       retryCount,
			RetryWaitTime:    cfg.Adapter.RetryWaitTime,
			RetryMaxWaitTime: cfg.Adapter.RetryMaxWaitTime,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Workers: ClientWorkers{
			RefreshCheckInterval: cfg.Workers.RefreshCheckInterval,
			RefreshLeeway:        cfg.Workers.RefreshLeeway,
		},
		Transfer: ClientTransfer{
			MaxConcurrent: cfg.Transfer.MaxConcurrent,
			MaxFileSize:   cfg.Transfer.MaxFileSize,
		},
	}
}
