// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// EnvPrefix is prepended to every environment variable name, e.g.
// PAPERCLOUD_ADAPTER_ADDRESS.
const EnvPrefix = "PAPERCLOUD_"

// StructuredConfig is the merge container for all configuration sources.
// Each source (flags, environment, JSON file, defaults) is loaded into its own
// StructuredConfig and the builder merges them field by field.
//
// Struct tags:
//   - envPrefix - prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       - direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds process-level settings: the default account and logging.
	App App `envPrefix:"APP_"`

	// Adapter holds the API endpoint, timeout and retry settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds the local record cache settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Workers holds background job settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// Transfer holds upload/download limits.
	Transfer Transfer `envPrefix:"TRANSFER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via PAPERCLOUD_CONFIG or the -c / --config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds process-level settings.
type App struct {
	// Email is the account used when a command does not name one.
	// Env: PAPERCLOUD_APP_EMAIL
	Email string `env:"EMAIL"`

	// LogFile is the path of the JSON log file.
	// Env: PAPERCLOUD_APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`

	// LogLevel is a zerolog level name ("debug", "info", ...).
	// Env: PAPERCLOUD_APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`
}

// Adapter holds the settings of the HTTP transport to the API.
type Adapter struct {
	// HTTPAddress is the API base URL (e.g. "https://api.example.com/v1").
	// A bare host:port is treated as http://host:port.
	// Env: PAPERCLOUD_ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every single request, including blob transfers.
	// Env: PAPERCLOUD_ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// RetryCount is how many times an idempotent read is retried. A negative
	// value disables retries.
	// Env: PAPERCLOUD_ADAPTER_RETRY_COUNT
	RetryCount int `env:"RETRY_COUNT"`

	// RetryWaitTime is the initial back-off between retries.
	// Env: PAPERCLOUD_ADAPTER_RETRY_WAIT_TIME
	RetryWaitTime time.Duration `env:"RETRY_WAIT_TIME"`

	// RetryMaxWaitTime caps the back-off.
	// Env: PAPERCLOUD_ADAPTER_RETRY_MAX_WAIT_TIME
	RetryMaxWaitTime time.Duration `env:"RETRY_MAX_WAIT_TIME"`
}

// Storage groups the local storage settings.
type Storage struct {
	// DB holds the SQLite record cache settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds the local SQLite connection settings.
type DB struct {
	// DSN is the SQLite file path or DSN of the record cache.
	// Env: PAPERCLOUD_STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Workers holds background job settings.
type Workers struct {
	// RefreshCheckInterval is how often the token refresh job wakes up.
	// Env: PAPERCLOUD_WORKERS_REFRESH_CHECK_INTERVAL
	RefreshCheckInterval time.Duration `env:"REFRESH_CHECK_INTERVAL"`

	// RefreshLeeway is how long before access-token expiry a refresh is
	// attempted.
	// Env: PAPERCLOUD_WORKERS_REFRESH_LEEWAY
	RefreshLeeway time.Duration `env:"REFRESH_LEEWAY"`
}

// Transfer holds upload/download limits.
type Transfer struct {
	// MaxConcurrent bounds parallel uploads in a batch.
	// Env: PAPERCLOUD_TRANSFER_MAX_CONCURRENT
	MaxConcurrent int `env:"MAX_CONCURRENT"`

	// MaxFileSize is the largest plaintext accepted for upload, in bytes.
	// Env: PAPERCLOUD_TRANSFER_MAX_FILE_SIZE
	MaxFileSize int64 `env:"MAX_FILE_SIZE"`
}

// GetStructuredConfig loads and merges the configuration from all sources.
// Priority (first non-zero value wins):
//  1. Command-line flags (flagCfg, bound by [BindFlags]; may be nil)
//  2. Environment variables
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig(flagCfg *StructuredConfig) (*StructuredConfig, error) {
	return newConfigBuilder().
		withFlags(flagCfg).
		withEnv().
		withJSON().
		withDefaults().
		build()
}
