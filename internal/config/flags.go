// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers all configuration flags on fs and returns the struct
// they write into. Pass the result to [GetClientConfig] after fs has been
// parsed (cobra does this before running a command).
//
// Flags:
//
//	-s, --server            API base URL
//	    --request-timeout   request timeout (e.g. "30s", "1m")
//	    --retry-count       retries for idempotent reads (negative disables)
//	-d, --db                local record cache DSN
//	-c, --config            JSON file path with configs
//	-e, --email             account email
//	    --log-file          log file path
//	    --log-level         log level (debug, info, warn, error)
//	    --max-concurrent    parallel uploads in a batch
//	    --refresh-interval  token refresh check interval
func BindFlags(fs *pflag.FlagSet) *StructuredConfig {
	cfg := &StructuredConfig{}

	fs.StringVarP(&cfg.Adapter.HTTPAddress, "server", "s", "", "API base URL")
	fs.DurationVar(&cfg.Adapter.RequestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.IntVar(&cfg.Adapter.RetryCount, "retry-count", 0, "Retries for idempotent reads (negative disables)")
	fs.StringVarP(&cfg.Storage.DB.DSN, "db", "d", "", "Local record cache DSN")
	fs.StringVarP(&cfg.JSONFilePath, "config", "c", "", "JSON config file path")
	fs.StringVarP(&cfg.App.Email, "email", "e", "", "Account email")
	fs.StringVar(&cfg.App.LogFile, "log-file", "", "Log file path")
	fs.StringVar(&cfg.App.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.IntVar(&cfg.Transfer.MaxConcurrent, "max-concurrent", 0, "Parallel uploads in a batch")
	fs.DurationVar(&cfg.Workers.RefreshCheckInterval, "refresh-interval", 0, "Token refresh check interval")

	return cfg
}
