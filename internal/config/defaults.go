// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			LogLevel: "info",
		},
		Adapter: Adapter{
			HTTPAddress:      "http://localhost:8000",
			RequestTimeout:   60 * time.Second,
			RetryCount:       3,
			RetryWaitTime:    500 * time.Millisecond,
			RetryMaxWaitTime: 5 * time.Second,
		},
		Storage: Storage{
			DB: DB{DSN: "papercloud.db"},
		},
		Workers: Workers{
			RefreshCheckInterval: time.Minute,
			RefreshLeeway:        2 * time.Minute,
		},
		Transfer: Transfer{
			MaxConcurrent: 4,
			MaxFileSize:   256 << 20, // 256 MiB
		},
	}
}
