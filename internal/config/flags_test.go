// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlags_ParsesAllFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := BindFlags(fs)

	err := fs.Parse([]string{
		"-s", "http://localhost:9000",
		"--request-timeout", "15s",
		"--retry-count", "2",
		"-d", "/tmp/cache.db",
		"-c", "/etc/pc.json",
		"-e", "bob@example.com",
		"--log-file", "/tmp/pc.log",
		"--log-level", "warn",
		"--max-concurrent", "3",
		"--refresh-interval", "30s",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 15*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 2, cfg.Adapter.RetryCount)
	assert.Equal(t, "/tmp/cache.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "/etc/pc.json", cfg.JSONFilePath)
	assert.Equal(t, "bob@example.com", cfg.App.Email)
	assert.Equal(t, "/tmp/pc.log", cfg.App.LogFile)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, 3, cfg.Transfer.MaxConcurrent)
	assert.Equal(t, 30*time.Second, cfg.Workers.RefreshCheckInterval)
}

func TestBindFlags_UnsetFlagsStayZero(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := BindFlags(fs)

	require.NoError(t, fs.Parse(nil))
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestBindFlags_InvalidDuration(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)

	err := fs.Parse([]string{"--request-timeout", "forever"})
	assert.Error(t, err)
}
