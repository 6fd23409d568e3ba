// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs an HTTP handler until its context is cancelled.
//
// It is used by the development API server: the listener is bound when the
// server is created, so callers can learn the address before serving, and
// shutdown waits for in-flight requests.
package server
