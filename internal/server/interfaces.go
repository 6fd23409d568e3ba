// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "context"

// Server defines the lifecycle contract of a transport server managed by
// this package.
type Server interface {
	// Run serves requests and blocks until ctx is cancelled or serving
	// fails. Cancellation triggers a graceful shutdown; Run returns nil
	// once it completes.
	Run(ctx context.Context) error

	// Addr is the address the listener is bound to, e.g. "127.0.0.1:8000".
	Addr() string
}
