// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the papercloud command-line application.
//
// It wires configuration, logging, the API adapter, the local record cache
// and the client services into cobra commands:
//
//	papercloud register   create an account and print the recovery key
//	papercloud shell      log in and manage collections and files
//	papercloud version    print build information
//
// The interactive shell owns one session. Background token refresh runs
// while the session is authenticated and stops on logout.
package client
