// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by the record cache. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrEmptyOwner is returned when a cache method is called without the
	// account email that scopes every row.
	ErrEmptyOwner = errors.New("cache owner is required")

	// ErrRecordNotFound is returned when a delete targets a row that is not
	// cached for the owner.
	ErrRecordNotFound = errors.New("cached record was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// cache methods when a SQL-level operation fails.
var (
	// ErrBuildingSQLQuery is returned when squirrel cannot render a query.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails.
	ErrScanningRows = errors.New("failed to scan cached rows")
)
