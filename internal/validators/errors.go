// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidEmail          = errors.New("invalid email")
	ErrEmptyPassword         = errors.New("password is required")
	ErrPasswordTooLong       = errors.New("password is too long")
	ErrInvalidTimezone       = errors.New("invalid timezone")
	ErrEmptyName             = errors.New("name is required")
	ErrNameTooLong           = errors.New("name is too long")
	ErrInvalidName           = errors.New("name contains path separators or control characters")
	ErrInvalidCollectionType = errors.New("invalid collection type")
	ErrEmptyCollectionID     = errors.New("collection id is required")
	ErrSizeMismatch          = errors.New("metadata size does not match content length")
	ErrFileTooLarge          = errors.New("file exceeds the size limit")
	ErrInvalidMimeType       = errors.New("invalid mime type")
	ErrEmptyID               = errors.New("id is required")
	ErrEmptyFileKey          = errors.New("encrypted file key is required")
	ErrEmptyMetadata         = errors.New("encrypted metadata is required")
	ErrInvalidContentHash    = errors.New("invalid content hash")
	ErrInvalidEncryptedSize  = errors.New("invalid encrypted size")
)
