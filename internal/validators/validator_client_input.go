// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/hex"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
	"github.com/MKhiriev/go-paper-cloud/models"
)

// Field name constants used to restrict Validate to a subset of checks.
const (
	FieldEmail             = "email"
	FieldPassword          = "password"
	FieldTimezone          = "timezone"
	FieldName              = "name"
	FieldType              = "type"
	FieldCollectionID      = "collection_id"
	FieldSize              = "size"
	FieldMimeType          = "mime_type"
	FieldID                = "id"
	FieldEncryptedFileKey  = "encrypted_file_key"
	FieldEncryptedMetadata = "encrypted_metadata"
	FieldContentHash       = "content_hash"
	FieldEncryptedSize     = "encrypted_size"
)

const (
	maxNameLength     = 255
	maxPasswordLength = 1024
)

// ClientInputValidator checks what the user types before anything is
// encrypted, and what the server returns before anything is decrypted.
type ClientInputValidator struct {
	maxFileSize int64
}

// NewClientInputValidator returns a Validator for register, collection,
// upload and file-record values. maxFileSize <= 0 disables the size limit.
func NewClientInputValidator(maxFileSize int64) Validator {
	return &ClientInputValidator{maxFileSize: maxFileSize}
}

type check func() error

func (v *ClientInputValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.RegisterInput:
		return run(v.registerChecks(value), fields)
	case *models.RegisterInput:
		return run(v.registerChecks(*value), fields)

	case models.OTTRequest:
		return run(map[string]check{FieldEmail: func() error { return validateEmail(value.Email) }}, fields)

	case models.CollectionInput:
		return run(v.collectionChecks(value), fields)
	case *models.CollectionInput:
		return run(v.collectionChecks(*value), fields)

	case models.UploadInput:
		return run(v.uploadChecks(value), fields)
	case *models.UploadInput:
		return run(v.uploadChecks(*value), fields)

	case models.FileRecord:
		return run(v.fileRecordChecks(value), fields)
	case *models.FileRecord:
		return run(v.fileRecordChecks(*value), fields)

	default:
		return ErrUnsupportedType
	}
}

// run executes the checks named in fields, or every check in a fixed order
// when fields is empty.
func run(checks map[string]check, fields []string) error {
	if len(fields) == 0 {
		for _, name := range fieldOrder {
			if c, ok := checks[name]; ok {
				if err := c(); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, name := range fields {
		c, ok := checks[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

var fieldOrder = []string{
	FieldID, FieldEmail, FieldPassword, FieldTimezone, FieldCollectionID,
	FieldName, FieldType, FieldMimeType, FieldSize,
	FieldEncryptedFileKey, FieldEncryptedMetadata, FieldContentHash, FieldEncryptedSize,
}

func (v *ClientInputValidator) registerChecks(in models.RegisterInput) map[string]check {
	return map[string]check{
		FieldEmail: func() error { return validateEmail(in.Email) },
		FieldPassword: func() error {
			if in.Password == "" {
				return ErrEmptyPassword
			}
			if len(in.Password) > maxPasswordLength {
				return ErrPasswordTooLong
			}
			return nil
		},
		FieldTimezone: func() error {
			if in.Timezone == "" {
				return nil
			}
			if _, err := time.LoadLocation(in.Timezone); err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidTimezone, in.Timezone)
			}
			return nil
		},
	}
}

func (v *ClientInputValidator) collectionChecks(in models.CollectionInput) map[string]check {
	return map[string]check{
		FieldName: func() error { return ValidateName(in.Name) },
		FieldType: func() error {
			if !in.Type.IsValid() {
				return fmt.Errorf("%w: %q", ErrInvalidCollectionType, in.Type)
			}
			return nil
		},
	}
}

func (v *ClientInputValidator) uploadChecks(in models.UploadInput) map[string]check {
	return map[string]check{
		FieldCollectionID: func() error {
			if strings.TrimSpace(in.CollectionID) == "" {
				return ErrEmptyCollectionID
			}
			return nil
		},
		FieldName: func() error { return ValidateName(in.Metadata.Name) },
		FieldMimeType: func() error {
			if in.Metadata.MimeType == "" {
				return nil
			}
			if _, _, err := mime.ParseMediaType(in.Metadata.MimeType); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidMimeType, err)
			}
			return nil
		},
		FieldSize: func() error {
			if in.Metadata.Size != int64(len(in.Content)) {
				return fmt.Errorf("%w: %d != %d", ErrSizeMismatch, in.Metadata.Size, len(in.Content))
			}
			if v.maxFileSize > 0 && int64(len(in.Content)) > v.maxFileSize {
				return fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(in.Content), v.maxFileSize)
			}
			return nil
		},
	}
}

func (v *ClientInputValidator) fileRecordChecks(r models.FileRecord) map[string]check {
	return map[string]check{
		FieldID: func() error {
			if r.ID == "" {
				return ErrEmptyID
			}
			return nil
		},
		FieldCollectionID: func() error {
			if r.CollectionID == "" {
				return ErrEmptyCollectionID
			}
			return nil
		},
		FieldEncryptedFileKey: func() error {
			if r.EncryptedFileKey == "" {
				return ErrEmptyFileKey
			}
			return nil
		},
		FieldEncryptedMetadata: func() error {
			if r.EncryptedMetadata == "" {
				return ErrEmptyMetadata
			}
			return nil
		},
		FieldContentHash: func() error {
			b, err := hex.DecodeString(r.ContentHash)
			if err != nil || len(b) != 32 {
				return fmt.Errorf("%w: %q", ErrInvalidContentHash, r.ContentHash)
			}
			return nil
		},
		FieldEncryptedSize: func() error {
			if r.EncryptedSize < crypto.NonceSize+crypto.Overhead {
				return fmt.Errorf("%w: %d", ErrInvalidEncryptedSize, r.EncryptedSize)
			}
			return nil
		},
	}
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// ValidateName accepts any printable name that is safe to use as a file name
// on download.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if !utf8.ValidString(name) {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return ErrNameTooLong
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return ErrInvalidName
		}
	}
	return nil
}
