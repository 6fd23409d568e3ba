// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"strings"
	"testing"

	"github.com/MKhiriev/go-paper-cloud/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func validRegister() models.RegisterInput {
	return models.RegisterInput{
		Email:    "alice@example.com",
		Password: "correct-horse-battery",
		Timezone: "UTC",
	}
}

func validUpload() models.UploadInput {
	content := []byte("hello")
	return models.UploadInput{
		CollectionID: "c1",
		Content:      content,
		Metadata: models.FileMetadata{
			Name:     "hello.txt",
			MimeType: "text/plain; charset=utf-8",
			Size:     int64(len(content)),
		},
	}
}

func validRecord() models.FileRecord {
	return models.FileRecord{
		ID:                "f1",
		CollectionID:      "c1",
		EncryptedFileKey:  "a2V5",
		EncryptedMetadata: "bWV0YQ==",
		ContentHash:       strings.Repeat("ab", 32),
		EncryptedSize:     100,
	}
}

// ---------------------------------------------------------------------------
// Validate dispatch
// ---------------------------------------------------------------------------

func TestValidate_UnsupportedType(t *testing.T) {
	v := NewClientInputValidator(0)
	assert.ErrorIs(t, v.Validate(context.Background(), 42), ErrUnsupportedType)
}

func TestValidate_UnknownField(t *testing.T) {
	v := NewClientInputValidator(0)
	assert.ErrorIs(t, v.Validate(context.Background(), validRegister(), "nickname"), ErrUnknownField)
}

func TestValidate_PointerAndValue(t *testing.T) {
	v := NewClientInputValidator(0)
	in := validRegister()

	require.NoError(t, v.Validate(context.Background(), in))
	require.NoError(t, v.Validate(context.Background(), &in))
}

// ---------------------------------------------------------------------------
// RegisterInput
// ---------------------------------------------------------------------------

func TestValidate_RegisterInput(t *testing.T) {
	v := NewClientInputValidator(0)

	tests := []struct {
		name    string
		mutate  func(*models.RegisterInput)
		wantErr error
	}{
		{name: "valid", mutate: func(*models.RegisterInput) {}},
		{name: "empty timezone is fine", mutate: func(in *models.RegisterInput) { in.Timezone = "" }},
		{name: "bad email", mutate: func(in *models.RegisterInput) { in.Email = "alice" }, wantErr: ErrInvalidEmail},
		{name: "display name email", mutate: func(in *models.RegisterInput) { in.Email = "Alice <alice@example.com>" }, wantErr: ErrInvalidEmail},
		{name: "empty password", mutate: func(in *models.RegisterInput) { in.Password = "" }, wantErr: ErrEmptyPassword},
		{name: "huge password", mutate: func(in *models.RegisterInput) { in.Password = strings.Repeat("x", 2000) }, wantErr: ErrPasswordTooLong},
		{name: "bad timezone", mutate: func(in *models.RegisterInput) { in.Timezone = "Mars/Olympus" }, wantErr: ErrInvalidTimezone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegister()
			tt.mutate(&in)
			err := v.Validate(context.Background(), in)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_OTTRequest(t *testing.T) {
	v := NewClientInputValidator(0)
	assert.NoError(t, v.Validate(context.Background(), models.OTTRequest{Email: "bob@example.org"}))
	assert.ErrorIs(t, v.Validate(context.Background(), models.OTTRequest{Email: ""}), ErrInvalidEmail)
}

// ---------------------------------------------------------------------------
// CollectionInput
// ---------------------------------------------------------------------------

func TestValidate_CollectionInput(t *testing.T) {
	v := NewClientInputValidator(0)
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, models.CollectionInput{Name: "Holidays 2026", Type: models.CollectionTypeAlbum}))
	assert.ErrorIs(t, v.Validate(ctx, models.CollectionInput{Name: " ", Type: models.CollectionTypeFolder}), ErrEmptyName)
	assert.ErrorIs(t, v.Validate(ctx, models.CollectionInput{Name: "a/b", Type: models.CollectionTypeFolder}), ErrInvalidName)
	assert.ErrorIs(t, v.Validate(ctx, models.CollectionInput{Name: "ok", Type: "bucket"}), ErrInvalidCollectionType)

	// переименование проверяет только имя
	assert.NoError(t, v.Validate(ctx, models.CollectionInput{Name: "renamed"}, FieldName))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("отчёт.pdf"))
	assert.ErrorIs(t, ValidateName(".."), ErrInvalidName)
	assert.ErrorIs(t, ValidateName("a\x00b"), ErrInvalidName)
	assert.ErrorIs(t, ValidateName("bad\xff"), ErrInvalidName)
	assert.ErrorIs(t, ValidateName(strings.Repeat("я", 256)), ErrNameTooLong)
}

// ---------------------------------------------------------------------------
// UploadInput
// ---------------------------------------------------------------------------

func TestValidate_UploadInput(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		limit   int64
		mutate  func(*models.UploadInput)
		wantErr error
	}{
		{name: "valid", mutate: func(*models.UploadInput) {}},
		{name: "no collection", mutate: func(in *models.UploadInput) { in.CollectionID = "" }, wantErr: ErrEmptyCollectionID},
		{name: "no name", mutate: func(in *models.UploadInput) { in.Metadata.Name = "" }, wantErr: ErrEmptyName},
		{name: "bad mime", mutate: func(in *models.UploadInput) { in.Metadata.MimeType = "text/;;" }, wantErr: ErrInvalidMimeType},
		{name: "size mismatch", mutate: func(in *models.UploadInput) { in.Metadata.Size = 99 }, wantErr: ErrSizeMismatch},
		{name: "too large", limit: 4, mutate: func(*models.UploadInput) {}, wantErr: ErrFileTooLarge},
		{name: "empty file", mutate: func(in *models.UploadInput) { in.Content = nil; in.Metadata.Size = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validUpload()
			tt.mutate(&in)
			err := NewClientInputValidator(tt.limit).Validate(ctx, in)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// FileRecord
// ---------------------------------------------------------------------------

func TestValidate_FileRecord(t *testing.T) {
	v := NewClientInputValidator(0)
	ctx := context.Background()

	require.NoError(t, v.Validate(ctx, validRecord()))

	r := validRecord()
	r.ContentHash = "abc"
	assert.ErrorIs(t, v.Validate(ctx, r), ErrInvalidContentHash)

	r = validRecord()
	r.EncryptedSize = 10
	assert.ErrorIs(t, v.Validate(ctx, r), ErrInvalidEncryptedSize)

	r = validRecord()
	r.EncryptedFileKey = ""
	assert.ErrorIs(t, v.Validate(ctx, &r), ErrEmptyFileKey)

	// запись до загрузки: id ещё не назначен сервером
	r = validRecord()
	r.ID = ""
	assert.NoError(t, v.Validate(ctx, r, FieldCollectionID, FieldEncryptedFileKey, FieldEncryptedMetadata, FieldContentHash, FieldEncryptedSize))
	assert.ErrorIs(t, v.Validate(ctx, r), ErrEmptyID)
}
