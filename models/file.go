// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// EncryptionVersionV1 is the envelope format tag of every record written by
// this client: XSalsa20-Poly1305, 24-byte nonce, nonce ‖ ciphertext framing,
// standard base64 for text fields. Records with any other tag are rejected.
const EncryptionVersionV1 = "1"

// FileRecord is the server-side record of an uploaded file. The encrypted
// content itself is stored separately as a binary blob under the same ID.
type FileRecord struct {
	ID           string `json:"id"`
	CollectionID string `json:"collection_id"`

	// EncryptedFileKey is the file key wrapped under the collection key.
	EncryptedFileKey string `json:"encrypted_file_key"`

	// EncryptedMetadata is the JSON [FileMetadata] sealed under the file key.
	EncryptedMetadata string `json:"encrypted_metadata"`

	// EncryptionVersion selects the envelope format.
	EncryptionVersion string `json:"encryption_version"`

	// ContentHash is the hex SHA-256 of the stored blob (nonce ‖ ciphertext).
	ContentHash string `json:"content_hash"`

	// EncryptedSize is the blob length in bytes.
	EncryptedSize int64 `json:"encrypted_size"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// FileMetadata is the plaintext description of a file. It is only ever
// transmitted sealed under the file key.
type FileMetadata struct {
	Name        string            `json:"name"`
	MimeType    string            `json:"mime_type"`
	Size        int64             `json:"size"`
	CreatedAt   time.Time         `json:"created_at"`
	ModifiedAt  time.Time         `json:"modified_at"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Custom      map[string]string `json:"custom_metadata,omitempty"`
}

// UploadInput is the request of the upload flow. A zero Metadata.Size is
// filled from len(Content).
type UploadInput struct {
	CollectionID string
	Content      []byte
	Metadata     FileMetadata
}

// DecryptedFile is a file record whose metadata has been opened.
type DecryptedFile struct {
	ID           string
	CollectionID string
	Metadata     FileMetadata
	CreatedAt    time.Time
	ModifiedAt   time.Time
}
