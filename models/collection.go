// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// CollectionType is the kind of a collection.
type CollectionType string

const (
	CollectionTypeFolder CollectionType = "folder"
	CollectionTypeAlbum  CollectionType = "album"
)

// IsValid reports whether t is a known collection type.
func (t CollectionType) IsValid() bool {
	return t == CollectionTypeFolder || t == CollectionTypeAlbum
}

// Collection is the server-side record of a folder or album. The collection
// key is stored only wrapped under the owner's master key and the name only
// sealed under the collection key.
type Collection struct {
	ID   string         `json:"id"`
	Type CollectionType `json:"type"`

	// EncryptedName is the collection name sealed under the collection key.
	EncryptedName string `json:"encrypted_name"`

	// EncryptedCollectionKey is the collection key wrapped under the master
	// key, encoded as base64(nonce ‖ ciphertext).
	EncryptedCollectionKey string `json:"encrypted_collection_key"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DecryptedCollection is a collection whose name has been opened.
type DecryptedCollection struct {
	ID        string
	Type      CollectionType
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CollectionName is the JSON document sealed into Collection.EncryptedName.
type CollectionName struct {
	Name string `json:"name"`
}

// CollectionInput is what the user supplies to create or rename a collection.
type CollectionInput struct {
	Name string
	Type CollectionType
}
