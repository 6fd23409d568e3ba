// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package testserver

import (
	"cmp"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-paper-cloud/internal/app"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/utils"
	"github.com/MKhiriev/go-paper-cloud/models"
)

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	s.mu.Lock()
	result := make([]models.Collection, 0)
	for _, row := range s.collections {
		if row.owner == owner {
			result = append(result, row.collection)
		}
	}
	s.mu.Unlock()

	slices.SortFunc(result, func(a, b models.Collection) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	_, _ = utils.WriteJSON(w, result, http.StatusOK)
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	owner := ownerFromContext(r.Context())

	var c models.Collection
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		log.Err(err).Str("func", "*Server.createCollection").Msg("invalid JSON was passed")
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}
	if !c.Type.IsValid() || c.EncryptedName == "" || c.EncryptedCollectionKey == "" {
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	now := s.now().UTC()
	c.ID = s.ids.Generate()
	c.CreatedAt, c.UpdatedAt = now, now
	s.collections[c.ID] = &collectionRow{owner: owner, collection: c}
	s.mu.Unlock()

	_, _ = utils.WriteJSON(w, c, http.StatusCreated)
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	s.mu.Lock()
	row, ok := s.ownedCollection(owner, chi.URLParam(r, "id"))
	var c models.Collection
	if ok {
		c = row.collection
	}
	s.mu.Unlock()

	if !ok {
		utils.WriteError(w, app.MsgCollectionNotFound, http.StatusNotFound)
		return
	}
	_, _ = utils.WriteJSON(w, c, http.StatusOK)
}

// updateCollection only replaces the sealed name. The wrapped key and the
// type are fixed at creation.
func (s *Server) updateCollection(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	var in models.Collection
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.EncryptedName == "" {
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	row, ok := s.ownedCollection(owner, chi.URLParam(r, "id"))
	var c models.Collection
	if ok {
		row.collection.EncryptedName = in.EncryptedName
		row.collection.UpdatedAt = s.now().UTC()
		c = row.collection
	}
	s.mu.Unlock()

	if !ok {
		utils.WriteError(w, app.MsgCollectionNotFound, http.StatusNotFound)
		return
	}
	_, _ = utils.WriteJSON(w, c, http.StatusOK)
}

func (s *Server) deleteCollection(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.ownedCollection(owner, id)
	if ok {
		delete(s.collections, id)
		for fileID, f := range s.files {
			if f.record.CollectionID == id {
				delete(s.files, fileID)
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		utils.WriteError(w, app.MsgCollectionNotFound, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedCollection must be called with s.mu held. A collection of another
// account is reported as missing.
func (s *Server) ownedCollection(owner, id string) (*collectionRow, bool) {
	row, ok := s.collections[id]
	if !ok || row.owner != owner {
		return nil, false
	}
	return row, true
}
