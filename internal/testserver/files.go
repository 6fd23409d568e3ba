// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package testserver

import (
	"cmp"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-paper-cloud/internal/app"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/utils"
	"github.com/MKhiriev/go-paper-cloud/models"
)

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())
	collectionID := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.ownedCollection(owner, collectionID)
	result := make([]models.FileRecord, 0)
	if ok {
		for _, f := range s.files {
			if f.record.CollectionID == collectionID {
				result = append(result, f.record)
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		utils.WriteError(w, app.MsgCollectionNotFound, http.StatusNotFound)
		return
	}

	slices.SortFunc(result, func(a, b models.FileRecord) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	_, _ = utils.WriteJSON(w, result, http.StatusOK)
}

func (s *Server) createFile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	owner := ownerFromContext(r.Context())

	var record models.FileRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		log.Err(err).Str("func", "*Server.createFile").Msg("invalid JSON was passed")
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}
	if record.EncryptedFileKey == "" || record.EncryptedMetadata == "" || record.EncryptionVersion == "" ||
		record.ContentHash == "" || record.EncryptedSize <= 0 {
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ownedCollection(owner, record.CollectionID); !ok {
		utils.WriteError(w, app.MsgCollectionNotFound, http.StatusNotFound)
		return
	}

	now := s.now().UTC()
	record.ID = s.ids.Generate()
	record.CreatedAt, record.ModifiedAt = now, now
	s.files[record.ID] = &fileRow{owner: owner, record: record}

	_, _ = utils.WriteJSON(w, record, http.StatusCreated)
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	s.mu.Lock()
	f, ok := s.ownedFile(owner, chi.URLParam(r, "id"))
	var record models.FileRecord
	if ok {
		record = f.record
	}
	s.mu.Unlock()

	if !ok {
		utils.WriteError(w, app.MsgFileNotFound, http.StatusNotFound)
		return
	}
	_, _ = utils.WriteJSON(w, record, http.StatusOK)
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	if status, fail := popStatus(&s.failDeletes); fail {
		s.mu.Unlock()
		utils.WriteError(w, http.StatusText(status), status)
		return
	}
	_, ok := s.ownedFile(owner, id)
	if ok {
		delete(s.files, id)
	}
	s.mu.Unlock()

	if !ok {
		utils.WriteError(w, app.MsgFileNotFound, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) uploadFileData(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	owner := ownerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	blob, err := io.ReadAll(r.Body)
	if err != nil {
		log.Err(err).Str("func", "*Server.uploadFileData").Msg("error reading body")
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if status, fail := popStatus(&s.failUploads); fail {
		utils.WriteError(w, http.StatusText(status), status)
		return
	}

	f, ok := s.ownedFile(owner, id)
	if !ok {
		utils.WriteError(w, app.MsgFileNotFound, http.StatusNotFound)
		return
	}
	if f.blob != nil {
		utils.WriteError(w, app.MsgFileDataExists, http.StatusConflict)
		return
	}
	if int64(len(blob)) != f.record.EncryptedSize || utils.ContentHash(blob) != f.record.ContentHash {
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	f.blob = blob
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) downloadFileData(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	s.mu.Lock()
	f, ok := s.ownedFile(owner, chi.URLParam(r, "id"))
	var blob []byte
	if ok && f.blob != nil {
		blob = append([]byte(nil), f.blob...)
	}
	s.mu.Unlock()

	switch {
	case !ok:
		utils.WriteError(w, app.MsgFileNotFound, http.StatusNotFound)
		return
	case blob == nil:
		utils.WriteError(w, app.MsgFileDataMissing, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

// ownedFile must be called with s.mu held.
func (s *Server) ownedFile(owner, id string) (*fileRow, bool) {
	f, ok := s.files[id]
	if !ok || f.owner != owner {
		return nil, false
	}
	return f, true
}
