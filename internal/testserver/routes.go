// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package testserver

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.withRequestID)
	router.Use(s.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/request-ott", s.requestOTT)
		r.Post("/verify-ott", s.verifyOTT)
		r.Post("/complete-login", s.completeLogin)
		r.Post("/token/refresh", s.refreshToken)
	})

	// routes with authorization
	router.Group(func(r chi.Router) {
		r.Use(s.auth)

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", s.listCollections)
			r.Post("/", s.createCollection)
			r.Get("/{id}", s.getCollection)
			r.Put("/{id}", s.updateCollection)
			r.Delete("/{id}", s.deleteCollection)
			r.Get("/{id}/files", s.listFiles)
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/", s.createFile)
			r.Get("/{id}", s.getFile)
			r.Delete("/{id}", s.deleteFile)
			r.Post("/{id}/data", s.uploadFileData)
			r.Get("/{id}/data", s.downloadFileData)
		})
	})

	return router
}
