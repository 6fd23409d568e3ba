// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package testserver is an in-memory implementation of the papercloud API.
// It stores only what a real server would see: wrapped keys, sealed names,
// sealed metadata and opaque content blobs. It is used by the end-to-end
// tests and by the hidden dev-server command of the CLI.
package testserver

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/utils"
	"github.com/MKhiriev/go-paper-cloud/models"
)

const (
	defaultIssuer       = "papercloud-testserver"
	defaultAccessTTL    = 15 * time.Minute
	defaultRefreshTTL   = 24 * time.Hour
	defaultChallengeTTL = 5 * time.Minute
	challengeSize       = 32
)

type account struct {
	registration models.RegistrationPayload
	createdAt    time.Time
}

type challenge struct {
	id        string
	email     string
	plain     []byte
	expiresAt time.Time
	used      bool
}

type collectionRow struct {
	owner      string
	collection models.Collection
}

type fileRow struct {
	owner  string
	record models.FileRecord
	blob   []byte
}

// Server is safe for concurrent use.
type Server struct {
	mu sync.Mutex

	accounts    map[string]*account
	otts        map[string]string
	challenges  map[string]*challenge
	collections map[string]*collectionRow
	files       map[string]*fileRow

	// status codes to answer the next blob upload / file delete with
	failUploads []int
	failDeletes []int

	signKey      string
	issuer       string
	accessTTL    time.Duration
	refreshTTL   time.Duration
	challengeTTL time.Duration
	now          func() time.Time
	deliverOTT   func(email, ott string)

	ids    *utils.UUIDGenerator
	logger *logger.Logger
}

// Option configures a [Server].
type Option func(*Server)

// WithAccessTTL sets the lifetime of issued access tokens.
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// WithChallengeTTL sets how long a login challenge stays valid.
func WithChallengeTTL(d time.Duration) Option {
	return func(s *Server) { s.challengeTTL = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Server) { s.logger = log }
}

// WithOTTDelivery is called with every issued one-time token instead of
// sending an email.
func WithOTTDelivery(deliver func(email, ott string)) Option {
	return func(s *Server) { s.deliverOTT = deliver }
}

func New(opts ...Option) *Server {
	s := &Server{
		accounts:     make(map[string]*account),
		otts:         make(map[string]string),
		challenges:   make(map[string]*challenge),
		collections:  make(map[string]*collectionRow),
		files:        make(map[string]*fileRow),
		signKey:      rand.Text(),
		issuer:       defaultIssuer,
		accessTTL:    defaultAccessTTL,
		refreshTTL:   defaultRefreshTTL,
		challengeTTL: defaultChallengeTTL,
		now:          time.Now,
		ids:          utils.NewUUIDGenerator(),
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// LastOTT returns the one-time token most recently issued to email, as if
// read from the user's mailbox.
func (s *Server) LastOTT(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ott, ok := s.otts[email]
	return ott, ok
}

// Registration returns the payload email registered with.
func (s *Server) Registration(email string) (models.RegistrationPayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	if !ok {
		return models.RegistrationPayload{}, false
	}
	return a.registration, true
}

// FileCount returns how many file records exist across all accounts.
func (s *Server) FileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Blob returns a copy of the stored content blob of a file.
func (s *Server) Blob(fileID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[fileID]
	if !ok || f.blob == nil {
		return nil, false
	}
	return append([]byte(nil), f.blob...), true
}

// TamperBlob lets tests modify a stored blob in place.
func (s *Server) TamperBlob(fileID string, fn func([]byte)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[fileID]
	if !ok || f.blob == nil {
		return false
	}
	fn(f.blob)
	return true
}

// TamperRecord lets tests modify a stored file record.
func (s *Server) TamperRecord(fileID string, fn func(*models.FileRecord)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[fileID]
	if !ok {
		return false
	}
	fn(&f.record)
	return true
}

// RevokeTokens rotates the signing key so that every issued token is
// rejected from now on.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signKey = rand.Text()
}

func (s *Server) currentSignKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signKey
}

// FailNextUpload makes the next blob upload answer with status.
func (s *Server) FailNextUpload(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUploads = append(s.failUploads, status)
}

// FailNextDelete makes the next file delete answer with status.
func (s *Server) FailNextDelete(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDeletes = append(s.failDeletes, status)
}

func popStatus(queue *[]int) (int, bool) {
	if len(*queue) == 0 {
		return 0, false
	}
	status := (*queue)[0]
	*queue = (*queue)[1:]
	return status, true
}

func newOTT() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
