// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package session holds the in-memory state of one signed-in account: the
// bearer tokens and the unwrapped key material.
//
// A [Session] is created once per process and injected into the adapter and
// the services. Nothing else keeps raw keys beyond a single call. Accessors
// hand out copies; callers wipe them with [crypto.Wipe] when done.
//
// Invalidation is signalled through a channel rather than callbacks:
//
//	select {
//	case <-sess.Invalidated():
//		// 401 from the server, refresh failure or logout
//	case <-ctx.Done():
//	}
package session

import (
	"errors"
	"sync"

	"github.com/MKhiriev/go-paper-cloud/internal/crypto"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/models"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrLoggedOut        = errors.New("logged out")
	ErrNoCollectionKey  = errors.New("collection is locked")
)

// Session is safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	email  string
	tokens models.SessionTokens

	masterKey  []byte
	privateKey []byte
	publicKey  []byte

	// collectionKeys maps collection id to its unwrapped key.
	collectionKeys map[string][]byte

	done   chan struct{}
	closed bool
	reason error

	logger *logger.Logger
}

func New(log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		collectionKeys: make(map[string][]byte),
		done:           make(chan struct{}),
		logger:         log,
	}
}

// Authenticate installs the result of a successful login. The session takes
// ownership of the key slices; the caller must not wipe or reuse them.
//
// If the session was invalidated before, a fresh Invalidated channel is
// created so that a new login starts a new lifetime.
func (s *Session) Authenticate(email string, tokens models.SessionTokens, masterKey, privateKey, publicKey []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wipeLocked()
	if s.closed {
		s.done = make(chan struct{})
		s.closed = false
		s.reason = nil
	}

	s.email = email
	s.tokens = tokens
	s.masterKey = masterKey
	s.privateKey = privateKey
	s.publicKey = publicKey
}

// IsAuthenticated reports whether the session holds tokens and a master key.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed && !s.tokens.IsZero() && s.masterKey != nil
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

func (s *Session) Tokens() models.SessionTokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// SetTokens replaces the tokens after a refresh. It is a no-op on an
// invalidated session so a late refresh cannot revive it.
func (s *Session) SetTokens(tokens models.SessionTokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.tokens = tokens
}

// AccessToken returns the current bearer token, or "" when there is none.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ""
	}
	return s.tokens.AccessToken
}

// MasterKey returns a copy of the master key.
func (s *Session) MasterKey() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked(s.masterKey)
}

// PrivateKey returns a copy of the X25519 private key.
func (s *Session) PrivateKey() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked(s.privateKey)
}

func (s *Session) PublicKey() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked(s.publicKey)
}

// SetCollectionKey stores a copy of key for collectionID, replacing and
// wiping any previous key.
func (s *Session) SetCollectionKey(collectionID string, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.masterKey == nil {
		return s.errLocked()
	}

	if old, ok := s.collectionKeys[collectionID]; ok {
		crypto.Wipe(old)
	}
	s.collectionKeys[collectionID] = append([]byte(nil), key...)
	return nil
}

// CollectionKey returns a copy of the unlocked key of collectionID, or
// [ErrNoCollectionKey] when the collection was not unlocked in this session.
func (s *Session) CollectionKey(collectionID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || s.masterKey == nil {
		return nil, s.errLocked()
	}

	key, ok := s.collectionKeys[collectionID]
	if !ok {
		return nil, ErrNoCollectionKey
	}
	return append([]byte(nil), key...), nil
}

// ForgetCollectionKey wipes and drops the key of a deleted collection.
func (s *Session) ForgetCollectionKey(collectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key, ok := s.collectionKeys[collectionID]; ok {
		crypto.Wipe(key)
		delete(s.collectionKeys, collectionID)
	}
}

// Invalidated returns a channel that is closed when the current session
// lifetime ends.
func (s *Session) Invalidated() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done
}

// Err returns why the session ended, or nil while it is alive.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reason
}

// Invalidate ends the session: every key is wiped, the tokens are dropped and
// the Invalidated channel is closed. Only the first call has an effect.
func (s *Session) Invalidate(reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if reason == nil {
		reason = ErrLoggedOut
	}

	s.wipeLocked()
	s.closed = true
	s.reason = reason
	close(s.done)

	s.logger.Info().Str("email", logger.CensorEmail(s.email)).Str("reason", reason.Error()).Msg("session invalidated")
}

// Logout is Invalidate with [ErrLoggedOut].
func (s *Session) Logout() {
	s.Invalidate(ErrLoggedOut)
}

func (s *Session) wipeLocked() {
	crypto.Wipe(s.masterKey, s.privateKey)
	for id, key := range s.collectionKeys {
		crypto.Wipe(key)
		delete(s.collectionKeys, id)
	}
	s.masterKey = nil
	s.privateKey = nil
	s.publicKey = nil
	s.tokens = models.SessionTokens{}
}

func (s *Session) copyLocked(key []byte) ([]byte, error) {
	if s.closed || key == nil {
		return nil, s.errLocked()
	}
	return append([]byte(nil), key...), nil
}

func (s *Session) errLocked() error {
	if s.closed && s.reason != nil {
		return errors.Join(ErrNotAuthenticated, s.reason)
	}
	return ErrNotAuthenticated
}
