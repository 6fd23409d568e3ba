// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-paper-cloud/internal/config"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/session"
	"github.com/MKhiriev/go-paper-cloud/internal/workers"
)

const (
	defaultRefreshCheckInterval = 30 * time.Second
	defaultRefreshLeeway        = 2 * time.Minute
)

type clientRefreshJob struct {
	auth     ClientAuthService
	session  *session.Session
	interval time.Duration
	leeway   time.Duration
	now      func() time.Time
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClientRefreshJob creates a worker that keeps the session's access token
// fresh. The job is idle until Start is called.
func NewClientRefreshJob(auth ClientAuthService, sess *session.Session, cfg config.ClientWorkers, log *logger.Logger) workers.Worker {
	if log == nil {
		log = logger.Nop()
	}
	return &clientRefreshJob{
		auth:     auth,
		session:  sess,
		interval: cfg.RefreshCheckInterval,
		leeway:   cfg.RefreshLeeway,
		now:      time.Now,
		logger:   log,
	}
}

// Start stops any previously running job, then launches a goroutine that
// checks the access token every interval and refreshes it when it expires
// within the leeway. A failed refresh invalidates the session. The goroutine
// exits when ctx is cancelled, Stop is called or the session is invalidated.
func (j *clientRefreshJob) Start(ctx context.Context) {
	interval := j.interval
	if interval <= 0 {
		interval = defaultRefreshCheckInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	invalidated := j.session.Invalidated()
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-invalidated:
				j.logger.Debug().Str("func", "clientRefreshJob.Start").Msg("session invalidated, refresh job exits")
				return
			case <-t.C:
				j.tick(jobCtx)
			}
		}
	}()
}

func (j *clientRefreshJob) tick(ctx context.Context) {
	if !j.session.IsAuthenticated() {
		return
	}

	leeway := j.leeway
	if leeway <= 0 {
		leeway = defaultRefreshLeeway
	}
	if !j.session.Tokens().AccessExpiresWithin(j.now(), leeway) {
		return
	}

	if err := j.auth.RefreshTokens(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		// on 401/403 RefreshTokens has already closed the session
		if errors.Is(err, ErrSessionInvalidated) {
			j.logger.Err(err).Str("func", "clientRefreshJob.tick").Msg("refresh token rejected, session closed")
			return
		}
		j.logger.Warn().Err(err).Str("func", "clientRefreshJob.tick").Msg("token refresh failed, retrying on next tick")
	}
}

// Stop cancels the background goroutine and blocks until it has exited.
// Safe to call when the job is not running.
func (j *clientRefreshJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
