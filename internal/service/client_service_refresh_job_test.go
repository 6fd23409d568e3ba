// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-paper-cloud/internal/adapter"
	"github.com/MKhiriev/go-paper-cloud/internal/app"
	"github.com/MKhiriev/go-paper-cloud/internal/config"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/mock"
	"github.com/MKhiriev/go-paper-cloud/internal/session"
	"github.com/MKhiriev/go-paper-cloud/models"
)

// stubAuth counts refreshes and answers with err.
type stubAuth struct {
	ClientAuthService

	calls atomic.Int32
	err   error
}

func (s *stubAuth) RefreshTokens(context.Context) error {
	s.calls.Add(1)
	return s.err
}

func sessionExpiringIn(t *testing.T, d time.Duration) *session.Session {
	t.Helper()
	sess, _ := authenticatedSession(t)
	tokens := sess.Tokens()
	tokens.AccessTokenExpiryTime = time.Now().Add(d)
	sess.SetTokens(tokens)
	return sess
}

func newRefreshJob(auth ClientAuthService, sess *session.Session, interval time.Duration) *clientRefreshJob {
	return NewClientRefreshJob(auth, sess, config.ClientWorkers{
		RefreshCheckInterval: interval,
		RefreshLeeway:        time.Minute,
	}, logger.Nop()).(*clientRefreshJob)
}

func TestClientRefreshJob_Tick(t *testing.T) {
	tests := []struct {
		name      string
		expiresIn time.Duration
		err       error
		wantCalls int32
		wantAlive bool
	}{
		{name: "fresh token is left alone", expiresIn: time.Hour, wantCalls: 0, wantAlive: true},
		{name: "expiring token is refreshed", expiresIn: 30 * time.Second, wantCalls: 1, wantAlive: true},
		{name: "transient failure keeps the session", expiresIn: 30 * time.Second, err: errors.New("boom"), wantCalls: 1, wantAlive: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &stubAuth{err: tt.err}
			sess := sessionExpiringIn(t, tt.expiresIn)
			job := newRefreshJob(auth, sess, time.Hour)

			job.tick(context.Background())

			assert.Equal(t, tt.wantCalls, auth.calls.Load())
			assert.Equal(t, tt.wantAlive, sess.IsAuthenticated())
		})
	}
}

// The job runs against the real auth service so the session is closed by the
// same code path the client uses.
func TestClientRefreshJob_Tick_RefreshErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantAlive bool
	}{
		{
			name:      "rejected refresh token closes the session",
			err:       adapterErr("refresh token", adapter.ErrUnauthorized, app.MsgTokenIsExpiredOrInvalid),
			wantAlive: false,
		},
		{
			name:      "forbidden closes the session",
			err:       adapterErr("refresh token", adapter.ErrForbidden, ""),
			wantAlive: false,
		},
		{
			name:      "network error keeps the keys",
			err:       adapterErr("refresh token request", adapter.ErrNetwork, "connection refused"),
			wantAlive: true,
		},
		{
			name:      "server error keeps the keys",
			err:       adapterErr("refresh token", adapter.ErrInternalServerError, app.MsgInternalServerError),
			wantAlive: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			serverAdapter := mock.NewMockServerAdapter(ctrl)
			serverAdapter.EXPECT().RefreshToken(gomock.Any(), "refresh").Return(models.SessionTokens{}, tt.err)

			sess := sessionExpiringIn(t, 30*time.Second)
			job := newRefreshJob(newAuthService(serverAdapter, sess), sess, time.Hour)

			job.tick(context.Background())

			assert.Equal(t, tt.wantAlive, sess.IsAuthenticated())
			_, keyErr := sess.MasterKey()
			if tt.wantAlive {
				assert.NoError(t, keyErr)
				return
			}
			assert.ErrorIs(t, sess.Err(), ErrSessionInvalidated)
			assert.ErrorIs(t, keyErr, ErrNotAuthenticated)
		})
	}
}

func TestClientRefreshJob_TickSkipsLoggedOutSession(t *testing.T) {
	auth := &stubAuth{}
	job := newRefreshJob(auth, session.New(nil), time.Hour)

	job.tick(context.Background())
	assert.Zero(t, auth.calls.Load())
}

func TestClientRefreshJob_TickUsesClock(t *testing.T) {
	auth := &stubAuth{}
	sess := sessionExpiringIn(t, time.Hour)
	job := newRefreshJob(auth, sess, time.Hour)
	job.now = func() time.Time { return time.Now().Add(59 * time.Minute) }

	job.tick(context.Background())
	assert.Equal(t, int32(1), auth.calls.Load())
}

func TestClientRefreshJob_StartAndStop(t *testing.T) {
	auth := &stubAuth{}
	sess := sessionExpiringIn(t, 10*time.Second)
	job := newRefreshJob(auth, sess, 5*time.Millisecond)

	job.Start(context.Background())
	require.Eventually(t, func() bool { return auth.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	job.Stop()
	calls := auth.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, auth.calls.Load())

	// Stop on an idle job is a no-op
	job.Stop()
}

func TestClientRefreshJob_ExitsOnInvalidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	serverAdapter := mock.NewMockServerAdapter(ctrl)
	serverAdapter.EXPECT().RefreshToken(gomock.Any(), "refresh").
		Return(models.SessionTokens{}, adapterErr("refresh token", adapter.ErrUnauthorized, app.MsgTokenIsExpiredOrInvalid)).
		Times(1)

	sess := sessionExpiringIn(t, 10*time.Second)
	job := newRefreshJob(newAuthService(serverAdapter, sess), sess, 5*time.Millisecond)

	job.Start(context.Background())

	select {
	case <-sess.Invalidated():
	case <-time.After(time.Second):
		t.Fatal("session was not invalidated")
	}

	job.Stop()
}

func TestClientRefreshJob_ExitsOnContextCancel(t *testing.T) {
	auth := &stubAuth{}
	sess := sessionExpiringIn(t, time.Hour)
	job := newRefreshJob(auth, sess, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop")
	}
	assert.True(t, sess.IsAuthenticated())
}
