// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusGone, ErrGone},
		{http.StatusRequestEntityTooLarge, ErrTooLarge},
		{http.StatusTooManyRequests, ErrTooManyRequests},
		{http.StatusBadGateway, ErrBadGateway},
		{http.StatusServiceUnavailable, ErrBadGateway},
		{http.StatusInternalServerError, ErrInternalServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(" body text \n"))
			}))
			defer srv.Close()

			resp, err := resty.New().R().Post(srv.URL)
			require.NoError(t, err)

			got := mapHTTPError(resp)
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), "body text")
		})
	}
}

func TestMapHTTPError_SuccessAndUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/teapot" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := resty.New().R().Get(srv.URL + "/ok")
	require.NoError(t, err)
	assert.NoError(t, mapHTTPError(resp))

	resp, err = resty.New().R().Get(srv.URL + "/teapot")
	require.NoError(t, err)
	got := mapHTTPError(resp)
	require.Error(t, got)
	assert.Contains(t, got.Error(), "418")
}

func TestMapTransportError(t *testing.T) {
	assert.ErrorIs(t, mapTransportError(errors.New("dial tcp: refused")), ErrNetwork)
}
