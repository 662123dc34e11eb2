// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	"github.com/taibuivan/yomira-identity/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-identity/internal/platform/middleware"
	"github.com/taibuivan/yomira-identity/internal/platform/sec"
)

func newIssuer(t *testing.T) *sec.TokenIssuer {
	t.Helper()

	issuer, err := sec.NewTokenIssuer([]byte("access-secret"), []byte("refresh-secret"), "HS256", "yomira.app")
	require.NoError(t, err)
	return issuer
}

/*
TestAuthorize_Outcomes covers every branch of the gate decision.
*/
func TestAuthorize_Outcomes(t *testing.T) {
	issuer := newIssuer(t)

	access, err := issuer.IssueAccess("acc-1")
	require.NoError(t, err)
	refresh, err := issuer.IssueRefresh("acc-1")
	require.NoError(t, err)
	expired, err := issuer.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).IssueAccess("acc-1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing_header", "", apperr.CodeUnauthorized},
		{"wrong_scheme", "Basic " + access, apperr.CodeUnauthorized},
		{"empty_bearer", "Bearer ", apperr.CodeUnauthorized},
		{"expired", "Bearer " + expired, apperr.CodeForbidden},
		{"garbage", "Bearer abc.def.ghi", apperr.CodeForbidden},
		{"refresh_used_as_access", "Bearer " + refresh, apperr.CodeForbidden},
		{"valid", "Bearer " + access, ""},
		{"lowercase_scheme", "bearer " + access, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountID, err := middleware.Authorize(issuer, tt.header)

			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, "acc-1", accountID)
				return
			}

			assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
			assert.Empty(t, accountID)
		})
	}
}

/*
TestRequireAccessToken_HTTP verifies status codes, messages and context injection.
*/
func TestRequireAccessToken_HTTP(t *testing.T) {
	issuer := newIssuer(t)

	access, err := issuer.IssueAccess("acc-42")
	require.NoError(t, err)
	expired, err := issuer.WithClock(func() time.Time { return time.Now().Add(-sec.AccessTokenTTL) }).IssueAccess("acc-42")
	require.NoError(t, err)

	var seen string
	protected := middleware.RequireAccessToken(issuer)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen, _ = ctxutil.GetAccountID(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"no_token", "", http.StatusUnauthorized, middleware.MessageNoToken},
		{"expired", "Bearer " + expired, http.StatusForbidden, middleware.MessageInvalidToken},
		{"valid", "Bearer " + access, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			request := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			protected.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.message == "" {
				assert.Equal(t, "acc-42", seen)
				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body["message"])
			assert.Empty(t, seen)
		})
	}
}
