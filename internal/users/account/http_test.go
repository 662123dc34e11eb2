// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	"github.com/taibuivan/yomira-identity/internal/platform/middleware"
	"github.com/taibuivan/yomira-identity/internal/platform/sec"
	"github.com/taibuivan/yomira-identity/internal/users/account"
)

func newIssuer(t *testing.T) *sec.TokenIssuer {
	t.Helper()

	issuer, err := sec.NewTokenIssuer([]byte("access-secret"), []byte("refresh-secret"), "HS256", "yomira.app")
	require.NoError(t, err)
	return issuer
}

func newRouter(f *fixture, issuer *sec.TokenIssuer) http.Handler {
	router := chi.NewRouter()
	router.Group(account.NewHandler(f.service, issuer).Routes)
	return router
}

func call(t *testing.T, handler http.Handler, method, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	request := httptest.NewRequest(method, "/profile", strings.NewReader(body))
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	payload := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload), recorder.Body.String())
	return recorder, payload
}

/*
TestHandler_Gate verifies missing tokens answer 401 and unusable ones 403.
*/
func TestHandler_Gate(t *testing.T) {
	f := newFixture(t)
	issuer := newIssuer(t)
	router := newRouter(f, issuer)

	recorder, payload := call(t, router, http.MethodGet, "", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, middleware.MessageNoToken, payload["message"])

	recorder, payload = call(t, router, http.MethodGet, "garbage", "")
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, middleware.MessageInvalidToken, payload["message"])

	expired, err := issuer.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).IssueAccess("1")
	require.NoError(t, err)

	recorder, _ = call(t, router, http.MethodGet, expired, "")
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// A refresh token is not an access token.
	refresh, err := issuer.IssueRefresh("1")
	require.NoError(t, err)

	recorder, _ = call(t, router, http.MethodGet, refresh, "")
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

/*
TestHandler_ProfileLifecycle verifies read, update and delete through the gate.
*/
func TestHandler_ProfileLifecycle(t *testing.T) {
	f := newFixture(t)
	issuer := newIssuer(t)
	router := newRouter(f, issuer)

	f.seed(t, "1", "alice", "a@x.io", "secret1")
	f.seed(t, "2", "bob", "b@x.io", "secret1")

	token, err := issuer.IssueAccess("1")
	require.NoError(t, err)

	// 1. Read
	recorder, payload := call(t, router, http.MethodGet, token, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, map[string]any{"username": "alice", "email": "a@x.io"}, payload)

	// 2. Invalid and conflicting updates
	recorder, payload = call(t, router, http.MethodPut, token, `{"password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, apperr.CodeValidation, payload["code"])

	recorder, payload = call(t, router, http.MethodPut, token, `{"email":"B@x.io"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, apperr.CodeConflict, payload["code"])

	// 3. Partial update; the empty email is ignored
	recorder, payload = call(t, router, http.MethodPut, token, `{"username":"alicia","email":""}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, account.MessageProfileUpdated, payload["message"])

	_, payload = call(t, router, http.MethodGet, token, "")
	assert.Equal(t, "alicia", payload["username"])
	assert.Equal(t, "a@x.io", payload["email"])

	// 4. Delete, then the still-valid token finds nothing
	recorder, payload = call(t, router, http.MethodDelete, token, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, account.MessageAccountDeleted, payload["message"])

	recorder, _ = call(t, router, http.MethodGet, token, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder, _ = call(t, router, http.MethodDelete, token, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
