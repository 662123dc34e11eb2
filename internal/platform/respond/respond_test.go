// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	"github.com/taibuivan/yomira-identity/internal/platform/respond"
)

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) respond.ErrorBody {
	t.Helper()

	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

/*
TestError_AppError verifies a typed error keeps its status, code and details.
*/
func TestError_AppError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/register", nil)

	respond.Error(recorder, request, apperr.ValidationError("Validation failed",
		apperr.FieldError{Field: "email", Message: "Must be a valid email address"}))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, apperr.CodeValidation, body.Code)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "email", body.Details[0].Field)
}

/*
TestError_UnknownErrorBecomesInternal verifies raw errors never reach the client.
*/
func TestError_UnknownErrorBecomesInternal(t *testing.T) {
	for name, err := range map[string]error{
		"plain": errors.New("dial tcp 10.0.0.3:5432: connection refused"),
		"oops":  apperr.Internal(oops.Code("db_query_failed").With("operation", "find").Wrap(errors.New("timeout"))),
	} {
		t.Run(name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/profile", nil)

			respond.Error(recorder, request, err)

			assert.Equal(t, http.StatusInternalServerError, recorder.Code)
			assert.NotContains(t, recorder.Body.String(), "10.0.0.3")
			assert.NotContains(t, recorder.Body.String(), "timeout")
			assert.Equal(t, apperr.CodeInternal, decodeBody(t, recorder).Code)
		})
	}
}

/*
TestMessage verifies the flat success body.
*/
func TestMessage(t *testing.T) {
	recorder := httptest.NewRecorder()

	respond.Message(recorder, http.StatusCreated, "User registered successfully!")

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.JSONEq(t, `{"message":"User registered successfully!"}`, recorder.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"))
}
