// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Bodies are flat JSON objects (no data envelope) so existing clients of the
// identity endpoints keep parsing {"accessToken": ...} and {"message": ...}
// directly. Every error leaves through [Error], which is the single boundary
// where unexpected failures become a 500 without leaking internals.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	"github.com/taibuivan/yomira-identity/internal/platform/constants"
	"github.com/taibuivan/yomira-identity/internal/platform/ctxutil"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with the payload as-is.
func OK(writer http.ResponseWriter, payload any) {
	JSON(writer, http.StatusOK, payload)
}

// Created writes a 201 Created response with the payload as-is.
func Created(writer http.ResponseWriter, payload any) {
	JSON(writer, http.StatusCreated, payload)
}

// Message writes {"message": msg} with the given status.
func Message(writer http.ResponseWriter, statusCode int, msg string) {
	JSON(writer, statusCode, map[string]string{constants.FieldMessage: msg})
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())

	appError := apperr.As(err)
	if appError == nil {
		// Unexpected internal error: log full details but hide them from the client for security.
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= http.StatusInternalServerError {
		attrs := []any{
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		}
		if oopsErr, ok := oops.AsOops(appError.Cause); ok {
			attrs = append(attrs,
				slog.Any("oops_code", oopsErr.Code()),
				slog.Any("oops_context", oopsErr.Context()),
			)
		}
		logger.ErrorContext(request.Context(), "api_server_error", attrs...)
	}

	JSON(writer, appError.HTTPStatus, ErrorBody{
		Message: appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}
