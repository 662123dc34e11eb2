// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	"github.com/taibuivan/yomira-identity/internal/platform/constants"
	"github.com/taibuivan/yomira-identity/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-identity/internal/platform/metrics"
	"github.com/taibuivan/yomira-identity/internal/platform/respond"
	"github.com/taibuivan/yomira-identity/internal/platform/sec"
)

// # Gate Messages

const (
	MessageNoToken      = "No token"
	MessageInvalidToken = "Invalid or expired token"
)

// AccessVerifier checks an access token and returns the embedded account id.
// [sec.TokenIssuer] satisfies it.
type AccessVerifier interface {
	VerifyAccess(token string) (string, error)
}

/*
Authorize resolves an Authorization header value to an account id.

It never consults the account store: access tokens are stateless, so a deleted
account's token keeps passing the gate until it expires and the handler's own
lookup reports NotFound.

Returns:
  - string: The account id
  - error: apperr.Unauthorized when no bearer credential is present,
    apperr.Forbidden when the token is expired or invalid
*/
func Authorize(verifier AccessVerifier, authorizationHeader string) (string, error) {
	token, ok := bearerToken(authorizationHeader)
	if !ok {
		return "", apperr.Unauthorized(MessageNoToken)
	}

	accountID, err := verifier.VerifyAccess(token)
	if err != nil {
		forbidden := apperr.Forbidden(MessageInvalidToken)
		forbidden.Cause = err
		return "", forbidden
	}

	return accountID, nil
}

// RequireAccessToken blocks requests without a valid access token and binds the
// account id into the request context.
//
// # Flow
//  1. Read 'Authorization: Bearer <token>'. Missing → 401.
//  2. Verify via [AccessVerifier]. Expired or invalid → 403.
//  3. Inject the account id with [ctxutil.WithAccountID].
func RequireAccessToken(verifier AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			accountID, err := Authorize(verifier, request.Header.Get(constants.HeaderAuthorization))
			metrics.RecordAuthEvent(metrics.EventGate, err)
			if err != nil {
				if errors.Is(err, sec.ErrTokenExpired) || errors.Is(err, sec.ErrTokenInvalid) {
					ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "access_token_rejected",
						slog.Bool("expired", errors.Is(err, sec.ErrTokenExpired)),
					)
				}
				respond.Error(writer, request, err)
				return
			}

			if tagger, ok := writer.(accountTagger); ok {
				tagger.tagAccount(accountID)
			}

			ctx := ctxutil.WithAccountID(request.Context(), accountID)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// bearerToken extracts the credential from "Bearer <token>". The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
