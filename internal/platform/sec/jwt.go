// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the [PasswordHasher] and [TokenIssuer] types.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// # Token Lifetimes

const (
	// AccessTokenTTL bounds how long a leaked access token stays usable.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the lifetime of the renewal credential.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// # Verification Errors

var (
	// ErrTokenExpired is returned when the current time is past the embedded expiry.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid is returned for a bad signature, a wrong key, or a malformed token.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// TokenKind selects which secret signs and verifies a token.
type TokenKind int

const (
	// AccessToken is signed with the access secret.
	AccessToken TokenKind = iota

	// RefreshToken is signed with the refresh secret.
	RefreshToken
)

// String returns the kind name as it appears in logs.
func (k TokenKind) String() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "access"
}

// AccountClaims represents the payload embedded inside both token kinds.
//
// The account id is duplicated into Subject for standard tooling; verification
// reads the custom claim.
type AccountClaims struct {
	jwt.RegisteredClaims

	// AccountID is abbreviated to keep the payload small.
	AccountID string `json:"aid"`
}

// TokenIssuer signs and verifies account tokens using HMAC.
//
// Access and refresh tokens use independent secrets so a leaked access secret
// cannot mint refresh tokens.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	method        jwt.SigningMethod
	issuer        string
	now           func() time.Time
}

/*
NewTokenIssuer creates a [TokenIssuer].

Parameters:
  - accessSecret: Key for access tokens
  - refreshSecret: Key for refresh tokens, must differ from accessSecret
  - algorithm: One of HS256, HS384, HS512
  - issuer: Value of the 'iss' claim

Returns:
  - *TokenIssuer: The configured issuer
  - error: Empty or identical secrets, or an unsupported algorithm
*/
func NewTokenIssuer(accessSecret, refreshSecret []byte, algorithm, issuer string) (*TokenIssuer, error) {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		return nil, errors.New("sec: token secrets must not be empty")
	}
	if string(accessSecret) == string(refreshSecret) {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("sec: unsupported signing algorithm %q", algorithm)
	}

	return &TokenIssuer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		method:        method,
		issuer:        issuer,
		now:           time.Now,
	}, nil
}

// WithClock returns a copy of the issuer that reads time from now. Used by tests.
func (service *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	clone := *service
	clone.now = now
	return &clone
}

// IssueAccess signs a 15 minute access token for the account.
func (service *TokenIssuer) IssueAccess(accountID string) (string, error) {
	return service.issue(accountID, AccessToken)
}

// IssueRefresh signs a 7 day refresh token for the account.
func (service *TokenIssuer) IssueRefresh(accountID string) (string, error) {
	return service.issue(accountID, RefreshToken)
}

func (service *TokenIssuer) issue(accountID string, kind TokenKind) (string, error) {
	currentTime := service.now()
	claims := AccountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   accountID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.ttl(kind))),
		},
		AccountID: accountID,
	}

	token := jwt.NewWithClaims(service.method, claims)
	signedToken, err := token.SignedString(service.secret(kind))
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign %s token: %w", kind, err)
	}

	return signedToken, nil
}

/*
Verify checks the signature and expiry of a token of the given kind.

There is no clock skew allowance: a token is expired the second its 'exp'
claim is reached.

Returns:
  - string: The embedded account id
  - error: [ErrTokenExpired] or [ErrTokenInvalid]
*/
func (service *TokenIssuer) Verify(tokenString string, kind TokenKind) (string, error) {
	secret := service.secret(kind)

	token, err := jwt.ParseWithClaims(tokenString, &AccountClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{service.method.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*AccountClaims)
	if !ok || !token.Valid || claims.AccountID == "" {
		return "", ErrTokenInvalid
	}

	return claims.AccountID, nil
}

// VerifyAccess is shorthand for Verify(token, AccessToken).
func (service *TokenIssuer) VerifyAccess(tokenString string) (string, error) {
	return service.Verify(tokenString, AccessToken)
}

// VerifyRefresh is shorthand for Verify(token, RefreshToken).
func (service *TokenIssuer) VerifyRefresh(tokenString string) (string, error) {
	return service.Verify(tokenString, RefreshToken)
}

func (service *TokenIssuer) secret(kind TokenKind) []byte {
	if kind == RefreshToken {
		return service.refreshSecret
	}
	return service.accessSecret
}

func (service *TokenIssuer) ttl(kind TokenKind) time.Duration {
	if kind == RefreshToken {
		return RefreshTokenTTL
	}
	return AccessTokenTTL
}
