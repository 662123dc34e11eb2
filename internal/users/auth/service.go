// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	"github.com/taibuivan/yomira-identity/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-identity/internal/platform/metrics"
	"github.com/taibuivan/yomira-identity/internal/platform/sec"
	"github.com/taibuivan/yomira-identity/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for minting and checking session tokens.
// [sec.TokenIssuer] is the production implementation.
type TokenProvider interface {
	IssueAccess(accountID string) (string, error)
	IssueRefresh(accountID string) (string, error)
	VerifyRefresh(token string) (string, error)
}

// Service implements the session lifecycle.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// rotation, or the stored-token comparison must be reviewed with care.
type Service struct {
	accountRepository AccountRepository
	passwordHasher    sec.PasswordHasher
	tokenProvider     TokenProvider
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(accountRepo AccountRepository, hasher sec.PasswordHasher, tokens TokenProvider) *Service {
	return &Service{
		accountRepository: accountRepo,
		passwordHasher:    hasher,
		tokenProvider:     tokens,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
// Fields are expected to be normalized and validated by the caller.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

/*
Register hashes the password and persists a brand new account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Account: Created entity (no refresh token yet)
  - err: Conflict if the username or email is taken, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (account *Account, err error) {
	defer func() { metrics.RecordAuthEvent(metrics.EventRegister, err) }()

	// Either identity field being taken is a conflict.
	_, err = service.accountRepository.FindByIdentity(context, input.Username, input.Email)
	if err == nil {
		return nil, apperr.Conflict(MessageUserExists)
	}
	if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	hashedPassword, err := service.passwordHasher.Hash(context, input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	account = &Account{
		ID:           uuidv7.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}

	// A concurrent registration that slipped past the lookup hits the unique index here.
	if err := service.accountRepository.Create(context, account); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "account_registered", slog.String("account_id", account.ID))

	return account, nil
}

// # Authentication Flow

/*
Login verifies credentials and issues a fresh token pair.

Description: The new refresh token's digest is written before the pair is
returned, overwriting any previous one. That write is the single point of
refresh-token rotation: a concurrent login on another device makes this
pair's refresh token unusable once its own write lands.

Parameters:
  - context: context.Context
  - email: string (normalized)
  - password: string

Returns:
  - *TokenPair: Access and refresh tokens
  - err: NotFound, InvalidCredentials, or internal failures
*/
func (service *Service) Login(context context.Context, email, password string) (pair *TokenPair, err error) {
	defer func() { metrics.RecordAuthEvent(metrics.EventLogin, err) }()

	account, err := service.accountRepository.FindByEmail(context, email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	match, err := service.passwordHasher.Compare(context, password, account.PasswordHash)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_login_compare_failed: %w", err))
	}

	switch match {
	case sec.PasswordValid:
	case sec.PasswordMalformedHash:
		ctxutil.GetLogger(context).ErrorContext(context, "stored_password_hash_malformed",
			slog.String("account_id", account.ID),
		)
		return nil, apperr.InvalidCredentials(MessageInvalidPassword)
	default:
		return nil, apperr.InvalidCredentials(MessageInvalidPassword)
	}

	accessToken, err := service.tokenProvider.IssueAccess(account.ID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_access_token_failed: %w", err))
	}

	refreshToken, err := service.tokenProvider.IssueRefresh(account.ID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_refresh_token_failed: %w", err))
	}

	// Synchronous: the caller must not hold a refresh token the store does not know.
	if err := service.accountRepository.SetRefreshToken(context, account.ID, sec.DigestToken(refreshToken)); err != nil {
		return nil, fmt.Errorf("auth_service_persist_refresh_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "login_succeeded", slog.String("account_id", account.ID))

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// # Session Management

/*
Refresh mints a new access token from a refresh token.

Description: A refresh token must both verify under the refresh secret AND
match the digest stored on its account. The second check rejects tokens that
were rotated out by a later login or cleared by logout, even though they are
still cryptographically valid. The stored refresh token is not changed.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - string: New access token
  - err: InvalidToken, NotFound, or internal failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (accessToken string, err error) {
	defer func() { metrics.RecordAuthEvent(metrics.EventRefresh, err) }()

	accountID, err := service.tokenProvider.VerifyRefresh(refreshToken)
	if err != nil {
		invalid := apperr.InvalidToken(MessageBadRefreshToken)
		invalid.Cause = err
		return "", invalid
	}

	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return "", fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	if account.RefreshTokenDigest == nil || !sec.DigestMatches(refreshToken, *account.RefreshTokenDigest) {
		ctxutil.GetLogger(context).WarnContext(context, "refresh_token_superseded",
			slog.String("account_id", account.ID),
			slog.Bool("logged_out", account.RefreshTokenDigest == nil),
		)
		return "", apperr.InvalidToken(MessageBadRefreshToken)
	}

	accessToken, err = service.tokenProvider.IssueAccess(account.ID)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("auth_service_refresh_access_token_failed: %w", err))
	}

	return accessToken, nil
}

/*
Logout clears the stored refresh token matching the presented one.

Description: Presenting a token that was never issued, already logged out,
or rotated out by a later login all yield NotFound. Logout is not a silent
success for unknown tokens.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: NotFound or storage failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) (err error) {
	defer func() { metrics.RecordAuthEvent(metrics.EventLogout, err) }()

	accountID, err := service.accountRepository.ClearRefreshToken(context, sec.DigestToken(refreshToken))
	if err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "logout_succeeded", slog.String("account_id", accountID))

	return nil
}
