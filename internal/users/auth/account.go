// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account registration and the session lifecycle.

It defines the Account entity, the storage contract behind it, and the
Session Manager that logs accounts in, renews their access tokens, and logs
them out.

# Architecture

  - Account: The persisted identity record. Holds a password hash, never a password.
  - AccountRepository: Field-level storage operations (Postgres or in-memory).
  - Service: Register, Login, Refresh, Logout.
  - Handler: The public JSON endpoints.

Each account holds at most one refresh token. Login overwrites it, refresh
leaves it alone, logout clears it, and deleting the account drops it.
*/
package auth

import (
	"time"
)

// # Domain Entities

// Account represents a registered identity.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// RefreshTokenDigest is the SHA-256 digest of the current refresh token,
	// nil when the account is logged out.
	RefreshTokenDigest *string `json:"-"`
}

// ProfileChanges is a partial update. Nil fields are left untouched.
type ProfileChanges struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

// IsEmpty reports whether the update would change nothing.
func (changes ProfileChanges) IsEmpty() bool {
	return changes.Username == nil && changes.Email == nil && changes.PasswordHash == nil
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// # Field Identifiers

const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldRefreshToken = "refreshToken"
	FieldAccessToken  = "accessToken"
)

// # Client Messages

const (
	ResourceUser = "User"

	MessageUserExists      = "User already exists."
	MessageInvalidPassword = "Invalid password."
	MessageRegistered      = "User registered successfully!"
	MessageLoggedIn        = "Successful login!"
	MessageLoggedOut       = "You have successfully logged out."
	MessageNoRefreshToken  = "No Refresh token."
	MessageBadRefreshToken = "Incorrect refresh token."
)
