// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles the authenticated account's own profile.

It lets an account read its username and email, change any of username,
email and password, and delete itself.

# Architecture

  - Domain: Depends on the auth package for the Account entity and its store.
  - Security: Every endpoint sits behind the access-token gate; the account id
    always comes from the verified token, never from the request.
*/
package account

import (
	"context"

	"github.com/taibuivan/yomira-identity/internal/users/auth"
)

// # Domain Entities

// Profile is the public view of an account returned to its owner.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateInput is a partial profile update. Nil fields are left unchanged.
// Fields are expected to be normalized and validated by the caller.
type UpdateInput struct {
	Username *string
	Email    *string
	Password *string
}

// # Client Messages

const (
	MessageProfileUpdated = "Profile updated successfully!"
	MessageAccountDeleted = "User deleted successfully!"
)

// # Repository Contracts

// AccountStore is the subset of [auth.AccountRepository] profile operations need.
type AccountStore interface {
	FindByID(context context.Context, id string) (*auth.Account, error)
	FindByUsername(context context.Context, username string) (*auth.Account, error)
	FindByEmail(context context.Context, email string) (*auth.Account, error)
	UpdateProfile(context context.Context, id string, changes auth.ProfileChanges) error
	Delete(context context.Context, id string) error
}
