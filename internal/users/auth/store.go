// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
)

// # Account Data Access

// AccountRepository defines the data access contract for accounts.
//
// Every mutation is a single atomic operation keyed by id (or by refresh
// token digest for logout). Lookups that match nothing return
// [apperr.NotFound]; duplicate usernames or emails return [apperr.Conflict].
type AccountRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string (already normalized)

		Returns:
		  - *Account: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string (already normalized)

		Returns:
		  - *Account: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*Account, error)

	/*
		FindByIdentity returns any account whose username OR email matches.

		Parameters:
		  - context: context.Context
		  - username: string
		  - email: string

		Returns:
		  - *Account: The first match
		  - error: NotFound when neither value is taken
	*/
	FindByIdentity(context context.Context, username, email string) (*Account, error)

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - account: *Account (ID and PasswordHash already set)

		Returns:
		  - error: Conflict on a duplicate username/email, or persistence failures
	*/
	Create(context context.Context, account *Account) error

	/*
		UpdateProfile applies a partial update to username, email and password hash.

		Parameters:
		  - context: context.Context
		  - id: string
		  - changes: ProfileChanges

		Returns:
		  - error: NotFound, Conflict, or persistence failures
	*/
	UpdateProfile(context context.Context, id string, changes ProfileChanges) error

	/*
		SetRefreshToken overwrites the stored refresh token digest.

		Parameters:
		  - context: context.Context
		  - id: string
		  - digest: string

		Returns:
		  - error: NotFound or persistence failures
	*/
	SetRefreshToken(context context.Context, id, digest string) error

	/*
		ClearRefreshToken nulls the refresh token of whichever account currently
		stores the digest, in one conditional update.

		Parameters:
		  - context: context.Context
		  - digest: string

		Returns:
		  - string: ID of the account that was logged out
		  - error: NotFound when no account stores the digest
	*/
	ClearRefreshToken(context context.Context, digest string) (string, error)

	/*
		Delete removes the account row entirely.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: NotFound or persistence failures
	*/
	Delete(context context.Context, id string) error
}
