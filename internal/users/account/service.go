// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	"github.com/taibuivan/yomira-identity/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-identity/internal/platform/sec"
	"github.com/taibuivan/yomira-identity/internal/users/auth"
)

// # Service Layer

// Service orchestrates profile reads, updates and deletion.
//
// It re-hashes changed passwords and keeps username and email unique across
// accounts before anything reaches the store.
type Service struct {
	accountStore   AccountStore
	passwordHasher sec.PasswordHasher
}

// NewService constructs a new [Service] with its dependencies.
func NewService(store AccountStore, hasher sec.PasswordHasher) *Service {
	return &Service{
		accountStore:   store,
		passwordHasher: hasher,
	}
}

// # Profile Management

/*
GetProfile retrieves the username and email of an account.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Profile: The public view
  - error: NotFound or storage failures
*/
func (service *Service) GetProfile(context context.Context, accountID string) (*Profile, error) {
	account, err := service.accountStore.FindByID(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return &Profile{Username: account.Username, Email: account.Email}, nil
}

/*
UpdateProfile applies a partial set of changes to an account.

Description: A username or email already held by a different account is a
Conflict. Keeping your own value is not. A new password is hashed before it
is stored; the plaintext never reaches the store. An update with no fields
only confirms the account exists.

Parameters:
  - context: context.Context
  - accountID: string
  - input: UpdateInput

Returns:
  - error: NotFound, Conflict, or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, accountID string, input UpdateInput) error {
	changes := auth.ProfileChanges{Username: input.Username, Email: input.Email}

	if input.Username == nil && input.Email == nil && input.Password == nil {
		if _, err := service.accountStore.FindByID(context, accountID); err != nil {
			return fmt.Errorf("account_service_update_lookup_failed: %w", err)
		}
		return nil
	}

	if input.Username != nil {
		if err := service.ensureAvailable(context, accountID, service.accountStore.FindByUsername, *input.Username); err != nil {
			return err
		}
	}

	if input.Email != nil {
		if err := service.ensureAvailable(context, accountID, service.accountStore.FindByEmail, *input.Email); err != nil {
			return err
		}
	}

	if input.Password != nil {
		hashedPassword, err := service.passwordHasher.Hash(context, *input.Password)
		if err != nil {
			return apperr.Internal(fmt.Errorf("account_service_hash_failed: %w", err))
		}
		changes.PasswordHash = &hashedPassword
	}

	// The store's unique indexes still catch a rename that races this check.
	if err := service.accountStore.UpdateProfile(context, accountID, changes); err != nil {
		return fmt.Errorf("account_service_update_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "account_profile_updated",
		slog.String("account_id", accountID),
		slog.Bool("username_changed", input.Username != nil),
		slog.Bool("email_changed", input.Email != nil),
		slog.Bool("password_changed", input.Password != nil),
	)

	return nil
}

// ensureAvailable fails with Conflict when value belongs to an account other than accountID.
func (service *Service) ensureAvailable(
	context context.Context,
	accountID string,
	find func(context.Context, string) (*auth.Account, error),
	value string,
) error {
	holder, err := find(context, value)
	switch {
	case err == nil && holder.ID != accountID:
		return apperr.Conflict(auth.MessageUserExists)
	case err == nil, apperr.HasCode(err, apperr.CodeNotFound):
		return nil
	default:
		return fmt.Errorf("account_service_uniqueness_check_failed: %w", err)
	}
}

/*
DeleteAccount permanently removes an account.

Description: The stored refresh token goes with the row, so the account's
refresh token stops working at once. Access tokens already issued stay valid
until they expire; profile calls made with them answer NotFound.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: NotFound or storage failures
*/
func (service *Service) DeleteAccount(context context.Context, accountID string) error {
	if err := service.accountStore.Delete(context, accountID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	ctxutil.GetLogger(context).WarnContext(context, "account_deleted", slog.String("account_id", accountID))

	return nil
}
