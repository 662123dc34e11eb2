// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	"github.com/taibuivan/yomira-identity/internal/platform/database/schema"
	"github.com/taibuivan/yomira-identity/internal/platform/dberr"
	"github.com/taibuivan/yomira-identity/pkg/uuidv7"
)

// # Account Repository

// DBTX is the subset of [pgxpool.Pool] the repository needs.
// pgxmock pools satisfy it, which keeps the SQL unit-testable.
type DBTX interface {
	Exec(context context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(context context.Context, sql string, arguments ...any) pgx.Row
}

// PostgresAccountRepository implements [AccountRepository] on the users.account table.
type PostgresAccountRepository struct {
	pool DBTX
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(pool DBTX) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

var selectAccount = "SELECT " + strings.Join(schema.UserAccount.Columns(), ", ") + " FROM " + schema.UserAccount.Table

// wrapError attaches the operation to the driver error and classifies it for the client.
func wrapError(err error, operation string, keyValues ...any) error {
	return dberr.Wrap(
		oops.In("account_repository").With("operation", operation).With(keyValues...).Wrap(err),
		ResourceUser,
		MessageUserExists,
	)
}

func (repository *PostgresAccountRepository) findOne(context context.Context, operation, where string, arguments ...any) (*Account, error) {
	account := &Account{}
	err := repository.pool.QueryRow(context, selectAccount+" "+where, arguments...).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.RefreshTokenDigest,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		return nil, wrapError(err, operation)
	}

	return account, nil
}

// FindByID retrieves an account by primary key. Ids that are not UUIDs cannot exist.
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*Account, error) {
	if !uuidv7.Valid(id) {
		return nil, apperr.NotFound(ResourceUser)
	}
	return repository.findOne(context, "find_by_id", "WHERE id = $1", id)
}

// FindByEmail retrieves an account by its unique email.
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	return repository.findOne(context, "find_by_email", "WHERE email = $1", email)
}

// FindByUsername retrieves an account by its unique username.
func (repository *PostgresAccountRepository) FindByUsername(context context.Context, username string) (*Account, error) {
	return repository.findOne(context, "find_by_username", "WHERE username = $1", username)
}

// FindByIdentity retrieves any account holding either the username or the email.
func (repository *PostgresAccountRepository) FindByIdentity(context context.Context, username, email string) (*Account, error) {
	return repository.findOne(context, "find_by_identity", "WHERE username = $1 OR email = $2 LIMIT 1", username, email)
}

/*
Create persists a new account into the users.account table.

Description: The unique indexes on username and email are the final
arbiter when two registrations race past the service-level check.

Parameters:
  - context: context.Context
  - account: *Account (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicates, or connectivity errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	const query = `
		INSERT INTO users.account (id, username, email, passwordhash, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		return wrapError(err, "create", "username", account.Username)
	}

	return nil
}

/*
UpdateProfile applies a partial update in one statement.

Description: COALESCE keeps columns whose change is nil, so the statement is
the same whatever subset of fields the caller sends.

Parameters:
  - context: context.Context
  - id: string
  - changes: ProfileChanges

Returns:
  - error: NotFound when the row is gone, Conflict on duplicates
*/
func (repository *PostgresAccountRepository) UpdateProfile(context context.Context, id string, changes ProfileChanges) error {
	const query = `
		UPDATE users.account
		SET username     = COALESCE($2, username),
		    email        = COALESCE($3, email),
		    passwordhash = COALESCE($4, passwordhash),
		    updatedat    = now()
		WHERE id = $1`

	if !uuidv7.Valid(id) {
		return apperr.NotFound(ResourceUser)
	}

	tag, err := repository.pool.Exec(context, query, id, changes.Username, changes.Email, changes.PasswordHash)
	if err != nil {
		return wrapError(err, "update_profile", "account_id", id)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound(ResourceUser)
	}

	return nil
}

// SetRefreshToken overwrites the stored digest. The previous token stops matching immediately.
func (repository *PostgresAccountRepository) SetRefreshToken(context context.Context, id, digest string) error {
	const query = `UPDATE users.account SET refreshtoken = $2, updatedat = now() WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, id, digest)
	if err != nil {
		return wrapError(err, "set_refresh_token", "account_id", id)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound(ResourceUser)
	}

	return nil
}

// ClearRefreshToken nulls the digest on whichever account holds it.
func (repository *PostgresAccountRepository) ClearRefreshToken(context context.Context, digest string) (string, error) {
	const query = `
		UPDATE users.account
		SET refreshtoken = NULL, updatedat = now()
		WHERE refreshtoken = $1
		RETURNING id`

	var accountID string
	if err := repository.pool.QueryRow(context, query, digest).Scan(&accountID); err != nil {
		return "", wrapError(err, "clear_refresh_token")
	}

	return accountID, nil
}

// Delete removes the account row.
func (repository *PostgresAccountRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM users.account WHERE id = $1`

	if !uuidv7.Valid(id) {
		return apperr.NotFound(ResourceUser)
	}

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return wrapError(err, "delete", "account_id", id)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound(ResourceUser)
	}

	return nil
}
