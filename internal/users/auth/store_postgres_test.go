// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	"github.com/taibuivan/yomira-identity/internal/platform/dberr"
	"github.com/taibuivan/yomira-identity/internal/users/auth"
	"github.com/taibuivan/yomira-identity/pkg/pointer"
	"github.com/taibuivan/yomira-identity/pkg/uuidv7"
)

var accountColumns = []string{"id", "username", "email", "passwordhash", "refreshtoken", "createdat", "updatedat"}

func newMockRepository(t *testing.T) (pgxmock.PgxPoolIface, *auth.PostgresAccountRepository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, auth.NewAccountRepository(mock)
}

/*
TestPostgresRepository_FindByEmail verifies row hydration and the not-found mapping.
*/
func TestPostgresRepository_FindByEmail(t *testing.T) {
	id := uuidv7.New()
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name       string
		setupMock  func(mock pgxmock.PgxPoolIface)
		wantCode   string
		wantHash   string
		wantDigest *string
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(accountColumns).
					AddRow(id, "alice", "a@x.io", "$2a$10$hash", pointer.To("digest"), createdAt, createdAt)
				mock.ExpectQuery(`FROM users.account WHERE email = \$1`).
					WithArgs("a@x.io").
					WillReturnRows(rows)
			},
			wantHash:   "$2a$10$hash",
			wantDigest: pointer.To("digest"),
		},
		{
			name: "found_logged_out",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(accountColumns).
					AddRow(id, "alice", "a@x.io", "$2a$10$hash", nil, createdAt, createdAt)
				mock.ExpectQuery(`FROM users.account WHERE email = \$1`).
					WithArgs("a@x.io").
					WillReturnRows(rows)
			},
			wantHash: "$2a$10$hash",
		},
		{
			name: "not_found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users.account WHERE email = \$1`).
					WithArgs("a@x.io").
					WillReturnError(pgx.ErrNoRows)
			},
			wantCode: apperr.CodeNotFound,
		},
		{
			name: "connection_lost",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users.account WHERE email = \$1`).
					WithArgs("a@x.io").
					WillReturnError(errors.New("connection lost"))
			},
			wantCode: apperr.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repository := newMockRepository(t)
			tt.setupMock(mock)

			account, err := repository.FindByEmail(context.Background(), "a@x.io")

			if tt.wantCode != "" {
				assert.True(t, apperr.HasCode(err, tt.wantCode), "got %v", err)
				assert.Nil(t, account)
			} else {
				require.NoError(t, err)
				assert.Equal(t, id, account.ID)
				assert.Equal(t, "alice", account.Username)
				assert.Equal(t, tt.wantHash, account.PasswordHash)
				assert.Equal(t, createdAt, account.CreatedAt)
				assert.Equal(t, tt.wantDigest, account.RefreshTokenDigest)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

/*
TestPostgresRepository_FindByID_NotUUID verifies malformed ids never reach the database.
*/
func TestPostgresRepository_FindByID_NotUUID(t *testing.T) {
	mock, repository := newMockRepository(t)

	_, err := repository.FindByID(context.Background(), "not-a-uuid")

	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_Create verifies duplicates surface as a Conflict carrying the constraint.
*/
func TestPostgresRepository_Create(t *testing.T) {
	t.Run("inserted", func(t *testing.T) {
		mock, repository := newMockRepository(t)
		account := &auth.Account{ID: uuidv7.New(), Username: "alice", Email: "a@x.io", PasswordHash: "hash"}

		mock.ExpectExec(`INSERT INTO users.account`).
			WithArgs(account.ID, "alice", "a@x.io", "hash", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repository.Create(context.Background(), account))
		assert.False(t, account.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate", func(t *testing.T) {
		mock, repository := newMockRepository(t)
		account := &auth.Account{ID: uuidv7.New(), Username: "alice", Email: "a@x.io", PasswordHash: "hash"}

		mock.ExpectExec(`INSERT INTO users.account`).
			WithArgs(account.ID, "alice", "a@x.io", "hash", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "account_email_key"})

		err := repository.Create(context.Background(), account)

		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperr.CodeConflict, appErr.Code)
		assert.Equal(t, auth.MessageUserExists, appErr.Message)
		assert.True(t, dberr.IsUniqueViolation(err))
		assert.Equal(t, "account_email_key", dberr.ConstraintName(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

/*
TestPostgresRepository_UpdateProfile verifies nil fields pass through to COALESCE
and a missing row is NotFound.
*/
func TestPostgresRepository_UpdateProfile(t *testing.T) {
	id := uuidv7.New()
	username := "bob"

	t.Run("partial", func(t *testing.T) {
		mock, repository := newMockRepository(t)

		mock.ExpectExec(`UPDATE users.account`).
			WithArgs(id, &username, (*string)(nil), (*string)(nil)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repository.UpdateProfile(context.Background(), id, auth.ProfileChanges{Username: &username})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing_row", func(t *testing.T) {
		mock, repository := newMockRepository(t)

		mock.ExpectExec(`UPDATE users.account`).
			WithArgs(id, &username, (*string)(nil), (*string)(nil)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repository.UpdateProfile(context.Background(), id, auth.ProfileChanges{Username: &username})
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

/*
TestPostgresRepository_RefreshToken verifies the set and conditional clear statements.
*/
func TestPostgresRepository_RefreshToken(t *testing.T) {
	id := uuidv7.New()
	mock, repository := newMockRepository(t)

	mock.ExpectExec(`UPDATE users.account SET refreshtoken = \$2`).
		WithArgs(id, "digest").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`SET refreshtoken = NULL`).
		WithArgs("digest").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))
	mock.ExpectQuery(`SET refreshtoken = NULL`).
		WithArgs("digest").
		WillReturnError(pgx.ErrNoRows)

	ctx := context.Background()
	require.NoError(t, repository.SetRefreshToken(ctx, id, "digest"))

	cleared, err := repository.ClearRefreshToken(ctx, "digest")
	require.NoError(t, err)
	assert.Equal(t, id, cleared)

	_, err = repository.ClearRefreshToken(ctx, "digest")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_Delete verifies a zero-row delete reports NotFound.
*/
func TestPostgresRepository_Delete(t *testing.T) {
	id := uuidv7.New()
	mock, repository := newMockRepository(t)

	mock.ExpectExec(`DELETE FROM users.account WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM users.account WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repository.Delete(context.Background(), id))
	assert.True(t, apperr.HasCode(repository.Delete(context.Background(), id), apperr.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
