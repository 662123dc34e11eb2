// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	"github.com/taibuivan/yomira-identity/internal/users/auth"
)

func seed(t *testing.T, repository *auth.MemoryAccountRepository, id, username, email string) {
	t.Helper()
	require.NoError(t, repository.Create(context.Background(), &auth.Account{
		ID: id, Username: username, Email: email, PasswordHash: "hash",
	}))
}

/*
TestMemoryRepository_Uniqueness verifies the in-memory store enforces the same
unique fields as the database.
*/
func TestMemoryRepository_Uniqueness(t *testing.T) {
	repository := auth.NewMemoryAccountRepository()
	ctx := context.Background()

	seed(t, repository, "1", "alice", "a@x.io")
	seed(t, repository, "2", "bob", "b@x.io")

	err := repository.Create(ctx, &auth.Account{ID: "3", Username: "alice", Email: "c@x.io"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	// Taking another account's email is a conflict, keeping your own is not.
	taken := "a@x.io"
	err = repository.UpdateProfile(ctx, "2", auth.ProfileChanges{Email: &taken})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	own := "b@x.io"
	assert.NoError(t, repository.UpdateProfile(ctx, "2", auth.ProfileChanges{Email: &own}))
}

/*
TestMemoryRepository_Snapshots verifies callers cannot mutate stored state through returned values.
*/
func TestMemoryRepository_Snapshots(t *testing.T) {
	repository := auth.NewMemoryAccountRepository()
	ctx := context.Background()

	seed(t, repository, "1", "alice", "a@x.io")
	require.NoError(t, repository.SetRefreshToken(ctx, "1", "digest"))

	found, err := repository.FindByID(ctx, "1")
	require.NoError(t, err)
	found.Username = "mallory"
	*found.RefreshTokenDigest = "forged"

	again, err := repository.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "digest", *again.RefreshTokenDigest)
}

/*
TestMemoryRepository_RefreshTokenLifecycle verifies set, overwrite and clear by digest.
*/
func TestMemoryRepository_RefreshTokenLifecycle(t *testing.T) {
	repository := auth.NewMemoryAccountRepository()
	ctx := context.Background()

	seed(t, repository, "1", "alice", "a@x.io")

	require.NoError(t, repository.SetRefreshToken(ctx, "1", "first"))
	require.NoError(t, repository.SetRefreshToken(ctx, "1", "second"))

	_, err := repository.ClearRefreshToken(ctx, "first")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	id, err := repository.ClearRefreshToken(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	account, err := repository.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Nil(t, account.RefreshTokenDigest)

	assert.True(t, apperr.HasCode(repository.SetRefreshToken(ctx, "missing", "x"), apperr.CodeNotFound))
}

/*
TestMemoryRepository_Delete verifies the record and its token disappear together.
*/
func TestMemoryRepository_Delete(t *testing.T) {
	repository := auth.NewMemoryAccountRepository()
	ctx := context.Background()

	seed(t, repository, "1", "alice", "a@x.io")
	require.NoError(t, repository.SetRefreshToken(ctx, "1", "digest"))

	require.NoError(t, repository.Delete(ctx, "1"))

	_, err := repository.FindByIdentity(ctx, "alice", "a@x.io")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = repository.ClearRefreshToken(ctx, "digest")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	assert.True(t, apperr.HasCode(repository.Delete(ctx, "1"), apperr.CodeNotFound))
}
