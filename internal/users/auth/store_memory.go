// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
)

// MemoryAccountRepository keeps accounts in process memory.
//
// It is selected with STORE_DRIVER=memory for local development and backs the
// service and HTTP tests. The mutex stands in for the row-level atomicity a
// database gives; uniqueness mirrors the Postgres unique indexes.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewMemoryAccountRepository creates an empty in-memory store.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[string]*Account)}
}

// snapshot copies an account so callers never alias stored state.
func snapshot(account *Account) *Account {
	clone := *account
	if account.RefreshTokenDigest != nil {
		digest := *account.RefreshTokenDigest
		clone.RefreshTokenDigest = &digest
	}
	return &clone
}

func (repository *MemoryAccountRepository) find(match func(*Account) bool) (*Account, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	for _, account := range repository.accounts {
		if match(account) {
			return snapshot(account), nil
		}
	}
	return nil, apperr.NotFound(ResourceUser)
}

// FindByID implements [AccountRepository].
func (repository *MemoryAccountRepository) FindByID(_ context.Context, id string) (*Account, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	account, ok := repository.accounts[id]
	if !ok {
		return nil, apperr.NotFound(ResourceUser)
	}
	return snapshot(account), nil
}

// FindByEmail implements [AccountRepository].
func (repository *MemoryAccountRepository) FindByEmail(_ context.Context, email string) (*Account, error) {
	return repository.find(func(account *Account) bool { return account.Email == email })
}

// FindByUsername implements [AccountRepository].
func (repository *MemoryAccountRepository) FindByUsername(_ context.Context, username string) (*Account, error) {
	return repository.find(func(account *Account) bool { return account.Username == username })
}

// FindByIdentity implements [AccountRepository].
func (repository *MemoryAccountRepository) FindByIdentity(_ context.Context, username, email string) (*Account, error) {
	return repository.find(func(account *Account) bool {
		return account.Username == username || account.Email == email
	})
}

// taken reports whether another account already holds the username or email. Caller holds the lock.
func (repository *MemoryAccountRepository) taken(exceptID string, username, email *string) bool {
	for id, account := range repository.accounts {
		if id == exceptID {
			continue
		}
		if username != nil && account.Username == *username {
			return true
		}
		if email != nil && account.Email == *email {
			return true
		}
	}
	return false
}

// Create implements [AccountRepository].
func (repository *MemoryAccountRepository) Create(_ context.Context, account *Account) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.accounts[account.ID]; exists || repository.taken("", &account.Username, &account.Email) {
		return apperr.Conflict(MessageUserExists)
	}

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	repository.accounts[account.ID] = snapshot(account)
	return nil
}

// UpdateProfile implements [AccountRepository].
func (repository *MemoryAccountRepository) UpdateProfile(_ context.Context, id string, changes ProfileChanges) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	account, ok := repository.accounts[id]
	if !ok {
		return apperr.NotFound(ResourceUser)
	}

	if repository.taken(id, changes.Username, changes.Email) {
		return apperr.Conflict(MessageUserExists)
	}

	if changes.Username != nil {
		account.Username = *changes.Username
	}
	if changes.Email != nil {
		account.Email = *changes.Email
	}
	if changes.PasswordHash != nil {
		account.PasswordHash = *changes.PasswordHash
	}
	account.UpdatedAt = time.Now().UTC()

	return nil
}

// SetRefreshToken implements [AccountRepository].
func (repository *MemoryAccountRepository) SetRefreshToken(_ context.Context, id, digest string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	account, ok := repository.accounts[id]
	if !ok {
		return apperr.NotFound(ResourceUser)
	}

	account.RefreshTokenDigest = &digest
	account.UpdatedAt = time.Now().UTC()
	return nil
}

// ClearRefreshToken implements [AccountRepository].
func (repository *MemoryAccountRepository) ClearRefreshToken(_ context.Context, digest string) (string, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for id, account := range repository.accounts {
		if account.RefreshTokenDigest != nil && *account.RefreshTokenDigest == digest {
			account.RefreshTokenDigest = nil
			account.UpdatedAt = time.Now().UTC()
			return id, nil
		}
	}

	return "", apperr.NotFound(ResourceUser)
}

// Delete implements [AccountRepository].
func (repository *MemoryAccountRepository) Delete(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.accounts[id]; !ok {
		return apperr.NotFound(ResourceUser)
	}

	delete(repository.accounts, id)
	return nil
}
