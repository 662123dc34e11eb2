// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultHashCost is the bcrypt work factor used for stored passwords.
const DefaultHashCost = 10

// PasswordMatch is the outcome of comparing a plaintext password against a stored hash.
type PasswordMatch int

const (
	// PasswordValid means the plaintext produced the stored hash.
	PasswordValid PasswordMatch = iota

	// PasswordInvalid means the plaintext does not match.
	PasswordInvalid

	// PasswordMalformedHash means the stored value is not a usable bcrypt hash.
	PasswordMalformedHash
)

// String returns a log-friendly name.
func (m PasswordMatch) String() string {
	switch m {
	case PasswordValid:
		return "valid"
	case PasswordInvalid:
		return "invalid"
	default:
		return "malformed_hash"
	}
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(context context.Context, plainTextPassword string) (string, error)
	Compare(context context.Context, plainTextPassword, existingHash string) (PasswordMatch, error)
}

// BcryptHasher hashes passwords with bcrypt.
//
// Hashing and comparing share one pool of GOMAXPROCS slots, so neither a burst
// of registrations nor a burst of logins can starve the rest of the server of CPU.
type BcryptHasher struct {
	cost  int
	slots *semaphore.Weighted
}

// NewBcryptHasher returns a hasher with the given cost. Zero selects [DefaultHashCost].
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = DefaultHashCost
	}

	return &BcryptHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
}

/*
Hash derives a salted bcrypt hash from a plain-text password.

Each call uses a fresh random salt, so hashing the same input twice yields
different outputs. The call waits for a free hashing slot and gives up when
the context is cancelled.

Returns:
  - string: The encoded hash ($2a$...)
  - error: Context cancellation or bcrypt failure (e.g. input over 72 bytes)
*/
func (hasher *BcryptHasher) Hash(context context.Context, plainTextPassword string) (string, error) {
	if err := hasher.slots.Acquire(context, 1); err != nil {
		return "", fmt.Errorf("sec: hash slot unavailable: %w", err)
	}
	defer hasher.slots.Release(1)

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

/*
Compare checks a plain-text password against a stored hash in constant time.

A mismatch or an unusable hash is reported through the [PasswordMatch],
never as an error.

Returns:
  - PasswordMatch: Valid, Invalid or MalformedHash
  - error: Only when the context ends before a hashing slot frees up
*/
func (hasher *BcryptHasher) Compare(context context.Context, plainTextPassword, existingHash string) (PasswordMatch, error) {
	if err := hasher.slots.Acquire(context, 1); err != nil {
		return PasswordInvalid, fmt.Errorf("sec: hash slot unavailable: %w", err)
	}
	defer hasher.slots.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	switch {
	case err == nil:
		return PasswordValid, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return PasswordInvalid, nil
	default:
		return PasswordMalformedHash, nil
	}
}

// Verify reports whether the password matches. A malformed hash or a
// cancelled context fails closed.
func (hasher *BcryptHasher) Verify(context context.Context, plainTextPassword, existingHash string) bool {
	match, err := hasher.Compare(context, plainTextPassword, existingHash)
	return err == nil && match == PasswordValid
}

// # Token Digests

// DigestToken returns the hex SHA-256 digest of a token for storage.
// Refresh tokens are persisted as digests so a database leak does not leak live credentials.
func DigestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// DigestMatches compares a presented token against a stored digest in constant time.
func DigestMatches(token, storedDigest string) bool {
	presented := DigestToken(token)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(storedDigest)) == 1
}
