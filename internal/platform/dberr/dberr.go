// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
)

// # Oops Codes

const (
	CodeQueryFailed = "db_query_failed"
	CodeUniqueKey   = "db_unique_violation"
)

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// ConstraintName returns the violated constraint, or "" when err is not a [pgconn.PgError].
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

/*
Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
It hides internal database details from the client while classifying the error type.

Parameters:
  - err: The raw pgx error
  - resource: Client-facing resource name used for NotFound ("User")
  - conflictMessage: Client-facing message used for unique violations

Returns:
  - error: nil, [apperr.NotFound], [apperr.Conflict], or [apperr.Internal] carrying an oops error
*/
func Wrap(err error, resource, conflictMessage string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. Unique violation (SQLSTATE 23505)
	if IsUniqueViolation(err) {
		conflict := apperr.Conflict(conflictMessage)
		conflict.Cause = oops.Code(CodeUniqueKey).With("constraint", ConstraintName(err)).Wrap(err)
		return conflict
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(oops.Code(CodeQueryFailed).Wrap(err))
}
