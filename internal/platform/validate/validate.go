// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Handlers run the Validator on decoded request bodies before calling the
// service layer, so services only operate on syntactically valid input.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
)

// # Account Field Rules

const (
	UsernameMinLength = 3
	UsernameMaxLength = 30
	PasswordMinLength = 6

	// PasswordMaxBytes is the bcrypt input limit. Longer inputs would be silently truncated.
	PasswordMaxBytes = 72

	EmailMaxLength = 254
)

var (
	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// MaxBytes fails if the encoded length exceeds max bytes.
func (v *Validator) MaxBytes(field, value string, max int) *Validator {
	if len(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d bytes", max))
	}
	return v
}

// Email fails unless the value is a bare address of the form local@domain.tld.
//
// Display-name forms such as "Alice <a@x.com>" are rejected even though
// [mail.ParseAddress] accepts them.
func (v *Validator) Email(field, value string) *Validator {
	if !IsEmail(value) {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("password", strings.Contains(pw, username), "Must not contain the username")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method; call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// # Account Helpers

// Username applies the username length rules.
func (v *Validator) Username(field, value string) *Validator {
	return v.Required(field, value).
		MinLen(field, value, UsernameMinLength).
		MaxLen(field, value, UsernameMaxLength)
}

// Password applies the password length rules.
func (v *Validator) Password(field, value string) *Validator {
	return v.Required(field, value).
		MinLen(field, value, PasswordMinLength).
		MaxBytes(field, value, PasswordMaxBytes)
}

// IsEmail reports whether value looks like local@domain.tld with no whitespace.
func IsEmail(value string) bool {
	if value == "" || len(value) > EmailMaxLength || strings.ContainsAny(value, " \t\r\n") {
		return false
	}

	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != value {
		return false
	}

	at := strings.LastIndexByte(value, '@')
	domain := value[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// NormalizeUsername trims surrounding space and applies Unicode NFC so visually
// identical names compare equal in the unique index.
func NormalizeUsername(username string) string {
	return norm.NFC.String(strings.TrimSpace(username))
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
