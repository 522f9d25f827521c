// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Account represents a user account that can sign in once its email address
// has been confirmed.
// Credential fields must never be exposed outside trusted boundaries.
type Account struct {
	// ID is the internal unique identifier of the account.
	ID int64 `json:"id"`

	// Username is the unique login name (3-30 characters).
	Username string `json:"username"`

	// Email is the unique address confirmation mails are sent to.
	Email string `json:"email"`

	// PasswordHash stores the bcrypt hash of the password.
	// It is never serialized.
	PasswordHash string `json:"-"`

	// ConfirmationToken holds the SHA-256 digest of the token mailed to the
	// user. Nil once the account has been confirmed.
	ConfirmationToken *string `json:"-"`

	// EmailVerifiedAt is set when the account owner presents a valid
	// confirmation token. Nil means the account cannot authenticate.
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`

	// Active is switched on together with EmailVerifiedAt.
	Active bool `json:"active"`

	// BlockedUntil refuses logins while it lies in the future.
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`

	// LastLoginAt is refreshed on every successful authentication.
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// DeletedAt marks a soft-deleted account. Soft-deleted accounts are
	// invisible to every lookup of this service.
	DeletedAt *time.Time `json:"-"`

	// CreatedAt is the timestamp when the account was registered.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last mutation.
	UpdatedAt time.Time `json:"updated_at"`
}

// Status reports the verification state of the account.
func (a Account) Status() VerificationStatus {
	if a.Active && a.EmailVerifiedAt != nil && a.ConfirmationToken == nil {
		return Verified
	}

	return Unverified
}

// IsBlockedAt reports whether the lockout window is still open at now.
func (a Account) IsBlockedAt(now time.Time) bool {
	return a.BlockedUntil != nil && a.BlockedUntil.After(now)
}

// CanAuthenticateAt reports whether the account satisfies every
// precondition for a login at now, password aside.
func (a Account) CanAuthenticateAt(now time.Time) bool {
	return a.DeletedAt == nil &&
		a.Active &&
		a.EmailVerifiedAt != nil &&
		!a.IsBlockedAt(now)
}

// VerificationStatus is the state of an account's email verification.
type VerificationStatus int

const (
	// Unverified accounts were registered but never confirmed.
	Unverified VerificationStatus = iota
	// Verified accounts presented a valid confirmation token.
	Verified
)

func (s VerificationStatus) String() string {
	switch s {
	case Verified:
		return "verified"
	default:
		return "unverified"
	}
}

// AccountUpdate is an explicit update command for a single account.
// Only non-nil fields (and set Clear* flags) are written, in one statement.
type AccountUpdate struct {
	// ID identifies the account to update. Required.
	ID int64

	// LastLoginAt, when non-nil, replaces last_login_at.
	LastLoginAt *time.Time

	// BlockedUntil, when non-nil, replaces blocked_until.
	BlockedUntil *time.Time

	// ClearBlockedUntil sets blocked_until to NULL. Wins over BlockedUntil.
	ClearBlockedUntil bool
}

// IsEmpty reports whether the command would change nothing.
func (u AccountUpdate) IsEmpty() bool {
	return u.LastLoginAt == nil && u.BlockedUntil == nil && !u.ClearBlockedUntil
}
