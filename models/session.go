// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Session is an authenticated session bound to one account.
//
// It is produced by a successful login or confirmation and handed to a
// session manager (cookie or bearer token) by the transport layer. Each
// request owns its own Session value.
type Session struct {
	// AccountID is the account the session is bound to.
	AccountID int64 `json:"account_id"`

	// Username is cached for display purposes.
	Username string `json:"username"`

	// AuthenticatedAt is when the credentials or token were accepted.
	AuthenticatedAt time.Time `json:"authenticated_at"`
}

// NewSession binds a session to account at the given time.
func NewSession(account Account, at time.Time) Session {
	return Session{
		AccountID:       account.ID,
		Username:        account.Username,
		AuthenticatedAt: at,
	}
}
