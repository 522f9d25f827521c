// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// auth portal handlers and middleware.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies, rendered pages or log entries to describe the outcome
// of an operation. Keeping them in one place ensures consistent wording
// throughout the pages and the API.
package app

const (
	// MsgInvalidDataProvided is returned when the request body cannot be
	// decoded or fails basic validation (e.g. missing required fields).
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInvalidLogin is shown for every failed login, whatever the cause.
	// Unknown usernames, wrong passwords, unconfirmed and locked accounts
	// must be indistinguishable.
	MsgInvalidLogin = "Invalid login."

	// MsgConfirmationMailFailed is shown on the registration form when the
	// confirmation email could not be delivered. Nothing was stored.
	MsgConfirmationMailFailed = "An error occurred while sending the confirmation email."

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgTokenIsExpiredOrInvalid is returned when a JWT bearer token is
	// either expired or cannot be verified (e.g. wrong signature).
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgInvalidCSRFToken is returned when a form post carries a missing or
	// stale CSRF token.
	MsgInvalidCSRFToken = "invalid or expired form, please reload the page"

	// MsgTooManyRequests is returned when a client exceeds the rate limit of
	// the login or registration endpoints.
	MsgTooManyRequests = "too many requests, try again later"

	// MsgAlreadyTaken is returned by the API when the username or email
	// belongs to another account.
	MsgAlreadyTaken = "username or email already taken"

	// MsgVersionIsNotSpecified is written when the build carries no version.
	MsgVersionIsNotSpecified = "app version is not specified"
)
