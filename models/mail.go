// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ConfirmationMail describes the email that lets a new account owner prove
// control of their address.
type ConfirmationMail struct {
	// To is the recipient address.
	To string `json:"to"`

	// Username is used to greet the recipient.
	Username string `json:"username"`

	// Link is the absolute confirmation URL embedding the plain token.
	Link string `json:"link"`
}
