// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package mailer delivers the transactional emails of the portal.
//
// Three backends are available: SMTP, an HTTP JSON relay and a logging
// backend for local development. [New] picks one from configuration and
// wraps it in a retrying decorator.
package mailer

import (
	"context"

	"github.com/MKhiriev/go-auth-portal/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mailer_mock.go -package=mock

// Mailer sends confirmation emails.
type Mailer interface {
	// SendConfirmation delivers mail or returns an error if the backend did
	// not accept it.
	SendConfirmation(ctx context.Context, mail models.ConfirmationMail) error
}
