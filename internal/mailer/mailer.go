// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package mailer

import (
	"fmt"

	"github.com/MKhiriev/go-auth-portal/internal/config"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
)

// New builds the backend selected by cfg.Driver and wraps it in a
// [RetryingMailer].
func New(cfg config.Mail, log *logger.Logger) (Mailer, error) {
	var backend Mailer

	switch cfg.Driver {
	case config.MailDriverSMTP:
		smtpMailer, err := NewSMTPMailer(cfg, log)
		if err != nil {
			return nil, err
		}
		backend = smtpMailer
	case config.MailDriverHTTP:
		backend = NewHTTPMailer(cfg, log)
	case config.MailDriverLog:
		log.Warn().Str("func", "mailer.New").Msg("log mail driver enabled, confirmation links are only written to the log")
		backend = NewLogMailer(log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	return NewRetryingMailer(backend, cfg.RetryAttempts, cfg.RetryBaseDelay), nil
}
