package mailer

import (
	"context"

	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/models"
)

// LogMailer writes confirmation links to the log instead of sending mail.
// Development only.
type LogMailer struct {
	logger *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{logger: log}
}

func (m *LogMailer) SendConfirmation(ctx context.Context, mail models.ConfirmationMail) error {
	if _, err := renderConfirmation(mail); err != nil {
		return err
	}

	m.logger.Info().
		Str("func", "LogMailer.SendConfirmation").
		Str("to", mail.To).
		Str("link", mail.Link).
		Msg("confirmation mail (not sent, log driver)")
	return nil
}
