package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-auth-portal/internal/config"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/internal/utils"
	"github.com/MKhiriev/go-auth-portal/models"
)

// relayRequest is the JSON body posted to the mail relay.
type relayRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// HTTPMailer hands mail to an HTTP relay accepting JSON messages.
type HTTPMailer struct {
	client   *utils.HTTPClient
	endpoint string
	from     string

	logger *logger.Logger
}

// NewHTTPMailer builds a relay backend. The API key, when set, is sent as a
// bearer token.
func NewHTTPMailer(cfg config.Mail, log *logger.Logger) *HTTPMailer {
	client := utils.NewHTTPClient(cfg.Timeout)
	if cfg.HTTPAPIKey != "" {
		client.SetAuthToken(cfg.HTTPAPIKey)
	}

	return &HTTPMailer{
		client:   client,
		endpoint: cfg.HTTPEndpoint,
		from:     cfg.From,
		logger:   log,
	}
}

// SendConfirmation posts the rendered mail to the relay. Transport failures
// and 5xx or 429 answers are reported as retryable.
func (m *HTTPMailer) SendConfirmation(ctx context.Context, confirmation models.ConfirmationMail) error {
	log := logger.FromContext(ctx)

	msg, err := renderConfirmation(confirmation)
	if err != nil {
		return err
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(relayRequest{
			From:    m.from,
			To:      msg.To,
			Subject: msg.Subject,
			Text:    msg.Text,
			HTML:    msg.HTML,
		}).
		Post(m.endpoint)
	if err != nil {
		log.Err(err).Str("func", "HTTPMailer.SendConfirmation").Msg("mail relay unreachable")
		return fmt.Errorf("%w: %w: %w", ErrTemporaryFailure, ErrSendingMail, err)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		log.Info().Str("func", "HTTPMailer.SendConfirmation").Int("status", status).Msg("confirmation mail accepted by relay")
		return nil
	case status >= 500 || status == http.StatusTooManyRequests:
		log.Warn().Str("func", "HTTPMailer.SendConfirmation").Int("status", status).Msg("mail relay temporarily unavailable")
		return fmt.Errorf("%w: %w: status %d", ErrTemporaryFailure, ErrRelayRejected, status)
	default:
		log.Error().Str("func", "HTTPMailer.SendConfirmation").Int("status", status).Msg("mail relay rejected the message")
		return fmt.Errorf("%w: status %d", ErrRelayRejected, status)
	}
}
