package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/models"
	"github.com/sethvargo/go-retry"
)

// RetryingMailer retries deliveries that failed with [ErrTemporaryFailure],
// with exponential backoff and a bounded number of retries.
type RetryingMailer struct {
	inner      Mailer
	maxRetries uint64
	baseDelay  time.Duration
}

func NewRetryingMailer(inner Mailer, maxRetries uint64, baseDelay time.Duration) *RetryingMailer {
	return &RetryingMailer{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

func (m *RetryingMailer) SendConfirmation(ctx context.Context, mail models.ConfirmationMail) error {
	log := logger.FromContext(ctx)
	backoff := retry.WithMaxRetries(m.maxRetries, retry.NewExponential(m.baseDelay))

	attempts := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		err := m.inner.SendConfirmation(ctx, mail)
		if errors.Is(err, ErrTemporaryFailure) {
			log.Warn().Err(err).Str("func", "RetryingMailer.SendConfirmation").Int("attempt", attempts).Msg("mail delivery failed")
			return retry.RetryableError(err)
		}
		return err
	})
	if errors.Is(err, ErrTemporaryFailure) {
		return fmt.Errorf("%w after %d attempts: %w", ErrRetryLimitExceeded, attempts, err)
	}

	return err
}
