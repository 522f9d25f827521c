package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-auth-portal/internal/metrics"
	"github.com/MKhiriev/go-auth-portal/models"
)

// AuthMetricsService counts the outcomes of the wrapped AuthService.
type AuthMetricsService struct {
	inner   AuthService
	metrics *metrics.Metrics
}

func NewAuthMetricsService(m *metrics.Metrics) AuthServiceWrapper {
	return &AuthMetricsService{metrics: m}
}

func (s *AuthMetricsService) Wrap(inner AuthService) AuthService {
	s.inner = inner
	return s
}

func (s *AuthMetricsService) Login(ctx context.Context, username, password string) (models.Session, error) {
	session, err := s.inner.Login(ctx, username, password)
	s.metrics.ObserveLogin(outcome(err))
	return session, err
}

func (s *AuthMetricsService) Register(ctx context.Context, registration models.Registration) (models.Account, error) {
	account, err := s.inner.Register(ctx, registration)
	s.metrics.ObserveRegistration(outcome(err))
	return account, err
}

func (s *AuthMetricsService) Confirm(ctx context.Context, token string) (models.Session, error) {
	session, err := s.inner.Confirm(ctx, token)
	s.metrics.ObserveConfirmation(outcome(err))
	return session, err
}

func (s *AuthMetricsService) CurrentAccount(ctx context.Context, accountID int64) (models.Account, error) {
	return s.inner.CurrentAccount(ctx, accountID)
}

func (s *AuthMetricsService) CreateToken(ctx context.Context, session models.Session) (models.Token, error) {
	return s.inner.CreateToken(ctx, session)
}

func (s *AuthMetricsService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	return s.inner.ParseToken(ctx, tokenString)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrInvalidCredentials):
		return metrics.OutcomeInvalidCredentials
	case errors.Is(err, ErrInvalidDataProvided):
		return metrics.OutcomeInvalidData
	case errors.Is(err, ErrUniquenessConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrDeliveryFailure):
		return metrics.OutcomeDeliveryFailure
	case errors.Is(err, ErrInvalidToken):
		return metrics.OutcomeInvalidToken
	default:
		return metrics.OutcomeError
	}
}
