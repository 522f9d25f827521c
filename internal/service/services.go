package service

import (
	"fmt"

	"github.com/MKhiriev/go-auth-portal/internal/config"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/internal/mailer"
	"github.com/MKhiriev/go-auth-portal/internal/metrics"
	"github.com/MKhiriev/go-auth-portal/internal/store"
	"github.com/MKhiriev/go-auth-portal/internal/utils"
)

type Services struct {
	AuthService    AuthService
	AppInfoService AppInfoService
}

// NewServices builds the services on top of storages and mailer. The auth
// service is wrapped so that its outcomes are counted in m.
func NewServices(storages *store.Storages, mailer mailer.Mailer, m *metrics.Metrics, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	hasher, err := NewBcryptHasher(cfg.App.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error creating password hasher: %w", err)
	}

	appInfoService, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	authService := NewAuthService(storages.AccountRepository, mailer, hasher, utils.NewTokenGenerator(), cfg.App, logger)

	return &Services{
		AuthService:    NewAuthMetricsService(m).Wrap(authService),
		AppInfoService: appInfoService,
	}, nil
}
