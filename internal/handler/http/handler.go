package http

import (
	"fmt"

	"github.com/MKhiriev/go-auth-portal/internal/config"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/internal/metrics"
	"github.com/MKhiriev/go-auth-portal/internal/ratelimit"
	"github.com/MKhiriev/go-auth-portal/internal/service"
	"github.com/MKhiriev/go-auth-portal/internal/validators"
)

type Handler struct {
	services  *service.Services
	validator validators.Validator
	sessions  *SessionManager
	metrics   *metrics.Metrics
	limiter   *ratelimit.Limiter
	views     *views
	cfg       config.Server

	logger *logger.Logger
}

func NewHandler(
	services *service.Services,
	validator validators.Validator,
	sessions *SessionManager,
	m *metrics.Metrics,
	limiter *ratelimit.Limiter,
	cfg config.Server,
	logger *logger.Logger,
) (*Handler, error) {
	v, err := parseViews()
	if err != nil {
		return nil, fmt.Errorf("error parsing views: %w", err)
	}

	logger.Info().Msg("http handler created")
	return &Handler{
		services:  services,
		validator: validator,
		sessions:  sessions,
		metrics:   m,
		limiter:   limiter,
		views:     v,
		cfg:       cfg,
		logger:    logger,
	}, nil
}
