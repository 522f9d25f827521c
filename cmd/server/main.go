package main

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-auth-portal/internal/config"
	"github.com/MKhiriev/go-auth-portal/internal/handler"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/internal/mailer"
	"github.com/MKhiriev/go-auth-portal/internal/metrics"
	"github.com/MKhiriev/go-auth-portal/internal/ratelimit"
	"github.com/MKhiriev/go-auth-portal/internal/server"
	"github.com/MKhiriev/go-auth-portal/internal/service"
	"github.com/MKhiriev/go-auth-portal/internal/store"
	"github.com/MKhiriev/go-auth-portal/internal/validators"
	"github.com/MKhiriev/go-auth-portal/internal/workers"
	"github.com/MKhiriev/go-auth-portal/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// Idle clients are dropped from the rate limiter after limiterIdleTTL.
const (
	limiterSweepInterval = time.Minute
	limiterIdleTTL       = 10 * time.Minute
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(buildInfo)

	log := logger.NewLogger("auth-portal-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	log = log.WithLevel(cfg.App.LogLevel)

	if cfg.App.Version == "" {
		cfg.App.Version = buildInfo.Version
	}

	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	mail, err := mailer.New(cfg.Mail, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating mailer")
	}

	m := metrics.New()

	services, err := service.NewServices(storages, mail, m, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	validator := validators.NewAccountValidator(storages.AccountRepository)
	limiter := ratelimit.NewLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)

	handlers, err := handler.NewHandlers(services, validator, m, limiter, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	backgroundWorkers := workers.NewWorkers(
		workers.NewPeriodicWorker("rate-limiter-sweep", limiterSweepInterval, func(context.Context) {
			if removed := limiter.Sweep(limiterIdleTTL); removed > 0 {
				log.Debug().Int("removed", removed).Msg("idle rate limiter entries dropped")
			}
		}, log),
	)

	srv, err := server.NewServer(handlers, backgroundWorkers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.Version)
	fmt.Printf("Build date: %s\n", info.Date)
	fmt.Printf("Build commit: %s\n", info.Commit)
}
