// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net/url"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Driver and mail backend names accepted by the configuration.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"

	MailDriverSMTP = "smtp"
	MailDriverHTTP = "http"
	MailDriverLog  = "log"
)

// Defaults applied by [StructuredConfig.applyDefaults].
const (
	defaultHTTPAddress    = "localhost:8080"
	defaultRequestTimeout = 30 * time.Second
	defaultRateLimitRPS   = 1
	defaultRateLimitBurst = 5
	defaultTokenIssuer    = "go-auth-portal"
	defaultTokenDuration  = time.Hour
	defaultLogLevel       = "info"
	defaultCookieName     = "auth_portal_session"
	defaultSessionMaxAge  = 7 * 24 * time.Hour
	defaultMailTimeout    = 10 * time.Second
	defaultRetryAttempts  = 2
	defaultRetryDelay     = 200 * time.Millisecond
)

// applyDefaults fills optional settings that no source provided.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = defaultHTTPAddress
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = defaultRateLimitRPS
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = defaultRateLimitBurst
	}

	if cfg.Storage.DB.Driver == "" {
		cfg.Storage.DB.Driver = DriverPostgres
	}

	if cfg.App.TokenIssuer == "" {
		cfg.App.TokenIssuer = defaultTokenIssuer
	}
	if cfg.App.TokenDuration == 0 {
		cfg.App.TokenDuration = defaultTokenDuration
	}
	if cfg.App.BcryptCost == 0 {
		cfg.App.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = defaultLogLevel
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = defaultCookieName
	}
	if cfg.Session.MaxAge == 0 {
		cfg.Session.MaxAge = defaultSessionMaxAge
	}

	if cfg.Mail.Driver == "" {
		cfg.Mail.Driver = MailDriverLog
	}
	if cfg.Mail.SMTPPort == 0 {
		cfg.Mail.SMTPPort = 587
	}
	if cfg.Mail.Timeout == 0 {
		cfg.Mail.Timeout = defaultMailTimeout
	}
	if cfg.Mail.RetryAttempts == 0 {
		cfg.Mail.RetryAttempts = defaultRetryAttempts
	}
	if cfg.Mail.RetryBaseDelay == 0 {
		cfg.Mail.RetryBaseDelay = defaultRetryDelay
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: empty DSN", ErrInvalidStorageConfigs)
	}
	if cfg.Storage.DB.Driver != DriverPostgres && cfg.Storage.DB.Driver != DriverSQLite {
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}

	baseURL, err := url.Parse(cfg.App.BaseURL)
	if cfg.App.BaseURL == "" || err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return fmt.Errorf("%w: base URL must be an absolute URL", ErrInvalidAppConfigs)
	}
	if cfg.App.TokenSignKey == "" {
		return fmt.Errorf("%w: empty token sign key", ErrInvalidAppConfigs)
	}
	if cfg.App.BcryptCost < bcrypt.MinCost || cfg.App.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: bcrypt cost out of range", ErrInvalidAppConfigs)
	}

	if n := len(cfg.Session.HashKey); n != 32 && n != 64 {
		return fmt.Errorf("%w: hash key must be 32 or 64 bytes", ErrInvalidSessionConfigs)
	}
	if n := len(cfg.Session.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		return fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrInvalidSessionConfigs)
	}

	switch cfg.Mail.Driver {
	case MailDriverSMTP:
		if cfg.Mail.SMTPHost == "" || cfg.Mail.From == "" {
			return fmt.Errorf("%w: smtp driver needs host and sender", ErrInvalidMailConfigs)
		}
	case MailDriverHTTP:
		if cfg.Mail.HTTPEndpoint == "" || cfg.Mail.From == "" {
			return fmt.Errorf("%w: http driver needs endpoint and sender", ErrInvalidMailConfigs)
		}
	case MailDriverLog:
	default:
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidMailConfigs, cfg.Mail.Driver)
	}

	return nil
}
