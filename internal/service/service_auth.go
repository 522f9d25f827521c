// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/MKhiriev/go-auth-portal/internal/config"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/internal/mailer"
	"github.com/MKhiriev/go-auth-portal/internal/store"
	"github.com/MKhiriev/go-auth-portal/internal/utils"
	"github.com/MKhiriev/go-auth-portal/models"
)

// ConfirmationPath is the route segment confirmation links point to.
const ConfirmationPath = "new_user_confirmation"

// maxTokenAttempts bounds how often Register draws a new token after a
// collision with a pending one.
const maxTokenAttempts = 3

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// authService is the concrete implementation of AuthService.
//
// Login and Confirm take the current time from now, so the lockout window
// and the recorded timestamps can be pinned in tests.
type authService struct {
	accounts store.AccountRepository
	mailer   mailer.Mailer
	hasher   PasswordHasher
	tokens   TokenGenerator
	now      func() time.Time

	// baseURL is the public origin confirmation links are built on.
	baseURL string

	tokenSignKey  string
	tokenIssuer   string
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewAuthService wires an AuthService to its collaborators. Security
// parameters are read from cfg; the service holds no mutable state and is
// safe for concurrent use.
func NewAuthService(
	accounts store.AccountRepository,
	mailer mailer.Mailer,
	hasher PasswordHasher,
	tokens TokenGenerator,
	cfg config.App,
	logger *logger.Logger,
) AuthService {
	return &authService{
		accounts:      accounts,
		mailer:        mailer,
		hasher:        hasher,
		tokens:        tokens,
		now:           func() time.Time { return time.Now().UTC() },
		baseURL:       cfg.BaseURL,
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		logger:        logger,
	}
}

// Login authenticates username with password.
//
// Only accounts that are active, verified, not deleted and not blocked at
// the current time are considered. When none matches, the password is still
// run through the hasher so that the response time does not reveal whether
// the username exists. On success the lockout is cleared and the login time
// recorded in a single update.
func (a *authService) Login(ctx context.Context, username, password string) (models.Session, error) {
	log := logger.FromContext(ctx)
	now := a.now()

	if username == "" || password == "" {
		a.hasher.VerifyDummy(password)
		return models.Session{}, ErrInvalidCredentials
	}

	account, err := a.accounts.FindAuthenticatableAccount(ctx, username, now)
	if errors.Is(err, store.ErrAccountNotFound) || (err == nil && !account.CanAuthenticateAt(now)) {
		a.hasher.VerifyDummy(password)
		log.Info().Str("func", "authService.Login").Str("username", username).Msg("no authenticatable account")
		return models.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		log.Err(err).Str("func", "authService.Login").Msg("account lookup failed")
		return models.Session{}, fmt.Errorf("%w: %w", ErrLoggingIn, err)
	}

	if !a.hasher.Verify(account.PasswordHash, password) {
		log.Info().Str("func", "authService.Login").Int64("account_id", account.ID).Msg("wrong password")
		return models.Session{}, ErrInvalidCredentials
	}

	err = a.accounts.UpdateAccount(ctx, models.AccountUpdate{
		ID:                account.ID,
		LastLoginAt:       &now,
		ClearBlockedUntil: true,
	})
	if err != nil {
		log.Err(err).Str("func", "authService.Login").Int64("account_id", account.ID).Msg("recording login failed")
		return models.Session{}, fmt.Errorf("%w: %w", ErrLoggingIn, err)
	}

	return models.NewSession(account, now), nil
}

// Register creates an unverified account for registration and sends the
// confirmation mail.
//
// The account is inserted in a transaction that commits only after the mail
// backend accepted the message, so a delivery failure leaves nothing behind
// and is reported as ErrDeliveryFailure. Collisions with existing usernames
// or emails are reported as ErrUniquenessConflict before any mail is sent.
func (a *authService) Register(ctx context.Context, registration models.Registration) (models.Account, error) {
	log := logger.FromContext(ctx)

	if registration.Username == "" || registration.Email == "" || registration.Password == "" ||
		registration.Password != registration.PasswordConfirmation || len(registration.Password) > maxPasswordBytes {
		log.Error().Str("func", "authService.Register").Str("username", registration.Username).Msg("invalid registration data provided")
		return models.Account{}, ErrInvalidDataProvided
	}

	passwordHash, err := a.hasher.Hash(registration.Password)
	if err != nil {
		log.Err(err).Str("func", "authService.Register").Msg("password hashing failed")
		return models.Account{}, fmt.Errorf("%w: %w", ErrHashingPassword, err)
	}

	for attempt := 1; ; attempt++ {
		token, err := a.tokens.Generate()
		if err != nil {
			log.Err(err).Str("func", "authService.Register").Msg("token generation failed")
			return models.Account{}, fmt.Errorf("%w: %w", ErrGeneratingToken, err)
		}

		link, err := a.confirmationLink(token)
		if err != nil {
			return models.Account{}, fmt.Errorf("%w: %w", ErrGeneratingToken, err)
		}

		digest := utils.DigestToken(token)
		account := models.Account{
			Username:          registration.Username,
			Email:             registration.Email,
			PasswordHash:      passwordHash,
			ConfirmationToken: &digest,
		}
		mail := models.ConfirmationMail{
			To:       registration.Email,
			Username: registration.Username,
			Link:     link,
		}

		created, err := a.accounts.CreateAccount(ctx, account, func(models.Account) error {
			return a.mailer.SendConfirmation(ctx, mail)
		})
		switch {
		case err == nil:
			log.Info().Str("func", "authService.Register").Int64("account_id", created.ID).Msg("account registered, confirmation mail sent")
			return created, nil
		case errors.Is(err, store.ErrTokenAlreadyExists) && attempt < maxTokenAttempts:
			log.Warn().Str("func", "authService.Register").Int("attempt", attempt).Msg("confirmation token collision")
			continue
		case errors.Is(err, store.ErrDeliveryAborted):
			log.Err(err).Str("func", "authService.Register").Str("username", registration.Username).Msg("confirmation mail was not delivered, account discarded")
			return models.Account{}, fmt.Errorf("%w: %w", ErrDeliveryFailure, err)
		case errors.Is(err, store.ErrUsernameAlreadyExists), errors.Is(err, store.ErrEmailAlreadyExists):
			log.Info().Str("func", "authService.Register").Str("username", registration.Username).Msg("registration collides with an existing account")
			return models.Account{}, fmt.Errorf("%w: %w", ErrUniquenessConflict, err)
		default:
			log.Err(err).Str("func", "authService.Register").Msg("account creation failed")
			return models.Account{}, fmt.Errorf("%w: %w", ErrCreatingAccount, err)
		}
	}
}

// Confirm consumes token and returns a session for the account it belonged
// to.
//
// The lookup and the state change are one conditional update, so two
// concurrent calls with the same token confirm the account at most once.
// Tokens that match nothing leave the store untouched.
func (a *authService) Confirm(ctx context.Context, token string) (models.Session, error) {
	log := logger.FromContext(ctx)

	if len(token) != 2*utils.ConfirmationTokenBytes {
		return models.Session{}, ErrInvalidToken
	}

	now := a.now()
	account, err := a.accounts.ConfirmAccount(ctx, utils.DigestToken(token), now)
	if errors.Is(err, store.ErrAccountNotFound) {
		log.Info().Str("func", "authService.Confirm").Msg("confirmation token matched no pending account")
		return models.Session{}, ErrInvalidToken
	}
	if err != nil {
		log.Err(err).Str("func", "authService.Confirm").Msg("account confirmation failed")
		return models.Session{}, fmt.Errorf("%w: %w", ErrConfirmingAccount, err)
	}

	log.Info().Str("func", "authService.Confirm").Int64("account_id", account.ID).Msg("account confirmed")
	return models.NewSession(account, now), nil
}

// CurrentAccount loads the account behind an established session.
func (a *authService) CurrentAccount(ctx context.Context, accountID int64) (models.Account, error) {
	account, err := a.accounts.FindAccountByID(ctx, accountID)
	if errors.Is(err, store.ErrAccountNotFound) {
		return models.Account{}, ErrAccountNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "authService.CurrentAccount").Int64("account_id", accountID).Msg("account lookup failed")
		return models.Account{}, fmt.Errorf("account lookup failed: %w", err)
	}

	return account, nil
}

// CreateToken issues a signed bearer token for session.
//
// The token carries the configured issuer and expires after the configured
// duration.
func (a *authService) CreateToken(ctx context.Context, session models.Session) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, session.AccountID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates a raw bearer token. Every validation failure
// (expired, wrong issuer, malformed) is normalised to
// ErrTokenIsExpiredOrInvalid.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// confirmationLink returns <baseURL>/new_user_confirmation/<token>.
func (a *authService) confirmationLink(token string) (string, error) {
	return url.JoinPath(a.baseURL, ConfirmationPath, token)
}
