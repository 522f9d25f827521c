package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-auth-portal/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// AccountRepository persists accounts and performs the atomic state changes
// of the login and confirmation flows.
type AccountRepository interface {
	// CreateAccount inserts account inside a transaction and calls deliver
	// with the stored row before committing. A deliver error rolls the
	// insert back and is returned wrapped in [ErrDeliveryAborted].
	CreateAccount(ctx context.Context, account models.Account, deliver func(models.Account) error) (models.Account, error)

	// FindAuthenticatableAccount returns the non-deleted, active, verified,
	// not currently blocked account with the given username.
	FindAuthenticatableAccount(ctx context.Context, username string, now time.Time) (models.Account, error)

	// FindAccountByID returns a non-deleted account by id.
	FindAccountByID(ctx context.Context, id int64) (models.Account, error)

	// UsernameExists reports whether a non-deleted account uses username.
	UsernameExists(ctx context.Context, username string) (bool, error)

	// EmailExists reports whether a non-deleted account uses email.
	EmailExists(ctx context.Context, email string) (bool, error)

	// UpdateAccount applies update in a single statement.
	UpdateAccount(ctx context.Context, update models.AccountUpdate) error

	// ConfirmAccount verifies and activates the account holding tokenDigest
	// and clears the token. It succeeds for at most one caller per token.
	ConfirmAccount(ctx context.Context, tokenDigest string, now time.Time) (models.Account, error)
}

// ErrorClassificator decides whether a failed database operation may be
// retried and which unique constraint, if any, it violated.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
	UniqueViolation(err error) (column string, ok bool)
}
