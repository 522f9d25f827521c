package service

import (
	"context"

	"github.com/MKhiriev/go-auth-portal/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AuthService verifies credentials, registers accounts and confirms their
// email addresses.
type AuthService interface {
	// Login returns a session for the authenticatable account matching
	// username and password. Every failure is ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (models.Session, error)

	// Register creates an unverified account and mails its confirmation
	// link. Nothing is persisted when the mail cannot be delivered.
	Register(ctx context.Context, registration models.Registration) (models.Account, error)

	// Confirm verifies the account holding token and returns a session
	// for it. Unknown or consumed tokens yield ErrInvalidToken.
	Confirm(ctx context.Context, token string) (models.Session, error)

	// CurrentAccount loads the account a session is bound to.
	CurrentAccount(ctx context.Context, accountID int64) (models.Account, error)

	CreateToken(ctx context.Context, session models.Session) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// PasswordHasher hashes passwords one way and verifies them in constant time.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool

	// VerifyDummy burns the time of a Verify call against a hash that
	// never matches. Used when no account was found.
	VerifyDummy(password string)
}

// TokenGenerator produces confirmation tokens.
type TokenGenerator interface {
	Generate() (string, error)
}
