package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-auth-portal/internal/config"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/models"
)

func newSQLiteStorages(t *testing.T) *Storages {
	t.Helper()

	storages, err := NewStorages(context.Background(), config.Storage{
		DB: config.DB{
			Driver: config.DriverSQLite,
			DSN:    filepath.Join(t.TempDir(), "portal.db"),
		},
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	return storages
}

func newPendingAccount(username, email, digest string) models.Account {
	return models.Account{
		Username:          username,
		Email:             email,
		PasswordHash:      "$2a$04$hash",
		ConfirmationToken: &digest,
	}
}

func TestSQLiteStorages_AccountLifecycle(t *testing.T) {
	repo := newSQLiteStorages(t).AccountRepository
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	created, err := repo.CreateAccount(ctx, newPendingAccount("alice", "alice@x.com", "digest-1"), nil)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.Unverified, created.Status())

	_, err = repo.CreateAccount(ctx, newPendingAccount("alice", "other@x.com", "digest-2"), nil)
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
	_, err = repo.CreateAccount(ctx, newPendingAccount("bob", "alice@x.com", "digest-3"), nil)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	_, err = repo.CreateAccount(ctx, newPendingAccount("carol", "carol@x.com", "digest-1"), nil)
	assert.ErrorIs(t, err, ErrTokenAlreadyExists)

	exists, err := repo.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.EmailExists(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindAuthenticatableAccount(ctx, "alice", now)
	assert.ErrorIs(t, err, ErrAccountNotFound, "unconfirmed accounts cannot log in")

	confirmed, err := repo.ConfirmAccount(ctx, "digest-1", now)
	require.NoError(t, err)
	assert.Equal(t, created.ID, confirmed.ID)
	assert.Equal(t, models.Verified, confirmed.Status())

	_, err = repo.ConfirmAccount(ctx, "digest-1", now)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	found, err := repo.FindAuthenticatableAccount(ctx, "alice", now)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	blockedUntil := now.Add(time.Minute)
	require.NoError(t, repo.UpdateAccount(ctx, models.AccountUpdate{ID: created.ID, BlockedUntil: &blockedUntil}))

	_, err = repo.FindAuthenticatableAccount(ctx, "alice", now)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = repo.FindAuthenticatableAccount(ctx, "alice", blockedUntil)
	assert.NoError(t, err, "the lockout ends at blocked_until")

	require.NoError(t, repo.UpdateAccount(ctx, models.AccountUpdate{ID: created.ID, LastLoginAt: &now, ClearBlockedUntil: true}))
	found, err = repo.FindAccountByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, found.BlockedUntil)
	require.NotNil(t, found.LastLoginAt)
	assert.True(t, found.LastLoginAt.Equal(now))
}

func TestSQLiteStorages_DeliveryFailureRollsBack(t *testing.T) {
	repo := newSQLiteStorages(t).AccountRepository
	ctx := context.Background()
	cause := errors.New("relay down")

	_, err := repo.CreateAccount(ctx, newPendingAccount("alice", "alice@x.com", "digest-1"), func(models.Account) error {
		return cause
	})
	assert.ErrorIs(t, err, ErrDeliveryAborted)
	assert.ErrorIs(t, err, cause)

	exists, err := repo.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.CreateAccount(ctx, newPendingAccount("alice", "alice@x.com", "digest-1"), nil)
	assert.NoError(t, err)
}

func TestSQLiteStorages_LookupDuringSlowDelivery(t *testing.T) {
	repo := newSQLiteStorages(t).AccountRepository
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.CreateAccount(ctx, newPendingAccount("bob", "bob@x.com", "digest-bob"), nil)
	require.NoError(t, err)
	_, err = repo.ConfirmAccount(ctx, "digest-bob", now)
	require.NoError(t, err)

	delivering := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := repo.CreateAccount(ctx, newPendingAccount("alice", "alice@x.com", "digest-alice"), func(models.Account) error {
			close(delivering)
			<-release
			return nil
		})
		done <- err
	}()

	select {
	case <-delivering:
	case <-time.After(5 * time.Second):
		t.Fatal("delivery never started")
	}

	lookupCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	found, err := repo.FindAuthenticatableAccount(lookupCtx, "bob", now)
	close(release)

	require.NoError(t, err)
	assert.Equal(t, "bob", found.Username)
	require.NoError(t, <-done)
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{dsn: "portal.db", want: "portal.db?_busy_timeout=5000&_journal_mode=WAL"},
		{dsn: "file:portal.db?cache=shared", want: "file:portal.db?cache=shared&_busy_timeout=5000&_journal_mode=WAL"},
		{dsn: "portal.db?_journal_mode=DELETE&_busy_timeout=100", want: "portal.db?_journal_mode=DELETE&_busy_timeout=100"},
		{dsn: ":memory:", want: ":memory:?_busy_timeout=5000"},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.dsn))
		})
	}
}
