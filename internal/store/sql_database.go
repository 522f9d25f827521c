package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/migrations"
)

// DB is an open database handle together with the dialect specifics the
// repositories need: the driver name, the squirrel placeholder format and
// the driver error classifier.
type DB struct {
	*sql.DB
	driver             string
	builder            sq.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger

	maxRetries uint64
	retryDelay time.Duration
}

// Retry policy for statements failing with a [Retryable] error.
const (
	defaultMaxRetries = 3
	defaultRetryDelay = 50 * time.Millisecond
)

func newDB(conn *sql.DB, driver string, placeholder sq.PlaceholderFormat, classifier ErrorClassificator, log *logger.Logger) *DB {
	return &DB{
		DB:                 conn,
		driver:             driver,
		builder:            sq.StatementBuilder.PlaceholderFormat(placeholder),
		errorClassificator: classifier,
		logger:             log,
		maxRetries:         defaultMaxRetries,
		retryDelay:         defaultRetryDelay,
	}
}

// withRetry runs op again while it fails with an error the classifier marks
// [Retryable], up to maxRetries more times with exponential backoff. Other
// errors are returned unchanged after the first attempt.
func (db *DB) withRetry(ctx context.Context, funcName string, op func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(db.maxRetries, retry.NewExponential(db.retryDelay))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := op(ctx)
		if err != nil && db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable {
			logger.FromContext(ctx).Warn().Err(err).Str("func", funcName).Int("attempt", attempt).Msg("transient database error")
			return retry.RetryableError(err)
		}
		return err
	})
}

// Driver returns the database/sql driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Migrate applies the embedded schema for the connected dialect.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}
