package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/models"
)

// accountRepository is the database/sql implementation of
// [AccountRepository] for both supported dialects.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type accountRepository struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

// NewAccountRepository constructs an [AccountRepository] backed by db.
func NewAccountRepository(db *DB, logger *logger.Logger) AccountRepository {
	logger.Debug().Str("driver", db.driver).Msg("creating account repository")
	return &accountRepository{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (models.Account, error) {
	var (
		account           models.Account
		confirmationToken sql.NullString
		emailVerifiedAt   sql.NullTime
		blockedUntil      sql.NullTime
		lastLoginAt       sql.NullTime
		deletedAt         sql.NullTime
	)

	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&confirmationToken,
		&emailVerifiedAt,
		&account.Active,
		&blockedUntil,
		&lastLoginAt,
		&deletedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return models.Account{}, err
	}

	if confirmationToken.Valid {
		account.ConfirmationToken = &confirmationToken.String
	}
	account.EmailVerifiedAt = nullTimePtr(emailVerifiedAt)
	account.BlockedUntil = nullTimePtr(blockedUntil)
	account.LastLoginAt = nullTimePtr(lastLoginAt)
	account.DeletedAt = nullTimePtr(deletedAt)

	return account, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// CreateAccount inserts account and hands the stored row to deliver while the
// transaction is still open. The row is committed only when deliver succeeds.
//
// Error handling:
//   - unique violation on username/email/token → [ErrUsernameAlreadyExists],
//     [ErrEmailAlreadyExists], [ErrTokenAlreadyExists]; deliver is not called.
//   - deliver error → rollback, [ErrDeliveryAborted] wrapping the cause.
func (r *accountRepository) CreateAccount(ctx context.Context, account models.Account, deliver func(models.Account) error) (models.Account, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildInsertAccountQuery(r.builder, account, r.now().UTC())
	if err != nil {
		log.Err(err).Str("func", "accountRepository.CreateAccount").Msg("failed to create query")
		return models.Account{}, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "accountRepository.CreateAccount").Msg("failed to begin transaction")
		return models.Account{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	created, err := scanAccount(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		if mapped := r.uniqueViolationError(err); mapped != nil {
			log.Debug().Err(err).Str("func", "accountRepository.CreateAccount").Msg("unique constraint violated")
			return models.Account{}, mapped
		}
		log.Err(err).Str("func", "accountRepository.CreateAccount").Msg("failed to insert account")
		return models.Account{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if deliver != nil {
		if deliverErr := deliver(created); deliverErr != nil {
			log.Warn().Err(deliverErr).
				Str("func", "accountRepository.CreateAccount").
				Int64("account_id", created.ID).
				Msg("delivery failed, rolling back account creation")
			return models.Account{}, fmt.Errorf("%w: %w", ErrDeliveryAborted, deliverErr)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "accountRepository.CreateAccount").
			Int64("account_id", created.ID).
			Msg("failed to commit transaction")
		return models.Account{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	return created, nil
}

// FindAuthenticatableAccount returns the account with username that may log
// in at now. Any account failing a precondition is reported as
// [ErrAccountNotFound].
func (r *accountRepository) FindAuthenticatableAccount(ctx context.Context, username string, now time.Time) (models.Account, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFindAuthenticatableAccountQuery(r.builder, username, now.UTC())
	if err != nil {
		log.Err(err).Str("func", "accountRepository.FindAuthenticatableAccount").Msg("failed to create query")
		return models.Account{}, err
	}

	return r.queryAccount(ctx, "accountRepository.FindAuthenticatableAccount", query, args)
}

// FindAccountByID returns the non-deleted account with id.
func (r *accountRepository) FindAccountByID(ctx context.Context, id int64) (models.Account, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFindAccountByIDQuery(r.builder, id)
	if err != nil {
		log.Err(err).Str("func", "accountRepository.FindAccountByID").Msg("failed to create query")
		return models.Account{}, err
	}

	return r.queryAccount(ctx, "accountRepository.FindAccountByID", query, args)
}

func (r *accountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *accountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

// UpdateAccount applies the command in one UPDATE statement.
// Returns [ErrAccountNotFound] when no non-deleted row has update.ID.
func (r *accountRepository) UpdateAccount(ctx context.Context, update models.AccountUpdate) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdateAccountQuery(r.builder, update, r.now().UTC())
	if err != nil {
		log.Err(err).Str("func", "accountRepository.UpdateAccount").Int64("account_id", update.ID).Msg("failed to create query")
		return err
	}

	var result sql.Result
	err = r.withRetry(ctx, "accountRepository.UpdateAccount", func(ctx context.Context) error {
		result, err = r.DB.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "accountRepository.UpdateAccount").Int64("account_id", update.ID).Msg("failed to update account")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// ConfirmAccount consumes tokenDigest. The lookup and the clearing of the
// token happen in one conditional UPDATE, so a token confirms at most once.
// A retried statement that lost the race finds no row.
func (r *accountRepository) ConfirmAccount(ctx context.Context, tokenDigest string, now time.Time) (models.Account, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildConfirmAccountQuery(r.builder, tokenDigest, now.UTC())
	if err != nil {
		log.Err(err).Str("func", "accountRepository.ConfirmAccount").Msg("failed to create query")
		return models.Account{}, err
	}

	return r.queryAccount(ctx, "accountRepository.ConfirmAccount", query, args)
}

func (r *accountRepository) queryAccount(ctx context.Context, funcName, query string, args []any) (models.Account, error) {
	log := logger.FromContext(ctx)

	var account models.Account
	err := r.withRetry(ctx, funcName, func(ctx context.Context) error {
		var scanErr error
		account, scanErr = scanAccount(r.DB.QueryRowContext(ctx, query, args...))
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrAccountNotFound
	}
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to query account")
		return models.Account{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return account, nil
}

func (r *accountRepository) exists(ctx context.Context, column, value string) (bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildExistsQuery(r.builder, column, value)
	if err != nil {
		log.Err(err).Str("func", "accountRepository.exists").Str("column", column).Msg("failed to create query")
		return false, err
	}

	var one int
	err = r.withRetry(ctx, "accountRepository.exists", func(ctx context.Context) error {
		return r.DB.QueryRowContext(ctx, query, args...).Scan(&one)
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		log.Err(err).Str("func", "accountRepository.exists").Str("column", column).Msg("failed to execute query")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return true, nil
}

// uniqueViolationError maps a unique constraint violation to the matching
// sentinel, or returns nil when err is not one.
func (r *accountRepository) uniqueViolationError(err error) error {
	if r.errorClassificator == nil {
		return nil
	}

	column, ok := r.errorClassificator.UniqueViolation(err)
	if !ok {
		return nil
	}

	switch column {
	case "username":
		return ErrUsernameAlreadyExists
	case "email":
		return ErrEmailAlreadyExists
	case "confirmation_token":
		return ErrTokenAlreadyExists
	default:
		return fmt.Errorf("%w: unknown unique constraint: %w", ErrExecutingStatement, err)
	}
}
