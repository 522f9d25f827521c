package store

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-auth-portal/models"
)

const accountsTable = "accounts"

// accountColumns lists the columns scanned by [scanAccount], in order.
var accountColumns = []string{
	"id",
	"username",
	"email",
	"password_hash",
	"confirmation_token",
	"email_verified_at",
	"active",
	"blocked_until",
	"last_login_at",
	"deleted_at",
	"created_at",
	"updated_at",
}

func buildInsertAccountQuery(b sq.StatementBuilderType, account models.Account, now time.Time) (string, []any, error) {
	query, args, err := b.Insert(accountsTable).
		Columns("username", "email", "password_hash", "confirmation_token", "active", "created_at", "updated_at").
		Values(account.Username, account.Email, account.PasswordHash, account.ConfirmationToken, false, now, now).
		Suffix(returningAccount()).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func buildFindAuthenticatableAccountQuery(b sq.StatementBuilderType, username string, now time.Time) (string, []any, error) {
	query, args, err := b.Select(accountColumns...).
		From(accountsTable).
		Where(sq.Eq{"username": username}).
		Where(sq.Eq{"active": true}).
		Where(sq.NotEq{"email_verified_at": nil}).
		Where(sq.Eq{"deleted_at": nil}).
		Where(sq.Or{
			sq.Eq{"blocked_until": nil},
			sq.LtOrEq{"blocked_until": now},
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func buildFindAccountByIDQuery(b sq.StatementBuilderType, id int64) (string, []any, error) {
	query, args, err := b.Select(accountColumns...).
		From(accountsTable).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildExistsQuery selects 1 when a non-deleted account has value in column.
func buildExistsQuery(b sq.StatementBuilderType, column, value string) (string, []any, error) {
	switch column {
	case "username", "email":
	default:
		return "", nil, fmt.Errorf("%w: column %q cannot be checked for existence", ErrBuildingSQLQuery, column)
	}

	query, args, err := b.Select("1").
		From(accountsTable).
		Where(sq.Eq{column: value, "deleted_at": nil}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildUpdateAccountQuery dynamically builds the UPDATE for an
// [models.AccountUpdate]. Only the fields the command sets are written.
func buildUpdateAccountQuery(b sq.StatementBuilderType, update models.AccountUpdate, now time.Time) (string, []any, error) {
	if update.IsEmpty() {
		return "", nil, ErrNothingToUpdate
	}

	builder := b.Update(accountsTable).Set("updated_at", now)

	if update.LastLoginAt != nil {
		builder = builder.Set("last_login_at", update.LastLoginAt.UTC())
	}

	switch {
	case update.ClearBlockedUntil:
		builder = builder.Set("blocked_until", nil)
	case update.BlockedUntil != nil:
		builder = builder.Set("blocked_until", update.BlockedUntil.UTC())
	}

	query, args, err := builder.
		Where(sq.Eq{"id": update.ID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildConfirmAccountQuery builds the conditional UPDATE that consumes a
// confirmation token. The WHERE clause on the token makes the statement
// succeed for at most one concurrent caller.
func buildConfirmAccountQuery(b sq.StatementBuilderType, tokenDigest string, now time.Time) (string, []any, error) {
	query, args, err := b.Update(accountsTable).
		Set("email_verified_at", now).
		Set("active", true).
		Set("confirmation_token", nil).
		Set("updated_at", now).
		Where(sq.Eq{"confirmation_token": tokenDigest, "deleted_at": nil}).
		Suffix(returningAccount()).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func returningAccount() string {
	return "RETURNING " + strings.Join(accountColumns, ", ")
}
