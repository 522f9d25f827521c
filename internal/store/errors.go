package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrAccountNotFound is returned when no row matches the lookup,
	// including lookups whose filter excluded an existing row.
	ErrAccountNotFound = errors.New("account was not found")

	// ErrUsernameAlreadyExists is returned when an insert collides with the
	// username of a non-deleted account.
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// ErrEmailAlreadyExists is returned when an insert collides with the
	// email of a non-deleted account.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrTokenAlreadyExists is returned when a freshly generated confirmation
	// token collides with a pending one.
	ErrTokenAlreadyExists = errors.New("confirmation token already exists")

	// ErrDeliveryAborted wraps the error of the deliver callback of
	// CreateAccount. The account was not persisted.
	ErrDeliveryAborted = errors.New("account creation aborted by delivery failure")

	// ErrNothingToUpdate is returned for an empty [models.AccountUpdate].
	ErrNothingToUpdate = errors.New("nothing to update")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan account row")

	// ErrUnsupportedDriver is returned by [NewStorages] for an unknown driver.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
