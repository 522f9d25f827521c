package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-auth-portal/internal/config"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
)

// sqliteBusyTimeout is how long a writer waits for the database lock before
// the driver reports SQLITE_BUSY.
const sqliteBusyTimeout = 5 * time.Second

// NewConnectSQLite opens and pings a SQLite database. It is meant for local
// development; the file is created on first use.
//
// File databases run in WAL mode, so lookups proceed while a registration
// transaction holds the write lock.
func NewConnectSQLite(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open(config.DriverSQLite, sqliteDSN(cfg.DSN))
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	// every connection to :memory: is a separate database
	if isSQLiteMemory(cfg.DSN) {
		conn.SetMaxOpenConns(1)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		_ = conn.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	log.Debug().Str("func", "NewConnectSQLite").Msg("connected to database successfully")

	return newDB(conn, config.DriverSQLite, sq.Question, NewSQLiteErrorClassifier(), log), nil
}

// sqliteDSN adds WAL journaling and a busy timeout to dsn unless it already
// sets them.
func sqliteDSN(dsn string) string {
	params := url.Values{}
	if !strings.Contains(dsn, "_journal") && !isSQLiteMemory(dsn) {
		params.Set("_journal_mode", "WAL")
	}
	if !strings.Contains(dsn, "_timeout") {
		params.Set("_busy_timeout", strconv.FormatInt(sqliteBusyTimeout.Milliseconds(), 10))
	}
	if len(params) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + params.Encode()
}

func isSQLiteMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// SQLiteErrorClassifier implements [ErrorClassificator] for go-sqlite3.
type SQLiteErrorClassifier struct{}

func NewSQLiteErrorClassifier() *SQLiteErrorClassifier {
	return &SQLiteErrorClassifier{}
}

// Classify treats busy and locked databases as retryable.
func (c *SQLiteErrorClassifier) Classify(err error) ErrorClassification {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return Retryable
		}
	}

	return NonRetryable
}

// UniqueViolation extracts the column from messages of the form
// "UNIQUE constraint failed: accounts.username".
func (c *SQLiteErrorClassifier) UniqueViolation(err error) (string, bool) {
	var liteErr sqlite3.Error
	if !errors.As(err, &liteErr) || liteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return "", false
	}

	return uniqueColumnFromMessage(liteErr.Error()), true
}

// uniqueColumnFromMessage returns the first column named in a SQLite unique
// constraint message, or "" when there is none.
func uniqueColumnFromMessage(msg string) string {
	_, cols, found := strings.Cut(msg, "UNIQUE constraint failed:")
	if !found {
		return ""
	}

	first, _, _ := strings.Cut(cols, ",")
	_, column, found := strings.Cut(strings.TrimSpace(first), ".")
	if !found {
		return ""
	}

	return column
}
