package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/alumnet/internal/membership/store/drivers/sqldb"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect is the sqlite flavour of the shared repositories.
var Dialect = sqldb.Dialect{
	Name:              "sqlite",
	IsUniqueViolation: isUniqueViolation,
	Migrate:           migrateUp,
}

// NewStore opens a sqlite database. dsn is either ":memory:" or a file path;
// file paths get WAL, a busy timeout and immediate write transactions.
func NewStore(dsn string) (*sqldb.Store, error) {
	memory := dsn == "" || dsn == ":memory:" || strings.Contains(dsn, "mode=memory")

	source := dsn
	switch {
	case dsn == "":
		source = ":memory:"
	case !memory && !strings.HasPrefix(dsn, "file:"):
		source = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate", dsn)
	}

	db, err := sqlx.Open("sqlite", source)
	if err != nil {
		return nil, err
	}

	// Each connection to :memory: is its own database.
	if memory {
		db.SetMaxOpenConns(1)
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqldb.New(db, Dialect), nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
