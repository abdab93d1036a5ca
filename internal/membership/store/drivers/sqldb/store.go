// Package sqldb holds the sqlx repositories shared by the sqlite and postgres
// drivers. Queries are written with "?" placeholders and rebound for the
// driver at execution time; timestamps are stored as unix milliseconds so
// range predicates behave the same on both engines.
package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/jmoiron/sqlx"
)

// Dialect captures what differs between engines.
type Dialect struct {
	Name string

	// IsUniqueViolation reports whether err is a unique-constraint failure.
	IsUniqueViolation func(error) bool

	// Migrate applies the engine's embedded migrations.
	Migrate func(db *sql.DB) error
}

type Store struct {
	db      *sqlx.DB
	dialect Dialect
}

// New wraps an open database. The caller keeps no other reference to db;
// Close closes it.
func New(db *sqlx.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the underlying handle for driver-level tests.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.dialect.Migrate == nil {
		return errors.New("sqldb: no migrations for dialect " + s.dialect.Name)
	}
	return s.dialect.Migrate(s.db.DB)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, dialect: s.dialect}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) conn() conn { return conn{q: s.db, d: s.dialect} }

func (s *Store) SuperAdmins() store.SuperAdmins { return &superAdminsRepo{c: s.conn()} }
func (s *Store) Admins() store.Admins           { return &adminsRepo{c: s.conn()} }
func (s *Store) Alumni() store.Alumni           { return &alumniRepo{c: s.conn()} }
func (s *Store) Invitations() store.Invitations { return &invitationsRepo{c: s.conn()} }
func (s *Store) Posts() store.Posts             { return &postsRepo{c: s.conn()} }
