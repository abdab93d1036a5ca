package sqldb

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/jmoiron/sqlx"
)

type txStore struct {
	tx      *sqlx.Tx
	dialect Dialect
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the outer DB stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op; migrations run before any transaction starts.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) conn() conn { return conn{q: t.tx, d: t.dialect} }

func (t *txStore) SuperAdmins() store.SuperAdmins { return &superAdminsRepo{c: t.conn()} }
func (t *txStore) Admins() store.Admins           { return &adminsRepo{c: t.conn()} }
func (t *txStore) Alumni() store.Alumni           { return &alumniRepo{c: t.conn()} }
func (t *txStore) Invitations() store.Invitations { return &invitationsRepo{c: t.conn()} }
func (t *txStore) Posts() store.Posts             { return &postsRepo{c: t.conn()} }
