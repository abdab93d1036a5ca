package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/jmoiron/sqlx"
)

// execer is satisfied by both *sqlx.DB and *sqlx.Tx.
type execer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type conn struct {
	q execer
	d Dialect
}

func (c conn) get(ctx context.Context, dest any, query string, args ...any) error {
	return c.mapErr(c.q.GetContext(ctx, dest, c.q.Rebind(query), args...))
}

func (c conn) selectRows(ctx context.Context, dest any, query string, args ...any) error {
	return c.mapErr(c.q.SelectContext(ctx, dest, c.q.Rebind(query), args...))
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := c.q.ExecContext(ctx, c.q.Rebind(query), args...)
	return res, c.mapErr(err)
}

// execOne runs a statement that must touch exactly one row; zero rows
// becomes ErrNotFound.
func (c conn) execOne(ctx context.Context, query string, args ...any) error {
	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return store.ErrNotFound
	}
	return nil
}

func (c conn) mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound
	case c.d.IsUniqueViolation != nil && c.d.IsUniqueViolation(err):
		return store.ErrAlreadyExists
	default:
		return err
	}
}

func millis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: millis(*t), Valid: true}
}

func fromNullMillis(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMillis(n.Int64)
	return &t
}

func refRole(r domain.PrincipalRef) string { return string(r.Role) }

func toRef(role, id string) domain.PrincipalRef {
	return domain.PrincipalRef{Role: domain.Role(role), ID: id}
}

func encodeList(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeList(s string) []string {
	var v []string
	if err := json.Unmarshal([]byte(s), &v); err != nil || len(v) == 0 {
		return nil
	}
	return v
}
