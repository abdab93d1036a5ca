// Package postgres backs the membership store with PostgreSQL via lib/pq.
package postgres

import (
	"errors"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/store/drivers/sqldb"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

var Dialect = sqldb.Dialect{
	Name:              "postgres",
	IsUniqueViolation: isUniqueViolation,
	Migrate:           migrateUp,
}

func NewStore(dsn string) (*sqldb.Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return sqldb.New(db, Dialect), nil
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	return errors.As(err, &pe) && pe.Code == uniqueViolation
}
