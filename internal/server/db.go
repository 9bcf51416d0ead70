package server

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// pgUniqueViolation is the Postgres error code for unique-constraint violations.
const pgUniqueViolation = "23505"

// OpenDB opens a PostgreSQL connection pool for the given DSN.
// The pool is shared for the process lifetime; callers never open a second one.
func OpenDB(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Validate connectivity immediately.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Printf("service=backend msg=%q", "connected to the PostgreSQL database")

	return db, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation. Duplicate username/email inserts surface as a 400 with a
// distinct message instead of a generic 500.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
