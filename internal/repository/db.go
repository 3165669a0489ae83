package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// database/sql driver names registered by lib/pq and pgx/v5/stdlib.
const (
	DriverPQ  = "postgres"
	DriverPgx = "pgx"
)

//go:embed schema.sql
var schemaSQL string

func IsSupportedDriver(driver string) bool {
	return driver == DriverPQ || driver == DriverPgx
}

// NewDB opens a connection pool with the named driver and verifies it with a ping.
func NewDB(driver, dsn string) (*sql.DB, error) {
	if !IsSupportedDriver(driver) {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the items table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
