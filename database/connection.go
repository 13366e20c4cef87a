package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	_ "github.com/microsoft/go-mssqldb"
)

// OpenSQLServer normalizes the connection string and opens a SQL Server handle.
// The caller owns the handle and must close it.
func OpenSQLServer(ctx context.Context, rawConnectionString string) (*sql.DB, error) {
	db, err := sql.Open("sqlserver", NormalizeConnectionString(rawConnectionString))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlserver connection: %w", err)
	}

	// A single query per invocation; keep no idle connections behind
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ConnectPostgres opens a single Postgres connection with UTC session time zone.
// The caller owns the connection and must close it.
func ConnectPostgres(ctx context.Context, databaseURL string) (*pgx.Conn, error) {
	config, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Set timezone to UTC for the session
	config.RuntimeParams["timezone"] = "UTC"

	conn, err := pgx.ConnectConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return conn, nil
}
