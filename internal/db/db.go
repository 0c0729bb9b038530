// Package db provides PostgreSQL persistence for session handles and
// generated results. It is optional: the pipeline runs with the in-memory
// session store when no database URL is configured.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the tables this package needs if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cv_sessions (
			id TEXT PRIMARY KEY,
			context_ref TEXT NOT NULL,
			owner_id TEXT,
			profile_hash TEXT NOT NULL,
			profile JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			last_accessed_at TIMESTAMPTZ NOT NULL,
			request_count INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS cv_sessions_expires_at_idx ON cv_sessions (expires_at)`,
		`CREATE TABLE IF NOT EXISTS generated_results (
			id UUID PRIMARY KEY,
			owner_id TEXT,
			mode TEXT NOT NULL,
			model TEXT NOT NULL,
			result JSONB NOT NULL,
			report JSONB,
			passed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS generated_results_owner_idx ON generated_results (owner_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
