package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV implements storage.KeyValue on a PostgreSQL table
type PostgresKV struct {
	db *pgxpool.Pool
}

// NewPostgresKV creates a new PostgreSQL key-value store
func NewPostgresKV(db *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{db: db}
}

// EnsureSchema creates the client_state table if it does not exist
func (r *PostgresKV) EnsureSchema(ctx context.Context) error {
	sql := `
		CREATE TABLE IF NOT EXISTS client_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := r.db.Exec(ctx, sql); err != nil {
		return fmt.Errorf("repository: failed to create client_state table: %w", err)
	}
	return nil
}

// Get returns the value stored under key
func (r *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM client_state WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("repository: failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value under key
func (r *PostgresKV) Set(ctx context.Context, key, value string) error {
	sql := `
		INSERT INTO client_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := r.db.Exec(ctx, sql, key, value); err != nil {
		return fmt.Errorf("repository: failed to write key %q: %w", key, err)
	}
	return nil
}

// Remove deletes key
func (r *PostgresKV) Remove(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM client_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("repository: failed to delete key %q: %w", key, err)
	}
	return nil
}
