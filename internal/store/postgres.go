// Package store provides the persistence backends for the response cache and
// the rate limiter: PostgreSQL for deployments, JSON files for single-host
// setups, and in-memory maps for tests.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/ratelimit"
)

// DB wraps a PostgreSQL connection pool shared by the backends.
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

// Migrate creates the cache and usage tables if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS response_cache (
			key TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS response_cache_expires_at_idx
			ON response_cache (expires_at)`,
		`CREATE TABLE IF NOT EXISTS usage_records (
			id UUID PRIMARY KEY,
			client_id TEXT NOT NULL,
			operation TEXT NOT NULL,
			used_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS usage_records_client_op_idx
			ON usage_records (client_id, operation)`,
		`CREATE INDEX IF NOT EXISTS usage_records_used_at_idx
			ON usage_records (used_at)`,
	}
	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// PostgresCacheStore stores cache entries in the response_cache table.
type PostgresCacheStore struct {
	db *DB
}

// NewPostgresCacheStore creates a cache store over db.
func NewPostgresCacheStore(db *DB) *PostgresCacheStore {
	return &PostgresCacheStore{db: db}
}

// Get retrieves the entry for key, or nil when absent.
func (s *PostgresCacheStore) Get(ctx context.Context, key string) (*cache.Entry, error) {
	var entry cache.Entry
	err := s.db.pool.QueryRow(ctx,
		`SELECT key, payload, expires_at FROM response_cache WHERE key = $1`,
		key,
	).Scan(&entry.Key, &entry.Payload, &entry.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return &entry, nil
}

// Put stores the entry, overwriting any existing row for its key.
func (s *PostgresCacheStore) Put(ctx context.Context, entry cache.Entry) error {
	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO response_cache (key, payload, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET payload = $2, expires_at = $3`,
		entry.Key, entry.Payload, entry.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key; absent keys are not an error.
func (s *PostgresCacheStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.pool.Exec(ctx,
		`DELETE FROM response_cache WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// DeleteExpired removes entries that expired before cutoff.
func (s *PostgresCacheStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.pool.Exec(ctx,
		`DELETE FROM response_cache WHERE expires_at <= $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// PostgresRateLimitStore stores usage timestamps in the usage_records table.
type PostgresRateLimitStore struct {
	db *DB
}

// NewPostgresRateLimitStore creates a rate-limit store over db.
func NewPostgresRateLimitStore(db *DB) *PostgresRateLimitStore {
	return &PostgresRateLimitStore{db: db}
}

// Timestamps returns every recorded usage for the client and operation.
func (s *PostgresRateLimitStore) Timestamps(ctx context.Context, clientID string, op ratelimit.Operation) ([]time.Time, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT used_at FROM usage_records WHERE client_id = $1 AND operation = $2`,
		clientID, string(op),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer rows.Close()

	var timestamps []time.Time
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		timestamps = append(timestamps, at)
	}
	return timestamps, rows.Err()
}

// Append records one usage.
func (s *PostgresRateLimitStore) Append(ctx context.Context, clientID string, op ratelimit.Operation, at time.Time) error {
	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO usage_records (id, client_id, operation, used_at)
		 VALUES ($1, $2, $3, $4)`,
		uuid.New(), clientID, string(op), at,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}
	return nil
}

// DeleteBefore removes usage records older than cutoff across all clients.
func (s *PostgresRateLimitStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.pool.Exec(ctx,
		`DELETE FROM usage_records WHERE used_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old usage records: %w", err)
	}
	return int(result.RowsAffected()), nil
}
