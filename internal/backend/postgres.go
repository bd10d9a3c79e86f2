package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend implements Backend using a PostgreSQL table via pgxpool
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend creates a new PostgreSQL-based storage backend
func NewPostgresBackend(connectionString string) (Backend, error) {
	return newPostgresBackend(connectionString)
}

// newPostgresBackend creates the concrete implementation
func newPostgresBackend(connectionString string) (*PostgresBackend, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	// Disable statement caching to avoid "already exists" errors
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec
	config.ConnConfig.StatementCacheCapacity = 0

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	b := &PostgresBackend{pool: pool}
	if err := b.createTableIfNotExists(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create cache_entries table: %w", err)
	}

	return b, nil
}

// createTableIfNotExists creates the cache table if it doesn't exist
func (p *PostgresBackend) createTableIfNotExists() error {
	query := `
		CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			expires_at TIMESTAMP WITH TIME ZONE,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at
			ON cache_entries(expires_at) WHERE expires_at IS NOT NULL;
	`

	_, err := p.pool.Exec(context.Background(), query)
	return err
}

// Fetch retrieves a live entry for the given key. Values round-trip through
// JSONB, so numbers come back as float64 and mappings as map[string]interface{}.
func (p *PostgresBackend) Fetch(ctx context.Context, key string) (interface{}, bool, error) {
	query := `
		SELECT value FROM cache_entries
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`

	var raw []byte
	if err := p.pool.QueryRow(ctx, query, key).Scan(&raw); err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("postgres fetch failed: %w", err)
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal stored value: %w", err)
	}

	return value, true, nil
}

// Save upserts a value under the given key. A zero lifetime stores a NULL
// expiration, meaning the entry never expires.
func (p *PostgresBackend) Save(ctx context.Context, key string, value interface{}, lifetime time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	var expiresAt interface{}
	if lifetime > 0 {
		expiresAt = time.Now().UTC().Add(lifetime)
	}

	query := `
		INSERT INTO cache_entries (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = NOW()
	`

	if _, err := p.pool.Exec(ctx, query, key, string(data), expiresAt); err != nil {
		return fmt.Errorf("postgres save failed: %w", err)
	}

	return nil
}

// Delete removes an entry and reports whether a live entry existed
func (p *PostgresBackend) Delete(ctx context.Context, key string) (bool, error) {
	query := `
		DELETE FROM cache_entries
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`

	tag, err := p.pool.Exec(ctx, query, key)
	if err != nil {
		return false, fmt.Errorf("postgres delete failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Flush removes every entry from the cache table
func (p *PostgresBackend) Flush(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("postgres flush failed: %w", err)
	}
	return nil
}

// Contains reports whether a live entry exists for the given key
func (p *PostgresBackend) Contains(ctx context.Context, key string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM cache_entries
			WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())
		)
	`

	var exists bool
	if err := p.pool.QueryRow(ctx, query, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres exists failed: %w", err)
	}

	return exists, nil
}

// Close closes the connection pool
func (p *PostgresBackend) Close() error {
	p.pool.Close()
	return nil
}
