package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"kvcache/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConnection implements DatabaseConnection for PostgreSQL using pgxpool
type PostgresConnection struct {
	pool *pgxpool.Pool
}

// NewPostgresConnection creates a new log database connection using a connection string
func NewPostgresConnection(connectionString string) (DatabaseConnection, error) {
	return newPostgresConnection(connectionString)
}

// newPostgresConnection creates the concrete implementation
func newPostgresConnection(connectionString string) (*PostgresConnection, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	// Stale cloud connections get silently dropped by the network; bounded
	// lifetimes keep the pool fresh.
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	// Disable statement caching to avoid "already exists" errors
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec
	config.ConnConfig.StatementCacheCapacity = 0

	config.ConnConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}
		return d.DialContext(ctx, "tcp", addr)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("log database ping failed: %w", err)
	}

	conn := &PostgresConnection{pool: pool}
	if err := conn.createTableIfNotExists(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create logs table: %w", err)
	}

	return conn, nil
}

// createTableIfNotExists creates the logs table if it doesn't exist
func (p *PostgresConnection) createTableIfNotExists() error {
	query := `
		CREATE TABLE IF NOT EXISTS cache_service_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			timestamp TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			severity VARCHAR(10) CHECK (severity IN ('low', 'medium', 'high')),
			message TEXT NOT NULL,
			operation VARCHAR(100) NOT NULL,
			target_name VARCHAR(255),
			process_id UUID NOT NULL,
			process_type VARCHAR(20) NOT NULL CHECK (process_type IN ('request', 'internal')),
			client_ip INET,
			error_details TEXT,
			metadata JSONB,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_cache_service_logs_timestamp ON cache_service_logs(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_cache_service_logs_operation ON cache_service_logs(operation);
		CREATE INDEX IF NOT EXISTS idx_cache_service_logs_process_id ON cache_service_logs(process_id);
	`

	_, err := p.pool.Exec(context.Background(), query)
	return err
}

// InsertLog inserts a log entry into the database
func (p *PostgresConnection) InsertLog(ctx context.Context, entry *models.LogEntry) error {
	query := `
		INSERT INTO cache_service_logs
		(id, timestamp, severity, message, operation, target_name, process_id, process_type, client_ip, error_details, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var clientIP interface{}
	if entry.ClientIP != "" {
		clientIP = entry.ClientIP
	}

	var targetName interface{}
	if entry.TargetName != "" {
		targetName = entry.TargetName
	}

	var errorDetails interface{}
	if entry.Error != "" {
		errorDetails = entry.Error
	}

	// Marshal metadata to a JSON string for proper JSONB encoding
	var metadata interface{}
	if len(entry.Metadata) > 0 {
		jsonBytes, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata to JSON: %w", err)
		}
		metadata = string(jsonBytes)
	}

	// Info and success entries carry no severity
	var severity interface{}
	if entry.Severity != "" {
		severity = string(entry.Severity)
	}

	_, err := p.pool.Exec(
		ctx, query,
		entry.ID,
		entry.Timestamp,
		severity,
		entry.Message,
		entry.Operation,
		targetName,
		entry.ProcessID,
		string(entry.ProcessType),
		clientIP,
		errorDetails,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}

	return nil
}

// Ping checks the database connection
func (p *PostgresConnection) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the connection pool
func (p *PostgresConnection) Close() error {
	p.pool.Close()
	return nil
}
