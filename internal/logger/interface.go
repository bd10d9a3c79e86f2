package logger

import (
	"context"

	"kvcache/internal/models"
)

// Service is the logging surface the rest of the service depends on.
// External packages should use this interface, not the concrete implementations.
// Operation names come from the Op* constants; targetName is the cache id or
// namespace the operation acted on, empty when there is none.
type Service interface {
	LogInfo(ctx context.Context, operation, message string, metadata map[string]interface{})
	LogSuccess(ctx context.Context, operation, targetName, message string, metadata map[string]interface{})
	LogError(ctx context.Context, operation, targetName, message string, err error, severity models.LogSeverity, metadata map[string]interface{})
	Close() error
}

// DatabaseConnection is the sink a DatabaseLogger writes entries through
type DatabaseConnection interface {
	InsertLog(ctx context.Context, entry *models.LogEntry) error
	Close() error
	Ping(ctx context.Context) error
}
