package logger

import (
	"context"
	"time"

	"kvcache/internal/models"

	"github.com/google/uuid"
)

// contextKey keeps the log event key private to this package
type contextKey struct{}

var eventKey contextKey

// NewLogEvent starts tracking a process with a fresh process id
func NewLogEvent(processType models.ProcessType, clientIP string) *models.LogEvent {
	return &models.LogEvent{
		ProcessID:   uuid.New().String(),
		ProcessType: processType,
		StartTime:   time.Now().UTC(),
		ClientIP:    clientIP,
	}
}

// NewRequestLogEvent starts tracking an HTTP request
func NewRequestLogEvent(clientIP string) *models.LogEvent {
	return NewLogEvent(models.ProcessTypeRequest, clientIP)
}

// NewInternalLogEvent starts tracking a background process
func NewInternalLogEvent() *models.LogEvent {
	return NewLogEvent(models.ProcessTypeInternal, "")
}

// WithLogEvent attaches a log event to the context
func WithLogEvent(ctx context.Context, logEvent *models.LogEvent) context.Context {
	return context.WithValue(ctx, eventKey, logEvent)
}

// GetLogEvent returns the log event carried by the context. A context without
// one gets a fresh internal event, so callers always have a process id.
func GetLogEvent(ctx context.Context) *models.LogEvent {
	if logEvent, ok := ctx.Value(eventKey).(*models.LogEvent); ok {
		return logEvent
	}
	return NewInternalLogEvent()
}
