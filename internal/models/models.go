package models

import (
	"time"
)

// SaveEntryRequest is the request body for storing a cache entry. A nil
// LifetimeSeconds falls back to the configured default; an explicit 0 stores
// the entry without expiration.
type SaveEntryRequest struct {
	Value           interface{} `json:"value"`
	LifetimeSeconds *int64      `json:"lifetime_seconds,omitempty"`
}

// EntryResponse represents a single cache entry returned by the API
type EntryResponse struct {
	ID        string      `json:"id"`
	Namespace string      `json:"namespace,omitempty"`
	Value     interface{} `json:"value"`
	Timestamp time.Time   `json:"timestamp"`
}

// DeleteEntryResponse reports the outcome of a delete operation
type DeleteEntryResponse struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace,omitempty"`
	Deleted   bool   `json:"deleted"`
}

// FlushResponse reports the outcome of a flush operation
type FlushResponse struct {
	Flushed   bool   `json:"flushed"`
	Namespace string `json:"namespace,omitempty"`
}

// LogSeverity represents the severity level of a log entry
type LogSeverity string

const (
	LogSeverityLow    LogSeverity = "low"
	LogSeverityMedium LogSeverity = "medium"
	LogSeverityHigh   LogSeverity = "high"
)

// ProcessType represents the type of process that created the log
type ProcessType string

const (
	ProcessTypeRequest  ProcessType = "request"
	ProcessTypeInternal ProcessType = "internal"
)

// LogEvent represents a process-specific logging context
type LogEvent struct {
	ProcessID   string      `json:"process_id"`
	ProcessType ProcessType `json:"process_type"`
	StartTime   time.Time   `json:"start_time"`
	ClientIP    string      `json:"client_ip,omitempty"`
}

// LogEntry represents a structured log entry for database storage
type LogEntry struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Severity    LogSeverity            `json:"severity,omitempty"`
	Message     string                 `json:"message"`
	Operation   string                 `json:"operation"`
	TargetName  string                 `json:"target_name,omitempty"`
	ProcessID   string                 `json:"process_id"`
	ProcessType ProcessType            `json:"process_type"`
	ClientIP    string                 `json:"client_ip,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
