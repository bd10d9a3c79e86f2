package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates that a cache id or value failed validation
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEntryNotFound indicates a fetch for an id the cache does not hold
	ErrEntryNotFound = errors.New("cache entry not found")

	// ErrRateLimitExceeded indicates that rate limit has been exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrUnknownCache indicates a registry lookup for a name never registered
	ErrUnknownCache = errors.New("no cache registered under name")

	// ErrDuplicateCache indicates a registry name collision
	ErrDuplicateCache = errors.New("cache already registered under name")
)

// ArgumentError carries the offending argument alongside the validation failure.
// It unwraps to ErrInvalidArgument so callers can match on the error kind.
type ArgumentError struct {
	Argument string
	Message  string
}

func (e *ArgumentError) Error() string {
	if e.Argument != "" {
		return fmt.Sprintf("%s: %q", e.Message, e.Argument)
	}
	return e.Message
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// NewArgumentError creates a new argument validation error
func NewArgumentError(argument, message string) *ArgumentError {
	return &ArgumentError{
		Argument: argument,
		Message:  message,
	}
}
