package backend

import (
	"context"
	"time"
)

// Backend defines the capability set a storage provider must expose.
// External packages should use this interface, not the concrete implementations.
//
// A lifetime of zero means the entry never expires. Fetch and Contains report
// absence through their bool result; Delete reports whether the key was
// present before the call. Implementations own all durability, expiration and
// concurrency concerns.
type Backend interface {
	Fetch(ctx context.Context, key string) (interface{}, bool, error)
	Save(ctx context.Context, key string, value interface{}, lifetime time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	Flush(ctx context.Context) error
	Contains(ctx context.Context, key string) (bool, error)
}
