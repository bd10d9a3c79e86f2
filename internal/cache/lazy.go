package cache

import (
	"context"
	"regexp"
	"time"

	"kvcache/internal/backend"
	"kvcache/internal/models"
)

// KeyPrefix is prepended to every validated id before it reaches the backend,
// keeping cache entries out of the raw id space of unrelated backend users.
const KeyPrefix = "cache_"

// Ids start with a letter or digit; the rest may add underscore, dash or dot.
var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]*$`)

// Lazy is a stateless cache frontend that forwards every operation straight
// to the backend, adding only id validation and key namespacing. Instances
// sharing a backend see each other's entries; the frontend itself holds no
// state beyond the backend reference.
type Lazy struct {
	storage backend.Backend
}

// NewLazy creates a lazy cache over the given backend
func NewLazy(storage backend.Backend) *Lazy {
	return &Lazy{
		storage: storage,
	}
}

// ValidateID checks a cache id against the allowed pattern. Empty ids and
// ids with a leading or contained illegal character fail with an
// invalid-argument error.
func ValidateID(id string) error {
	if id == "" {
		return models.NewArgumentError("", "empty cache id")
	}
	if !validID.MatchString(id) {
		return models.NewArgumentError(id, "invalid cache id")
	}
	return nil
}

// Fetch retrieves the value stored under id, reporting absence through the
// bool result
func (l *Lazy) Fetch(ctx context.Context, id string) (interface{}, bool, error) {
	if err := ValidateID(id); err != nil {
		return nil, false, err
	}
	return l.storage.Fetch(ctx, KeyPrefix+id)
}

// Contains reports whether an entry exists under id
func (l *Lazy) Contains(ctx context.Context, id string) (bool, error) {
	if err := ValidateID(id); err != nil {
		return false, err
	}
	return l.storage.Contains(ctx, KeyPrefix+id)
}

// Save stores a value under id with the given lifetime (zero meaning no
// expiration). Opaque values are rejected; in-memory objects belong in a
// transient cache, not behind a persistence backend.
func (l *Lazy) Save(ctx context.Context, id string, data interface{}, lifetime time.Duration) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := validateValue(data); err != nil {
		return err
	}
	return l.storage.Save(ctx, KeyPrefix+id, data, lifetime)
}

// Delete removes the entry under id and reports whether it existed
func (l *Lazy) Delete(ctx context.Context, id string) (bool, error) {
	if err := ValidateID(id); err != nil {
		return false, err
	}
	return l.storage.Delete(ctx, KeyPrefix+id)
}

// FlushAll clears the whole backend, not just this cache's namespace. Every
// entry the backend holds goes, including ones written by other frontends.
func (l *Lazy) FlushAll(ctx context.Context) error {
	return l.storage.Flush(ctx)
}
