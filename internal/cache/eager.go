package cache

import (
	"context"
	"time"

	"kvcache/internal/backend"
	"kvcache/internal/models"
)

// Eager is a cache frontend that treats an entire namespace of small entries
// as one aggregate backend record. The record is fetched once at construction,
// all reads and mutations happen in memory, and PersistIfNeeded writes the
// accumulated state back in a single backend call. This amortizes backend
// overhead across many logical entries at the cost of per-entry freshness.
//
// An Eager instance belongs to one owner within one scope (typically a single
// request) and is not safe for concurrent use.
type Eager struct {
	storage   backend.Backend
	storageID string
	content   map[string]interface{}
	dirty     bool
}

// NewEager creates an eager cache over the aggregate record stored under
// storageID. A missing or non-mapping record starts the cache empty; a
// corrupted aggregate is indistinguishable from no cache at all.
func NewEager(ctx context.Context, storage backend.Backend, storageID string) (*Eager, error) {
	value, found, err := storage.Fetch(ctx, storageID)
	if err != nil {
		return nil, err
	}

	// Copy the fetched mapping instead of adopting it. A backend may hand
	// back the very map it stores (the memory backend does), and aliasing
	// it would leak every mutation into the backend before persist.
	content := make(map[string]interface{})
	if found {
		if mapping, ok := value.(map[string]interface{}); ok {
			for id, v := range mapping {
				content[id] = v
			}
		}
	}

	return &Eager{
		storage:   storage,
		storageID: storageID,
		content:   content,
	}, nil
}

// Fetch returns the value stored under id. Callers are expected to check
// Contains first; fetching a missing id is a contract violation and fails
// with models.ErrEntryNotFound.
func (e *Eager) Fetch(id string) (interface{}, error) {
	value, ok := e.content[id]
	if !ok {
		return nil, models.ErrEntryNotFound
	}
	return value, nil
}

// Contains reports whether an entry exists under id
func (e *Eager) Contains(id string) bool {
	_, ok := e.content[id]
	return ok
}

// Save stores a value under id in memory and marks the cache dirty. Opaque
// values are rejected with an invalid-argument error because the aggregate
// record must be serializable as a whole.
func (e *Eager) Save(id string, value interface{}) error {
	if err := validateValue(value); err != nil {
		return err
	}

	e.content[id] = value
	e.dirty = true
	return nil
}

// Delete removes the entry under id and reports whether it existed. Removing
// an absent id leaves the cache untouched, dirty flag included.
func (e *Eager) Delete(id string) bool {
	if _, ok := e.content[id]; !ok {
		return false
	}

	delete(e.content, id)
	e.dirty = true
	return true
}

// FlushAll drops the aggregate backend record and empties the in-memory
// content. The backend delete outcome is not surfaced; flushing always
// reports true and leaves the cache clean.
func (e *Eager) FlushAll(ctx context.Context) bool {
	_, _ = e.storage.Delete(ctx, e.storageID)

	e.content = make(map[string]interface{})
	e.dirty = false
	return true
}

// PersistIfNeeded writes the entire content mapping to the backend in one
// call if anything changed since construction or the last persist. A lifetime
// of zero stores the record without expiration. When nothing is dirty, no
// backend call is made. The dirty flag clears regardless of the backend write
// outcome; a backend failure propagates untranslated.
func (e *Eager) PersistIfNeeded(ctx context.Context, lifetime time.Duration) error {
	if !e.dirty {
		return nil
	}

	// Hand the backend a snapshot, not the live map. Mutations after a
	// persist must stay invisible until the next persist.
	snapshot := make(map[string]interface{}, len(e.content))
	for id, v := range e.content {
		snapshot[id] = v
	}

	e.dirty = false
	return e.storage.Save(ctx, e.storageID, snapshot, lifetime)
}

// Dirty reports whether in-memory state differs from the last-persisted
// backend state (for monitoring)
func (e *Eager) Dirty() bool {
	return e.dirty
}

// StorageID returns the backend key of the aggregate record
func (e *Eager) StorageID() string {
	return e.storageID
}
