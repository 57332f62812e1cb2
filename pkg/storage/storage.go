// Package storage defines the contract shared by the hbnb persistence engines.
//
// Two engines implement [Storage]:
//
//   - [github.com/hbnbclone/hbnb/pkg/storage/filestorage.FileStorage] keeps every
//     entity in memory and serializes the whole set to a single file on Save.
//     Relations are resolved by scanning, and references between entities are
//     not checked.
//   - [github.com/hbnbclone/hbnb/pkg/storage/dbstorage.DBStorage] maps entities
//     onto relational tables through GORM. Foreign keys are enforced by the
//     database, deleting a parent cascades to its children, and relations are
//     resolved with joins.
//
// Which engine runs is decided once, at startup, from the storage [Mode]; the
// entity code in package models is identical for both.
//
// # Session semantics
//
// New and Delete stage a change; Save flushes every staged change to the
// backing medium at once. Reload discards the in-memory view and reads the
// medium again. Errors from the medium are returned to the caller unmodified
// (wrapped with %w where context is added); nothing is retried.
//
// # Concurrency
//
// Engines guard their own state, but a caller sequence such as New followed
// by Save is not atomic with respect to other callers. Wrap the engine with
// [NewSynchronized] and use [Synchronized.Do] when such sequences must not
// interleave.
package storage

import (
	"context"
	"errors"

	"github.com/hbnbclone/hbnb/pkg/models"
)

var (
	// ErrReadOnly is returned by write operations of a store in read-only mode.
	ErrReadOnly = errors.New("operation denied: storage is in read-only mode")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("storage is closed")
)

// Storage is the persistence engine behind the entity layer.
type Storage interface {
	// All returns every stored entity of the given kind keyed "Kind.id".
	// The empty kind returns entities of every kind. The map is a fresh copy.
	All(ctx context.Context, kind models.Kind) (map[string]models.Entity, error)

	// Get returns the entity of the given kind and id, or nil without error
	// when there is none.
	Get(ctx context.Context, kind models.Kind, id string) (models.Entity, error)

	// Count returns the number of stored entities of the given kind, or of
	// every kind for the empty kind.
	Count(ctx context.Context, kind models.Kind) (int, error)

	// New registers e for persistence. It is written by the next Save.
	New(ctx context.Context, e models.Entity) error

	// Save flushes all registered changes to the backing medium.
	Save(ctx context.Context) error

	// Delete removes e. A nil e is a no-op. The removal reaches the backing
	// medium on the next Save.
	Delete(ctx context.Context, e models.Entity) error

	// Reload repopulates the store from the backing medium.
	Reload(ctx context.Context) error

	// Close releases the backing medium. Unsaved changes are lost.
	Close() error
}

// Unwrapper is implemented by stores wrapping another store.
type Unwrapper interface {
	Unwrap() Storage
}

// FilterKind is a helper for engines keeping one map of every entity.
func FilterKind(objects map[string]models.Entity, kind models.Kind) map[string]models.Entity {
	out := make(map[string]models.Entity, len(objects))
	for k, e := range objects {
		if kind == "" || e.Kind() == kind {
			out[k] = e
		}
	}
	return out
}
