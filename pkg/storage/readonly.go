package storage

import (
	"context"

	"github.com/hbnbclone/hbnb/pkg/models"
)

// ReadOnlyStorage wraps a Storage and rejects writes while in read-only mode.
//
// The read-only state is determined dynamically by the isReadOnly function,
// so the mode can be toggled without recreating the store. Reads and Reload
// always pass through.
type ReadOnlyStorage struct {
	Storage
	isReadOnly func() bool
}

// NewReadOnly creates a new read-only wrapper for a store.
func NewReadOnly(s Storage, isReadOnly func() bool) *ReadOnlyStorage {
	return &ReadOnlyStorage{
		Storage:    s,
		isReadOnly: isReadOnly,
	}
}

// Unwrap returns the underlying store
func (r *ReadOnlyStorage) Unwrap() Storage {
	return r.Storage
}

func (r *ReadOnlyStorage) checkReadOnly() error {
	if r.isReadOnly() {
		return ErrReadOnly
	}
	return nil
}

func (r *ReadOnlyStorage) New(ctx context.Context, e models.Entity) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Storage.New(ctx, e)
}

func (r *ReadOnlyStorage) Save(ctx context.Context) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Storage.Save(ctx)
}

func (r *ReadOnlyStorage) Delete(ctx context.Context, e models.Entity) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Storage.Delete(ctx, e)
}

// Related forwards to the wrapped store's resolver, or scans.
func (r *ReadOnlyStorage) Related(ctx context.Context, parent models.Entity, child models.Kind) ([]models.Entity, error) {
	return models.Related(ctx, r.Storage, parent, child)
}
