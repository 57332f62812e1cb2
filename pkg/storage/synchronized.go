package storage

import (
	"context"
	"sync"

	"github.com/hbnbclone/hbnb/pkg/models"
)

// Synchronized serializes every call to the wrapped store behind one mutex.
type Synchronized struct {
	mu    sync.Mutex
	inner Storage
}

// NewSynchronized wraps s.
func NewSynchronized(s Storage) *Synchronized {
	return &Synchronized{inner: s}
}

func (s *Synchronized) Unwrap() Storage {
	return s.inner
}

// Do runs fn with exclusive access to the wrapped store. fn must use the
// store it is given, not s, or it deadlocks.
func (s *Synchronized) Do(fn func(Storage) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.inner)
}

func (s *Synchronized) All(ctx context.Context, kind models.Kind) (map[string]models.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.All(ctx, kind)
}

func (s *Synchronized) Get(ctx context.Context, kind models.Kind, id string) (models.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Get(ctx, kind, id)
}

func (s *Synchronized) Count(ctx context.Context, kind models.Kind) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Count(ctx, kind)
}

func (s *Synchronized) New(ctx context.Context, e models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.New(ctx, e)
}

func (s *Synchronized) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Save(ctx)
}

func (s *Synchronized) Delete(ctx context.Context, e models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Delete(ctx, e)
}

func (s *Synchronized) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Reload(ctx)
}

func (s *Synchronized) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Close()
}

func (s *Synchronized) Related(ctx context.Context, parent models.Entity, child models.Kind) ([]models.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Related(ctx, s.inner, parent, child)
}
