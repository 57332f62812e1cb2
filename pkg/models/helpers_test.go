package models_test

import (
	"context"
	"errors"

	"github.com/hbnbclone/hbnb/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

func testFactory() *models.Factory {
	return models.NewFactory(models.WithHasher(models.BcryptHasher{Cost: bcrypt.MinCost}))
}

// memStore is the smallest Registry/Lister: a map flushed into a second map.
type memStore struct {
	objects map[string]models.Entity
	flushed map[string]map[string]any
	saves   int
	failOn  error
	failNew error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]models.Entity{}}
}

func (m *memStore) All(_ context.Context, kind models.Kind) (map[string]models.Entity, error) {
	out := map[string]models.Entity{}
	for k, e := range m.objects {
		if kind == "" || e.Kind() == kind {
			out[k] = e
		}
	}
	return out, nil
}

func (m *memStore) New(_ context.Context, e models.Entity) error {
	if m.failNew != nil {
		return m.failNew
	}
	m.objects[models.Key(e)] = e
	return nil
}

func (m *memStore) Delete(_ context.Context, e models.Entity) error {
	delete(m.objects, models.Key(e))
	return nil
}

func (m *memStore) Save(context.Context) error {
	if m.failOn != nil {
		return m.failOn
	}
	m.saves++
	m.flushed = map[string]map[string]any{}
	for k, e := range m.objects {
		m.flushed[k] = models.ToMap(e)
	}
	return nil
}

var errDiskFull = errors.New("disk full")
