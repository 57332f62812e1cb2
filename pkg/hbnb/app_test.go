package hbnb

import (
	"context"
	"testing"

	"github.com/hbnbclone/hbnb/pkg/storage"
	"github.com/stretchr/testify/assert"
)

type migratingStorage struct {
	storage.Storage
	migrated bool
}

func (m *migratingStorage) Migrate(context.Context) error {
	m.migrated = true
	return nil
}

func TestFindMigratorThroughWrappers(t *testing.T) {
	inner := &migratingStorage{}
	wrapped := storage.NewReadOnly(storage.NewSynchronized(inner), func() bool { return false })

	m, ok := findMigrator(wrapped)
	assert.True(t, ok)
	assert.NoError(t, m.Migrate(context.Background()))
	assert.True(t, inner.migrated)
}

func TestFindMigratorFileEngine(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	_, ok := findMigrator(app.Store())
	assert.False(t, ok)
}
