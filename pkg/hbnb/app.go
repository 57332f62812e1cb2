package hbnb

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hbnbclone/hbnb/pkg/logger"
	"github.com/hbnbclone/hbnb/pkg/models"
	"github.com/hbnbclone/hbnb/pkg/storage"
	"github.com/hbnbclone/hbnb/pkg/storage/dbstorage"
	"github.com/hbnbclone/hbnb/pkg/storage/filestorage"
	"github.com/rs/zerolog"
)

// App holds the application state.
type App struct {
	store   storage.Storage
	config  *Config
	factory *models.Factory
	logs    *logger.LogData
	log     zerolog.Logger

	readOnly atomic.Bool
}

// New opens the storage engine selected by config and returns the
// application. The engine is loaded before New returns.
func New(ctx context.Context, config *Config) (*App, error) {
	logs, err := logger.New().
		FromBuffer(config.LogWriter).
		FromPath(config.LogFile).
		LevelString(config.LogLevel).
		Make()
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	log := logs.Logger

	hasher, err := models.ParseHasher(config.PasswordHash)
	if err != nil {
		logs.Close()
		return nil, err
	}
	factory := models.NewFactory(models.WithHasher(hasher))

	var engine storage.Storage
	switch config.Storage {
	case storage.ModeDB:
		opts := []dbstorage.Option{dbstorage.WithLogger(log), dbstorage.WithSlowThreshold(config.SlowQuery)}
		if config.Env == "test" {
			opts = append(opts, dbstorage.WithDropAll())
		}
		engine, err = dbstorage.Open(ctx, config.DSN, factory, opts...)
		if err != nil {
			logs.Close()
			return nil, fmt.Errorf("failed to open database storage: %w", err)
		}
		log.Info().Msg("connected to PostgreSQL")
	default:
		fs, err := filestorage.Open(ctx, config.FilePath, factory, filestorage.WithLogger(log))
		if err != nil {
			logs.Close()
			return nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		log.Info().Str("path", fs.Path()).Msg("opened file storage")
		engine = fs
	}

	app := &App{
		config:  config,
		factory: factory,
		logs:    logs,
		log:     log,
	}
	app.readOnly.Store(config.ReadOnly)
	app.store = storage.NewReadOnly(storage.NewSynchronized(engine), app.IsReadOnly)
	return app, nil
}

// Close closes the storage engine and the log file.
func (a *App) Close() error {
	err := a.store.Close()
	if lerr := a.logs.Close(); err == nil {
		err = lerr
	}
	return err
}

// Store returns the storage every command goes through.
func (a *App) Store() storage.Storage {
	return a.store
}

// Factory returns the entity factory bound to the configured hasher.
func (a *App) Factory() *models.Factory {
	return a.factory
}

// SetReadOnly toggles rejection of writes.
func (a *App) SetReadOnly(readOnly bool) {
	a.readOnly.Store(readOnly)
	a.log.Info().Bool("read_only", readOnly).Msg("read-only mode changed")
}

// IsReadOnly reports whether writes are rejected.
func (a *App) IsReadOnly() bool {
	return a.readOnly.Load()
}

// Migrate brings the relational schema up to date. The file engine has no
// schema.
func (a *App) Migrate(ctx context.Context) error {
	if a.IsReadOnly() {
		return storage.ErrReadOnly
	}
	m, ok := findMigrator(a.store)
	if !ok {
		a.log.Info().Str("storage", a.config.Storage.String()).Msg("nothing to migrate")
		return nil
	}
	if err := m.Migrate(ctx); err != nil {
		return err
	}
	a.log.Info().Msg("schema migrated")
	return nil
}

type migrator interface {
	Migrate(ctx context.Context) error
}

// findMigrator looks for a schema migrator through the layers wrapping the
// engine.
func findMigrator(s storage.Storage) (migrator, bool) {
	for {
		if m, ok := s.(migrator); ok {
			return m, true
		}
		u, ok := s.(storage.Unwrapper)
		if !ok {
			return nil, false
		}
		s = u.Unwrap()
	}
}
