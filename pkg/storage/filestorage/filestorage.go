// Package filestorage implements flat mode: every entity lives in memory and
// Save serializes the complete set to one file.
//
// The file holds a single object mapping "Kind.id" to the entity's exported
// record (see [github.com/hbnbclone/hbnb/pkg/models.ToMap]). Files written by
// earlier versions of the application load unchanged.
//
// No referential integrity is enforced: a City may name a state_id that does
// not exist, and deleting a State leaves its cities in place. Relations are
// answered by scanning (see [github.com/hbnbclone/hbnb/pkg/models.ScanRelated]).
package filestorage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hbnbclone/hbnb/pkg/models"
	"github.com/hbnbclone/hbnb/pkg/storage"
	"github.com/rs/zerolog"
)

const filePermission = 0644

// FileStorage is the flat mode storage engine. It is safe for concurrent use.
type FileStorage struct {
	mu      sync.RWMutex
	path    string
	codec   Codec
	factory *models.Factory
	log     zerolog.Logger
	objects map[string]models.Entity
	closed  bool
}

var _ storage.Storage = (*FileStorage)(nil)

// Option configures a FileStorage.
type Option func(*FileStorage)

// WithLogger sets the logger; the default discards.
func WithLogger(l zerolog.Logger) Option {
	return func(s *FileStorage) {
		s.log = l
	}
}

// WithCodec overrides the codec picked from the file extension.
func WithCodec(c Codec) Option {
	return func(s *FileStorage) {
		s.codec = c
	}
}

// Open creates a FileStorage backed by path and loads it. A missing file is
// an empty store.
func Open(ctx context.Context, path string, factory *models.Factory, opts ...Option) (*FileStorage, error) {
	s := &FileStorage{
		path:    path,
		factory: factory,
		log:     zerolog.Nop(),
		objects: make(map[string]models.Entity),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.codec == nil {
		codec, err := CodecFor(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create codec: %w", err)
		}
		s.codec = codec
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) All(_ context.Context, kind models.Kind) (map[string]models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrClosed
	}
	return storage.FilterKind(s.objects, kind), nil
}

func (s *FileStorage) Get(_ context.Context, kind models.Kind, id string) (models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrClosed
	}
	return s.objects[models.KeyOf(kind, id)], nil
}

func (s *FileStorage) Count(_ context.Context, kind models.Kind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, storage.ErrClosed
	}
	if kind == "" {
		return len(s.objects), nil
	}
	n := 0
	for _, e := range s.objects {
		if e.Kind() == kind {
			n++
		}
	}
	return n, nil
}

func (s *FileStorage) New(_ context.Context, e models.Entity) error {
	if e == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.objects[models.Key(e)] = e
	return nil
}

func (s *FileStorage) Delete(_ context.Context, e models.Entity) error {
	if e == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	delete(s.objects, models.Key(e))
	return nil
}

// Save writes every registered entity to the file. The file is replaced
// atomically, so a failed Save leaves the previous content intact.
func (s *FileStorage) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return storage.ErrClosed
	}
	records := make(Records, len(s.objects))
	for k, e := range s.objects {
		records[k] = models.ToMap(e)
	}
	s.mu.RUnlock()

	data, err := s.codec.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.path, err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	s.log.Debug().Str("path", s.path).Int("objects", len(records)).Msg("saved")
	return nil
}

// Reload replaces the in-memory entities with the file content. Unsaved
// changes are discarded. A missing file yields an empty store.
func (s *FileStorage) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.replace(make(map[string]models.Entity)); err != nil {
			return err
		}
		s.log.Debug().Str("path", s.path).Msg("no file, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var records Records
	if len(data) > 0 {
		if err := s.codec.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("failed to decode %s: %w", s.path, err)
		}
	}

	objects := make(map[string]models.Entity, len(records))
	for key, record := range records {
		e, err := s.factory.FromMap(record)
		if err != nil {
			return fmt.Errorf("failed to load %s from %s: %w", key, s.path, err)
		}
		if k := models.Key(e); k != key {
			s.log.Warn().Str("key", key).Str("record", k).Msg("record key does not match its content")
			key = k
		}
		objects[key] = e
	}
	if err := s.replace(objects); err != nil {
		return err
	}
	s.log.Debug().Str("path", s.path).Int("objects", len(objects)).Msg("reloaded")
	return nil
}

func (s *FileStorage) replace(objects map[string]models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.objects = objects
	return nil
}

// Close drops the in-memory entities without saving them.
func (s *FileStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.objects = nil
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), filePermission); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
