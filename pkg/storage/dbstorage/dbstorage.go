// Package dbstorage implements relational mode on PostgreSQL through GORM.
//
// Each entity kind maps onto its own table (users, states, cities, places,
// amenities, reviews) plus the place_amenity join table. Row types are
// declared here, separately from the plain entities of package models, and
// carry the relational schema: column sizes, nullability, foreign keys and
// ON DELETE CASCADE for State->City, City->Place, User->Place, User->Review
// and Place->Review. Referential integrity is the database's job; a missing
// or dangling foreign key surfaces as an error from Save.
//
// [DBStorage] behaves like a unit of work: New and Delete stage changes in
// memory and Save commits all of them in one transaction. Queries (All, Get,
// Count, Related) read committed rows only.
package dbstorage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hbnbclone/hbnb/pkg/models"
	"github.com/hbnbclone/hbnb/pkg/storage"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBStorage is the relational storage engine.
type DBStorage struct {
	db      *gorm.DB
	factory *models.Factory
	log     zerolog.Logger

	mu      sync.Mutex
	pending map[string]models.Entity
	removed map[string]models.Entity
}

var (
	_ storage.Storage         = (*DBStorage)(nil)
	_ models.RelationResolver = (*DBStorage)(nil)
)

type options struct {
	log           zerolog.Logger
	dropAll       bool
	slowThreshold time.Duration
}

// Option configures a DBStorage.
type Option func(*options)

// WithLogger routes engine and SQL logs to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithDropAll drops every table when the store opens. It backs the "test"
// environment, where each run starts from an empty schema.
func WithDropAll() Option {
	return func(o *options) {
		o.dropAll = true
	}
}

// WithSlowThreshold logs queries slower than d as warnings.
func WithSlowThreshold(d time.Duration) Option {
	return func(o *options) {
		o.slowThreshold = d
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zerolog.Nop(), slowThreshold: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open connects to PostgreSQL at dsn, creates the schema if needed and
// returns the store.
func Open(ctx context.Context, dsn string, factory *models.Factory, opts ...Option) (*DBStorage, error) {
	o := buildOptions(opts)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 newGormLogger(o.log, o.slowThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s, err := New(ctx, db, factory, opts...)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	return s, nil
}

// New builds a store on an existing GORM handle.
func New(ctx context.Context, db *gorm.DB, factory *models.Factory, opts ...Option) (*DBStorage, error) {
	o := buildOptions(opts)
	s := &DBStorage{
		db:      db,
		factory: factory,
		log:     o.log,
		pending: make(map[string]models.Entity),
		removed: make(map[string]models.Entity),
	}
	if o.dropAll {
		if err := s.DropAll(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Migrate creates missing tables, columns, indexes and constraints.
func (s *DBStorage) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(migrationModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// DropAll drops every table of the schema, children first.
func (s *DBStorage) DropAll(ctx context.Context) error {
	ms := migrationModels()
	for i, j := 0, len(ms)-1; i < j; i, j = i+1, j-1 {
		ms[i], ms[j] = ms[j], ms[i]
	}
	if err := s.db.WithContext(ctx).Migrator().DropTable(ms...); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	s.log.Debug().Msg("dropped all tables")
	return nil
}

// Reload ensures the schema exists and discards staged changes.
func (s *DBStorage) Reload(ctx context.Context) error {
	if err := s.Migrate(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.pending = make(map[string]models.Entity)
	s.removed = make(map[string]models.Entity)
	s.mu.Unlock()
	return nil
}

func (s *DBStorage) All(ctx context.Context, kind models.Kind) (map[string]models.Entity, error) {
	kinds := models.Kinds
	if kind != "" {
		kinds = []models.Kind{kind}
	}

	out := make(map[string]models.Entity)
	tx := s.db.WithContext(ctx)
	for _, k := range kinds {
		t, err := tableFor(k)
		if err != nil {
			return nil, err
		}
		recs, err := t.find(tx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", k, err)
		}
		if err := s.loadAmenityLinks(tx, recs); err != nil {
			return nil, err
		}
		for _, r := range recs {
			e := r.entity()
			out[models.Key(e)] = e
		}
	}
	return out, nil
}

func (s *DBStorage) Get(ctx context.Context, kind models.Kind, id string) (models.Entity, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx)
	r := t.model()
	if err := tx.First(r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", models.KeyOf(kind, id), err)
	}
	if err := s.loadAmenityLinks(tx, []record{r}); err != nil {
		return nil, err
	}
	return r.entity(), nil
}

func (s *DBStorage) Count(ctx context.Context, kind models.Kind) (int, error) {
	kinds := models.Kinds
	if kind != "" {
		kinds = []models.Kind{kind}
	}
	total := 0
	for _, k := range kinds {
		t, err := tableFor(k)
		if err != nil {
			return 0, err
		}
		var n int64
		if err := s.db.WithContext(ctx).Model(t.model()).Count(&n).Error; err != nil {
			return 0, fmt.Errorf("failed to count %s: %w", k, err)
		}
		total += int(n)
	}
	return total, nil
}

// New stages e for insertion or update by the next Save.
func (s *DBStorage) New(_ context.Context, e models.Entity) error {
	if e == nil {
		return nil
	}
	if _, err := tableFor(e.Kind()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.Key(e)
	delete(s.removed, key)
	s.pending[key] = e
	return nil
}

// Delete stages the removal of e. Children go with it through the
// ON DELETE CASCADE constraints.
func (s *DBStorage) Delete(_ context.Context, e models.Entity) error {
	if e == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.Key(e)
	delete(s.pending, key)
	s.removed[key] = e
	return nil
}

// Save commits every staged change in one transaction: upserts parents
// first, then deletes children first. On error nothing is committed and the
// changes stay staged.
func (s *DBStorage) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 && len(s.removed) == 0 {
		return nil
	}

	upserts := ordered(s.pending, false)
	deletes := ordered(s.removed, true)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range upserts {
			if err := saveEntity(tx, e); err != nil {
				return fmt.Errorf("failed to save %s: %w", models.Key(e), err)
			}
		}
		for _, e := range deletes {
			r, err := toRecord(e)
			if err != nil {
				return err
			}
			if err := tx.Delete(r, "id = ?", e.Meta().ID).Error; err != nil {
				return fmt.Errorf("failed to delete %s: %w", models.Key(e), err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug().Int("saved", len(upserts)).Int("deleted", len(deletes)).Msg("committed")
	s.pending = make(map[string]models.Entity)
	s.removed = make(map[string]models.Entity)
	return nil
}

func saveEntity(tx *gorm.DB, e models.Entity) error {
	r, err := toRecord(e)
	if err != nil {
		return err
	}
	if err := tx.Omit(clause.Associations).Save(r).Error; err != nil {
		return err
	}
	p, ok := r.(*placeRecord)
	if !ok {
		return nil
	}
	if err := tx.Where("place_id = ?", p.ID).Delete(&placeAmenityRecord{}).Error; err != nil {
		return err
	}
	if len(p.AmenityLinks) == 0 {
		return nil
	}
	return tx.Create(&p.AmenityLinks).Error
}

// ordered sorts staged entities by table order, reversed for deletes, then
// by id.
func ordered(staged map[string]models.Entity, reverse bool) []models.Entity {
	rank := make(map[models.Kind]int, len(tables))
	for i, t := range tables {
		rank[t.kind] = i
		if reverse {
			rank[t.kind] = len(tables) - i
		}
	}
	out := make([]models.Entity, 0, len(staged))
	for _, e := range staged {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := rank[out[i].Kind()], rank[out[j].Kind()]
		if ri != rj {
			return ri < rj
		}
		return out[i].Meta().ID < out[j].Meta().ID
	})
	return out
}

// Related answers a relation with a query on the child table joined to the
// parent, instead of listing every child.
func (s *DBStorage) Related(ctx context.Context, parent models.Entity, child models.Kind) ([]models.Entity, error) {
	rel, err := models.LookupRelation(parent.Kind(), child)
	if err != nil {
		return nil, err
	}
	t, err := tableFor(child)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx)
	var recs []record
	if rel.ForeignKey == "" {
		// Place -> Amenity goes through the join table.
		recs, err = t.find(tx.
			Joins("JOIN place_amenity ON place_amenity.amenity_id = amenities.id").
			Where("place_amenity.place_id = ?", parent.Meta().ID))
	} else {
		var owner record
		if owner, err = toRecord(parent); err == nil {
			recs, err = t.assoc(tx.Model(owner).Association(associationName(rel)))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s of %s: %w", rel.Name, models.Key(parent), err)
	}
	if err := s.loadAmenityLinks(tx, recs); err != nil {
		return nil, err
	}

	out := make([]models.Entity, len(recs))
	for i, r := range recs {
		out[i] = r.entity()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Meta().ID < out[j].Meta().ID })
	return out, nil
}

// associationName is the Go field of the parent row holding the relation,
// "cities" -> "Cities".
func associationName(rel models.Relation) string {
	return strings.ToUpper(rel.Name[:1]) + rel.Name[1:]
}

// loadAmenityLinks fills AmenityLinks of every place row in recs.
func (s *DBStorage) loadAmenityLinks(tx *gorm.DB, recs []record) error {
	places := make(map[string]*placeRecord)
	ids := make([]string, 0)
	for _, r := range recs {
		if p, ok := r.(*placeRecord); ok {
			places[p.ID] = p
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	var links []placeAmenityRecord
	if err := tx.Where("place_id IN ?", ids).Find(&links).Error; err != nil {
		return fmt.Errorf("failed to load amenity links: %w", err)
	}
	for _, l := range links {
		p := places[l.PlaceID]
		p.AmenityLinks = append(p.AmenityLinks, l)
	}
	return nil
}

// Close closes the database connection. Staged changes are dropped.
func (s *DBStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
