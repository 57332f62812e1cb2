package dbstorage

import (
	"fmt"
	"sort"
	"time"

	"github.com/hbnbclone/hbnb/pkg/models"
	"gorm.io/gorm"
)

// Base carries the identity columns of every table. Timestamps are written
// as the entity holds them, so GORM's automatic time tracking is off.
type Base struct {
	ID        string    `gorm:"size:60;primaryKey;not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

func baseOf(b *models.Base) Base {
	return Base{ID: b.ID, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt}
}

func (b Base) model() models.Base {
	return models.Base{ID: b.ID, CreatedAt: b.CreatedAt.UTC(), UpdatedAt: b.UpdatedAt.UTC()}
}

// record is a row type of one of the entity tables.
type record interface {
	TableName() string
	entity() models.Entity
}

type userRecord struct {
	Base
	Email     string         `gorm:"size:128;not null"`
	Password  string         `gorm:"size:128;not null"`
	FirstName string         `gorm:"size:128"`
	LastName  string         `gorm:"size:128"`
	Places    []placeRecord  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Reviews   []reviewRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (userRecord) TableName() string { return "users" }

func (r *userRecord) entity() models.Entity {
	return &models.User{Base: r.model(), Email: r.Email, Password: r.Password, FirstName: r.FirstName, LastName: r.LastName}
}

type stateRecord struct {
	Base
	Name   string       `gorm:"size:128;not null"`
	Cities []cityRecord `gorm:"foreignKey:StateID;constraint:OnDelete:CASCADE"`
}

func (stateRecord) TableName() string { return "states" }

func (r *stateRecord) entity() models.Entity {
	return &models.State{Base: r.model(), Name: r.Name}
}

type cityRecord struct {
	Base
	StateID string        `gorm:"size:60;not null;index"`
	Name    string        `gorm:"size:128;not null"`
	Places  []placeRecord `gorm:"foreignKey:CityID;constraint:OnDelete:CASCADE"`
}

func (cityRecord) TableName() string { return "cities" }

func (r *cityRecord) entity() models.Entity {
	return &models.City{Base: r.model(), StateID: r.StateID, Name: r.Name}
}

type placeRecord struct {
	Base
	CityID          string  `gorm:"size:60;not null;index"`
	UserID          string  `gorm:"size:60;not null;index"`
	Name            string  `gorm:"size:128;not null"`
	Description     string  `gorm:"size:1024"`
	NumberRooms     int     `gorm:"not null;default:0"`
	NumberBathrooms int     `gorm:"not null;default:0"`
	MaxGuest        int     `gorm:"not null;default:0"`
	PriceByNight    int     `gorm:"not null;default:0"`
	Latitude        float64
	Longitude       float64
	Reviews         []reviewRecord       `gorm:"foreignKey:PlaceID;constraint:OnDelete:CASCADE"`
	AmenityLinks    []placeAmenityRecord `gorm:"foreignKey:PlaceID;constraint:OnDelete:CASCADE"`
}

func (placeRecord) TableName() string { return "places" }

func (r *placeRecord) entity() models.Entity {
	p := &models.Place{
		Base:            r.model(),
		CityID:          r.CityID,
		UserID:          r.UserID,
		Name:            r.Name,
		Description:     r.Description,
		NumberRooms:     r.NumberRooms,
		NumberBathrooms: r.NumberBathrooms,
		MaxGuest:        r.MaxGuest,
		PriceByNight:    r.PriceByNight,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
	}
	for _, l := range r.AmenityLinks {
		p.AmenityIDs = append(p.AmenityIDs, l.AmenityID)
	}
	sort.Strings(p.AmenityIDs)
	return p
}

type amenityRecord struct {
	Base
	Name       string               `gorm:"size:128;not null"`
	PlaceLinks []placeAmenityRecord `gorm:"foreignKey:AmenityID;constraint:OnDelete:CASCADE"`
}

func (amenityRecord) TableName() string { return "amenities" }

func (r *amenityRecord) entity() models.Entity {
	return &models.Amenity{Base: r.model(), Name: r.Name}
}

// placeAmenityRecord is a row of the place_amenity join table.
type placeAmenityRecord struct {
	PlaceID   string `gorm:"size:60;primaryKey;not null"`
	AmenityID string `gorm:"size:60;primaryKey;not null"`
}

func (placeAmenityRecord) TableName() string { return "place_amenity" }

type reviewRecord struct {
	Base
	PlaceID string `gorm:"size:60;not null;index"`
	UserID  string `gorm:"size:60;not null;index"`
	Text    string `gorm:"size:1024;not null"`
}

func (reviewRecord) TableName() string { return "reviews" }

func (r *reviewRecord) entity() models.Entity {
	return &models.Review{Base: r.model(), PlaceID: r.PlaceID, UserID: r.UserID, Text: r.Text}
}

// toRecord converts an entity to its row. Fields kept in Base.Extra have no
// column and are not persisted.
func toRecord(e models.Entity) (record, error) {
	switch e := e.(type) {
	case *models.User:
		return &userRecord{Base: baseOf(&e.Base), Email: e.Email, Password: e.Password, FirstName: e.FirstName, LastName: e.LastName}, nil
	case *models.State:
		return &stateRecord{Base: baseOf(&e.Base), Name: e.Name}, nil
	case *models.City:
		return &cityRecord{Base: baseOf(&e.Base), StateID: e.StateID, Name: e.Name}, nil
	case *models.Place:
		r := &placeRecord{
			Base:            baseOf(&e.Base),
			CityID:          e.CityID,
			UserID:          e.UserID,
			Name:            e.Name,
			Description:     e.Description,
			NumberRooms:     e.NumberRooms,
			NumberBathrooms: e.NumberBathrooms,
			MaxGuest:        e.MaxGuest,
			PriceByNight:    e.PriceByNight,
			Latitude:        e.Latitude,
			Longitude:       e.Longitude,
		}
		for _, id := range e.AmenityIDs {
			r.AmenityLinks = append(r.AmenityLinks, placeAmenityRecord{PlaceID: e.ID, AmenityID: id})
		}
		return r, nil
	case *models.Amenity:
		return &amenityRecord{Base: baseOf(&e.Base), Name: e.Name}, nil
	case *models.Review:
		return &reviewRecord{Base: baseOf(&e.Base), PlaceID: e.PlaceID, UserID: e.UserID, Text: e.Text}, nil
	}
	return nil, fmt.Errorf("%w: %T", models.ErrUnknownKind, e)
}

// table describes how to query the rows of one kind.
type table struct {
	kind  models.Kind
	model func() record
	find  func(tx *gorm.DB) ([]record, error)
	assoc func(a *gorm.Association) ([]record, error)
}

// tables is ordered parents first; deletes and drops walk it backwards.
var tables = []table{
	{models.KindUser, func() record { return &userRecord{} }, findRecords[userRecord], findAssociated[userRecord]},
	{models.KindState, func() record { return &stateRecord{} }, findRecords[stateRecord], findAssociated[stateRecord]},
	{models.KindCity, func() record { return &cityRecord{} }, findRecords[cityRecord], findAssociated[cityRecord]},
	{models.KindAmenity, func() record { return &amenityRecord{} }, findRecords[amenityRecord], findAssociated[amenityRecord]},
	{models.KindPlace, func() record { return &placeRecord{} }, findRecords[placeRecord], findAssociated[placeRecord]},
	{models.KindReview, func() record { return &reviewRecord{} }, findRecords[reviewRecord], findAssociated[reviewRecord]},
}

func tableFor(kind models.Kind) (table, error) {
	for _, t := range tables {
		if t.kind == kind {
			return t, nil
		}
	}
	return table{}, fmt.Errorf("%w: %q", models.ErrUnknownKind, kind)
}

// migrationModels lists every table, join table included, for AutoMigrate.
func migrationModels() []any {
	out := make([]any, 0, len(tables)+1)
	for _, t := range tables {
		out = append(out, t.model())
	}
	return append(out, &placeAmenityRecord{})
}

func findRecords[R any, P interface {
	*R
	record
}](tx *gorm.DB) ([]record, error) {
	var rows []R
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return asRecords[R, P](rows), nil
}

func findAssociated[R any, P interface {
	*R
	record
}](a *gorm.Association) ([]record, error) {
	var rows []R
	if err := a.Find(&rows); err != nil {
		return nil, err
	}
	return asRecords[R, P](rows), nil
}

func asRecords[R any, P interface {
	*R
	record
}](rows []R) []record {
	out := make([]record, len(rows))
	for i := range rows {
		out[i] = P(&rows[i])
	}
	return out
}
