package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Factory constructs entities. It owns the collaborators construction needs:
// the password hasher, the clock and the identifier source.
type Factory struct {
	hasher PasswordHasher
	now    func() time.Time
	newID  func() string
}

// Option configures a Factory.
type Option func(*Factory)

// WithHasher sets the hasher applied to User passwords.
func WithHasher(h PasswordHasher) Option {
	return func(f *Factory) {
		f.hasher = h
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(f *Factory) {
		f.now = now
	}
}

// WithIDGenerator replaces the random UUID source.
func WithIDGenerator(newID func() string) Option {
	return func(f *Factory) {
		f.newID = newID
	}
}

// NewFactory returns a Factory hashing passwords with bcrypt and issuing
// random (version 4) UUIDs.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		hasher: BcryptHasher{},
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Hasher returns the password hasher in use.
func (f *Factory) Hasher() PasswordHasher {
	return f.hasher
}

// Now returns the factory clock's current time at record precision.
func (f *Factory) Now() time.Time {
	return normalizeTime(f.now())
}

// New constructs an entity of the given kind. The entity first receives a
// fresh identity and equal created/updated timestamps, then every entry of
// fields except the class key is applied on top, so a previously exported
// record reproduces the original entity.
//
// Timestamp strings must match TimeFormat exactly. Keys the kind does not
// declare are kept in Base.Extra.
//
// A User password is hashed, unless fields is a stored record (it carries
// the class key) whose password already is a digest of the active hasher.
func (f *Factory) New(kind Kind, fields map[string]any) (Entity, error) {
	e, err := Blank(kind)
	if err != nil {
		return nil, err
	}

	b := e.Meta()
	b.ID = f.newID()
	b.CreatedAt = f.Now()
	b.UpdatedAt = b.CreatedAt

	if err := apply(e, fields); err != nil {
		return nil, err
	}
	if b.UpdatedAt.Before(b.CreatedAt) {
		b.UpdatedAt = b.CreatedAt
	}
	if p, ok := e.(*Place); ok && len(p.AmenityIDs) == 0 {
		p.AmenityIDs = nil
	}

	if u, ok := e.(*User); ok && u.Password != "" && !(isRecord(fields) && f.hasher.IsHash(u.Password)) {
		digest, err := f.hasher.Hash(u.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.Password = digest
	}
	return e, nil
}

func isRecord(fields map[string]any) bool {
	_, ok := fields[ClassKey]
	return ok
}

// Save is the package-level Save, reading the time from the factory clock.
func (f *Factory) Save(ctx context.Context, r Registry, e Entity) error {
	return saveAt(ctx, r, e, f.now())
}

// FromMap constructs the entity named by the record's class key.
func (f *Factory) FromMap(m map[string]any) (Entity, error) {
	class, ok := m[ClassKey].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrUnknownKind, ClassKey)
	}
	kind, err := ParseKind(class)
	if err != nil {
		return nil, err
	}
	return f.New(kind, m)
}

func (f *Factory) NewUser() *User {
	return f.mustNew(KindUser).(*User)
}

func (f *Factory) NewState() *State {
	return f.mustNew(KindState).(*State)
}

func (f *Factory) NewCity() *City {
	return f.mustNew(KindCity).(*City)
}

func (f *Factory) NewPlace() *Place {
	return f.mustNew(KindPlace).(*Place)
}

func (f *Factory) NewAmenity() *Amenity {
	return f.mustNew(KindAmenity).(*Amenity)
}

func (f *Factory) NewReview() *Review {
	return f.mustNew(KindReview).(*Review)
}

// mustNew only ever sees known kinds and no fields, which cannot fail.
func (f *Factory) mustNew(kind Kind) Entity {
	e, err := f.New(kind, nil)
	if err != nil {
		panic(err)
	}
	return e
}
