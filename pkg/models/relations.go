package models

import (
	"context"
	"fmt"
	"slices"
	"sort"
)

// Lister enumerates stored entities of one kind, keyed "Kind.id".
type Lister interface {
	All(ctx context.Context, kind Kind) (map[string]Entity, error)
}

// RelationResolver is implemented by engines that can traverse a relation
// natively instead of scanning the child collection.
type RelationResolver interface {
	Related(ctx context.Context, parent Entity, child Kind) ([]Entity, error)
}

// Relation links a parent kind to a child kind.
type Relation struct {
	Parent Kind
	Child  Kind
	// Name is the collection name on the parent ("cities", "places", ...).
	Name string
	// ForeignKey is the child field referencing the parent. It is empty for
	// Place -> Amenity, where the parent lists the children.
	ForeignKey string

	match func(parent, child Entity) bool
}

// Relations lists every parent/child traversal between entity kinds.
var Relations = []Relation{
	{Parent: KindState, Child: KindCity, Name: "cities", ForeignKey: "state_id",
		match: func(p, c Entity) bool { return c.(*City).StateID == p.Meta().ID }},
	{Parent: KindCity, Child: KindPlace, Name: "places", ForeignKey: "city_id",
		match: func(p, c Entity) bool { return c.(*Place).CityID == p.Meta().ID }},
	{Parent: KindUser, Child: KindPlace, Name: "places", ForeignKey: "user_id",
		match: func(p, c Entity) bool { return c.(*Place).UserID == p.Meta().ID }},
	{Parent: KindUser, Child: KindReview, Name: "reviews", ForeignKey: "user_id",
		match: func(p, c Entity) bool { return c.(*Review).UserID == p.Meta().ID }},
	{Parent: KindPlace, Child: KindReview, Name: "reviews", ForeignKey: "place_id",
		match: func(p, c Entity) bool { return c.(*Review).PlaceID == p.Meta().ID }},
	{Parent: KindPlace, Child: KindAmenity, Name: "amenities",
		match: func(p, c Entity) bool { return slices.Contains(p.(*Place).AmenityIDs, c.Meta().ID) }},
}

// LookupRelation finds the relation from parent to child.
func LookupRelation(parent, child Kind) (Relation, error) {
	for _, r := range Relations {
		if r.Parent == parent && r.Child == child {
			return r, nil
		}
	}
	return Relation{}, fmt.Errorf("%w: %s -> %s", ErrNoRelation, parent, child)
}

// ScanRelated returns the children of parent by scanning every stored entity
// of the child kind. The result is ordered by id.
func ScanRelated(ctx context.Context, l Lister, parent Entity, child Kind) ([]Entity, error) {
	rel, err := LookupRelation(parent.Kind(), child)
	if err != nil {
		return nil, err
	}
	all, err := l.All(ctx, child)
	if err != nil {
		return nil, err
	}
	var out []Entity
	for _, e := range all {
		if e.Kind() == child && rel.match(parent, e) {
			out = append(out, e)
		}
	}
	sortByID(out)
	return out, nil
}

// Related returns the children of parent, through the engine's resolver when
// it has one and by scanning otherwise.
func Related(ctx context.Context, l Lister, parent Entity, child Kind) ([]Entity, error) {
	if r, ok := l.(RelationResolver); ok {
		return r.Related(ctx, parent, child)
	}
	return ScanRelated(ctx, l, parent, child)
}

func related[T Entity](ctx context.Context, l Lister, parent Entity, child Kind) ([]T, error) {
	es, err := Related(ctx, l, parent, child)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(es))
	for _, e := range es {
		if t, ok := e.(T); ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func sortByID(es []Entity) {
	sort.Slice(es, func(i, j int) bool { return es[i].Meta().ID < es[j].Meta().ID })
}

// Cities returns the cities whose state_id is s.ID.
func (s *State) Cities(ctx context.Context, l Lister) ([]*City, error) {
	return related[*City](ctx, l, s, KindCity)
}

// Places returns the places located in c.
func (c *City) Places(ctx context.Context, l Lister) ([]*Place, error) {
	return related[*Place](ctx, l, c, KindPlace)
}

// Places returns the places owned by u.
func (u *User) Places(ctx context.Context, l Lister) ([]*Place, error) {
	return related[*Place](ctx, l, u, KindPlace)
}

// Reviews returns the reviews written by u.
func (u *User) Reviews(ctx context.Context, l Lister) ([]*Review, error) {
	return related[*Review](ctx, l, u, KindReview)
}

// Reviews returns the reviews of p.
func (p *Place) Reviews(ctx context.Context, l Lister) ([]*Review, error) {
	return related[*Review](ctx, l, p, KindReview)
}

// Amenities returns the amenities p offers.
func (p *Place) Amenities(ctx context.Context, l Lister) ([]*Amenity, error) {
	return related[*Amenity](ctx, l, p, KindAmenity)
}

// AddAmenity links a to p. It is a no-op when already linked.
func (p *Place) AddAmenity(a *Amenity) {
	if !slices.Contains(p.AmenityIDs, a.ID) {
		p.AmenityIDs = append(p.AmenityIDs, a.ID)
	}
}
