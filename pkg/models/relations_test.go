package models_test

import (
	"context"
	"testing"

	"github.com/hbnbclone/hbnb/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateCitiesScan(t *testing.T) {
	ctx := context.Background()
	f := testFactory()
	store := newMemStore()

	s1 := f.NewState()
	s2 := f.NewState()
	var want []string
	for _, stateID := range []string{s1.ID, s1.ID, s2.ID} {
		c := f.NewCity()
		c.StateID = stateID
		require.NoError(t, store.New(ctx, c))
		if stateID == s1.ID {
			want = append(want, c.ID)
		}
	}
	require.NoError(t, store.New(ctx, s1))

	cities, err := s1.Cities(ctx, store)
	require.NoError(t, err)
	require.Len(t, cities, 2)
	var got []string
	for _, c := range cities {
		assert.Equal(t, s1.ID, c.StateID)
		got = append(got, c.ID)
	}
	assert.ElementsMatch(t, want, got)

	none, err := f.NewState().Cities(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOtherRelationsScan(t *testing.T) {
	ctx := context.Background()
	f := testFactory()
	store := newMemStore()

	u := f.NewUser()
	c := f.NewCity()
	p := f.NewPlace()
	p.UserID = u.ID
	p.CityID = c.ID
	r := f.NewReview()
	r.UserID = u.ID
	r.PlaceID = p.ID
	wifi := f.NewAmenity()
	pool := f.NewAmenity()
	p.AddAmenity(wifi)
	p.AddAmenity(wifi)
	for _, e := range []models.Entity{u, c, p, r, wifi, pool} {
		require.NoError(t, store.New(ctx, e))
	}

	places, err := u.Places(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []*models.Place{p}, places)

	places, err = c.Places(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []*models.Place{p}, places)

	reviews, err := u.Reviews(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []*models.Review{r}, reviews)

	reviews, err = p.Reviews(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []*models.Review{r}, reviews)

	amenities, err := p.Amenities(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []*models.Amenity{wifi}, amenities)
}

type resolvingStore struct {
	*memStore
	calls int
}

func (r *resolvingStore) Related(_ context.Context, parent models.Entity, child models.Kind) ([]models.Entity, error) {
	r.calls++
	return []models.Entity{&models.City{Base: models.Base{ID: "joined"}, StateID: parent.Meta().ID}}, nil
}

func TestRelatedUsesResolver(t *testing.T) {
	store := &resolvingStore{memStore: newMemStore()}
	s := testFactory().NewState()

	cities, err := s.Cities(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, "joined", cities[0].ID)
	assert.Equal(t, 1, store.calls)
}

func TestScanRelatedUnknownRelation(t *testing.T) {
	_, err := models.ScanRelated(context.Background(), newMemStore(), testFactory().NewState(), models.KindReview)
	require.ErrorIs(t, err, models.ErrNoRelation)
}
