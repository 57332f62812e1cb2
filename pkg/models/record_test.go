package models_test

import (
	"testing"

	"github.com/hbnbclone/hbnb/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetProtected(t *testing.T) {
	st := testFactory().NewState()
	for _, name := range []string{"id", "created_at", "updated_at", "__class__"} {
		assert.ErrorIs(t, models.Set(st, name, "x"), models.ErrProtected, name)
	}
	require.NoError(t, models.Set(st, "name", "Utah"))
	assert.Equal(t, "Utah", st.Name)
}

func TestSetString(t *testing.T) {
	p := testFactory().NewPlace()

	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T)
	}{
		{"name", "Cozy loft", func(t *testing.T) { assert.Equal(t, "Cozy loft", p.Name) }},
		{"number_rooms", "3", func(t *testing.T) { assert.Equal(t, 3, p.NumberRooms) }},
		{"latitude", "37.5", func(t *testing.T) { assert.Equal(t, 37.5, p.Latitude) }},
		{"amenity_ids", "a, b,", func(t *testing.T) { assert.Equal(t, []string{"a", "b"}, p.AmenityIDs) }},
		{"rating", "4", func(t *testing.T) { assert.Equal(t, 4, p.Extra["rating"]) }},
		{"nickname", "home", func(t *testing.T) { assert.Equal(t, "home", p.Extra["nickname"]) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, models.SetString(p, tc.name, tc.raw))
			tc.check(t)
		})
	}

	assert.ErrorIs(t, models.SetString(p, "max_guest", "lots"), models.ErrInvalidField)
	assert.ErrorIs(t, models.SetString(p, "updated_at", "now"), models.ErrProtected)
}

func TestGuessValue(t *testing.T) {
	assert.Equal(t, 12, models.GuessValue("12"))
	assert.Equal(t, 1.5, models.GuessValue("1.5"))
	assert.Equal(t, "abc", models.GuessValue("abc"))
}
