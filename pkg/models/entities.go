package models

import "fmt"

// User is an account that owns places and writes reviews.
// Password holds a digest once the user has been constructed, never the
// plaintext.
type User struct {
	Base
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (*User) Kind() Kind { return KindUser }

// State groups cities.
type State struct {
	Base
	Name string `json:"name"`
}

func (*State) Kind() Kind { return KindState }

// City belongs to a State and groups places.
type City struct {
	Base
	StateID string `json:"state_id"`
	Name    string `json:"name"`
}

func (*City) Kind() Kind { return KindCity }

// Place is a rental listing in a City, owned by a User.
type Place struct {
	Base
	CityID          string   `json:"city_id"`
	UserID          string   `json:"user_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	NumberRooms     int      `json:"number_rooms"`
	NumberBathrooms int      `json:"number_bathrooms"`
	MaxGuest        int      `json:"max_guest"`
	PriceByNight    int      `json:"price_by_night"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	AmenityIDs      []string `json:"amenity_ids"`
}

func (*Place) Kind() Kind { return KindPlace }

// Amenity is a feature a Place can offer.
type Amenity struct {
	Base
	Name string `json:"name"`
}

func (*Amenity) Kind() Kind { return KindAmenity }

// Review is a User's text about a Place.
type Review struct {
	Base
	PlaceID string `json:"place_id"`
	UserID  string `json:"user_id"`
	Text    string `json:"text"`
}

func (*Review) Kind() Kind { return KindReview }

// Blank returns a zero entity of the given kind, without identity.
func Blank(kind Kind) (Entity, error) {
	switch kind {
	case KindUser:
		return &User{}, nil
	case KindState:
		return &State{}, nil
	case KindCity:
		return &City{}, nil
	case KindPlace:
		return &Place{}, nil
	case KindAmenity:
		return &Amenity{}, nil
	case KindReview:
		return &Review{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
