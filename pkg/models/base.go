package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind is the concrete type name of an entity, as written in the "__class__"
// key of exported records.
type Kind string

const (
	KindUser    Kind = "User"
	KindState   Kind = "State"
	KindCity    Kind = "City"
	KindPlace   Kind = "Place"
	KindAmenity Kind = "Amenity"
	KindReview  Kind = "Review"
)

// Kinds lists every entity kind, parents before children.
var Kinds = []Kind{KindUser, KindState, KindCity, KindAmenity, KindPlace, KindReview}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

const (
	// TimeFormat is the layout of created_at and updated_at in records.
	TimeFormat = "2006-01-02T15:04:05.000000"

	// ClassKey is the record key holding the entity kind.
	ClassKey = "__class__"

	fieldID        = "id"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

// Base holds the identity and bookkeeping fields shared by every entity.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Extra keeps fields supplied at construction that the entity does not
	// declare. They are exported again by ToMap.
	Extra map[string]any `json:"-"`
}

// Meta returns the embedded Base.
func (b *Base) Meta() *Base {
	return b
}

// Entity is implemented by every persisted type.
type Entity interface {
	Kind() Kind
	Meta() *Base
}

// Key returns the storage key of e, "Kind.id".
func Key(e Entity) string {
	return KeyOf(e.Kind(), e.Meta().ID)
}

// KeyOf builds a storage key.
func KeyOf(kind Kind, id string) string {
	return string(kind) + "." + id
}

// SplitKey is the inverse of KeyOf.
func SplitKey(key string) (Kind, string, error) {
	kind, id, ok := strings.Cut(key, ".")
	if !ok || id == "" {
		return "", "", fmt.Errorf("%w: malformed key %q", ErrInvalidField, key)
	}
	k, err := ParseKind(kind)
	if err != nil {
		return "", "", err
	}
	return k, id, nil
}

// FormatTime renders t with TimeFormat in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a timestamp written by FormatTime. Any other shape,
// including a different number of fractional digits, is rejected.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrTimestamp, s, err)
	}
	return t, nil
}

// normalizeTime drops everything the record format cannot carry.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// touch moves UpdatedAt to now, or one microsecond past its previous value
// when the clock has not advanced that far.
func (b *Base) touch(now time.Time) {
	now = normalizeTime(now)
	if !now.After(b.UpdatedAt) {
		now = b.UpdatedAt.Add(time.Microsecond)
	}
	b.UpdatedAt = now
}

// String renders e as "[Kind] (id) {field-map}" for diagnostics.
func String(e Entity) string {
	m := ToMap(e)
	delete(m, ClassKey)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "'%s': %v", k, reprValue(m[k]))
	}
	return fmt.Sprintf("[%s] (%s) {%s}", e.Kind(), e.Meta().ID, sb.String())
}

func reprValue(v any) string {
	switch v := v.(type) {
	case string:
		return "'" + v + "'"
	default:
		return fmt.Sprint(v)
	}
}
