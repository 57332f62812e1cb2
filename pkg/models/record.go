package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

type field struct {
	name  string
	index []int
}

// schemas maps every kind to its exported fields, in declaration order.
var schemas = func() map[Kind][]field {
	out := make(map[Kind][]field, len(Kinds))
	for _, k := range Kinds {
		e, _ := Blank(k)
		out[k] = fieldsOf(reflect.TypeOf(e).Elem())
	}
	return out
}()

func fieldsOf(t reflect.Type) []field {
	var fields []field
	for _, sf := range reflect.VisibleFields(t) {
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, field{name: name, index: sf.Index})
	}
	return fields
}

// IsField reports whether name is a declared field of kind.
func IsField(kind Kind, name string) bool {
	for _, f := range schemas[kind] {
		if f.name == name {
			return true
		}
	}
	return false
}

// ToMap exports e as a record. See the package documentation for the layout.
func ToMap(e Entity) map[string]any {
	b := e.Meta()
	m := make(map[string]any, len(schemas[e.Kind()])+len(b.Extra)+3)
	for k, v := range b.Extra {
		m[k] = v
	}

	v := reflect.ValueOf(e).Elem()
	for _, f := range schemas[e.Kind()] {
		fv := v.FieldByIndex(f.index)
		if fv.Kind() == reflect.Slice {
			if fv.IsNil() {
				m[f.name] = []string{}
				continue
			}
			cp := reflect.MakeSlice(fv.Type(), fv.Len(), fv.Len())
			reflect.Copy(cp, fv)
			m[f.name] = cp.Interface()
			continue
		}
		m[f.name] = fv.Interface()
	}

	m[fieldCreatedAt] = FormatTime(b.CreatedAt)
	m[fieldUpdatedAt] = FormatTime(b.UpdatedAt)
	m[ClassKey] = string(e.Kind())
	return m
}

// apply assigns fields onto e. The class key is skipped, timestamps are
// coerced to time values and undeclared keys land in Base.Extra.
func apply(e Entity, fields map[string]any) error {
	b := e.Meta()
	declared := make(map[string]any, len(fields))
	for k, v := range fields {
		switch {
		case k == ClassKey:
		case k == fieldCreatedAt:
			t, err := toTime(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			b.CreatedAt = t
		case k == fieldUpdatedAt:
			t, err := toTime(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			b.UpdatedAt = t
		case IsField(e.Kind(), k):
			declared[k] = v
		default:
			if b.Extra == nil {
				b.Extra = make(map[string]any)
			}
			b.Extra[k] = v
		}
	}
	if len(declared) == 0 {
		return nil
	}

	// The JSON round trip does the numeric and list conversions for us
	// (float64 -> int, []any -> []string) and rejects mismatched types.
	data, err := json.Marshal(declared)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if err := json.Unmarshal(data, e); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidField, e.Kind(), err)
	}
	if b.ID == "" {
		return fmt.Errorf("%w: %s: empty id", ErrInvalidField, e.Kind())
	}
	return nil
}

// Set assigns one field of e. The id, the timestamps and the class key are
// protected.
func Set(e Entity, name string, value any) error {
	switch name {
	case fieldID, fieldCreatedAt, fieldUpdatedAt, ClassKey:
		return fmt.Errorf("%w: %s", ErrProtected, name)
	}
	return apply(e, map[string]any{name: value})
}

// SetString parses raw according to the declared type of the field and
// assigns it. List fields take a comma separated value. Undeclared names
// keep an int or float when raw is one, and the string otherwise.
func SetString(e Entity, name, raw string) error {
	var f *field
	for i := range schemas[e.Kind()] {
		if schemas[e.Kind()][i].name == name {
			f = &schemas[e.Kind()][i]
		}
	}
	if f == nil {
		return Set(e, name, GuessValue(raw))
	}

	ft := reflect.TypeOf(e).Elem().FieldByIndex(f.index).Type
	switch ft.Kind() {
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidField, name, err)
		}
		return Set(e, name, n)
	case reflect.Float64:
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidField, name, err)
		}
		return Set(e, name, x)
	case reflect.Slice:
		var items []string
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
		return Set(e, name, items)
	}
	return Set(e, name, raw)
}

// GuessValue returns raw as an int or a float when it parses as one.
func GuessValue(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if x, err := strconv.ParseFloat(raw, 64); err == nil {
		return x
	}
	return raw
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case string:
		return ParseTime(t)
	case time.Time:
		return normalizeTime(t), nil
	case *time.Time:
		if t != nil {
			return normalizeTime(*t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unsupported value %T", ErrTimestamp, v)
}
