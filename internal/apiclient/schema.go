package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// field maps one or more wire keys onto one canonical field of T. When
// retain reports true after decode, the wire keys are left unclaimed.
type field[T any] struct {
	wire      []string
	canonical string
	decode    func(t *T, in map[string]json.RawMessage) error
	encode    func(t *T, out map[string]any)
	retain    func(in map[string]json.RawMessage) bool
}

// schema is the complete, two-way field table of an entity. Wire keys that
// no field claims are kept in the entity's extra map, so a decode followed
// by an encode reproduces every key the server sent.
type schema[T any] struct {
	entity string
	fields []field[T]
	extra  func(*T) *map[string]json.RawMessage
}

func (s *schema[T]) decode(data []byte, t *T) error {
	var in map[string]json.RawMessage
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode %s: %w", s.entity, err)
	}
	for _, f := range s.fields {
		if err := f.decode(t, in); err != nil {
			return fmt.Errorf("decode %s: %w", s.entity, err)
		}
		if f.retain != nil && f.retain(in) {
			continue
		}
		for _, key := range f.wire {
			delete(in, key)
		}
	}
	if s.extra != nil && len(in) > 0 {
		*s.extra(t) = in
	}
	return nil
}

func (s *schema[T]) decodeList(data []byte) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", s.entity, err)
	}
	out := make([]T, len(items))
	for i, raw := range items {
		if err := s.decode(raw, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *schema[T]) encode(t *T) map[string]any {
	out := map[string]any{}
	if s.extra != nil {
		for k, v := range *s.extra(t) {
			out[k] = v
		}
	}
	for _, f := range s.fields {
		f.encode(t, out)
	}
	return out
}

// canonicalNames lists the canonical field names the table covers.
func (s *schema[T]) canonicalNames() []string {
	names := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		names = append(names, f.canonical)
	}
	return names
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// mapped is a plain one-to-one field.
func mapped[T, V any](wire, canonical string, ref func(*T) *V) field[T] {
	return field[T]{
		wire:      []string{wire},
		canonical: canonical,
		decode: func(t *T, in map[string]json.RawMessage) error {
			raw, ok := in[wire]
			if !ok || isNull(raw) {
				return nil
			}
			if err := json.Unmarshal(raw, ref(t)); err != nil {
				return fmt.Errorf("%s: %w", wire, err)
			}
			return nil
		},
		encode: func(t *T, out map[string]any) {
			out[wire] = *ref(t)
		},
	}
}

// optional is a pointer field sent only when set.
func optional[T, V any](wire, canonical string, ref func(*T) **V) field[T] {
	return field[T]{
		wire:      []string{wire},
		canonical: canonical,
		decode: func(t *T, in map[string]json.RawMessage) error {
			raw, ok := in[wire]
			if !ok || isNull(raw) {
				return nil
			}
			v := new(V)
			if err := json.Unmarshal(raw, v); err != nil {
				return fmt.Errorf("%s: %w", wire, err)
			}
			*ref(t) = v
			return nil
		},
		encode: func(t *T, out map[string]any) {
			if v := *ref(t); v != nil {
				out[wire] = *v
			}
		},
	}
}

// list is a slice field sent only when non-nil.
func list[T, V any](wire, canonical string, ref func(*T) *[]V) field[T] {
	f := mapped(wire, canonical, ref)
	f.encode = func(t *T, out map[string]any) {
		if v := *ref(t); v != nil {
			out[wire] = v
		}
	}
	return f
}

// nested decodes an embedded object with its own table.
func nested[T, V any](wire, canonical string, sch *schema[V], ref func(*T) *V) field[T] {
	return field[T]{
		wire:      []string{wire},
		canonical: canonical,
		decode: func(t *T, in map[string]json.RawMessage) error {
			raw, ok := in[wire]
			if !ok || isNull(raw) {
				return nil
			}
			return sch.decode(raw, ref(t))
		},
		encode: func(t *T, out map[string]any) {
			out[wire] = sch.encode(ref(t))
		},
	}
}

// nestedList decodes an array of embedded objects.
func nestedList[T, V any](wire, canonical string, sch *schema[V], ref func(*T) *[]V) field[T] {
	return field[T]{
		wire:      []string{wire},
		canonical: canonical,
		decode: func(t *T, in map[string]json.RawMessage) error {
			raw, ok := in[wire]
			if !ok || isNull(raw) {
				return nil
			}
			items, err := sch.decodeList(raw)
			if err != nil {
				return err
			}
			*ref(t) = items
			return nil
		},
		encode: func(t *T, out map[string]any) {
			items := *ref(t)
			encoded := make([]map[string]any, 0, len(items))
			for i := range items {
				encoded = append(encoded, sch.encode(&items[i]))
			}
			out[wire] = encoded
		},
	}
}

func readCoordinates(in map[string]json.RawMessage) (lat, lng *float64, err error) {
	for key, dst := range map[string]**float64{"latitude": &lat, "longitude": &lng} {
		raw, ok := in[key]
		if !ok || isNull(raw) {
			continue
		}
		v := new(float64)
		if err := json.Unmarshal(raw, v); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", key, err)
		}
		*dst = v
	}
	return lat, lng, nil
}

// halfPair reports whether exactly one coordinate of the pair is set.
func halfPair(in map[string]json.RawMessage) bool {
	lat, hasLat := in["latitude"]
	lng, hasLng := in["longitude"]
	return (hasLat && !isNull(lat)) != (hasLng && !isNull(lng))
}

// optionalLocation maps the latitude/longitude wire pair onto a single
// optional location. A half-present pair decodes as no location and its
// raw keys stay unclaimed, so they survive in the extra map.
func optionalLocation[T any](ref func(*T) **catalog.Location) field[T] {
	return field[T]{
		wire:      []string{"latitude", "longitude"},
		canonical: "location",
		decode: func(t *T, in map[string]json.RawMessage) error {
			lat, lng, err := readCoordinates(in)
			if err != nil {
				return err
			}
			*ref(t) = catalog.NewLocation(lat, lng)
			return nil
		},
		encode: func(t *T, out map[string]any) {
			if loc := *ref(t); loc != nil {
				out["latitude"] = loc.Lat
				out["longitude"] = loc.Lng
				return
			}
			for _, key := range []string{"latitude", "longitude"} {
				if _, ok := out[key]; !ok {
					out[key] = nil
				}
			}
		},
		retain: halfPair,
	}
}

// patchLocation sends the pair only when the patch sets a location.
func patchLocation[T any](ref func(*T) **catalog.Location) field[T] {
	f := optionalLocation(ref)
	f.encode = func(t *T, out map[string]any) {
		if loc := *ref(t); loc != nil {
			out["latitude"] = loc.Lat
			out["longitude"] = loc.Lng
		}
	}
	return f
}

// location maps a pair that is always present. A half pair is kept raw
// like in optionalLocation and re-encoded as received.
func location[T any](ref func(*T) *catalog.Location) field[T] {
	return field[T]{
		wire:      []string{"latitude", "longitude"},
		canonical: "location",
		decode: func(t *T, in map[string]json.RawMessage) error {
			lat, lng, err := readCoordinates(in)
			if err != nil {
				return err
			}
			if loc := catalog.NewLocation(lat, lng); loc != nil {
				*ref(t) = *loc
			}
			return nil
		},
		encode: func(t *T, out map[string]any) {
			loc := ref(t)
			_, hasLat := out["latitude"]
			_, hasLng := out["longitude"]
			if (hasLat || hasLng) && *loc == (catalog.Location{}) {
				return
			}
			out["latitude"] = loc.Lat
			out["longitude"] = loc.Lng
		},
		retain: halfPair,
	}
}
