// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package nlattr

import (
	"cmp"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"go.nlgen.org/nlgen"
)

// A FieldDecoder stores the decoded form of one attribute into obj.
type FieldDecoder func(data []byte, obj nlgen.Object) error

// GetObject decodes an attribute set. Attributes whose type has no decoder
// are skipped.
func GetObject(buf []byte, fields map[uint16]FieldDecoder) (nlgen.Object, error) {
	obj := nlgen.Object{}
	err := Walk(buf, func(attr Attr) error {
		decode, ok := fields[attr.Type]
		if !ok {
			return nil
		}
		if attr.NetByteOrder {
			return ErrNetByteOrder
		}
		return decode(attr.Data, obj)
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// A FieldEncoder writes the attributes for one named field.
type FieldEncoder struct {
	Name   string
	Encode func(w *Writer, v any) error
}

// PutObject encodes the non-nil fields of obj in the order of fields. Keys
// of obj that no encoder claims are rejected.
func PutObject(w *Writer, obj nlgen.Object, fields []FieldEncoder) error {
	for _, key := range slices.Sorted(maps.Keys(obj)) {
		if obj[key] == nil {
			continue
		}
		known := slices.ContainsFunc(fields, func(f FieldEncoder) bool {
			return f.Name == key
		})
		if !known {
			return fmt.Errorf("%w %q", ErrUnknownKey, key)
		}
	}
	for _, field := range fields {
		v := obj[field.Name]
		if v == nil {
			continue
		}
		if err := field.Encode(w, v); err != nil {
			return err
		}
	}
	return nil
}

// GetArray decodes a nested array, whose element attributes are numbered
// sequentially from 1 (or from 0 when zero is set).
func GetArray(buf []byte, zero bool, decode func([]byte) (any, error)) ([]any, error) {
	start := 1
	if zero {
		start = 0
	}
	items := []any{}
	err := Walk(buf, func(attr Attr) error {
		if want := start + len(items); int(attr.Type) != want {
			return errLength(ErrNonSequential, want, int(attr.Type))
		}
		if attr.NetByteOrder {
			return ErrNetByteOrder
		}
		item, err := decode(attr.Data)
		if err != nil {
			return fmt.Errorf("[%d]: %w", len(items), err)
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// PutArray encodes the elements of a slice value as sequentially numbered
// attributes.
func PutArray(w *Writer, v any, zero bool, encode func(any) ([]byte, error)) error {
	items, ok := Items(v)
	if !ok {
		return errType("array", v)
	}
	start := 1
	if zero {
		start = 0
	}
	for ii, item := range items {
		payload, err := encode(item)
		if err != nil {
			return fmt.Errorf("[%d]: %w", ii, err)
		}
		if start+ii > TypeMask {
			return errLength(ErrAttrTypeRange, TypeMask, start+ii)
		}
		if err := w.Put(uint16(start+ii), payload); err != nil {
			return err
		}
	}
	return nil
}

// GetMap decodes a nested map keyed by attribute type.
func GetMap(buf []byte, decode func([]byte) (any, error)) (map[uint16]any, error) {
	entries := map[uint16]any{}
	err := Walk(buf, func(attr Attr) error {
		if attr.NetByteOrder {
			return ErrNetByteOrder
		}
		value, err := decode(attr.Data)
		if err != nil {
			return fmt.Errorf("[%d]: %w", attr.Type, err)
		}
		entries[attr.Type] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// PutMap encodes a map with integer keys, in ascending key order.
func PutMap(w *Writer, v any, encode func(any) ([]byte, error)) error {
	entries, err := mapEntries(v)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		payload, err := encode(entry.value)
		if err != nil {
			return fmt.Errorf("[%d]: %w", entry.key, err)
		}
		if err := w.Put(entry.key, payload); err != nil {
			return err
		}
	}
	return nil
}

// GetEnum returns the declared name for an integer value, or the value
// itself when no name matches.
func GetEnum(names map[int64]string, raw any) any {
	if key, ok := Int64(raw); ok {
		if name, ok := names[key]; ok {
			return name
		}
	}
	return raw
}

// PutEnum resolves an enum value name to its integer. Integer values pass
// through unchanged.
func PutEnum(values map[string]int64, v any) (any, error) {
	name, ok := v.(string)
	if !ok {
		return v, nil
	}
	value, ok := values[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownName, name)
	}
	return value, nil
}

// Items returns the elements of a slice or array value.
func Items(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for ii := range items {
		items[ii] = rv.Index(ii).Interface()
	}
	return items, true
}

type mapEntry struct {
	key   uint16
	value any
}

func mapEntries(v any) ([]mapEntry, error) {
	var entries []mapEntry
	if m, ok := v.(map[uint16]any); ok {
		for key, value := range m {
			entries = append(entries, mapEntry{key, value})
		}
	} else {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Map {
			return nil, errType("map", v)
		}
		iter := rv.MapRange()
		for iter.Next() {
			key, ok := Int64(iter.Key().Interface())
			if !ok {
				return nil, errType("integer map key", iter.Key().Interface())
			}
			if key < 0 || key > TypeMask {
				return nil, errLength(ErrAttrTypeRange, TypeMask, int(key))
			}
			entries = append(entries, mapEntry{uint16(key), iter.Value().Interface()})
		}
	}
	slices.SortFunc(entries, func(a, b mapEntry) int {
		return cmp.Compare(a.key, b.key)
	})
	return entries, nil
}
