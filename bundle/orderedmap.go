// Copyright 2015 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

package bundle

import "gopkg.in/yaml.v2"

// OrderedMap is a string-keyed map that preserves insertion order.
// Determinism of generated change ids depends on iterating services
// and machines in the order the bundle declared them, so every
// mapping in the data model is one of these rather than a plain Go
// map.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap returns an empty ordered map.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Set inserts or updates the value for key, preserving the position
// of an existing key and appending a new one at the end.
func (m *OrderedMap[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the map's keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range calls f for each entry in insertion order, stopping early if
// f returns false.
func (m *OrderedMap[V]) Range(f func(key string, value V) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !f(k, m.values[k]) {
			return
		}
	}
}

// UnmarshalYAML implements yaml.Unmarshaler against yaml.v2's
// order-preserving yaml.MapSlice, so bundle fixtures written as
// literal YAML in tests decode with their declaration order intact.
// Validate and the change-set generator never decode YAML; this is
// used by ReadBundleData (and so by the CLI wrapper) and by tests that
// build BundleData values from readable YAML text.
func (m *OrderedMap[V]) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw yaml.MapSlice
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*m = OrderedMap[V]{values: make(map[string]V, len(raw))}
	for _, item := range raw {
		key, ok := item.Key.(string)
		if !ok {
			continue
		}
		var value V
		if item.Value != nil {
			if err := reencode(item.Value, &value); err != nil {
				return err
			}
		}
		m.Set(key, value)
	}
	return nil
}
