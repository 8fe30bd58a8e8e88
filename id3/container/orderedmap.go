// Package container provides the small set of ordered, generic collections
// the ID3v2 codec needs: a K -> V mapping that iterates in insertion order.
// A plain Go map does not preserve insertion order; the schema registry
// (id3/id3v2) keeps its identifier -> schema table in an OrderedMap. Its
// resolution order (exact matches before the "T"/"W" wildcards and the "?"
// fallback) comes from the explicit lookups in resolveSchema, not from the
// map's order.
package container

// OrderedMap is a mapping from K to V that remembers the order keys were
// first inserted in. Re-inserting an existing key updates its value without
// moving it.
type OrderedMap[K comparable, V any] struct {
	index map[K]int
	keys  []K
	vals  []V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{index: make(map[K]int)}
}

// Set inserts or updates the value for key.
func (m *OrderedMap[K, V]) Set(key K, val V) {
	if i, ok := m.index[key]; ok {
		m.vals[i] = val
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, val)
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap[K, V]) Get(key K) (V, bool) {
	if i, ok := m.index[key]; ok {
		return m.vals[i], true
	}
	var zero V
	return zero, false
}

// Delete removes key, if present.
func (m *OrderedMap[K, V]) Delete(key K) {
	i, ok := m.index[key]
	if !ok {
		return
	}
	delete(m.index, key)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	for k, idx := range m.index {
		if idx > i {
			m.index[k] = idx - 1
		}
	}
}

// Len returns the number of entries.
func (m *OrderedMap[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order. The caller must not mutate it.
func (m *OrderedMap[K, V]) Keys() []K {
	return m.keys
}

// Each calls fn for every entry in insertion order.
func (m *OrderedMap[K, V]) Each(fn func(key K, val V)) {
	for i, k := range m.keys {
		fn(k, m.vals[i])
	}
}
