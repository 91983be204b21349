package maps

// Map is a map remembering the order its keys are set.
type Map[K comparable, V any] interface {
	// Set a value for the key.
	//
	// Setting a value to an existing key keeps the position of the key.
	Set(K, V)

	Get(K) (V, bool)

	// Keys in insertion order.
	Keys() []K

	// Values in insertion order of their keys.
	Values() []V

	Delete(K)
	Len() int

	// Iter yields pairs in insertion order.
	Iter() func(yield func(K, V) bool)
}

type orderedMap[K comparable, V any] struct {
	keys []K
	m    map[K]V
}

// NewOrdered creates an empty ordered map.
func NewOrdered[K comparable, V any]() Map[K, V] {
	return &orderedMap[K, V]{keys: []K{}, m: map[K]V{}}
}

func (m *orderedMap[K, V]) Set(k K, v V) {
	if _, ok := m.m[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.m[k] = v
}

func (m *orderedMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.m[k]
	return v, ok
}

func (m *orderedMap[K, V]) Keys() []K {
	keys := make([]K, len(m.keys))
	copy(keys, m.keys)
	return keys
}

func (m *orderedMap[K, V]) Values() []V {
	values := make([]V, len(m.keys))
	for i, k := range m.keys {
		values[i] = m.m[k]
	}
	return values
}

func (m *orderedMap[K, V]) Delete(k K) {
	if _, ok := m.m[k]; !ok {
		return
	}
	delete(m.m, k)
	for i, key := range m.keys {
		if key == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *orderedMap[K, V]) Len() int {
	return len(m.keys)
}

func (m *orderedMap[K, V]) Iter() func(yield func(k K, v V) bool) {
	return func(yield func(k K, v V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.m[k]) {
				break
			}
		}
	}
}
