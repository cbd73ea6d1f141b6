// Package xsync contains synchronization helpers.
package xsync

import "sync"

// Memo caches results of a pure computation by key.
//
// Value for the key is computed once, concurrent callers of the same key wait
// for the first one. Different keys are computed concurrently.
type Memo[K comparable, V any] struct {
	mux     sync.Mutex
	entries map[K]func() V
}

// Do returns cached value for given key or calls do to compute it.
func (m *Memo[K, V]) Do(key K, do func() V) (v V, cached bool) {
	m.mux.Lock()
	get, cached := m.entries[key]
	if !cached {
		if m.entries == nil {
			m.entries = map[K]func() V{}
		}
		get = sync.OnceValue(do)
		m.entries[key] = get
	}
	m.mux.Unlock()

	return get(), cached
}

// Len returns number of cached keys.
func (m *Memo[K, V]) Len() int {
	m.mux.Lock()
	defer m.mux.Unlock()
	return len(m.entries)
}
