// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package xsync

import "sync"

// Map is a generic map guarded by a read-write mutex.
type Map[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// NewMap creates an empty Map
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{data: make(map[K]V)}
}

// Set stores v under k
func (m *Map[K, V]) Set(k K, v V) {
	m.mu.Lock()
	m.data[k] = v
	m.mu.Unlock()
}

// Get returns the value stored under k
func (m *Map[K, V]) Get(k K) (V, bool) {
	m.mu.RLock()
	v, ok := m.data[k]
	m.mu.RUnlock()
	return v, ok
}

// GetOrSet returns the existing value for k, or stores and returns the one
// built by create. The boolean is true when the value already existed.
func (m *Map[K, V]) GetOrSet(k K, create func() V) (V, bool) {
	if v, ok := m.Get(k); ok {
		return v, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[k]; ok {
		return v, true
	}
	v := create()
	m.data[k] = v
	return v, false
}

// Delete removes k
func (m *Map[K, V]) Delete(k K) {
	m.mu.Lock()
	delete(m.data, k)
	m.mu.Unlock()
}

// Len returns the number of entries
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Range calls f for every entry until f returns false.
// f must not call back into the map.
func (m *Map[K, V]) Range(f func(K, V) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, v := range m.data {
		if !f(k, v) {
			return
		}
	}
}

// Values returns a copy of the stored values
func (m *Map[K, V]) Values() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]V, 0, len(m.data))
	for _, v := range m.data {
		out = append(out, v)
	}
	return out
}

// Keys returns a copy of the stored keys
func (m *Map[K, V]) Keys() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]K, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	return out
}

// Reset removes every entry
func (m *Map[K, V]) Reset() {
	m.mu.Lock()
	m.data = make(map[K]V)
	m.mu.Unlock()
}
