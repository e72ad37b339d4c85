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

import (
	"sync"

	"github.com/zeebo/xxh3"
)

const defaultShards = 64

type shard[V any] struct {
	mu   sync.RWMutex
	data map[string]V
}

// ShardedMap is a string keyed map split into independently locked shards.
// Keys are spread with xxh3 so writers on different keys rarely contend.
type ShardedMap[V any] struct {
	shards []*shard[V]
	mask   uint64
}

// NewShardedMap creates a map with the given number of shards rounded up to a
// power of two. A non-positive count uses the default.
func NewShardedMap[V any](shards int) *ShardedMap[V] {
	if shards <= 0 {
		shards = defaultShards
	}

	size := 1
	for size < shards {
		size <<= 1
	}

	m := &ShardedMap[V]{
		shards: make([]*shard[V], size),
		mask:   uint64(size - 1),
	}
	for i := range m.shards {
		m.shards[i] = &shard[V]{data: make(map[string]V)}
	}
	return m
}

func (m *ShardedMap[V]) shardFor(key string) *shard[V] {
	return m.shards[xxh3.HashString(key)&m.mask]
}

// Get returns the value stored under key
func (m *ShardedMap[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	v, ok := s.data[key]
	s.mu.RUnlock()
	return v, ok
}

// SetIfAbsent stores v under key unless the key is taken.
// It reports whether v was stored.
func (m *ShardedMap[V]) SetIfAbsent(key string, v V) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false
	}
	s.data[key] = v
	return true
}

// Set stores v under key
func (m *ShardedMap[V]) Set(key string, v V) {
	s := m.shardFor(key)
	s.mu.Lock()
	s.data[key] = v
	s.mu.Unlock()
}

// Delete removes key
func (m *ShardedMap[V]) Delete(key string) {
	s := m.shardFor(key)
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

// Len returns the number of entries. It is not a consistent count under
// concurrent writes; use Snapshot for that.
func (m *ShardedMap[V]) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.data)
		s.mu.RUnlock()
	}
	return total
}

// Range walks the shards one at a time until f returns false.
// f must not call back into the map.
func (m *ShardedMap[V]) Range(f func(string, V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.data {
			if !f(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Snapshot copies every value while holding the read lock of all shards at
// once, so the result is a single point in time: no concurrent insert or
// delete is half visible in it.
func (m *ShardedMap[V]) Snapshot() []V {
	for _, s := range m.shards {
		s.mu.RLock()
	}

	total := 0
	for _, s := range m.shards {
		total += len(s.data)
	}

	out := make([]V, 0, total)
	for _, s := range m.shards {
		for _, v := range s.data {
			out = append(out, v)
		}
	}

	for _, s := range m.shards {
		s.mu.RUnlock()
	}
	return out
}
