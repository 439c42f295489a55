// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package segment

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore is an in-memory ObjectStore for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	segments map[string][]byte
	indexes  map[string][]byte
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		segments: make(map[string][]byte),
		indexes:  make(map[string][]byte),
	}
}

func (m *MemoryStore) PutSegment(ctx context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments[key] = append([]byte(nil), body...)
	return nil
}

func (m *MemoryStore) PutIndex(ctx context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexes[key] = append([]byte(nil), body...)
	return nil
}

func (m *MemoryStore) GetSegment(ctx context.Context, key string, rng *ByteRange) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.segments[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	if rng == nil {
		return append([]byte(nil), data...), nil
	}
	start := rng.Start
	end := rng.End
	if start < 0 {
		start = 0
	}
	if end >= int64(len(data)) {
		end = int64(len(data)) - 1
	}
	if start > end || start >= int64(len(data)) {
		return nil, fmt.Errorf("segment %s range %d-%d invalid", key, rng.Start, rng.End)
	}
	return append([]byte(nil), data[start:end+1]...), nil
}

func (m *MemoryStore) GetIndex(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.indexes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) List(ctx context.Context, prefix string) ([]Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Object, 0)
	for key, data := range m.segments {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, Object{Key: key, Size: int64(len(data))})
	}
	return out, nil
}
