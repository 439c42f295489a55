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
	"bytes"
	"testing"
)

func TestCacheHitAndMiss(t *testing.T) {
	cache := NewCache(64)
	if _, ok := cache.Get("t", 0, 0); ok {
		t.Fatalf("expected miss on empty cache")
	}
	cache.Set("t", 0, 0, []byte("segment"))
	data, ok := cache.Get("t", 0, 0)
	if !ok || !bytes.Equal(data, []byte("segment")) {
		t.Fatalf("expected hit, got ok=%v data=%q", ok, data)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCache(20)
	cache.Set("t", 0, 0, make([]byte, 10))
	cache.Set("t", 0, 10, make([]byte, 10))

	// Touch the first entry so the second becomes eviction candidate.
	if _, ok := cache.Get("t", 0, 0); !ok {
		t.Fatalf("expected first entry present")
	}
	cache.Set("t", 0, 20, make([]byte, 10))

	if _, ok := cache.Get("t", 0, 10); ok {
		t.Fatalf("expected least recently used entry evicted")
	}
	if _, ok := cache.Get("t", 0, 0); !ok {
		t.Fatalf("expected touched entry kept")
	}
	if _, ok := cache.Get("t", 0, 20); !ok {
		t.Fatalf("expected newest entry kept")
	}
}

func TestCacheUpdateReplacesBytes(t *testing.T) {
	cache := NewCache(64)
	cache.Set("t", 1, 0, []byte("old"))
	cache.Set("t", 1, 0, []byte("newer"))
	data, ok := cache.Get("t", 1, 0)
	if !ok || string(data) != "newer" {
		t.Fatalf("expected updated bytes, got %q ok=%v", data, ok)
	}
}

func TestCacheCopiesOnInsert(t *testing.T) {
	cache := NewCache(64)
	src := []byte("abc")
	cache.Set("t", 0, 0, src)
	src[0] = 'z'
	data, _ := cache.Get("t", 0, 0)
	if string(data) != "abc" {
		t.Fatalf("cache must not alias caller bytes, got %q", data)
	}
}
