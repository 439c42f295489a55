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
	"container/list"
	"fmt"
	"sync"
)

// Cache is an LRU over downloaded segment bytes keyed by
// topic/partition/baseOffset, bounded by total byte size.
type Cache struct {
	mu       sync.Mutex
	capacity int
	size     int
	ll       *list.List
	items    map[string]*list.Element
}

type cacheEntry struct {
	key  string
	data []byte
}

// NewCache creates a cache with capacity in bytes.
func NewCache(capacityBytes int) *Cache {
	if capacityBytes <= 0 {
		capacityBytes = 1
	}
	return &Cache{
		capacity: capacityBytes,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

func cacheKey(topic string, partition int32, baseOffset int64) string {
	return fmt.Sprintf("%s:%d:%d", topic, partition, baseOffset)
}

// Get returns cached segment bytes if present.
func (c *Cache) Get(topic string, partition int32, baseOffset int64) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[cacheKey(topic, partition, baseOffset)]; ok {
		c.ll.MoveToFront(elem)
		cacheHits.WithLabelValues("hit").Inc()
		return elem.Value.(*cacheEntry).data, true
	}
	cacheHits.WithLabelValues("miss").Inc()
	return nil, false
}

// Set adds or updates a cache entry, evicting from the tail as needed.
func (c *Cache) Set(topic string, partition int32, baseOffset int64, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(topic, partition, baseOffset)
	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		c.size -= len(entry.data)
		entry.data = append(entry.data[:0], data...)
		c.size += len(entry.data)
		c.ll.MoveToFront(elem)
		c.evictIfNeeded()
		return
	}
	entry := &cacheEntry{key: key, data: append([]byte(nil), data...)}
	elem := c.ll.PushFront(entry)
	c.items[key] = elem
	c.size += len(entry.data)
	c.evictIfNeeded()
}

func (c *Cache) evictIfNeeded() {
	for c.size > c.capacity && c.ll.Len() > 0 {
		elem := c.ll.Back()
		entry := elem.Value.(*cacheEntry)
		delete(c.items, entry.key)
		c.ll.Remove(elem)
		c.size -= len(entry.data)
	}
}
