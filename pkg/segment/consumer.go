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
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/novatechflow/kafquery/pkg/consumer"
)

// StoreFactory creates consumers that read Kafscale segments straight
// from the object store, bypassing the broker fetch path.
type StoreFactory struct {
	Store     ObjectStore
	Namespace string
	// Cache, when set, holds full segment bytes. Without a cache the
	// consumer uses the sparse index for ranged reads instead.
	Cache *Cache
}

func (f *StoreFactory) Create(ctx context.Context) (consumer.Consumer, error) {
	if f.Store == nil {
		return nil, fmt.Errorf("segment consumer: object store is required")
	}
	return &storeConsumer{
		store:     f.Store,
		namespace: f.Namespace,
		cache:     f.Cache,
	}, nil
}

type storeSegment struct {
	baseOffset int64
	key        string
	size       int64
}

type storeConsumer struct {
	store     ObjectStore
	namespace string
	cache     *Cache

	topic     string
	partition int32
	position  int64

	segments []storeSegment
	buffered []consumer.Message
	closed   bool
}

func (c *storeConsumer) Assign(topic string, partition int32) {
	c.topic = topic
	c.partition = partition
}

func (c *storeConsumer) Seek(offset int64) {
	c.position = offset
	c.buffered = nil
}

func (c *storeConsumer) Position() int64 {
	return c.position
}

func (c *storeConsumer) Poll(ctx context.Context, timeout time.Duration) ([]consumer.Message, error) {
	if c.closed {
		return nil, fmt.Errorf("segment consumer: poll after close")
	}
	if c.topic == "" {
		return nil, fmt.Errorf("segment consumer: no partition assigned")
	}

	if len(c.buffered) == 0 {
		if err := c.fill(ctx); err != nil {
			return nil, err
		}
	}
	if len(c.buffered) == 0 {
		// Nothing covers the position yet. Block out the poll timeout
		// like a broker fetch would before reporting an empty batch.
		select {
		case <-ctx.Done():
		case <-time.After(timeout):
		}
		return nil, nil
	}

	batch := c.buffered
	c.buffered = nil
	c.position = batch[len(batch)-1].Offset + 1
	return batch, nil
}

func (c *storeConsumer) Close() error {
	c.closed = true
	c.buffered = nil
	return nil
}

// fill decodes the segment covering the current position into the
// buffer, walking forward across segments when the position falls in a
// gap.
func (c *storeConsumer) fill(ctx context.Context) error {
	if err := c.refreshSegments(ctx); err != nil {
		return err
	}
	start := c.candidateIndex()
	for i := start; i < len(c.segments); i++ {
		messages, err := c.readSegment(ctx, c.segments[i])
		if err != nil {
			return err
		}
		pending := messagesFrom(messages, c.position)
		if len(pending) > 0 {
			c.buffered = pending
			return nil
		}
	}
	return nil
}

// candidateIndex picks the segment with the greatest base offset not
// beyond the position, falling back to the earliest segment.
func (c *storeConsumer) candidateIndex() int {
	idx := sort.Search(len(c.segments), func(i int) bool {
		return c.segments[i].baseOffset > c.position
	})
	if idx > 0 {
		return idx - 1
	}
	return 0
}

func (c *storeConsumer) refreshSegments(ctx context.Context) error {
	objects, err := c.store.List(ctx, PartitionPrefix(c.namespace, c.topic, c.partition))
	if err != nil {
		return fmt.Errorf("segment consumer: list %s[%d]: %w", c.topic, c.partition, err)
	}
	segments := make([]storeSegment, 0, len(objects))
	for _, obj := range objects {
		base, ok := ParseBaseOffset(obj.Key)
		if !ok {
			continue
		}
		segments = append(segments, storeSegment{baseOffset: base, key: obj.Key, size: obj.Size})
	}
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].baseOffset < segments[j].baseOffset
	})
	c.segments = segments
	return nil
}

func (c *storeConsumer) readSegment(ctx context.Context, seg storeSegment) ([]consumer.Message, error) {
	if c.cache != nil {
		return c.readCachedSegment(ctx, seg)
	}
	return c.readIndexedSegment(ctx, seg)
}

// readCachedSegment downloads the full segment, verifies it and keeps
// the bytes for subsequent polls against the same segment.
func (c *storeConsumer) readCachedSegment(ctx context.Context, seg storeSegment) ([]consumer.Message, error) {
	data, ok := c.cache.Get(c.topic, c.partition, seg.baseOffset)
	if !ok {
		var err error
		data, err = c.store.GetSegment(ctx, seg.key, nil)
		if err != nil {
			return nil, err
		}
		c.cache.Set(c.topic, c.partition, seg.baseOffset, data)
	}
	return ParseSegment(data, c.partition)
}

// readIndexedSegment uses the sparse index to skip ahead of the
// position with a ranged read of the segment body. A segment without
// its index sidecar is still readable via a full download.
func (c *storeConsumer) readIndexedSegment(ctx context.Context, seg storeSegment) ([]consumer.Message, error) {
	indexKey := IndexKey(c.namespace, c.topic, c.partition, seg.baseOffset)
	indexBytes, err := c.store.GetIndex(ctx, indexKey)
	if errors.Is(err, ErrObjectNotFound) {
		data, getErr := c.store.GetSegment(ctx, seg.key, nil)
		if getErr != nil {
			return nil, getErr
		}
		return ParseSegment(data, c.partition)
	}
	if err != nil {
		return nil, err
	}
	entries, err := ParseIndex(indexBytes)
	if err != nil {
		return nil, fmt.Errorf("segment consumer: index %s: %w", indexKey, err)
	}

	start := int64(segmentHeaderLen)
	for _, entry := range entries {
		if entry.Offset > c.position {
			break
		}
		start = int64(entry.Position)
	}
	bodyEnd := seg.size - segmentFooterLen - 1
	if bodyEnd < start {
		return nil, nil
	}
	body, err := c.store.GetSegment(ctx, seg.key, &ByteRange{Start: start, End: bodyEnd})
	if err != nil {
		return nil, err
	}
	return decodeRecordBatches(body, c.partition)
}

func messagesFrom(messages []consumer.Message, position int64) []consumer.Message {
	idx := sort.Search(len(messages), func(i int) bool {
		return messages[i].Offset >= position
	})
	return messages[idx:]
}
