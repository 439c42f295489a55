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

package consumer

import (
	"context"
	"time"
)

// Header is one entry of a message header list. Keys may repeat.
type Header struct {
	Key   string
	Value []byte
}

// Message is a raw log message as delivered by a backend. A nil Key or
// Value means the payload is absent; a nil Value marks a tombstone.
type Message struct {
	Offset      int64
	Partition   int32
	TimestampMs int64
	Key         []byte
	Value       []byte
	Headers     []Header
}

// KeySize returns the serialized key size, 0 when absent.
func (m Message) KeySize() int64 {
	return int64(len(m.Key))
}

// ValueSize returns the serialized value size, 0 when absent.
func (m Message) ValueSize() int64 {
	return int64(len(m.Value))
}

// Consumer reads one topic-partition. Implementations are not safe for
// concurrent use; each instance belongs to exactly one reader.
type Consumer interface {
	// Assign binds the consumer to a single topic-partition. Must be
	// called once before Seek or Poll.
	Assign(topic string, partition int32)
	// Seek positions the consumer so the next Poll starts at offset.
	// Seeking discards any internal fetch state from earlier polls.
	Seek(offset int64)
	// Position reports the offset the next Poll will read from.
	Position() int64
	// Poll fetches the next batch, blocking up to timeout. An empty
	// batch is not an error; callers poll again.
	Poll(ctx context.Context, timeout time.Duration) ([]Message, error)
	// Close releases the underlying connection. Idempotent.
	Close() error
}

// Factory creates consumers bound to one backend.
type Factory interface {
	Create(ctx context.Context) (Consumer, error)
}
