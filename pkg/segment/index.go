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
	"encoding/binary"
	"fmt"
)

// Index sidecar layout: IDX magic, version, entry count, interval,
// reserved, then count fixed-width offset/position pairs. All integers
// big-endian.
const (
	indexMagic     = "IDX\x00"
	indexVersion   = 1
	indexHeaderLen = 16
	indexEntryLen  = 12
)

// IndexEntry maps a message offset to its byte position in the segment.
type IndexEntry struct {
	Offset   int64
	Position int32
}

// indexBuilder collects sparse entries while a segment body is written.
// The first batch always gets an entry; later batches only once the
// interval's worth of messages has passed.
type indexBuilder struct {
	interval  int32
	sinceLast int32
	entries   []IndexEntry
}

func newIndexBuilder(interval int32) *indexBuilder {
	if interval <= 0 {
		interval = 1
	}
	return &indexBuilder{interval: interval}
}

func (b *indexBuilder) maybeAdd(offset int64, position int32, batchMessages int32) {
	if len(b.entries) == 0 || b.sinceLast >= b.interval {
		b.entries = append(b.entries, IndexEntry{Offset: offset, Position: position})
		b.sinceLast = 0
	}
	b.sinceLast += batchMessages
}

func (b *indexBuilder) buildBytes() ([]byte, error) {
	out := make([]byte, indexHeaderLen+len(b.entries)*indexEntryLen)
	copy(out, indexMagic)
	binary.BigEndian.PutUint16(out[4:6], indexVersion)
	binary.BigEndian.PutUint32(out[6:10], uint32(len(b.entries)))
	binary.BigEndian.PutUint32(out[10:14], uint32(b.interval))
	// out[14:16] reserved, zero.
	pos := indexHeaderLen
	for _, entry := range b.entries {
		binary.BigEndian.PutUint64(out[pos:pos+8], uint64(entry.Offset))
		binary.BigEndian.PutUint32(out[pos+8:pos+12], uint32(entry.Position))
		pos += indexEntryLen
	}
	return out, nil
}

// ParseIndex validates and returns the entries of a serialized index.
func ParseIndex(data []byte) ([]IndexEntry, error) {
	if len(data) < indexHeaderLen {
		return nil, fmt.Errorf("index too small")
	}
	if string(data[:4]) != indexMagic {
		return nil, fmt.Errorf("invalid index magic")
	}
	if version := binary.BigEndian.Uint16(data[4:6]); version != indexVersion {
		return nil, fmt.Errorf("unsupported index version %d", version)
	}
	count := int(int32(binary.BigEndian.Uint32(data[6:10])))
	if count < 0 {
		return nil, fmt.Errorf("invalid index entry count %d", count)
	}
	if want := indexHeaderLen + count*indexEntryLen; len(data) < want {
		return nil, fmt.Errorf("index truncated: %d bytes, need %d for %d entries", len(data), want, count)
	}
	entries := make([]IndexEntry, count)
	for i := range entries {
		pos := indexHeaderLen + i*indexEntryLen
		entries[i] = IndexEntry{
			Offset:   int64(binary.BigEndian.Uint64(data[pos : pos+8])),
			Position: int32(binary.BigEndian.Uint32(data[pos+8 : pos+12])),
		}
	}
	return entries, nil
}
