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
	"path"
	"strconv"
	"strings"
)

// ErrObjectNotFound reports a missing segment or index object.
var ErrObjectNotFound = errors.New("object not found")

// ByteRange is an inclusive byte range for partial object reads.
type ByteRange struct {
	Start int64
	End   int64
}

func (br *ByteRange) headerValue() *string {
	if br == nil {
		return nil
	}
	val := fmt.Sprintf("bytes=%d-%d", br.Start, br.End)
	return &val
}

// ObjectStore is the abstraction the segment consumer reads through.
// Uploads exist for the write path used by tests and backfill tooling.
type ObjectStore interface {
	PutSegment(ctx context.Context, key string, body []byte) error
	PutIndex(ctx context.Context, key string, body []byte) error
	GetSegment(ctx context.Context, key string, rng *ByteRange) ([]byte, error)
	GetIndex(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]Object, error)
}

// Object describes one stored object.
type Object struct {
	Key  string
	Size int64
}

// SegmentKey builds the canonical object key for a segment file.
func SegmentKey(namespace, topic string, partition int32, baseOffset int64) string {
	return path.Join(namespace, topic, fmt.Sprintf("%d", partition), fmt.Sprintf("segment-%020d.kfs", baseOffset))
}

// IndexKey builds the canonical object key for a segment's sparse index.
func IndexKey(namespace, topic string, partition int32, baseOffset int64) string {
	return path.Join(namespace, topic, fmt.Sprintf("%d", partition), fmt.Sprintf("segment-%020d.index", baseOffset))
}

// PartitionPrefix is the listing prefix covering one partition's segments.
func PartitionPrefix(namespace, topic string, partition int32) string {
	return path.Join(namespace, topic, fmt.Sprintf("%d", partition)) + "/"
}

// ParseBaseOffset extracts the base offset from a segment object key.
func ParseBaseOffset(key string) (int64, bool) {
	name := path.Base(key)
	if !strings.HasPrefix(name, "segment-") || !strings.HasSuffix(name, ".kfs") {
		return 0, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, "segment-"), ".kfs")
	if raw == "" {
		return 0, false
	}
	base, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return base, true
}
