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
	"fmt"
	"testing"
	"time"

	"github.com/novatechflow/kafquery/pkg/consumer"
)

func sampleMessages(baseOffset int64, count int) []consumer.Message {
	out := make([]consumer.Message, 0, count)
	for i := 0; i < count; i++ {
		offset := baseOffset + int64(i)
		msg := consumer.Message{
			Offset:      offset,
			TimestampMs: 1700000000000 + offset*10,
			Key:         []byte(fmt.Sprintf("key-%d", offset)),
			Value:       []byte(fmt.Sprintf("value-%d", offset)),
		}
		if i%3 == 0 {
			msg.Headers = []consumer.Header{
				{Key: "trace", Value: []byte(fmt.Sprintf("t-%d", offset))},
				{Key: "trace", Value: []byte("dup")},
			}
		}
		out = append(out, msg)
	}
	return out
}

func TestWriteParseRoundTrip(t *testing.T) {
	messages := sampleMessages(100, 10)
	// Tombstone and empty-key edge cases.
	messages[4].Value = nil
	messages[5].Key = nil
	messages[6].Value = []byte{}

	artifact, err := WriteSegment(WriterConfig{BatchMessages: 3, IndexIntervalMessages: 3}, messages, time.UnixMilli(1700000005000))
	if err != nil {
		t.Fatalf("write segment: %v", err)
	}
	if artifact.BaseOffset != 100 || artifact.LastOffset != 109 {
		t.Fatalf("unexpected offsets: base=%d last=%d", artifact.BaseOffset, artifact.LastOffset)
	}
	if artifact.MessageCount != 10 {
		t.Fatalf("expected 10 messages, got %d", artifact.MessageCount)
	}

	decoded, err := ParseSegment(artifact.SegmentBytes, 7)
	if err != nil {
		t.Fatalf("parse segment: %v", err)
	}
	if len(decoded) != len(messages) {
		t.Fatalf("expected %d messages, got %d", len(messages), len(decoded))
	}
	for i, msg := range decoded {
		want := messages[i]
		if msg.Offset != want.Offset {
			t.Fatalf("message %d: offset %d != %d", i, msg.Offset, want.Offset)
		}
		if msg.Partition != 7 {
			t.Fatalf("message %d: partition %d", i, msg.Partition)
		}
		if msg.TimestampMs != want.TimestampMs {
			t.Fatalf("message %d: timestamp %d != %d", i, msg.TimestampMs, want.TimestampMs)
		}
		if (msg.Key == nil) != (want.Key == nil) || !bytes.Equal(msg.Key, want.Key) {
			t.Fatalf("message %d: key %v != %v", i, msg.Key, want.Key)
		}
		if (msg.Value == nil) != (want.Value == nil) || !bytes.Equal(msg.Value, want.Value) {
			t.Fatalf("message %d: value %v != %v", i, msg.Value, want.Value)
		}
		if len(msg.Headers) != len(want.Headers) {
			t.Fatalf("message %d: %d headers != %d", i, len(msg.Headers), len(want.Headers))
		}
		for j, h := range msg.Headers {
			if h.Key != want.Headers[j].Key || !bytes.Equal(h.Value, want.Headers[j].Value) {
				t.Fatalf("message %d header %d: %+v != %+v", i, j, h, want.Headers[j])
			}
		}
	}
}

func TestLastOffsetFromFooter(t *testing.T) {
	artifact, err := WriteSegment(WriterConfig{}, sampleMessages(50, 4), time.Now())
	if err != nil {
		t.Fatalf("write segment: %v", err)
	}
	last, err := LastOffset(artifact.SegmentBytes)
	if err != nil {
		t.Fatalf("last offset: %v", err)
	}
	if last != 53 {
		t.Fatalf("expected last offset 53, got %d", last)
	}
}

func TestParseSegmentDetectsCorruption(t *testing.T) {
	artifact, err := WriteSegment(WriterConfig{}, sampleMessages(0, 3), time.Now())
	if err != nil {
		t.Fatalf("write segment: %v", err)
	}

	flipped := append([]byte(nil), artifact.SegmentBytes...)
	flipped[segmentHeaderLen+20] ^= 0xff
	if _, err := ParseSegment(flipped, 0); err == nil {
		t.Fatalf("expected crc mismatch")
	}

	badMagic := append([]byte(nil), artifact.SegmentBytes...)
	copy(badMagic[:4], "NOPE")
	if _, err := ParseSegment(badMagic, 0); err == nil {
		t.Fatalf("expected magic error")
	}

	if _, err := ParseSegment([]byte("short"), 0); err == nil {
		t.Fatalf("expected size error")
	}
}

func TestWriteSegmentRejectsEmptyInput(t *testing.T) {
	if _, err := WriteSegment(WriterConfig{}, nil, time.Now()); err == nil {
		t.Fatalf("expected error for empty message list")
	}
}
