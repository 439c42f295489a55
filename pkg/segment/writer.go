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
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/novatechflow/kafquery/pkg/consumer"
)

// Artifact contains serialized segment and index bytes ready for upload.
type Artifact struct {
	BaseOffset   int64
	LastOffset   int64
	MessageCount int32
	CreatedAt    time.Time
	SegmentBytes []byte
	IndexBytes   []byte
}

// WriterConfig controls serialization.
type WriterConfig struct {
	// BatchMessages caps records per encoded batch.
	BatchMessages int
	// IndexIntervalMessages controls sparse index density.
	IndexIntervalMessages int32
}

// WriteSegment serializes contiguous messages into segment and index
// bytes. Message offsets must be consecutive and ascending. Used by the
// in-memory backend, tests and backfill tooling; the broker owns the
// production write path.
func WriteSegment(cfg WriterConfig, messages []consumer.Message, created time.Time) (*Artifact, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to serialize")
	}
	batchMessages := cfg.BatchMessages
	if batchMessages <= 0 {
		batchMessages = len(messages)
	}

	body := &bytes.Buffer{}
	index := newIndexBuilder(cfg.IndexIntervalMessages)
	baseOffset := messages[0].Offset
	lastOffset := messages[len(messages)-1].Offset

	for start := 0; start < len(messages); start += batchMessages {
		end := start + batchMessages
		if end > len(messages) {
			end = len(messages)
		}
		chunk := messages[start:end]
		position := segmentHeaderLen + body.Len()
		index.maybeAdd(chunk[0].Offset, int32(position), int32(len(chunk)))
		body.Write(encodeBatch(chunk))
	}

	bodyBytes := body.Bytes()
	crc := crc32.Checksum(bodyBytes, crcTable)

	segment := bytes.NewBuffer(make([]byte, 0, segmentHeaderLen+len(bodyBytes)+segmentFooterLen))
	segment.Write(buildSegmentHeader(baseOffset, int32(len(messages)), created))
	segment.Write(bodyBytes)
	segment.Write(buildSegmentFooter(crc, lastOffset))

	indexBytes, err := index.buildBytes()
	if err != nil {
		return nil, err
	}

	return &Artifact{
		BaseOffset:   baseOffset,
		LastOffset:   lastOffset,
		MessageCount: int32(len(messages)),
		CreatedAt:    created,
		SegmentBytes: segment.Bytes(),
		IndexBytes:   indexBytes,
	}, nil
}

func buildSegmentHeader(baseOffset int64, messageCount int32, created time.Time) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, segmentHeaderLen))
	buf.WriteString(segmentMagic)
	binary.Write(buf, binary.BigEndian, uint16(1)) // version
	binary.Write(buf, binary.BigEndian, uint16(0)) // flags
	binary.Write(buf, binary.BigEndian, baseOffset)
	binary.Write(buf, binary.BigEndian, messageCount)
	binary.Write(buf, binary.BigEndian, created.UnixMilli())
	binary.Write(buf, binary.BigEndian, uint32(0)) // reserved
	return buf.Bytes()
}

func buildSegmentFooter(crc uint32, lastOffset int64) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, segmentFooterLen))
	binary.Write(buf, binary.BigEndian, crc)
	binary.Write(buf, binary.BigEndian, lastOffset)
	buf.WriteString(footerMagic)
	return buf.Bytes()
}

// encodeBatch frames messages as one uncompressed Kafka v2 record batch.
func encodeBatch(messages []consumer.Message) []byte {
	baseOffset := messages[0].Offset
	firstTimestamp := messages[0].TimestampMs
	maxTimestamp := firstTimestamp
	for _, msg := range messages {
		if msg.TimestampMs > maxTimestamp {
			maxTimestamp = msg.TimestampMs
		}
	}

	records := &bytes.Buffer{}
	for _, msg := range messages {
		records.Write(encodeRecord(msg, baseOffset, firstTimestamp))
	}

	// Header fields past the length prefix: partition leader epoch,
	// magic, crc, attributes, last offset delta, first/max timestamp,
	// producer id/epoch, base sequence, record count.
	header := &bytes.Buffer{}
	binary.Write(header, binary.BigEndian, int32(-1))
	header.WriteByte(2)
	binary.Write(header, binary.BigEndian, uint32(0)) // crc placeholder
	binary.Write(header, binary.BigEndian, int16(0))  // attributes: uncompressed
	binary.Write(header, binary.BigEndian, int32(messages[len(messages)-1].Offset-baseOffset))
	binary.Write(header, binary.BigEndian, firstTimestamp)
	binary.Write(header, binary.BigEndian, maxTimestamp)
	binary.Write(header, binary.BigEndian, int64(-1))
	binary.Write(header, binary.BigEndian, int16(-1))
	binary.Write(header, binary.BigEndian, int32(-1))
	binary.Write(header, binary.BigEndian, int32(len(messages)))

	payload := append(header.Bytes(), records.Bytes()...)
	// Kafka's batch CRC covers attributes onward, i.e. everything past
	// the crc field itself.
	crc := crc32.Checksum(payload[9:], crcTable)
	binary.BigEndian.PutUint32(payload[5:9], crc)

	frame := &bytes.Buffer{}
	binary.Write(frame, binary.BigEndian, baseOffset)
	binary.Write(frame, binary.BigEndian, int32(len(payload)))
	frame.Write(payload)
	return frame.Bytes()
}

func encodeRecord(msg consumer.Message, baseOffset, firstTimestamp int64) []byte {
	body := &bytes.Buffer{}
	body.WriteByte(0) // attributes
	writeVarint(body, msg.TimestampMs-firstTimestamp)
	writeVarint(body, msg.Offset-baseOffset)
	writeNullableBytes(body, msg.Key)
	writeNullableBytes(body, msg.Value)
	writeVarint(body, int64(len(msg.Headers)))
	for _, h := range msg.Headers {
		writeNullableBytes(body, []byte(h.Key))
		writeNullableBytes(body, h.Value)
	}

	out := &bytes.Buffer{}
	writeVarint(out, int64(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func writeNullableBytes(buf *bytes.Buffer, data []byte) {
	if data == nil {
		writeVarint(buf, -1)
		return
	}
	writeVarint(buf, int64(len(data)))
	buf.Write(data)
}

func writeVarint(buf *bytes.Buffer, v int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	buf.Write(tmp[:n])
}
