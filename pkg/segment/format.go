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
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/novatechflow/kafquery/pkg/consumer"
)

// Segment layout: 32 byte header (KAFS magic, version, base offset,
// message count, created-at), concatenated Kafka v2 record batches,
// 16 byte footer (body CRC, last offset, END! magic). The sparse index
// sidecar carries offset/position pairs under the IDX magic.
const (
	segmentMagic         = "KAFS"
	footerMagic          = "END!"
	segmentHeaderLen     = 32
	segmentFooterLen     = 16
	recordBatchHeaderLen = 61
	batchFrameHeaderLen  = 12
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// ParseSegment decodes every record in a serialized segment into
// messages tagged with the given partition.
func ParseSegment(data []byte, partition int32) ([]consumer.Message, error) {
	if len(data) < segmentHeaderLen+segmentFooterLen {
		return nil, fmt.Errorf("segment too small: %d bytes", len(data))
	}
	if string(data[:4]) != segmentMagic {
		return nil, fmt.Errorf("invalid segment magic")
	}
	body := data[segmentHeaderLen : len(data)-segmentFooterLen]
	footer := data[len(data)-segmentFooterLen:]
	crc, _, err := parseFooter(footer)
	if err != nil {
		return nil, err
	}
	if crc32.Checksum(body, crcTable) != crc {
		return nil, fmt.Errorf("segment body crc mismatch")
	}
	return decodeRecordBatches(body, partition)
}

// LastOffset reads the highest contained offset from a segment's footer.
func LastOffset(data []byte) (int64, error) {
	if len(data) < segmentFooterLen {
		return 0, fmt.Errorf("footer too small")
	}
	_, lastOffset, err := parseFooter(data[len(data)-segmentFooterLen:])
	return lastOffset, err
}

func parseFooter(footer []byte) (uint32, int64, error) {
	crc := binary.BigEndian.Uint32(footer[0:4])
	lastOffset := int64(binary.BigEndian.Uint64(footer[4:12]))
	if string(footer[12:16]) != footerMagic {
		return 0, 0, fmt.Errorf("invalid footer magic")
	}
	return crc, lastOffset, nil
}

func decodeRecordBatches(data []byte, partition int32) ([]consumer.Message, error) {
	var messages []consumer.Message
	offset := 0
	for offset+batchFrameHeaderLen <= len(data) {
		batchLen := int(binary.BigEndian.Uint32(data[offset+8 : offset+12]))
		if batchLen <= 0 {
			break
		}
		frameLen := batchFrameHeaderLen + batchLen
		if offset+frameLen > len(data) {
			break
		}
		batch := data[offset : offset+frameLen]
		batchMessages, err := decodeBatch(batch, partition)
		if err != nil {
			return nil, err
		}
		messages = append(messages, batchMessages...)
		offset += frameLen
	}
	return messages, nil
}

func decodeBatch(batch []byte, partition int32) ([]consumer.Message, error) {
	if len(batch) < recordBatchHeaderLen {
		return nil, fmt.Errorf("record batch too small: %d bytes", len(batch))
	}

	attributes := int16(binary.BigEndian.Uint16(batch[21:23]))
	if attributes&0x07 != 0 {
		return nil, fmt.Errorf("compressed batches are not supported")
	}

	baseOffset := int64(binary.BigEndian.Uint64(batch[0:8]))
	firstTimestamp := int64(binary.BigEndian.Uint64(batch[27:35]))
	recordCount := int32(binary.BigEndian.Uint32(batch[57:61]))
	if recordCount <= 0 {
		return nil, nil
	}

	reader := bytes.NewReader(batch[recordBatchHeaderLen:])
	messages := make([]consumer.Message, 0, recordCount)
	for i := int32(0); i < recordCount; i++ {
		msg, err := decodeRecord(reader, baseOffset, firstTimestamp, partition)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func decodeRecord(reader *bytes.Reader, baseOffset, baseTimestamp int64, partition int32) (consumer.Message, error) {
	length, err := readVarint(reader)
	if err != nil {
		return consumer.Message{}, err
	}
	if length < 0 {
		return consumer.Message{}, fmt.Errorf("invalid record length")
	}

	recordData := make([]byte, length)
	if _, err := io.ReadFull(reader, recordData); err != nil {
		return consumer.Message{}, err
	}
	buf := bytes.NewReader(recordData)

	if _, err := buf.ReadByte(); err != nil { // attributes
		return consumer.Message{}, err
	}

	timestampDelta, err := readVarint(buf)
	if err != nil {
		return consumer.Message{}, err
	}
	offsetDelta, err := readVarint(buf)
	if err != nil {
		return consumer.Message{}, err
	}

	keyLen, err := readVarint(buf)
	if err != nil {
		return consumer.Message{}, err
	}
	key, err := readNullableBytes(buf, keyLen)
	if err != nil {
		return consumer.Message{}, err
	}

	valueLen, err := readVarint(buf)
	if err != nil {
		return consumer.Message{}, err
	}
	value, err := readNullableBytes(buf, valueLen)
	if err != nil {
		return consumer.Message{}, err
	}

	headerCount, err := readVarint(buf)
	if err != nil {
		return consumer.Message{}, err
	}
	var headers []consumer.Header
	if headerCount > 0 {
		headers = make([]consumer.Header, 0, headerCount)
	}
	for i := int64(0); i < headerCount; i++ {
		hKeyLen, err := readVarint(buf)
		if err != nil {
			return consumer.Message{}, err
		}
		hKey, err := readNullableBytes(buf, hKeyLen)
		if err != nil {
			return consumer.Message{}, err
		}
		hValLen, err := readVarint(buf)
		if err != nil {
			return consumer.Message{}, err
		}
		hVal, err := readNullableBytes(buf, hValLen)
		if err != nil {
			return consumer.Message{}, err
		}
		headers = append(headers, consumer.Header{Key: string(hKey), Value: hVal})
	}

	return consumer.Message{
		Offset:      baseOffset + offsetDelta,
		Partition:   partition,
		TimestampMs: baseTimestamp + timestampDelta,
		Key:         key,
		Value:       value,
		Headers:     headers,
	}, nil
}

func readNullableBytes(reader *bytes.Reader, length int64) ([]byte, error) {
	if length < 0 {
		return nil, nil
	}
	if length == 0 {
		return []byte{}, nil
	}
	out := make([]byte, length)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}

func readVarint(reader *bytes.Reader) (int64, error) {
	var value uint64
	var shift uint
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return 0, err
		}
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 63 {
			return 0, errors.New("varint overflow")
		}
	}
	return decodeZigZag(value), nil
}

func decodeZigZag(value uint64) int64 {
	if value&1 == 0 {
		return int64(value >> 1)
	}
	return -int64((value >> 1) + 1)
}
