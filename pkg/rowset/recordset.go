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

package rowset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/novatechflow/kafquery/pkg/consumer"
)

const (
	consumerPollTimeout = 100 * time.Millisecond
	microsPerMilli      = 1000
)

var (
	// ErrFieldOutOfRange reports a getter called with a field index
	// outside the requested column list.
	ErrFieldOutOfRange = errors.New("field index out of range")
	// ErrTypeMismatch reports a typed getter whose kind does not match
	// the column's declared type.
	ErrTypeMismatch = errors.New("field type mismatch")
)

var emptyBytes = []byte{}

// RecordSet scans one bounded topic-partition range and exposes it as
// typed rows. One record set serves one split; cursors opened from it
// each own an exclusive consumer.
type RecordSet struct {
	split        Split
	factory      consumer.Factory
	columns      []*Column
	types        []Type
	keyDecoder   RowDecoder
	valueDecoder RowDecoder
	internal     map[*Column]InternalField
}

// New validates the split and column list and resolves every internal
// column against the field catalog. An unrecognized internal column
// name fails here: it is a connector configuration bug, not a data
// error.
func New(split Split, factory consumer.Factory, columns []*Column, keyDecoder, valueDecoder RowDecoder) (*RecordSet, error) {
	if err := split.Range.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, fmt.Errorf("record set: consumer factory is nil")
	}
	if keyDecoder == nil || valueDecoder == nil {
		return nil, fmt.Errorf("record set: key and value decoders are required")
	}

	internal := make(map[*Column]InternalField)
	types := make([]Type, len(columns))
	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("record set: column %d is nil", i)
		}
		types[i] = col.Type
		if !col.Internal {
			continue
		}
		field, err := LookupInternalField(col.Name)
		if err != nil {
			return nil, err
		}
		internal[col] = field
	}

	return &RecordSet{
		split:        split,
		factory:      factory,
		columns:      columns,
		types:        types,
		keyDecoder:   keyDecoder,
		valueDecoder: valueDecoder,
		internal:     internal,
	}, nil
}

// ColumnTypes returns the declared types in requested column order.
func (s *RecordSet) ColumnTypes() []Type {
	out := make([]Type, len(s.types))
	copy(out, s.types)
	return out
}

// OpenCursor creates the consumer, assigns the split's partition and
// seeks to the start of the range.
func (s *RecordSet) OpenCursor(ctx context.Context) (*Cursor, error) {
	cons, err := s.factory.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("open cursor: %w", err)
	}
	cons.Assign(s.split.Topic, s.split.Partition)
	cons.Seek(s.split.Range.Begin)
	return &Cursor{
		set:      s,
		consumer: cons,
		row:      make([]Value, len(s.columns)),
	}, nil
}

// Cursor is a pull-based row accessor over one split. Not safe for
// concurrent use; the consumer driving Advance owns all state. Row
// values are only valid until the next Advance.
type Cursor struct {
	set      *RecordSet
	consumer consumer.Consumer

	buffered []consumer.Message
	nextIdx  int

	row            []Value
	completedBytes int64
	exhausted      bool
	closed         bool
}

// Advance moves to the next row. It returns false once the range is
// exhausted; every later call returns false without side effects.
// Consumer failures during poll propagate as fatal, and a canceled
// context ends the scan with the context's error; retrying is the
// caller's concern.
func (c *Cursor) Advance(ctx context.Context) (bool, error) {
	if c.closed || c.exhausted {
		return false, nil
	}
	for {
		if c.nextIdx < len(c.buffered) {
			msg := c.buffered[c.nextIdx]
			c.nextIdx++
			return c.nextRow(msg), nil
		}
		if c.consumer.Position() >= c.set.split.Range.End {
			c.exhausted = true
			return false, nil
		}
		// Backends report a canceled poll as an empty batch; check the
		// parent context here so cancellation ends the scan instead of
		// spinning on empty polls.
		if err := ctx.Err(); err != nil {
			return false, err
		}
		batch, err := c.consumer.Poll(ctx, consumerPollTimeout)
		if err != nil {
			pollsTotal.WithLabelValues(c.set.split.Topic, "error").Inc()
			return false, err
		}
		if len(batch) == 0 {
			// Timed-out polls are normal; try again.
			pollsTotal.WithLabelValues(c.set.split.Topic, "empty").Inc()
		} else {
			pollsTotal.WithLabelValues(c.set.split.Topic, "records").Inc()
		}
		c.buffered = batch
		c.nextIdx = 0
	}
}

func (c *Cursor) nextRow(msg consumer.Message) bool {
	// A batch may span past the requested range.
	if msg.Offset >= c.set.split.Range.End {
		c.exhausted = true
		return false
	}

	bytesRead := msg.KeySize() + msg.ValueSize()
	c.completedBytes += bytesRead
	completedBytesTotal.WithLabelValues(c.set.split.Topic).Add(float64(bytesRead))

	keyData := msg.Key
	if keyData == nil {
		keyData = emptyBytes
	}
	messageData := msg.Value
	if messageData == nil {
		messageData = emptyBytes
	}
	timestamp := msg.TimestampMs * microsPerMilli

	// The key decoder always runs, even for an absent key. A tombstone
	// value skips the value decoder entirely.
	decodedKey, keyOK := c.set.keyDecoder.Decode(keyData)
	var decodedValue map[*Column]Value
	valueOK := false
	if msg.Value != nil {
		decodedValue, valueOK = c.set.valueDecoder.Decode(messageData)
	}
	if !keyOK {
		corruptTotal.WithLabelValues(c.set.split.Topic, "key").Inc()
	}
	if !valueOK {
		corruptTotal.WithLabelValues(c.set.split.Topic, "message").Inc()
	}

	values := make(map[*Column]Value, len(c.set.columns))
	for col, field := range c.set.internal {
		switch field {
		case FieldPartitionOffset:
			values[col] = LongValue(msg.Offset)
		case FieldMessage:
			values[col] = BytesValue(messageData)
		case FieldMessageLength:
			values[col] = LongValue(int64(len(messageData)))
		case FieldKey:
			values[col] = BytesValue(keyData)
		case FieldKeyLength:
			values[col] = LongValue(int64(len(keyData)))
		case FieldTimestamp:
			values[col] = LongValue(timestamp)
		case FieldKeyCorrupt:
			values[col] = BoolValue(!keyOK)
		case FieldMessageCorrupt:
			values[col] = BoolValue(!valueOK)
		case FieldHeaders:
			values[col] = aggregateHeaders(msg.Headers)
		case FieldPartitionID:
			values[col] = LongValue(int64(msg.Partition))
		}
	}
	if keyOK {
		c.overlay(values, decodedKey)
	}
	if valueOK {
		c.overlay(values, decodedValue)
	}

	for i, col := range c.set.columns {
		value, ok := values[col]
		if !ok {
			// No provider computed this column; reads as null.
			value = NullValue()
		}
		c.row[i] = value
	}
	rowsTotal.WithLabelValues(c.set.split.Topic).Inc()
	return true
}

// Internal and decoded column sets are disjoint by the Internal flag;
// a clash means the catalog assigned the same handle to both sides.
func (c *Cursor) overlay(values map[*Column]Value, decoded map[*Column]Value) {
	for col, value := range decoded {
		if _, clash := values[col]; clash {
			slog.Warn("decoded field shadows internal column",
				"topic", c.set.split.Topic,
				"column", col.Name)
		}
		values[col] = value
	}
}

// Type returns the declared type of a field.
func (c *Cursor) Type(field int) (Type, error) {
	if field < 0 || field >= len(c.set.columns) {
		return 0, fmt.Errorf("%w: %d not in [0,%d)", ErrFieldOutOfRange, field, len(c.set.columns))
	}
	return c.set.columns[field].Type, nil
}

func (c *Cursor) GetBoolean(field int) (bool, error) {
	value, err := c.fieldValue(field, KindBool)
	if err != nil {
		return false, err
	}
	return value.Bool(), nil
}

func (c *Cursor) GetLong(field int) (int64, error) {
	value, err := c.fieldValue(field, KindLong)
	if err != nil {
		return 0, err
	}
	return value.Long(), nil
}

func (c *Cursor) GetDouble(field int) (float64, error) {
	value, err := c.fieldValue(field, KindDouble)
	if err != nil {
		return 0, err
	}
	return value.Double(), nil
}

// GetBytes returns the raw bytes of a varchar or varbinary field. The
// slice aliases the current row; copy before the next Advance.
func (c *Cursor) GetBytes(field int) ([]byte, error) {
	value, err := c.fieldValue(field, KindBytes)
	if err != nil {
		return nil, err
	}
	return value.Bytes(), nil
}

// GetObject returns the structured value of a headermap field.
func (c *Cursor) GetObject(field int) (map[string][][]byte, error) {
	value, err := c.fieldValue(field, KindMap)
	if err != nil {
		return nil, err
	}
	return value.HeaderMap(), nil
}

// IsNull reports whether the field is null, either because the provider
// produced null or because no provider computed it for this row.
func (c *Cursor) IsNull(field int) (bool, error) {
	if field < 0 || field >= len(c.set.columns) {
		return false, fmt.Errorf("%w: %d not in [0,%d)", ErrFieldOutOfRange, field, len(c.set.columns))
	}
	return c.row[field].IsNull(), nil
}

func (c *Cursor) fieldValue(field int, want Kind) (Value, error) {
	if field < 0 || field >= len(c.set.columns) {
		return Value{}, fmt.Errorf("%w: %d not in [0,%d)", ErrFieldOutOfRange, field, len(c.set.columns))
	}
	actual := c.set.columns[field].Type.Kind()
	if actual != want {
		return Value{}, fmt.Errorf("%w: field %d expected %s but is %s", ErrTypeMismatch, field, want, actual)
	}
	return c.row[field], nil
}

// CompletedBytes reports the monotonically non-decreasing sum of
// serialized key and value sizes consumed so far.
func (c *Cursor) CompletedBytes() int64 {
	return c.completedBytes
}

// ReadTimeNanos is not tracked.
func (c *Cursor) ReadTimeNanos() int64 {
	return 0
}

// Close releases the consumer. Safe to call more than once; no rows can
// be read afterwards.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.exhausted = true
	return c.consumer.Close()
}
