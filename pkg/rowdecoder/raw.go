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

package rowdecoder

import (
	"encoding/binary"
	"math"

	"github.com/novatechflow/kafquery/pkg/rowset"
)

// RawDecoder binds the whole payload to every mapped column. Fixed
// width types read big-endian from the payload start; a payload too
// short for any such column is corrupt.
type RawDecoder struct {
	columns []*rowset.Column
}

// NewRaw builds a decoder for the non-internal columns of the list.
func NewRaw(columns []*rowset.Column) *RawDecoder {
	return &RawDecoder{columns: decodedColumns(columns)}
}

func (d *RawDecoder) Decode(data []byte) (map[*rowset.Column]rowset.Value, bool) {
	values := make(map[*rowset.Column]rowset.Value, len(d.columns))
	for _, col := range d.columns {
		value, ok := rawFieldValue(col.Type, data)
		if !ok {
			return nil, false
		}
		values[col] = value
	}
	return values, true
}

func rawFieldValue(typ rowset.Type, data []byte) (rowset.Value, bool) {
	switch typ {
	case rowset.TypeBoolean:
		if len(data) < 1 {
			return rowset.Value{}, false
		}
		return rowset.BoolValue(data[0] != 0), true
	case rowset.TypeBigint, rowset.TypeTimestamp:
		if len(data) < 8 {
			return rowset.Value{}, false
		}
		return rowset.LongValue(int64(binary.BigEndian.Uint64(data[:8]))), true
	case rowset.TypeDouble:
		if len(data) < 8 {
			return rowset.Value{}, false
		}
		return rowset.DoubleValue(math.Float64frombits(binary.BigEndian.Uint64(data[:8]))), true
	case rowset.TypeVarchar, rowset.TypeVarbinary:
		return rowset.BytesValue(data), true
	default:
		return rowset.Value{}, false
	}
}
