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

// Package rowdecoder ships the built-in payload decoders. Anything
// satisfying rowset.RowDecoder can stand in for them.
package rowdecoder

import (
	"bytes"
	"encoding/json"

	"github.com/novatechflow/kafquery/pkg/rowset"
)

// JSONDecoder extracts top-level object fields by column name. A
// payload that is not a JSON object is reported as corrupt, never as an
// error; fields that are missing or of an unexpected shape decode to
// null.
type JSONDecoder struct {
	columns []*rowset.Column
}

// NewJSON builds a decoder for the non-internal columns of the list.
func NewJSON(columns []*rowset.Column) *JSONDecoder {
	return &JSONDecoder{columns: decodedColumns(columns)}
}

func (d *JSONDecoder) Decode(data []byte) (map[*rowset.Column]rowset.Value, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, false
	}

	values := make(map[*rowset.Column]rowset.Value, len(d.columns))
	for _, col := range d.columns {
		values[col] = jsonFieldValue(col.Type, payload[col.Name])
	}
	return values, true
}

func jsonFieldValue(typ rowset.Type, raw any) rowset.Value {
	if raw == nil {
		return rowset.NullValue()
	}
	switch typ {
	case rowset.TypeBoolean:
		if b, ok := raw.(bool); ok {
			return rowset.BoolValue(b)
		}
	case rowset.TypeBigint, rowset.TypeTimestamp:
		if num, ok := raw.(json.Number); ok {
			if v, err := num.Int64(); err == nil {
				return rowset.LongValue(v)
			}
		}
	case rowset.TypeDouble:
		if num, ok := raw.(json.Number); ok {
			if v, err := num.Float64(); err == nil {
				return rowset.DoubleValue(v)
			}
		}
	case rowset.TypeVarchar, rowset.TypeVarbinary:
		if s, ok := raw.(string); ok {
			return rowset.BytesValue([]byte(s))
		}
	}
	return rowset.NullValue()
}

func decodedColumns(columns []*rowset.Column) []*rowset.Column {
	out := make([]*rowset.Column, 0, len(columns))
	for _, col := range columns {
		if col == nil || col.Internal {
			continue
		}
		out = append(out, col)
	}
	return out
}
