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
	"testing"

	"github.com/novatechflow/kafquery/pkg/rowset"
)

func TestRawDecodeFixedWidth(t *testing.T) {
	id := &rowset.Column{Name: "id", Type: rowset.TypeBigint}
	dec := NewRaw([]*rowset.Column{id})

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(12345))
	values, ok := dec.Decode(buf)
	if !ok {
		t.Fatalf("expected decode to succeed")
	}
	if values[id].Long() != 12345 {
		t.Fatalf("id: %+v", values[id])
	}
}

func TestRawDecodeDouble(t *testing.T) {
	ratio := &rowset.Column{Name: "ratio", Type: rowset.TypeDouble}
	dec := NewRaw([]*rowset.Column{ratio})

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(2.5))
	values, ok := dec.Decode(buf)
	if !ok {
		t.Fatalf("expected decode to succeed")
	}
	if values[ratio].Double() != 2.5 {
		t.Fatalf("ratio: %+v", values[ratio])
	}
}

func TestRawDecodeBytesTakesWholePayload(t *testing.T) {
	body := &rowset.Column{Name: "body", Type: rowset.TypeVarchar}
	dec := NewRaw([]*rowset.Column{body})

	values, ok := dec.Decode([]byte("hello"))
	if !ok {
		t.Fatalf("expected decode to succeed")
	}
	if string(values[body].Bytes()) != "hello" {
		t.Fatalf("body: %+v", values[body])
	}
}

func TestRawDecodeShortPayloadIsCorrupt(t *testing.T) {
	cases := []struct {
		typ     rowset.Type
		payload []byte
	}{
		{rowset.TypeBoolean, nil},
		{rowset.TypeBigint, []byte{1, 2, 3}},
		{rowset.TypeDouble, []byte{1, 2, 3, 4, 5, 6, 7}},
		{rowset.TypeTimestamp, []byte{}},
	}
	for _, tc := range cases {
		dec := NewRaw([]*rowset.Column{{Name: "f", Type: tc.typ}})
		if _, ok := dec.Decode(tc.payload); ok {
			t.Fatalf("type %s with %d bytes should be corrupt", tc.typ, len(tc.payload))
		}
	}
}

func TestRawDecodeBoolean(t *testing.T) {
	flag := &rowset.Column{Name: "flag", Type: rowset.TypeBoolean}
	dec := NewRaw([]*rowset.Column{flag})

	values, ok := dec.Decode([]byte{0})
	if !ok || values[flag].Bool() {
		t.Fatalf("expected false, got %+v ok=%v", values[flag], ok)
	}
	values, ok = dec.Decode([]byte{7})
	if !ok || !values[flag].Bool() {
		t.Fatalf("expected true, got %+v ok=%v", values[flag], ok)
	}
}
