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

// Kind is the primitive shape of a field value. Every column type maps
// to exactly one kind; typed cursor getters check against it.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindLong
	KindDouble
	KindBytes
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindBytes:
		return "bytes"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the field kinds. The zero Value is null.
// Byte and map contents are only valid until the cursor advances;
// consumers copy out anything they retain.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	bytes []byte
	m     map[string][][]byte
}

// NullValue returns the explicit null value.
func NullValue() Value {
	return Value{}
}

func BoolValue(v bool) Value {
	return Value{kind: KindBool, b: v}
}

func LongValue(v int64) Value {
	return Value{kind: KindLong, i: v}
}

func DoubleValue(v float64) Value {
	return Value{kind: KindDouble, f: v}
}

func BytesValue(v []byte) Value {
	return Value{kind: KindBytes, bytes: v}
}

// HeaderMapValue wraps a grouped header map. The map is never nil even
// when empty.
func HeaderMapValue(m map[string][][]byte) Value {
	if m == nil {
		m = map[string][][]byte{}
	}
	return Value{kind: KindMap, m: m}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

func (v Value) Bool() bool {
	return v.b
}

func (v Value) Long() int64 {
	return v.i
}

func (v Value) Double() float64 {
	return v.f
}

func (v Value) Bytes() []byte {
	return v.bytes
}

func (v Value) HeaderMap() map[string][][]byte {
	return v.m
}
