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

// Type is a column's declared SQL-level type.
type Type int

const (
	TypeBoolean Type = iota
	TypeBigint
	TypeDouble
	TypeVarchar
	TypeVarbinary
	// TypeTimestamp carries microseconds since the epoch as a long.
	TypeTimestamp
	// TypeHeaderMap is map(varchar, array(varbinary)) used by the
	// synthetic headers column.
	TypeHeaderMap
)

func (t Type) String() string {
	switch t {
	case TypeBoolean:
		return "boolean"
	case TypeBigint:
		return "bigint"
	case TypeDouble:
		return "double"
	case TypeVarchar:
		return "varchar"
	case TypeVarbinary:
		return "varbinary"
	case TypeTimestamp:
		return "timestamp"
	case TypeHeaderMap:
		return "headermap"
	default:
		return "unknown"
	}
}

// Kind maps the declared type to the primitive kind a cursor getter
// must request.
func (t Type) Kind() Kind {
	switch t {
	case TypeBoolean:
		return KindBool
	case TypeBigint, TypeTimestamp:
		return KindLong
	case TypeDouble:
		return KindDouble
	case TypeVarchar, TypeVarbinary:
		return KindBytes
	case TypeHeaderMap:
		return KindMap
	default:
		return KindNull
	}
}

// Column identifies one requested output column. Internal columns are
// synthesized from message metadata; all others come from the key or
// value decoder. Handles are owned by the query plan; the reader only
// references them.
type Column struct {
	Name     string
	Type     Type
	Internal bool
}
